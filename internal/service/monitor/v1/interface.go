// Package monitor provides connectivity state tracking.
package monitor

// Monitor defines a set of methods for types implementing Monitor.
type Monitor interface {
	IsOnline() bool
	Subscribe() <-chan bool
}
