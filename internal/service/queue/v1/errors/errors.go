package errors

import (
	"fmt"
)

type (
	ServiceFoundNilArgument struct {
		Msg string
	}
	UnknownActionTypeError struct {
		Type string
	}
	IllegalMethodError struct {
		Method string
	}
	IllegalEndpointError struct {
		Endpoint string
	}
)

func (e *ServiceFoundNilArgument) Error() string {
	return e.Msg
}

func (e *UnknownActionTypeError) Error() string {
	return fmt.Sprintf("%s: unknown action type", e.Type)
}

func (e *IllegalMethodError) Error() string {
	return fmt.Sprintf("%s: illegal method", e.Method)
}

func (e *IllegalEndpointError) Error() string {
	return fmt.Sprintf("%s: illegal endpoint", e.Endpoint)
}
