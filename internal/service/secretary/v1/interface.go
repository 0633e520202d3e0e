// Package secretary provides methods for token issuance and validation.
package secretary

// Secretary defines a set of methods for types implementing Secretary.
type Secretary interface {
	NewToken() (string, string, error)
	GetTokenForClient(clientID string) (string, error)
	ValidateToken(accessToken string) (string, error)
}
