// Package secretary provides methods for token issuance and validation.
package secretary

import (
	"errors"
	"fmt"
	"github.com/danilovkiri/dk-go-offlineq/internal/config"
	"github.com/danilovkiri/dk-go-offlineq/internal/models/modelclaims"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"time"
)

// Secretary defines object structure and its attributes.
type Secretary struct {
	key []byte
}

// NewSecretaryService initializes a secretary service with token functionality.
func NewSecretaryService(c *config.SecretConfig) (*Secretary, error) {
	if c == nil || c.SecretKey == "" {
		return nil, errors.New("empty secret key was passed to secretary initializer")
	}
	return &Secretary{key: []byte(c.SecretKey)}, nil
}

// NewToken generates a new client identifier and a signed access token for it.
func (s *Secretary) NewToken() (string, string, error) {
	clientID := uuid.New().String()
	accessToken, err := s.GetTokenForClient(clientID)
	if err != nil {
		return "", "", err
	}
	return accessToken, clientID, nil
}

// GetTokenForClient generates a signed access token for a client identifier.
func (s *Secretary) GetTokenForClient(clientID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &modelclaims.MyCustomClaims{
		ClientID: clientID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(30 * time.Minute).Unix(),
		},
	})
	return token.SignedString(s.key)
}

// ValidateToken parses an access token and returns the client identifier it carries.
func (s *Secretary) ValidateToken(accessToken string) (string, error) {
	token, err := jwt.ParseWithClaims(accessToken, &modelclaims.MyCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return "", err
	}
	if claims, ok := token.Claims.(*modelclaims.MyCustomClaims); ok && token.Valid {
		return claims.ClientID, nil
	}
	return "", errors.New("invalid access token")
}
