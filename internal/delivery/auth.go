package delivery

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const tokenLifetime = 24 * time.Hour

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongPassword  = errors.New("wrong password")
	ErrAuthNotEnabled = errors.New("admin auth is not configured")
)

// AuthService — вход по админскому паролю, дальше JWT в заголовке.
type AuthService struct {
	password string
	secret   []byte
}

func NewAuthService(password, secret string) *AuthService {
	return &AuthService{password: password, secret: []byte(secret)}
}

func (a *AuthService) Login(password string) (string, error) {
	if a.password == "" || len(a.secret) == 0 {
		return "", ErrAuthNotEnabled
	}
	if password != a.password {
		return "", ErrWrongPassword
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		Subject:   "admin",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *AuthService) ValidateToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
