package preview

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

const sessionIdKey = "session_id"

type Claims struct {
	SessionId string `json:"session_id"`
}

func (s *service) generateJWT(sessionId string) (string, error) {
	// no exp: the stored snapshot ttl decides how long a session can be resumed
	claims := jwt.MapClaims{
		sessionIdKey: sessionId,
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(s.secret)
}

func (s *service) parseJWT(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sessionId, ok := claims[sessionIdKey].(string)
	if !ok {
		return nil, ErrInvalidToken
	}

	return &Claims{
		SessionId: sessionId,
	}, nil
}
