package oauth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const stateIssuer = "panelbot"

// stateClaims OAuth state 中携带的内容
type stateClaims struct {
	Code string `json:"code"`
	jwt.RegisteredClaims
}

// stateSigner 签发和校验 OAuth state
type stateSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Sign 为绑定码签发 state，返回 state 和需要写入 cookie 的 nonce
func (s *stateSigner) Sign(code string) (string, string, error) {
	now := s.now()
	nonce := uuid.NewString()
	claims := &stateClaims{
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Issuer:    stateIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("failed to sign state: %w", err)
	}
	return token, nonce, nil
}

// Verify 校验 state 的签名、有效期和 nonce
func (s *stateSigner) Verify(state, nonce string) (*stateClaims, error) {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(stateIssuer),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid state")
	}
	if nonce == "" || claims.ID != nonce {
		return nil, errors.New("state does not belong to this browser")
	}
	if claims.Code == "" {
		return nil, errors.New("state carries no link code")
	}
	return claims, nil
}
