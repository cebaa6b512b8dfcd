package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/insight/internal/common"
)

// Claims is the fixed, explicitly-typed payload carried by access tokens:
// subject (username) and expiry via the registered claims, plus the user role.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenService issues and validates access tokens.
type TokenService interface {
	// CreateAccessToken produces a compact signed token for the given
	// subject and role, stamped with an absolute expiration timestamp.
	CreateAccessToken(subject, role string) (string, error)

	// DecodeAccessToken verifies the signature and expiry and returns the
	// claims. It fails with common.ErrInvalidToken on signature mismatch,
	// malformed structure, or expiry; the failures are indistinguishable to
	// the caller.
	DecodeAccessToken(token string) (*Claims, error)
}

// JWTTokenService signs tokens with an HMAC secret. The triple (secret,
// algorithm, expiration) is fixed at construction.
type JWTTokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	expiration time.Duration
}

// NewJWTTokenService constructs a token service for the given algorithm
// identifier (e.g. "HS256"). Unknown identifiers fail with
// common.ErrInvalidToken so a misconfigured server cannot silently issue
// unsigned tokens.
func NewJWTTokenService(secret, algorithm string, expiration time.Duration) (*JWTTokenService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if method == nil {
		return nil, common.ErrInvalidToken
	}
	return &JWTTokenService{
		secret:     []byte(secret),
		method:     method,
		expiration: expiration,
	}, nil
}

func (s *JWTTokenService) CreateAccessToken(subject, role string) (string, error) {
	token := jwt.NewWithClaims(s.method, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiration)),
		},
		Role: role,
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *JWTTokenService) DecodeAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{s.method.Alg()}))
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}

var _ TokenService = (*JWTTokenService)(nil)
