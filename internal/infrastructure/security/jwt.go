package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baechuer/accounts-api/internal/application/auth"
	"github.com/baechuer/accounts-api/internal/domain"
)

// DefaultTokenTTL matches JWT_EXPIRY_SECONDS=86400.
const DefaultTokenTTL = 24 * time.Hour

type JWTSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTSigner(secret string, issuer string, ttl time.Duration) *JWTSigner {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

type accessClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (s *JWTSigner) Sign(subject, email string) (string, error) {
	now := s.now()
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.secret)
	if err != nil {
		return "", domain.ErrTokenSignFailed(err)
	}
	return signed, nil
}

func (s *JWTSigner) Verify(token string) (auth.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &accessClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return auth.TokenClaims{}, domain.WithMeta(domain.ErrUnauthorized(domain.ReasonInvalidToken), map[string]string{
				"reason": domain.ReasonInvalidToken,
				"detail": "expired",
			})
		}
		return auth.TokenClaims{}, domain.ErrUnauthorized(domain.ReasonInvalidToken)
	}

	claims, ok := parsed.Claims.(*accessClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return auth.TokenClaims{}, domain.ErrUnauthorized(domain.ReasonInvalidToken)
	}

	return auth.TokenClaims{
		Subject: claims.Subject,
		Email:   claims.Email,
		Exp:     claims.ExpiresAt.Time,
	}, nil
}
