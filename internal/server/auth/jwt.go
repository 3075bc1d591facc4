package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Issue and expiry instants are whole milliseconds. On the wire they carry
// microseconds so the float decoding in jwt cannot pull exp below the
// millisecond it was issued for.
const tokenTimePrecision = time.Millisecond

func init() {
	jwt.TimePrecision = time.Microsecond
}

// Claims are the access token claims: the standard registered claims
// (exp, iat) plus the subject user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// TokenService issues and verifies HS256 access tokens. The secret is fixed
// at construction and the service is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) { s.now = now }
}

func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue mints a token for userID expiring TTL after the current time,
// at millisecond precision.
func (s *TokenService) Issue(userID int64) (string, error) {
	now := s.now().Truncate(tokenTimePrecision)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl).Truncate(tokenTimePrecision)),
		},
		UserID: userID,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm and expiry of token and returns the
// user id it was issued for. Expiry is evaluated against the clock on every
// call; a token is expired from its exp instant on.
//
// Errors: common.ErrTokenExpired for expired tokens, common.ErrInvalidToken
// for everything else (empty, malformed, forged, wrong algorithm, no subject).
func (s *TokenService) Verify(token string) (int64, error) {
	if token == "" {
		return 0, common.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// expiry is checked below at millisecond precision
		jwt.WithoutClaimsValidation(),
	)
	if err != nil || !parsed.Valid {
		return 0, common.ErrInvalidToken
	}

	if claims.ExpiresAt == nil || claims.UserID <= 0 {
		return 0, common.ErrInvalidToken
	}

	exp := claims.ExpiresAt.Round(tokenTimePrecision)
	if !s.now().Before(exp) {
		return 0, common.ErrTokenExpired
	}

	return claims.UserID, nil
}
