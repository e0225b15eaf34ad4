// Package token issues and verifies the signed bearer tokens used for API
// authentication. Tokens are stateless HS256 JWTs carrying the subject
// identity; verification is the trust boundary, decoding is inspection only.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const signingAlg = "HS256"

// Sentinel verification failures. Each failure kind is distinguishable so
// callers can react differently; only expiry is ever refreshable.
var (
	ErrEmptyClaims      = errors.New("token: claims must be a non-empty map")
	ErrSignatureInvalid = errors.New("token: signature invalid")
	ErrMalformed        = errors.New("token: malformed")
	ErrIssuerMismatch   = errors.New("token: issuer mismatch")
	ErrAudienceMismatch = errors.New("token: audience mismatch")
	ErrNotRefreshable   = errors.New("token: not refreshable")
)

// ExpiredError reports an expired token together with its recorded expiry.
// The timestamp is carried structurally so the refresh path can evaluate the
// grace window without parsing message text.
type ExpiredError struct {
	ExpiredAt time.Time
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("token: expired at %s", e.ExpiredAt.UTC().Format(time.RFC3339))
}

// NotYetValidError reports a token whose not-before is in the future.
type NotYetValidError struct {
	NotBefore time.Time
}

func (e *NotYetValidError) Error() string {
	return fmt.Sprintf("token: not valid before %s", e.NotBefore.UTC().Format(time.RFC3339))
}

// Config holds the signing parameters for a Manager.
type Config struct {
	Secret   string
	Issuer   string
	Audience string
	// Lifetime is the validity window of issued tokens. Zero means 24h.
	Lifetime time.Duration
	// RefreshGrace bounds how long after expiry a token may still be
	// refreshed. Zero means 60s.
	RefreshGrace time.Duration
}

// Manager signs and validates bearer tokens with a single shared secret.
type Manager struct {
	secret   []byte
	issuer   string
	audience string
	lifetime time.Duration
	grace    time.Duration
	now      func() time.Time
}

// NewManager constructs a Manager. An empty secret is a configuration error
// and must abort startup rather than surface per-request.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token: signing secret must be configured")
	}
	lifetime := cfg.Lifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	grace := cfg.RefreshGrace
	if grace <= 0 {
		grace = 60 * time.Second
	}
	return &Manager{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		lifetime: lifetime,
		grace:    grace,
		now:      time.Now,
	}, nil
}

// Issue signs a token for the given claims. The claims map identifies the
// subject and must be non-empty; the registered fields (iss, aud, iat, exp,
// nbf) are always overwritten with configured values.
func (m *Manager) Issue(claims map[string]any) (string, error) {
	if len(claims) == 0 {
		return "", ErrEmptyClaims
	}

	now := m.now()
	payload := jwt.MapClaims{}
	for k, v := range claims {
		payload[k] = v
	}
	stripRegistered(payload)
	payload["iss"] = m.issuer
	payload["aud"] = m.audience
	payload["iat"] = jwt.NewNumericDate(now)
	payload["exp"] = jwt.NewNumericDate(now.Add(m.lifetime))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, payload).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Verify validates the signature, algorithm, issuer, audience and time claims
// of a token and returns its claims. An optional "Bearer " prefix is stripped.
// Only tokens asserting exactly the configured HMAC algorithm are accepted;
// anything else, including "none", fails with ErrSignatureInvalid.
func (m *Manager) Verify(tokenString string) (jwt.MapClaims, error) {
	tokenString = StripBearer(tokenString)

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{signingAlg}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, jwt.MapClaims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, m.classify(parsed, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}
	return claims, nil
}

// classify maps jwt/v5 joined errors onto the package's failure kinds. The
// parser joins every failed validation into one error, so ordering here is a
// policy: issuer and audience mismatches win over expiry, otherwise a token
// that is both expired and foreign would collapse to just "expired" and slip
// into the refresh path.
func (m *Manager) classify(parsed *jwt.Token, err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ErrSignatureInvalid
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuerMismatch
	case errors.Is(err, jwt.ErrTokenInvalidAudience):
		return ErrAudienceMismatch
	case errors.Is(err, jwt.ErrTokenExpired):
		expiredAt := time.Time{}
		if parsed != nil {
			if exp, expErr := parsed.Claims.GetExpirationTime(); expErr == nil && exp != nil {
				expiredAt = exp.Time
			}
		}
		return &ExpiredError{ExpiredAt: expiredAt}
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		notBefore := time.Time{}
		if parsed != nil {
			if nbf, nbfErr := parsed.Claims.GetNotBefore(); nbfErr == nil && nbf != nil {
				notBefore = nbf.Time
			}
		}
		return &NotYetValidError{NotBefore: notBefore}
	default:
		return fmt.Errorf("token: verify: %w", err)
	}
}

// Refresh re-issues a token from an old one. The old token must verify, or
// fail solely because it expired no longer than the grace window ago. The old
// claims are decoded without re-validation, extra claims are merged over them,
// the registered fields are stripped, and a fresh token is issued.
func (m *Manager) Refresh(oldToken string, extra map[string]any) (string, error) {
	claims, err := m.Verify(oldToken)
	if err != nil {
		var expired *ExpiredError
		if !errors.As(err, &expired) {
			return "", fmt.Errorf("%w: %w", ErrNotRefreshable, err)
		}
		if expired.ExpiredAt.IsZero() || m.now().After(expired.ExpiredAt.Add(m.grace)) {
			return "", fmt.Errorf("%w: %w", ErrNotRefreshable, err)
		}
		// Signature already checked by Verify; expiry is the only failure.
		claims = m.Decode(oldToken)
		if claims == nil {
			return "", fmt.Errorf("%w: %w", ErrNotRefreshable, ErrMalformed)
		}
	}

	next := map[string]any{}
	for k, v := range claims {
		next[k] = v
	}
	for k, v := range extra {
		next[k] = v
	}
	stripRegistered(next)
	return m.Issue(next)
}

// Decode parses a token without verifying its signature. It is for
// non-sensitive inspection only and returns nil on any parse failure. Never
// trust decoded claims across an authentication boundary; use Verify.
func (m *Manager) Decode(tokenString string) jwt.MapClaims {
	tokenString = StripBearer(tokenString)
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil
	}
	return claims
}

// StripBearer removes an optional "Bearer " scheme prefix from a header value.
func StripBearer(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 7 && strings.EqualFold(value[:7], "Bearer ") {
		return strings.TrimSpace(value[7:])
	}
	return value
}

func stripRegistered(claims map[string]any) {
	for _, k := range []string{"iss", "aud", "iat", "exp", "nbf"} {
		delete(claims, k)
	}
}
