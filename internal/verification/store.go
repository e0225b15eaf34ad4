// Package verification issues and consumes the short-lived numeric codes used
// by the password-reset flow. Codes are single-use, bound to an email and a
// user id, and expire five minutes after issuance. At most one live code
// exists per email; issuing a new code overwrites the previous one.
package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// Window is how long an issued code stays consumable.
const Window = 5 * time.Minute

// Typed consume failures. Mismatch keeps the code alive so the caller may
// retry within the window; the other two mean the code is gone.
var (
	ErrCodeNotFound = errors.New("verification code expired or never issued")
	ErrCodeExpired  = errors.New("verification code expired")
	ErrCodeMismatch = errors.New("verification code mismatch")
)

// Store issues and consumes verification codes. Implementations must provide
// single-writer-per-key semantics: concurrent Issue/Consume calls for the same
// email must not interleave into a corrupt entry.
type Store interface {
	// Issue generates a fresh 6-digit code for the email, bound to userID,
	// replacing any prior live code.
	Issue(ctx context.Context, email string, userID int64) (string, error)
	// Consume validates a submitted code. On match the entry is deleted and
	// the bound user id returned. On expiry the entry is deleted and
	// ErrCodeExpired returned. On mismatch the entry is retained.
	Consume(ctx context.Context, email, code string) (int64, error)
}

func storageKey(email string) string {
	return "reset:" + strings.ToLower(strings.TrimSpace(email))
}

// generateCode returns a uniformly random zero-padded 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("verification: generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
