package gate

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/shubh-37/idea-processor/internal/store"
)

// CodeAlphabet leaves out characters that are easy to confuse (0/O, 1/I).
const CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	CodeLength    = 6
	MinCodeLength = 3
)

var ErrCodeTooShort = fmt.Errorf("access code must be at least %d characters", MinCodeLength)

// GenerateCode returns a random code of CodeLength characters from CodeAlphabet
func GenerateCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	// len(CodeAlphabet) divides 256, so the modulo is unbiased
	for i, b := range buf {
		buf[i] = CodeAlphabet[int(b)%len(CodeAlphabet)]
	}
	return string(buf), nil
}

// NormalizeCode trims and upper-cases a code for storage and lookup
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CodeStore is the part of the session store the registry uses
type CodeStore interface {
	LookupCode(ctx context.Context, code string) (string, error)
	AssignCode(ctx context.Context, sessionID, code string) error
}

// Registry maps access codes to sessions
type Registry struct {
	store CodeStore
}

func NewRegistry(store CodeStore) *Registry {
	return &Registry{store: store}
}

// Assign gives sessionID the code, releasing its previous one
func (r *Registry) Assign(ctx context.Context, sessionID, code string) (string, error) {
	code = NormalizeCode(code)
	if len(code) < MinCodeLength {
		return "", ErrCodeTooShort
	}
	if err := r.store.AssignCode(ctx, sessionID, code); err != nil {
		return "", err
	}
	return code, nil
}

// Generate assigns a fresh random code, retrying on collisions
func (r *Registry) Generate(ctx context.Context, sessionID string) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		code, err := GenerateCode()
		if err != nil {
			return "", err
		}
		code, err = r.Assign(ctx, sessionID, code)
		if errors.Is(err, store.ErrCodeTaken) {
			continue
		}
		return code, err
	}
	return "", fmt.Errorf("failed to generate a free code: %w", store.ErrCodeTaken)
}

// Lookup resolves a code to a session id
func (r *Registry) Lookup(ctx context.Context, code string) (string, error) {
	return r.store.LookupCode(ctx, NormalizeCode(code))
}
