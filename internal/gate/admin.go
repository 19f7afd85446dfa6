package gate

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid admin token")
)

// AdminAuth checks admin credentials behind its own throttle and issues
// short-lived bearer tokens.
type AdminAuth struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	throttle     *Throttle
	now          func() time.Time
}

type AdminSettings struct {
	Email        string
	PasswordHash string // bcrypt
	JWTSecret    string
	TokenTTL     time.Duration
}

func NewAdminAuth(settings AdminSettings, throttle *Throttle) *AdminAuth {
	ttl := settings.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &AdminAuth{
		email:        strings.ToLower(strings.TrimSpace(settings.Email)),
		passwordHash: []byte(settings.PasswordHash),
		secret:       []byte(settings.JWTSecret),
		ttl:          ttl,
		throttle:     throttle,
		now:          time.Now,
	}
}

// Login returns a token on success. A LockedOut result carries no token and
// no error; wrong credentials return Rejected with ErrInvalidCredentials.
func (a *AdminAuth) Login(ctx context.Context, callerKey, email, password string) (string, Result, error) {
	remaining, err := a.throttle.Check(ctx, callerKey)
	if err != nil {
		return "", Result{}, fmt.Errorf("failed to check lockout: %w", err)
	}
	if remaining > 0 {
		return "", Result{Outcome: LockedOut, RetryAfter: remaining}, nil
	}

	if !a.credentialsMatch(email, password) {
		res, err := a.throttle.Fail(ctx, callerKey)
		if err != nil {
			return "", Result{}, fmt.Errorf("failed to record attempt: %w", err)
		}
		if res.Outcome == LockedOut {
			return "", res, nil
		}
		return "", res, ErrInvalidCredentials
	}

	locked, err := a.throttle.Succeed(ctx, callerKey)
	if err != nil {
		return "", Result{}, fmt.Errorf("failed to reset attempts: %w", err)
	}
	if locked > 0 {
		return "", Result{Outcome: LockedOut, RetryAfter: locked}, nil
	}

	token, err := a.issue()
	if err != nil {
		return "", Result{}, err
	}
	return token, Result{Outcome: Admitted}, nil
}

func (a *AdminAuth) credentialsMatch(email, password string) bool {
	emailOK := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(a.email),
	) == 1
	passwordOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return emailOK && passwordOK
}

func (a *AdminAuth) issue() (string, error) {
	now := a.now()
	claims := jwt.RegisteredClaims{
		Subject:   a.email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verify parses a bearer token and returns the admin subject
func (a *AdminAuth) Verify(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
