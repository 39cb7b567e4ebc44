package application

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/knowledge-dashboard/internal/logging"
)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AdminAuthenticator checks the single administrator's credentials. It is not
// an account system: there is one configured username and password hash.
type AdminAuthenticator struct {
	username       string
	passwordHash   string
	verifyPassword PasswordVerifier
	logger         *slog.Logger
}

// NewAdminAuthenticator constructs an authenticator. An empty hash disables admin access.
func NewAdminAuthenticator(username, passwordHash string, verify PasswordVerifier, logger *slog.Logger) *AdminAuthenticator {
	if verify == nil {
		verify = VerifyPassword
	}
	return &AdminAuthenticator{
		username:       strings.TrimSpace(username),
		passwordHash:   strings.TrimSpace(passwordHash),
		verifyPassword: verify,
		logger:         logging.OrDefault(logger),
	}
}

// Enabled reports whether admin credentials are configured.
func (a *AdminAuthenticator) Enabled() bool {
	return a != nil && a.passwordHash != ""
}

// Authenticate returns the admin principal when username and password match.
func (a *AdminAuthenticator) Authenticate(ctx context.Context, username, password string) (principal Principal, err error) {
	if a == nil {
		err = fmt.Errorf("AdminAuthenticator is nil")
		return
	}

	logger := serviceLogger(ctx, a.logger, "AdminAuthenticator", "Authenticate")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "admin authentication failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if !a.Enabled() {
		err = ErrAdminDisabled
		return
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(a.username)) != 1 || password == "" {
		err = ErrInvalidCredentials
		return
	}
	if verr := a.verifyPassword(a.passwordHash, password); verr != nil {
		err = ErrInvalidCredentials
		return
	}

	principal = Principal{UserID: a.username, IsAdmin: true}
	return
}
