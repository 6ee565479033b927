package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"hrdesk/internal/auth"
	"hrdesk/pkg/domain"
)

// AuthResult is returned by a successful Authenticate.
type AuthResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expiresAt"`
	User      domain.Employee `json:"user"`
}

// Authenticate checks credentials against the active employees and issues a
// token. The returned user has its password cleared. Every failure is
// reported as domain.ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (AuthResult, error) {
	var out AuthResult
	err := s.observe(ctx, "authenticate", func(ctx context.Context) error {
		if s.issuer == nil {
			return errors.New("core: authentication is not configured")
		}
		var user domain.Employee
		found := false
		if err := s.view(ctx, func(v domain.TransactionView) error {
			for _, e := range v.ListEmployees() {
				if strings.EqualFold(e.Username, strings.TrimSpace(username)) {
					user, found = e, true
					return nil
				}
			}
			return nil
		}); err != nil {
			return err
		}
		if !found || !user.IsActive() || !auth.VerifyPassword(user.Password, password) {
			s.logger.Info("login rejected", "username", username)
			return domain.ErrInvalidCredentials
		}
		token, expires, err := s.issuer.Issue(user)
		if err != nil {
			return err
		}
		user.Password = ""
		out = AuthResult{Token: token, ExpiresAt: expires, User: user}
		return nil
	})
	return out, err
}
