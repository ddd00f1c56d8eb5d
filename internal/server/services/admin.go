package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/fairdraw/internal/server/auth"
	"github.com/dmitrijs2005/fairdraw/internal/server/config"
	"github.com/dmitrijs2005/fairdraw/internal/shared"
)

// AdminService authenticates the operator and issues admin tokens.
type AdminService struct {
	verifier      *auth.Verifier
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewAdminService(cfg *config.Config) *AdminService {
	return &AdminService{
		verifier:      auth.NewVerifier([]byte(cfg.AdminPassword)),
		jwtSecret:     []byte(cfg.SecretKey),
		tokenValidity: cfg.AdminTokenValidityDuration,
	}
}

// Login exchanges the admin password for a bearer token.
func (s *AdminService) Login(ctx context.Context, password string) (string, error) {
	if !s.verifier.Check([]byte(password)) {
		return "", shared.ErrorUnauthorized
	}
	return auth.GenerateToken(auth.RoleAdmin, s.jwtSecret, s.tokenValidity)
}

// Authorize validates a bearer token and confirms the admin role.
func (s *AdminService) Authorize(ctx context.Context, token string) error {
	role, err := auth.GetRoleFromToken(token, s.jwtSecret)
	if err != nil {
		return shared.ErrorInvalidToken
	}
	if role != auth.RoleAdmin {
		return shared.ErrorUnauthorized
	}
	return nil
}
