// Package auth handles sign-in and sign-out. Credential checking and token
// issuance belong to the backend; the portal only exchanges credentials for
// a token and keeps it in the session cookie.
package auth

import (
	"context"
	"fmt"

	"github.com/rheumacare/portal/internal/platform/gateway"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult mirrors the backend's login response. DoctorID and Location
// are absent for the admin account.
type LoginResult struct {
	Token    string `json:"token"`
	User     string `json:"user"`
	Role     string `json:"role"`
	DoctorID string `json:"doctor_id"`
	Location string `json:"location"`
}

type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var res LoginResult
	if err := s.gw.Post(ctx, "", "/auth/login", creds, &res); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &res, nil
}
