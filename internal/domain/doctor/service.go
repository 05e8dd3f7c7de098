// Package doctor covers the doctor dropdown, the prescription letterhead
// profile, and the admin management panel. All data lives in the backend;
// this package shapes requests and responses.
package doctor

import (
	"context"
	"fmt"

	"github.com/rheumacare/portal/internal/platform/gateway"
)

type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

// List returns the active doctors for the editor's doctor dropdown.
func (s *Service) List(ctx context.Context, token string) ([]Doctor, error) {
	var resp struct {
		Doctors []Doctor `json:"doctors"`
	}
	if err := s.gw.Get(ctx, token, "/doctors", nil, &resp); err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return resp.Doctors, nil
}

// Get returns one doctor with the clinic letterhead fields merged in.
func (s *Service) Get(ctx context.Context, token, id string) (*Profile, error) {
	var p Profile
	if err := s.gw.Get(ctx, token, "/doctors/"+id, nil, &p); err != nil {
		return nil, fmt.Errorf("get doctor %s: %w", id, err)
	}
	return &p, nil
}

// AdminList returns every doctor, active or not. Admin only; the backend
// answers 403 for anyone else.
func (s *Service) AdminList(ctx context.Context, token string) ([]Doctor, error) {
	var resp struct {
		Doctors []Doctor `json:"doctors"`
	}
	if err := s.gw.Get(ctx, token, "/admin/doctors", nil, &resp); err != nil {
		return nil, fmt.Errorf("admin list doctors: %w", err)
	}
	return resp.Doctors, nil
}

func (s *Service) Create(ctx context.Context, token string, in Input) (*Doctor, error) {
	var d Doctor
	if err := s.gw.Post(ctx, token, "/admin/doctors", in.CreatePayload(), &d); err != nil {
		return nil, fmt.Errorf("create doctor: %w", err)
	}
	return &d, nil
}

func (s *Service) Update(ctx context.Context, token, id string, in Input) (*Doctor, error) {
	var d Doctor
	if err := s.gw.Put(ctx, token, "/admin/doctors/"+id, in.UpdatePayload(), &d); err != nil {
		return nil, fmt.Errorf("update doctor %s: %w", id, err)
	}
	return &d, nil
}

func (s *Service) Delete(ctx context.Context, token, id string) error {
	if err := s.gw.Delete(ctx, token, "/admin/doctors/"+id); err != nil {
		return fmt.Errorf("delete doctor %s: %w", id, err)
	}
	return nil
}
