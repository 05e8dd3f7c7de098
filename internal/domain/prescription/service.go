// Package prescription implements the heart of the portal: the editor, the
// OP No reconciliation lookup, the history list, and the printable detail
// view, all backed by the external prescription API.
package prescription

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rheumacare/portal/internal/platform/gateway"
)

type Service struct {
	gw *gateway.Client
}

func NewService(gw *gateway.Client) *Service {
	return &Service{gw: gw}
}

// List returns the caller's prescriptions, newest first. Role scoping is the
// backend's job: doctors get their own records, admin gets everything.
func (s *Service) List(ctx context.Context, token string) ([]Prescription, error) {
	var records []Prescription
	if err := s.gw.Get(ctx, token, "/prescriptions", nil, &records); err != nil {
		return nil, fmt.Errorf("list prescriptions: %w", err)
	}
	return records, nil
}

func (s *Service) Get(ctx context.Context, token, id string) (*Prescription, error) {
	var p Prescription
	if err := s.gw.Get(ctx, token, "/prescriptions/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, fmt.Errorf("get prescription %s: %w", id, err)
	}
	return &p, nil
}

// ByOp returns all records sharing an OP number, for the reconciliation
// modal.
func (s *Service) ByOp(ctx context.Context, token, opNo string) ([]Prescription, error) {
	var resp struct {
		Prescriptions []Prescription `json:"prescriptions"`
	}
	if err := s.gw.Get(ctx, token, "/prescriptions/by-op/"+url.PathEscape(opNo), nil, &resp); err != nil {
		return nil, fmt.Errorf("lookup op %s: %w", opNo, err)
	}
	return resp.Prescriptions, nil
}

// Create submits a new record and returns it with the backend-assigned id.
func (s *Service) Create(ctx context.Context, token string, p *Prescription) (*Prescription, error) {
	var created Prescription
	if err := s.gw.Post(ctx, token, "/prescriptions", p, &created); err != nil {
		return nil, fmt.Errorf("create prescription: %w", err)
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, token, id string, p *Prescription) (*Prescription, error) {
	var updated Prescription
	if err := s.gw.Put(ctx, token, "/prescriptions/"+url.PathEscape(id), p, &updated); err != nil {
		return nil, fmt.Errorf("update prescription %s: %w", id, err)
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, token, id string) error {
	if err := s.gw.Delete(ctx, token, "/prescriptions/"+url.PathEscape(id)); err != nil {
		return fmt.Errorf("delete prescription %s: %w", id, err)
	}
	return nil
}

// SearchDrugs returns autocomplete candidates for the editor's drug inputs.
func (s *Service) SearchDrugs(ctx context.Context, token, term string) ([]string, error) {
	var resp struct {
		Drugs []string `json:"drugs"`
	}
	q := url.Values{"search": {term}}
	if err := s.gw.Get(ctx, token, "/drugs", q, &resp); err != nil {
		return nil, fmt.Errorf("search drugs: %w", err)
	}
	return resp.Drugs, nil
}

// ExportExcel streams the caller's full export. The search term never
// narrows it.
func (s *Service) ExportExcel(ctx context.Context, token string) (*gateway.Download, error) {
	dl, err := s.gw.Stream(ctx, token, "/prescriptions/export/excel")
	if err != nil {
		return nil, fmt.Errorf("export excel: %w", err)
	}
	return dl, nil
}

// FetchPDF streams one record's rendered PDF.
func (s *Service) FetchPDF(ctx context.Context, token, id string) (*gateway.Download, error) {
	dl, err := s.gw.Stream(ctx, token, "/prescriptions/"+url.PathEscape(id)+"/pdf")
	if err != nil {
		return nil, fmt.Errorf("fetch pdf %s: %w", id, err)
	}
	return dl, nil
}
