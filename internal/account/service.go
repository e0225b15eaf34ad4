package account

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/solstice-id/solstice/internal/shared"
)

// Service handles the administrative account surface: listing, detail,
// profile updates, enable/disable and soft deletion.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a page of accounts with pagination metadata.
func (s *Service) List(ctx context.Context, page, perPage int) ([]Account, shared.Pagination, error) {
	meta := shared.NewPagination(page, perPage, 0)
	accounts, total, err := s.repo.List(ctx, meta.PerPage, meta.Offset())
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return accounts, shared.NewPagination(meta.Page, meta.PerPage, total), nil
}

// Get returns the public projection of one account.
func (s *Service) Get(ctx context.Context, publicID uuid.UUID) (*Account, error) {
	return s.repo.FindByPublicID(ctx, publicID)
}

// UpdateProfile mutates full name and/or phone.
func (s *Service) UpdateProfile(ctx context.Context, publicID uuid.UUID, update ProfileUpdate) (*Account, error) {
	acc, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateProfile(ctx, acc.ID, update)
}

// Enable re-activates a disabled account.
func (s *Service) Enable(ctx context.Context, publicID uuid.UUID) error {
	return s.setStatus(ctx, publicID, StatusActive)
}

// Disable blocks an account from logging in.
func (s *Service) Disable(ctx context.Context, publicID uuid.UUID) error {
	return s.setStatus(ctx, publicID, StatusDisabled)
}

func (s *Service) setStatus(ctx context.Context, publicID uuid.UUID, status Status) error {
	acc, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	if err := s.repo.SetStatus(ctx, acc.ID, status); err != nil {
		return fmt.Errorf("set status %s: %w", status, err)
	}
	return nil
}

// SoftDelete marks the account deleted. The record stays in storage but is
// excluded from authentication and listing from this point on.
func (s *Service) SoftDelete(ctx context.Context, publicID uuid.UUID) error {
	acc, err := s.repo.FindByPublicID(ctx, publicID)
	if err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, acc.ID)
}
