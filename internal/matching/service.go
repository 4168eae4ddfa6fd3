package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/fleetledger/internal/ledger"
)

type Repository interface {
	FindMatch(ctx context.Context, companyID uuid.UUID, rawDescription string) (ledger.Category, error)
	CreateMapping(ctx context.Context, companyID uuid.UUID, rawPattern string, category ledger.Category) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to find the ledger category learned for the given raw description.
// Returns empty category if no match found.
func (s *Service) Suggest(ctx context.Context, companyID uuid.UUID, rawDescription string) (ledger.Category, error) {
	return s.repo.FindMatch(ctx, companyID, rawDescription)
}

// Learn remembers that descriptions containing rawPattern belong to category.
func (s *Service) Learn(ctx context.Context, companyID uuid.UUID, rawPattern string, category ledger.Category) error {
	pattern := strings.TrimSpace(rawPattern)
	if pattern == "" {
		return fmt.Errorf("%w: empty pattern", ErrInvalidMapping)
	}

	if !category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidMapping, category)
	}

	return s.repo.CreateMapping(ctx, companyID, pattern, category)
}
