package ports

import (
	"context"

	"ozon-order-bot/internal/features/orders/domain"
)

// OrderProvider defines the interface for retrieving postings from the seller platform.
// This is a Secondary Port (Driven Port).
type OrderProvider interface {
	// ListPostings retrieves postings in the given status, up to limit.
	ListPostings(ctx context.Context, status domain.Status, limit int) ([]domain.Posting, error)

	// GetPosting retrieves a single posting by its posting number.
	GetPosting(ctx context.Context, postingNumber string) (*domain.Posting, error)

	// ShipPosting assembles the posting into the given packages.
	// Each package is a set of product quantities keyed by SKU.
	ShipPosting(ctx context.Context, postingNumber string, packages []domain.Package) error

	// PackageLabel fetches the shipping label PDF for the given postings.
	PackageLabel(ctx context.Context, postingNumbers []string) ([]byte, error)

	// HealthCheck verifies that the seller API is reachable and credentials are valid.
	HealthCheck(ctx context.Context) error
}

// OrderStore persists the set of posting numbers already notified.
// Backed by durable storage surviving process restarts.
type OrderStore interface {
	// HasSeen reports whether the posting number was already notified.
	HasSeen(ctx context.Context, postingNumber string) (bool, error)

	// SeenStatus returns the status recorded at notification time,
	// and whether the posting number is present at all.
	SeenStatus(ctx context.Context, postingNumber string) (domain.Status, bool, error)

	// MarkSeen records that the posting was notified with the given status.
	// Marking an already-seen posting updates its status (idempotent per id).
	MarkSeen(ctx context.Context, postingNumber string, status domain.Status) error

	// Count returns the number of postings notified so far.
	Count(ctx context.Context) (int64, error)
}
