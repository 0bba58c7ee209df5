package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ozon-order-bot/internal/core/cache"
	"ozon-order-bot/internal/core/logger"
	"ozon-order-bot/internal/features/orders/domain"
	"ozon-order-bot/internal/features/orders/ports"

	"go.uber.org/zap"
)

// detailTTL is how long posting details stay cached between menu taps.
const detailTTL = 2 * time.Minute

// ErrPostingNotFound is returned when the posting does not exist.
var ErrPostingNotFound = errors.New("posting not found")

// OrderService handles the business logic for listing and managing postings.
type OrderService struct {
	// provider is the interface for fetching postings from the seller platform.
	provider ports.OrderProvider
	// cache keeps posting details warm between interactive lookups.
	cache cache.Cache
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(provider ports.OrderProvider, c cache.Cache) *OrderService {
	return &OrderService{
		provider: provider,
		cache:    c,
	}
}

// ListAwaitingPackaging returns postings ready to be packaged.
func (s *OrderService) ListAwaitingPackaging(ctx context.Context, limit int) ([]domain.Posting, error) {
	postings, err := s.provider.ListPostings(ctx, domain.StatusAwaitingPackaging, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list packaging postings: %w", err)
	}
	return postings, nil
}

// ListAwaitingDeliver returns postings packaged and awaiting carrier handover.
func (s *OrderService) ListAwaitingDeliver(ctx context.Context, limit int) ([]domain.Posting, error) {
	postings, err := s.provider.ListPostings(ctx, domain.StatusAwaitingDeliver, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list deliver postings: %w", err)
	}
	return postings, nil
}

// GetPosting returns a single posting, served from cache when possible.
// Cache failures fall through to the API silently.
func (s *OrderService) GetPosting(ctx context.Context, postingNumber string) (*domain.Posting, error) {
	if postingNumber == "" {
		return nil, ErrPostingNotFound
	}

	key := detailCacheKey(postingNumber)

	if data, err := s.cache.Get(ctx, key); err == nil {
		var posting domain.Posting
		if err := json.Unmarshal(data, &posting); err == nil {
			return &posting, nil
		}
		// Corrupt entry: drop it and refetch.
		s.cache.Delete(ctx, key)
	} else if !errors.Is(err, cache.ErrNotFound) {
		logger.Get().Warn("Posting cache read failed",
			zap.String("posting_number", postingNumber),
			zap.Error(err),
		)
	}

	posting, err := s.provider.GetPosting(ctx, postingNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get posting: %w", err)
	}
	if posting == nil || posting.PostingNumber == "" {
		return nil, ErrPostingNotFound
	}

	if data, err := json.Marshal(posting); err == nil {
		if err := s.cache.Set(ctx, key, data, detailTTL); err != nil {
			logger.Get().Warn("Posting cache write failed",
				zap.String("posting_number", postingNumber),
				zap.Error(err),
			)
		}
	}

	return posting, nil
}

// Ship assembles the posting into a single package containing all products.
func (s *OrderService) Ship(ctx context.Context, postingNumber string) error {
	posting, err := s.GetPosting(ctx, postingNumber)
	if err != nil {
		return err
	}

	if err := s.provider.ShipPosting(ctx, postingNumber, posting.SinglePackage()); err != nil {
		return fmt.Errorf("failed to ship posting: %w", err)
	}

	// The posting moves to awaiting_deliver; the cached detail is stale now.
	s.cache.Delete(ctx, detailCacheKey(postingNumber))
	return nil
}

// Label fetches the shipping label PDF for a posting.
func (s *OrderService) Label(ctx context.Context, postingNumber string) ([]byte, error) {
	data, err := s.provider.PackageLabel(ctx, []string{postingNumber})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch label: %w", err)
	}
	return data, nil
}

// detailCacheKey builds the cache key for a posting detail entry.
func detailCacheKey(postingNumber string) string {
	return "posting:" + postingNumber
}
