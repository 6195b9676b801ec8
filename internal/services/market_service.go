package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"cardbazaar/internal/domain"
	"cardbazaar/internal/repos"
)

// MarketService covers the listing lifecycle around the order engine:
// creating and cancelling listings, and the buyer-facing availability check.
type MarketService struct {
	Listings *repos.ListingRepo
	Cards    *repos.CardRepo
	Users    *repos.UserRepo
}

func NewMarketService(listings *repos.ListingRepo, cards *repos.CardRepo, users *repos.UserRepo) *MarketService {
	return &MarketService{Listings: listings, Cards: cards, Users: users}
}

type CreateListingRequest struct {
	SellerID  string
	CardSetID string
	Condition string
	Price     float64
	Quantity  int
}

func (s *MarketService) CreateListing(ctx context.Context, req CreateListingRequest) (*domain.Listing, error) {
	if req.Quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if req.Price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidRequest)
	}
	if req.SellerID == "" || req.CardSetID == "" {
		return nil, fmt.Errorf("%w: seller and printing ids are required", ErrInvalidRequest)
	}
	if req.Condition == "" {
		req.Condition = defaultCondition
	}

	if _, err := s.Users.ByID(req.SellerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSellerNotFound
		}
		return nil, fmt.Errorf("load seller: %w", err)
	}
	if _, err := s.Cards.CardSet(s.Listings.DB(), req.CardSetID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardSetNotFound
		}
		return nil, fmt.Errorf("load printing: %w", err)
	}

	l := domain.Listing{
		ID:               uuid.NewString(),
		SellerID:         req.SellerID,
		CardSetID:        req.CardSetID,
		Condition:        req.Condition,
		Price:            req.Price,
		Quantity:         req.Quantity,
		OriginalQuantity: req.Quantity,
		Status:           domain.ListingActive,
	}
	if err := s.Listings.Insert(l); err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return &l, nil
}

// CancelListing takes an active listing off the market. Pending orders are
// untouched; their units only come back through the order cancel/refund path.
func (s *MarketService) CancelListing(ctx context.Context, listingID, sellerID string) error {
	l, err := s.Listings.ByID(listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrListingNotFound
	}
	if err != nil {
		return fmt.Errorf("load listing: %w", err)
	}
	if l.SellerID != sellerID {
		return ErrNotSeller
	}

	ok, err := s.Listings.CancelListing(s.Listings.DB(), listingID)
	if err != nil {
		return fmt.Errorf("cancel listing: %w", err)
	}
	if !ok {
		return ErrInvalidTransition
	}
	return nil
}

// Availability summarizes remaining stock for buyers.
func (s *MarketService) Availability(listingID string) (domain.Availability, error) {
	l, err := s.Listings.ByID(listingID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Availability{}, ErrListingNotFound
	}
	if err != nil {
		return domain.Availability{}, err
	}

	switch l.Status {
	case domain.ListingCancelled:
		return domain.Availability{Status: "CANCELLED"}, nil
	case domain.ListingSoldOut:
		return domain.Availability{Status: "SOLD_OUT"}, nil
	}
	status := "LOW_STOCK"
	if l.Quantity >= 5 {
		status = "IN_STOCK"
	}
	return domain.Availability{Status: status, Qty: l.Quantity}, nil
}
