package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"belanja/internal/models"
	"belanja/internal/pricing"
	"belanja/internal/repositories"

	"golang.org/x/sync/errgroup"
)

// productLookupConcurrency bounds parallel product reads while pricing a cart.
const productLookupConcurrency = 8

// Cart event routing keys.
const (
	EventCartItemAdded = "cart.item_added"
	EventCartCleared   = "cart.cleared"
)

// EventPublisher delivers cart events to a broker.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, body []byte) error
}

// CartEvent is the payload published after a cart changes.
type CartEvent struct {
	Type       string    `json:"type"`
	OwnerID    uint      `json:"owner_id"`
	ProductID  uint      `json:"product_id,omitempty"`
	Quantity   int       `json:"quantity,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// CartService handles cart reads, writes and pricing.
type CartService struct {
	carts     repositories.CartRepository
	products  repositories.ProductRepository
	publisher EventPublisher // may be nil
}

// NewCartService creates a new CartService. publisher may be nil.
func NewCartService(carts repositories.CartRepository, products repositories.ProductRepository, publisher EventPublisher) *CartService {
	return &CartService{
		carts:     carts,
		products:  products,
		publisher: publisher,
	}
}

// GetCart prices the owner's cart at current product prices. Products are
// fetched concurrently; pricing starts only after every fetch has returned.
// Lines and prices are not read in one transaction, so a price changing
// between the reads is reflected as-is.
func (s *CartService) GetCart(ctx context.Context, ownerID uint) (pricing.Quote, error) {
	lines, err := s.carts.ListByOwner(ctx, ownerID)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to load cart: %w", err)
	}

	priced := make([]pricing.Line, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(productLookupConcurrency)
	for i, line := range lines {
		priced[i].Cart = line
		g.Go(func() error {
			product, err := s.products.GetByID(gctx, line.ProductID)
			if errors.Is(err, repositories.ErrRecordNotFound) {
				return nil // left nil; PriceCart reports it
			}
			if err != nil {
				return err
			}
			priced[i].Product = product
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to load cart products: %w", err)
	}

	quote, err := pricing.PriceCart(priced)
	if err != nil {
		return pricing.Quote{}, fmt.Errorf("failed to price cart of owner %d: %w", ownerID, err)
	}
	return quote, nil
}

// AddToCart appends a line for productID to the owner's cart.
func (s *CartService) AddToCart(ctx context.Context, ownerID, productID uint, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuantity, quantity)
	}

	line := &models.CartLine{
		OwnerID:         ownerID,
		ProductID:       productID,
		ProductQuantity: quantity,
	}
	if err := s.carts.Add(ctx, line); err != nil {
		return fmt.Errorf("failed to add product %d to cart: %w", productID, err)
	}

	s.publish(ctx, CartEvent{
		Type:      EventCartItemAdded,
		OwnerID:   ownerID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

// ClearCart removes every line from the owner's cart. Clearing an empty cart succeeds.
func (s *CartService) ClearCart(ctx context.Context, ownerID uint) error {
	if err := s.carts.ClearByOwner(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	s.publish(ctx, CartEvent{Type: EventCartCleared, OwnerID: ownerID})
	return nil
}

// publish is best effort: a broker failure is logged and never fails the request.
func (s *CartService) publish(ctx context.Context, event CartEvent) {
	if s.publisher == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()

	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event.Type, err)
		return
	}
	if err := s.publisher.Publish(ctx, event.Type, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for owner %d: %v", event.Type, event.OwnerID, err)
	}
}
