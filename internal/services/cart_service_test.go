package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"belanja/internal/models"
	"belanja/internal/pricing"
	"belanja/internal/repositories"
	"belanja/internal/services"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

type cartFixture struct {
	users    *repositories.MockUserRepository
	products *repositories.MockProductRepository
	carts    *repositories.MockCartRepository
	owner    *models.User
}

func newCartFixture(t *testing.T, products ...models.Product) cartFixture {
	t.Helper()
	ctx := context.Background()
	f := cartFixture{
		users:    repositories.NewMockUserRepository(),
		products: repositories.NewMockProductRepository(),
		owner:    &models.User{Username: "buyer", PasswordHash: "x"},
	}
	f.carts = repositories.NewMockCartRepository(f.users, f.products)
	require.NoError(t, f.users.Create(ctx, f.owner))
	for i := range products {
		require.NoError(t, f.products.Create(ctx, &products[i]))
	}
	return f
}

func TestCartService_GetCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t,
		models.Product{ID: 1, Name: "Mug", Price: 100},
		models.Product{ID: 2, Name: "Laptop", Price: 6000},
	)
	service := services.NewCartService(f.carts, f.products, nil)

	require.NoError(t, service.AddToCart(ctx, f.owner.ID, 1, 2))
	require.NoError(t, service.AddToCart(ctx, f.owner.ID, 2, 1))

	quote, err := service.GetCart(ctx, f.owner.ID)
	require.NoError(t, err)
	require.Len(t, quote.Items, 2)
	assert.Equal(t, "Mug", quote.Items[0].ProductName)
	assert.True(t, decimal.NewFromInt(400).Equal(quote.Items[0].LineTotal))
	assert.Equal(t, "Laptop", quote.Items[1].ProductName)
	assert.True(t, decimal.NewFromInt(7080).Equal(quote.Items[1].LineTotal))
	assert.True(t, decimal.NewFromInt(7480).Equal(quote.Total), "total was %s", quote.Total)
}

func TestCartService_GetCart_Empty(t *testing.T) {
	f := newCartFixture(t)
	service := services.NewCartService(f.carts, f.products, nil)

	quote, err := service.GetCart(context.Background(), f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, quote.Items)
	assert.True(t, quote.Total.IsZero())
}

func TestCartService_GetCart_ManyLines(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, models.Product{ID: 1, Name: "Pen", Price: 1})
	service := services.NewCartService(f.carts, f.products, nil)

	for i := 0; i < 50; i++ {
		require.NoError(t, service.AddToCart(ctx, f.owner.ID, 1, 1))
	}

	quote, err := service.GetCart(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, quote.Items, 50)
	// 50 lines of 1 + 200 flat tax each
	assert.True(t, decimal.NewFromInt(50*201).Equal(quote.Total), "total was %s", quote.Total)
}

func TestCartService_GetCart_MissingProduct(t *testing.T) {
	ctx := context.Background()
	products := repositories.NewMockProductRepository()
	carts := repositories.NewMockCartRepository(nil, nil) // no reference checks
	require.NoError(t, carts.Add(ctx, &models.CartLine{OwnerID: 1, ProductID: 99, ProductQuantity: 1}))

	service := services.NewCartService(carts, products, nil)
	_, err := service.GetCart(ctx, 1)
	assert.ErrorIs(t, err, pricing.ErrProductNotFound)
}

func TestCartService_GetCart_StoreFailure(t *testing.T) {
	ctx := context.Background()
	mockProducts := new(MockProductRepository)
	carts := repositories.NewMockCartRepository(nil, nil)
	require.NoError(t, carts.Add(ctx, &models.CartLine{OwnerID: 1, ProductID: 5, ProductQuantity: 1}))

	mockProducts.On("GetByID", mock.Anything, uint(5)).
		Return(nil, fmt.Errorf("get product by ID 5: %w", repositories.ErrConnectionFailure)).Once()

	service := services.NewCartService(carts, mockProducts, nil)
	_, err := service.GetCart(ctx, 1)
	assert.ErrorIs(t, err, repositories.ErrConnectionFailure)
	assert.NotErrorIs(t, err, pricing.ErrProductNotFound)
	mockProducts.AssertExpectations(t)
}

func TestCartService_AddToCart(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, models.Product{ID: 1, Name: "Mug", Price: 100})
	service := services.NewCartService(f.carts, f.products, nil)

	t.Run("duplicates accumulate", func(t *testing.T) {
		require.NoError(t, service.AddToCart(ctx, f.owner.ID, 1, 1))
		require.NoError(t, service.AddToCart(ctx, f.owner.ID, 1, 1))
		lines, err := f.carts.ListByOwner(ctx, f.owner.ID)
		require.NoError(t, err)
		assert.Len(t, lines, 2)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		assert.ErrorIs(t, service.AddToCart(ctx, f.owner.ID, 1, 0), services.ErrInvalidQuantity)
		assert.ErrorIs(t, service.AddToCart(ctx, f.owner.ID, 1, -3), services.ErrInvalidQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		err := service.AddToCart(ctx, f.owner.ID, 404, 1)
		assert.ErrorIs(t, err, repositories.ErrConstraintViolation)
	})
}

func TestCartService_ClearCart_Idempotent(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, models.Product{ID: 1, Name: "Mug", Price: 100})
	service := services.NewCartService(f.carts, f.products, nil)

	require.NoError(t, service.AddToCart(ctx, f.owner.ID, 1, 3))
	require.NoError(t, service.ClearCart(ctx, f.owner.ID))
	require.NoError(t, service.ClearCart(ctx, f.owner.ID))

	lines, err := f.carts.ListByOwner(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartService_PublishesEvents(t *testing.T) {
	ctx := context.Background()
	f := newCartFixture(t, models.Product{ID: 1, Name: "Mug", Price: 100})
	publisher := new(MockPublisher)
	service := services.NewCartService(f.carts, f.products, publisher)

	var mu sync.Mutex
	var events []services.CartEvent
	record := func(args mock.Arguments) {
		var ev services.CartEvent
		require.NoError(t, json.Unmarshal(args.Get(2).([]byte), &ev))
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	}
	publisher.On("Publish", ctx, services.EventCartItemAdded, mock.Anything).Run(record).Return(nil).Once()
	publisher.On("Publish", ctx, services.EventCartCleared, mock.Anything).Run(record).
		Return(errors.New("broker down")).Once()

	require.NoError(t, service.AddToCart(ctx, f.owner.ID, 1, 2))
	// A broker failure does not fail the clear.
	require.NoError(t, service.ClearCart(ctx, f.owner.ID))
	publisher.AssertExpectations(t)

	require.Len(t, events, 2)
	assert.Equal(t, services.EventCartItemAdded, events[0].Type)
	assert.Equal(t, f.owner.ID, events[0].OwnerID)
	assert.Equal(t, uint(1), events[0].ProductID)
	assert.Equal(t, 2, events[0].Quantity)
	assert.Equal(t, services.EventCartCleared, events[1].Type)
	assert.False(t, events[1].OccurredAt.IsZero())
}
