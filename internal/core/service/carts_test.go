package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nvidela/shop-assistant/internal/adapter/storage"
	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/service"
)

type MockEventsPublisher struct {
	mock.Mock
}

func (p *MockEventsPublisher) PublishEvent(
	ctx context.Context, e domain.AssistantEvent,
) error {
	args := p.Called(ctx, e)
	return args.Error(0)
}

func (p *MockEventsPublisher) Close() {
	p.Called()
}

func seededStorage(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	s := storage.NewMemoryStorage()
	s.SeedProducts(
		domain.Product{Name: "Remera negra", Description: "Algodón", Price: 1500, Stock: 10},
		domain.Product{Name: "Pantalón azul", Description: "Jean", Price: 3200, Stock: 4},
		domain.Product{Name: "Buzo gris", Description: "Frisa", Price: 2700, Stock: 7},
		domain.Product{Name: "Campera", Description: "Inflable", Price: 9800, Stock: 2},
		domain.Product{Name: "Gorra", Description: "Trucker", Price: 900, Stock: 30},
	)
	return s
}

func itemQty(t *testing.T, cart domain.Cart, productID int64) (int, bool) {
	t.Helper()
	for _, it := range cart.Items {
		if it.ProductID == productID {
			return it.Qty, true
		}
	}
	return 0, false
}

func TestCartsServiceCreateCart(t *testing.T) {

	t.Run("CreatesCartWithItems", func(t *testing.T) {
		s := seededStorage(t)
		carts := service.NewCartsService(s, s, nil)

		cart, err := carts.CreateCart(t.Context(), []domain.CartChange{
			{ProductID: 1, Qty: 2},
			{ProductID: 3, Qty: 1},
		})
		require.NoError(t, err)
		assert.NotZero(t, cart.ID)
		require.Len(t, cart.Items, 2)

		qty, ok := itemQty(t, cart, 1)
		require.True(t, ok)
		assert.Equal(t, 2, qty)
	})

	t.Run("EmptyChangesRejected", func(t *testing.T) {
		s := seededStorage(t)
		carts := service.NewCartsService(s, s, nil)

		_, err := carts.CreateCart(t.Context(), nil)
		require.Error(t, err)
		var ve domain.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "se requiere un array de items", ve.Msg)
	})

	t.Run("ZeroQtyRejected", func(t *testing.T) {
		s := seededStorage(t)
		carts := service.NewCartsService(s, s, nil)

		_, err := carts.CreateCart(t.Context(), []domain.CartChange{
			{ProductID: 1, Qty: 0},
		})
		require.Error(t, err)
		var ve domain.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("UnknownProductCreatesNothing", func(t *testing.T) {
		s := seededStorage(t)
		carts := service.NewCartsService(s, s, nil)

		_, err := carts.CreateCart(t.Context(), []domain.CartChange{
			{ProductID: 1, Qty: 2},
			{ProductID: 99, Qty: 1},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)

		// The hybrid change set must not leave a partial cart behind.
		_, err = carts.ModifyCart(t.Context(), 1, []domain.CartChange{
			{ProductID: 1, Qty: 1},
		})
		assert.ErrorIs(t, err, domain.ErrCartNotFound)
	})

	t.Run("PublishesCreatedEvent", func(t *testing.T) {
		s := seededStorage(t)
		events := new(MockEventsPublisher)
		events.On("PublishEvent", mock.Anything, mock.MatchedBy(
			func(e domain.AssistantEvent) bool {
				return e.Kind == domain.EventCartCreated && e.NItems == 1
			},
		)).Return(nil)
		carts := service.NewCartsService(s, s, events)

		_, err := carts.CreateCart(t.Context(), []domain.CartChange{
			{ProductID: 2, Qty: 3},
		})
		require.NoError(t, err)
		events.AssertExpectations(t)
	})
}

func TestCartsServiceModifyCart(t *testing.T) {

	newCart := func(t *testing.T) (service.CartsService, domain.Cart) {
		t.Helper()
		s := seededStorage(t)
		carts := service.NewCartsService(s, s, nil)
		cart, err := carts.CreateCart(t.Context(), []domain.CartChange{
			{ProductID: 5, Qty: 2},
		})
		require.NoError(t, err)
		return carts, cart
	}

	t.Run("OverwriteAndInsert", func(t *testing.T) {
		carts, cart := newCart(t)

		got, err := carts.ModifyCart(t.Context(), cart.ID, []domain.CartChange{
			{ProductID: 5, Qty: 4},
			{ProductID: 2, Qty: 1},
		})
		require.NoError(t, err)
		require.Len(t, got.Items, 2)

		qty, ok := itemQty(t, got, 5)
		require.True(t, ok)
		assert.Equal(t, 4, qty)

		qty, ok = itemQty(t, got, 2)
		require.True(t, ok)
		assert.Equal(t, 1, qty)
	})

	t.Run("ZeroQtyDeletes", func(t *testing.T) {
		carts, cart := newCart(t)

		got, err := carts.ModifyCart(t.Context(), cart.ID, []domain.CartChange{
			{ProductID: 5, Qty: 0},
		})
		require.NoError(t, err)
		assert.Empty(t, got.Items)
	})

	t.Run("DeleteAbsentIsNoOp", func(t *testing.T) {
		carts, cart := newCart(t)

		got, err := carts.ModifyCart(t.Context(), cart.ID, []domain.CartChange{
			{ProductID: 3, Qty: 0},
		})
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, int64(5), got.Items[0].ProductID)
	})

	t.Run("DeleteThenReAdd", func(t *testing.T) {
		carts, cart := newCart(t)

		got, err := carts.ModifyCart(t.Context(), cart.ID, []domain.CartChange{
			{ProductID: 5, Qty: 0},
			{ProductID: 5, Qty: 3},
		})
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 3, got.Items[0].Qty)
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		carts, cart := newCart(t)

		got, err := carts.ModifyCart(t.Context(), cart.ID, []domain.CartChange{
			{ProductID: 5, Qty: 10},
			{ProductID: 5, Qty: 1},
		})
		require.NoError(t, err)
		require.Len(t, got.Items, 1)
		assert.Equal(t, 1, got.Items[0].Qty)
	})

	t.Run("Idempotent", func(t *testing.T) {
		carts, cart := newCart(t)
		changes := []domain.CartChange{
			{ProductID: 5, Qty: 4},
			{ProductID: 2, Qty: 0},
			{ProductID: 3, Qty: 1},
		}

		first, err := carts.ModifyCart(t.Context(), cart.ID, changes)
		require.NoError(t, err)
		second, err := carts.ModifyCart(t.Context(), cart.ID, changes)
		require.NoError(t, err)

		require.Len(t, second.Items, len(first.Items))
		for _, it := range first.Items {
			qty, ok := itemQty(t, second, it.ProductID)
			require.True(t, ok)
			assert.Equal(t, it.Qty, qty)
		}
	})

	t.Run("NegativeQtyRejected", func(t *testing.T) {
		carts, cart := newCart(t)

		_, err := carts.ModifyCart(t.Context(), cart.ID, []domain.CartChange{
			{ProductID: 5, Qty: -2},
		})
		require.Error(t, err)
		var ve domain.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("EmptyChangesRejected", func(t *testing.T) {
		carts, cart := newCart(t)

		_, err := carts.ModifyCart(t.Context(), cart.ID, nil)
		require.Error(t, err)
		var ve domain.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("UnknownProductUpsertRejected", func(t *testing.T) {
		carts, cart := newCart(t)

		_, err := carts.ModifyCart(t.Context(), cart.ID, []domain.CartChange{
			{ProductID: 99, Qty: 1},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("UnknownCart", func(t *testing.T) {
		carts, _ := newCart(t)

		_, err := carts.ModifyCart(t.Context(), 404, []domain.CartChange{
			{ProductID: 5, Qty: 1},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrCartNotFound)
	})
}
