package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
)

var _ port.CartCreator = (*CartsService)(nil)
var _ port.CartModifier = (*CartsService)(nil)

// CartsService implements cart creation and reconciliation. Per-cart
// exclusive access and atomicity are delegated to the CartsStorage
// implementation; this service owns validation and the reconcile rules.
type CartsService struct {
	products port.ProductsReader
	carts    port.CartsStorage
	events   port.EventsPublisher // nil disables analytics
}

func NewCartsService(
	products port.ProductsReader,
	carts port.CartsStorage,
	events port.EventsPublisher,
) CartsService {
	return CartsService{products, carts, events}
}

// CreateCart validates every change, then inserts the cart with its items
// as one unit. If any product id is unknown nothing is created.
// Zero quantities are rejected here so that qty == 0 keeps a single
// meaning (deletion) across the whole system.
func (s CartsService) CreateCart(
	ctx context.Context, changes []domain.CartChange,
) (domain.Cart, error) {
	const op = "CartsService.CreateCart"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(changes) == 0 {
		return domain.Cart{}, domain.Invalid("se requiere un array de items")
	}

	for _, ch := range changes {
		if ch.Qty <= 0 {
			return domain.Cart{}, domain.Invalid(
				"cantidad inválida %d para el producto %d", ch.Qty, ch.ProductID,
			)
		}
	}

	for _, ch := range changes {
		if _, err := s.products.ProductByID(ctx, ch.ProductID); err != nil {
			return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	cart, err := s.carts.CreateCart(ctx, changes)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	s.publish(ctx, domain.EventCartCreated, cart)
	return cart, nil
}

// ModifyCart applies changes in input order against the stored item set:
// qty == 0 deletes the matching item (no-op when absent), qty > 0
// overwrites or inserts. Duplicate product ids resolve to the last
// occurrence. The whole call runs in one exclusive section per cart.
func (s CartsService) ModifyCart(
	ctx context.Context, cartID int64, changes []domain.CartChange,
) (domain.Cart, error) {
	const op = "CartsService.ModifyCart"

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	if len(changes) == 0 {
		return domain.Cart{}, domain.Invalid("se requiere un array de items")
	}

	for _, ch := range changes {
		if ch.Qty < 0 {
			return domain.Cart{}, domain.Invalid(
				"cantidad inválida %d para el producto %d", ch.Qty, ch.ProductID,
			)
		}
	}

	// Deletions are allowed to reference any id, upserts only known products.
	for _, ch := range changes {
		if ch.Qty == 0 {
			continue
		}
		if _, err := s.products.ProductByID(ctx, ch.ProductID); err != nil {
			return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	var items []domain.CartItem
	err := s.carts.InCart(ctx, cartID, func(tx port.CartTx) error {
		for _, ch := range changes {
			var err error
			if ch.Qty == 0 {
				err = tx.DeleteItem(ctx, ch.ProductID)
			} else {
				err = tx.UpsertItem(ctx, ch.ProductID, ch.Qty)
			}
			if err != nil {
				return err
			}
		}
		var err error
		items, err = tx.Items(ctx)
		return err
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	cart := domain.Cart{ID: cartID, Items: items}
	s.publish(ctx, domain.EventCartUpdated, cart)
	return cart, nil
}

func (s CartsService) publish(
	ctx context.Context, kind domain.AssistantEventKind, cart domain.Cart,
) {
	const op = "CartsService.publish"

	if s.events == nil {
		return
	}
	e := domain.AssistantEvent{
		ID:     uuid.NewString(),
		Kind:   kind,
		CartID: cart.ID,
		NItems: len(cart.Items),
		At:     time.Now().UTC(),
	}
	if err := s.events.PublishEvent(ctx, e); err != nil {
		slog.Warn("failed to publish cart event", "op", op, "err", err)
	}
}
