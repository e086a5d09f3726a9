package port

import (
	"context"

	"github.com/nvidela/shop-assistant/internal/core/domain"
)

// Outbound ports implemented by adapters.

type ProductsReader interface {
	// ProductByID returns domain.ErrProductNotFound for an unknown id.
	ProductByID(ctx context.Context, id int64) (domain.Product, error)
	// SearchProducts filters case-insensitively on name or description
	// substring. An empty query returns the whole catalog in storage order.
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}

// CartTx is the item-level view of one cart inside an exclusive section.
type CartTx interface {
	UpsertItem(ctx context.Context, productID int64, qty int) error
	DeleteItem(ctx context.Context, productID int64) error
	Items(ctx context.Context) ([]domain.CartItem, error)
}

type CartsStorage interface {
	// CreateCart inserts a cart with its items as one atomic unit.
	CreateCart(ctx context.Context, changes []domain.CartChange) (domain.Cart, error)
	// InCart runs fn with exclusive access to cartID. Mutations are
	// committed only when fn returns nil. Returns domain.ErrCartNotFound
	// for an unknown cart.
	InCart(ctx context.Context, cartID int64, fn func(CartTx) error) error
}

type TextGenerator interface {
	// Generate performs exactly one provider call. Failures are
	// *domain.ModelError values.
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}

type EventsPublisher interface {
	PublishEvent(ctx context.Context, e domain.AssistantEvent) error
	Close()
}

// Inbound ports implemented by core services.

type ProductsProvider interface {
	ProductByID(ctx context.Context, id int64) (domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}

type CartCreator interface {
	CreateCart(ctx context.Context, changes []domain.CartChange) (domain.Cart, error)
}

type CartModifier interface {
	ModifyCart(ctx context.Context, cartID int64, changes []domain.CartChange) (domain.Cart, error)
}

type AssistantChat interface {
	// Reply runs the full interpret-and-dispatch pipeline.
	Reply(ctx context.Context, message string) (string, error)
	// PlainReply forwards the message with the natural-language prompt
	// and returns the raw model text.
	PlainReply(ctx context.Context, message string) (string, error)
}
