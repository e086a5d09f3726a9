package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
)

var _ port.ProductsReader = (*MemoryStorage)(nil)
var _ port.CartsStorage = (*MemoryStorage)(nil)

// MemoryStorage keeps the catalog and carts in process memory. It backs
// the service when no database is configured and all storage-dependent
// tests. Carts carry their own mutex, so reconciliations of different
// carts do not contend.
type MemoryStorage struct {
	mu         sync.RWMutex
	products   []domain.Product
	carts      map[int64]*memCart
	nextCartID int64
	nextItemID int64
}

type memCart struct {
	mu    sync.Mutex
	items []domain.CartItem
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{carts: make(map[int64]*memCart)}
}

// SeedProducts appends catalog rows, assigning ids in insertion order
// when they are zero.
func (s *MemoryStorage) SeedProducts(ps ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range ps {
		if p.ID == 0 {
			p.ID = int64(len(s.products)) + 1
		}
		s.products = append(s.products, p)
	}
}

func (s *MemoryStorage) ProductByID(
	ctx context.Context, id int64,
) (domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, &domain.NotFoundError{Resource: "product", ID: id}
}

func (s *MemoryStorage) SearchProducts(
	ctx context.Context, query string,
) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(query)
	var ps []domain.Product
	for _, p := range s.products {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			ps = append(ps, p)
		}
	}
	return ps, nil
}

func (s *MemoryStorage) CreateCart(
	ctx context.Context, changes []domain.CartChange,
) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextCartID++
	cart := domain.Cart{ID: s.nextCartID}
	for _, ch := range changes {
		s.nextItemID++
		cart.Items = append(cart.Items, domain.CartItem{
			ID:        s.nextItemID,
			CartID:    cart.ID,
			ProductID: ch.ProductID,
			Qty:       ch.Qty,
		})
	}
	s.carts[cart.ID] = &memCart{items: slices.Clone(cart.Items)}
	return cart, nil
}

// InCart serializes on the cart's own mutex. fn works on a copy of the
// item set that replaces the stored one only when fn returns nil.
func (s *MemoryStorage) InCart(
	ctx context.Context, cartID int64, fn func(port.CartTx) error,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	c, ok := s.carts[cartID]
	s.mu.RUnlock()
	if !ok {
		return &domain.NotFoundError{Resource: "cart", ID: cartID}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	work := slices.Clone(c.items)
	tx := &memCartTx{s: s, cartID: cartID, items: &work}
	if err := fn(tx); err != nil {
		return err
	}
	c.items = work
	return nil
}

type memCartTx struct {
	s      *MemoryStorage
	cartID int64
	items  *[]domain.CartItem
}

func (t *memCartTx) UpsertItem(ctx context.Context, productID int64, qty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for i, it := range *t.items {
		if it.ProductID == productID {
			(*t.items)[i].Qty = qty
			return nil
		}
	}

	t.s.mu.Lock()
	t.s.nextItemID++
	id := t.s.nextItemID
	t.s.mu.Unlock()

	*t.items = append(*t.items, domain.CartItem{
		ID:        id,
		CartID:    t.cartID,
		ProductID: productID,
		Qty:       qty,
	})
	return nil
}

func (t *memCartTx) DeleteItem(ctx context.Context, productID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	*t.items = slices.DeleteFunc(*t.items, func(it domain.CartItem) bool {
		return it.ProductID == productID
	})
	return nil
}

func (t *memCartTx) Items(ctx context.Context) ([]domain.CartItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(*t.items), nil
}
