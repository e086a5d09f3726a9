package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
)

var _ port.CartsStorage = (*CartsRepository)(nil)

type CartsRepository struct {
	sqldb sqldb
}

func NewCartsRepository(sqldb sqldb) CartsRepository {
	return CartsRepository{sqldb}
}

func (r CartsRepository) CreateCart(
	ctx context.Context, changes []domain.CartChange,
) (cart domain.Cart, createErr error) {
	const op = "CartsRepository.CreateCart"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if createErr == nil {
			if err := tx.Commit(); err != nil {
				createErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}
		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	err = tx.QueryRowContext(
		ctx, `INSERT INTO carts DEFAULT VALUES RETURNING id;`,
	).Scan(&cart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	insert := `
		INSERT INTO cart_items (cart_id, product_id, qty)
		VALUES ($1, $2, $3)
		RETURNING id;`

	for _, ch := range changes {
		item := domain.CartItem{
			CartID: cart.ID, ProductID: ch.ProductID, Qty: ch.Qty,
		}
		err := tx.QueryRowContext(
			ctx, insert, cart.ID, ch.ProductID, ch.Qty,
		).Scan(&item.ID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
		}
		cart.Items = append(cart.Items, item)
	}
	return cart, nil
}

// InCart locks the cart row for the duration of fn, so concurrent
// reconciliations of one cart serialize while other carts proceed.
func (r CartsRepository) InCart(
	ctx context.Context, cartID int64, fn func(port.CartTx) error,
) (inErr error) {
	const op = "CartsRepository.InCart"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if inErr == nil {
			if err := tx.Commit(); err != nil {
				inErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}
		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	var id int64
	err = tx.QueryRowContext(
		ctx, `SELECT id FROM carts WHERE id = $1 FOR UPDATE;`, cartID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf(
				"%s: %w", op, &domain.NotFoundError{Resource: "cart", ID: cartID},
			)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := fn(cartTx{tx: tx, cartID: cartID}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type cartTx struct {
	tx     *sql.Tx
	cartID int64
}

func (t cartTx) UpsertItem(ctx context.Context, productID int64, qty int) error {
	const op = "cartTx.UpsertItem"

	query := `
		INSERT INTO cart_items (cart_id, product_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id) DO UPDATE SET qty = EXCLUDED.qty;`

	if _, err := t.tx.ExecContext(ctx, query, t.cartID, productID, qty); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (t cartTx) DeleteItem(ctx context.Context, productID int64) error {
	const op = "cartTx.DeleteItem"

	query := `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2;`

	if _, err := t.tx.ExecContext(ctx, query, t.cartID, productID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (t cartTx) Items(ctx context.Context) ([]domain.CartItem, error) {
	const op = "cartTx.Items"

	query := `
		SELECT id, cart_id, product_id, qty
		FROM cart_items WHERE cart_id = $1
		ORDER BY id ASC;`

	rows, err := t.tx.QueryContext(ctx, query, t.cartID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		err := rows.Scan(&it.ID, &it.CartID, &it.ProductID, &it.Qty)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}
