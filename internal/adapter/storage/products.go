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

var _ port.ProductsReader = (*ProductsRepository)(nil)

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) ProductByID(
	ctx context.Context, id int64,
) (domain.Product, error) {
	const op = "ProductsRepository.ProductByID"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, name, description, price, stock
		FROM products WHERE id = $1;`

	var p domain.Product
	err := r.sqldb.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, fmt.Errorf(
				"%s: %w", op, &domain.NotFoundError{Resource: "product", ID: id},
			)
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// SearchProducts matches the query case-insensitively against name or
// description. An empty query returns the whole catalog in id order,
// which is insertion order.
func (r ProductsRepository) SearchProducts(
	ctx context.Context, query string,
) ([]domain.Product, error) {
	const op = "ProductsRepository.SearchProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stmt := `
		SELECT id, name, description, price, stock
		FROM products
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
			OR description ILIKE '%' || $1 || '%'
		ORDER BY id ASC;`

	rows, err := r.sqldb.QueryContext(ctx, stmt, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var ps []domain.Product
	for rows.Next() {
		var p domain.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ps = append(ps, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

// InsertProducts bulk-loads catalog rows inside one transaction. Used by
// the importer, not by the request path.
func (r ProductsRepository) InsertProducts(
	ctx context.Context, ps []domain.Product,
) (insertErr error) {
	const op = "ProductsRepository.InsertProducts"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if insertErr == nil {
			if err := tx.Commit(); err != nil {
				insertErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}
		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	query := `
		INSERT INTO products (name, description, price, stock)
		VALUES ($1, $2, $3, $4);`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("%s: failed to prepare stmt: %w", op, err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			log.Error("failed to close prepared stmt", "err", err)
		}
	}()

	for _, p := range ps {
		_, err := stmt.ExecContext(ctx, p.Name, p.Description, p.Price, p.Stock)
		if err != nil {
			return fmt.Errorf("%s: failed to exec: %w", op, err)
		}
	}
	return nil
}
