package service

import (
	"context"
	"fmt"

	"github.com/nvidela/shop-assistant/internal/core/domain"
	"github.com/nvidela/shop-assistant/internal/core/port"
)

var _ port.ProductsProvider = (*CatalogService)(nil)

type CatalogService struct {
	products port.ProductsReader
}

func NewCatalogService(products port.ProductsReader) CatalogService {
	return CatalogService{products}
}

func (s CatalogService) ProductByID(
	ctx context.Context, id int64,
) (domain.Product, error) {
	const op = "CatalogService.ProductByID"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	p, err := s.products.ProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s CatalogService) SearchProducts(
	ctx context.Context, query string,
) ([]domain.Product, error) {
	const op = "CatalogService.SearchProducts"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ps, err := s.products.SearchProducts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}
