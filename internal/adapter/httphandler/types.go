package httphandler

import "github.com/nvidela/shop-assistant/internal/core/domain"

type (
	Product struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Stock       int     `json:"stock"`
	}

	Cart struct {
		ID    int64      `json:"id"`
		Items []CartItem `json:"items"`
	}

	CartItem struct {
		ID        int64 `json:"id"`
		CartID    int64 `json:"cartId"`
		ProductID int64 `json:"productId"`
		Qty       int   `json:"qty"`
	}

	ItemChange struct {
		ProductID int64 `json:"product_id"`
		Qty       int   `json:"qty"`
	}

	CartBody struct {
		Items []ItemChange `json:"items"`
	}

	ChatRequest struct {
		Message string `json:"message"`
		Mode    string `json:"mode"`
	}

	ChatResponse struct {
		Reply string `json:"reply"`
	}

	ErrorResponse struct {
		Error string `json:"error"`
	}
)

func toProductJSON(p domain.Product) Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}

func toCartJSON(c domain.Cart) Cart {
	cart := Cart{ID: c.ID, Items: make([]CartItem, 0, len(c.Items))}
	for _, it := range c.Items {
		cart.Items = append(cart.Items, CartItem{
			ID:        it.ID,
			CartID:    it.CartID,
			ProductID: it.ProductID,
			Qty:       it.Qty,
		})
	}
	return cart
}

func toChanges(items []ItemChange) []domain.CartChange {
	changes := make([]domain.CartChange, 0, len(items))
	for _, it := range items {
		changes = append(changes, domain.CartChange{
			ProductID: it.ProductID, Qty: it.Qty,
		})
	}
	return changes
}
