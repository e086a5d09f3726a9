package domain

type (
	Cart struct {
		ID    int64
		Items []CartItem
	}

	CartItem struct {
		ID        int64
		CartID    int64
		ProductID int64
		Qty       int
	}

	// CartChange is one requested quantity for a product.
	// Qty == 0 means "remove the item".
	CartChange struct {
		ProductID int64
		Qty       int
	}
)
