package domain

import "time"

// Cart mirrors the server-side cart of the authenticated user.
type Cart struct {
	ID        string     `json:"id,omitempty" bson:"id"`
	UserID    string     `json:"user_id,omitempty" bson:"user_id"`
	Items     []CartItem `json:"items" bson:"items"`
	CreatedAt time.Time  `json:"created_at,omitzero" bson:"created_at"`
	UpdatedAt time.Time  `json:"updated_at,omitzero" bson:"updated_at"`
}

// CartItem is one cart line. (ProductID, Size, Color) identifies a line.
type CartItem struct {
	ProductID string `json:"product_id" bson:"product_id"`
	Quantity  int    `json:"quantity" bson:"quantity"`
	Size      string `json:"size" bson:"size"`
	Color     string `json:"color" bson:"color"`
}

// SameVariant reports whether both items describe the same cart line.
func (i CartItem) SameVariant(other CartItem) bool {
	return i.ProductID == other.ProductID && i.Size == other.Size && i.Color == other.Color
}

// ItemCount is the sum of quantities over all lines.
func (c Cart) ItemCount() int {
	return CountItems(c.Items)
}

func CountItems(items []CartItem) int {
	n := 0
	for _, item := range items {
		n += item.Quantity
	}
	return n
}

// ProductIDs returns the distinct product ids of the cart, in line order.
func (c Cart) ProductIDs() []string {
	seen := make(map[string]struct{}, len(c.Items))
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// Merge adds item to the cart, adding to the quantity of an existing line of
// the same variant.
func (c *Cart) Merge(item CartItem) {
	for i := range c.Items {
		if c.Items[i].SameVariant(item) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// RemoveProduct drops every line of productID regardless of size and color.
func (c *Cart) RemoveProduct(productID string) {
	kept := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept
}
