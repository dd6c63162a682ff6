package sales

import (
	"sync"

	"pos-backend/internal/models"
)

// Cart is the in-memory draft of a sale. It exclusively owns its line items
// until checkout and never touches storage; stock checks run against the
// product values the caller read. A cart belongs to exactly one operator.
type Cart struct {
	mu    sync.Mutex
	items []models.SaleItem
}

// AddProduct merges the quantity into an existing line or appends a new one
// snapshotting the product's current name and price. The combined quantity is
// checked against the quantity-on-hand the caller just read; the commit
// re-checks against live stock anyway.
func (c *Cart) AddProduct(p *models.Product, qty int) error {
	if qty < 1 {
		return &models.ValidationError{Field: "quantity", Reason: "must be at least 1"}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			combined := c.items[i].Quantity + qty
			if combined > p.Quantity {
				return &models.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   combined,
					Available:   p.Quantity,
				}
			}
			c.items[i].Quantity = combined
			return nil
		}
	}

	if qty > p.Quantity {
		return &models.InsufficientStockError{
			ProductID:   p.ID,
			ProductName: p.Name,
			Requested:   qty,
			Available:   p.Quantity,
		}
	}

	c.items = append(c.items, models.SaleItem{
		ProductID:   p.ID,
		ProductName: p.Name, // snapshot, see models.SaleItem
		Quantity:    qty,
		UnitPrice:   p.Price,
	})
	return nil
}

// RemoveProduct drops the line entirely when qty is nil or covers the whole
// line, and decrements it otherwise. ErrNotInCart when the product has no
// line.
func (c *Cart) RemoveProduct(productID uint, qty *int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID != productID {
			continue
		}
		if qty == nil || *qty >= c.items[i].Quantity {
			c.items = append(c.items[:i], c.items[i+1:]...)
		} else if *qty > 0 {
			c.items[i].Quantity -= *qty
		}
		return nil
	}
	return models.ErrNotInCart
}

// Total is always recomputed from the lines, never cached.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, it := range c.items {
		total += it.Total()
	}
	return total
}

// Items returns a copy of the draft lines.
func (c *Cart) Items() []models.SaleItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.SaleItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// CartRegistry hands out one cart per operator. Carts are never shared
// between operators.
type CartRegistry struct {
	mu    sync.Mutex
	carts map[uint]*Cart
}

func NewCartRegistry() *CartRegistry {
	return &CartRegistry{carts: make(map[uint]*Cart)}
}

func (r *CartRegistry) For(operatorID uint) *Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[operatorID]
	if !ok {
		cart = &Cart{}
		r.carts[operatorID] = cart
	}
	return cart
}

// Reset empties the operator's cart in place, e.g. after a committed sale.
// Clearing instead of swapping keeps callers holding the cart pointer valid.
func (r *CartRegistry) Reset(operatorID uint) {
	r.mu.Lock()
	cart, ok := r.carts[operatorID]
	r.mu.Unlock()
	if ok {
		cart.Clear()
	}
}
