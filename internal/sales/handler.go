package sales

import (
	"errors"
	"fmt"
	"log"

	"pos-backend/internal/audit"
	"pos-backend/internal/auth"
	"pos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CartItemResponse struct {
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

type CartResponse struct {
	Items []CartItemResponse `json:"items"`
	Total float64            `json:"total"`
}

type AddCartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type CheckoutRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method"`
}

type SaleResponse struct {
	ID            uint                 `json:"id"`
	ReceiptNo     string               `json:"receipt_no"`
	UserID        uint                 `json:"user_id"`
	TotalAmount   float64              `json:"total_amount"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	CreatedAt     string               `json:"created_at"`
	Items         []CartItemResponse   `json:"items"`
}

func toCartItems(items []models.SaleItem) []CartItemResponse {
	out := make([]CartItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, CartItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Total:       it.Total(),
		})
	}
	return out
}

func toSaleResponse(sale *models.Sale) SaleResponse {
	return SaleResponse{
		ID:            sale.ID,
		ReceiptNo:     sale.ReceiptNo,
		UserID:        sale.UserID,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		CreatedAt:     sale.CreatedAt.Format("2006-01-02 15:04:05"),
		Items:         toCartItems(sale.Items),
	}
}

// mapError separates business-rule failures (4xx, message kept) from
// infrastructure failures (logged, generic 500 so the operator retries).
func mapError(op string, err error) error {
	var ve *models.ValidationError
	var ise *models.InsufficientStockError
	switch {
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Error())
	case errors.As(err, &ise):
		return fiber.NewError(fiber.StatusConflict, ise.Error())
	case errors.Is(err, models.ErrEmptyCart):
		return fiber.NewError(fiber.StatusBadRequest, "cart has no items")
	case errors.Is(err, models.ErrNotInCart):
		return fiber.NewError(fiber.StatusNotFound, "product is not in the cart")
	case errors.Is(err, models.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	case errors.Is(err, models.ErrSaleNotFound):
		return fiber.NewError(fiber.StatusNotFound, "sale not found")
	case models.IsBusinessError(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	log.Printf("sales: %s failed: %v", op, err)
	return fiber.NewError(fiber.StatusInternalServerError, "storage error, try again")
}

// GET /api/cart
func GetCartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		cart := svc.Cart(op.ID)
		return c.JSON(CartResponse{
			Items: toCartItems(cart.Items()),
			Total: cart.Total(),
		})
	}
}

// POST /api/cart/items
func AddCartItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		var body AddCartItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.ProductID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "product_id is required")
		}

		if err := svc.AddToCart(op.ID, body.ProductID, body.Quantity); err != nil {
			return mapError("add to cart", err)
		}

		cart := svc.Cart(op.ID)
		return c.JSON(CartResponse{
			Items: toCartItems(cart.Items()),
			Total: cart.Total(),
		})
	}
}

// DELETE /api/cart/items/:productID?quantity=2
// Without quantity the whole line goes away.
func RemoveCartItemHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		productID, err := c.ParamsInt("productID")
		if err != nil || productID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var qty *int
		if qStr := c.Query("quantity"); qStr != "" {
			var q int
			if _, err := fmt.Sscan(qStr, &q); err != nil || q < 1 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid quantity")
			}
			qty = &q
		}

		if err := svc.RemoveFromCart(op.ID, uint(productID), qty); err != nil {
			return mapError("remove from cart", err)
		}

		cart := svc.Cart(op.ID)
		return c.JSON(CartResponse{
			Items: toCartItems(cart.Items()),
			Total: cart.Total(),
		})
	}
}

// DELETE /api/cart
func ClearCartHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		svc.ResetCart(op.ID)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/sales/checkout
func CheckoutHandler(svc *Service, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		var body CheckoutRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		sale, err := svc.Checkout(op.ID, body.PaymentMethod)
		if err != nil {
			return mapError("checkout", err)
		}

		// The committed sale replaces the draft.
		svc.ResetCart(op.ID)

		auditLog.Write(audit.Entry{
			UserID:      op.ID,
			UserName:    op.Username,
			EntityType:  "sale",
			EntityID:    sale.ID,
			Action:      models.AuditActionSale,
			Description: fmt.Sprintf("sale %s, %d items, total %.2f", sale.ReceiptNo, len(sale.Items), sale.TotalAmount),
			After:       sale,
		})

		return c.Status(fiber.StatusCreated).JSON(toSaleResponse(sale))
	}
}

// GET /api/sales?limit=20&offset=0
func ListSalesHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 20)
		offset := c.QueryInt("offset", 0)

		sales, err := store.List(limit, offset)
		if err != nil {
			return mapError("list", err)
		}

		res := make([]SaleResponse, 0, len(sales))
		for i := range sales {
			res = append(res, toSaleResponse(&sales[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/sales/:id
func GetSaleHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid sale id")
		}

		sale, err := store.GetByID(uint(id))
		if err != nil {
			return mapError("get", err)
		}
		return c.JSON(toSaleResponse(sale))
	}
}
