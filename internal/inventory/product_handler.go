package inventory

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"pos-backend/internal/audit"
	"pos-backend/internal/auth"
	"pos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ProductResponse struct {
	ID       uint    `json:"id"`
	Barcode  *string `json:"barcode"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type CreateProductRequest struct {
	Barcode  *string `json:"barcode"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type UpdateProductRequest struct {
	Barcode  *string  `json:"barcode"`
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Quantity *int     `json:"quantity"`
}

type AdjustStockRequest struct {
	Delta int `json:"delta"`
}

func toProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:       p.ID,
		Barcode:  p.Barcode,
		Name:     p.Name,
		Price:    p.Price,
		Quantity: p.Quantity,
	}
}

// mapError translates store errors into HTTP responses. Business-rule
// failures keep their message; infrastructure failures are logged and
// surfaced as a generic retry hint.
func mapError(op string, err error) error {
	var ve *models.ValidationError
	var ise *models.InsufficientStockError
	switch {
	case errors.As(err, &ve):
		return fiber.NewError(fiber.StatusBadRequest, ve.Error())
	case errors.As(err, &ise):
		return fiber.NewError(fiber.StatusConflict, ise.Error())
	case errors.Is(err, models.ErrProductNotFound):
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	case errors.Is(err, models.ErrDuplicateBarcode):
		return fiber.NewError(fiber.StatusConflict, "barcode already in use")
	case errors.Is(err, models.ErrProductReferenced):
		return fiber.NewError(fiber.StatusConflict, "product is referenced by sales and cannot be deleted")
	case models.IsBusinessError(err):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	log.Printf("inventory: %s failed: %v", op, err)
	return fiber.NewError(fiber.StatusInternalServerError, "storage error, try again")
}

// GET /api/products?q=...  or  ?barcode=...
func ListProductsHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if code := strings.TrimSpace(c.Query("barcode")); code != "" {
			p, err := store.GetByBarcode(code)
			if err != nil {
				return mapError("get by barcode", err)
			}
			return c.JSON([]ProductResponse{toProductResponse(p)})
		}

		var (
			products []models.Product
			err      error
		)
		if q := strings.TrimSpace(c.Query("q")); q != "" {
			products, err = store.Search(q)
		} else {
			products, err = store.List()
		}
		if err != nil {
			return mapError("list", err)
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/products/low-stock?threshold=10
func LowStockHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold := 10
		if t := c.Query("threshold"); t != "" {
			v, err := strconv.Atoi(t)
			if err != nil || v < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "invalid threshold")
			}
			threshold = v
		}

		products, err := store.LowStock(threshold)
		if err != nil {
			return mapError("low stock", err)
		}

		res := make([]ProductResponse, 0, len(products))
		for i := range products {
			res = append(res, toProductResponse(&products[i]))
		}
		return c.JSON(res)
	}
}

// GET /api/products/:id
func GetProductHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		p, err := store.GetByID(uint(id))
		if err != nil {
			return mapError("get", err)
		}
		return c.JSON(toProductResponse(p))
	}
}

// POST /api/products
func CreateProductHandler(store *Store, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		p := models.Product{
			Barcode:  normalizeBarcode(body.Barcode),
			Name:     strings.TrimSpace(body.Name),
			Price:    body.Price,
			Quantity: body.Quantity,
		}

		if _, err := store.Create(&p); err != nil {
			return mapError("create", err)
		}

		auditLog.Write(audit.Entry{
			UserID:      op.ID,
			UserName:    op.Username,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionCreate,
			Description: "created product " + p.Name,
			After:       p,
		})

		return c.Status(fiber.StatusCreated).JSON(toProductResponse(&p))
	}
}

// PUT /api/products/:id
func UpdateProductHandler(store *Store, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		p, err := store.GetByID(uint(id))
		if err != nil {
			return mapError("get", err)
		}
		before := *p

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		if body.Barcode != nil {
			p.Barcode = normalizeBarcode(body.Barcode)
		}
		if body.Name != nil {
			p.Name = strings.TrimSpace(*body.Name)
		}
		if body.Price != nil {
			p.Price = *body.Price
		}
		if body.Quantity != nil {
			p.Quantity = *body.Quantity
		}

		if err := store.Update(p); err != nil {
			return mapError("update", err)
		}

		auditLog.Write(audit.Entry{
			UserID:      op.ID,
			UserName:    op.Username,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionUpdate,
			Description: "updated product " + p.Name,
			Before:      before,
			After:       *p,
		})

		return c.JSON(toProductResponse(p))
	}
}

// POST /api/products/:id/adjust-stock
func AdjustStockHandler(store *Store, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.Delta == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "delta must not be zero")
		}

		if err := store.AdjustQuantity(uint(id), body.Delta); err != nil {
			return mapError("adjust stock", err)
		}

		p, err := store.GetByID(uint(id))
		if err != nil {
			return mapError("get", err)
		}

		auditLog.Write(audit.Entry{
			UserID:      op.ID,
			UserName:    op.Username,
			EntityType:  "product",
			EntityID:    p.ID,
			Action:      models.AuditActionAdjust,
			Description: "adjusted stock of " + p.Name + " by " + strconv.Itoa(body.Delta),
			After:       p,
		})

		return c.JSON(toProductResponse(p))
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(store *Store, auditLog *audit.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		op, err := auth.OperatorFromCtx(c)
		if err != nil {
			return err
		}

		id, err := c.ParamsInt("id")
		if err != nil || id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid product id")
		}

		p, err := store.GetByID(uint(id))
		if err != nil {
			return mapError("get", err)
		}

		if err := store.Delete(uint(id)); err != nil {
			return mapError("delete", err)
		}

		auditLog.Write(audit.Entry{
			UserID:      op.ID,
			UserName:    op.Username,
			EntityType:  "product",
			EntityID:    uint(id),
			Action:      models.AuditActionDelete,
			Description: "deleted product " + p.Name,
			Before:      *p,
		})

		return c.SendStatus(fiber.StatusNoContent)
	}
}

func normalizeBarcode(code *string) *string {
	if code == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*code)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
