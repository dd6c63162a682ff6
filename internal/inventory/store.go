package inventory

import (
	"errors"
	"fmt"
	"strings"

	"pos-backend/internal/models"

	"gorm.io/gorm"
)

// Store is the sole authority over catalog data and stock counts.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetByID(id uint) (*models.Product, error) {
	var p models.Product
	if err := s.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return &p, nil
}

func (s *Store) GetByBarcode(code string) (*models.Product, error) {
	var p models.Product
	if err := s.db.First(&p, "barcode = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product by barcode %q: %w", code, err)
	}
	return &p, nil
}

// Search matches name or barcode by substring, ordered by name.
func (s *Store) Search(query string) ([]models.Product, error) {
	var products []models.Product
	like := "%" + query + "%"
	err := s.db.
		Where("name LIKE ? OR barcode LIKE ?", like, like).
		Order("name asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	return products, nil
}

func (s *Store) List() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Order("name asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *Store) LowStock(threshold int) ([]models.Product, error) {
	var products []models.Product
	err := s.db.
		Where("quantity <= ?", threshold).
		Order("quantity asc").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list low-stock products: %w", err)
	}
	return products, nil
}

func (s *Store) Create(p *models.Product) (uint, error) {
	if err := validateProduct(p); err != nil {
		return 0, err
	}

	if err := s.db.Create(p).Error; err != nil {
		// The unique index is the sole authority on barcode collisions;
		// a racing insert surfaces here as a conflict, not a storage failure.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, models.ErrDuplicateBarcode
		}
		return 0, fmt.Errorf("create product: %w", err)
	}
	return p.ID, nil
}

func (s *Store) Update(p *models.Product) error {
	if p.ID == 0 {
		return &models.ValidationError{Field: "id", Reason: "is required"}
	}
	if err := validateProduct(p); err != nil {
		return err
	}

	res := s.db.Model(&models.Product{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"barcode":  p.Barcode,
			"name":     p.Name,
			"price":    p.Price,
			"quantity": p.Quantity,
		})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return models.ErrDuplicateBarcode
		}
		return fmt.Errorf("update product %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

// AdjustQuantity applies a stock delta (positive restock, negative sale) as a
// single conditional UPDATE. The non-negative check happens inside the
// statement, so two concurrent adjustments can never both pass it on a stale
// read.
func (s *Store) AdjustQuantity(id uint, delta int) error {
	res := s.db.Model(&models.Product{}).
		Where("id = ? AND quantity + ? >= 0", id, delta).
		Update("quantity", gorm.Expr("quantity + ?", delta))
	if res.Error != nil {
		return fmt.Errorf("adjust quantity of product %d: %w", id, res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// Distinguish "unknown product" from "would go negative".
	p, err := s.GetByID(id)
	if err != nil {
		return err
	}
	return &models.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   -delta,
		Available:   p.Quantity,
	}
}

// Delete refuses to remove a product that historical sales reference; the
// line-item snapshot keeps old receipts readable, but the FK must stay valid.
func (s *Store) Delete(id uint) error {
	var refs int64
	if err := s.db.Model(&models.SaleItem{}).Where("product_id = ?", id).Count(&refs).Error; err != nil {
		return fmt.Errorf("check sale references for product %d: %w", id, err)
	}
	if refs > 0 {
		return models.ErrProductReferenced
	}

	res := s.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrProductNotFound
	}
	return nil
}

func validateProduct(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if p.Price < 0 {
		return &models.ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if p.Quantity < 0 {
		return &models.ValidationError{Field: "quantity", Reason: "must not be negative"}
	}
	return nil
}
