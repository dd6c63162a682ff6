package sales

import (
	"errors"
	"fmt"
	"time"

	"pos-backend/internal/models"

	"gorm.io/gorm"
)

// Store is the persistent ledger of sales.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateSaleWithItems writes the sale row, all its line items and the
// matching stock decrements in one transaction. Every decrement is a
// conditional UPDATE guarded by quantity >= wanted, so a concurrent sale
// cannot drive stock negative; zero affected rows aborts the transaction and
// nothing survives.
func (s *Store) CreateSaleWithItems(sale *models.Sale) error {
	if len(sale.Items) == 0 {
		return models.ErrEmptyCart
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sale).Error; err != nil {
			return fmt.Errorf("insert sale: %w", err)
		}

		for i := range sale.Items {
			it := &sale.Items[i]
			res := tx.Model(&models.Product{}).
				Where("id = ? AND quantity >= ?", it.ProductID, it.Quantity).
				Update("quantity", gorm.Expr("quantity - ?", it.Quantity))
			if res.Error != nil {
				return fmt.Errorf("decrement stock of product %d: %w", it.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				var p models.Product
				if err := tx.First(&p, "id = ?", it.ProductID).Error; err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return models.ErrProductNotFound
					}
					return fmt.Errorf("re-read product %d: %w", it.ProductID, err)
				}
				return &models.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: it.ProductName,
					Requested:   it.Quantity,
					Available:   p.Quantity,
				}
			}
		}

		return nil
	})
}

func (s *Store) GetByID(id uint) (*models.Sale, error) {
	var sale models.Sale
	err := s.db.Preload("Items").First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale %d: %w", id, err)
	}
	return &sale, nil
}

// List returns sales newest first.
func (s *Store) List(limit, offset int) ([]models.Sale, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var sales []models.Sale
	err := s.db.Preload("Items").
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

func (s *Store) ByDateRange(from, to time.Time) ([]models.Sale, error) {
	var sales []models.Sale
	err := s.db.Preload("Items").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at desc").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("list sales by date range: %w", err)
	}
	return sales, nil
}

type PaymentBreakdown struct {
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

type TopProduct struct {
	ProductID     uint    `json:"product_id"`
	ProductName   string  `json:"product_name"`
	TotalQuantity int64   `json:"total_quantity"`
	TotalRevenue  float64 `json:"total_revenue"`
}

type Summary struct {
	TotalSales     int64                                     `json:"total_sales"`
	TotalRevenue   float64                                   `json:"total_revenue"`
	AverageSale    float64                                   `json:"average_sale"`
	PaymentMethods map[models.PaymentMethod]PaymentBreakdown `json:"payment_methods"`
	TopProducts    []TopProduct                              `json:"top_products"`
}

// Summary aggregates sales between from (inclusive) and to (exclusive). Top
// products group by the line-item name snapshot, so renamed or deleted
// products still show up as they were sold.
func (s *Store) Summary(from, to time.Time) (*Summary, error) {
	var head struct {
		TotalSales   int64
		TotalRevenue float64
		AverageSale  float64
	}
	err := s.db.Model(&models.Sale{}).
		Select("COUNT(*) AS total_sales, COALESCE(SUM(total_amount), 0) AS total_revenue, COALESCE(AVG(total_amount), 0) AS average_sale").
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&head).Error
	if err != nil {
		return nil, fmt.Errorf("sales summary: %w", err)
	}

	summary := &Summary{
		TotalSales:     head.TotalSales,
		TotalRevenue:   head.TotalRevenue,
		AverageSale:    head.AverageSale,
		PaymentMethods: make(map[models.PaymentMethod]PaymentBreakdown),
	}

	var byMethod []struct {
		PaymentMethod models.PaymentMethod
		Count         int64
		Total         float64
	}
	err = s.db.Model(&models.Sale{}).
		Select("payment_method, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS total").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("payment_method").
		Scan(&byMethod).Error
	if err != nil {
		return nil, fmt.Errorf("payment breakdown: %w", err)
	}
	for _, row := range byMethod {
		summary.PaymentMethods[row.PaymentMethod] = PaymentBreakdown{Count: row.Count, Total: row.Total}
	}

	err = s.db.Model(&models.SaleItem{}).
		Select("sale_items.product_id, sale_items.product_name, SUM(sale_items.quantity) AS total_quantity, SUM(sale_items.quantity * sale_items.unit_price) AS total_revenue").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.created_at >= ? AND sales.created_at < ?", from, to).
		Group("sale_items.product_id, sale_items.product_name").
		Order("total_revenue desc").
		Limit(5).
		Scan(&summary.TopProducts).Error
	if err != nil {
		return nil, fmt.Errorf("top products: %w", err)
	}

	return summary, nil
}

type DailyTotal struct {
	Day   string  `json:"day"` // "2006-01-02"
	Count int64   `json:"count"`
	Total float64 `json:"total"`
}

// DailyTotals buckets sales per calendar day. Bucketing happens in Go to
// keep the query portable between postgres and the sqlite test databases.
func (s *Store) DailyTotals(from, to time.Time) ([]DailyTotal, error) {
	var sales []models.Sale
	err := s.db.
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at asc").
		Find(&sales).Error
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}

	var out []DailyTotal
	for _, sale := range sales {
		day := sale.CreatedAt.Format("2006-01-02")
		if len(out) == 0 || out[len(out)-1].Day != day {
			out = append(out, DailyTotal{Day: day})
		}
		out[len(out)-1].Count++
		out[len(out)-1].Total += sale.TotalAmount
	}
	return out, nil
}
