package reports

import (
	"fmt"
	"log"
	"time"

	"pos-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/reports/sales/summary?days=30
func SalesSummaryHandler(store *sales.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", 30)
		if days <= 0 || days > 365 {
			return fiber.NewError(fiber.StatusBadRequest, "days must be between 1 and 365")
		}

		to := time.Now()
		from := to.AddDate(0, 0, -days)

		summary, err := store.Summary(from, to)
		if err != nil {
			log.Printf("reports: summary failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "cannot build summary")
		}
		return c.JSON(summary)
	}
}

// GET /api/reports/sales/daily?start=2025-01-01&end=2025-01-31
func DailySalesHandler(store *sales.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseRange(c)
		if err != nil {
			return err
		}

		totals, err := store.DailyTotals(from, to)
		if err != nil {
			log.Printf("reports: daily totals failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "cannot build daily totals")
		}
		return c.JSON(totals)
	}
}

// GET /api/reports/sales/export?start=2025-01-01&end=2025-01-31
// Streams an xlsx with one row per sale.
func ExportSalesHandler(store *sales.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from, to, err := parseRange(c)
		if err != nil {
			return err
		}

		list, err := store.ByDateRange(from, to)
		if err != nil {
			log.Printf("reports: export failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "cannot export sales")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Sales"
		f.SetSheetName("Sheet1", sheet)

		headers := []string{"Sale ID", "Receipt No", "Date", "Operator ID", "Payment Method", "Items", "Total"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		for row, sale := range list {
			values := []any{
				sale.ID,
				sale.ReceiptNo,
				sale.CreatedAt.Format("2006-01-02 15:04:05"),
				sale.UserID,
				string(sale.PaymentMethod),
				len(sale.Items),
				sale.TotalAmount,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
				f.SetCellValue(sheet, cell, v)
			}
		}

		buf, err := f.WriteToBuffer()
		if err != nil {
			log.Printf("reports: write xlsx failed: %v", err)
			return fiber.NewError(fiber.StatusInternalServerError, "cannot export sales")
		}

		filename := fmt.Sprintf("sales_%s_%s.xlsx", from.Format("20060102"), to.Format("20060102"))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
		return c.Send(buf.Bytes())
	}
}

// parseRange reads start/end query params (end is inclusive as a calendar
// day, so the upper bound is end+1d exclusive). Defaults to the last 30 days.
func parseRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now

	if s := c.Query("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "start must be YYYY-MM-DD")
		}
		from = t
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end must be YYYY-MM-DD")
		}
		to = t.AddDate(0, 0, 1)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "end must be after start")
	}
	return from, to, nil
}
