package main

import (
	"log"
	"strings"

	"pos-backend/internal/admin"
	"pos-backend/internal/audit"
	"pos-backend/internal/auth"
	"pos-backend/internal/config"
	"pos-backend/internal/database"
	"pos-backend/internal/inventory"
	"pos-backend/internal/reports"
	"pos-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	productStore := inventory.NewStore(database.DB)
	saleStore := sales.NewStore(database.DB)
	saleService := sales.NewService(productStore, saleStore)
	auditLog := audit.NewLogger(database.DB)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "unexpected server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Catalog
	protected.Get("/products", auth.RequirePermission(auth.PermInventoryView), inventory.ListProductsHandler(productStore))
	protected.Get("/products/low-stock", auth.RequirePermission(auth.PermInventoryView), inventory.LowStockHandler(productStore))
	protected.Get("/products/:id", auth.RequirePermission(auth.PermInventoryView), inventory.GetProductHandler(productStore))
	protected.Post("/products", auth.RequirePermission(auth.PermInventoryEdit), inventory.CreateProductHandler(productStore, auditLog))
	protected.Put("/products/:id", auth.RequirePermission(auth.PermInventoryEdit), inventory.UpdateProductHandler(productStore, auditLog))
	protected.Delete("/products/:id", auth.RequirePermission(auth.PermInventoryEdit), inventory.DeleteProductHandler(productStore, auditLog))
	protected.Post("/products/:id/adjust-stock", auth.RequirePermission(auth.PermInventoryEdit), inventory.AdjustStockHandler(productStore, auditLog))

	// Cart & checkout
	protected.Get("/cart", auth.RequirePermission(auth.PermSalesCreate), sales.GetCartHandler(saleService))
	protected.Post("/cart/items", auth.RequirePermission(auth.PermSalesCreate), sales.AddCartItemHandler(saleService))
	protected.Delete("/cart/items/:productID", auth.RequirePermission(auth.PermSalesCreate), sales.RemoveCartItemHandler(saleService))
	protected.Delete("/cart", auth.RequirePermission(auth.PermSalesCreate), sales.ClearCartHandler(saleService))
	protected.Post("/sales/checkout", auth.RequirePermission(auth.PermSalesCreate), sales.CheckoutHandler(saleService, auditLog))

	// Sales ledger
	protected.Get("/sales", auth.RequirePermission(auth.PermSalesView), sales.ListSalesHandler(saleStore))
	protected.Get("/sales/:id", auth.RequirePermission(auth.PermSalesView), sales.GetSaleHandler(saleStore))

	// Reports
	protected.Get("/reports/sales/summary", auth.RequirePermission(auth.PermSalesView), reports.SalesSummaryHandler(saleStore))
	protected.Get("/reports/sales/daily", auth.RequirePermission(auth.PermSalesView), reports.DailySalesHandler(saleStore))
	protected.Get("/reports/sales/export", auth.RequirePermission(auth.PermSalesView), reports.ExportSalesHandler(saleStore))

	// User management
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequirePermission(auth.PermUsersManage))
	adminRoutes.Get("/users", admin.ListUsersHandler(database.DB))
	adminRoutes.Post("/users", admin.CreateUserHandler(database.DB, auditLog))
	adminRoutes.Put("/users/:id", admin.UpdateUserHandler(database.DB, auditLog))

	// Audit logs
	protected.Get("/audit-logs", auth.RequirePermission(auth.PermUsersManage), audit.ListAuditLogsHandler(database.DB))

	log.Println("server listening on port", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
