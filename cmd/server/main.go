package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/freshroot/freshroot-backend/internal/auth"
	"github.com/freshroot/freshroot-backend/internal/category"
	"github.com/freshroot/freshroot-backend/internal/customer"
	"github.com/freshroot/freshroot-backend/internal/dashboard"
	"github.com/freshroot/freshroot-backend/internal/expense"
	"github.com/freshroot/freshroot-backend/internal/inventory"
	"github.com/freshroot/freshroot-backend/internal/product"
	"github.com/freshroot/freshroot-backend/internal/profile"
	"github.com/freshroot/freshroot-backend/internal/reports"
	"github.com/freshroot/freshroot-backend/internal/sale"
	"github.com/freshroot/freshroot-backend/internal/waste"
	"github.com/freshroot/freshroot-backend/pkg/database"
	"github.com/freshroot/freshroot-backend/pkg/middleware"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Setup Gin router
	r := gin.Default()

	// Middleware
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)
		v1.POST("/auth/refresh", authHandler.RefreshToken)

		// Google OAuth routes
		v1.GET("/auth/google", authHandler.GoogleLogin)
		v1.GET("/auth/google/callback", authHandler.GoogleCallback)

		// Protected routes
		protected := v1.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth - get current user
			protected.GET("/auth/me", authHandler.GetMe)

			// Dashboard routes
			dashboardHandler := dashboard.NewHandler(db)
			protected.GET("/dashboard/stats", dashboardHandler.GetStats)
			protected.GET("/dashboard/top-products", dashboardHandler.GetTopProducts)
			protected.GET("/dashboard/recent-sales", dashboardHandler.GetRecentSales)

			// Product routes
			productHandler := product.NewHandler(db)
			protected.GET("/products", productHandler.List)
			protected.POST("/products", productHandler.Create)
			protected.GET("/products/:id", productHandler.Get)
			protected.PUT("/products/:id", productHandler.Update)
			protected.DELETE("/products/:id", productHandler.Delete)
			protected.POST("/products/:id/restock", productHandler.Restock)

			// Category routes
			categoryHandler := category.NewHandler(db)
			protected.GET("/categories", categoryHandler.List)
			protected.POST("/categories", categoryHandler.Create)

			// Sale routes
			saleHandler := sale.NewHandler(db)
			protected.GET("/sales", saleHandler.List)
			protected.POST("/sales", saleHandler.Create)
			protected.POST("/sales/quote", saleHandler.Quote)
			protected.GET("/sales/:id", saleHandler.Get)
			protected.PATCH("/sales/:id/payment", saleHandler.UpdatePayment)

			// Customer routes
			customerHandler := customer.NewHandler(db)
			protected.GET("/customers", customerHandler.List)
			protected.POST("/customers", customerHandler.Create)
			protected.GET("/customers/:id", customerHandler.Get)
			protected.PUT("/customers/:id", customerHandler.Update)
			protected.DELETE("/customers/:id", customerHandler.Delete)
			protected.GET("/customers/:id/stats", customerHandler.GetStats)

			// Expense routes
			expenseHandler := expense.NewHandler(db)
			protected.GET("/expenses", expenseHandler.List)
			protected.POST("/expenses", expenseHandler.Create)
			protected.PUT("/expenses/:id", expenseHandler.Update)
			protected.DELETE("/expenses/:id", expenseHandler.Delete)

			// Waste routes
			wasteHandler := waste.NewHandler(db)
			protected.GET("/waste", wasteHandler.List)
			protected.POST("/waste", wasteHandler.Create)
			protected.POST("/waste/:id/approve", wasteHandler.Approve)
			protected.POST("/waste/:id/reject", wasteHandler.Reject)

			// Inventory routes
			inventoryHandler := inventory.NewHandler(db)
			protected.GET("/inventory", inventoryHandler.GetInventory)
			protected.GET("/inventory/summary", inventoryHandler.GetSummary)
			protected.GET("/inventory/alerts", inventoryHandler.GetAlerts)

			importHandler := inventory.NewImportHandler(db)
			protected.POST("/inventory/import", importHandler.ImportFile)
			protected.GET("/inventory/import/template", importHandler.DownloadTemplate)
			protected.GET("/inventory/export", importHandler.Export)

			// Reports routes
			reportsHandler := reports.NewHandler(db)
			protected.GET("/reports/sales", reportsHandler.GetSalesReport)

			// Profile routes
			profileHandler := profile.NewHandler(db)
			protected.GET("/profile", profileHandler.Get)
			protected.PUT("/profile", profileHandler.Update)
		}
	}

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
