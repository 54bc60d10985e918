package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/suz-ana-j/eCommerceApp-RestApi/controllers/order"
	productControllers "github.com/suz-ana-j/eCommerceApp-RestApi/controllers/product"
	"github.com/suz-ana-j/eCommerceApp-RestApi/middleware"
)

// SetupAdminRoutes registers the "/admin/*" endpoints. API-key-protected.
func SetupAdminRoutes(r *gin.Engine, db *gorm.DB) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.ValidateAPIKey)
	{
		adminGroup.POST("/products", productControllers.CreateProduct(db))
		adminGroup.PUT("/products/:id", productControllers.UpdateProduct(db))
		adminGroup.DELETE("/products/:id", productControllers.DeleteProduct(db))

		adminGroup.POST("/categories", productControllers.CreateCategory(db))

		adminGroup.GET("/orders/export", orderControllers.ExportOrdersToExcel(db))
	}
}
