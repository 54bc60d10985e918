package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/suz-ana-j/eCommerceApp-RestApi/controllers/order"
	"github.com/suz-ana-j/eCommerceApp-RestApi/middleware"
)

// SetupOrderRoutes registers the "/orders/*" and "/user/orders" endpoints.
func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")
	{
		// Full listing is an admin concern
		orders.GET("", middleware.ValidateAPIKey, orderControllers.GetAllOrders(db))

		// websocket feed of completed orders
		orders.GET("/ws", orderControllers.OrderFeedHandler)

		orders.GET("/:orderId", middleware.ValidateToken, orderControllers.GetOrderByID(db))
	}

	userGroup := r.Group("/user")
	userGroup.Use(middleware.ValidateToken)
	{
		userGroup.GET("/orders", orderControllers.GetUserOrders(db))
	}
}
