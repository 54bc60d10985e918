package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/suz-ana-j/eCommerceApp-RestApi/controllers/cart"
	orderControllers "github.com/suz-ana-j/eCommerceApp-RestApi/controllers/order"
	"github.com/suz-ana-j/eCommerceApp-RestApi/events"
	"github.com/suz-ana-j/eCommerceApp-RestApi/middleware"
	"github.com/suz-ana-j/eCommerceApp-RestApi/payment"
)

// SetupCartRoutes registers all "/cart/*" endpoints, including checkout.
func SetupCartRoutes(r *gin.Engine, db *gorm.DB, pay payment.Authorizer, pub *events.Publisher) {
	cartGroup := r.Group("/cart")
	cartGroup.Use(middleware.ValidateToken)
	{
		cartGroup.POST("", cartControllers.CreateCart(db))                      // POST /cart
		cartGroup.POST("/:cartId", cartControllers.AddItem(db))                 // POST /cart/:cartId
		cartGroup.GET("/:cartId", cartControllers.GetCart(db))                  // GET /cart/:cartId
		cartGroup.DELETE("/:cartId", cartControllers.ClearCart(db))             // DELETE /cart/:cartId
		cartGroup.DELETE("/:cartId/items/:itemId", cartControllers.DeleteItem(db)) // DELETE /cart/:cartId/items/:itemId

		cartGroup.POST("/:cartId/checkout", orderControllers.CheckoutHandler(db, pay, pub))
	}
}
