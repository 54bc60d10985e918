package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/suz-ana-j/eCommerceApp-RestApi/events"
	"github.com/suz-ana-j/eCommerceApp-RestApi/payment"
)

// SetupRoutes is the single entry point that wires up all route groups.
// Collaborators (store handle, payment authorizer, event publisher) are
// passed in explicitly; nothing reads ambient singletons.
func SetupRoutes(r *gin.Engine, db *gorm.DB, pay payment.Authorizer, pub *events.Publisher) {
	// Public auth routes (no middleware)
	SetupAuthRoutes(r, db)

	// Public catalog routes
	SetupProductRoutes(r, db)

	// Cart + checkout (JWT-protected)
	SetupCartRoutes(r, db, pay, pub)

	// Orders (JWT for user-facing reads, API key for the full listing)
	SetupOrderRoutes(r, db)

	// Admin surface (API-key-protected)
	SetupAdminRoutes(r, db)
}
