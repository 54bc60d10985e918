package cartControllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/suz-ana-j/eCommerceApp-RestApi/errs"
	"github.com/suz-ana-j/eCommerceApp-RestApi/models"
)

type CreateCartInput struct {
	UserID uint `json:"user_id" binding:"required"`
}

type AddItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CartItemView is the joined read model returned by GET /cart/:cartId.
type CartItemView struct {
	ID          uint    `json:"id"`
	ProductID   uint    `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
}

func parseCartID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("cartId"), 10, 64)
	if err != nil {
		return 0, errs.E(errs.InvalidArgument, "invalid cart id")
	}
	return uint(id), nil
}

// POST /cart
func CreateCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input CreateCartInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		var user models.User
		if err := db.First(&user, input.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to validate user"})
			return
		}

		cart := models.Cart{UserID: user.ID, Items: []models.CartItem{}}
		if err := db.Create(&cart).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create cart"})
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// POST /cart/:cartId
func AddItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, err := parseCartID(c)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": errs.Message(err)})
			return
		}

		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and quantity are required"})
			return
		}
		if input.Quantity < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be at least 1"})
			return
		}

		var cart models.Cart
		if err := db.First(&cart, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart"})
			return
		}

		var product models.Product
		if err := db.First(&product, input.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "product does not exist"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to validate product"})
			return
		}

		// Always a fresh line; identical products are not merged.
		item := models.CartItem{
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  input.Quantity,
			AddedAt:   time.Now(),
		}
		if err := db.Create(&item).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add item to cart"})
			return
		}

		c.JSON(http.StatusOK, item)
	}
}

// GET /cart/:cartId
//
// A cart that exists but holds no items responds 200 with an empty list;
// 404 is reserved for a missing cart row.
func GetCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, err := parseCartID(c)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": errs.Message(err)})
			return
		}

		var cart models.Cart
		if err := db.First(&cart, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart"})
			return
		}

		items := []CartItemView{}
		if err := db.Table("cart_items").
			Select("cart_items.id, cart_items.product_id, products.name AS product_name, products.price AS unit_price, cart_items.quantity").
			Joins("JOIN products ON products.id = cart_items.product_id").
			Where("cart_items.cart_id = ?", cart.ID).
			Scan(&items).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart items"})
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

// DELETE /cart/:cartId/items/:itemId
func DeleteItem(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, err := parseCartID(c)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": errs.Message(err)})
			return
		}
		itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid item id"})
			return
		}

		result := db.Where("cart_id = ? AND id = ?", cartID, itemID).Delete(&models.CartItem{})
		if result.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete item"})
			return
		}
		if result.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart item deleted"})
	}
}

// DELETE /cart/:cartId
func ClearCart(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, err := parseCartID(c)
		if err != nil {
			c.JSON(errs.HTTPStatus(err), gin.H{"error": errs.Message(err)})
			return
		}

		var cart models.Cart
		if err := db.First(&cart, cartID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch cart"})
			return
		}

		if err := db.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}
