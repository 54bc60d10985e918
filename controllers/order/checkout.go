package orderControllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/suz-ana-j/eCommerceApp-RestApi/errs"
	"github.com/suz-ana-j/eCommerceApp-RestApi/events"
	"github.com/suz-ana-j/eCommerceApp-RestApi/metrics"
	"github.com/suz-ana-j/eCommerceApp-RestApi/models"
	"github.com/suz-ana-j/eCommerceApp-RestApi/payment"
)

const (
	checkoutTimeout = 15 * time.Second
	paymentTimeout  = 10 * time.Second
)

// pricedLine is a cart line joined with the live product catalog.
type pricedLine struct {
	ProductID   uint
	ProductName string
	UnitPrice   float64
	Quantity    int
}

// Checkout converts a cart into an order:
//
//	Open -> Validating -> PaymentPending -> Completed
//
// with rejection exits before Completed. The order insert, line snapshot
// and cart-item deletion commit as one transaction. The cart row is locked
// FOR UPDATE so that of two concurrent calls only one can commit an order;
// the loser re-reads an emptied cart inside its transaction and fails with
// FailedPrecondition.
func Checkout(ctx context.Context, db *gorm.DB, pay payment.Authorizer, cartID uint) (*models.Order, error) {
	// Open -> Validating
	var cart models.Cart
	if err := db.WithContext(ctx).First(&cart, cartID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.E(errs.NotFound, "cart not found")
		}
		return nil, errs.Wrap(errs.Internal, "load cart", err)
	}

	// Validating -> PaymentPending
	lines, total, err := loadPricedLines(db.WithContext(ctx), cart.ID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, errs.E(errs.FailedPrecondition, "empty cart")
	}

	// PaymentPending -> Completed | Rejected
	payCtx, cancel := context.WithTimeout(ctx, paymentTimeout)
	defer cancel()
	approved, err := pay.Authorize(payCtx, total)
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "payment authorization", err)
	}
	if !approved {
		return nil, errs.E(errs.FailedPrecondition, "payment failed")
	}

	order := models.Order{
		Ref:    uuid.NewString(),
		CartID: cart.ID,
		UserID: cart.UserID,
		Status: models.OrderStatusCompleted,
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Serialize concurrent checkouts on the cart row. sqlite (tests)
		// has no row locks and is single-writer anyway.
		locker := tx
		if tx.Dialector.Name() == "postgres" {
			locker = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var locked models.Cart
		if err := locker.First(&locked, cart.ID).Error; err != nil {
			return err
		}

		// Re-read inside the transaction; a racing checkout that already
		// committed leaves nothing here.
		txLines, txTotal, err := loadPricedLines(tx, cart.ID)
		if err != nil {
			return err
		}
		if len(txLines) == 0 {
			return errs.E(errs.FailedPrecondition, "empty cart")
		}

		for _, line := range txLines {
			order.Items = append(order.Items, models.OrderLine{
				ProductID:   line.ProductID,
				ProductName: line.ProductName,
				UnitPrice:   line.UnitPrice,
				Quantity:    line.Quantity,
			})
		}
		order.TotalAmount = txTotal

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		var e *errs.Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, errs.Wrap(errs.Internal, "checkout transaction", err)
	}

	return &order, nil
}

func loadPricedLines(db *gorm.DB, cartID uint) ([]pricedLine, float64, error) {
	var lines []pricedLine
	if err := db.Table("cart_items").
		Select("cart_items.product_id AS product_id, products.name AS product_name, products.price AS unit_price, cart_items.quantity AS quantity").
		Joins("JOIN products ON products.id = cart_items.product_id").
		Where("cart_items.cart_id = ?", cartID).
		Scan(&lines).Error; err != nil {
		return nil, 0, errs.Wrap(errs.Internal, "load cart items", err)
	}

	var total float64
	for _, line := range lines {
		total += line.UnitPrice * float64(line.Quantity)
	}
	return lines, total, nil
}

// POST /cart/:cartId/checkout
func CheckoutHandler(db *gorm.DB, pay payment.Authorizer, pub *events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		cartID, err := strconv.ParseUint(c.Param("cartId"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cart id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), checkoutTimeout)
		defer cancel()

		order, err := Checkout(ctx, db, pay, uint(cartID))
		if err != nil {
			switch errs.KindOf(err) {
			case errs.FailedPrecondition:
				metrics.CheckoutOutcomes.WithLabelValues("rejected").Inc()
			case errs.NotFound, errs.InvalidArgument:
				metrics.CheckoutOutcomes.WithLabelValues("rejected").Inc()
			default:
				metrics.CheckoutOutcomes.WithLabelValues("error").Inc()
				log.Printf("checkout failed for cart %d: %v", cartID, err)
			}
			c.JSON(errs.HTTPStatus(err), gin.H{"error": errs.Message(err)})
			return
		}

		metrics.CheckoutOutcomes.WithLabelValues("completed").Inc()
		broadcastOrderCompleted(*order)
		if pub.Enabled() {
			if err := pub.OrderCompleted(ctx, *order); err != nil {
				log.Printf("failed to publish order %s: %v", order.Ref, err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "order placed successfully",
			"order":   order,
		})
	}
}
