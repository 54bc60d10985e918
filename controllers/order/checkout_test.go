package orderControllers_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/suz-ana-j/eCommerceApp-RestApi/models"
	"github.com/suz-ana-j/eCommerceApp-RestApi/payment"
	"github.com/suz-ana-j/eCommerceApp-RestApi/testutil"
)

type checkoutFixture struct {
	db     *gorm.DB
	router *gin.Engine
	token  string
	userID uint
}

func setupCheckout(t *testing.T, pay payment.Authorizer) checkoutFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	router := testutil.NewRouter(t, db, pay)
	token, userID := testutil.RegisterUser(t, router, "buyer")
	return checkoutFixture{db: db, router: router, token: token, userID: userID}
}

// seedCart creates a cart holding qty units of a product at the given price.
func (f checkoutFixture) seedCart(t *testing.T, price float64, qty int) (models.Cart, models.Product) {
	t.Helper()
	product := models.Product{Name: "filter cartridge", Price: price}
	require.NoError(t, f.db.Create(&product).Error)

	cart := models.Cart{UserID: f.userID}
	require.NoError(t, f.db.Create(&cart).Error)
	require.NoError(t, f.db.Create(&models.CartItem{
		CartID:    cart.ID,
		ProductID: product.ID,
		Quantity:  qty,
	}).Error)
	return cart, product
}

type checkoutResult struct {
	Code  int
	Order models.Order
	Body  string
}

func (f checkoutFixture) checkout(t *testing.T, cartID uint) checkoutResult {
	t.Helper()
	w := testutil.DoJSON(t, f.router, http.MethodPost,
		fmt.Sprintf("/cart/%d/checkout", cartID), nil, testutil.AuthHeader(f.token))

	out := checkoutResult{Code: w.Code, Body: w.Body.String()}

	if w.Code == http.StatusOK {
		var resp struct {
			Message string       `json:"message"`
			Order   models.Order `json:"order"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotEmpty(t, resp.Message)
		out.Order = resp.Order
	}
	return out
}

func TestCheckoutSuccess(t *testing.T) {
	f := setupCheckout(t, testutil.StubAuthorizer{Approved: true})
	cart, product := f.seedCart(t, 10.00, 2)

	res := f.checkout(t, cart.ID)
	require.Equal(t, http.StatusOK, res.Code, res.Body)

	require.Equal(t, cart.ID, res.Order.CartID)
	require.Equal(t, f.userID, res.Order.UserID)
	require.Equal(t, models.OrderStatusCompleted, res.Order.Status)
	require.Equal(t, 20.00, res.Order.TotalAmount)
	require.NotEmpty(t, res.Order.Ref)

	// Exactly one order, snapshot line copied from the cart
	var orders []models.Order
	require.NoError(t, f.db.Preload("Items").Find(&orders).Error)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	require.Equal(t, product.ID, orders[0].Items[0].ProductID)
	require.Equal(t, "filter cartridge", orders[0].Items[0].ProductName)
	require.Equal(t, 10.00, orders[0].Items[0].UnitPrice)
	require.Equal(t, 2, orders[0].Items[0].Quantity)

	// Cart emptied, cart row kept
	var itemCount int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&itemCount).Error)
	require.EqualValues(t, 0, itemCount)
	require.NoError(t, f.db.First(&models.Cart{}, cart.ID).Error)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := setupCheckout(t, testutil.StubAuthorizer{Approved: true})
	cart := models.Cart{UserID: f.userID}
	require.NoError(t, f.db.Create(&cart).Error)

	res := f.checkout(t, cart.ID)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body, "empty cart")

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 0, count, "no order may be created for an empty cart")
}

func TestCheckoutCartNotFound(t *testing.T) {
	f := setupCheckout(t, testutil.StubAuthorizer{Approved: true})

	res := f.checkout(t, 424242)
	require.Equal(t, http.StatusNotFound, res.Code)
	require.Contains(t, res.Body, "cart not found")
}

func TestCheckoutPaymentDeclined(t *testing.T) {
	f := setupCheckout(t, testutil.StubAuthorizer{Approved: false})
	cart, _ := f.seedCart(t, 10.00, 2)

	res := f.checkout(t, cart.ID)
	require.Equal(t, http.StatusBadRequest, res.Code)
	require.Contains(t, res.Body, "payment failed")

	// Declined payment leaves the cart untouched and creates nothing
	var itemCount, orderCount int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&itemCount).Error)
	require.NoError(t, f.db.Model(&models.Order{}).Count(&orderCount).Error)
	require.EqualValues(t, 1, itemCount)
	require.EqualValues(t, 0, orderCount)
}

func TestCheckoutPaymentErrorIsInternal(t *testing.T) {
	f := setupCheckout(t, testutil.StubAuthorizer{Err: errors.New("gateway unreachable")})
	cart, _ := f.seedCart(t, 10.00, 1)

	res := f.checkout(t, cart.ID)
	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.Contains(t, res.Body, "internal server error")
	require.NotContains(t, res.Body, "gateway unreachable", "collaborator detail must not leak")
}

func TestCheckoutTwiceSecondSeesEmptyCart(t *testing.T) {
	f := setupCheckout(t, testutil.StubAuthorizer{Approved: true})
	cart, _ := f.seedCart(t, 10.00, 2)

	first := f.checkout(t, cart.ID)
	require.Equal(t, http.StatusOK, first.Code)

	second := f.checkout(t, cart.ID)
	require.Equal(t, http.StatusBadRequest, second.Code)
	require.Contains(t, second.Body, "empty cart")

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCheckoutConcurrentProducesExactlyOneOrder(t *testing.T) {
	f := setupCheckout(t, testutil.StubAuthorizer{Approved: true})
	cart, _ := f.seedCart(t, 10.00, 2)

	var wg sync.WaitGroup
	results := make([]checkoutResult, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.checkout(t, cart.ID)
		}(i)
	}
	wg.Wait()

	// The write transactions serialize on the store, so one call commits the
	// order and the other re-reads an emptied cart.
	codes := []int{results[0].Code, results[1].Code}
	sort.Ints(codes)
	require.Equal(t, []int{http.StatusOK, http.StatusBadRequest}, codes,
		"bodies: %q / %q", results[0].Body, results[1].Body)
	for _, res := range results {
		if res.Code == http.StatusBadRequest {
			require.Contains(t, res.Body, "empty cart")
		}
	}

	var count int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestOrderReconstructableAfterCartGone(t *testing.T) {
	f := setupCheckout(t, testutil.StubAuthorizer{Approved: true})
	cart, product := f.seedCart(t, 10.00, 2)

	res := f.checkout(t, cart.ID)
	require.Equal(t, http.StatusOK, res.Code)

	// Raise the catalog price and drop the cart entirely; the order's
	// snapshot must not move.
	require.NoError(t, f.db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price", 99.99).Error)
	require.NoError(t, f.db.Delete(&models.Cart{}, cart.ID).Error)

	var order models.Order
	require.NoError(t, f.db.Preload("Items").First(&order, res.Order.ID).Error)
	require.Len(t, order.Items, 1)
	require.Equal(t, 10.00, order.Items[0].UnitPrice)
	require.Equal(t, 20.00, order.TotalAmount)
}
