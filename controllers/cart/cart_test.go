package cartControllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/suz-ana-j/eCommerceApp-RestApi/models"
	"github.com/suz-ana-j/eCommerceApp-RestApi/testutil"
)

type cartFixture struct {
	db     *gorm.DB
	router *gin.Engine
	token  string
	userID uint
}

func setup(t *testing.T) cartFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	router := testutil.NewRouter(t, db, testutil.StubAuthorizer{Approved: true})
	token, userID := testutil.RegisterUser(t, router, "carter")
	return cartFixture{db: db, router: router, token: token, userID: userID}
}

func (f cartFixture) seedProduct(t *testing.T, name string, price float64) models.Product {
	t.Helper()
	product := models.Product{Name: name, Price: price}
	require.NoError(t, f.db.Create(&product).Error)
	return product
}

func (f cartFixture) createCart(t *testing.T) models.Cart {
	t.Helper()
	w := testutil.DoJSON(t, f.router, http.MethodPost, "/cart",
		map[string]uint{"user_id": f.userID}, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var cart models.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.NotZero(t, cart.ID)
	return cart
}

func TestCreateCart(t *testing.T) {
	f := setup(t)

	cart := f.createCart(t)
	require.Equal(t, f.userID, cart.UserID)

	var count int64
	require.NoError(t, f.db.Model(&models.Cart{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateCartUnknownUser(t *testing.T) {
	f := setup(t)

	w := testutil.DoJSON(t, f.router, http.MethodPost, "/cart",
		map[string]uint{"user_id": 9999}, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCartMissingUserID(t *testing.T) {
	f := setup(t)

	w := testutil.DoJSON(t, f.router, http.MethodPost, "/cart",
		map[string]string{}, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCartRequiresToken(t *testing.T) {
	f := setup(t)

	w := testutil.DoJSON(t, f.router, http.MethodPost, "/cart",
		map[string]uint{"user_id": f.userID}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserMayHoldMultipleCarts(t *testing.T) {
	f := setup(t)

	first := f.createCart(t)
	second := f.createCart(t)
	require.NotEqual(t, first.ID, second.ID)

	var count int64
	require.NoError(t, f.db.Model(&models.Cart{}).Where("user_id = ?", f.userID).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestAddItem(t *testing.T) {
	f := setup(t)
	cart := f.createCart(t)
	product := f.seedProduct(t, "kettle", 25.50)

	w := testutil.DoJSON(t, f.router, http.MethodPost, fmt.Sprintf("/cart/%d", cart.ID),
		map[string]any{"product_id": product.ID, "quantity": 2}, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var item models.CartItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))
	require.Equal(t, cart.ID, item.CartID)
	require.Equal(t, product.ID, item.ProductID)
	require.Equal(t, 2, item.Quantity)
}

func TestAddItemInvalidQuantity(t *testing.T) {
	f := setup(t)
	cart := f.createCart(t)
	product := f.seedProduct(t, "kettle", 25.50)

	for _, quantity := range []int{0, -3} {
		w := testutil.DoJSON(t, f.router, http.MethodPost, fmt.Sprintf("/cart/%d", cart.ID),
			map[string]any{"product_id": product.ID, "quantity": quantity}, testutil.AuthHeader(f.token))
		require.Equal(t, http.StatusBadRequest, w.Code, "quantity %d", quantity)
	}

	var count int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Count(&count).Error)
	require.EqualValues(t, 0, count, "no rows may be created for invalid quantities")
}

func TestAddItemCartNotFound(t *testing.T) {
	f := setup(t)
	product := f.seedProduct(t, "kettle", 25.50)

	w := testutil.DoJSON(t, f.router, http.MethodPost, "/cart/424242",
		map[string]any{"product_id": product.ID, "quantity": 1}, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddItemUnknownProduct(t *testing.T) {
	f := setup(t)
	cart := f.createCart(t)

	w := testutil.DoJSON(t, f.router, http.MethodPost, fmt.Sprintf("/cart/%d", cart.ID),
		map[string]any{"product_id": 8888, "quantity": 1}, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddItemDuplicateProductAppends(t *testing.T) {
	f := setup(t)
	cart := f.createCart(t)
	product := f.seedProduct(t, "kettle", 25.50)

	for i := 0; i < 2; i++ {
		w := testutil.DoJSON(t, f.router, http.MethodPost, fmt.Sprintf("/cart/%d", cart.ID),
			map[string]any{"product_id": product.ID, "quantity": 1}, testutil.AuthHeader(f.token))
		require.Equal(t, http.StatusOK, w.Code)
	}

	var count int64
	require.NoError(t, f.db.Model(&models.CartItem{}).
		Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).
		Count(&count).Error)
	require.EqualValues(t, 2, count, "identical products stay as separate lines")
}

func TestGetCartJoinedView(t *testing.T) {
	f := setup(t)
	cart := f.createCart(t)
	product := f.seedProduct(t, "kettle", 25.50)

	w := testutil.DoJSON(t, f.router, http.MethodPost, fmt.Sprintf("/cart/%d", cart.ID),
		map[string]any{"product_id": product.ID, "quantity": 3}, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(t, f.router, http.MethodGet, fmt.Sprintf("/cart/%d", cart.ID),
		nil, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusOK, w.Code)

	var items []struct {
		ProductID   uint    `json:"product_id"`
		ProductName string  `json:"product_name"`
		UnitPrice   float64 `json:"unit_price"`
		Quantity    int     `json:"quantity"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &items))
	require.Len(t, items, 1)
	require.Equal(t, product.ID, items[0].ProductID)
	require.Equal(t, "kettle", items[0].ProductName)
	require.Equal(t, 25.50, items[0].UnitPrice)
	require.Equal(t, 3, items[0].Quantity)
}

func TestGetCartEmptyReturnsEmptyList(t *testing.T) {
	f := setup(t)
	cart := f.createCart(t)

	w := testutil.DoJSON(t, f.router, http.MethodGet, fmt.Sprintf("/cart/%d", cart.ID),
		nil, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, "[]", w.Body.String())
}

func TestGetCartNotFound(t *testing.T) {
	f := setup(t)

	w := testutil.DoJSON(t, f.router, http.MethodGet, "/cart/424242",
		nil, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteItem(t *testing.T) {
	f := setup(t)
	cart := f.createCart(t)
	product := f.seedProduct(t, "kettle", 25.50)

	w := testutil.DoJSON(t, f.router, http.MethodPost, fmt.Sprintf("/cart/%d", cart.ID),
		map[string]any{"product_id": product.ID, "quantity": 1}, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusOK, w.Code)
	var item models.CartItem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &item))

	w = testutil.DoJSON(t, f.router, http.MethodDelete,
		fmt.Sprintf("/cart/%d/items/%d", cart.ID, item.ID), nil, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoJSON(t, f.router, http.MethodDelete,
		fmt.Sprintf("/cart/%d/items/%d", cart.ID, item.ID), nil, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusNotFound, w.Code, "second delete finds nothing")
}

func TestClearCart(t *testing.T) {
	f := setup(t)
	cart := f.createCart(t)
	product := f.seedProduct(t, "kettle", 25.50)

	for i := 0; i < 3; i++ {
		w := testutil.DoJSON(t, f.router, http.MethodPost, fmt.Sprintf("/cart/%d", cart.ID),
			map[string]any{"product_id": product.ID, "quantity": 1}, testutil.AuthHeader(f.token))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := testutil.DoJSON(t, f.router, http.MethodDelete, fmt.Sprintf("/cart/%d", cart.ID),
		nil, testutil.AuthHeader(f.token))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)

	// Cart row survives clearing
	require.NoError(t, f.db.First(&models.Cart{}, cart.ID).Error)
}
