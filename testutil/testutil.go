// Package testutil holds shared fixtures for handler tests: an isolated
// in-memory store, a fully wired router, and request helpers.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/suz-ana-j/eCommerceApp-RestApi/events"
	"github.com/suz-ana-j/eCommerceApp-RestApi/models"
	"github.com/suz-ana-j/eCommerceApp-RestApi/payment"
	"github.com/suz-ana-j/eCommerceApp-RestApi/routes"
)

// NewTestDB opens a fresh shared in-memory sqlite database and migrates
// the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// _txlock=immediate serializes write transactions at BEGIN; without it
	// two concurrent deferred transactions take shared-cache read locks and
	// deadlock on the write upgrade, which _busy_timeout does not cover.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000&_txlock=immediate", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Category{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderLine{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// NewRouter wires the full route surface against the given store and
// payment authorizer. The event publisher stays disabled.
func NewRouter(t *testing.T, db *gorm.DB, pay payment.Authorizer) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ADMIN_API_KEY", "test-api-key")

	gin.SetMode(gin.TestMode)
	r := gin.New()
	routes.SetupRoutes(r, db, pay, events.NewPublisherFromEnv())
	return r
}

// DoJSON performs a request with a JSON body and returns the recorder.
func DoJSON(t *testing.T, r *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// RegisterUser creates a user through the auth endpoint and returns its
// bearer token and id.
func RegisterUser(t *testing.T, r *gin.Engine, username string) (token string, userID uint) {
	t.Helper()

	w := DoJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
		"username": username,
		"password": "hunter22",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("register %q: status %d, body %s", username, w.Code, w.Body.String())
	}

	var out struct {
		Token string `json:"token"`
		User  struct {
			ID uint `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return out.Token, out.User.ID
}

// AuthHeader builds the bearer header map for a token.
func AuthHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// APIKeyHeader builds the admin header map matching NewRouter's key.
func APIKeyHeader() map[string]string {
	return map[string]string{"X-API-KEY": "test-api-key"}
}

// StubAuthorizer is a canned payment collaborator.
type StubAuthorizer struct {
	Approved bool
	Err      error
}

func (s StubAuthorizer) Authorize(context.Context, float64) (bool, error) {
	return s.Approved, s.Err
}
