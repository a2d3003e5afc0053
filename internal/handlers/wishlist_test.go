package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// A read failure must surface as a server error; it must not be mistaken for
// an empty wishlist.
func TestGetWishlistUnreachableDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)

	client, err := mongo.Connect(context.Background(), options.Client().
		ApplyURI("mongodb://127.0.0.1:1").
		SetServerSelectionTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("connect setup failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	db := client.Database("wishlist_test")

	r := gin.New()
	r.GET("/user/wishlist", func(c *gin.Context) {
		c.Set("userId", primitive.NewObjectID())
	}, GetWishlist(db))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/user/wishlist", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for unreachable database, got %d body=%s", w.Code, w.Body.String())
	}
}
