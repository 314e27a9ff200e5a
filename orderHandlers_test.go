package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func statusRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/shop/orders/:id/status", updateOrderStatusHandler())
	return r
}

func putStatus(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPut, "/shop/orders/1/status", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	statusRouter().ServeHTTP(w, req)
	return w
}

func TestUpdateOrderStatus_MissingStatusField(t *testing.T) {
	w := putStatus(t, `{}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Errors  map[string][]string `json:"errors"`
		Message string              `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if msgs := resp.Errors["status"]; len(msgs) != 1 || msgs[0] != "Status is required" {
		t.Fatalf("unexpected status errors: %v", resp.Errors)
	}
}

func TestUpdateOrderStatus_MalformedBody(t *testing.T) {
	w := putStatus(t, `{"status":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestUpdateOrderStatus_UnknownStatus(t *testing.T) {
	w := putStatus(t, `{"status":"Teleported"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if msgs := resp.Errors["status"]; len(msgs) != 1 || msgs[0] != "Unknown order status" {
		t.Fatalf("unexpected status errors: %v", resp.Errors)
	}
}
