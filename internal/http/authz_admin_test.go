package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Admin-only routes answer 401 to anonymous callers and 403 to customers,
// except sales analytics which answers 403 to both.
func TestAdminRoutesRequireAdmin(t *testing.T) {
	app, _ := newTestApp(t)
	jane := janeToken(t, app)
	admin := adminToken(t, app)

	routes := []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/api/users/all", nil},
		{http.MethodPut, "/api/users/u-jane", map[string]string{"firstName": "J"}},
		{http.MethodDelete, "/api/users/u-jane", nil},
		{http.MethodPatch, "/api/users/u-jane/block", nil},
		{http.MethodPost, "/api/products", map[string]any{"productId": "X-1", "name": "X", "price": 1}},
		{http.MethodPut, "/api/products/COS-SRM-001", map[string]any{"name": "X", "price": 1}},
		{http.MethodDelete, "/api/products/COS-SRM-001", nil},
		{http.MethodPut, "/api/products/COS-SRM-001/stock", map[string]int{"qty": 1}},
		{http.MethodGet, "/api/contacts", nil},
		{http.MethodGet, "/api/dashboard/stats", nil},
		{http.MethodGet, "/api/sales/chart-data", nil},
	}
	for _, r := range routes {
		status, _ := call(t, app, r.method, r.path, "", r.body)
		assert.Equal(t, http.StatusUnauthorized, status, "anonymous %s %s", r.method, r.path)

		status, _ = call(t, app, r.method, r.path, jane, r.body)
		assert.Equal(t, http.StatusForbidden, status, "customer %s %s", r.method, r.path)
	}

	for _, token := range []string{"", jane} {
		status, body := call(t, app, http.MethodGet, "/api/sales/analytics?days=30", token, nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "Access denied. Admin privileges required.", body["message"])
	}

	status, _ := call(t, app, http.MethodGet, "/api/dashboard/stats", admin, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestAdminManagesUsers(t *testing.T) {
	app, _ := newTestApp(t)
	admin := adminToken(t, app)

	status, raw := callRaw(t, app, http.MethodGet, "/api/users/all", admin, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "jane@cosmetica.test")
	assert.NotContains(t, string(raw), "$2a$")

	status, body := call(t, app, http.MethodPut, "/api/users/u-jane", admin, map[string]string{"lastName": "Smith"})
	assert.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Smith", body["user"].(map[string]any)["lastName"])
	assert.Equal(t, "Jane", body["user"].(map[string]any)["firstName"])

	status, _ = call(t, app, http.MethodDelete, "/api/users/u-admin", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, app, http.MethodDelete, "/api/users/u-jane", admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = call(t, app, http.MethodDelete, "/api/users/u-jane", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOnlyAdminsRegisterAdmins(t *testing.T) {
	app, _ := newTestApp(t)
	req := map[string]string{
		"email": "boss@example.com", "password": "Secret123",
		"firstName": "Big", "lastName": "Boss", "role": "admin",
	}
	status, _ := call(t, app, http.MethodPost, "/api/users/register", "", req)
	assert.Equal(t, http.StatusForbidden, status)

	status, body := call(t, app, http.MethodPost, "/api/users/register", adminToken(t, app), req)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "admin", body["user"].(map[string]any)["role"])
}
