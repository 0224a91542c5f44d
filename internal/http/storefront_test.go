package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewsAndContacts(t *testing.T) {
	app, _ := newTestApp(t)
	admin := adminToken(t, app)

	status, body := call(t, app, http.MethodPost, "/api/reviews", "", map[string]any{
		"name": "Nila", "product": "Vitamin C Serum", "review": "Lovely glow", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Len(t, body["review"].(map[string]any)["date"], len("2006-01-02"))

	status, raw := callRaw(t, app, http.MethodGet, "/api/reviews", "", nil)
	require.Equal(t, http.StatusOK, status)
	var reviews []map[string]any
	require.NoError(t, json.Unmarshal(raw, &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, "Lovely glow", reviews[0]["review"])

	status, body = call(t, app, http.MethodPost, "/api/contacts", "", map[string]any{
		"name": "Nila", "email": "nila@example.com", "subject": "Shipping", "message": "Do you ship to Galle?",
	})
	require.Equal(t, http.StatusCreated, status, body)
	id := body["contact"].(map[string]any)["id"].(string)

	status, body = call(t, app, http.MethodGet, "/api/contacts/"+id, admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Shipping", body["subject"])

	status, _ = call(t, app, http.MethodDelete, "/api/contacts/"+id, admin, nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = call(t, app, http.MethodGet, "/api/contacts/"+id, admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Contact not found", body["message"])
}

func TestDashboardAndSales(t *testing.T) {
	app, _ := newTestApp(t)
	admin := adminToken(t, app)
	jane := janeToken(t, app)

	status, body := call(t, app, http.MethodPost, "/api/orders", jane, janeOrder())
	require.Equal(t, http.StatusCreated, status, body)

	status, body = call(t, app, http.MethodGet, "/api/dashboard/stats", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 6, body["totalProducts"])
	assert.EqualValues(t, 1, body["totalUsers"])
	assert.EqualValues(t, 1, body["totalOrders"])
	assert.EqualValues(t, 1, body["pendingOrders"])

	status, body = call(t, app, http.MethodGet, "/api/sales/chart-data", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	counts := map[string]float64{}
	for _, row := range body["chartData"].([]any) {
		r := row.(map[string]any)
		counts[r["product"].(string)] = r["count"].(float64)
	}
	assert.Equal(t, 2.0, counts["Serum"])
	assert.Equal(t, 1.0, counts["Lipstick"])
	assert.Equal(t, 0.0, counts["Cream"])

	status, body = call(t, app, http.MethodGet, "/api/sales/analytics?days=30", admin, nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 30, body["dateRange"].(map[string]any)["days"])
	assert.Len(t, body["dailyTrend"], 1)

	status, body = call(t, app, http.MethodGet, "/api/sales/analytics?days=9999", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 7, body["dateRange"].(map[string]any)["days"])
}
