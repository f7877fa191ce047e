package http

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	svc := services.NewTransactionService(repo, nil)
	logger := log.New(log.DefaultConfig())

	srv := NewServer(Config{
		Addr:              ":0",
		SessionTTL:        time.Hour,
		RequestsPerMinute: 10000,
	}, repo, svc, logger)
	t.Cleanup(func() {
		srv.cacheManager.Stop()
		srv.rateLimiter.Stop()
		repo.Close()
	})

	ts := httptest.NewServer(srv.Server.Handler)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	return ts, client
}

func postForm(t *testing.T, client *http.Client, tsURL, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(tsURL+path, form)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func registerAndLogin(t *testing.T, client *http.Client, tsURL, username string) {
	t.Helper()

	resp := postForm(t, client, tsURL, "/register", url.Values{
		"first_name": {"Test"},
		"last_name":  {"User"},
		"username":   {username},
		"email":      {username + "@example.com"},
		"password":   {"secret123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Registration successful")

	resp = postForm(t, client, tsURL, "/login", url.Values{
		"username": {username},
		"password": {"secret123"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Welcome back")
}

func addTransaction(t *testing.T, client *http.Client, tsURL, typ, amount, category, date string) *http.Response {
	t.Helper()
	return postForm(t, client, tsURL, "/transactions/add", url.Values{
		"type":        {typ},
		"amount":      {amount},
		"category":    {category},
		"date":        {date},
		"description": {"test " + category},
	})
}

func TestUnauthenticatedRedirectsToLogin(t *testing.T) {
	ts, client := newTestServer(t)

	for _, path := range []string{"/", "/transactions", "/transactions/add", "/analytics"} {
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		// Client follows the redirect to the login page
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body(t, resp), "Log in", path)
	}
}

func TestRegisterValidation(t *testing.T) {
	ts, client := newTestServer(t)

	resp := postForm(t, client, ts.URL, "/register", url.Values{
		"first_name": {"Test"},
		"username":   {"alice"},
		"email":      {"alice@example.com"},
		"password":   {"secret123"},
	})
	assert.Contains(t, body(t, resp), "All fields are required")
}

func TestDuplicateRegistration(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")

	jar, _ := cookiejar.New(nil)
	other := &http.Client{Jar: jar}
	resp := postForm(t, other, ts.URL, "/register", url.Values{
		"first_name": {"Other"},
		"last_name":  {"User"},
		"username":   {"alice"},
		"email":      {"other@example.com"},
		"password":   {"secret123"},
	})
	assert.Contains(t, body(t, resp), "Username or email already exists")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")

	jar, _ := cookiejar.New(nil)
	fresh := &http.Client{Jar: jar}

	resp := postForm(t, fresh, ts.URL, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	assert.Contains(t, body(t, resp), "Invalid username or password")

	resp = postForm(t, fresh, ts.URL, "/login", url.Values{
		"username": {"nobody"},
		"password": {"secret123"},
	})
	// Unknown user gets the same message as a wrong password
	assert.Contains(t, body(t, resp), "Invalid username or password")
}

func TestDashboardTotals(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")

	resp := addTransaction(t, client, ts.URL, "income", "1000.00", "salary", "2024-01-05")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = addTransaction(t, client, ts.URL, "expense", "200.00", "food", "2024-01-10")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	b := body(t, resp)
	assert.Contains(t, b, "$1000.00")
	assert.Contains(t, b, "$200.00")
	assert.Contains(t, b, "$800.00")
	assert.Contains(t, b, "Food &amp; Dining")
}

func TestCreateTransactionValidation(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")

	tests := []struct {
		name    string
		mutate  func(url.Values)
		wantMsg string
	}{
		{"bad amount", func(f url.Values) { f.Set("amount", "abc") }, "Invalid amount"},
		{"zero amount", func(f url.Values) { f.Set("amount", "0") }, "amount"},
		{"bad date", func(f url.Values) { f.Set("date", "01/10/2024") }, "Invalid date"},
		{"category of wrong type", func(f url.Values) { f.Set("category", "salary") }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := url.Values{
				"type":     {"expense"},
				"amount":   {"12.50"},
				"category": {"food"},
				"date":     {"2024-01-10"},
			}
			tt.mutate(form)
			resp := postForm(t, client, ts.URL, "/transactions/add", form)
			assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
			assert.Contains(t, strings.ToLower(body(t, resp)), strings.ToLower(tt.wantMsg))
		})
	}
}

func TestCreateTransactionKeepsCategorySelection(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")

	resp := postForm(t, client, ts.URL, "/transactions/add", url.Values{
		"type":     {"expense"},
		"amount":   {"abc"},
		"category": {"travel"},
		"date":     {"2024-01-10"},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// The re-rendered form keeps the chosen category selected
	assert.Contains(t, body(t, resp), `value="travel" selected`)
}

func TestTransactionIsolationBetweenUsers(t *testing.T) {
	ts, alice := newTestServer(t)
	registerAndLogin(t, alice, ts.URL, "alice")
	resp := addTransaction(t, alice, ts.URL, "expense", "42.00", "travel", "2024-03-01")
	resp.Body.Close()

	jar, _ := cookiejar.New(nil)
	bob := &http.Client{Jar: jar}
	registerAndLogin(t, bob, ts.URL, "bob")

	resp, err := bob.Get(ts.URL + "/transactions")
	require.NoError(t, err)
	assert.NotContains(t, body(t, resp), "$42.00")

	// Bob cannot delete Alice's transaction either
	resp = postForm(t, bob, ts.URL, "/transactions/1/delete", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp, err = alice.Get(ts.URL + "/transactions")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "$42.00")
}

func TestDeleteTransaction(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")
	resp := addTransaction(t, client, ts.URL, "expense", "9.99", "food", "2024-02-01")
	resp.Body.Close()

	resp = postForm(t, client, ts.URL, "/transactions/1/delete", url.Values{})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body(t, resp), "$9.99")

	resp = postForm(t, client, ts.URL, "/transactions/1/delete", url.Values{})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAnalyticsPage(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")

	addTransaction(t, client, ts.URL, "income", "1000", "salary", "2024-01-05").Body.Close()
	addTransaction(t, client, ts.URL, "expense", "200", "food", "2024-01-10").Body.Close()
	addTransaction(t, client, ts.URL, "expense", "50", "transportation", "2024-02-02").Body.Close()

	resp, err := client.Get(ts.URL + "/analytics")
	require.NoError(t, err)
	b := body(t, resp)
	assert.Contains(t, b, "Food &amp; Dining")
	assert.Contains(t, b, "Transportation")
	assert.Contains(t, b, "2024-01")
	assert.Contains(t, b, "2024-02")
	assert.Contains(t, b, "expense-chart")
}

func TestAnalyticsChartScriptsAreExternal(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")
	addTransaction(t, client, ts.URL, "expense", "200", "food", "2024-01-10").Body.Close()

	resp, err := client.Get(ts.URL + "/analytics")
	require.NoError(t, err)
	b := body(t, resp)

	// The chart data rides in a non-executable JSON block and the bootstrap
	// is served from 'self'; an inline script would be refused under the
	// script-src policy.
	assert.Contains(t, b, `<script type="application/json" id="analytics-data">`)
	assert.Contains(t, b, `src="/static/js/charts.js"`)
	assert.NotContains(t, b, "new Chart(")

	csp := resp.Header.Get("Content-Security-Policy")
	assert.Contains(t, csp, "script-src 'self' https://cdn.jsdelivr.net")
	assert.NotContains(t, csp, "unsafe-inline")
}

func TestAnalyticsCacheInvalidation(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")

	addTransaction(t, client, ts.URL, "expense", "10", "food", "2024-01-10").Body.Close()

	resp, err := client.Get(ts.URL + "/analytics")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "$10.00")

	// A new transaction must show up despite the cache
	addTransaction(t, client, ts.URL, "expense", "5", "food", "2024-01-11").Body.Close()

	resp, err = client.Get(ts.URL + "/analytics")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "$15.00")
}

func TestLogoutEndsSession(t *testing.T) {
	ts, client := newTestServer(t)
	registerAndLogin(t, client, ts.URL, "alice")

	resp, err := client.Get(ts.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(ts.URL + "/")
	require.NoError(t, err)
	assert.Contains(t, body(t, resp), "Log in")
}

func TestHealthAndMetricsEndpoints(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `"status":"ok"`)

	resp, err = client.Get(ts.URL + "/readyz")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), `"status":"ready"`)

	resp, err = client.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	b := body(t, resp)
	assert.Contains(t, b, "http_requests_total")
	assert.Contains(t, b, "transactions_total")
	assert.Contains(t, b, "uptime_seconds")
}

func TestSecurityHeaders(t *testing.T) {
	ts, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/login")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
}
