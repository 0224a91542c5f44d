package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"cosmetica/internal/config"
	"cosmetica/internal/http/handlers"
	"cosmetica/internal/repos"
)

const seedPassword = "Passw0rd!"

// newTestApp builds the full API over a seeded in-memory database.
func newTestApp(t *testing.T, tweak ...func(*config.Config)) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := config.Defaults()
	cfg.DBDSN = ":memory:"
	cfg.RateLimit = 1000
	cfg.LoginRateLimit = 100
	for _, f := range tweak {
		f(&cfg)
	}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return handlers.NewApp(cfg, handlers.NewDeps(db, cfg)), db
}

// call sends a JSON request and returns the status and decoded body.
func call(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	status, raw := callRaw(t, app, method, path, token, body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s %s: %v body=%s", method, path, err, raw)
		}
	}
	return status, out
}

func callRaw(t *testing.T, app *fiber.App, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(buf)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, raw
}

func login(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	status, body := call(t, app, http.MethodPost, "/api/users/login", "", map[string]string{
		"email": email, "password": seedPassword,
	})
	if status != http.StatusOK {
		t.Fatalf("login %s: status %d body=%v", email, status, body)
	}
	tok, _ := body["token"].(string)
	if tok == "" {
		t.Fatalf("login %s: no token", email)
	}
	return tok
}

func adminToken(t *testing.T, app *fiber.App) string { return login(t, app, "admin@cosmetica.test") }
func janeToken(t *testing.T, app *fiber.App) string  { return login(t, app, "jane@cosmetica.test") }

type logEntry struct {
	Level  string                 `json:"level"`
	Action string                 `json:"action"`
	UserID string                 `json:"user_id"`
	Status int                    `json:"status"`
	Err    string                 `json:"err"`
	Fields map[string]interface{} `json:"fields"`
}

// capture logs by temporarily replacing the standard logger output
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0) // remove timestamps to make JSON parseable
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
