package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cfbot/internal/config"
	"github.com/tbourn/cfbot/internal/domain"
	"github.com/tbourn/cfbot/internal/repo"
	"github.com/tbourn/cfbot/internal/services"
)

const testAdminKey = "admin-secret"

type chatNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (n *chatNotifier) Notify(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.texts = append(n.texts, text)
	return nil
}

func newRouter(t *testing.T, mutate func(*config.Config)) (*gin.Engine, *chatNotifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "router.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close(db) })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	cfg := config.Config{
		AdminAPIKey: testAdminKey,
		RateRPS:     100,
		RateBurst:   50,
		OTEL:        config.OTELConfig{ServiceName: "cfbot-test"},
	}
	if mutate != nil {
		mutate(&cfg)
	}

	n := &chatNotifier{}
	r := gin.New()
	RegisterRoutes(r, Deps{Users: &services.WhitelistService{DB: db}, Notifier: n}, cfg)
	return r, n
}

func call(r http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func admin(extra map[string]string) map[string]string {
	h := map[string]string{"X-Admin-Key": testAdminKey}
	for k, v := range extra {
		h[k] = v
	}
	return h
}

func TestRoutes_MetaAndFallbacks(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := call(r, http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Cloudflare Telegram Bot API") {
		t.Fatalf("GET / = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" || w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("missing standard headers: %v", w.Header())
	}
	if got := call(r, http.MethodGet, "/health", "", nil); got.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", got.Code)
	}
	if got := call(r, http.MethodGet, "/metrics", "", nil); got.Code != http.StatusOK || !strings.Contains(got.Body.String(), "http_requests_total") {
		t.Fatalf("GET /metrics = %d", got.Code)
	}
	if got := call(r, http.MethodGet, "/nope", "", nil); got.Code != http.StatusNotFound {
		t.Fatalf("GET /nope = %d", got.Code)
	}
	if got := call(r, http.MethodPut, "/health", "", nil); got.Code != http.StatusMethodNotAllowed {
		t.Fatalf("PUT /health = %d", got.Code)
	}
	if got := call(r, http.MethodGet, "/swagger/index.html", "", nil); got.Code != http.StatusNotFound {
		t.Fatalf("swagger mounted while disabled: %d", got.Code)
	}
}

func TestRoutes_UsersRequireAdminKey(t *testing.T) {
	r, _ := newRouter(t, nil)
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/users"},
		{http.MethodPost, "/api/users"},
		{http.MethodDelete, "/api/users/x"},
	} {
		w := call(r, tc.method, tc.path, "", map[string]string{"X-Admin-Key": "wrong"})
		if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), `"message":"Unauthorized"`) {
			t.Fatalf("%s %s = %d %s", tc.method, tc.path, w.Code, w.Body.String())
		}
	}
}

func TestRoutes_WhitelistLifecycle(t *testing.T) {
	r, _ := newRouter(t, nil)

	w := call(r, http.MethodGet, "/api/users", "", admin(nil))
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("empty list = %d %s", w.Code, w.Body.String())
	}

	if w = call(r, http.MethodPost, "/api/users", `{}`, admin(nil)); w.Code != http.StatusBadRequest {
		t.Fatalf("no identity = %d", w.Code)
	}

	w = call(r, http.MethodPost, "/api/users", `{"username":"@alice"}`, admin(nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	var alice domain.WhitelistEntry
	if err := json.Unmarshal(w.Body.Bytes(), &alice); err != nil || alice.Username == nil || *alice.Username != "alice" {
		t.Fatalf("created = %s", w.Body.String())
	}

	if w = call(r, http.MethodPost, "/api/users", `{"username":"alice"}`, admin(nil)); w.Code != http.StatusConflict {
		t.Fatalf("duplicate = %d", w.Code)
	}

	w = call(r, http.MethodGet, "/api/users", "", admin(nil))
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("no ETag")
	}
	if got := call(r, http.MethodGet, "/api/users", "", admin(map[string]string{"If-None-Match": etag})); got.Code != http.StatusNotModified {
		t.Fatalf("conditional list = %d", got.Code)
	}

	if got := call(r, http.MethodDelete, "/api/users/not-a-uuid", "", admin(nil)); got.Code != http.StatusNotFound {
		t.Fatalf("malformed id = %d", got.Code)
	}
	w = call(r, http.MethodDelete, "/api/users/"+alice.ID, "", admin(nil))
	if w.Code != http.StatusOK || w.Body.String() != `{"success":true}` {
		t.Fatalf("delete = %d %s", w.Code, w.Body.String())
	}
	if got := call(r, http.MethodDelete, "/api/users/"+alice.ID, "", admin(nil)); got.Code != http.StatusNotFound {
		t.Fatalf("second delete = %d", got.Code)
	}
}

func TestRoutes_IdempotentCreateReplays(t *testing.T) {
	r, _ := newRouter(t, nil)
	hdr := admin(map[string]string{"Idempotency-Key": "add-bob"})

	first := call(r, http.MethodPost, "/api/users", `{"telegramId":777}`, hdr)
	second := call(r, http.MethodPost, "/api/users", `{"telegramId":777}`, hdr)
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("codes = %d, %d (%s)", first.Code, second.Code, second.Body.String())
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatal("replay not flagged")
	}
	var a, b domain.WhitelistEntry
	_ = json.Unmarshal(first.Body.Bytes(), &a)
	_ = json.Unmarshal(second.Body.Bytes(), &b)
	if a.ID == "" || a.ID != b.ID {
		t.Fatalf("ids differ: %q vs %q", a.ID, b.ID)
	}

	if w := call(r, http.MethodPost, "/api/users", `{"telegramId":1}`, admin(map[string]string{"Idempotency-Key": "bad key"})); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid key = %d", w.Code)
	}
}

func TestRoutes_RateLimited(t *testing.T) {
	r, _ := newRouter(t, func(c *config.Config) { c.RateRPS = 0.001; c.RateBurst = 1 })
	if w := call(r, http.MethodGet, "/api/users", "", admin(nil)); w.Code != http.StatusOK {
		t.Fatalf("first = %d", w.Code)
	}
	if w := call(r, http.MethodGet, "/api/users", "", admin(nil)); w.Code != http.StatusTooManyRequests {
		t.Fatalf("second = %d", w.Code)
	}
}

func TestRoutes_WebhookNotifies(t *testing.T) {
	r, n := newRouter(t, nil)
	w := call(r, http.MethodPost, "/webhook/test", `{"ping":1}`, map[string]string{"X-Forwarded-For": "198.51.100.4"})
	if w.Code != http.StatusOK || w.Body.String() != `{"ok":true}` {
		t.Fatalf("webhook = %d %s", w.Code, w.Body.String())
	}
	if len(n.texts) != 1 || n.texts[0] != "POST /webhook/test\nIP: 198.51.100.4\nBody: {\"ping\":1}" {
		t.Fatalf("texts = %q", n.texts)
	}
}

func TestRoutes_CORS(t *testing.T) {
	r, _ := newRouter(t, nil)
	w := call(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://admin.local"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-all ACAO = %q", got)
	}

	r, _ = newRouter(t, func(c *config.Config) { c.CORS.AllowedOrigins = []string{"http://admin.local"} })
	w = call(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://admin.local"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://admin.local" {
		t.Fatalf("allowlisted ACAO = %q", got)
	}
	w = call(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://evil.local"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign origin = %d", w.Code)
	}
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("code = %d", w.Code)
	}
}

func TestRoutes_SwaggerWhenEnabled(t *testing.T) {
	r, _ := newRouter(t, func(c *config.Config) { c.SwaggerEnabled = true })
	if w := call(r, http.MethodGet, "/swagger/index.html", "", nil); w.Code != http.StatusOK {
		t.Fatalf("swagger ui = %d", w.Code)
	}
}
