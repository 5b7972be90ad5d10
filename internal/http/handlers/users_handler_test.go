package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cfbot/internal/domain"
	"github.com/tbourn/cfbot/internal/http/middleware"
	"github.com/tbourn/cfbot/internal/services"
)

type stubUsers struct {
	items    []domain.WhitelistEntry
	listErr  error
	count    int64
	latest   *time.Time
	statsErr error

	created   services.CreateInput
	createOut *domain.WhitelistEntry
	replayed  bool
	createErr error

	deletedID string
	deleteErr error
}

func (s *stubUsers) List(context.Context) ([]domain.WhitelistEntry, error) {
	return s.items, s.listErr
}

func (s *stubUsers) Stats(context.Context) (int64, *time.Time, error) {
	return s.count, s.latest, s.statsErr
}

func (s *stubUsers) Create(_ context.Context, in services.CreateInput) (*domain.WhitelistEntry, bool, error) {
	s.created = in
	return s.createOut, s.replayed, s.createErr
}

func (s *stubUsers) Delete(_ context.Context, id string) error {
	s.deletedID = id
	return s.deleteErr
}

func usersRouter(svc WhitelistService) *gin.Engine {
	h := New(svc, nil)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.GET("/api/users", h.ListUsers)
	r.POST("/api/users", h.CreateUser)
	r.DELETE("/api/users/:id", h.DeleteUser)
	return r
}

func send(r http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
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

func envelope(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &e); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return e
}

func TestListUsers_ETagAndNotModified(t *testing.T) {
	ts := time.Unix(1700000000, 5)
	alice := "alice"
	svc := &stubUsers{
		items:  []domain.WhitelistEntry{{ID: "b", Username: &alice}},
		count:  1,
		latest: &ts,
	}
	r := usersRouter(svc)

	w := send(r, http.MethodGet, "/api/users", "", nil)
	etag := w.Header().Get("ETag")
	if w.Code != http.StatusOK || !strings.HasPrefix(etag, `W/"users:1:`) {
		t.Fatalf("code=%d etag=%q", w.Code, etag)
	}
	var got []domain.WhitelistEntry
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || len(got) != 1 || *got[0].Username != "alice" {
		t.Fatalf("body = %s (%v)", w.Body.String(), err)
	}

	w = send(r, http.MethodGet, "/api/users", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified || w.Body.Len() != 0 {
		t.Fatalf("conditional: %d %q", w.Code, w.Body.String())
	}

	w = send(r, http.MethodGet, "/api/users", "", map[string]string{"If-None-Match": `W/"stale"`})
	if w.Code != http.StatusOK {
		t.Fatalf("stale etag: %d", w.Code)
	}
}

func TestListUsers_Errors(t *testing.T) {
	svc := &stubUsers{statsErr: errors.New("no stats"), listErr: errors.New("db down")}
	w := send(usersRouter(svc), http.MethodGet, "/api/users", "", nil)
	if w.Code != http.StatusInternalServerError || w.Header().Get("ETag") != "" {
		t.Fatalf("code=%d etag=%q", w.Code, w.Header().Get("ETag"))
	}
	if e := envelope(t, w); e.Code != ErrCodeListFailed {
		t.Fatalf("envelope = %+v", e)
	}
}

func TestCreateUser_Success(t *testing.T) {
	id := int64(42)
	svc := &stubUsers{createOut: &domain.WhitelistEntry{ID: "u1", TelegramID: &id}}
	w := send(usersRouter(svc), http.MethodPost, "/api/users",
		`{"username":"@bob","telegramId":42}`, map[string]string{"Idempotency-Key": "k-1"})

	if w.Code != http.StatusCreated {
		t.Fatalf("code = %d %s", w.Code, w.Body.String())
	}
	if svc.created.Username != "@bob" || svc.created.TelegramID == nil || *svc.created.TelegramID != 42 || svc.created.IdempotencyKey != "k-1" {
		t.Fatalf("input = %+v", svc.created)
	}
	if w.Header().Get("Idempotent-Replay") != "" {
		t.Fatal("fresh create flagged as replay")
	}
	var got domain.WhitelistEntry
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil || got.ID != "u1" {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestCreateUser_Replay(t *testing.T) {
	svc := &stubUsers{createOut: &domain.WhitelistEntry{ID: "u1"}, replayed: true}
	w := send(usersRouter(svc), http.MethodPost, "/api/users", `{"username":"bob"}`, nil)
	if w.Code != http.StatusCreated || w.Header().Get("Idempotent-Replay") != "true" {
		t.Fatalf("code=%d hdr=%q", w.Code, w.Header().Get("Idempotent-Replay"))
	}
}

func TestCreateUser_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{"bad json", `{"username":`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"wrong type", `{"telegramId":"abc"}`, nil, http.StatusBadRequest, ErrCodeBadRequest},
		{"no identity", `{}`, services.ErrIdentityRequired, http.StatusBadRequest, ErrCodeBadRequest},
		{"exists", `{"username":"bob"}`, services.ErrUserExists, http.StatusConflict, ErrCodeConflict},
		{"store", `{"username":"bob"}`, errors.New("disk full"), http.StatusInternalServerError, ErrCodeCreateFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := send(usersRouter(&stubUsers{createErr: tc.err}), http.MethodPost, "/api/users", tc.body, nil)
			if w.Code != tc.status {
				t.Fatalf("code = %d", w.Code)
			}
			e := envelope(t, w)
			if e.Code != tc.code || e.RequestID == "" {
				t.Fatalf("envelope = %+v", e)
			}
			if tc.err != nil && tc.status != http.StatusInternalServerError && e.Message != tc.err.Error() {
				t.Fatalf("message = %q", e.Message)
			}
		})
	}
}

func TestDeleteUser(t *testing.T) {
	svc := &stubUsers{}
	w := send(usersRouter(svc), http.MethodDelete, "/api/users/abc", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"success":true}` || svc.deletedID != "abc" {
		t.Fatalf("code=%d body=%s id=%q", w.Code, w.Body.String(), svc.deletedID)
	}

	w = send(usersRouter(&stubUsers{deleteErr: services.ErrUserNotFound}), http.MethodDelete, "/api/users/abc", "", nil)
	if e := envelope(t, w); w.Code != http.StatusNotFound || e.Message != "user not found" {
		t.Fatalf("not found: %d %+v", w.Code, e)
	}

	w = send(usersRouter(&stubUsers{deleteErr: errors.New("boom")}), http.MethodDelete, "/api/users/abc", "", nil)
	if e := envelope(t, w); w.Code != http.StatusInternalServerError || e.Code != ErrCodeDeleteFailed {
		t.Fatalf("failure: %d %+v", w.Code, e)
	}
}
