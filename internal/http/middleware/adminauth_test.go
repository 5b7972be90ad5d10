package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func adminRouter(secret string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), AdminAuth(secret))
	r.GET("/api/users", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestAdminAuth_AcceptsExactKey(t *testing.T) {
	w := do(adminRouter("s3cret"), http.MethodGet, "/api/users", map[string]string{HeaderAdminKey: "s3cret"})
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("got %d %q", w.Code, w.Body.String())
	}
}

func TestAdminAuth_Rejects(t *testing.T) {
	cases := map[string]map[string]string{
		"missing": nil,
		"wrong":   {HeaderAdminKey: "nope"},
		"prefix":  {HeaderAdminKey: "s3cre"},
		"case":    {HeaderAdminKey: "S3CRET"},
	}
	for name, hdr := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(adminRouter("s3cret"), http.MethodGet, "/api/users", hdr)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("code = %d", w.Code)
			}
			env := decodeEnvelope(t, w)
			if env["code"] != "unauthorized" || env["message"] != "Unauthorized" {
				t.Fatalf("envelope = %v", env)
			}
			if env["request_id"] == "" || env["request_id"] != w.Header().Get("X-Request-ID") {
				t.Fatalf("request id mismatch: %v vs %q", env, w.Header().Get("X-Request-ID"))
			}
		})
	}
}

func TestAdminAuth_EmptySecretRejectsEverything(t *testing.T) {
	w := do(adminRouter(""), http.MethodGet, "/api/users", map[string]string{HeaderAdminKey: ""})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", w.Code)
	}
}
