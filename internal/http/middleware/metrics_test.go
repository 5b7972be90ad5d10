package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_UsesRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.DELETE("/api/users/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	counter := httpReqs.WithLabelValues(http.MethodDelete, "/api/users/:id", "404")
	before := testutil.ToFloat64(counter)
	do(r, http.MethodDelete, "/api/users/one", nil)
	do(r, http.MethodDelete, "/api/users/two", nil)
	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Fatalf("delta = %v", got)
	}
	if testutil.ToFloat64(httpInflight) != 0 {
		t.Fatal("inflight gauge not released")
	}
}

func TestMetrics_UnmatchedLabel(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	counter := httpReqs.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)
	do(r, http.MethodGet, "/nope", nil)
	if testutil.ToFloat64(counter)-before != 1 {
		t.Fatal("unmatched request not counted")
	}
}
