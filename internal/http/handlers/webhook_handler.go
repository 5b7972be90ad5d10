package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/cfbot/internal/http/middleware"
)

// WebhookAck is the fixed reply of the webhook test endpoints.
type WebhookAck struct {
	OK bool `json:"ok" example:"true"`
}

// WebhookTest godoc
// @ID          webhookTest
// @Summary     Forward a test request to the bot chat
// @Description Sends the method, caller IP and query (GET) or body (POST) to the configured chat. Delivery failures are only logged.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
// @Success     200  {object}  handlers.WebhookAck
// @Router      /webhook/test [get]
// @Router      /webhook/test [post]
func (h *Handlers) WebhookTest(c *gin.Context) {
	var label, payload string
	if c.Request.Method == http.MethodGet {
		label, payload = "Query", jsonText(queryObject(c.Request.URL.Query()))
	} else {
		label, payload = "Body", bodyText(c.Request)
	}
	text := fmt.Sprintf("%s /webhook/test\nIP: %s\n%s: %s", c.Request.Method, callerIP(c), label, payload)

	if h.notify != nil {
		if err := h.notify.Notify(c.Request.Context(), text); err != nil {
			middleware.LoggerFrom(c).Error().Err(err).Msg("webhook notification failed")
		}
	}
	ok(c, http.StatusOK, WebhookAck{OK: true})
}

// callerIP prefers the first X-Forwarded-For hop.
func callerIP(c *gin.Context) string {
	if fwd := c.GetHeader("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// queryObject flattens single-valued parameters to strings and keeps
// repeated ones as arrays.
func queryObject(v url.Values) map[string]any {
	out := make(map[string]any, len(v))
	for k, vals := range v {
		if len(vals) == 1 {
			out[k] = vals[0]
		} else {
			out[k] = vals
		}
	}
	return out
}

// bodyText renders a JSON or form body as compact JSON. Anything else,
// including an empty body, is shown as {}.
func bodyText(r *http.Request) string {
	if r.Body == nil {
		return "{}"
	}
	raw, err := io.ReadAll(r.Body)
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return "{}"
	}

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/x-www-form-urlencoded":
		form, err := url.ParseQuery(string(raw))
		if err != nil {
			return "{}"
		}
		return jsonText(queryObject(form))
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return "{}"
		}
		return buf.String()
	}
}

func jsonText(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[unserializable]"
	}
	return string(b)
}
