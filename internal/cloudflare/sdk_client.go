package cloudflare

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	cfapi "github.com/cloudflare/cloudflare-go/v4"
	"github.com/cloudflare/cloudflare-go/v4/option"
	"github.com/cloudflare/cloudflare-go/v4/zones"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/tbourn/cfbot/internal/cloudflare"

// Zone and record ids are opaque tokens. Anything else ("..", "?", "/")
// would change which endpoint the request reaches.
var idRE = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Options configures the SDK-backed client.
type Options struct {
	APIToken  string
	AccountID string
	BaseURL   string
	Timeout   time.Duration
}

// sdkClient wraps the cloudflare-go v4 SDK to implement Client.
// Zones go through the typed services; DNS records use the SDK's raw request
// helpers so any record type can be sent with a plain JSON body.
type sdkClient struct {
	api       *cfapi.Client
	accountID string
}

// NewSDKClient creates a real Cloudflare API client. SDK retries are
// disabled; every call is bounded by opts.Timeout.
func NewSDKClient(opts Options) Client {
	reqOpts := []option.RequestOption{
		option.WithAPIToken(opts.APIToken),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimRight(opts.BaseURL, "/")+"/"))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}
	return &sdkClient{
		api:       cfapi.NewClient(reqOpts...),
		accountID: opts.AccountID,
	}
}

// apiMessage is one item of the v4 envelope's errors list.
type apiMessage struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

// recordEnvelope is the v4 response envelope for DNS record calls.
type recordEnvelope struct {
	Success bool         `json:"success"`
	Errors  []apiMessage `json:"errors"`
	Result  struct {
		ID string `json:"id"`
	} `json:"result"`
}

type recordBody struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	Content string `json:"content"`
	TTL     int    `json:"ttl"`
	Proxied bool   `json:"proxied"`
}

type recordPatchBody struct {
	Type    string `json:"type,omitempty"`
	Content string `json:"content,omitempty"`
}

func (c *sdkClient) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "cloudflare.sdk."+op)
	span.SetAttributes(attrs...)
	return ctx, span
}

// finish normalizes err, records it on the span and counts the outcome.
func finish(span trace.Span, op string, err error) *Error {
	defer span.End()
	if err == nil {
		observe(op, nil)
		return nil
	}
	ne := normalize(err)
	span.RecordError(ne)
	span.SetStatus(codes.Error, ne.Message)
	if ne.Status > 0 {
		span.SetAttributes(attribute.Int("http.status_code", ne.Status))
	}
	observe(op, ne)
	return ne
}

// CreateZone creates a full zone under the configured account.
func (c *sdkClient) CreateZone(ctx context.Context, name string) (Zone, error) {
	ctx, span := c.start(ctx, "CreateZone", attribute.String("zone_name", name))

	zone, err := c.api.Zones.New(ctx, zones.ZoneNewParams{
		Account: cfapi.F(zones.ZoneNewParamsAccount{ID: cfapi.F(c.accountID)}),
		Name:    cfapi.F(name),
		Type:    cfapi.F(zones.TypeFull),
	})
	if err == nil && (zone == nil || zone.ID == "") {
		err = fmt.Errorf("malformed response: zone id missing")
	}
	if ne := finish(span, "create_zone", err); ne != nil {
		return Zone{}, ne
	}

	ns := zone.NameServers
	if ns == nil {
		ns = []string{}
	}
	return Zone{ID: zone.ID, NameServers: ns}, nil
}

// FindZoneByName returns the id of the first zone matching name.
func (c *sdkClient) FindZoneByName(ctx context.Context, name string) (string, bool, error) {
	ctx, span := c.start(ctx, "FindZoneByName", attribute.String("zone_name", name))

	page, err := c.api.Zones.List(ctx, zones.ZoneListParams{
		Name: cfapi.F(name),
	})
	if ne := finish(span, "find_zone", err); ne != nil {
		return "", false, ne
	}
	if page == nil || len(page.Result) == 0 {
		return "", false, nil
	}
	return page.Result[0].ID, true, nil
}

// CreateRecord creates a DNS record in zoneID.
func (c *sdkClient) CreateRecord(ctx context.Context, zoneID string, rec Record) (string, error) {
	ctx, span := c.start(ctx, "CreateRecord",
		attribute.String("zone_id", zoneID),
		attribute.String("record_name", rec.Name),
		attribute.String("record_type", rec.Type),
		attribute.Int("record_ttl", rec.TTL),
	)

	body := recordBody{Type: rec.Type, Name: rec.Name, Content: rec.Content, TTL: rec.TTL, Proxied: rec.Proxied}
	path, err := recordsPath(zoneID)
	var id string
	if err == nil {
		id, err = c.sendRecord(ctx, http.MethodPost, path, body)
	}
	if ne := finish(span, "create_record", err); ne != nil {
		return "", ne
	}
	return id, nil
}

// UpdateRecord patches type and/or content of a DNS record.
func (c *sdkClient) UpdateRecord(ctx context.Context, zoneID, recordID string, patch RecordPatch) (string, error) {
	ctx, span := c.start(ctx, "UpdateRecord",
		attribute.String("zone_id", zoneID),
		attribute.String("record_id", recordID),
		attribute.String("record_type", patch.Type),
	)

	body := recordPatchBody{Type: patch.Type, Content: patch.Content}
	path, err := recordPath(zoneID, recordID)
	var id string
	if err == nil {
		id, err = c.sendRecord(ctx, http.MethodPatch, path, body)
	}
	if ne := finish(span, "update_record", err); ne != nil {
		return "", ne
	}
	if id == "" {
		id = recordID
	}
	return id, nil
}

// DeleteRecord deletes a DNS record by id.
func (c *sdkClient) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	ctx, span := c.start(ctx, "DeleteRecord",
		attribute.String("zone_id", zoneID),
		attribute.String("record_id", recordID),
	)

	path, err := recordPath(zoneID, recordID)
	if err == nil {
		_, err = c.sendRecord(ctx, http.MethodDelete, path, nil)
	}
	if ne := finish(span, "delete_record", err); ne != nil {
		return ne
	}
	return nil
}

// recordsPath builds zones/<zone>/dns_records. Malformed ids fail without a
// request.
func recordsPath(zoneID string) (string, error) {
	if !idRE.MatchString(zoneID) {
		return "", fmt.Errorf("invalid zone id %q", zoneID)
	}
	return "zones/" + url.PathEscape(zoneID) + "/dns_records", nil
}

// recordPath builds zones/<zone>/dns_records/<record>.
func recordPath(zoneID, recordID string) (string, error) {
	base, err := recordsPath(zoneID)
	if err != nil {
		return "", err
	}
	if !idRE.MatchString(recordID) {
		return "", fmt.Errorf("invalid record id %q", recordID)
	}
	return base + "/" + url.PathEscape(recordID), nil
}

// sendRecord performs a raw request against a dns_records path and decodes
// the v4 envelope. Non-2xx answers surface as *cfapi.Error from the SDK.
func (c *sdkClient) sendRecord(ctx context.Context, method, path string, body any) (string, error) {
	var (
		env  recordEnvelope
		resp *http.Response
		err  error
	)
	opts := []option.RequestOption{option.WithResponseInto(&resp)}
	switch method {
	case http.MethodPost:
		err = c.api.Post(ctx, path, body, &env, opts...)
	case http.MethodPatch:
		err = c.api.Patch(ctx, path, body, &env, opts...)
	case http.MethodDelete:
		err = c.api.Delete(ctx, path, nil, &env, opts...)
	default:
		err = fmt.Errorf("unsupported method %s", method)
	}
	if err != nil {
		return "", err
	}
	if !env.Success {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		return "", unsuccessful(status, env.Errors)
	}
	if method == http.MethodPost && env.Result.ID == "" {
		return "", fmt.Errorf("malformed response: record id missing")
	}
	return env.Result.ID, nil
}
