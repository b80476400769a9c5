package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upslink/internal/server"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/mock"
	"github.com/tournevent/upslink/pkg/shipper/ups"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, shippers ...shipper.Shipper) http.Handler {
	t.Helper()

	logger := otelzap.New(zap.NewNop())
	registry := shipper.NewRegistry()
	if len(shippers) == 0 {
		client := ups.NewWithTransport(ups.Config{}, ups.NewMockTransport(), logger, nil)
		shippers = []shipper.Shipper{ups.NewCarrier(client), mock.New("test-shipper")}
	}
	for _, s := range shippers {
		registry.Register(s)
	}

	srv := server.New(server.Config{Port: 8080, Metrics: prometheus.NewRegistry()}, registry, logger)
	return srv.Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

const quoteBody = `{
	"origin": {"name": "Joe Bloggs", "company": "Veeqo Limited", "line1": "Ty Brith", "city": "Swansea", "postalCode": "SA1 1NW", "countryCode": "GB"},
	"destination": {"name": "Sergey Brin", "line1": "1600 Amphitheatre Parkway", "city": "Mountain View", "provinceCode": "CA", "postalCode": "94043", "countryCode": "us"},
	"packages": [{"length": "10", "width": 20, "height": 5, "weight": "0.5"}]
}`

const orderBody = `{
	"rateId": "ups-11-1a2b3c4d",
	"sender": {"name": "Joe Bloggs", "company": "Veeqo Limited", "phone": "01792 123456", "accountNumber": "A1B2C3"},
	"senderAddress": {"name": "Joe Bloggs", "line1": "Ty Brith", "city": "Swansea", "postalCode": "SA1 1NW", "countryCode": "GB"},
	"recipient": {"name": "Sergey Brin", "email": "sergey@example.com"},
	"recipientAddress": {"name": "Sergey Brin", "line1": "1600 Amphitheatre Parkway", "city": "Mountain View", "provinceCode": "CA", "postalCode": "94043", "countryCode": "US"},
	"packages": [{"weight": 0.5}],
	"labelFormat": "GIF"
}`

func TestServer_Health(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestServer_Carriers(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/v1/carriers", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, []any{"test-shipper", "ups"}, resp["carriers"])
}

func TestServer_Quotes(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/quotes", quoteBody)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, true, resp["success"])
	rates, ok := resp["rates"].([]any)
	require.True(t, ok)
	assert.Len(t, rates, 4)
	assert.Nil(t, resp["errors"])
}

func TestServer_Quotes_SelectedCarrier(t *testing.T) {
	body := strings.Replace(quoteBody, `"packages"`, `"options": {"carriers": ["ups"]}, "packages"`, 1)

	rec := do(t, newTestServer(t), http.MethodPost, "/v1/quotes", body)

	resp := decode(t, rec)
	rates := resp["rates"].([]any)
	require.Len(t, rates, 2)
	for _, r := range rates {
		rate := r.(map[string]any)
		assert.Equal(t, "ups", rate["carrier"])
		assert.Equal(t, "GBP", rate["totalPrice"].(map[string]any)["currency"])
	}
}

func TestServer_Quotes_UnknownCarrier(t *testing.T) {
	body := strings.Replace(quoteBody, `"packages"`, `"options": {"carriers": ["dhl"]}, "packages"`, 1)

	rec := do(t, newTestServer(t), http.MethodPost, "/v1/quotes", body)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, false, resp["success"])
	errs := resp["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "CARRIER_NOT_FOUND", errs[0].(map[string]any)["code"])
}

func TestServer_Quotes_InvalidJSON(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/quotes", `{"origin":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_JSON", decode(t, rec)["code"])
}

func TestServer_Quotes_UnknownField(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/quotes", `{"parcel": {}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_CreateShipment(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/shipments/ups", orderBody)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.True(t, strings.HasPrefix(resp["trackingNumber"].(string), "1Z"))
	assert.Equal(t, "UPS Standard", resp["serviceName"])
	labels := resp["labels"].([]any)
	require.Len(t, labels, 1)
	assert.Equal(t, "gif", labels[0].(map[string]any)["format"])
}

func TestServer_CreateShipment_InvalidAttribute(t *testing.T) {
	body := strings.Replace(orderBody, `"ups-11-1a2b3c4d"`, `""`, 1)

	rec := do(t, newTestServer(t), http.MethodPost, "/v1/shipments/ups", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, false, resp["success"])
	errs := resp["errors"].([]any)
	assert.Equal(t, shipper.CodeInvalidAttribute, errs[0].(map[string]any)["code"])
}

func TestServer_CreateShipment_UnknownCarrier(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodPost, "/v1/shipments/dhl", orderBody)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_GetLabel(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/v1/labels/ups/1Z12345E8791315509?format=png", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, true, resp["success"])
	label := resp["label"].(map[string]any)
	assert.Equal(t, "1Z12345E8791315509", label["trackingNumber"])
	assert.Equal(t, "png", label["format"])
	assert.NotEmpty(t, label["data"])
}

func TestServer_Track(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/v1/track/ups/1Z12345E0291980793", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, true, resp["success"])
	assert.Equal(t, "delivered", resp["status"])
	assert.Equal(t, "D", resp["statusCode"])
}

func TestServer_Track_CarrierError(t *testing.T) {
	failing := mock.New("failing")
	failing.FailWith = shipper.NewShipperError("failing", shipper.CodeTransport, "upstream down").WithRetryable(true)

	rec := do(t, newTestServer(t, failing), http.MethodGet, "/v1/track/failing/1Z1", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, false, resp["success"])
	errs := resp["errors"].([]any)
	first := errs[0].(map[string]any)
	assert.Equal(t, shipper.CodeTransport, first["code"])
	assert.Equal(t, true, first["retryable"])
}

func TestServer_Metrics(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodGet, "/v1/track/ups/1Z12345E0291980793", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "upslink_http_requests_total")
	assert.Contains(t, body, `route="/v1/track/{carrier}/{trackingNumber}"`)
	assert.Contains(t, body, `upslink_requests_total{carrier="ups",operation="track",status="success"} 1`)
}

func TestServer_NotFound(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/graphql", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
