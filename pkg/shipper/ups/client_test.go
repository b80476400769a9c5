package ups_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups"
	"github.com/tournevent/upslink/pkg/shipper/ups/builder"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func nopLogger() *otelzap.Logger {
	return otelzap.New(zap.NewNop())
}

func newTestClient(cfg ups.Config, transport *ups.MockTransport) *ups.Client {
	return ups.NewWithTransport(cfg, transport, nopLogger(), nil)
}

func legacyConfig() ups.Config {
	return ups.Config{
		Generation:    document.XML,
		LicenseNumber: "LICENSE",
		UserID:        "user",
		Password:      "secret",
		AccountNumber: "A1B2C3",
	}
}

func shipperParty() builder.Party {
	return builder.Party{
		CompanyName:   "Veeqo Limited",
		AttentionName: "Joe Bloggs",
		PhoneNumber:   "01792 123456",
		AccountNumber: "A1B2C3",
		Address: builder.Address{
			Lines:      []string{"Ty Brith", "Pentre"},
			City:       "Swansea",
			PostalCode: "SA1 1NW",
			Country:    "GB",
		},
	}
}

func recipientParty() builder.Party {
	return builder.Party{
		CompanyName:   "Google Inc.",
		AttentionName: "Sergey Brin",
		Email:         "sergey@example.com",
		Address: builder.Address{
			Lines:      []string{"1600 Amphitheatre Parkway"},
			City:       "Mountain View",
			State:      "California",
			PostalCode: "94043",
			Country:    "US",
		},
	}
}

func parcel() builder.Package {
	return builder.Package{Weight: "0.5", WeightUnit: "KGS"}
}

func configureRate(b *builder.RateBuilder) error {
	if err := b.AddShipper(shipperParty()); err != nil {
		return err
	}
	if err := b.AddShipTo(recipientParty()); err != nil {
		return err
	}
	b.AddPackage(parcel())
	return nil
}

func configureShip(b *builder.ShipBuilder) error {
	if err := b.AddShipper(shipperParty()); err != nil {
		return err
	}
	if err := b.AddShipTo(recipientParty()); err != nil {
		return err
	}
	b.AddService("65", "")
	b.AddPackage(parcel())
	b.AddPaymentInformation("A1B2C3")
	b.AddLabelSpecification("GIF", builder.LabelSize{})
	return nil
}

func TestClient_Rates_Success(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)

	result, err := client.RatesWith(context.Background(), configureRate)

	require.NoError(t, err)
	assert.True(t, result.Success())
	require.Len(t, result.Rates, 2)
	assert.Equal(t, "11", result.Rates[0].ServiceCode)
	assert.Equal(t, "15.82", result.Rates[0].Total.Amount.String())
	assert.Equal(t, "GBP", result.Rates[0].Total.Currency)
	assert.NotEmpty(t, result.Rates[1].Warnings)
}

func TestClient_Rates_SendsBearerToken(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)

	_, err := client.RatesWith(context.Background(), configureRate)
	require.NoError(t, err)

	requests := transport.Requests()
	require.Len(t, requests, 1)
	req := requests[0]
	assert.Equal(t, ups.OpRate, req.Operation)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/api/rating/"+ups.RateVersion+"/Rate", req.Path)
	assert.Equal(t, "application/json", req.ContentType)
	assert.Equal(t, "Bearer "+ups.MockToken, req.Headers["Authorization"])
	assert.NotEmpty(t, req.Headers["transId"])
}

func TestClient_Rates_ValidationError(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)

	_, err := client.RatesWith(context.Background(), func(b *builder.RateBuilder) error {
		return b.AddShipper(shipperParty())
	})

	require.Error(t, err)
	assert.True(t, shipper.IsInvalidAttribute(err))
	assert.Empty(t, transport.Requests())
}

func TestClient_Rates_TokenFailure(t *testing.T) {
	transport := ups.NewMockTransport()
	transport.OnAccessToken = func(ctx context.Context) (string, error) {
		return "", shipper.AuthorizationFailed("ups", "Token creation request failed", errors.New("boom"))
	}
	client := newTestClient(ups.Config{}, transport)

	_, err := client.RatesWith(context.Background(), configureRate)

	require.Error(t, err)
	assert.True(t, shipper.IsAuthorization(err))
	assert.Empty(t, transport.Requests())
}

func TestClient_Rates_LegacyRequiresCredentials(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{Generation: document.XML}, transport)

	_, err := client.RatesWith(context.Background(), configureRate)

	require.Error(t, err)
	assert.True(t, shipper.IsAuthorization(err))
	assert.Empty(t, transport.Requests())
}

func TestClient_Rates_Legacy(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(legacyConfig(), transport)

	result, err := client.RatesWith(context.Background(), configureRate)

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Len(t, result.Rates, 2)

	req := transport.Requests()[0]
	assert.Equal(t, "/ups.app/xml/Rate", req.Path)
	assert.Empty(t, req.Headers["Authorization"])
	body := string(req.Body)
	assert.True(t, strings.HasPrefix(body, "<?xml"))
	assert.Contains(t, body, "<AccessLicenseNumber>LICENSE</AccessLicenseNumber>")
	assert.Contains(t, body, "<RateRequest>")
}

func TestClient_Rates_ServerError(t *testing.T) {
	transport := ups.NewMockTransport()
	transport.OnRate = func(ctx context.Context, req *ups.APIRequest) (*ups.APIResponse, error) {
		return &ups.APIResponse{StatusCode: http.StatusServiceUnavailable, Body: []byte("unavailable")}, nil
	}
	client := newTestClient(ups.Config{}, transport)

	_, err := client.RatesWith(context.Background(), configureRate)

	require.Error(t, err)
	var shipErr *shipper.ShipperError
	require.ErrorAs(t, err, &shipErr)
	assert.Equal(t, shipper.CodeTransport, shipErr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, shipErr.StatusCode)
	assert.True(t, shipper.IsRetryable(err))
}

func TestClient_Rates_MalformedResponse(t *testing.T) {
	transport := ups.NewMockTransport()
	transport.OnRate = func(ctx context.Context, req *ups.APIRequest) (*ups.APIResponse, error) {
		return &ups.APIResponse{StatusCode: http.StatusOK, Body: []byte("<html>oops</html>")}, nil
	}
	client := newTestClient(ups.Config{}, transport)

	_, err := client.RatesWith(context.Background(), configureRate)

	var shipErr *shipper.ShipperError
	require.ErrorAs(t, err, &shipErr)
	assert.Equal(t, shipper.CodeMalformed, shipErr.Code)
}

func TestClient_Rates_CarrierFailureIsResult(t *testing.T) {
	transport := ups.NewMockTransport()
	transport.OnRate = func(ctx context.Context, req *ups.APIRequest) (*ups.APIResponse, error) {
		body := `{"response":{"errors":[{"code":"111500","message":"The selected service is not valid."}]}}`
		return &ups.APIResponse{StatusCode: http.StatusBadRequest, Body: []byte(body)}, nil
	}
	client := newTestClient(ups.Config{}, transport)

	result, err := client.RatesWith(context.Background(), configureRate)

	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, "The selected service is not valid.", result.ErrorDescription())
}

func TestClient_Rates_SimulatedErrors(t *testing.T) {
	transport := ups.NewMockTransport()
	transport.SimulateErrors = true
	client := newTestClient(ups.Config{}, transport)

	_, err := client.RatesWith(context.Background(), configureRate)

	require.Error(t, err)
	assert.True(t, shipper.IsRetryable(err))
}

func TestClient_Ship_Success(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)

	result, err := client.ShipWith(context.Background(), configureShip)

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.True(t, strings.HasPrefix(result.TrackingNumber(), "1Z"))
	assert.Equal(t, ".gif", result.GraphicExtension())
	assert.NotEmpty(t, result.LabelImage().Data)
	assert.NotNil(t, result.HTMLImage())

	requests := transport.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/shipments/"+ups.ShipVersion+"/ship", requests[0].Path)
}

func TestClient_Ship_LegacyTwoStep(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(legacyConfig(), transport)

	result, err := client.ShipWith(context.Background(), configureShip)

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.NotEmpty(t, result.ShipmentDigest)
	assert.True(t, strings.HasPrefix(result.TrackingNumber(), "1Z"))
	require.NotNil(t, result.FormImage())
	assert.Equal(t, ".pdf", result.FormImage().Extension)

	requests := transport.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, ups.OpShip, requests[0].Operation)
	assert.Equal(t, "/ups.app/xml/ShipConfirm", requests[0].Path)
	assert.Equal(t, ups.OpShipAccept, requests[1].Operation)
	assert.Contains(t, string(requests[1].Body), "<ShipmentDigest>"+result.ShipmentDigest+"</ShipmentDigest>")
	assert.Contains(t, string(requests[1].Body), "<AccessLicenseNumber>LICENSE</AccessLicenseNumber>")
}

func TestClient_Ship_LegacyConfirmFailureSkipsAccept(t *testing.T) {
	transport := ups.NewMockTransport()
	transport.OnShip = func(ctx context.Context, req *ups.APIRequest) (*ups.APIResponse, error) {
		body := `<?xml version="1.0"?><ShipmentConfirmResponse><Response>` +
			`<ResponseStatusCode>0</ResponseStatusCode><ResponseStatusDescription>Failure</ResponseStatusDescription>` +
			`<Error><ErrorSeverity>Hard</ErrorSeverity><ErrorCode>120100</ErrorCode>` +
			`<ErrorDescription>Missing or invalid shipper number</ErrorDescription></Error>` +
			`</Response></ShipmentConfirmResponse>`
		return &ups.APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
	}
	client := newTestClient(legacyConfig(), transport)

	result, err := client.ShipWith(context.Background(), configureShip)

	require.NoError(t, err)
	assert.False(t, result.Success())
	assert.Equal(t, "Missing or invalid shipper number", result.ErrorDescription())
	assert.Len(t, transport.Requests(), 1)
}

func TestClient_Ship_WorldwideEconomyRejectedBeforeSend(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)

	_, err := client.ShipWith(context.Background(), func(b *builder.ShipBuilder) error {
		if err := configureShip(b); err != nil {
			return err
		}
		b.AddService("17", "")
		b.AddPackage(parcel())
		return nil
	})

	require.Error(t, err)
	assert.True(t, shipper.IsInvalidAttribute(err))
	assert.Contains(t, err.Error(), "Worldwide Economy shipment must be single-piece")
	assert.Empty(t, transport.Requests())
}

func TestClient_RecoverLabel(t *testing.T) {
	for _, cfg := range []ups.Config{{}, legacyConfig()} {
		t.Run(cfg.Generation.String(), func(t *testing.T) {
			transport := ups.NewMockTransport()
			client := newTestClient(cfg, transport)

			result, err := client.RecoverLabelWith(context.Background(), func(b *builder.LabelRecoveryBuilder) error {
				b.AddLabelSpecification("png")
				b.AddTrackingNumber("1Z12345E8791315509")
				return nil
			})

			require.NoError(t, err)
			assert.True(t, result.Success())
			assert.Equal(t, "1Z12345E8791315509", result.TrackingNumber())
			assert.Equal(t, ".png", result.LabelImage().Extension)
		})
	}
}

func TestClient_RecoverLabel_RequiresReference(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)

	_, err := client.RecoverLabelWith(context.Background(), func(b *builder.LabelRecoveryBuilder) error {
		b.AddLabelSpecification("gif")
		return nil
	})

	require.Error(t, err)
	assert.True(t, shipper.IsInvalidAttribute(err))
}

func TestClient_Track_Success(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)

	result, err := client.Track(context.Background(), " 1Z12345E0291980793 ")

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "1Z12345E0291980793", result.TrackingNumber)
	assert.Equal(t, "D", result.StatusTypeCode)
	assert.Equal(t, "DELIVERED", result.StatusTypeDescription)
	assert.False(t, result.StatusDate.IsZero())

	req := transport.Requests()[0]
	assert.Equal(t, "/api/track/v1/details/1Z12345E0291980793", req.Path)
	assert.Equal(t, "{}", string(req.Body))
}

func TestClient_Track_Legacy(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(legacyConfig(), transport)

	result, err := client.Track(context.Background(), "1Z12345E0291980793")

	require.NoError(t, err)
	assert.True(t, result.Success())
	assert.Equal(t, "1Z12345E0291980793", result.TrackingNumber)
	assert.Equal(t, "D", result.StatusTypeCode)
	assert.Equal(t, "/ups.app/xml/Track", transport.Requests()[0].Path)
}

func TestClient_Track_EmptyNumber(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)

	_, err := client.Track(context.Background(), "   ")

	require.Error(t, err)
	assert.True(t, shipper.IsInvalidAttribute(err))
	assert.Contains(t, err.Error(), "Tracking number is required")
	assert.Empty(t, transport.Requests())
}

func TestClient_TrackMany(t *testing.T) {
	transport := ups.NewMockTransport()
	client := newTestClient(ups.Config{}, transport)
	numbers := []string{"1Z0000000000000001", "1Z0000000000000002", "1Z0000000000000003"}

	results, err := client.TrackMany(context.Background(), numbers)

	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, n := range numbers {
		require.Contains(t, results, n)
		assert.Equal(t, n, results[n].TrackingNumber)
	}
	assert.Len(t, transport.Requests(), 3)
}

func TestClient_TrackMany_FirstErrorWins(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	transport := ups.NewMockTransport()
	transport.OnTrack = func(ctx context.Context, req *ups.APIRequest) (*ups.APIResponse, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil, errors.New("connection reset")
	}
	client := newTestClient(ups.Config{}, transport)

	_, err := client.TrackMany(context.Background(), []string{"1Z0000000000000001", "1Z0000000000000002"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	mu.Lock()
	assert.GreaterOrEqual(t, calls, 1)
	mu.Unlock()
}

func TestNew_UseMock(t *testing.T) {
	client := ups.New(ups.Config{UseMock: true}, nopLogger(), nil)

	result, err := client.Track(context.Background(), "1Z12345E0291980793")

	require.NoError(t, err)
	assert.Equal(t, "D", result.StatusTypeCode)
}
