package ups

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// MockToken is the access token handed out by MockTransport.
const MockToken = "mock_token"

// MockTransport is a mock implementation of Transport for testing. Without
// hooks it answers every operation with a successful canned document in
// the request's generation.
type MockTransport struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnAccessToken   func(ctx context.Context) (string, error)
	OnRate          func(ctx context.Context, req *APIRequest) (*APIResponse, error)
	OnShip          func(ctx context.Context, req *APIRequest) (*APIResponse, error)
	OnShipAccept    func(ctx context.Context, req *APIRequest) (*APIResponse, error)
	OnLabelRecovery func(ctx context.Context, req *APIRequest) (*APIResponse, error)
	OnTrack         func(ctx context.Context, req *APIRequest) (*APIResponse, error)

	mu       sync.Mutex
	requests []*APIRequest
}

// NewMockTransport creates a new mock transport with default behavior.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// Requests returns the requests sent so far, oldest first.
func (m *MockTransport) Requests() []*APIRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*APIRequest(nil), m.requests...)
}

// AccessToken returns MockToken unless OnAccessToken is set.
func (m *MockTransport) AccessToken(ctx context.Context) (string, error) {
	if m.OnAccessToken != nil {
		return m.OnAccessToken(ctx)
	}
	return MockToken, nil
}

// Send records the request and returns the hook's or the canned response.
func (m *MockTransport) Send(ctx context.Context, req *APIRequest) (*APIResponse, error) {
	if m.SimulateLatency > 0 {
		time.Sleep(m.SimulateLatency)
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.SimulateErrors {
		return nil, transportError("Simulated transport error", fmt.Errorf("mock %s failure", req.Operation))
	}

	if hook := m.hook(req.Operation); hook != nil {
		return hook(ctx, req)
	}

	body, err := cannedResponse(req)
	if err != nil {
		return nil, err
	}
	return &APIResponse{StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

func (m *MockTransport) hook(op Operation) func(context.Context, *APIRequest) (*APIResponse, error) {
	switch op {
	case OpRate:
		return m.OnRate
	case OpShip:
		return m.OnShip
	case OpShipAccept:
		return m.OnShipAccept
	case OpLabelRecovery:
		return m.OnLabelRecovery
	case OpTrack:
		return m.OnTrack
	}
	return nil
}

// Canned image payloads: a GIF header, a PNG signature and a PDF header.
const (
	mockGIF  = "R0lGODlhAQABAAAAACw="
	mockPNG  = "iVBORw0KGgo="
	mockPDF  = "JVBERi0xLjQK"
	mockHTML = "PGh0bWw+PC9odG1sPg=="
)

func mockTrackingNumber() string {
	return "1Z" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
}

func cannedResponse(req *APIRequest) (string, error) {
	legacy := req.Generation == document.XML
	switch req.Operation {
	case OpRate:
		if legacy {
			return fmt.Sprintf(legacyRateTemplate, legacySuccess), nil
		}
		return restRateResponse, nil
	case OpShip:
		number := mockTrackingNumber()
		if legacy {
			return fmt.Sprintf(legacyConfirmTemplate, legacySuccess, number, uuid.New().String()), nil
		}
		return fmt.Sprintf(restShipTemplate, number, number, mockGIF, mockHTML), nil
	case OpShipAccept:
		number := mockTrackingNumber()
		return fmt.Sprintf(legacyAcceptTemplate, legacySuccess, number, number, mockGIF, mockHTML, mockPDF), nil
	case OpLabelRecovery:
		number, err := requestField(req, "LabelRecoveryRequest", "TrackingNumber")
		if err != nil {
			return "", err
		}
		if legacy {
			return fmt.Sprintf(legacyLabelTemplate, legacySuccess, number, mockPNG, mockHTML), nil
		}
		return fmt.Sprintf(restLabelTemplate, number, mockPNG, mockHTML), nil
	case OpTrack:
		if legacy {
			number, err := requestField(req, "TrackRequest", "TrackingNumber")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf(legacyTrackTemplate, legacySuccess, number, time.Now().Format("20060102")), nil
		}
		number := req.Path[strings.LastIndex(req.Path, "/")+1:]
		return fmt.Sprintf(restTrackTemplate, number, number, time.Now().UTC().Format("20060102")), nil
	}
	return "", shipper.NewShipperError(carrierName, shipper.CodeTransport, fmt.Sprintf("no canned response for %q", req.Operation))
}

// requestField reads a field of the request document. Legacy bodies start
// with the access request, so only the last document is decoded.
func requestField(req *APIRequest, root, field string) (string, error) {
	body := req.Body
	if req.Generation == document.XML {
		if i := strings.LastIndex(string(body), "<?xml"); i > 0 {
			body = body[i:]
		}
	}
	tree, err := document.Decode(body, req.Generation)
	if err != nil {
		return "", fmt.Errorf("decoding mock request: %w", err)
	}
	return document.Text(tree.Path(root, field)), nil
}

const legacySuccess = `<Response><ResponseStatusCode>1</ResponseStatusCode><ResponseStatusDescription>Success</ResponseStatusDescription></Response>`

const restRateResponse = `{"RateResponse":{"Response":{"ResponseStatus":{"Code":"1","Description":"Success"}},"RatedShipment":[` +
	`{"Service":{"Code":"11"},"TotalCharges":{"CurrencyCode":"GBP","MonetaryValue":"15.82"}},` +
	`{"Service":{"Code":"65"},"TotalCharges":{"CurrencyCode":"GBP","MonetaryValue":"29.95"},` +
	`"RatedShipmentAlert":[{"Code":"110971","Description":"Your invoice may vary from the displayed reference rates"}]}]}}`

const legacyRateTemplate = `<?xml version="1.0"?><RatingServiceSelectionResponse>%s` +
	`<RatedShipment><Service><Code>11</Code></Service><TotalCharges><CurrencyCode>GBP</CurrencyCode><MonetaryValue>15.82</MonetaryValue></TotalCharges></RatedShipment>` +
	`<RatedShipment><Service><Code>65</Code></Service><TotalCharges><CurrencyCode>GBP</CurrencyCode><MonetaryValue>29.95</MonetaryValue></TotalCharges></RatedShipment>` +
	`</RatingServiceSelectionResponse>`

const restShipTemplate = `{"ShipmentResponse":{"Response":{"ResponseStatus":{"Code":"1","Description":"Success"}},"ShipmentResults":{` +
	`"ShipmentCharges":{"TotalCharges":{"CurrencyCode":"GBP","MonetaryValue":"15.82"}},` +
	`"ShipmentIdentificationNumber":"%s","PackageResults":[{"TrackingNumber":"%s",` +
	`"ShippingLabel":{"ImageFormat":{"Code":"GIF"},"GraphicImage":"%s","HTMLImage":"%s"}}]}}}`

const legacyConfirmTemplate = `<?xml version="1.0"?><ShipmentConfirmResponse>%s` +
	`<ShipmentIdentificationNumber>%s</ShipmentIdentificationNumber><ShipmentDigest>%s</ShipmentDigest></ShipmentConfirmResponse>`

const legacyAcceptTemplate = `<?xml version="1.0"?><ShipmentAcceptResponse>%s<ShipmentResults>` +
	`<ShipmentIdentificationNumber>%s</ShipmentIdentificationNumber>` +
	`<PackageResults><TrackingNumber>%s</TrackingNumber><LabelImage><LabelImageFormat><Code>GIF</Code></LabelImageFormat>` +
	`<GraphicImage>%s</GraphicImage><HTMLImage>%s</HTMLImage></LabelImage></PackageResults>` +
	`<Form><Image><ImageFormat><Code>PDF</Code></ImageFormat><GraphicImage>%s</GraphicImage></Image></Form>` +
	`</ShipmentResults></ShipmentAcceptResponse>`

const restLabelTemplate = `{"LabelRecoveryResponse":{"Response":{"ResponseStatus":{"Code":"1","Description":"Success"}},` +
	`"LabelResults":{"TrackingNumber":"%s","LabelImage":{"LabelImageFormat":{"Code":"PNG"},"GraphicImage":"%s","HTMLImage":"%s"}}}}`

const legacyLabelTemplate = `<?xml version="1.0"?><LabelRecoveryResponse>%s<LabelResults><TrackingNumber>%s</TrackingNumber>` +
	`<LabelImage><LabelImageFormat><Code>PNG</Code></LabelImageFormat><GraphicImage>%s</GraphicImage><HTMLImage>%s</HTMLImage></LabelImage>` +
	`</LabelResults></LabelRecoveryResponse>`

const restTrackTemplate = `{"trackResponse":{"shipment":[{"inquiryNumber":"%s","package":[{"trackingNumber":"%s","activity":[` +
	`{"status":{"type":"D","description":"DELIVERED","code":"D"},"date":"%s","time":"120000"}]}]}]}}`

const legacyTrackTemplate = `<?xml version="1.0"?><TrackResponse>%s<Shipment><Package><TrackingNumber>%s</TrackingNumber>` +
	`<Activity><Status><StatusType><Code>D</Code><Description>DELIVERED</Description></StatusType></Status><Date>%s</Date><Time>120000</Time></Activity>` +
	`</Package></Shipment></TrackResponse>`

var _ Transport = (*MockTransport)(nil)
