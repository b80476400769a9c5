package ups

import (
	"context"
	"net/url"

	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// Transport sends encoded request documents to UPS.
// This abstraction allows for mock implementations during testing
// and the HTTP implementation in production.
type Transport interface {
	// Send posts a request document and returns the raw response
	Send(ctx context.Context, req *APIRequest) (*APIResponse, error)

	// AccessToken returns a bearer token for the REST API
	AccessToken(ctx context.Context) (string, error)
}

// Operation identifies a UPS endpoint.
type Operation string

const (
	OpRate          Operation = "rate"
	OpShip          Operation = "ship"
	OpShipAccept    Operation = "ship_accept"
	OpLabelRecovery Operation = "label_recovery"
	OpTrack         Operation = "track"
)

// APIRequest is one call to a UPS endpoint.
type APIRequest struct {
	Operation   Operation
	Generation  document.Generation
	Method      string
	Path        string
	ContentType string
	Headers     map[string]string
	Body        []byte
}

// APIResponse is the raw reply. Non-2xx replies are returned as responses;
// UPS reports most business failures with a 4xx status and a document body.
type APIResponse struct {
	StatusCode int
	Body       []byte
}

// Base URLs.
const (
	TestBaseURL = "https://wwwcie.ups.com"
	LiveBaseURL = "https://onlinetools.ups.com"
)

// API versions of the REST endpoints.
const (
	RateVersion  = "v2403"
	ShipVersion  = "v2403"
	LabelVersion = "v2403"
	TrackVersion = "v1"
)

const (
	tokenPath   = "/security/v1/oauth/token"
	refreshPath = "/security/v1/oauth/refresh"
)

var restPaths = map[Operation]string{
	OpRate:          "/api/rating/" + RateVersion + "/Rate",
	OpShip:          "/api/shipments/" + ShipVersion + "/ship",
	OpLabelRecovery: "/api/labels/" + LabelVersion + "/recovery",
	OpTrack:         "/api/track/" + TrackVersion + "/details",
}

var legacyPaths = map[Operation]string{
	OpRate:          "/ups.app/xml/Rate",
	OpShip:          "/ups.app/xml/ShipConfirm",
	OpShipAccept:    "/ups.app/xml/ShipAccept",
	OpLabelRecovery: "/ups.app/xml/LabelRecovery",
	OpTrack:         "/ups.app/xml/Track",
}

// Path returns the endpoint path of op for the generation. REST tracking
// takes the tracking number as the last path segment.
func Path(op Operation, g document.Generation, trackingNumber string) string {
	if g == document.XML {
		return legacyPaths[op]
	}
	path := restPaths[op]
	if op == OpTrack {
		path += "/" + url.PathEscape(trackingNumber)
	}
	return path
}

// BaseURL returns the endpoint root, preferring an explicit override.
func BaseURL(override string, testMode bool) string {
	switch {
	case override != "":
		return override
	case testMode:
		return TestBaseURL
	default:
		return LiveBaseURL
	}
}
