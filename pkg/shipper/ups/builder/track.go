package builder

import (
	"strings"

	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// TrackBuilder builds a tracking request. The REST API takes the tracking
// number in the URL path, so only the legacy generation sends the tree.
type TrackBuilder struct {
	*base
	number string
}

// NewTrackBuilder returns an empty tracking request.
func NewTrackBuilder(opts Options) *TrackBuilder {
	return &TrackBuilder{base: newBase(opts, "TrackRequest", "Track", "")}
}

// AddTrackingNumber sets the number to track.
func (b *TrackBuilder) AddTrackingNumber(number string) {
	b.number = strings.TrimSpace(number)
}

// AddOptionCode sets the request option, for example "activity".
func (b *TrackBuilder) AddOptionCode(code string) {
	b.request.Set("RequestOption", code)
}

// TrackingNumber returns the number to track.
func (b *TrackBuilder) TrackingNumber() string { return b.number }

// Validate requires a tracking number.
func (b *TrackBuilder) Validate() error {
	if b.number == "" {
		return shipper.InvalidAttribute(carrierName, "Tracking number is required")
	}
	return nil
}

// Build returns the request tree.
func (b *TrackBuilder) Build() *document.Node {
	return document.New().
		Set("Request", b.request.Clone()).
		Set("TrackingNumber", b.number)
}

// Encode validates and serializes the request. The REST body is an empty
// object.
func (b *TrackBuilder) Encode() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.opts.Generation == document.JSON {
		return []byte("{}"), nil
	}
	return b.encode(b.Build())
}
