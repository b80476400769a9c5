package builder

import (
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// ShipAcceptBuilder builds the second step of the legacy ship flow. It
// only exists for the XML generation.
type ShipAcceptBuilder struct {
	*base
	digest string
}

// NewShipAcceptBuilder accepts the shipment identified by digest, reusing
// the access credentials of the confirm request.
func NewShipAcceptBuilder(digest string, access *Credentials) *ShipAcceptBuilder {
	b := newBase(Options{Generation: document.XML}, "ShipmentAcceptRequest", "ShipAccept", "")
	b.access = access
	return &ShipAcceptBuilder{base: b, digest: digest}
}

// Validate requires a shipment digest.
func (b *ShipAcceptBuilder) Validate() error {
	if b.digest == "" {
		return shipper.InvalidAttribute(carrierName, "Shipment digest is required")
	}
	return nil
}

// Build returns the request tree.
func (b *ShipAcceptBuilder) Build() *document.Node {
	return document.New().
		Set("Request", b.request.Clone()).
		Set("ShipmentDigest", b.digest)
}

// Encode validates and serializes the request.
func (b *ShipAcceptBuilder) Encode() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.encode(b.Build())
}
