package builder

import (
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// RateBuilder builds a rate request. Without a service it shops every
// available service; AddService narrows it to a single rate.
type RateBuilder struct {
	*shipmentDocument
}

// NewRateBuilder returns an empty rate request.
func NewRateBuilder(opts Options) *RateBuilder {
	b := newBase(opts, "RateRequest", "Rate", "Shop")
	return &RateBuilder{shipmentDocument: newShipmentDocument(b, "PackagingType")}
}

// AddService selects a single service.
func (b *RateBuilder) AddService(code, description string) {
	b.setService(code, description)
	b.request.Set("RequestOption", "Rate")
}

// AddReturnService rates the shipment as a return. Rate requests carry it
// among the shipment service options.
func (b *RateBuilder) AddReturnService(code, description string) {
	b.serviceOptions.Set("ReturnService", codeDescription(code, description))
}

// Validate reports a request UPS would reject for structural reasons.
func (b *RateBuilder) Validate() error {
	if b.PackageCount() == 0 {
		return shipper.InvalidAttribute(carrierName, "At least one package is required")
	}
	return nil
}

// Build returns the request tree.
func (b *RateBuilder) Build() *document.Node {
	return b.buildTree()
}

// Encode validates and serializes the request.
func (b *RateBuilder) Encode() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.encode(b.Build())
}
