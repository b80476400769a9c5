package builder

import (
	"strings"

	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// LabelRecoveryBuilder builds a request to retrieve previously generated
// labels, either by tracking number or by shipment reference.
type LabelRecoveryBuilder struct {
	*base
}

// NewLabelRecoveryBuilder returns an empty label recovery request.
func NewLabelRecoveryBuilder(opts Options) *LabelRecoveryBuilder {
	return &LabelRecoveryBuilder{base: newBase(opts, "LabelRecoveryRequest", "LabelRecovery", "")}
}

// AddLabelSpecification sets the image format. Codes are sent upper-case.
func (b *LabelRecoveryBuilder) AddLabelSpecification(format string) {
	b.root.Child("LabelSpecification").Child("LabelImageFormat").Set("Code", strings.ToUpper(format))
}

// AddTrackingNumber selects the shipment by tracking number.
func (b *LabelRecoveryBuilder) AddTrackingNumber(number string) {
	b.root.Set("TrackingNumber", number)
}

// AddReferenceNumber selects the shipment by reference. It may be combined
// with AddShipperNumber in either order.
func (b *LabelRecoveryBuilder) AddReferenceNumber(value string) {
	b.root.Child("ReferenceValues").Child("ReferenceNumber").Set("Value", value)
}

// AddShipperNumber scopes a reference lookup to a shipper account.
func (b *LabelRecoveryBuilder) AddShipperNumber(number string) {
	b.root.Child("ReferenceValues").Set("ShipperNumber", number)
}

// Validate requires a tracking number or a reference.
func (b *LabelRecoveryBuilder) Validate() error {
	if b.root.String("TrackingNumber") == "" && !b.root.Has("ReferenceValues") {
		return shipper.InvalidAttribute(carrierName, "Tracking number or reference number is required")
	}
	return nil
}

// Build returns the request tree.
func (b *LabelRecoveryBuilder) Build() *document.Node {
	root := b.root.Clone()
	if refs := root.Node("ReferenceValues"); refs != nil {
		refs.Reorder([]string{"ReferenceNumber", "ShipperNumber"})
	}
	root.Reorder([]string{"LabelSpecification", "TrackingNumber", "ReferenceValues"})
	out := document.New().Set("Request", b.request.Clone())
	for _, k := range root.Keys() {
		v, _ := root.Get(k)
		out.Set(k, v)
	}
	return out
}

// Encode validates and serializes the request.
func (b *LabelRecoveryBuilder) Encode() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.encode(b.Build())
}
