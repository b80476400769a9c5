package builder

import (
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// shipmentOrder is the element sequence the legacy schema validates.
var shipmentOrder = []string{
	"Description",
	"ReturnService",
	"Shipper",
	"ShipTo",
	"ShipFrom",
	"ItemizedPaymentInformation",
	"PaymentInformation",
	"RateInformation",
	"ShipmentRatingOptions",
	"InvoiceLineTotal",
	"USPSEndorsement",
	"CostCenter",
	"PackageID",
	"ShipmentServiceOptions",
	"Service",
	"ReferenceNumber",
	"Package",
}

// shipmentDocument is the part shared by rate and ship requests.
type shipmentDocument struct {
	*base
	packagingKey   string
	shipment       *document.Node
	serviceOptions *document.Node
	soldTo         *document.Node
	invoice        *Invoice
}

func newShipmentDocument(b *base, packagingKey string) *shipmentDocument {
	return &shipmentDocument{
		base:           b,
		packagingKey:   packagingKey,
		shipment:       document.New(),
		serviceOptions: document.New(),
	}
}

// AddShipper sets the shipper. Its AccountNumber becomes the ShipperNumber.
func (s *shipmentDocument) AddShipper(p Party) error {
	return s.setParty("Shipper", p, roleShipper)
}

// AddShipTo sets the recipient.
func (s *shipmentDocument) AddShipTo(p Party) error {
	return s.setParty("ShipTo", p, roleShipTo)
}

// AddShipFrom sets the origin when it differs from the shipper.
func (s *shipmentDocument) AddShipFrom(p Party) error {
	return s.setParty("ShipFrom", p, roleShipFrom)
}

// AddSoldTo sets the sold-to party. It is emitted with the international
// invoice, so a ship request carrying one must also carry an invoice.
func (s *shipmentDocument) AddSoldTo(p Party) error {
	node, err := newPartyNode(p, roleSoldTo, s.opts.Generation)
	if err != nil {
		return err
	}
	s.soldTo = node
	return nil
}

func (s *shipmentDocument) setParty(key string, p Party, role partyRole) error {
	node, err := newPartyNode(p, role, s.opts.Generation)
	if err != nil {
		return err
	}
	s.shipment.Set(key, node)
	return nil
}

// AddPackage appends a package. Packages keep their insertion order.
func (s *shipmentDocument) AddPackage(p Package) {
	s.shipment.Append("Package", newPackageNode(p, s.packagingKey, s.opts.dimensionLength()))
}

// AddPaymentInformation bills the shipment to the shipper account.
func (s *shipmentDocument) AddPaymentInformation(accountNumber string) {
	charge := document.New().Set("Type", "01")
	charge.Child("BillShipper").Set("AccountNumber", accountNumber)
	s.shipment.Child(s.paymentKey()).Set("ShipmentCharge", charge)
}

func (s *shipmentDocument) paymentKey() string {
	if s.opts.Generation == document.XML {
		return "ItemizedPaymentInformation"
	}
	return "PaymentInformation"
}

// AddRateInformation requests negotiated rates.
func (s *shipmentDocument) AddRateInformation() {
	if s.opts.Generation == document.XML {
		s.shipment.Child("RateInformation").Set("NegotiatedRatesIndicator", "")
		return
	}
	s.shipment.Child("ShipmentRatingOptions").Set("NegotiatedRatesIndicator", "1")
}

// AddShipmentDeliveryConfirmation requests delivery confirmation of the
// given DCIS type.
func (s *shipmentDocument) AddShipmentDeliveryConfirmation(dcisType string) {
	s.serviceOptions.Child("DeliveryConfirmation").Set("DCISType", dcisType)
}

// AddShipmentDirectDeliveryOnly restricts delivery to the ship-to address.
func (s *shipmentDocument) AddShipmentDirectDeliveryOnly() {
	s.serviceOptions.Set("DirectDeliveryOnlyIndicator", "")
}

// ServiceCode returns the selected service code, or "".
func (s *shipmentDocument) ServiceCode() string {
	v, _ := s.shipment.Lookup("Service", "Code")
	code, _ := v.(string)
	return code
}

// PackageCount returns the number of packages added.
func (s *shipmentDocument) PackageCount() int {
	return len(s.shipment.Nodes("Package"))
}

func (s *shipmentDocument) setService(code, description string) {
	if description == "" {
		description = code
	}
	s.shipment.Set("Service", codeDescription(code, description))
}

// buildTree assembles a fresh tree. The stored sections are cloned so a
// builder can be built any number of times with the same result.
func (s *shipmentDocument) buildTree() *document.Node {
	shipment := s.shipment.Clone()

	options := s.serviceOptions.Clone()
	if s.invoice != nil {
		options.Set("InternationalForms", newInvoiceNode(*s.invoice, s.soldTo.Clone()))
	}
	if !options.IsEmpty() {
		shipment.Set("ShipmentServiceOptions", options)
	}
	if s.opts.Generation == document.XML {
		shipment.Reorder(shipmentOrder)
	}

	root := document.New()
	root.Set("Request", s.request.Clone())
	root.Set("Shipment", shipment)
	for _, k := range s.root.Keys() {
		v, _ := s.root.Get(k)
		if n, ok := v.(*document.Node); ok {
			v = n.Clone()
		}
		root.Set(k, v)
	}
	return root
}
