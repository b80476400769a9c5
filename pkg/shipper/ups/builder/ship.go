package builder

import (
	"strings"

	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/data"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// ShipBuilder builds a ship request: ShipmentRequest for the REST API,
// ShipmentConfirmRequest for the legacy API.
type ShipBuilder struct {
	*shipmentDocument
}

// NewShipBuilder returns an empty ship request.
func NewShipBuilder(opts Options) *ShipBuilder {
	name, packagingKey := "ShipmentRequest", "Packaging"
	if opts.Generation == document.XML {
		name, packagingKey = "ShipmentConfirmRequest", "PackagingType"
	}
	b := newBase(opts, name, "ShipConfirm", "validate")
	return &ShipBuilder{shipmentDocument: newShipmentDocument(b, packagingKey)}
}

// AddService selects the shipping service.
func (b *ShipBuilder) AddService(code, description string) {
	b.setService(code, description)
}

// AddLabelSpecification sets the label image format and stock size. GIF
// labels also carry the HTTP user agent.
func (b *ShipBuilder) AddLabelSpecification(format string, size LabelSize) {
	spec := document.New()
	if b.opts.Generation == document.XML {
		spec.Set("LabelPrintMethod", codeDescription(format, format+" file"))
	}
	spec.Set("LabelImageFormat", codeDescription(format, format))
	if size.Height != "" || size.Width != "" {
		spec.Child("LabelStockSize").Set("Height", size.Height).Set("Width", size.Width)
	}
	if strings.EqualFold(format, "gif") {
		spec.Set("HTTPUserAgent", UserAgent)
	}
	b.root.Set("LabelSpecification", spec)
}

// AddInternationalInvoice attaches a commercial invoice. A sold-to party,
// when set, is emitted inside it.
func (b *ShipBuilder) AddInternationalInvoice(inv Invoice) {
	b.invoice = &inv
}

// AddUSPSEndorsement sets the USPS endorsement for Mail Innovations.
func (b *ShipBuilder) AddUSPSEndorsement(value string) {
	b.shipment.Set("USPSEndorsement", value)
}

// AddPackageID sets the Mail Innovations package ID.
func (b *ShipBuilder) AddPackageID(value string) {
	b.shipment.Set("PackageID", value)
}

// AddCostCenter sets the Mail Innovations cost center.
func (b *ShipBuilder) AddCostCenter(value string) {
	b.shipment.Set("CostCenter", value)
}

// AddReturnService marks the shipment as a return.
func (b *ShipBuilder) AddReturnService(code, description string) {
	b.shipment.Set("ReturnService", codeDescription(code, description))
}

// AddReferenceNumber attaches a shipment reference. Legacy requests keep
// every reference added; the REST API takes a single one.
func (b *ShipBuilder) AddReferenceNumber(code, value string) {
	ref := document.New().Set("Code", code).Set("Value", value)
	if b.opts.Generation == document.XML {
		b.shipment.Append("ReferenceNumber", ref)
		return
	}
	b.shipment.Set("ReferenceNumber", ref)
}

// AddInvoiceLineTotal declares the invoice total, required for some
// destinations such as Canada.
func (b *ShipBuilder) AddInvoiceLineTotal(value, currency string) {
	b.shipment.Set("InvoiceLineTotal", document.New().
		Set("CurrencyCode", Truncate(currency, maxCurrency)).
		Set("MonetaryValue", value))
}

// AddDescription sets the shipment description.
func (b *ShipBuilder) AddDescription(description string) {
	b.shipment.Set("Description", description)
}

// FinalizeForWorldwideEconomy checks the extra constraints of the
// Worldwide Economy services. Other services always pass.
func (b *ShipBuilder) FinalizeForWorldwideEconomy() error {
	if !data.WorldwideEconomyServices[b.ServiceCode()] {
		return nil
	}

	packages := b.shipment.Nodes("Package")
	if len(packages) != 1 {
		return shipper.InvalidAttribute(carrierName, "Worldwide Economy shipment must be single-piece")
	}
	if code, _ := packages[0].Lookup(b.packagingKey, "Code"); code != data.CustomerSuppliedPackage {
		return shipper.InvalidAttribute(carrierName, "Worldwide Economy shipment must use Customer Supplied Package")
	}
	if account, _ := b.shipment.Lookup(b.paymentKey(), "ShipmentCharge", "BillShipper", "AccountNumber"); account == nil || account == "" {
		return shipper.InvalidAttribute(carrierName, `Worldwide Economy shipment must have "Bill Shipper" Itemized Payment Information`)
	}
	if email, _ := b.shipment.Lookup("ShipTo", "EMailAddress"); email == nil || email == "" {
		return shipper.InvalidAttribute(carrierName, "Worldwide Economy shipment must have Consignee Email address")
	}
	return nil
}

// Validate runs every structural check on the request.
func (b *ShipBuilder) Validate() error {
	if err := b.FinalizeForWorldwideEconomy(); err != nil {
		return err
	}
	if b.soldTo != nil && b.invoice == nil {
		return shipper.InvalidAttribute(carrierName, "Sold-to party requires an international invoice")
	}
	return nil
}

// Build returns the request tree.
func (b *ShipBuilder) Build() *document.Node {
	return b.buildTree()
}

// Encode validates and serializes the request.
func (b *ShipBuilder) Encode() ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b.encode(b.Build())
}
