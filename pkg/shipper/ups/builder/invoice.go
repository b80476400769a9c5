package builder

import "github.com/tournevent/upslink/pkg/shipper/ups/document"

// invoiceFormType is the commercial invoice form.
const invoiceFormType = "01"

func newInvoiceNode(inv Invoice, soldTo *document.Node) *document.Node {
	forms := document.New()
	forms.Set("FormType", invoiceFormType)
	if soldTo != nil {
		forms.Child("Contacts").Set("SoldTo", soldTo)
	}
	for _, p := range inv.Products {
		forms.Append("Product", newProductNode(p))
	}
	forms.SetIf("InvoiceNumber", Truncate(inv.Number, maxInvoiceNumber))
	forms.Set("InvoiceDate", Truncate(inv.Date, maxInvoiceDate))
	forms.SetIf("TermsOfShipment", Truncate(inv.TermsOfShipment, maxTerms))
	forms.Set("ReasonForExport", Truncate(inv.ReasonForExport, maxReason))
	forms.Child("Discount").Set("MonetaryValue", inv.Discount)
	forms.Child("FreightCharges").Set("MonetaryValue", inv.FreightCharge)
	forms.Set("CurrencyCode", Truncate(inv.CurrencyCode, maxCurrency))
	return forms
}

func newProductNode(p Product) *document.Node {
	node := document.New()
	node.Set("Description", p.Description)
	unit := node.Child("Unit")
	unit.Set("Number", p.Number)
	unit.Set("Value", p.Value)
	unit.Child("UnitOfMeasurement").Set("Code", p.Unit)
	node.SetIf("CommodityCode", Truncate(p.CommodityCode, maxCommodityCode))
	node.SetIf("PartNumber", Truncate(p.PartNumber, maxPartNumber))
	node.Set("OriginCountryCode", Truncate(p.OriginCountryCode, maxCountryCode))
	return node
}
