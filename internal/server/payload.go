package server

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tournevent/upslink/pkg/shipper"
)

// ============================================================================
// Inputs
// ============================================================================

type addressInput struct {
	Name          string `json:"name"`
	Company       string `json:"company,omitempty"`
	Line1         string `json:"line1"`
	Line2         string `json:"line2,omitempty"`
	City          string `json:"city"`
	ProvinceCode  string `json:"provinceCode,omitempty"`
	PostalCode    string `json:"postalCode"`
	CountryCode   string `json:"countryCode"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
	IsResidential bool   `json:"isResidential,omitempty"`
}

type contactInput struct {
	Name          string `json:"name"`
	Company       string `json:"company,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
	TaxID         string `json:"taxId,omitempty"`
	AccountNumber string `json:"accountNumber,omitempty"`
}

type packageInput struct {
	Length        decimal.Decimal `json:"length"`
	Width         decimal.Decimal `json:"width"`
	Height        decimal.Decimal `json:"height"`
	DimensionUnit string          `json:"dimensionUnit,omitempty"`
	Weight        decimal.Decimal `json:"weight"`
	WeightUnit    string          `json:"weightUnit,omitempty"`
	PackageType   string          `json:"packageType,omitempty"`
	Description   string          `json:"description,omitempty"`
	DeclaredValue decimal.Decimal `json:"declaredValue"`
	Currency      string          `json:"currency,omitempty"`
}

type optionsInput struct {
	Carriers          []string   `json:"carriers,omitempty"`
	ServiceTypes      []string   `json:"serviceTypes,omitempty"`
	SignatureRequired bool       `json:"signatureRequired,omitempty"`
	InsuranceRequired bool       `json:"insuranceRequired,omitempty"`
	SaturdayDelivery  bool       `json:"saturdayDelivery,omitempty"`
	NegotiatedRates   bool       `json:"negotiatedRates,omitempty"`
	ShipDate          *time.Time `json:"shipDate,omitempty"`
}

type quoteInput struct {
	ShipperID   string         `json:"shipperId,omitempty"`
	Origin      addressInput   `json:"origin"`
	Destination addressInput   `json:"destination"`
	Packages    []packageInput `json:"packages"`
	Options     optionsInput   `json:"options"`
}

type customsItemInput struct {
	Description   string          `json:"description"`
	Quantity      int             `json:"quantity"`
	UnitValue     decimal.Decimal `json:"unitValue"`
	Unit          string          `json:"unit,omitempty"`
	PartNumber    string          `json:"partNumber,omitempty"`
	HSCode        string          `json:"hsCode,omitempty"`
	OriginCountry string          `json:"originCountry,omitempty"`
}

type customsInput struct {
	InvoiceNumber   string             `json:"invoiceNumber,omitempty"`
	InvoiceDate     *time.Time         `json:"invoiceDate,omitempty"`
	TermsOfShipment string             `json:"termsOfShipment,omitempty"`
	ReasonForExport string             `json:"reasonForExport,omitempty"`
	Currency        string             `json:"currency"`
	FreightCharge   decimal.Decimal    `json:"freightCharge"`
	Discount        decimal.Decimal    `json:"discount"`
	Items           []customsItemInput `json:"items"`
}

type createOrderInput struct {
	ShipperID        string         `json:"shipperId,omitempty"`
	QuoteID          string         `json:"quoteId,omitempty"`
	RateID           string         `json:"rateId,omitempty"`
	ServiceCode      string         `json:"serviceCode,omitempty"`
	Sender           contactInput   `json:"sender"`
	SenderAddress    addressInput   `json:"senderAddress"`
	Recipient        contactInput   `json:"recipient"`
	RecipientAddress addressInput   `json:"recipientAddress"`
	Packages         []packageInput `json:"packages"`
	Reference        string         `json:"reference,omitempty"`
	PONumber         string         `json:"poNumber,omitempty"`
	Instructions     string         `json:"instructions,omitempty"`
	Description      string         `json:"description,omitempty"`
	LabelFormat      string         `json:"labelFormat,omitempty"`
	Customs          *customsInput  `json:"customs,omitempty"`
}

func (in addressInput) model() shipper.Address {
	return shipper.Address{
		Name:          in.Name,
		Company:       in.Company,
		Line1:         in.Line1,
		Line2:         in.Line2,
		City:          in.City,
		ProvinceCode:  in.ProvinceCode,
		PostalCode:    in.PostalCode,
		CountryCode:   strings.ToUpper(in.CountryCode),
		Phone:         in.Phone,
		Email:         in.Email,
		Instructions:  in.Instructions,
		IsResidential: in.IsResidential,
	}
}

func (in contactInput) model() shipper.Contact {
	return shipper.Contact{
		Name:          in.Name,
		Company:       in.Company,
		Phone:         in.Phone,
		Email:         in.Email,
		TaxID:         in.TaxID,
		AccountNumber: in.AccountNumber,
	}
}

func packagesToModel(inputs []packageInput) []shipper.Package {
	packages := make([]shipper.Package, len(inputs))
	for i, in := range inputs {
		pkg := shipper.Package{
			Length:        in.Length.InexactFloat64(),
			Width:         in.Width.InexactFloat64(),
			Height:        in.Height.InexactFloat64(),
			Weight:        in.Weight.InexactFloat64(),
			DimensionUnit: shipper.DimensionCM,
			WeightUnit:    shipper.WeightKG,
			PackageType:   shipper.PackageBox,
			Description:   in.Description,
			DeclaredValue: in.DeclaredValue.InexactFloat64(),
			Currency:      in.Currency,
		}
		if strings.EqualFold(in.DimensionUnit, string(shipper.DimensionIN)) {
			pkg.DimensionUnit = shipper.DimensionIN
		}
		if strings.EqualFold(in.WeightUnit, string(shipper.WeightLB)) {
			pkg.WeightUnit = shipper.WeightLB
		}
		if in.PackageType != "" {
			pkg.PackageType = shipper.PackageType(strings.ToLower(in.PackageType))
		}
		packages[i] = pkg
	}
	return packages
}

func (in optionsInput) model() shipper.ShippingOptions {
	opts := shipper.ShippingOptions{
		Carriers:          in.Carriers,
		SignatureRequired: in.SignatureRequired,
		InsuranceRequired: in.InsuranceRequired,
		SaturdayDelivery:  in.SaturdayDelivery,
		NegotiatedRates:   in.NegotiatedRates,
		ShipDate:          in.ShipDate,
	}
	for _, st := range in.ServiceTypes {
		opts.ServiceTypes = append(opts.ServiceTypes, shipper.ServiceType(strings.ToLower(st)))
	}
	return opts
}

func (in quoteInput) model() *shipper.QuoteRequest {
	return &shipper.QuoteRequest{
		ShipperID:   in.ShipperID,
		Origin:      in.Origin.model(),
		Destination: in.Destination.model(),
		Packages:    packagesToModel(in.Packages),
		Options:     in.Options.model(),
	}
}

func (in *customsInput) model() *shipper.Customs {
	if in == nil {
		return nil
	}
	customs := &shipper.Customs{
		InvoiceNumber:   in.InvoiceNumber,
		TermsOfShipment: in.TermsOfShipment,
		ReasonForExport: in.ReasonForExport,
		Currency:        in.Currency,
		FreightCharge:   in.FreightCharge.InexactFloat64(),
		Discount:        in.Discount.InexactFloat64(),
	}
	if in.InvoiceDate != nil {
		customs.InvoiceDate = *in.InvoiceDate
	}
	for _, item := range in.Items {
		customs.Items = append(customs.Items, shipper.CustomsItem{
			Description:   item.Description,
			Quantity:      item.Quantity,
			UnitValue:     item.UnitValue.InexactFloat64(),
			Unit:          item.Unit,
			PartNumber:    item.PartNumber,
			HSCode:        item.HSCode,
			OriginCountry: item.OriginCountry,
		})
	}
	return customs
}

func (in createOrderInput) model() *shipper.CreateOrderRequest {
	return &shipper.CreateOrderRequest{
		ShipperID:        in.ShipperID,
		QuoteID:          in.QuoteID,
		RateID:           in.RateID,
		ServiceCode:      in.ServiceCode,
		Sender:           in.Sender.model(),
		SenderAddress:    in.SenderAddress.model(),
		Recipient:        in.Recipient.model(),
		RecipientAddress: in.RecipientAddress.model(),
		Packages:         packagesToModel(in.Packages),
		Reference:        in.Reference,
		PONumber:         in.PONumber,
		Instructions:     in.Instructions,
		Description:      in.Description,
		LabelFormat:      shipper.LabelFormat(strings.ToLower(in.LabelFormat)),
		Customs:          in.Customs.model(),
	}
}

// ============================================================================
// Payloads
// ============================================================================

type errorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

type moneyPayload struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type ratePayload struct {
	RateID            string       `json:"rateId"`
	Carrier           string       `json:"carrier"`
	ServiceCode       string       `json:"serviceCode"`
	ServiceName       string       `json:"serviceName"`
	ServiceType       string       `json:"serviceType"`
	TotalPrice        moneyPayload `json:"totalPrice"`
	TransitDays       int          `json:"transitDays,omitempty"`
	EstimatedDelivery *time.Time   `json:"estimatedDelivery,omitempty"`
	ExpiresAt         time.Time    `json:"expiresAt"`
	Guaranteed        bool         `json:"guaranteed"`
	Warnings          []string     `json:"warnings,omitempty"`
}

type quotePayload struct {
	Success bool           `json:"success"`
	QuoteID string         `json:"quoteId,omitempty"`
	Rates   []ratePayload  `json:"rates"`
	Errors  []errorPayload `json:"errors,omitempty"`
}

type labelPayload struct {
	TrackingNumber string     `json:"trackingNumber,omitempty"`
	Format         string     `json:"format"`
	Data           string     `json:"data,omitempty"`
	URL            string     `json:"url,omitempty"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

type orderPayload struct {
	Success        bool           `json:"success"`
	OrderID        string         `json:"orderId,omitempty"`
	TrackingNumber string         `json:"trackingNumber,omitempty"`
	TrackingURL    string         `json:"trackingUrl,omitempty"`
	Status         string         `json:"status,omitempty"`
	Carrier        string         `json:"carrier,omitempty"`
	ServiceName    string         `json:"serviceName,omitempty"`
	Labels         []labelPayload `json:"labels,omitempty"`
	CustomsForm    *labelPayload  `json:"customsForm,omitempty"`
	Errors         []errorPayload `json:"errors,omitempty"`
}

type labelResultPayload struct {
	Success          bool           `json:"success"`
	OrderID          string         `json:"orderId,omitempty"`
	Label            *labelPayload  `json:"label,omitempty"`
	AdditionalLabels []labelPayload `json:"additionalLabels,omitempty"`
	Errors           []errorPayload `json:"errors,omitempty"`
}

type eventPayload struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Location    string    `json:"location,omitempty"`
	Status      string    `json:"status"`
	CarrierCode string    `json:"carrierCode,omitempty"`
}

type trackPayload struct {
	Success        bool           `json:"success"`
	TrackingNumber string         `json:"trackingNumber"`
	Status         string         `json:"status,omitempty"`
	StatusCode     string         `json:"statusCode,omitempty"`
	Description    string         `json:"description,omitempty"`
	StatusDate     *time.Time     `json:"statusDate,omitempty"`
	Events         []eventPayload `json:"events,omitempty"`
	Errors         []errorPayload `json:"errors,omitempty"`
}

type carriersPayload struct {
	Carriers []string `json:"carriers"`
}

func moneyToPayload(m shipper.Money) moneyPayload {
	return moneyPayload{Amount: m.Amount.StringFixed(2), Currency: m.Currency}
}

func rateToPayload(r shipper.RateOption) ratePayload {
	return ratePayload{
		RateID:            r.RateID,
		Carrier:           r.Carrier,
		ServiceCode:       r.ServiceCode,
		ServiceName:       r.ServiceName,
		ServiceType:       string(r.ServiceType),
		TotalPrice:        moneyToPayload(r.TotalPrice),
		TransitDays:       r.TransitDays,
		EstimatedDelivery: r.EstimatedDelivery,
		ExpiresAt:         r.ExpiresAt,
		Guaranteed:        r.Guaranteed,
		Warnings:          r.Warnings,
	}
}

func labelToPayload(l shipper.Label) labelPayload {
	return labelPayload{
		TrackingNumber: l.TrackingNumber,
		Format:         string(l.Format),
		Data:           l.Data,
		URL:            l.URL,
		ExpiresAt:      l.ExpiresAt,
	}
}

func orderToPayload(resp *shipper.CreateOrderResponse) orderPayload {
	p := orderPayload{
		Success:        true,
		OrderID:        resp.OrderID,
		TrackingNumber: resp.TrackingNumber,
		TrackingURL:    resp.TrackingURL,
		Status:         string(resp.Status),
		Carrier:        resp.Carrier,
		ServiceName:    resp.ServiceName,
	}
	for _, l := range resp.Labels {
		p.Labels = append(p.Labels, labelToPayload(l))
	}
	if resp.CustomsForm != nil {
		form := labelToPayload(*resp.CustomsForm)
		p.CustomsForm = &form
	}
	return p
}

func labelResultToPayload(resp *shipper.GetLabelResponse) labelResultPayload {
	label := labelToPayload(resp.Label)
	p := labelResultPayload{Success: true, OrderID: resp.OrderID, Label: &label}
	for _, l := range resp.AdditionalLabels {
		p.AdditionalLabels = append(p.AdditionalLabels, labelToPayload(l))
	}
	return p
}

func trackToPayload(resp *shipper.TrackResponse) trackPayload {
	p := trackPayload{
		Success:        true,
		TrackingNumber: resp.TrackingNumber,
		Status:         string(resp.Status),
		StatusCode:     resp.StatusCode,
		Description:    resp.Description,
	}
	if !resp.StatusDate.IsZero() {
		date := resp.StatusDate
		p.StatusDate = &date
	}
	for _, e := range resp.Events {
		p.Events = append(p.Events, eventPayload{
			Timestamp:   e.Timestamp,
			Description: e.Description,
			Location:    e.Location,
			Status:      string(e.Status),
			CarrierCode: e.CarrierCode,
		})
	}
	return p
}

func errorToPayload(err error) errorPayload {
	var shipErr *shipper.ShipperError
	switch {
	case errors.As(err, &shipErr):
		return errorPayload{Code: shipErr.Code, Message: shipErr.Message, Retryable: shipErr.Retryable}
	case errors.Is(err, shipper.ErrCarrierNotFound):
		return errorPayload{Code: "CARRIER_NOT_FOUND", Message: err.Error()}
	default:
		return errorPayload{Code: shipper.CodeCarrier, Message: err.Error(), Retryable: shipper.IsRetryable(err)}
	}
}

func errorsToPayload(errs []error) []errorPayload {
	if len(errs) == 0 {
		return nil
	}
	result := make([]errorPayload, len(errs))
	for i, err := range errs {
		result[i] = errorToPayload(err)
	}
	return result
}
