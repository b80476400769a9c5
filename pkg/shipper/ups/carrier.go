package ups

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/builder"
	"github.com/tournevent/upslink/pkg/shipper/ups/data"
	"github.com/tournevent/upslink/pkg/shipper/ups/parser"
	"go.uber.org/zap"
)

const (
	quoteTTL            = 30 * time.Minute
	defaultLabelFormat  = shipper.LabelGIF
	signatureRequired   = "2"
	trackingURLTemplate = "https://www.ups.com/track?tracknum=%s"
)

// Carrier exposes a Client through the carrier-neutral shipper.Shipper
// interface.
type Carrier struct {
	client *Client
}

// NewCarrier wraps client.
func NewCarrier(client *Client) *Carrier {
	return &Carrier{client: client}
}

// Client returns the underlying gateway.
func (c *Carrier) Client() *Client {
	return c.client
}

// Name returns the carrier name.
func (c *Carrier) Name() string {
	return carrierName
}

// GetQuote shops every UPS service for the shipment.
func (c *Carrier) GetQuote(ctx context.Context, req *shipper.QuoteRequest) (*shipper.QuoteResponse, error) {
	if len(req.Packages) == 0 {
		return nil, shipper.InvalidAttribute(carrierName, "At least one package is required")
	}

	result, err := c.client.RatesWith(ctx, func(b *builder.RateBuilder) error {
		origin := addressToParty(req.Origin, shipper.Contact{}, c.client.config.AccountNumber)
		if err := b.AddShipper(origin); err != nil {
			return err
		}
		if err := b.AddShipFrom(origin); err != nil {
			return err
		}
		if err := b.AddShipTo(addressToParty(req.Destination, shipper.Contact{}, "")); err != nil {
			return err
		}
		for _, p := range req.Packages {
			b.AddPackage(packageToBuilder(p))
		}
		if req.Options.NegotiatedRates {
			b.AddRateInformation()
		}
		if req.Options.SignatureRequired {
			b.AddShipmentDeliveryConfirmation(signatureRequired)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, carrierError(result.Envelope)
	}

	resp := rateResultToShipper(result)
	resp.Rates = filterServiceTypes(resp.Rates, req.Options.ServiceTypes)
	c.client.logger.Ctx(ctx).Info("UPS quotes received", zap.Int("rate_count", len(resp.Rates)))
	return resp, nil
}

// CreateOrder ships the order and returns its labels.
func (c *Carrier) CreateOrder(ctx context.Context, req *shipper.CreateOrderRequest) (*shipper.CreateOrderResponse, error) {
	serviceCode := req.ServiceCode
	if serviceCode == "" {
		serviceCode = extractServiceCode(req.RateID)
	}
	if serviceCode == "" {
		return nil, shipper.InvalidAttribute(carrierName, "Service code is required")
	}
	if len(req.Packages) == 0 {
		return nil, shipper.InvalidAttribute(carrierName, "At least one package is required")
	}

	account := req.Sender.AccountNumber
	if account == "" {
		account = c.client.config.AccountNumber
	}
	format := req.LabelFormat
	if format == "" {
		format = defaultLabelFormat
	}

	result, err := c.client.ShipWith(ctx, func(b *builder.ShipBuilder) error {
		sender := addressToParty(req.SenderAddress, req.Sender, account)
		recipient := addressToParty(req.RecipientAddress, req.Recipient, "")
		if err := b.AddShipper(sender); err != nil {
			return err
		}
		if err := b.AddShipFrom(sender); err != nil {
			return err
		}
		if err := b.AddShipTo(recipient); err != nil {
			return err
		}
		b.AddService(serviceCode, data.ServiceName(serviceCode))
		for _, p := range req.Packages {
			b.AddPackage(packageToBuilder(p))
		}
		b.AddPaymentInformation(account)
		b.AddLabelSpecification(strings.ToUpper(string(format)), builder.LabelSize{})
		if req.Description != "" {
			b.AddDescription(req.Description)
		}
		if req.Reference != "" {
			b.AddReferenceNumber("", req.Reference)
		}
		if req.Customs != nil {
			if err := b.AddSoldTo(recipient); err != nil {
				return err
			}
			b.AddInternationalInvoice(customsToInvoice(*req.Customs))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, carrierError(result.Envelope)
	}

	c.client.logger.Ctx(ctx).Info("UPS shipment created",
		zap.String("tracking_number", result.TrackingNumber()),
		zap.Int("label_count", len(result.Packages)),
	)
	return shipResultToShipper(result, serviceCode), nil
}

// GetLabel recovers the label of a shipped package. OrderID is the
// tracking number returned by CreateOrder.
func (c *Carrier) GetLabel(ctx context.Context, req *shipper.GetLabelRequest) (*shipper.GetLabelResponse, error) {
	if req.OrderID == "" {
		return nil, shipper.InvalidAttribute(carrierName, "Tracking number is required")
	}
	format := req.Format
	if format == "" {
		format = defaultLabelFormat
	}

	result, err := c.client.RecoverLabelWith(ctx, func(b *builder.LabelRecoveryBuilder) error {
		b.AddLabelSpecification(string(format))
		b.AddTrackingNumber(req.OrderID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, carrierError(result.Envelope).WithCause(shipper.ErrLabelNotAvailable)
	}
	return labelResultToShipper(req.OrderID, result), nil
}

// Track returns the latest status of a package.
func (c *Carrier) Track(ctx context.Context, req *shipper.TrackRequest) (*shipper.TrackResponse, error) {
	result, err := c.client.Track(ctx, req.TrackingNumber)
	if err != nil {
		return nil, err
	}
	if !result.Success() {
		return nil, carrierError(result.Envelope).WithCause(shipper.ErrTrackingNotFound)
	}
	return trackResultToShipper(result), nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func addressToParty(addr shipper.Address, contact shipper.Contact, account string) builder.Party {
	company := firstNonEmpty(contact.Company, addr.Company, contact.Name, addr.Name)
	return builder.Party{
		CompanyName:   company,
		AttentionName: firstNonEmpty(contact.Name, addr.Name, company),
		PhoneNumber:   firstNonEmpty(contact.Phone, addr.Phone),
		Email:         firstNonEmpty(contact.Email, addr.Email),
		TaxID:         contact.TaxID,
		AccountNumber: account,
		Address: builder.Address{
			Lines:      []string{addr.Line1, addr.Line2},
			City:       addr.City,
			State:      addr.ProvinceCode,
			PostalCode: addr.PostalCode,
			Country:    addr.CountryCode,
		},
	}
}

func packageToBuilder(p shipper.Package) builder.Package {
	pkg := builder.Package{
		Description: p.Description,
		Weight:      formatMeasure(p.Weight),
		WeightUnit:  weightUnit(p.WeightUnit),
	}
	if p.Length > 0 || p.Width > 0 || p.Height > 0 {
		pkg.Dimensions = &builder.Dimensions{
			Length: formatMeasure(p.Length),
			Width:  formatMeasure(p.Width),
			Height: formatMeasure(p.Height),
			Unit:   dimensionUnit(p.DimensionUnit),
		}
	}
	if code, ok := packagingCodes[p.PackageType]; ok {
		pkg.Packaging = &builder.Packaging{Code: code}
	}
	return pkg
}

// packagingCodes maps package types onto UPS packaging. Boxes and custom
// parcels use customer supplied packaging.
var packagingCodes = map[shipper.PackageType]string{
	shipper.PackageEnvelope: "01",
	shipper.PackageTube:     "03",
	shipper.PackagePallet:   "30",
}

func formatMeasure(v float64) string {
	return decimal.NewFromFloat(v).Round(2).String()
}

func weightUnit(u shipper.WeightUnit) string {
	if u == shipper.WeightLB {
		return "LBS"
	}
	return "KGS"
}

func dimensionUnit(u shipper.DimensionUnit) string {
	if u == shipper.DimensionIN {
		return "IN"
	}
	return "CM"
}

func customsToInvoice(c shipper.Customs) builder.Invoice {
	inv := builder.Invoice{
		Number:          c.InvoiceNumber,
		TermsOfShipment: c.TermsOfShipment,
		ReasonForExport: c.ReasonForExport,
		CurrencyCode:    c.Currency,
		FreightCharge:   formatMeasure(c.FreightCharge),
		Discount:        formatMeasure(c.Discount),
	}
	if !c.InvoiceDate.IsZero() {
		inv.Date = c.InvoiceDate.Format("20060102")
	}
	for _, item := range c.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		unit := item.Unit
		if unit == "" {
			unit = "PCS"
		}
		inv.Products = append(inv.Products, builder.Product{
			Description:       item.Description,
			Number:            strconv.Itoa(quantity),
			Value:             formatMeasure(item.UnitValue),
			Unit:              unit,
			PartNumber:        item.PartNumber,
			CommodityCode:     item.HSCode,
			OriginCountryCode: item.OriginCountry,
		})
	}
	return inv
}

func rateResultToShipper(result *parser.RateResult) *shipper.QuoteResponse {
	expiresAt := time.Now().Add(quoteTTL)
	rates := make([]shipper.RateOption, 0, len(result.Rates))

	for _, r := range result.Rates {
		name := r.ServiceName
		if name == "" {
			name = data.ServiceName(r.ServiceCode)
		}
		rates = append(rates, shipper.RateOption{
			RateID:      generateRateID(r.ServiceCode),
			Carrier:     carrierName,
			ServiceCode: r.ServiceCode,
			ServiceName: name,
			ServiceType: mapServiceType(r.ServiceCode),
			TotalPrice:  shipper.Money{Amount: r.Total.Amount, Currency: r.Total.Currency},
			ExpiresAt:   expiresAt,
			Guaranteed:  mapServiceType(r.ServiceCode) == shipper.ServiceOvernight,
			Warnings:    r.Warnings,
		})
	}

	return &shipper.QuoteResponse{
		QuoteID:   "ups-quote-" + uuid.New().String()[:8],
		Rates:     rates,
		ExpiresAt: expiresAt,
	}
}

func filterServiceTypes(rates []shipper.RateOption, types []shipper.ServiceType) []shipper.RateOption {
	if len(types) == 0 {
		return rates
	}
	allowed := make(map[shipper.ServiceType]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	filtered := rates[:0]
	for _, r := range rates {
		if allowed[r.ServiceType] {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func shipResultToShipper(result *parser.ShipResult, serviceCode string) *shipper.CreateOrderResponse {
	trackingNumber := result.TrackingNumber()
	resp := &shipper.CreateOrderResponse{
		OrderID:        trackingNumber,
		TrackingNumber: trackingNumber,
		TrackingURL:    fmt.Sprintf(trackingURLTemplate, trackingNumber),
		Status:         shipper.StatusConfirmed,
		Carrier:        carrierName,
		ServiceName:    data.ServiceName(serviceCode),
	}
	for _, p := range result.Packages {
		resp.Labels = append(resp.Labels, imageToLabel(p.TrackingNumber, p.Label))
	}
	if form := result.FormImage(); form != nil {
		label := imageToLabel(trackingNumber, *form)
		resp.CustomsForm = &label
	}
	return resp
}

func labelResultToShipper(orderID string, result *parser.LabelResult) *shipper.GetLabelResponse {
	resp := &shipper.GetLabelResponse{OrderID: orderID}
	for i, p := range result.Labels {
		label := imageToLabel(p.TrackingNumber, p.Label)
		if i == 0 {
			resp.Label = label
			continue
		}
		resp.AdditionalLabels = append(resp.AdditionalLabels, label)
	}
	return resp
}

func imageToLabel(trackingNumber string, img parser.Image) shipper.Label {
	return shipper.Label{
		TrackingNumber: trackingNumber,
		Format:         shipper.LabelFormat(strings.ToLower(img.Format)),
		Data:           base64.StdEncoding.EncodeToString(img.Data),
	}
}

func trackResultToShipper(result *parser.TrackResult) *shipper.TrackResponse {
	resp := &shipper.TrackResponse{
		TrackingNumber: result.TrackingNumber,
		Status:         mapTrackingStatus(result.StatusTypeCode),
		StatusCode:     result.StatusTypeCode,
		Description:    result.StatusTypeDescription,
		StatusDate:     result.StatusDate,
	}
	for _, a := range result.Events {
		resp.Events = append(resp.Events, shipper.TrackingEvent{
			Timestamp:   eventTime(a),
			Description: a.Description,
			Location:    a.Location,
			Status:      mapTrackingStatus(a.StatusCode),
			CarrierCode: a.StatusCode,
		})
	}
	return resp
}

func eventTime(a parser.Activity) time.Time {
	if a.Date.IsZero() {
		return a.Date
	}
	clock := strings.ReplaceAll(a.Time, ":", "")
	if t, err := time.Parse("150405", clock); err == nil {
		return a.Date.Add(time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second)
	}
	return a.Date
}

// carrierError turns a rejected envelope into an error.
func carrierError(env parser.Envelope) *shipper.ShipperError {
	message := env.ErrorDescription()
	if message == "" {
		message = "Unexpected response status " + env.StatusCode
	}
	code := shipper.CodeCarrier
	if len(env.Alerts) > 0 && env.Alerts[len(env.Alerts)-1].Code != "" {
		code = shipper.CodeCarrier + ":" + env.Alerts[len(env.Alerts)-1].Code
	}
	return shipper.NewShipperError(carrierName, code, message)
}

func generateRateID(serviceCode string) string {
	return "ups-" + serviceCode + "-" + uuid.New().String()[:8]
}

// extractServiceCode parses a rate ID like "ups-11-1a2b3c4d".
func extractServiceCode(rateID string) string {
	parts := strings.Split(rateID, "-")
	if len(parts) != 3 || parts[0] != carrierName {
		return ""
	}
	return parts[1]
}

func mapServiceType(code string) shipper.ServiceType {
	switch code {
	case "01", "13", "14":
		return shipper.ServiceOvernight
	case "02", "07", "54", "59", "65":
		return shipper.ServiceExpress
	case "08", "12":
		return shipper.ServicePriority
	case "17", "72":
		return shipper.ServiceEconomy
	default:
		return shipper.ServiceStandard
	}
}

func mapTrackingStatus(code string) shipper.ShipmentStatus {
	switch strings.ToUpper(code) {
	case "D":
		return shipper.StatusDelivered
	case "I":
		return shipper.StatusInTransit
	case "P":
		return shipper.StatusPickedUp
	case "X":
		return shipper.StatusException
	case "M", "MV":
		return shipper.StatusPending
	case "OT", "O":
		return shipper.StatusOutForDelivery
	default:
		return shipper.StatusInTransit
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

var _ shipper.Shipper = (*Carrier)(nil)
