package shipper

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentStatus represents the normalized status of a shipment.
type ShipmentStatus string

const (
	StatusPending        ShipmentStatus = "pending"
	StatusQuoted         ShipmentStatus = "quoted"
	StatusConfirmed      ShipmentStatus = "confirmed"
	StatusAssigned       ShipmentStatus = "assigned"
	StatusPickedUp       ShipmentStatus = "picked_up"
	StatusInTransit      ShipmentStatus = "in_transit"
	StatusOutForDelivery ShipmentStatus = "out_for_delivery"
	StatusDelivered      ShipmentStatus = "delivered"
	StatusCancelled      ShipmentStatus = "cancelled"
	StatusException      ShipmentStatus = "exception"
)

// ServiceType represents the shipping service type.
type ServiceType string

const (
	ServiceStandard  ServiceType = "standard"
	ServiceExpress   ServiceType = "express"
	ServicePriority  ServiceType = "priority"
	ServiceOvernight ServiceType = "overnight"
	ServiceEconomy   ServiceType = "economy"
	ServiceFreight   ServiceType = "freight"
)

// PackageType represents the type of package.
type PackageType string

const (
	PackageBox      PackageType = "box"
	PackageEnvelope PackageType = "envelope"
	PackageTube     PackageType = "tube"
	PackagePallet   PackageType = "pallet"
	PackageCustom   PackageType = "custom"
)

// WeightUnit represents weight measurement unit.
type WeightUnit string

const (
	WeightKG WeightUnit = "kg"
	WeightLB WeightUnit = "lb"
)

// DimensionUnit represents dimension measurement unit.
type DimensionUnit string

const (
	DimensionCM DimensionUnit = "cm"
	DimensionIN DimensionUnit = "in"
)

// LabelFormat represents the format of shipping labels.
type LabelFormat string

const (
	LabelPDF LabelFormat = "pdf"
	LabelPNG LabelFormat = "png"
	LabelGIF LabelFormat = "gif"
	LabelZPL LabelFormat = "zpl"
	LabelEPL LabelFormat = "epl"
)

// Address represents a shipping address.
type Address struct {
	Name          string
	Company       string
	Line1         string
	Line2         string
	City          string
	ProvinceCode  string // e.g., "ON", "California", "County Dublin"
	PostalCode    string
	CountryCode   string // ISO 3166-1 alpha-2, e.g., "CA", "US"
	Phone         string
	Email         string
	Instructions  string
	IsResidential bool
}

// Contact represents sender or recipient contact info.
type Contact struct {
	Name          string
	Company       string
	Phone         string
	Email         string
	TaxID         string // For customs (international)
	AccountNumber string // Carrier account billed for the shipment
}

// Package represents a package to be shipped.
type Package struct {
	ID            string
	Length        float64
	Width         float64
	Height        float64
	DimensionUnit DimensionUnit
	Weight        float64
	WeightUnit    WeightUnit
	PackageType   PackageType
	Description   string
	DeclaredValue float64
	Currency      string
}

// Money represents a monetary amount.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney builds a Money value from a float amount.
func NewMoney(amount float64, currency string) Money {
	return Money{Amount: decimal.NewFromFloat(amount), Currency: currency}
}

// RateOption represents a shipping rate option from a carrier.
type RateOption struct {
	RateID            string
	Carrier           string
	ServiceCode       string
	ServiceName       string
	ServiceType       ServiceType
	BaseRate          Money
	FuelSurcharge     Money
	Taxes             Money
	TotalPrice        Money
	TransitDays       int
	EstimatedDelivery *time.Time
	ExpiresAt         time.Time
	SignatureRequired bool
	Guaranteed        bool
	Warnings          []string
}

// TrackingEvent represents a tracking event.
type TrackingEvent struct {
	Timestamp   time.Time
	Description string
	Location    string
	Status      ShipmentStatus
	CarrierCode string
}

// Label represents a shipping label.
type Label struct {
	TrackingNumber string
	Format         LabelFormat
	Data           string // Base64 encoded if inline
	URL            string // URL if hosted
	ExpiresAt      *time.Time
}

// CustomsItem is one commodity line on a commercial invoice.
type CustomsItem struct {
	Description   string
	Quantity      int
	UnitValue     float64
	Unit          string
	PartNumber    string
	HSCode        string
	OriginCountry string
}

// Customs describes the commercial invoice for an international shipment.
type Customs struct {
	InvoiceNumber   string
	InvoiceDate     time.Time
	TermsOfShipment string // Incoterm, e.g., "DDP"
	ReasonForExport string
	Currency        string
	FreightCharge   float64
	Discount        float64
	Items           []CustomsItem
}

// ShippingOptions represents shipping preferences.
type ShippingOptions struct {
	Carriers          []string // Empty = all carriers
	ServiceTypes      []ServiceType
	SignatureRequired bool
	InsuranceRequired bool
	SaturdayDelivery  bool
	NegotiatedRates   bool
	ShipDate          *time.Time
}

// ============================================================================
// Request/Response Types
// ============================================================================

// QuoteRequest is the request for getting shipping quotes.
type QuoteRequest struct {
	ShipperID   string
	Origin      Address
	Destination Address
	Packages    []Package
	Options     ShippingOptions
}

// QuoteResponse is the response from getting shipping quotes.
type QuoteResponse struct {
	QuoteID   string
	Rates     []RateOption
	ExpiresAt time.Time
}

// CreateOrderRequest is the request for creating a shipping order.
type CreateOrderRequest struct {
	ShipperID        string
	QuoteID          string // From GetQuote response
	RateID           string // Selected rate
	Sender           Contact
	SenderAddress    Address
	Recipient        Contact
	RecipientAddress Address
	Packages         []Package
	Reference        string
	PONumber         string
	Instructions     string
	ServiceCode      string // Overrides the service encoded in RateID
	Description      string
	LabelFormat      LabelFormat
	Customs          *Customs
}

// CreateOrderResponse is the response from creating a shipping order.
type CreateOrderResponse struct {
	OrderID           string
	TrackingNumber    string
	TrackingURL       string
	Status            ShipmentStatus
	Carrier           string
	ServiceName       string
	TotalCharged      Money
	EstimatedDelivery *time.Time
	LabelURL          string
	Labels            []Label
	CustomsForm       *Label
}

// GetLabelRequest is the request for getting a shipping label.
type GetLabelRequest struct {
	OrderID string
	Format  LabelFormat
}

// GetLabelResponse is the response from getting a shipping label.
type GetLabelResponse struct {
	OrderID          string
	Label            Label
	AdditionalLabels []Label // For multi-package shipments
}

// TrackRequest is the request for tracking a shipment.
type TrackRequest struct {
	TrackingNumber string
}

// TrackResponse is the latest known state of a shipment.
type TrackResponse struct {
	TrackingNumber string
	Status         ShipmentStatus
	StatusCode     string
	Description    string
	StatusDate     time.Time
	Events         []TrackingEvent
}
