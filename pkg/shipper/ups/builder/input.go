package builder

// Address is the caller's view of a postal address.
type Address struct {
	Lines      []string
	City       string
	State      string
	PostalCode string
	Country    string

	// SkipIrelandValidation sends a placeholder state for IE addresses
	// instead of matching the county.
	SkipIrelandValidation bool
}

// Party is a shipper, recipient, origin or sold-to entity.
type Party struct {
	CompanyName   string
	AttentionName string
	PhoneNumber   string
	Email         string
	TaxID         string
	AccountNumber string
	Address       Address
}

// Packaging is a UPS packaging code with an optional description.
type Packaging struct {
	Code        string
	Description string
}

// Dimensions of a package. Values are sent as given, truncated to the
// generation's dimension length.
type Dimensions struct {
	Length string
	Width  string
	Height string
	Unit   string
}

// Package is one parcel of a shipment.
type Package struct {
	Description string
	Packaging   *Packaging // nil means customer supplied packaging
	Weight      string
	WeightUnit  string
	Dimensions  *Dimensions
}

// LabelSize is the physical label stock size.
type LabelSize struct {
	Height string
	Width  string
}

// Product is one commodity line of a customs invoice.
type Product struct {
	Description       string
	Number            string
	Value             string
	Unit              string
	PartNumber        string
	CommodityCode     string
	OriginCountryCode string
}

// Invoice is the commercial invoice attached to international shipments.
type Invoice struct {
	Number          string
	Date            string // YYYYMMDD
	TermsOfShipment string
	ReasonForExport string
	CurrencyCode    string
	FreightCharge   string
	Discount        string
	Products        []Product
}

// Credentials authenticate legacy XML requests through an AccessRequest document.
type Credentials struct {
	LicenseNumber string
	UserID        string
	Password      string
}

// Complete reports whether every credential field is set.
func (c *Credentials) Complete() bool {
	return c != nil && c.LicenseNumber != "" && c.UserID != "" && c.Password != ""
}
