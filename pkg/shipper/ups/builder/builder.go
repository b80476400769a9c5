// Package builder assembles UPS request documents. Each builder
// accumulates sections through Add* calls and produces a document tree for
// the configured API generation. Shipment-carrying builders share one
// shipment document; rate and ship builders only differ in the request
// section and the sections they allow.
package builder

import (
	"bytes"

	"github.com/tournevent/upslink/pkg/shipper"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// Version is the library version reported to UPS.
const Version = "1.0.0"

// UserAgent is sent as HTTPUserAgent with GIF label specifications.
const UserAgent = "upslink/" + Version

const carrierName = "ups"

// Options configure a builder.
type Options struct {
	Generation document.Generation

	// DimensionLength caps each package dimension value. Zero uses the
	// generation default.
	DimensionLength int
}

func (o Options) dimensionLength() int {
	if o.DimensionLength > 0 {
		return o.DimensionLength
	}
	return o.Generation.DimensionLength()
}

// Request is implemented by every builder.
type Request interface {
	Name() string
	Generation() document.Generation
	Credentials() *Credentials
	Validate() error
	Build() *document.Node
	Encode() ([]byte, error)
}

// base holds what every request document has: a root name, a request
// section and optional root-level sections.
type base struct {
	opts    Options
	name    string
	request *document.Node
	root    *document.Node
	access  *Credentials
}

func newBase(opts Options, name, action, option string) *base {
	b := &base{opts: opts, name: name, request: document.New(), root: document.New()}
	if opts.Generation == document.XML {
		b.request.Set("RequestAction", action)
		b.request.SetIf("RequestOption", option)
		return b
	}
	if option == "" {
		option = action
	}
	b.request.Set("RequestOption", option)
	return b
}

// Name returns the root element name.
func (b *base) Name() string { return b.name }

// Generation returns the API generation the document targets.
func (b *base) Generation() document.Generation { return b.opts.Generation }

// AddAccessRequest attaches legacy access credentials. They are sent as a
// separate AccessRequest document ahead of the request.
func (b *base) AddAccessRequest(license, userID, password string) {
	b.access = &Credentials{LicenseNumber: license, UserID: userID, Password: password}
}

// Credentials returns the attached access credentials, or nil.
func (b *base) Credentials() *Credentials { return b.access }

func (b *base) encode(tree *document.Node) ([]byte, error) {
	enc := b.opts.Generation.Encoder()
	body, err := enc.Encode(b.name, tree)
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, shipper.CodeInvalidAttribute, "Request could not be encoded").WithCause(err)
	}
	if b.opts.Generation != document.XML || b.access == nil {
		return body, nil
	}
	access, err := enc.Encode("AccessRequest", accessRequestNode(b.access))
	if err != nil {
		return nil, shipper.NewShipperError(carrierName, shipper.CodeInvalidAttribute, "Access request could not be encoded").WithCause(err)
	}
	return bytes.Join([][]byte{access, body}, nil), nil
}

func accessRequestNode(c *Credentials) *document.Node {
	return document.New().
		SetAttr("xml:lang", "en-US").
		Set("AccessLicenseNumber", c.LicenseNumber).
		Set("UserId", c.UserID).
		Set("Password", c.Password)
}

func codeDescription(code, description string) *document.Node {
	return document.New().Set("Code", code).Set("Description", description)
}

var (
	_ Request = (*RateBuilder)(nil)
	_ Request = (*ShipBuilder)(nil)
	_ Request = (*ShipAcceptBuilder)(nil)
	_ Request = (*LabelRecoveryBuilder)(nil)
	_ Request = (*TrackBuilder)(nil)
)
