package parser

import (
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// PackageResult is the label of one shipped package.
type PackageResult struct {
	TrackingNumber string
	Label          Image
	HTML           *Image
	Form           *Image
}

// ShipResult is the outcome of a ship, confirm or accept request.
type ShipResult struct {
	Envelope

	// Legacy confirm step only.
	ShipmentDigest       string
	IdentificationNumber string

	Packages []PackageResult
	Form     *Image
}

// TrackingNumber returns the first package's tracking number, or the
// shipment identification number when no package was returned.
func (r *ShipResult) TrackingNumber() string {
	if len(r.Packages) > 0 && r.Packages[0].TrackingNumber != "" {
		return r.Packages[0].TrackingNumber
	}
	return r.IdentificationNumber
}

// LabelImage returns the first package's label.
func (r *ShipResult) LabelImage() Image {
	if len(r.Packages) == 0 {
		return Image{}
	}
	return r.Packages[0].Label
}

// GraphicExtension returns the first package's label extension.
func (r *ShipResult) GraphicExtension() string {
	return r.LabelImage().Extension
}

// HTMLImage returns the first package's HTML rendition, or nil.
func (r *ShipResult) HTMLImage() *Image {
	if len(r.Packages) == 0 {
		return nil
	}
	return r.Packages[0].HTML
}

// FormImage returns the customs form, from the first package or the
// shipment, or nil.
func (r *ShipResult) FormImage() *Image {
	if len(r.Packages) > 0 && r.Packages[0].Form != nil {
		return r.Packages[0].Form
	}
	return r.Form
}

// ParseShip reads a ShipmentResponse from the REST API.
func ParseShip(raw []byte, g document.Generation) (*ShipResult, error) {
	return parseShipment(raw, g, "ShipmentResponse", "ShippingLabel", "ImageFormat")
}

// ParseShipAccept reads a legacy ShipmentAcceptResponse.
func ParseShipAccept(raw []byte, g document.Generation) (*ShipResult, error) {
	return parseShipment(raw, g, "ShipmentAcceptResponse", "LabelImage", "LabelImageFormat")
}

// ParseShipConfirm reads a legacy ShipmentConfirmResponse, which carries the
// digest for the accept step.
func ParseShipConfirm(raw []byte, g document.Generation) (*ShipResult, error) {
	tree, err := decode(raw, g)
	if err != nil {
		return nil, err
	}
	const root = "ShipmentConfirmResponse"
	return &ShipResult{
		Envelope:             ParseEnvelope(tree, root),
		ShipmentDigest:       document.Text(tree.Path(root, "ShipmentDigest")),
		IdentificationNumber: document.Text(tree.Path(root, "ShipmentIdentificationNumber")),
	}, nil
}

func parseShipment(raw []byte, g document.Generation, root, labelKey, formatKey string) (*ShipResult, error) {
	tree, err := decode(raw, g)
	if err != nil {
		return nil, err
	}
	result := &ShipResult{Envelope: ParseEnvelope(tree, root)}
	if !result.Success() {
		return result, nil
	}

	results := tree.Path(root, "ShipmentResults")
	result.IdentificationNumber = document.Text(document.Lookup(results, "ShipmentIdentificationNumber"))
	if result.Form, err = parseForm(document.Lookup(results, "Form")); err != nil {
		return nil, err
	}

	for _, pkg := range document.List(document.Lookup(results, "PackageResults")) {
		p, err := parsePackageResult(pkg, labelKey, formatKey)
		if err != nil {
			return nil, err
		}
		if p.TrackingNumber == "" {
			p.TrackingNumber = result.IdentificationNumber
		}
		result.Packages = append(result.Packages, p)
	}
	return result, nil
}

func parsePackageResult(pkg any, labelKey, formatKey string) (PackageResult, error) {
	p := PackageResult{TrackingNumber: document.Text(document.Lookup(pkg, "TrackingNumber"))}

	label := document.Lookup(pkg, labelKey)
	img, err := parseImage(label, formatKey, "GraphicImage")
	if err != nil {
		return PackageResult{}, err
	}
	if img != nil {
		p.Label = *img
	}
	if p.HTML, err = parseImage(label, formatKey, "HTMLImage"); err != nil {
		return PackageResult{}, err
	}
	if p.Form, err = parseForm(document.Lookup(pkg, "Form")); err != nil {
		return PackageResult{}, err
	}
	return p, nil
}
