package builder

import (
	"github.com/tournevent/upslink/pkg/shipper/ups/data"
	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// defaultPackageDescription is sent when a package has no description.
const defaultPackageDescription = "Rate"

// newPackageNode writes Description, packaging, Dimensions and
// PackageWeight in that order. packagingKey differs between request kinds.
func newPackageNode(p Package, packagingKey string, dimensionLength int) *document.Node {
	node := document.New()
	description := p.Description
	if description == "" {
		description = defaultPackageDescription
	}
	node.Set("Description", description)

	packaging := Packaging{Code: data.CustomerSuppliedPackage, Description: data.CustomerSuppliedPackageDescription}
	if p.Packaging != nil && p.Packaging.Code != "" {
		packaging = *p.Packaging
		if packaging.Description == "" {
			packaging.Description = data.Packaging[packaging.Code]
		}
	}
	node.Set(packagingKey, codeDescription(packaging.Code, packaging.Description))

	if d := p.Dimensions; d != nil {
		dims := node.Child("Dimensions")
		dims.Child("UnitOfMeasurement").Set("Code", d.Unit)
		dims.Set("Length", Truncate(d.Length, dimensionLength))
		dims.Set("Width", Truncate(d.Width, dimensionLength))
		dims.Set("Height", Truncate(d.Height, dimensionLength))
	}

	weight := node.Child("PackageWeight")
	weight.Child("UnitOfMeasurement").Set("Code", p.WeightUnit)
	weight.Set("Weight", p.Weight)
	return node
}
