package data

// CustomerSuppliedPackage is the packaging code used when none is given.
const (
	CustomerSuppliedPackage            = "02"
	CustomerSuppliedPackageDescription = "Customer Supplied Package"
)

// Packaging maps UPS packaging codes to their display names.
var Packaging = map[string]string{
	"00": "UNKNOWN",
	"01": "UPS Letter",
	"02": "Package",
	"03": "Tube",
	"04": "Pak",
	"21": "Express Box",
	"24": "25KG Box",
	"25": "10KG Box",
	"30": "Pallet",
	"2a": "Small Express Box",
	"2b": "Medium Express Box",
	"2c": "Large Express Box",
}
