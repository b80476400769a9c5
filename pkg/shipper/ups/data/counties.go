package data

// IrishCounties is the canonical list of counties in the Republic of Ireland.
var IrishCounties = []string{
	"Carlow",
	"Cavan",
	"Clare",
	"Cork",
	"Donegal",
	"Dublin",
	"Galway",
	"Kerry",
	"Kildare",
	"Kilkenny",
	"Laois",
	"Leitrim",
	"Limerick",
	"Longford",
	"Louth",
	"Mayo",
	"Meath",
	"Monaghan",
	"Offaly",
	"Roscommon",
	"Sligo",
	"Tipperary",
	"Waterford",
	"Westmeath",
	"Wexford",
	"Wicklow",
}

// IrishCountyPrefixes are stripped before a county is matched. Longer
// prefixes come first so "Co. " wins over "Co ".
var IrishCountyPrefixes = []string{
	"county ",
	"contae ",
	"co. ",
	"co.",
	"co ",
}
