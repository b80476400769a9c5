package data

// USStates maps lower-cased US state and territory names to their postal abbreviations.
var USStates = map[string]string{
	"alabama":                  "AL",
	"alaska":                   "AK",
	"american samoa":           "AS",
	"arizona":                  "AZ",
	"arkansas":                 "AR",
	"california":               "CA",
	"colorado":                 "CO",
	"connecticut":              "CT",
	"delaware":                 "DE",
	"district of columbia":     "DC",
	"florida":                  "FL",
	"georgia":                  "GA",
	"guam":                     "GU",
	"hawaii":                   "HI",
	"idaho":                    "ID",
	"illinois":                 "IL",
	"indiana":                  "IN",
	"iowa":                     "IA",
	"kansas":                   "KS",
	"kentucky":                 "KY",
	"louisiana":                "LA",
	"maine":                    "ME",
	"maryland":                 "MD",
	"massachusetts":            "MA",
	"michigan":                 "MI",
	"minnesota":                "MN",
	"mississippi":              "MS",
	"missouri":                 "MO",
	"montana":                  "MT",
	"nebraska":                 "NE",
	"nevada":                   "NV",
	"new hampshire":            "NH",
	"new jersey":               "NJ",
	"new mexico":               "NM",
	"new york":                 "NY",
	"north carolina":           "NC",
	"north dakota":             "ND",
	"northern mariana islands": "MP",
	"ohio":                     "OH",
	"oklahoma":                 "OK",
	"oregon":                   "OR",
	"pennsylvania":             "PA",
	"puerto rico":              "PR",
	"rhode island":             "RI",
	"south carolina":           "SC",
	"south dakota":             "SD",
	"tennessee":                "TN",
	"texas":                    "TX",
	"utah":                     "UT",
	"vermont":                  "VT",
	"virgin islands":           "VI",
	"virginia":                 "VA",
	"washington":               "WA",
	"west virginia":            "WV",
	"wisconsin":                "WI",
	"wyoming":                  "WY",
}

// CanadianProvinces maps lower-cased province and territory names to their abbreviations.
var CanadianProvinces = map[string]string{
	"alberta":                   "AB",
	"british columbia":          "BC",
	"manitoba":                  "MB",
	"new brunswick":             "NB",
	"newfoundland and labrador": "NL",
	"newfoundland":              "NL",
	"northwest territories":     "NT",
	"nova scotia":               "NS",
	"nunavut":                   "NU",
	"ontario":                   "ON",
	"prince edward island":      "PE",
	"quebec":                    "QC",
	"québec":                    "QC",
	"saskatchewan":              "SK",
	"yukon":                     "YT",
}
