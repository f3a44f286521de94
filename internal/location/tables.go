package location

const (
	FormatLakh     = "lakh"
	FormatThousand = "k"
)

// CountryInfo describes how salaries are displayed for a country.
type CountryInfo struct {
	Currency string `json:"currency"`
	Symbol   string `json:"symbol"`
	Format   string `json:"format"`
}

var countries = map[string]CountryInfo{
	"IN": {Currency: "INR", Symbol: "₹", Format: FormatLakh},
	"US": {Currency: "USD", Symbol: "$", Format: FormatThousand},
	"GB": {Currency: "GBP", Symbol: "£", Format: FormatThousand},
	"CA": {Currency: "CAD", Symbol: "C$", Format: FormatThousand},
	"DE": {Currency: "EUR", Symbol: "€", Format: FormatThousand},
	"NL": {Currency: "EUR", Symbol: "€", Format: FormatThousand},
	"IE": {Currency: "EUR", Symbol: "€", Format: FormatThousand},
	"FR": {Currency: "EUR", Symbol: "€", Format: FormatThousand},
	"SG": {Currency: "SGD", Symbol: "S$", Format: FormatThousand},
	"AE": {Currency: "AED", Symbol: "AED ", Format: FormatThousand},
	"AU": {Currency: "AUD", Symbol: "A$", Format: FormatThousand},
	"CH": {Currency: "CHF", Symbol: "CHF ", Format: FormatThousand},
	"SE": {Currency: "SEK", Symbol: "SEK ", Format: FormatThousand},
}

var countryNames = map[string]string{
	"india":                "IN",
	"united states":        "US",
	"usa":                  "US",
	"us":                   "US",
	"united kingdom":       "GB",
	"uk":                   "GB",
	"england":              "GB",
	"canada":               "CA",
	"germany":              "DE",
	"singapore":            "SG",
	"united arab emirates": "AE",
	"uae":                  "AE",
	"australia":            "AU",
	"netherlands":          "NL",
	"the netherlands":      "NL",
	"ireland":              "IE",
	"france":               "FR",
	"switzerland":          "CH",
	"sweden":               "SE",
}

var usStateAbbrevs = map[string]string{
	"ca": "US", "ny": "US", "wa": "US", "tx": "US", "ma": "US", "co": "US",
	"il": "US", "ga": "US", "or": "US", "va": "US", "nc": "US", "pa": "US",
	"fl": "US", "oh": "US", "mi": "US", "mn": "US", "az": "US", "nj": "US",
	"ct": "US", "md": "US", "dc": "US", "ut": "US",
}

var states = map[string]string{
	// India
	"karnataka":      "IN",
	"maharashtra":    "IN",
	"telangana":      "IN",
	"tamil nadu":     "IN",
	"haryana":        "IN",
	"uttar pradesh":  "IN",
	"delhi":          "IN",
	"west bengal":    "IN",
	"gujarat":        "IN",
	"kerala":         "IN",
	"andhra pradesh": "IN",
	"rajasthan":      "IN",
	// United States
	"california":     "US",
	"new york":       "US",
	"washington":     "US",
	"texas":          "US",
	"massachusetts":  "US",
	"colorado":       "US",
	"illinois":       "US",
	"georgia":        "US",
	"virginia":       "US",
	"north carolina": "US",
	"new jersey":     "US",
	"florida":        "US",
	// Canada
	"ontario":          "CA",
	"british columbia": "CA",
	"quebec":           "CA",
	"alberta":          "CA",
	// United Kingdom
	"scotland": "GB",
	"wales":    "GB",
	// Germany
	"bavaria": "DE",
	"berlin":  "DE",
	"hesse":   "DE",
	// Australia
	"new south wales": "AU",
	"victoria":        "AU",
	"queensland":      "AU",
	// Netherlands
	"north holland": "NL",
	// Switzerland
	"zurich": "CH",
}

var cities = map[string]string{
	// India
	"bengaluru":  "IN",
	"bangalore":  "IN",
	"mumbai":     "IN",
	"delhi":      "IN",
	"new delhi":  "IN",
	"gurugram":   "IN",
	"gurgaon":    "IN",
	"noida":      "IN",
	"hyderabad":  "IN",
	"chennai":    "IN",
	"pune":       "IN",
	"kolkata":    "IN",
	"ahmedabad":  "IN",
	"kochi":      "IN",
	"jaipur":     "IN",
	"chandigarh": "IN",
	// United States
	"san francisco": "US",
	"new york":      "US",
	"new york city": "US",
	"seattle":       "US",
	"austin":        "US",
	"boston":        "US",
	"chicago":       "US",
	"los angeles":   "US",
	"mountain view": "US",
	"sunnyvale":     "US",
	"san jose":      "US",
	"palo alto":     "US",
	"menlo park":    "US",
	"redmond":       "US",
	"denver":        "US",
	"atlanta":       "US",
	"san diego":     "US",
	"washington dc": "US",
	// United Kingdom
	"london":     "GB",
	"manchester": "GB",
	"edinburgh":  "GB",
	"cambridge":  "GB",
	// Canada
	"toronto":   "CA",
	"vancouver": "CA",
	"montreal":  "CA",
	"ottawa":    "CA",
	// Europe
	"berlin":    "DE",
	"munich":    "DE",
	"hamburg":   "DE",
	"frankfurt": "DE",
	"amsterdam": "NL",
	"rotterdam": "NL",
	"dublin":    "IE",
	"paris":     "FR",
	"zurich":    "CH",
	"geneva":    "CH",
	"stockholm": "SE",
	// Asia Pacific and Middle East
	"singapore": "SG",
	"dubai":     "AE",
	"abu dhabi": "AE",
	"sydney":    "AU",
	"melbourne": "AU",
}
