package collect

import "strings"

// Region holds the locale parameters of the Google News feed.
type Region struct {
	Code     string
	Country  string
	Language string
}

// HL returns the interface language parameter, e.g. "en-GB".
func (r Region) HL() string {
	return r.Language + "-" + r.Country
}

// CEID returns the edition parameter, e.g. "GB:en".
func (r Region) CEID() string {
	return r.Country + ":" + r.Language
}

var regions = map[string]Region{
	"UK": {Code: "UK", Country: "GB", Language: "en"},
	"GB": {Code: "GB", Country: "GB", Language: "en"},
	"US": {Code: "US", Country: "US", Language: "en"},
	"IE": {Code: "IE", Country: "IE", Language: "en"},
	"AU": {Code: "AU", Country: "AU", Language: "en"},
	"NZ": {Code: "NZ", Country: "NZ", Language: "en"},
	"CA": {Code: "CA", Country: "CA", Language: "en"},
	"IN": {Code: "IN", Country: "IN", Language: "en"},
	"ZA": {Code: "ZA", Country: "ZA", Language: "en"},
}

// LookupRegion maps a region code to its locale. Unknown codes are used as
// the country with English as the language.
func LookupRegion(code string) Region {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "UK"
	}
	if r, ok := regions[code]; ok {
		return r
	}
	return Region{Code: code, Country: code, Language: "en"}
}
