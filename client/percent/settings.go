package percent

import (
	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/internal/layered"
)

// Unreserved character sets.
const (
	// RFC3986 is the RFC 3986 section 2.3 unreserved set.
	RFC3986 = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-._~"

	// Query is the set of characters allowed unescaped in a query
	// component value: the query characters of RFC 3986 minus the
	// delimiters "?/&=".
	Query = RFC3986 + "!$'()*+,;:@"
)

// Settings configures an [Encoder]. A nil field is absent and falls
// through to the next layer in [Resolve].
type Settings struct {
	Charset     *charset.Charset
	Unreserved  *string
	SpaceAsPlus *bool
	LowerHex    *bool
}

// Defaults returns the library default settings: UTF-8, the [Query]
// unreserved set, spaces as %20 and upper-case hex.
func Defaults() Settings {
	return Settings{
		Charset:     layered.Ptr(charset.UTF8),
		Unreserved:  layered.Ptr(Query),
		SpaceAsPlus: layered.Ptr(false),
		LowerHex:    layered.Ptr(false),
	}
}

// Resolve merges callSite over session over [Defaults], field by field.
func Resolve(callSite, session Settings) Settings {
	def := Defaults()
	return Settings{
		Charset:     layered.Pick(callSite.Charset, session.Charset, def.Charset),
		Unreserved:  layered.Pick(callSite.Unreserved, session.Unreserved, def.Unreserved),
		SpaceAsPlus: layered.Pick(callSite.SpaceAsPlus, session.SpaceAsPlus, def.SpaceAsPlus),
		LowerHex:    layered.Pick(callSite.LowerHex, session.LowerHex, def.LowerHex),
	}
}
