package message

import (
	"strings"

	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/client/percent"
	"github.com/adamwoolhether/apiconn/internal/layered"
)

// Common header names.
const (
	HeaderContentType        = "Content-Type"
	HeaderContentLength      = "Content-Length"
	HeaderContentDisposition = "Content-Disposition"
	HeaderContentEncoding    = "Content-Encoding"
	HeaderAcceptEncoding     = "Accept-Encoding"
	HeaderCacheControl       = "Cache-Control"
	HeaderPragma             = "Pragma"
	HeaderUserAgent          = "User-Agent"
)

// Media types used by the request builders.
const (
	TypeOctetStream    = "application/octet-stream"
	TypeJSON           = "application/json"
	TypeFormURLEncoded = "application/x-www-form-urlencoded"
	TypeMultipartForm  = "multipart/form-data"
	TypeTextPlain      = "text/plain"
	DispositionForm    = "form-data"
)

const mimeSpecials = `()<>@,;:"/[]?.=`

// Param is a single `key=value` header parameter. Quote forces quoting;
// otherwise the value is quoted only when it contains MIME specials or
// a space.
type Param struct {
	Key   string
	Value string
	Quote bool
}

// NeedsQuote reports whether v must be quoted as a header parameter value.
func NeedsQuote(v string) bool {
	return strings.ContainsAny(v, mimeSpecials+" ")
}

// HeaderValue renders `value; k1=v1; k2="v 2"`.
func HeaderValue(value string, params ...Param) string {
	var b strings.Builder
	b.WriteString(value)
	for _, p := range params {
		b.WriteString("; ")
		b.WriteString(p.Key)
		b.WriteByte('=')
		if p.Quote || NeedsQuote(p.Value) {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(p.Value, `"`, `\"`))
			b.WriteByte('"')
			continue
		}
		b.WriteString(p.Value)
	}
	return b.String()
}

// ContentType renders a Content-Type value with optional parameters.
func ContentType(mediaType string, params ...Param) string {
	return HeaderValue(mediaType, params...)
}

// ContentTypeCharset renders `mediaType; charset=NAME`.
func ContentTypeCharset(mediaType string, cs charset.Charset) string {
	return ContentType(mediaType, Param{Key: "charset", Value: cs.Name()})
}

var filenameEncoder = percent.New(percent.Settings{Unreserved: layered.Ptr(percent.RFC3986)})

// ContentDisposition renders a form-data Content-Disposition value. The
// filename is percent-encoded with the RFC 3986 unreserved set. Empty
// name or filename parameters are omitted.
func ContentDisposition(name, filename string) string {
	var params []Param
	if name != "" {
		params = append(params, Param{Key: "name", Value: name, Quote: true})
	}
	if filename != "" {
		params = append(params, Param{Key: "filename", Value: filenameEncoder.Encode(filename), Quote: true})
	}
	return HeaderValue(DispositionForm, params...)
}

// HeaderLine renders `Name: value`.
func HeaderLine(name, value string) string {
	return name + ": " + value
}
