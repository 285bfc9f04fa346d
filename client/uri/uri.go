// Package uri composes request URLs from their parts, percent-encoding
// every path segment and structured query entry exactly once.
package uri

import (
	"cmp"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/adamwoolhether/apiconn/client/percent"
	"github.com/adamwoolhether/apiconn/internal/validate"
)

// Default ports by scheme.
const (
	HTTPPort  = 80
	HTTPSPort = 443
)

// URL describes a request target.
//
// Query entries are encoded by Build; RawQuery is appended verbatim and
// must already be encoded.
type URL struct {
	Scheme        string `name:"scheme" validate:"required,oneof=http https"`
	Host          string `name:"host" validate:"required"`
	Port          int    `name:"port" validate:"gte=0,lte=65535"`
	Path          []string
	TrailingSlash bool
	Query         []percent.Pair
	RawQuery      string
	User          string
	Password      string

	// Encoder encodes path segments, query entries and credentials.
	// The library default is used when nil.
	Encoder *percent.Encoder
}

// New returns a URL seeded from s layered over the library defaults.
func New(s Settings) *URL {
	s = Resolve(s, Settings{})

	return &URL{
		Scheme:   *s.Scheme,
		Host:     *s.Host,
		Port:     *s.Port,
		User:     *s.User,
		Password: *s.Password,
	}
}

// QueryFromMap converts m into query pairs ordered by key.
func QueryFromMap(m map[string]string) []percent.Pair {
	pairs := make([]percent.Pair, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		pairs = append(pairs, percent.Pair{Key: k, Value: m[k]})
	}
	return pairs
}

// AddQuery appends a structured query entry.
func (u *URL) AddQuery(key, value string) *URL {
	u.Query = append(u.Query, percent.Pair{Key: key, Value: value})
	return u
}

// Join appends path segments. Each segment is encoded individually, so
// a "/" inside a segment is escaped.
func (u *URL) Join(segments ...string) *URL {
	u.Path = append(u.Path, segments...)
	return u
}

// Clone returns a deep copy of u.
func (u *URL) Clone() *URL {
	if u == nil {
		return nil
	}

	cpy := *u
	cpy.Path = slices.Clone(u.Path)
	cpy.Query = slices.Clone(u.Query)
	return &cpy
}

// Build validates u and renders it.
func (u *URL) Build() (string, error) {
	if err := validate.Struct(u); err != nil {
		return "", fmt.Errorf("validating url: %w", err)
	}

	host := strings.Trim(u.Host, "/")
	if host == "" {
		return "", fmt.Errorf("validating url: %w", validate.FieldErrors{{Field: "host", Err: "This field is required"}})
	}

	enc := cmp.Or(u.Encoder, percent.Default())

	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")

	if u.User != "" {
		b.WriteString(enc.Encode(u.User))
		if u.Password != "" {
			b.WriteByte(':')
			b.WriteString(enc.Encode(u.Password))
		}
		b.WriteByte('@')
	}

	b.WriteString(host)
	if u.Port > 0 {
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(u.Port))
	}

	var path strings.Builder
	for _, seg := range u.Path {
		path.WriteByte('/')
		path.WriteString(enc.Encode(seg))
	}
	if path.Len() > 0 && u.TrailingSlash {
		path.WriteByte('/')
	}

	query := enc.EncodePairs(u.Query)
	if u.RawQuery != "" {
		if query != "" {
			query += "&"
		}
		query += u.RawQuery
	}

	switch {
	case path.Len() > 0:
		b.WriteString(path.String())
		if query != "" {
			b.WriteByte('?')
			b.WriteString(query)
		}
	case query != "":
		b.WriteString("/?")
		b.WriteString(query)
	case u.TrailingSlash:
		b.WriteByte('/')
	}

	return b.String(), nil
}

// String renders u, returning an empty string when it is invalid.
func (u *URL) String() string {
	s, err := u.Build()
	if err != nil {
		return ""
	}
	return s
}

// Parsed builds u and parses the result with [net/url].
func (u *URL) Parsed() (*url.URL, error) {
	s, err := u.Build()
	if err != nil {
		return nil, err
	}

	parsed, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parsing built url: %w", err)
	}
	return parsed, nil
}

// FromURL converts a parsed [url.URL]. Path segments are split on the
// escaped path and then unescaped, so an encoded "/" stays inside its
// segment. IPv6 hosts keep their brackets. The query is carried over as
// RawQuery.
func FromURL(p *url.URL) (*URL, error) {
	host := p.Hostname()
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	u := URL{
		Scheme:   p.Scheme,
		Host:     host,
		RawQuery: p.RawQuery,
	}

	if port := p.Port(); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("parsing port %q: %w", port, err)
		}
		u.Port = n
	}

	if p.User != nil {
		u.User = p.User.Username()
		u.Password, _ = p.User.Password()
	}

	escaped := p.EscapedPath()
	if path := strings.Trim(escaped, "/"); path != "" {
		for seg := range strings.SplitSeq(path, "/") {
			dec, err := url.PathUnescape(seg)
			if err != nil {
				return nil, fmt.Errorf("unescaping path segment %q: %w", seg, err)
			}
			u.Path = append(u.Path, dec)
		}
	}
	u.TrailingSlash = len(escaped) > 1 && strings.HasSuffix(escaped, "/")

	return &u, nil
}
