package client

import (
	"slices"

	"github.com/adamwoolhether/apiconn/client/connector"
	"github.com/adamwoolhether/apiconn/client/multipart"
	"github.com/adamwoolhether/apiconn/client/percent"
	"github.com/adamwoolhether/apiconn/client/uri"
)

// Encoder returns an encoder resolved from callSite, the stored
// session settings and the library defaults, in that order. The session
// charset fills in when the session layer names none.
func (s *Session) Encoder(callSite percent.Settings) *percent.Encoder {
	session, _ := LoadSettings[percent.Settings](s)
	if session.Charset == nil {
		session.Charset = s.charset
	}
	return percent.New(percent.Resolve(callSite, session))
}

// URL returns an empty URL carrying the resolved defaults and the
// session encoder.
func (s *Session) URL(callSite uri.Settings) *uri.URL {
	session, _ := LoadSettings[uri.Settings](s)

	u := uri.New(uri.Resolve(callSite, session))
	u.Encoder = s.Encoder(percent.Settings{})
	return u
}

// Connector returns an HTTP connector with resolved settings. Session
// connector options apply first, then opts.
func (s *Session) Connector(callSite connector.Settings, opts ...connector.Option) (*connector.HTTP, error) {
	session, _ := LoadSettings[connector.Settings](s)

	all := slices.Clone(s.connectorOpts)
	all = append(all,
		connector.WithLogger(s.logger),
		connector.WithSettings(connector.Resolve(callSite, session)),
	)
	all = append(all, opts...)

	return connector.New(all...)
}

// MultipartSettings resolves multipart settings like [Session.Encoder].
func (s *Session) MultipartSettings(callSite multipart.Settings) multipart.Settings {
	session, _ := LoadSettings[multipart.Settings](s)
	if session.Charset == nil {
		session.Charset = s.charset
	}
	return multipart.Resolve(callSite, session)
}
