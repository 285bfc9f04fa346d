package uri

import "github.com/adamwoolhether/apiconn/internal/layered"

// Settings holds defaults for newly created URLs. A nil field is absent.
type Settings struct {
	Scheme   *string
	Host     *string
	Port     *int
	User     *string
	Password *string
}

// Defaults returns the library defaults: https, no host, no port and no
// credentials.
func Defaults() Settings {
	return Settings{
		Scheme:   layered.Ptr("https"),
		Host:     layered.Ptr(""),
		Port:     layered.Ptr(0),
		User:     layered.Ptr(""),
		Password: layered.Ptr(""),
	}
}

// Resolve merges callSite over session over [Defaults], field by field.
func Resolve(callSite, session Settings) Settings {
	def := Defaults()
	return Settings{
		Scheme:   layered.Pick(callSite.Scheme, session.Scheme, def.Scheme),
		Host:     layered.Pick(callSite.Host, session.Host, def.Host),
		Port:     layered.Pick(callSite.Port, session.Port, def.Port),
		User:     layered.Pick(callSite.User, session.User, def.User),
		Password: layered.Pick(callSite.Password, session.Password, def.Password),
	}
}
