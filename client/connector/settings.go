package connector

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/adamwoolhether/apiconn/internal/layered"
	"github.com/adamwoolhether/apiconn/internal/validate"
)

// Settings configures the HTTP transport. A nil field is absent and
// falls through to the next layer in [Resolve].
type Settings struct {
	ConnectTimeout  *time.Duration `envconfig:"CONNECT_TIMEOUT" name:"connect_timeout" validate:"omitempty,gte=0"`
	ReadTimeout     *time.Duration `envconfig:"READ_TIMEOUT" name:"read_timeout" validate:"omitempty,gte=0"`
	EnableCaching   *bool          `envconfig:"ENABLE_CACHING"`
	FollowRedirects *bool          `envconfig:"FOLLOW_REDIRECTS"`
}

// Defaults returns the library defaults: a 30s connect timeout, no read
// timeout, caching left to intermediaries and redirects followed.
func Defaults() Settings {
	return Settings{
		ConnectTimeout:  layered.Ptr(30 * time.Second),
		ReadTimeout:     layered.Ptr(time.Duration(0)),
		EnableCaching:   layered.Ptr(true),
		FollowRedirects: layered.Ptr(true),
	}
}

// Resolve merges callSite over session over [Defaults], field by field.
func Resolve(callSite, session Settings) Settings {
	def := Defaults()
	return Settings{
		ConnectTimeout:  layered.Pick(callSite.ConnectTimeout, session.ConnectTimeout, def.ConnectTimeout),
		ReadTimeout:     layered.Pick(callSite.ReadTimeout, session.ReadTimeout, def.ReadTimeout),
		EnableCaching:   layered.Pick(callSite.EnableCaching, session.EnableCaching, def.EnableCaching),
		FollowRedirects: layered.Pick(callSite.FollowRedirects, session.FollowRedirects, def.FollowRedirects),
	}
}

// SettingsFromEnv loads a settings layer from PREFIX_CONNECT_TIMEOUT,
// PREFIX_READ_TIMEOUT, PREFIX_ENABLE_CACHING and PREFIX_FOLLOW_REDIRECTS.
// Unset variables stay absent.
func SettingsFromEnv(prefix string) (Settings, error) {
	var s Settings
	if err := envconfig.Process(prefix, &s); err != nil {
		return Settings{}, fmt.Errorf("loading connector settings: %w", err)
	}

	if err := validate.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("validating connector settings: %w", err)
	}

	return s, nil
}
