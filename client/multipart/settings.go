package multipart

import (
	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/internal/layered"
)

// Settings are the layered defaults for multipart builders. A nil
// field is absent.
type Settings struct {
	// OutputDir streams bodies to numbered files in the directory
	// instead of memory. An empty value keeps bodies in memory.
	OutputDir  *string
	AutoDelete *bool
	Charset    *charset.Charset
}

// Defaults returns the library defaults: in-memory bodies, generated
// files removed after the task, UTF-8 text.
func Defaults() Settings {
	return Settings{
		OutputDir:  layered.Ptr(""),
		AutoDelete: layered.Ptr(true),
		Charset:    layered.Ptr(charset.UTF8),
	}
}

// Resolve merges callSite over session over [Defaults], field by field.
func Resolve(callSite, session Settings) Settings {
	def := Defaults()
	return Settings{
		OutputDir:  layered.Pick(callSite.OutputDir, session.OutputDir, def.OutputDir),
		AutoDelete: layered.Pick(callSite.AutoDelete, session.AutoDelete, def.AutoDelete),
		Charset:    layered.Pick(callSite.Charset, session.Charset, def.Charset),
	}
}
