// Package apiconn is an HTTP client toolkit: requests are described as
// values, filled in by request builders, performed by a connector and
// consumed by response handlers, with many tasks sharing one session.
//
// See [github.com/adamwoolhether/apiconn/client] for the scheduler.
package apiconn

import (
	"sync"

	"github.com/adamwoolhether/apiconn/client"
)

// NewSession starts a session with the provided options.
func NewSession(opts ...client.Option) (*client.Session, error) {
	return client.NewSession(opts...)
}

// Default returns the process-wide session, created with default
// options on first use.
var Default = sync.OnceValue(func() *client.Session {
	s, err := client.NewSession()
	if err != nil {
		panic(err)
	}
	return s
})
