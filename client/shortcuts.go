package client

import (
	"fmt"

	"github.com/adamwoolhether/apiconn/client/connector"
	"github.com/adamwoolhether/apiconn/client/download"
	"github.com/adamwoolhether/apiconn/client/form"
	"github.com/adamwoolhether/apiconn/client/jsonbody"
	"github.com/adamwoolhether/apiconn/client/message"
	"github.com/adamwoolhether/apiconn/client/multipart"
	"github.com/adamwoolhether/apiconn/client/percent"
)

// FormURLEncoded returns a task sending payload urlencoded with the
// session encoder, in the query unless [form.InBody] is given.
func (s *Session) FormURLEncoded(req *message.Request, payload any, h ResponseHandler, opts ...form.Option) (*Task, error) {
	opts = append([]form.Option{form.WithEncoder(s.Encoder(percent.Settings{}))}, opts...)

	b, err := form.New(payload, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating form builder: %w", err)
	}
	return s.NewTask(req, WithBuilder(b), WithHandler(h))
}

// JSON returns a task sending v as a JSON body.
func (s *Session) JSON(req *message.Request, v any, h ResponseHandler, opts ...jsonbody.Option) (*Task, error) {
	b, err := jsonbody.New(v, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating json builder: %w", err)
	}
	return s.NewTask(req, WithBuilder(b), WithHandler(h))
}

// Multipart returns a task sending sections as multipart/form-data.
// callSite settings take precedence over the session layer.
func (s *Session) Multipart(req *message.Request, sections []multipart.Section, callSite multipart.Settings, h ResponseHandler, opts ...multipart.Option) (*Task, error) {
	opts = append([]multipart.Option{
		multipart.WithSettings(s.MultipartSettings(callSite)),
		multipart.WithLogger(s.logger),
	}, opts...)

	b, err := multipart.New(sections, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating multipart builder: %w", err)
	}
	return s.NewTask(req, WithBuilder(b), WithHandler(h))
}

// Download returns a task streaming a 2xx response body to path.
func (s *Session) Download(req *message.Request, path string, h ResponseHandler, opts ...download.Option) (*Task, error) {
	c, err := s.Connector(connector.Settings{}, connector.WithOutputFile(path, opts...))
	if err != nil {
		return nil, fmt.Errorf("creating download connector: %w", err)
	}
	return s.NewTask(req, WithConnector(c), WithHandler(h))
}
