package jsonbody_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/adamwoolhether/apiconn/client/jsonbody"
	"github.com/adamwoolhether/apiconn/client/message"
)

type payload struct {
	Body string `json:"body"`
}

func TestBuilder_FillRequest(t *testing.T) {
	b, err := jsonbody.New(payload{Body: "hi"})
	if err != nil {
		t.Fatalf("failed to create builder: %v", err)
	}

	req := &message.Request{}
	out, err := b.FillRequest(t.Context(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if out.Method != http.MethodPost {
		t.Errorf("expected POST, got %q", out.Method)
	}
	if exp := `{"body":"hi"}`; string(out.Body) != exp {
		t.Errorf("expected %s, got %s", exp, out.Body)
	}
	if got := out.Header.Get("Content-Type"); got != "application/json; charset=UTF-8" {
		t.Errorf("unexpected content type %q", got)
	}
	if got := out.Header.Get("Content-Length"); got != "13" {
		t.Errorf("expected content length 13, got %q", got)
	}
	if req.Body != nil || req.Method != "" {
		t.Error("expected input request untouched")
	}
}

func TestBuilder_KeepsExistingFields(t *testing.T) {
	b, err := jsonbody.New(payload{Body: "ignored"})
	if err != nil {
		t.Fatalf("failed to create builder: %v", err)
	}

	req := &message.Request{
		Method: http.MethodPatch,
		Header: message.NewHeader("Content-Type", "application/merge-patch+json"),
		Body:   []byte(`{}`),
	}
	out, err := b.FillRequest(t.Context(), req)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if out.Method != http.MethodPatch || string(out.Body) != "{}" || out.Header.Get("Content-Type") != "application/merge-patch+json" {
		t.Errorf("expected existing fields kept, got %+v", out)
	}
}

type failingCodec struct{}

func (failingCodec) Marshal(any) ([]byte, error) { return nil, errors.New("boom") }
func (failingCodec) Unmarshal([]byte, any) error { return nil }

func TestBuilder_EncodeFailure(t *testing.T) {
	b, err := jsonbody.New(payload{}, jsonbody.WithCodec(failingCodec{}))
	if err != nil {
		t.Fatalf("failed to create builder: %v", err)
	}

	if _, err := b.FillRequest(t.Context(), &message.Request{}); err == nil {
		t.Error("expected encoding error")
	}
}
