package connector_test

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/adamwoolhether/apiconn/client/connector"
	"github.com/adamwoolhether/apiconn/client/download"
	"github.com/adamwoolhether/apiconn/client/message"
	"github.com/adamwoolhether/apiconn/client/uri"
	"github.com/adamwoolhether/apiconn/internal/layered"
)

type fakeTask string

func (f fakeTask) ID() string { return string(f) }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serverURL(t *testing.T, raw string, path ...string) *uri.URL {
	t.Helper()

	p, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("failed to parse test server URL: %v", err)
	}
	u, err := uri.FromURL(p)
	if err != nil {
		t.Fatalf("failed to convert url: %v", err)
	}
	return u.Join(path...)
}

func newConnector(t *testing.T, opts ...connector.Option) *connector.HTTP {
	t.Helper()

	c, err := connector.New(append([]connector.Option{connector.WithLogger(quietLogger())}, opts...)...)
	if err != nil {
		t.Fatalf("failed to create connector: %v", err)
	}
	return c
}

func TestHTTP_Perform(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Length", r.Header.Get("X-Echo-Length"))
		w.WriteHeader(http.StatusCreated)
		w.Write(b)
	}))
	defer ts.Close()

	c := newConnector(t)
	req := &message.Request{
		URL:      serverURL(t, ts.URL, "items"),
		Method:   http.MethodPost,
		Header:   message.NewHeader("X-Echo-Length", "5"),
		Body:     []byte("hello"),
		UserInfo: map[string]any{"k": 1},
	}

	resp := c.Perform(t.Context(), fakeTask("t1"), req)
	if resp.Err != nil {
		t.Fatalf("expected no failure, got: %v", resp.Err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("expected echoed body, got %q", resp.Body)
	}
	if resp.Header.Get("X-Method") != http.MethodPost || resp.Header.Get("X-Length") != "5" {
		t.Errorf("unexpected headers %v", resp.Header.HTTP())
	}
	if resp.UserInfo["k"] != 1 {
		t.Errorf("expected user info carried over, got %v", resp.UserInfo)
	}
	if !strings.HasSuffix(resp.FinalURL, "/items") || resp.OriginURL != resp.FinalURL {
		t.Errorf("unexpected urls origin=%q final=%q", resp.OriginURL, resp.FinalURL)
	}
}

func TestHTTP_BodyPrecedence(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.Copy(w, r.Body)
	}))
	defer ts.Close()

	path := filepath.Join(t.TempDir(), "body.txt")
	if err := os.WriteFile(path, []byte("from file"), 0o600); err != nil {
		t.Fatalf("failed to write body file: %v", err)
	}

	testCases := []struct {
		name string
		req  message.Request
		exp  string
	}{
		{name: "buffer authoritative", req: message.Request{Method: http.MethodPut, Body: []byte("buffer"), BodyFile: path}, exp: "buffer"},
		{name: "file", req: message.Request{Method: http.MethodPut, BodyFile: path}, exp: "from file"},
	}

	c := newConnector(t)
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.URL = serverURL(t, ts.URL)
			resp := c.Perform(t.Context(), fakeTask(tc.name), &tc.req)
			if resp.Err != nil {
				t.Fatalf("expected no failure, got: %v", resp.Err)
			}
			if string(resp.Body) != tc.exp {
				t.Errorf("expected %q, got %q", tc.exp, resp.Body)
			}
		})
	}
}

func TestHTTP_TransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	u := serverURL(t, ts.URL)
	ts.Close()

	resp := newConnector(t).Perform(t.Context(), fakeTask("dead"), &message.Request{URL: u})
	if resp == nil {
		t.Fatal("expected a response value")
	}
	if !resp.Failed() || resp.HasStatus() {
		t.Errorf("expected captured failure without status, got %+v", resp)
	}
	if resp.OriginURL == "" {
		t.Error("expected origin url on failure")
	}
}

func TestHTTP_ResourceFailure(t *testing.T) {
	req := &message.Request{
		URL:      &uri.URL{Scheme: "http", Host: "127.0.0.1", Port: 1},
		Method:   http.MethodPost,
		BodyFile: filepath.Join(t.TempDir(), "missing"),
	}

	resp := newConnector(t).Perform(t.Context(), fakeTask("missing"), req)
	if !errors.Is(resp.Err, os.ErrNotExist) {
		t.Errorf("expected not-exist failure, got %v", resp.Err)
	}
}

func TestHTTP_InvalidURL(t *testing.T) {
	resp := newConnector(t).Perform(t.Context(), fakeTask("bad"), &message.Request{URL: &uri.URL{Scheme: "https"}})
	if !resp.Failed() {
		t.Error("expected failure for missing host")
	}
}

func TestHTTP_Redirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("moved"))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	t.Run("follow", func(t *testing.T) {
		resp := newConnector(t).Perform(t.Context(), fakeTask("r"), &message.Request{URL: serverURL(t, ts.URL, "old")})
		if resp.StatusCode != http.StatusOK || !strings.HasSuffix(resp.FinalURL, "/new") {
			t.Errorf("expected redirect followed, got %d %q", resp.StatusCode, resp.FinalURL)
		}
		if !strings.HasSuffix(resp.OriginURL, "/old") {
			t.Errorf("expected origin /old, got %q", resp.OriginURL)
		}
	})

	t.Run("no follow", func(t *testing.T) {
		c := newConnector(t, connector.WithSettings(connector.Settings{FollowRedirects: layered.Ptr(false)}))
		resp := c.Perform(t.Context(), fakeTask("r"), &message.Request{URL: serverURL(t, ts.URL, "old")})
		if resp.StatusCode != http.StatusFound {
			t.Errorf("expected %d, got %d", http.StatusFound, resp.StatusCode)
		}
	})
}

func TestHTTP_CachingDisabled(t *testing.T) {
	var got http.Header
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	defer ts.Close()

	c := newConnector(t, connector.WithSettings(connector.Settings{EnableCaching: layered.Ptr(false)}), connector.WithUserAgent("apiconn-test"))
	resp := c.Perform(t.Context(), fakeTask("c"), &message.Request{URL: serverURL(t, ts.URL)})
	if resp.Err != nil {
		t.Fatalf("expected no failure, got: %v", resp.Err)
	}

	if got.Get("Cache-Control") != "no-cache" || got.Get("Pragma") != "no-cache" {
		t.Errorf("expected no-cache headers, got %v", got)
	}
	if got.Get("User-Agent") != "apiconn-test" {
		t.Errorf("expected user agent, got %q", got.Get("User-Agent"))
	}
}

func TestHTTP_Compression(t *testing.T) {
	payload := strings.Repeat("compressible ", 64)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		switch r.URL.Query().Get("enc") {
		case "gzip":
			zw := gzip.NewWriter(&buf)
			zw.Write([]byte(payload))
			zw.Close()
		case "zstd":
			zw, _ := zstd.NewWriter(&buf)
			zw.Write([]byte(payload))
			zw.Close()
		}
		w.Header().Set("Content-Encoding", r.URL.Query().Get("enc"))
		w.Write(buf.Bytes())
	}))
	defer ts.Close()

	c := newConnector(t, connector.WithCompression())
	for _, enc := range []string{"gzip", "zstd"} {
		t.Run(enc, func(t *testing.T) {
			u := serverURL(t, ts.URL).AddQuery("enc", enc)
			resp := c.Perform(t.Context(), fakeTask(enc), &message.Request{URL: u})
			if resp.Err != nil {
				t.Fatalf("expected no failure, got: %v", resp.Err)
			}
			if string(resp.Body) != payload {
				t.Errorf("expected decoded payload, got %d bytes", len(resp.Body))
			}
			if resp.Header.Has("Content-Encoding") {
				t.Error("expected Content-Encoding removed after decoding")
			}
		})
	}
}

func TestHTTP_OutputFile(t *testing.T) {
	payload := strings.Repeat("z", 4096)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer ts.Close()

	dest := filepath.Join(t.TempDir(), "download.bin")

	var (
		mu      sync.Mutex
		reports []download.Progress
	)
	c := newConnector(t,
		connector.WithOutputFile(dest),
		connector.WithProgress(func(p download.Progress) {
			mu.Lock()
			defer mu.Unlock()
			reports = append(reports, p)
		}),
	)

	resp := c.Perform(t.Context(), fakeTask("dl"), &message.Request{URL: serverURL(t, ts.URL)})
	if resp.Err != nil {
		t.Fatalf("expected no failure, got: %v", resp.Err)
	}
	if resp.BodyFile != dest || resp.Body != nil {
		t.Errorf("expected body file %q and no buffer, got %q / %d bytes", dest, resp.BodyFile, len(resp.Body))
	}

	got, err := resp.Bytes()
	if err != nil {
		t.Fatalf("failed to read body file: %v", err)
	}
	if string(got) != payload {
		t.Errorf("expected %d bytes, got %d", len(payload), len(got))
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reports) == 0 || !reports[len(reports)-1].Last() {
		t.Errorf("expected final progress report, got %+v", reports)
	}
}

func TestHTTP_Stop(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer ts.Close()
	defer close(release)

	c := newConnector(t)

	done := make(chan *message.Response)
	go func() {
		done <- c.Perform(t.Context(), fakeTask("stop"), &message.Request{URL: serverURL(t, ts.URL)})
	}()

	time.Sleep(50 * time.Millisecond)
	c.Stop()
	c.Stop()

	select {
	case resp := <-done:
		if !errors.Is(resp.Err, connector.ErrStopped) {
			t.Errorf("expected ErrStopped, got %v", resp.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("perform did not return after stop")
	}

	resp := c.Perform(t.Context(), fakeTask("after"), &message.Request{URL: serverURL(t, ts.URL)})
	if !errors.Is(resp.Err, connector.ErrStopped) {
		t.Errorf("expected stopped connector to fail fast, got %v", resp.Err)
	}
}

func TestHTTP_StopAfterCompletion(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := newConnector(t)
	resp := c.Perform(t.Context(), fakeTask("s"), &message.Request{URL: serverURL(t, ts.URL)})
	c.Stop()

	if resp.Err != nil || string(resp.Body) != "ok" {
		t.Errorf("expected completed response to be unaffected, got %+v", resp)
	}
}

func TestHTTP_CookieJar(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			w.Write([]byte(c.Value))
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
	}))
	defer ts.Close()

	c := newConnector(t, connector.WithCookieJar())
	c.Perform(t.Context(), fakeTask("1"), &message.Request{URL: serverURL(t, ts.URL)})
	resp := c.Perform(t.Context(), fakeTask("2"), &message.Request{URL: serverURL(t, ts.URL)})

	if string(resp.Body) != "abc" {
		t.Errorf("expected cookie replayed, got %q", resp.Body)
	}
}

func TestNew_InvalidOptions(t *testing.T) {
	testCases := []struct {
		name string
		opt  connector.Option
	}{
		{name: "negative timeout", opt: connector.WithSettings(connector.Settings{ConnectTimeout: layered.Ptr(-time.Second)})},
		{name: "zero throttle", opt: connector.WithThrottle(0, 1)},
		{name: "empty output", opt: connector.WithOutputFile("")},
		{name: "nil client", opt: connector.WithClient(nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := connector.New(tc.opt); err == nil {
				t.Error("expected error")
			}
		})
	}
}
