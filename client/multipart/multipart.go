// Package multipart assembles multipart/form-data bodies from bytes,
// streams, files and plain values, in memory or directly on disk.
package multipart

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adamwoolhether/apiconn/client/message"
)

const crlf = "\r\n"

// ErrEmptyName is returned for sections without a field name.
var ErrEmptyName = errors.New("multipart section name must not be empty")

// Result is an assembled body. Exactly one of Body or File is set.
type Result struct {
	Body       []byte
	File       string
	Length     int64
	Boundary   string
	Transcript string
}

// ContentType returns `multipart/form-data; boundary=...`.
func (r *Result) ContentType() string {
	return message.ContentType(message.TypeMultipartForm, message.Param{Key: "boundary", Value: r.Boundary})
}

// NewBoundary returns a boundary token embedding the current time plus
// a random suffix.
func NewBoundary() string {
	return "xxx" + time.Now().Format("20060102150405") + "xxx" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Build writes sections framed by the boundary. With an output
// directory or file configured the body is streamed to disk and Length
// is read back from the filesystem; otherwise it is kept in memory.
func Build(sections []Section, optFns ...Option) (*Result, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	return build(sections, opts)
}

func build(sections []Section, opts options) (*Result, error) {
	for _, s := range sections {
		if s.Name == "" {
			return nil, ErrEmptyName
		}
	}

	res := Result{Boundary: opts.boundary}
	if res.Boundary == "" {
		res.Boundary = NewBoundary()
	}

	var (
		file *os.File
		sb   strings.Builder
	)
	switch {
	case opts.outputFile != "":
		f, err := os.Create(opts.outputFile)
		if err != nil {
			return nil, fmt.Errorf("creating output file: %w", err)
		}
		file = f
	case *opts.settings.OutputDir != "":
		f, err := createNumbered(*opts.settings.OutputDir)
		if err != nil {
			return nil, err
		}
		file = f
	}

	var w *bufio.Writer
	if file != nil {
		w = bufio.NewWriterSize(file, copyChunk)
	}
	var mem bytes.Buffer
	var out io.Writer = &mem
	if w != nil {
		out = w
	}

	cs := *opts.settings.Charset
	delim := "--" + res.Boundary

	writeErr := func() error {
		for _, s := range sections {
			if _, err := io.WriteString(out, delim+crlf); err != nil {
				return fmt.Errorf("writing boundary: %w", err)
			}
			sb.WriteString(delim + "\n")

			log, err := s.writeTo(out, cs)
			if err != nil {
				return err
			}
			sb.WriteString(log)

			if _, err := io.WriteString(out, crlf); err != nil {
				return fmt.Errorf("writing section end: %w", err)
			}
			sb.WriteByte('\n')
		}

		if _, err := io.WriteString(out, delim+"--"); err != nil {
			return fmt.Errorf("writing closing boundary: %w", err)
		}
		sb.WriteString(delim + "--")
		return nil
	}()

	if file == nil {
		if writeErr != nil {
			return nil, writeErr
		}
		res.Body = mem.Bytes()
		res.Length = int64(len(res.Body))
		res.Transcript = sb.String()
		return &res, nil
	}

	if writeErr == nil {
		writeErr = w.Flush()
	}
	if err := file.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("closing output file: %w", err)
	}
	if writeErr != nil {
		os.Remove(file.Name())
		return nil, writeErr
	}

	info, err := os.Stat(file.Name())
	if err != nil {
		return nil, fmt.Errorf("reading output size: %w", err)
	}

	res.File = file.Name()
	res.Length = info.Size()
	res.Transcript = sb.String()
	return &res, nil
}

// createNumbered creates the first free file named 0, 1, 2... in dir.
func createNumbered(dir string) (*os.File, error) {
	for i := 0; ; i++ {
		f, err := os.OpenFile(filepath.Join(dir, strconv.Itoa(i)), os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("creating output file in %s: %w", dir, err)
		}
	}
}

// Builder is a request builder that attaches a multipart body. A
// generated output file belongs to the task until Clean runs.
type Builder struct {
	sections []Section
	opts     options

	mu        sync.Mutex
	generated string
}

// New returns a Builder for sections.
func New(sections []Section, optFns ...Option) (*Builder, error) {
	opts, err := applyOptions(optFns)
	if err != nil {
		return nil, err
	}
	return &Builder{sections: sections, opts: opts}, nil
}

// NewFromFields builds sections from a [message.Fielder], []message.Field
// or string-keyed map.
func NewFromFields(payload any, optFns ...Option) (*Builder, error) {
	fields, err := message.FieldsOf(payload)
	if err != nil {
		return nil, err
	}

	sections := make([]Section, len(fields))
	for i, f := range fields {
		sections[i] = FromField(f)
	}
	return New(sections, optFns...)
}

// FillRequest defaults the method to POST and, when the request has no
// body yet, attaches the assembled body with its Content-Type and
// Content-Length. The transcript becomes the request description.
func (b *Builder) FillRequest(_ context.Context, req *message.Request) (*message.Request, error) {
	out := req.Clone()
	if out.Method == "" {
		out.Method = http.MethodPost
	}
	if out.HasBody() {
		return out, nil
	}

	res, err := build(b.sections, b.opts)
	if err != nil {
		return nil, fmt.Errorf("building multipart body: %w", err)
	}

	if res.File != "" {
		out.BodyFile = res.File
		b.mu.Lock()
		b.generated = res.File
		b.mu.Unlock()
	} else {
		out.Body = res.Body
	}

	out.Header.SetIfAbsent(message.HeaderContentType, res.ContentType())
	out.Header.SetIfAbsent(message.HeaderContentLength, strconv.FormatInt(res.Length, 10))
	if out.Description == "" {
		out.Description = res.Transcript
	}

	return out, nil
}

// Clean removes the generated output file when auto-delete is on.
func (b *Builder) Clean() {
	b.mu.Lock()
	path := b.generated
	b.generated = ""
	b.mu.Unlock()

	if path == "" || !*b.opts.settings.AutoDelete {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.opts.logger.Error("failed to remove multipart output", "path", path, "error", err)
	}
}

func applyOptions(optFns []Option) (options, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return options{}, fmt.Errorf("applying multipart option: %w", err)
		}
	}
	opts.settings = Resolve(opts.settings, Settings{})
	if opts.logger == nil {
		opts.logger = slog.Default()
	}
	return opts, nil
}
