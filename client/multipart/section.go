package multipart

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/adamwoolhether/apiconn/client/charset"
	"github.com/adamwoolhether/apiconn/client/message"
)

const copyChunk = 32 << 10

type sourceKind int

const (
	sourceBytes sourceKind = iota
	sourceReader
	sourceFile
	sourceValue
)

// Section is one part of a multipart/form-data body. Build it with
// [Bytes], [Reader], [File], [Value] or [FromField]. Each section is
// written once.
type Section struct {
	Name        string
	Filename    string
	ContentType string
	Charset     charset.Charset

	kind   sourceKind
	data   []byte
	reader io.Reader
	path   string
	value  any
}

// Bytes returns a section holding data.
func Bytes(name string, data []byte) Section {
	return Section{Name: name, kind: sourceBytes, data: data}
}

// Reader returns a section streamed from r in bounded chunks.
func Reader(name string, r io.Reader) Section {
	return Section{Name: name, kind: sourceReader, reader: r}
}

// File returns a section streamed from the file at path. The base name
// is the default filename.
func File(name, path string) Section {
	return Section{Name: name, kind: sourceFile, path: path, Filename: filepath.Base(path)}
}

// Value returns a text section rendered from v's display form.
func Value(name string, v any) Section {
	return Section{Name: name, kind: sourceValue, value: v}
}

// FromField picks the section source from the field value type:
// []byte, then io.Reader, then [message.File], then any other value.
func FromField(f message.Field) Section {
	var s Section
	switch v := f.Value.(type) {
	case []byte:
		s = Bytes(f.Name, v)
	case io.Reader:
		s = Reader(f.Name, v)
	case message.File:
		s = File(f.Name, string(v))
	default:
		s = Value(f.Name, v)
	}

	if f.Filename != "" {
		s.Filename = f.Filename
	}
	s.ContentType = f.ContentType
	return s
}

// WithFilename returns a copy of s with the filename set.
func (s Section) WithFilename(filename string) Section {
	s.Filename = filename
	return s
}

// WithContentType returns a copy of s with an explicit content type.
func (s Section) WithContentType(ct string) Section {
	s.ContentType = ct
	return s
}

// resolveContentType picks the explicit type, text/plain for values,
// the filename extension, a content sniff for files, and finally
// application/octet-stream.
func (s Section) resolveContentType(cs charset.Charset) string {
	if s.ContentType != "" {
		return s.ContentType
	}
	if s.kind == sourceValue {
		return message.ContentTypeCharset(message.TypeTextPlain, cs)
	}
	if t := message.TypeByExtension(s.Filename); t != "" {
		return t
	}
	if s.kind == sourceFile {
		if mt, err := mimetype.DetectFile(s.path); err == nil {
			return mt.String()
		}
	}
	return message.TypeOctetStream
}

// writeTo writes headers, blank line and payload, and returns the
// transcript of what was written.
func (s Section) writeTo(w io.Writer, cs charset.Charset) (string, error) {
	if !s.Charset.IsZero() {
		cs = s.Charset
	}

	var log strings.Builder
	for _, line := range []string{
		message.HeaderLine(message.HeaderContentDisposition, message.ContentDisposition(s.Name, s.Filename)),
		message.HeaderLine(message.HeaderContentType, s.resolveContentType(cs)),
	} {
		log.WriteString(line)
		log.WriteByte('\n')
		if _, err := w.Write(cs.Encode(line + crlf)); err != nil {
			return "", fmt.Errorf("writing section header: %w", err)
		}
	}
	log.WriteByte('\n')
	if _, err := io.WriteString(w, crlf); err != nil {
		return "", fmt.Errorf("writing section header: %w", err)
	}

	switch s.kind {
	case sourceBytes:
		if _, err := w.Write(s.data); err != nil {
			return "", fmt.Errorf("writing section %q: %w", s.Name, err)
		}
		fmt.Fprintf(&log, "bytes: %d", len(s.data))

	case sourceReader:
		n, err := io.CopyBuffer(w, onlyReader{s.reader}, make([]byte, copyChunk))
		if err != nil {
			return "", fmt.Errorf("streaming section %q: %w", s.Name, err)
		}
		fmt.Fprintf(&log, "stream: %d", n)

	case sourceFile:
		n, err := copyFile(w, s.path)
		if err != nil {
			return "", fmt.Errorf("streaming section %q: %w", s.Name, err)
		}
		abs, _ := filepath.Abs(s.path)
		fmt.Fprintf(&log, "file: %s (%d)", abs, n)

	case sourceValue:
		text := message.Field{Value: s.value}.Text()
		if _, err := w.Write(cs.Encode(text)); err != nil {
			return "", fmt.Errorf("writing section %q: %w", s.Name, err)
		}
		log.WriteString(text)
	}

	return log.String(), nil
}

func copyFile(w io.Writer, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return io.CopyBuffer(w, onlyReader{f}, make([]byte, copyChunk))
}

// onlyReader hides WriterTo so copies go through the chunk buffer.
type onlyReader struct {
	r io.Reader
}

func (o onlyReader) Read(p []byte) (int, error) {
	return o.r.Read(p)
}
