package message

import (
	"mime"
	"path/filepath"
	"strings"
)

// extTypes covers the upload types most often sent by API clients so
// that resolution does not depend on the host's mime.types files.
var extTypes = map[string]string{
	".bin":  TypeOctetStream,
	".csv":  "text/csv",
	".gif":  "image/gif",
	".gz":   "application/gzip",
	".htm":  "text/html",
	".html": "text/html",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".json": TypeJSON,
	".mp3":  "audio/mpeg",
	".mp4":  "video/mp4",
	".pdf":  "application/pdf",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".txt":  TypeTextPlain,
	".wav":  "audio/wav",
	".webp": "image/webp",
	".xml":  "application/xml",
	".zip":  "application/zip",
}

// TypeByExtension returns the media type for the extension of filename,
// without parameters. It returns "" when nothing resolves.
func TypeByExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return ""
	}

	if t, ok := extTypes[ext]; ok {
		return t
	}

	t, _, err := mime.ParseMediaType(mime.TypeByExtension(ext))
	if err != nil {
		return ""
	}
	return t
}

// MediaType splits a Content-Type value into its media type and charset
// parameter. Either may be empty.
func MediaType(contentType string) (mediaType, charsetLabel string) {
	mt, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(strings.Split(contentType, ";")[0]), ""
	}
	return mt, params["charset"]
}
