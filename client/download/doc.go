// Package download streams response bodies to disk with optional
// checksum validation and progress reporting.
//
// [Handle] writes the body to a temporary file next to the destination
// path and renames it into place only once the copy, length check and
// checksum all succeed:
//
//	err := download.Handle(ctx, body, contentLength, destPath, logger,
//		download.WithChecksum(sha256.New(), expectedHex),
//		download.WithProgressFunc(func(p download.Progress) { ... }),
//	)
//
// The HTTP connector in
// [github.com/adamwoolhether/apiconn/client/connector] calls Handle when
// it is configured with an output file.
package download
