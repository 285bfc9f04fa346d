package download

import (
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"strconv"
	"strings"
)

var (
	ErrContentLengthMismatch = errors.New("content length mismatch")
	ErrChecksumMismatch      = errors.New("checksum mismatch")
	ErrDownloadCancelled     = errors.New("download cancelled")
	ErrEmptyDestination      = errors.New("destination path must not be empty")
)

// Error reports a failed integrity check of a finished transfer.
type Error struct {
	Expected string
	Actual   string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: expected %s, got %s", e.Err, e.Expected, e.Actual)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// integrity counts, and with a hash set also digests, every byte
// written through it.
type integrity struct {
	n        int64
	hash     hash.Hash
	checksum string
}

func (v *integrity) Write(p []byte) (int, error) {
	v.n += int64(len(p))
	if v.hash != nil {
		v.hash.Write(p)
	}
	return len(p), nil
}

// check compares the byte count with expectedLen, skipped when it is
// negative, then the digest with the expected hex checksum.
func (v *integrity) check(expectedLen int64) error {
	if expectedLen >= 0 && v.n != expectedLen {
		return &Error{
			Err:      ErrContentLengthMismatch,
			Expected: strconv.FormatInt(expectedLen, 10) + " bytes",
			Actual:   strconv.FormatInt(v.n, 10),
		}
	}

	if v.hash == nil {
		return nil
	}

	actual := hex.EncodeToString(v.hash.Sum(nil))
	if !strings.EqualFold(actual, v.checksum) {
		return &Error{
			Err:      ErrChecksumMismatch,
			Expected: v.checksum,
			Actual:   actual,
		}
	}
	return nil
}
