package download

import (
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Progress describes one step of a body transfer.
type Progress struct {
	Begin         time.Time
	Interval      time.Duration
	Received      int
	TotalReceived int64
	// ExpectedSize is -1 when the server did not announce a length.
	ExpectedSize int64
}

// Last reports whether p is the final report of a completed transfer.
func (p Progress) Last() bool {
	return p.Received == 0 && p.ExpectedSize >= 0 && p.TotalReceived == p.ExpectedSize
}

// ProgressFunc receives transfer progress.
type ProgressFunc func(Progress)

// Tracker is an io.Writer that reports each write to a ProgressFunc.
type Tracker struct {
	w        io.Writer
	fn       ProgressFunc
	begin    time.Time
	last     time.Time
	total    int64
	expected int64
}

// NewTracker wraps w. expected is the announced body size, or -1.
func NewTracker(w io.Writer, expected int64, fn ProgressFunc) *Tracker {
	now := time.Now()
	return &Tracker{w: w, fn: fn, begin: now, last: now, expected: expected}
}

func (t *Tracker) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	if n > 0 {
		t.report(n)
	}
	return n, err
}

// Finish emits the final report. The expected size becomes the total
// received, so the report is always [Progress.Last].
func (t *Tracker) Finish() {
	t.expected = t.total
	t.report(0)
}

func (t *Tracker) report(n int) {
	now := time.Now()
	interval := now.Sub(t.last)
	t.last = now
	t.total += int64(n)

	if t.fn == nil {
		return
	}
	t.fn(Progress{
		Begin:         t.begin,
		Interval:      interval,
		Received:      n,
		TotalReceived: t.total,
		ExpectedSize:  t.expected,
	})
}

// progressWriter is an io.Writer, logging download progress at
// most once per second if enabled.
type progressWriter struct {
	w           io.Writer
	logger      *slog.Logger
	transferred int64
	total       int64
	startTime   time.Time
	lastLog     time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.w.Write(p)
	pw.transferred += int64(n)

	if time.Since(pw.lastLog) >= time.Second {
		pw.lastLog = time.Now()
		pw.log("downloading")
	}

	if pw.total >= 0 && pw.transferred == pw.total {
		pw.log("download complete")
	}

	return n, err
}

func (pw *progressWriter) log(msg string) {
	elapsed := time.Since(pw.startTime)
	attrs := []any{
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", pw.transferred,
		"total", pw.total,
		"mbps", fmt.Sprintf("%.2f", float64(pw.transferred)/elapsed.Seconds()/(1024*1024)),
	}
	if pw.total > 0 {
		attrs = append(attrs, "progress", fmt.Sprintf("%.1f%%", float64(pw.transferred)/float64(pw.total)*100))
	}
	pw.logger.Info(msg, attrs...)
}
