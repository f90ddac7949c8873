package conn

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

var errNoSink = errors.New("no sink registered")

// sinkError marks a failure on the sink side of a transfer, so it can be
// told apart from a failure reading the response.
type sinkError struct {
	err error
}

func (e *sinkError) Error() string {
	return fmt.Sprintf("writing to sink: %v", e.err)
}

func (e *sinkError) Unwrap() error {
	return e.err
}

// slot is the write target installed once per Conn. It forwards response
// bytes to whatever sink the running Make registered, and refuses them
// when none is.
type slot struct {
	sink io.Writer
}

func (s *slot) set(w io.Writer) {
	s.sink = w
}

func (s *slot) clear() {
	s.sink = nil
}

func (s *slot) Write(p []byte) (int, error) {
	if s.sink == nil {
		return 0, &sinkError{err: errNoSink}
	}

	n, err := s.sink.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	if err != nil {
		return n, &sinkError{err: err}
	}

	return n, nil
}

// progressWriter is an io.Writer, logging transfer progress at
// most once per second if enabled.
type progressWriter struct {
	w           io.Writer
	logger      *slog.Logger
	path        string
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
		pw.log("render receiving")
	}

	if pw.total > 0 && pw.transferred == pw.total {
		pw.log("render received")
	}

	return n, err
}

func (pw *progressWriter) log(msg string) {
	elapsed := time.Since(pw.startTime)
	attrs := []any{
		"path", pw.path,
		"elapsed", elapsed.Round(time.Millisecond),
		"transferred", pw.transferred,
		"total", pw.total,
	}
	if pw.total > 0 {
		attrs = append(attrs, "progress", fmt.Sprintf("%.1f%%", float64(pw.transferred)/float64(pw.total)*100))
	}
	pw.logger.Info(msg, attrs...)
}
