package conn

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/adamwoolhether/printer/errs"
)

var errTooManyRedirects = errors.New("too many redirects")

// classify maps a transfer failure onto an [errs.Code]. fallback is used
// when nothing more specific matches.
func classify(err error, fallback errs.Code) errs.Code {
	var (
		netErr net.Error
		dnsErr *net.DNSError
		opErr  *net.OpError
		sinkEr *sinkError
	)

	switch {
	case errors.As(err, &sinkEr):
		return errs.CodeWrite
	case errors.Is(err, errTooManyRedirects):
		return errs.CodeTooManyRedirects
	case errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		return errs.CodeTimeout
	case errors.Is(err, context.Canceled):
		return errs.CodeAborted
	case errors.As(err, &dnsErr):
		return errs.CodeResolveHost
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.As(err, &opErr) && opErr.Op == "dial":
		return errs.CodeConnect
	case errors.Is(err, io.ErrUnexpectedEOF):
		return errs.CodePartialBody
	case errors.Is(err, io.EOF):
		return errs.CodeEmptyReply
	}

	return fallback
}
