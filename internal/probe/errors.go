package probe

import (
	"context"
	"errors"
	"net"
)

// ClassifyError maps a transport-level error onto the attempt taxonomy.
// Deadline expiry (via context or net.Error) is a timeout; everything else
// that reaches the wire is a transport failure. Protocol and content-size
// failures are classified by the strategies themselves since they require
// response inspection.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return ErrTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	return ErrTransport
}
