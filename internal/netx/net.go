// Package netx classifies transport failures of outgoing HTTP requests.
package netx

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
)

// IsTimeout reports whether err was caused by an expired deadline, either
// the context's or the transport's.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// IsTransport reports whether err came from the network layer: DNS, dial,
// TLS or a connection dropped mid-request.
func IsTransport(err error) bool {
	if err == nil {
		return false
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return true
	}
	var oe *net.OpError
	if errors.As(err, &oe) {
		return true
	}
	var de *net.DNSError
	return errors.As(err, &de)
}
