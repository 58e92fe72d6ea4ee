//go:build !unix

package sysstat

import "errors"

// ErrUnsupported is returned by Snapshot on platforms without getrusage.
var ErrUnsupported = errors.New("sysstat: resource usage not supported on this platform")

func Snapshot() (Usage, error) {
	return Usage{}, ErrUnsupported
}
