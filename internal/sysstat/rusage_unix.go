//go:build unix

package sysstat

import (
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sys/unix"
)

// Snapshot returns the current resource usage of the process.
func Snapshot() (Usage, error) {
	var ru unix.Rusage

	err := unix.Getrusage(unix.RUSAGE_SELF, &ru)
	if err != nil {
		return Usage{}, fmt.Errorf("getrusage: %w", err)
	}

	maxRSS := int64(ru.Maxrss)
	// Linux and the BSDs report kilobytes, darwin reports bytes.
	if runtime.GOOS != "darwin" && runtime.GOOS != "ios" {
		maxRSS *= 1024
	}

	return Usage{
		User:   time.Duration(ru.Utime.Nano()),
		System: time.Duration(ru.Stime.Nano()),
		MaxRSS: maxRSS,
	}, nil
}
