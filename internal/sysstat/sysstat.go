// Package sysstat reads process resource usage for benchmark reports.
package sysstat

import "time"

// Usage is a snapshot of the process's CPU time and peak memory.
type Usage struct {
	User   time.Duration
	System time.Duration
	// MaxRSS is the peak resident set size in bytes. 0 if unknown.
	MaxRSS int64
}

// Sub returns the CPU time spent between prev and u. MaxRSS is taken from u
// since the peak never decreases.
func (u Usage) Sub(prev Usage) Usage {
	return Usage{
		User:   u.User - prev.User,
		System: u.System - prev.System,
		MaxRSS: u.MaxRSS,
	}
}
