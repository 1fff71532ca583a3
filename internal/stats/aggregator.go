// Package stats aggregates per-run statistics for the exit summary.
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"
)

// Aggregator accumulates lifecycle statistics over one supervised run.
// It is written to from supervisor callbacks and read once at exit.
type Aggregator struct {
	mu sync.Mutex

	startTime time.Time

	spawns       int
	exitCodes    map[int]int
	checksPassed int
	checksFailed int
	forwarded    map[string]int
	lines        int64
	lineBytes    int64

	uptimeDigest *tdigest.TDigest
	uptimeCount  int
}

// NewAggregator creates an empty aggregator; the run clock starts now.
func NewAggregator() *Aggregator {
	return &Aggregator{
		startTime:    time.Now(),
		exitCodes:    make(map[int]int),
		forwarded:    make(map[string]int),
		uptimeDigest: tdigest.NewWithCompression(100),
	}
}

// RecordSpawn counts one successfully spawned child.
func (a *Aggregator) RecordSpawn() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.spawns++
}

// RecordExit counts one reaped child with its exit code and uptime.
func (a *Aggregator) RecordExit(exitCode int, uptime time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.exitCodes[exitCode]++
	a.uptimeDigest.Add(uptime.Seconds(), 1)
	a.uptimeCount++
}

// RecordCheck counts one startup-check result.
func (a *Aggregator) RecordCheck(passed bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if passed {
		a.checksPassed++
	} else {
		a.checksFailed++
	}
}

// RecordForward counts one relayed signal delivery.
func (a *Aggregator) RecordForward(signal string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.forwarded[signal]++
}

// RecordLine counts one multiplexed output line.
func (a *Aggregator) RecordLine(length int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lines++
	a.lineBytes += int64(length)
}

// Summary is the aggregated view of one run.
type Summary struct {
	Duration     time.Duration
	Spawns       int
	ExitCodes    map[int]int
	ChecksPassed int
	ChecksFailed int
	Forwarded    map[string]int
	Lines        int64
	LineBytes    int64

	UptimeP50 time.Duration
	UptimeP95 time.Duration
	UptimeP99 time.Duration
}

// Snapshot returns the current aggregate totals.
func (a *Aggregator) Snapshot() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Summary{
		Duration:     time.Since(a.startTime),
		Spawns:       a.spawns,
		ExitCodes:    make(map[int]int, len(a.exitCodes)),
		ChecksPassed: a.checksPassed,
		ChecksFailed: a.checksFailed,
		Forwarded:    make(map[string]int, len(a.forwarded)),
		Lines:        a.lines,
		LineBytes:    a.lineBytes,
	}
	for code, count := range a.exitCodes {
		s.ExitCodes[code] = count
	}
	for sig, count := range a.forwarded {
		s.Forwarded[sig] = count
	}

	if a.uptimeCount > 0 {
		s.UptimeP50 = secondsToDuration(a.uptimeDigest.Quantile(0.50))
		s.UptimeP95 = secondsToDuration(a.uptimeDigest.Quantile(0.95))
		s.UptimeP99 = secondsToDuration(a.uptimeDigest.Quantile(0.99))
	}

	return s
}

func secondsToDuration(s float64) time.Duration {
	if s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
