package stats

import (
	"strings"
	"testing"
	"time"
)

func TestSnapshotCounts(t *testing.T) {
	a := NewAggregator()

	a.RecordSpawn()
	a.RecordSpawn()
	a.RecordSpawn()
	a.RecordExit(0, 2*time.Second)
	a.RecordExit(1, 4*time.Second)
	a.RecordExit(1, 6*time.Second)
	a.RecordCheck(true)
	a.RecordCheck(false)
	a.RecordForward("SIGUSR1")
	a.RecordForward("SIGUSR1")
	a.RecordLine(10)
	a.RecordLine(5)

	s := a.Snapshot()

	if s.Spawns != 3 {
		t.Errorf("Spawns = %d, want 3", s.Spawns)
	}
	if s.ExitCodes[0] != 1 || s.ExitCodes[1] != 2 {
		t.Errorf("ExitCodes = %v", s.ExitCodes)
	}
	if s.ChecksPassed != 1 || s.ChecksFailed != 1 {
		t.Errorf("checks = %d/%d, want 1/1", s.ChecksPassed, s.ChecksFailed)
	}
	if s.Forwarded["SIGUSR1"] != 2 {
		t.Errorf("Forwarded = %v", s.Forwarded)
	}
	if s.Lines != 2 || s.LineBytes != 15 {
		t.Errorf("Lines = %d bytes = %d, want 2/15", s.Lines, s.LineBytes)
	}
}

func TestUptimePercentiles(t *testing.T) {
	a := NewAggregator()

	for i := 1; i <= 100; i++ {
		a.RecordExit(0, time.Duration(i)*time.Second)
	}

	s := a.Snapshot()

	// The digest is approximate; allow some slack around the true values.
	if s.UptimeP50 < 40*time.Second || s.UptimeP50 > 60*time.Second {
		t.Errorf("UptimeP50 = %v, want ~50s", s.UptimeP50)
	}
	if s.UptimeP95 < 85*time.Second || s.UptimeP95 > 100*time.Second {
		t.Errorf("UptimeP95 = %v, want ~95s", s.UptimeP95)
	}
	if s.UptimeP99 < s.UptimeP95 {
		t.Errorf("UptimeP99 (%v) < UptimeP95 (%v)", s.UptimeP99, s.UptimeP95)
	}
}

func TestSnapshotWithoutExits(t *testing.T) {
	s := NewAggregator().Snapshot()

	if s.UptimeP50 != 0 || s.UptimeP95 != 0 || s.UptimeP99 != 0 {
		t.Errorf("percentiles without exits should be zero: %+v", s)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	a := NewAggregator()
	a.RecordExit(0, time.Second)

	s := a.Snapshot()
	s.ExitCodes[0] = 99

	if a.Snapshot().ExitCodes[0] != 1 {
		t.Error("mutating a snapshot must not affect the aggregator")
	}
}

func TestFormatExitSummary(t *testing.T) {
	a := NewAggregator()
	a.RecordSpawn()
	a.RecordExit(143, 3*time.Second)
	a.RecordCheck(true)
	a.RecordForward("SIGUSR2")

	out := FormatExitSummary(a.Snapshot())

	for _, want := range []string{
		"run summary",
		"Children spawned:  1",
		"143",
		"SIGTERM",
		"SIGUSR2",
		"passed: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{3*time.Hour + 25*time.Minute + 45*time.Second, "03:25:45"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
