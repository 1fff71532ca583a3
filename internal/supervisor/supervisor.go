package supervisor

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/randomizedcoder/go-proc-supervisor/internal/config"
	"github.com/randomizedcoder/go-proc-supervisor/internal/mux"
	"github.com/randomizedcoder/go-proc-supervisor/internal/process"
)

// ErrCheckFailed is returned by Run when the check phase ends in teardown,
// either because a check child failed or because teardown was requested
// while checks were still running.
var ErrCheckFailed = errors.New("startup check failed")

// Exit classification labels reported through Callbacks.OnExit.
const (
	ExitCheckPassed = "check_passed"
	ExitCheckFailed = "check_failed"
	ExitUnexpected  = "unexpected"
)

// Callbacks contains optional callback functions for supervisor events.
// All callbacks are invoked from the event loop goroutine.
type Callbacks struct {
	// OnSpawn is called when a child process starts.
	OnSpawn func(name string, pid int)

	// OnExit is called when a child has been reaped.
	OnExit func(name string, exitCode int, uptime time.Duration, class string)

	// OnSpawnFailed is called when a phase's cohort could not be fully
	// spawned.
	OnSpawnFailed func(err error)

	// OnRunning is called whenever the number of running children changes.
	OnRunning func(n int)

	// OnTeardown is called on every teardown state transition.
	OnTeardown func(state TeardownState)

	// OnForward is called for each relayed signal delivery.
	OnForward func(name string, signal string)
}

// Config holds configuration for creating a Supervisor.
type Config struct {
	Children        []config.Child
	ShutdownTimeout time.Duration
	MaxLineLength   int
	DrainTimeout    time.Duration

	Output    *mux.Writer
	Logger    *slog.Logger
	Callbacks Callbacks

	// Exit terminates the supervisor process on hard teardown.
	// Defaults to os.Exit; replaceable for tests.
	Exit func(code int)

	// Kill delivers a signal to a child's process group.
	// Defaults to process.SignalGroup; replaceable for tests.
	Kill func(pid int, sig syscall.Signal) error

	// Notify controls whether OS signal handlers are installed.
	// Tests inject signal events directly instead.
	Notify bool
}

// childState is one entry of the process table. It is mutated only by the
// event loop goroutine; pump and wait goroutines communicate through
// channels and never touch it.
type childState struct {
	def     config.Child
	cmd     *exec.Cmd
	pid     int
	running bool
	started time.Time

	// Held open and otherwise unused: children never receive stdin data.
	stdinW *os.File
}

// exitEvent is posted by a child's wait goroutine when it has been reaped
// by the runtime.
type exitEvent struct {
	index    int
	exitCode int
	uptime   time.Duration
}

// Supervisor owns the process table and the event loop. A Supervisor runs
// exactly once: the check phase, then the normal phase.
type Supervisor struct {
	cfg    Config
	out    *mux.Writer
	logger *slog.Logger

	children []*childState

	sigC  chan os.Signal
	exitC chan exitEvent

	pumpWg sync.WaitGroup

	state      TeardownState
	escalation *time.Timer

	exit func(int)
	kill func(pid int, sig syscall.Signal) error
}

// New creates a Supervisor over the given child table.
func New(cfg Config) *Supervisor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Output == nil {
		cfg.Output = mux.NewWriter(os.Stdout, os.Stderr)
	}
	if cfg.Exit == nil {
		cfg.Exit = os.Exit
	}
	if cfg.Kill == nil {
		cfg.Kill = process.SignalGroup
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}

	s := &Supervisor{
		cfg:    cfg,
		out:    cfg.Output,
		logger: cfg.Logger,
		sigC:   make(chan os.Signal, 16),
		exitC:  make(chan exitEvent, len(cfg.Children)+1),
		state:  StateRunning,
		exit:   cfg.Exit,
		kill:   cfg.Kill,
	}

	s.children = make([]*childState, len(cfg.Children))
	for i, def := range cfg.Children {
		s.children[i] = &childState{def: def, pid: -1}
	}

	return s
}

// Run executes the check phase and then the normal phase. It blocks until
// every child has exited (or never returns, when a hard teardown terminates
// the process). The supervisor process never exits zero; the caller maps
// both a nil and a non-nil return to a non-zero status.
func (s *Supervisor) Run() error {
	if s.cfg.Notify {
		s.notifySignals()
		defer s.stopSignals()
	}
	defer s.disarmEscalation()

	checked := s.runPhase(PhaseCheck)

	if s.state != StateRunning {
		s.out.System("Startup check failed, shutting down.")
		return ErrCheckFailed
	}
	if checked > 0 {
		s.out.System("All startup checks have passed.")
	}

	s.runPhase(PhaseNormal)

	s.out.System("All child processes have exited.")
	return nil
}

// runPhase spawns the phase's cohort and runs the event loop until no child
// of the cohort remains running. Returns the number of children spawned.
func (s *Supervisor) runPhase(phase Phase) int {
	count, err := s.spawn(phase)
	if err != nil {
		if phase == PhaseCheck {
			s.out.System("Not all check commands could be spawned.")
		} else {
			s.out.System("Not all children could be spawned.")
		}
		s.logger.Error("spawn_failed", "phase", phase.String(), "error", err)
		if s.cfg.Callbacks.OnSpawnFailed != nil {
			s.cfg.Callbacks.OnSpawnFailed(err)
		}
		s.softTeardown()
	} else if phase == PhaseNormal && count > 0 {
		s.out.System("All processes have been spawned.")
	}

	if count == 0 {
		return 0
	}

	for s.anyRunning() && s.state != StateHardTeardown {
		s.step(phase)
	}

	s.drainPumps()
	return count
}

// spawn starts every child whose phase flag matches. Partial failure leaves
// already-spawned children running; the caller initiates teardown.
func (s *Supervisor) spawn(phase Phase) (int, error) {
	count := 0

	for i, c := range s.children {
		if c.def.StartupCheck != (phase == PhaseCheck) {
			continue
		}

		stdinR, stdinW, err := os.Pipe()
		if err != nil {
			return count, fmt.Errorf("stdin pipe for %s: %w", c.def.Name, err)
		}
		stdoutR, stdoutW, err := os.Pipe()
		if err != nil {
			stdinR.Close()
			stdinW.Close()
			return count, fmt.Errorf("stdout pipe for %s: %w", c.def.Name, err)
		}
		stderrR, stderrW, err := os.Pipe()
		if err != nil {
			stdinR.Close()
			stdinW.Close()
			stdoutR.Close()
			stdoutW.Close()
			return count, fmt.Errorf("stderr pipe for %s: %w", c.def.Name, err)
		}

		cmd := process.Command(c.def)
		cmd.Stdin = stdinR
		cmd.Stdout = stdoutW
		cmd.Stderr = stderrW

		if err := cmd.Start(); err != nil {
			stdinR.Close()
			stdinW.Close()
			stdoutR.Close()
			stdoutW.Close()
			stderrR.Close()
			stderrW.Close()
			return count, fmt.Errorf("start %s: %w", c.def.Name, err)
		}

		// Child-side ends; the write end of stdin stays open and unused.
		stdinR.Close()
		stdoutW.Close()
		stderrW.Close()

		c.cmd = cmd
		c.pid = cmd.Process.Pid
		c.running = true
		c.started = time.Now()
		c.stdinW = stdinW
		count++

		s.logger.Info("child_started",
			"name", c.def.Name,
			"pid", c.pid,
			"phase", phase.String(),
		)
		if s.cfg.Callbacks.OnSpawn != nil {
			s.cfg.Callbacks.OnSpawn(c.def.Name, c.pid)
		}

		s.startPump(c.def.Name, mux.Stdout, stdoutR)
		s.startPump(c.def.Name, mux.Stderr, stderrR)

		go func(index int, cmd *exec.Cmd, started time.Time) {
			err := cmd.Wait()
			s.exitC <- exitEvent{
				index:    index,
				exitCode: process.ExitCode(err),
				uptime:   time.Since(started),
			}
		}(i, cmd, c.started)
	}

	if count > 0 && s.cfg.Callbacks.OnRunning != nil {
		s.cfg.Callbacks.OnRunning(s.runningCount())
	}

	return count, nil
}

// startPump owns one stream handle: it reads until EOF or error, then closes
// the handle. A read error is treated like EOF; it never forces teardown.
func (s *Supervisor) startPump(name string, stream mux.Stream, r *os.File) {
	lb := mux.NewLineBuffer(s.out, name, stream, s.cfg.MaxLineLength)

	s.pumpWg.Add(1)
	go func() {
		defer s.pumpWg.Done()
		defer r.Close()

		for {
			if err := lb.Pump(r); err != nil {
				if !errors.Is(err, io.EOF) {
					s.logger.Debug("stream_closed_on_error",
						"name", name,
						"stream", stream.String(),
						"error", err,
					)
				}
				return
			}
		}
	}()
}

// step runs one event loop iteration: block for any event, then handle all
// pending signals, then reap all pending exits. Signals are always drained
// before reaping so a teardown decision sees the latest liveness snapshot.
func (s *Supervisor) step(phase Phase) {
	var exits []exitEvent

	select {
	case sig := <-s.sigC:
		s.dispatchSignal(sig)
	case <-s.escalationC():
		s.out.System("Shutdown timeout has arrived, performing hard shutdown.")
		s.hardTeardown()
	case ev := <-s.exitC:
		exits = append(exits, ev)
	}

	if s.state == StateHardTeardown {
		return
	}

signals:
	for {
		select {
		case sig := <-s.sigC:
			s.dispatchSignal(sig)
		case <-s.escalationC():
			s.out.System("Shutdown timeout has arrived, performing hard shutdown.")
			s.hardTeardown()
		default:
			break signals
		}
		if s.state == StateHardTeardown {
			return
		}
	}

collect:
	for {
		select {
		case ev := <-s.exitC:
			exits = append(exits, ev)
		default:
			break collect
		}
	}

	for _, ev := range exits {
		s.reap(ev, phase)
	}
}

// reap marks an exited child not-running and classifies the exit. Reaping a
// child that is not running is a no-op.
func (s *Supervisor) reap(ev exitEvent, phase Phase) {
	c := s.children[ev.index]
	if !c.running {
		return
	}

	pid := c.pid
	c.running = false
	c.pid = -1
	c.cmd = nil
	if c.stdinW != nil {
		c.stdinW.Close()
		c.stdinW = nil
	}

	var class string
	if c.def.StartupCheck {
		if ev.exitCode == 0 {
			class = ExitCheckPassed
			s.out.System("Process for %s (%d) has indicated success.", c.def.Name, pid)
		} else {
			class = ExitCheckFailed
			s.out.System("Process for %s (%d) has indicated failure.", c.def.Name, pid)
		}
	} else {
		class = ExitUnexpected
		s.out.System("Process for %s (%d) has exited.", c.def.Name, pid)
	}

	s.logger.Info("child_exited",
		"name", c.def.Name,
		"pid", pid,
		"exit_code", ev.exitCode,
		"uptime", ev.uptime.String(),
		"class", class,
	)

	if s.cfg.Callbacks.OnExit != nil {
		s.cfg.Callbacks.OnExit(c.def.Name, ev.exitCode, ev.uptime, class)
	}
	if s.cfg.Callbacks.OnRunning != nil {
		s.cfg.Callbacks.OnRunning(s.runningCount())
	}

	// A failed check, or any exit at all during the normal phase, tears the
	// whole group down. A clean normal-phase exit is still unexpected.
	if ev.exitCode != 0 || phase != PhaseCheck {
		s.softTeardown()
	}
}

// drainPumps waits for the output pumps to reach EOF, bounded by the
// configured drain timeout.
func (s *Supervisor) drainPumps() {
	done := make(chan struct{})
	go func() {
		s.pumpWg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(s.cfg.DrainTimeout):
		s.logger.Warn("pump_drain_timeout", "timeout", s.cfg.DrainTimeout.String())
	}
}

func (s *Supervisor) anyRunning() bool {
	for _, c := range s.children {
		if c.running {
			return true
		}
	}
	return false
}

func (s *Supervisor) runningCount() int {
	n := 0
	for _, c := range s.children {
		if c.running {
			n++
		}
	}
	return n
}

// State returns the teardown state machine position.
func (s *Supervisor) State() TeardownState {
	return s.state
}
