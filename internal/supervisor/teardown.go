package supervisor

import (
	"syscall"
	"time"
)

// softTeardown asks every running child to exit via its configured
// termination signal and arms the escalation timer. Re-entering while a
// teardown is already in progress is a no-op: no signals are re-sent and
// the timer is not rearmed.
func (s *Supervisor) softTeardown() {
	if s.state != StateRunning {
		return
	}
	s.state = StateSoftTeardown

	s.out.System("Asking all processes to exit.")
	s.logger.Info("teardown_started", "timeout", s.cfg.ShutdownTimeout.String())

	for _, c := range s.children {
		if !c.running {
			continue
		}
		if err := s.kill(c.pid, c.def.TermSignal); err != nil {
			s.logger.Warn("term_signal_failed",
				"name", c.def.Name,
				"pid", c.pid,
				"error", err,
			)
		}
	}

	s.escalation = time.NewTimer(s.cfg.ShutdownTimeout)

	if s.cfg.Callbacks.OnTeardown != nil {
		s.cfg.Callbacks.OnTeardown(StateSoftTeardown)
	}
}

// hardTeardown kills every still-running child unconditionally and
// terminates the supervisor with a non-zero status. No further cleanup is
// attempted: this is the circuit breaker for children that ignore their
// termination signal.
func (s *Supervisor) hardTeardown() {
	s.state = StateHardTeardown

	for _, c := range s.children {
		if c.running {
			s.kill(c.pid, syscall.SIGKILL)
		}
	}

	if s.cfg.Callbacks.OnTeardown != nil {
		s.cfg.Callbacks.OnTeardown(StateHardTeardown)
	}

	s.exit(1)
}

// escalationC returns the armed escalation timer channel, or nil (blocking
// forever in a select) when no teardown is in progress.
func (s *Supervisor) escalationC() <-chan time.Time {
	if s.escalation == nil {
		return nil
	}
	return s.escalation.C
}

func (s *Supervisor) disarmEscalation() {
	if s.escalation != nil {
		s.escalation.Stop()
	}
}
