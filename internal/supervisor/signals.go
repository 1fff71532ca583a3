package supervisor

import (
	"os"
	"os/signal"
	"syscall"
)

// notifySignals installs the OS signal handlers. The runtime's handler does
// nothing beyond a non-blocking channel send, so the producer side stays
// allocation-free and a signal arriving between loop iterations is never
// lost: the buffered channel is the level-triggered pending flag.
func (s *Supervisor) notifySignals() {
	signal.Notify(s.sigC,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGUSR1,
		syscall.SIGUSR2,
	)
}

func (s *Supervisor) stopSignals() {
	signal.Stop(s.sigC)
}

// dispatchSignal handles one pending signal event. SIGTERM and SIGINT both
// request teardown; a second request while tearing down escalates.
func (s *Supervisor) dispatchSignal(sig os.Signal) {
	switch sig {
	case syscall.SIGTERM, syscall.SIGINT:
		s.out.System("Received request to terminate.")
		if s.state != StateRunning {
			s.out.System("Shutdown already in progress, so performing hard shutdown.")
			s.hardTeardown()
			return
		}
		s.out.System("Performing soft shutdown.")
		s.softTeardown()

	case syscall.SIGUSR1:
		s.forward(syscall.SIGUSR1, "SIGUSR1")

	case syscall.SIGUSR2:
		s.forward(syscall.SIGUSR2, "SIGUSR2")
	}
}

// forward relays sig to every running child whose definition opts in.
func (s *Supervisor) forward(sig syscall.Signal, name string) {
	s.out.System("Received %s.", name)

	for _, c := range s.children {
		if !c.running {
			continue
		}
		if !c.def.Forwards(sig) {
			continue
		}

		s.out.System("Passing %s to child %s (%d).", name, c.def.Name, c.pid)
		if err := s.kill(c.pid, sig); err != nil {
			s.logger.Warn("forward_failed",
				"name", c.def.Name,
				"pid", c.pid,
				"signal", name,
				"error", err,
			)
			continue
		}
		if s.cfg.Callbacks.OnForward != nil {
			s.cfg.Callbacks.OnForward(c.def.Name, name)
		}
	}
}
