// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/randomizedcoder/go-proc-supervisor/internal/config"
)

// Check represents the result of a single preflight check.
type Check struct {
	Name     string // Name of the check
	Required int    // Required value (if applicable)
	Actual   int    // Actual value found
	Passed   bool   // Whether the check passed
	Warning  bool   // True if it's a warning (non-fatal)
	Message  string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "ok"
	if !c.Passed {
		status = "FAIL"
	} else if c.Warning {
		status = "warn"
	}
	return fmt.Sprintf("  [%s] %s: %s", status, c.Name, c.Message)
}

// RunAll executes all preflight checks against the configured child table.
func RunAll(cfg *config.Config) *Result {
	result := &Result{
		Checks: make([]Check, 0, len(cfg.Children)+1),
		Passed: true,
	}

	for _, child := range cfg.Children {
		check := checkExecutable(child)
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.Passed = false
		}
	}

	fdCheck := checkFileDescriptors(len(cfg.Children))
	result.Checks = append(result.Checks, fdCheck)
	if !fdCheck.Passed {
		result.Passed = false
	}

	return result
}

// checkExecutable verifies the child's executable can be resolved.
func checkExecutable(child config.Child) Check {
	name := "executable:" + child.Name

	if len(child.Command) == 0 || child.Command[0] == "" {
		return Check{
			Name:    name,
			Message: "no command configured",
		}
	}

	path, err := exec.LookPath(child.Command[0])
	if err != nil {
		return Check{
			Name:    name,
			Message: fmt.Sprintf("%s: %v", child.Command[0], err),
		}
	}

	return Check{
		Name:    name,
		Passed:  true,
		Message: fmt.Sprintf("found at %s", path),
	}
}

// checkFileDescriptors verifies sufficient file descriptors are available.
// Each child needs three pipes plus supervisor overhead.
func checkFileDescriptors(children int) Check {
	var limit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &limit); err != nil {
		return Check{
			Name:    "file_descriptors",
			Passed:  true,
			Warning: true,
			Message: fmt.Sprintf("unable to check rlimit: %v", err),
		}
	}

	required := children*6 + 32
	actual := int(limit.Cur)

	return Check{
		Name:     "file_descriptors",
		Required: required,
		Actual:   actual,
		Passed:   actual >= required,
		Message:  fmt.Sprintf("ulimit -n %d (need %d for %d children)", actual, required, children),
	}
}

// Render returns the check results as one printable block.
func Render(result *Result) string {
	var sb strings.Builder
	sb.WriteString("Preflight checks:\n")
	for _, check := range result.Checks {
		sb.WriteString(check.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
