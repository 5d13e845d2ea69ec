// Package probe implements the connectivity probe port.
package probe

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"sound-scheduler/internal/domain"
)

// PingProbe checks reachability by running the system ping once.
// This is a secondary adapter.
type PingProbe struct {
	// Timeout is the per-reply wait handed to ping. Zero uses the context deadline.
	Timeout time.Duration
	goos    string
}

// NewPingProbe creates a probe for the current platform.
func NewPingProbe(timeout time.Duration) *PingProbe {
	return &PingProbe{Timeout: timeout, goos: runtime.GOOS}
}

// Probe sends a single echo request to target.
func (p *PingProbe) Probe(ctx context.Context, target string) error {
	if target == "" {
		return domain.ProbeErrorf(nil, "probe target is empty")
	}
	if strings.HasPrefix(target, "-") {
		return domain.ProbeErrorf(nil, "invalid probe target %q", target)
	}

	timeout := p.Timeout
	if deadline, ok := ctx.Deadline(); ok && (timeout <= 0 || time.Until(deadline) < timeout) {
		timeout = time.Until(deadline)
	}

	//nolint:gosec // G204: target is validated above and passed as a single argument
	cmd := exec.CommandContext(ctx, "ping", pingArgs(p.goos, target, timeout)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return domain.ProbeErrorf(ctx.Err(), "ping %s", target)
		}
		return domain.ProbeErrorf(err, "ping %s failed, output: %s", target, strings.TrimSpace(string(output)))
	}
	return nil
}

// pingArgs builds a one-shot ping command line for goos.
func pingArgs(goos, target string, timeout time.Duration) []string {
	switch goos {
	case "windows":
		ms := max(timeout.Milliseconds(), 1)
		return []string{"-n", "1", "-w", strconv.FormatInt(ms, 10), target}
	case "darwin", "freebsd", "openbsd", "netbsd":
		// BSD ping takes -W in milliseconds and -t as the overall timeout in seconds
		secs := max(int64(timeout.Round(time.Second)/time.Second), 1)
		return []string{"-c", "1", "-t", strconv.FormatInt(secs, 10), target}
	default:
		secs := max(int64(timeout.Round(time.Second)/time.Second), 1)
		return []string{"-c", "1", "-W", strconv.FormatInt(secs, 10), target}
	}
}
