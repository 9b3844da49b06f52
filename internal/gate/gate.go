// Package gate translates OS activity signals (screen lock, sleep,
// screensaver) into pause/resume events for the engine. The OS-specific
// detection lives outside the process: a watcher command emits "paused" and
// "resumed" lines on stdout and this package forwards them.
package gate

import (
	"bufio"
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// Callbacks receive gate events. Delivery is asynchronous and a single real
// pause may produce several paused lines; coalescing is the consumer's job.
type Callbacks struct {
	OnPause  func()
	OnResume func()
}

// CommandGate runs a watcher process and forwards its events.
type CommandGate struct {
	command string
	log     *slog.Logger
}

// NewCommandGate builds a gate around a watcher command line. An empty
// command yields a gate whose Run is a no-op.
func NewCommandGate(command string, log *slog.Logger) *CommandGate {
	if log == nil {
		log = slog.Default()
	}
	return &CommandGate{command: command, log: log}
}

// Run spawns the watcher and forwards its stdout lines until the process
// exits or ctx is cancelled. Spawn failures and exits are logged and degrade
// to "no gate"; session tracking continues without auto-stop.
func (g *CommandGate) Run(ctx context.Context, cb Callbacks) {
	if g.command == "" {
		return
	}

	args := strings.Fields(g.command)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		g.log.Error("failed to attach to activity watcher", "error", err)
		return
	}
	if err := cmd.Start(); err != nil {
		g.log.Error("failed to start activity watcher", "command", args[0], "error", err)
		return
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "paused":
			if cb.OnPause != nil {
				cb.OnPause()
			}
		case "resumed":
			if cb.OnResume != nil {
				cb.OnResume()
			}
		}
	}

	if err := cmd.Wait(); err != nil && ctx.Err() == nil {
		g.log.Warn("activity watcher exited", "error", err)
	}
}
