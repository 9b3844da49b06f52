// Package prompt delivers resume prompts. Show is fire-and-forget; the
// user's acceptance, if any, flows back through the engine. Delivery faults
// degrade to "no prompt shown" and never disturb session tracking.
package prompt

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Request carries one prompt to a UI consumer.
type Request struct {
	ProjectID   string
	DisplayName string
}

// ExecNotifier shells out to a notify-send style command, appending the
// prompt text as the final argument.
type ExecNotifier struct {
	command string
	log     *slog.Logger
}

// NewExecNotifier builds a notifier around a command line. An empty command
// yields a notifier whose Show is a no-op.
func NewExecNotifier(command string, log *slog.Logger) *ExecNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &ExecNotifier{command: command, log: log}
}

// Show spawns the notification command and does not wait for it.
func (n *ExecNotifier) Show(projectID, displayName string) {
	if n.command == "" {
		return
	}

	args := strings.Fields(n.command)
	args = append(args, fmt.Sprintf("Resume tracking %s?", displayName))

	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		n.log.Warn("failed to show resume notification", "error", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			n.log.Warn("resume notification command failed", "error", err)
		}
	}()
}

// ChannelNotifier forwards prompts to a channel for an in-process UI. Sends
// never block: if the consumer is not listening, the prompt is dropped, and
// the user can still resume manually.
type ChannelNotifier struct {
	ch chan Request
}

// NewChannelNotifier creates a notifier with a small buffer.
func NewChannelNotifier() *ChannelNotifier {
	return &ChannelNotifier{ch: make(chan Request, 4)}
}

// Show enqueues the prompt, dropping it when the buffer is full.
func (n *ChannelNotifier) Show(projectID, displayName string) {
	select {
	case n.ch <- Request{ProjectID: projectID, DisplayName: displayName}:
	default:
	}
}

// Requests exposes the prompt stream for the consumer.
func (n *ChannelNotifier) Requests() <-chan Request {
	return n.ch
}

// Multi fans one prompt out to several notifiers.
type Multi []interface {
	Show(projectID, displayName string)
}

// Show delivers to every notifier in order.
func (m Multi) Show(projectID, displayName string) {
	for _, n := range m {
		n.Show(projectID, displayName)
	}
}
