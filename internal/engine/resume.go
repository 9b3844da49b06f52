package engine

import "time"

// resumeContext tracks one auto-stop episode. It lives only in memory and is
// discarded on any user stop, any session start, context replacement by a
// newer auto-stop, or expiry.
type resumeContext struct {
	projectID    string
	note         string
	stoppedAt    time.Time
	lastPromptAt time.Time
	hasRetried   bool
}

// beginResumeEpisodeLocked replaces the resume context after an auto-stop.
// A pending retry from a previous episode must not fire against the new
// context, so the timer is cancelled first.
func (e *Engine) beginResumeEpisodeLocked(projectID, note string) {
	e.cancelRetryLocked()
	e.resume = &resumeContext{
		projectID: projectID,
		note:      note,
		stoppedAt: e.now(),
	}
}

// clearResumeLocked drops the resume context and cancels the pending retry.
func (e *Engine) clearResumeLocked() {
	e.cancelRetryLocked()
	e.resume = nil
}

func (e *Engine) cancelRetryLocked() {
	if e.retryTimer != nil {
		e.retryTimer.Stop()
		e.retryTimer = nil
	}
}

// maybePromptLocked decides whether to surface a resume prompt, applying the
// timing windows of the policy. Called on unlock and from the retry timer.
func (e *Engine) maybePromptLocked() {
	ctx := e.resume
	if ctx == nil || e.notifier == nil {
		return
	}
	if e.runningEntryLocked() != nil {
		return
	}

	now := e.now()
	sinceStop := now.Sub(ctx.stoppedAt)

	// Lock/unlock flicker: the stop barely happened.
	if sinceStop < e.policy.MinGap {
		return
	}
	// The user has moved on; drop the context entirely.
	if sinceStop > e.policy.Expiry {
		e.clearResumeLocked()
		return
	}
	// Debounce rapid unlock/relock cycles.
	if !ctx.lastPromptAt.IsZero() && now.Sub(ctx.lastPromptAt) < e.policy.RepromptDebounce {
		return
	}

	ctx.lastPromptAt = now
	e.showPrompt(ctx.projectID)

	// Exactly one retry per episode.
	if !ctx.hasRetried {
		ctx.hasRetried = true
		e.retryTimer = e.afterFunc(e.policy.RetryDelay, func() {
			e.retryPrompt(ctx)
		})
	}
}

// retryPrompt fires from the retry timer. The episode may have been cleared
// or replaced since scheduling; only a still-current context prompts again.
func (e *Engine) retryPrompt(ctx *resumeContext) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.resume != ctx {
		return
	}
	e.retryTimer = nil
	e.maybePromptLocked()
}

// showPrompt hands the prompt to the notifier. Notifier faults are the
// notifier's to absorb; state here is already consistent either way.
func (e *Engine) showPrompt(projectID string) {
	e.notifier.Show(projectID, e.projectNameLocked(projectID))
}
