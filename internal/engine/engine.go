// Package engine owns all time-tracking state: the project list, the
// append-only entry log, the currently running entry, and the auto-stop /
// resume-prompt coordination. Every mutation funnels through the Engine,
// which is the sole writer to the store. All public methods serialize on one
// mutex; external events (activity gate signals, prompt callbacks, retry
// timers) re-enter through these methods, which is what makes the debounce
// and idempotency guarantees hold.
package engine

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/timekeepapp/timekeep/internal/store"
	"github.com/timekeepapp/timekeep/pkg/models"
)

// Notifier surfaces a resume prompt to the user. Show is fire-and-forget;
// the user's acceptance, if it ever arrives, comes back through
// Engine.ResumeFromPrompt.
type Notifier interface {
	Show(projectID, displayName string)
}

// ResumePolicy holds the timing windows for resume prompting.
type ResumePolicy struct {
	// MinGap suppresses prompting when unlock follows the stop almost
	// instantly.
	MinGap time.Duration
	// Expiry suppresses prompting once the auto-stop is too old.
	Expiry time.Duration
	// RepromptDebounce suppresses a prompt shown too soon after the last one.
	RepromptDebounce time.Duration
	// RetryDelay is the delay before the single scheduled retry prompt.
	RetryDelay time.Duration
}

// DefaultResumePolicy is the reference configuration.
func DefaultResumePolicy() ResumePolicy {
	return ResumePolicy{
		MinGap:           2 * time.Second,
		Expiry:           4 * time.Hour,
		RepromptDebounce: 10 * time.Second,
		RetryDelay:       20 * time.Second,
	}
}

// Options configures a new Engine.
type Options struct {
	Store    *store.Store
	Log      *slog.Logger
	Notifier Notifier
	Resume   ResumePolicy

	// RequireNote rejects StartSession with an empty note when set.
	RequireNote bool

	// Now and AfterFunc exist so tests can control time. Nil means the real
	// clock.
	Now       func() time.Time
	AfterFunc func(d time.Duration, f func()) *time.Timer
}

// Engine is the session lifecycle state machine.
type Engine struct {
	mu sync.Mutex

	store       *store.Store
	log         *slog.Logger
	notifier    Notifier
	policy      ResumePolicy
	requireNote bool
	now         func() time.Time
	afterFunc   func(d time.Duration, f func()) *time.Timer

	projects []models.Project
	entries  []models.TimeEntry

	selectedProjectID string
	currentNote       string

	// runningID caches the open entry's id for O(1) lookup. It is advisory:
	// the authoritative state is whether an entry with this id exists and is
	// still open.
	runningID string

	// pauseLatch coalesces duplicate pause signals within one episode.
	pauseLatch bool

	resume     *resumeContext
	retryTimer *time.Timer
}

// New loads the persisted collections and derives the initial state. A load
// failure is logged and degrades to empty collections rather than aborting
// startup.
func New(opts Options) (*Engine, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	policy := opts.Resume
	if policy == (ResumePolicy{}) {
		policy = DefaultResumePolicy()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	afterFunc := opts.AfterFunc
	if afterFunc == nil {
		afterFunc = time.AfterFunc
	}

	e := &Engine{
		store:       opts.Store,
		log:         log,
		notifier:    opts.Notifier,
		policy:      policy,
		requireNote: opts.RequireNote,
		now:         now,
		afterFunc:   afterFunc,
	}

	projects, err := e.store.LoadOrDefaultProjects()
	if err != nil {
		log.Error("failed to load projects, starting empty", "error", err)
		projects = []models.Project{}
	}
	entries, err := e.store.LoadOrDefaultEntries()
	if err != nil {
		log.Error("failed to load entries, starting empty", "error", err)
		entries = []models.TimeEntry{}
	}
	e.projects = projects
	e.entries = entries

	e.restoreSelection()
	return e, nil
}

// restoreSelection derives the running entry, selected project, and note
// draft from the loaded log.
func (e *Engine) restoreSelection() {
	// A process killed mid-session leaves its entry open; resume it as
	// running.
	for i := range e.entries {
		if e.entries[i].Running() {
			e.runningID = e.entries[i].ID
			e.selectedProjectID = e.entries[i].ProjectID
			e.currentNote = e.entries[i].Note
			return
		}
	}

	// Otherwise follow the most recently concluded entry, tie-broken by end
	// time when present, else start time.
	var latest *models.TimeEntry
	for i := range e.entries {
		entry := &e.entries[i]
		if latest == nil || concludedAt(entry).After(concludedAt(latest)) {
			latest = entry
		}
	}
	if latest != nil {
		e.selectedProjectID = latest.ProjectID
		e.currentNote = latest.Note
		return
	}

	if len(e.projects) > 0 {
		e.selectedProjectID = e.projects[0].ID
	}
}

func concludedAt(entry *models.TimeEntry) time.Time {
	if entry.EndAt != nil {
		return *entry.EndAt
	}
	return entry.StartAt
}

// AddProject creates, selects, and persists a new project. An empty name
// (after trimming) is silently ignored.
func (e *Engine) AddProject(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	project := models.Project{
		ID:   uuid.New().String(),
		Name: name,
	}
	e.projects = append(e.projects, project)
	e.selectedProjectID = project.ID

	if err := e.store.SaveProjects(e.projects); err != nil {
		e.log.Warn("failed to persist projects", "error", err)
	}
}

// SelectProject changes the selected project. Unknown ids are ignored.
func (e *Engine) SelectProject(projectID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, p := range e.projects {
		if p.ID == projectID {
			e.selectedProjectID = projectID
			return
		}
	}
}

// SetNote updates the free-text note draft. The draft is committed to an
// entry by StartSession or SwitchTask.
func (e *Engine) SetNote(note string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentNote = note
}

// StartSession starts tracking against projectID (or the selected project
// when projectID is empty) with the given note. Invalid preconditions are a
// silent no-op. A stray open entry is closed first with reason system.
func (e *Engine) StartSession(projectID, note string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startLocked(projectID, note)
}

func (e *Engine) startLocked(projectID, note string) {
	if projectID == "" {
		projectID = e.selectedProjectID
	}
	if projectID == "" {
		return
	}
	note = strings.TrimSpace(note)
	if e.requireNote && note == "" {
		return
	}

	// Self-heal: the invariant says this cannot happen, but a stray open
	// entry must be closed, not crashed on.
	if e.runningID != "" {
		e.stopLocked(models.EndReasonSystem)
	}

	entry := models.TimeEntry{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		StartAt:   e.now(),
		Note:      note,
	}
	e.entries = append(e.entries, entry)
	e.runningID = entry.ID
	e.selectedProjectID = projectID
	e.currentNote = note

	// Any session start ends the current resume episode.
	e.clearResumeLocked()

	if err := e.store.SaveEntries(e.entries); err != nil {
		e.log.Warn("failed to persist entries", "error", err)
	}
}

// StopSession ends the running entry with the given reason. No-op when
// nothing is running; idempotent.
func (e *Engine) StopSession(reason models.EndReason) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(reason)
}

func (e *Engine) stopLocked(reason models.EndReason) {
	if e.runningID == "" {
		return
	}

	var stopped *models.TimeEntry
	for i := range e.entries {
		if e.entries[i].ID == e.runningID {
			if e.entries[i].Running() {
				end := e.now()
				e.entries[i].EndAt = &end
				r := reason
				e.entries[i].EndedReason = &r
				stopped = &e.entries[i]
			}
			break
		}
	}

	// Clear the reference even when the entry was missing or already closed,
	// so a stale id cannot wedge the engine.
	e.runningID = ""

	if stopped != nil {
		if err := e.store.SaveEntries(e.entries); err != nil {
			e.log.Warn("failed to persist entries", "error", err)
		}
	} else {
		e.log.Warn("running entry reference was stale, cleared", "reason", reason)
	}

	switch reason {
	case models.EndReasonUser:
		// An explicit stop is deliberate, not a disruption to recover from.
		e.clearResumeLocked()
	case models.EndReasonSystem:
		if stopped != nil {
			e.beginResumeEpisodeLocked(stopped.ProjectID, stopped.Note)
		}
	}
}

// SwitchTask relabels the running session: it stops the current entry with
// reason user and immediately starts a new one on the same project with the
// new note. No-op unless a session is running and the trimmed note is
// non-empty and different from the running entry's note.
func (e *Engine) SwitchTask(newNote string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.switchLocked(newNote)
}

func (e *Engine) switchLocked(newNote string) {
	running := e.runningEntryLocked()
	if running == nil {
		return
	}
	newNote = strings.TrimSpace(newNote)
	if newNote == "" || newNote == running.Note {
		return
	}

	projectID := running.ProjectID
	e.stopLocked(models.EndReasonUser)
	e.startLocked(projectID, newNote)
}

// PrimaryAction is the single user-facing toggle: start when idle, switch
// task when the note draft changed, otherwise stop.
func (e *Engine) PrimaryAction() {
	e.mu.Lock()
	defer e.mu.Unlock()

	running := e.runningEntryLocked()
	if running == nil {
		e.startLocked("", e.currentNote)
		return
	}

	note := strings.TrimSpace(e.currentNote)
	if note != "" && note != running.Note {
		e.switchLocked(note)
		return
	}

	e.stopLocked(models.EndReasonUser)
}

// HandlePause reacts to an OS inactivity signal by auto-stopping the running
// session. The gate may deliver several signals for one real pause; the
// latch plus the no-op-when-idle guard make the stop fire once.
func (e *Engine) HandlePause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pauseLatch {
		return
	}
	e.pauseLatch = true
	e.stopLocked(models.EndReasonSystem)
}

// HandleResume reacts to an OS unlock signal. It never restarts the timer by
// itself; at most it surfaces a prompt the user must accept.
func (e *Engine) HandleResume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pauseLatch = false
	e.maybePromptLocked()
}

// ResumeFromPrompt restarts tracking after the user accepted a resume
// prompt. projectID may be empty; the target resolves to the prompt's
// project, else the selected project, else the last auto-stopped project.
// No-op if a session is already running, if there is no live auto-stop
// episode (a user stop or expiry already cleared it), or if nothing
// resolves.
func (e *Engine) ResumeFromPrompt(projectID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.runningEntryLocked() != nil {
		return
	}
	if e.resume == nil {
		return
	}

	note := e.resume.note
	if projectID == "" {
		projectID = e.selectedProjectID
	}
	if projectID == "" {
		projectID = e.resume.projectID
	}
	if projectID == "" {
		return
	}

	e.selectedProjectID = projectID
	e.startLocked(projectID, note)
}

// runningEntryLocked resolves the cached running id against the log. A
// dangling reference is cleared rather than trusted.
func (e *Engine) runningEntryLocked() *models.TimeEntry {
	if e.runningID == "" {
		return nil
	}
	for i := range e.entries {
		if e.entries[i].ID == e.runningID {
			if e.entries[i].Running() {
				return &e.entries[i]
			}
			break
		}
	}
	e.runningID = ""
	return nil
}

// ProjectName resolves a project id for display, tolerating dangling
// references.
func (e *Engine) ProjectName(projectID string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.projectNameLocked(projectID)
}

func (e *Engine) projectNameLocked(projectID string) string {
	for _, p := range e.projects {
		if p.ID == projectID {
			return p.Name
		}
	}
	return "Unknown"
}

// Snapshot is a point-in-time copy of engine state for read-only consumers.
type Snapshot struct {
	Projects          []models.Project
	Entries           []models.TimeEntry
	SelectedProjectID string
	CurrentNote       string
	RunningEntry      *models.TimeEntry
}

// Snapshot copies the current state so aggregation and rendering never race
// with mutations.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Projects:          append([]models.Project(nil), e.projects...),
		Entries:           append([]models.TimeEntry(nil), e.entries...),
		SelectedProjectID: e.selectedProjectID,
		CurrentNote:       e.currentNote,
	}
	if running := e.runningEntryLocked(); running != nil {
		entry := *running
		snap.RunningEntry = &entry
	}
	return snap
}

// Close cancels any pending retry timer.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearResumeLocked()
}
