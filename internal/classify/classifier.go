package classify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultDebounce is the default lifetime of an internal-edit marker.
const DefaultDebounce = 2 * time.Second

// Report describes one detected external change. Baseline is the frozen
// snapshot the change is diffed against; while the path stays pending,
// subsequent reports carry the same baseline with newer content and
// Accumulated set.
type Report struct {
	ID          uuid.UUID
	Path        string
	Baseline    string
	Content     string
	Accumulated bool
	Time        time.Time
}

// Source supplies the tracked documents and their current content.
// Read failures are scoped to one document and never abort the session.
type Source interface {
	List() []string
	Read(path string) (string, error)
}

// ViewQuery returns the contents currently displayed for a document, used as
// a second-chance internal check for saves that land after the marker
// expired (paste, undo).
type ViewQuery func(path string) []string

// ReportFunc receives external-change reports. It is called outside the
// classifier's lock and may call back into the classifier.
type ReportFunc func(Report)

// ErrorFunc receives per-document failures, such as a read error while
// seeding snapshots.
type ErrorFunc func(path string, err error)

// Option configures a Classifier.
type Option func(*Classifier)

// WithDebounce sets the internal-edit marker lifetime.
func WithDebounce(d time.Duration) Option {
	return func(c *Classifier) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithViewQuery sets the live-view query used by the second-chance internal
// check. Without one, the check is skipped and classification proceeds to
// the external case.
func WithViewQuery(q ViewQuery) Option {
	return func(c *Classifier) {
		c.views = q
	}
}

// WithErrorFunc sets the handler for per-document failures.
func WithErrorFunc(f ErrorFunc) Option {
	return func(c *Classifier) {
		c.onError = f
	}
}

// marker is a live internal-edit marker. The path field is kept current
// under the classifier lock so expiry survives renames.
type marker struct {
	path  string
	timer *time.Timer
}

// Classifier tracks snapshots and classifies modifications.
// All methods are safe for concurrent use, but callers must deliver
// notifications for a single path in order (see OnModify).
type Classifier struct {
	mu       sync.Mutex
	source   Source
	report   ReportFunc
	views    ViewQuery
	onError  ErrorFunc
	debounce time.Duration

	snapshots map[string]string
	markers   map[string]*marker
	pending   map[string]bool
	closed    bool
}

// New creates a Classifier over the given document source. Reports are
// delivered through report, which may be nil for callers that only query
// state.
func New(source Source, report ReportFunc, opts ...Option) *Classifier {
	c := &Classifier{
		source:    source,
		report:    report,
		debounce:  DefaultDebounce,
		snapshots: make(map[string]string),
		markers:   make(map[string]*marker),
		pending:   make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start seeds a snapshot for every tracked document. A read failure is
// reported through the error handler and skips only that document.
func (c *Classifier) Start() {
	for _, path := range c.source.List() {
		content, err := c.source.Read(path)
		if err != nil {
			if c.onError != nil {
				c.onError(path, err)
			}
			continue
		}
		c.mu.Lock()
		if !c.closed {
			c.snapshots[path] = content
		}
		c.mu.Unlock()
	}
}

// OnModify classifies a content-modification notification.
//
// Callers must serialize OnModify calls for a single path in delivery order;
// calls for different paths have no ordering requirement.
func (c *Classifier) OnModify(path, content string) {
	rep, ok := c.classify(path, content)
	if !ok {
		return
	}
	if c.report != nil {
		c.report(rep)
	}
}

// classify applies the decision steps under the lock and stages a report
// for delivery outside of it.
func (c *Classifier) classify(path, content string) (Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Report{}, false
	}

	// First observation, or a no-op write: absorb.
	snap, tracked := c.snapshots[path]
	if !tracked || snap == content {
		c.snapshots[path] = content
		return Report{}, false
	}

	// Already pending: accumulate against the frozen baseline.
	if c.pending[path] {
		return c.newReport(path, snap, content, true), true
	}

	// Live internal-edit marker: the editor announced this write.
	if _, armed := c.markers[path]; armed {
		c.snapshots[path] = content
		return Report{}, false
	}

	// Second chance: a view already shows exactly this content, so the
	// save came from the editor after the marker expired.
	if c.views != nil {
		for _, view := range c.views(path) {
			if view == content {
				c.snapshots[path] = content
				return Report{}, false
			}
		}
	}

	// External. Freeze the snapshot at the baseline; it only moves
	// forward again through ResolveSnapshot.
	c.pending[path] = true
	return c.newReport(path, snap, content, false), true
}

func (c *Classifier) newReport(path, baseline, content string, accumulated bool) Report {
	return Report{
		ID:          uuid.New(),
		Path:        path,
		Baseline:    baseline,
		Content:     content,
		Accumulated: accumulated,
		Time:        time.Now(),
	}
}

// OnCreate records the content of a newly created document.
func (c *Classifier) OnCreate(path, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.snapshots[path] = content
}

// OnDelete drops the snapshot and marker for a deleted document.
// Pending membership is intentionally left in place: a pending diff still
// needs an explicit resolution even when the file is gone, and a recreate at
// the same path resumes accumulation against the old baseline until then.
func (c *Classifier) OnDelete(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	delete(c.snapshots, path)
	if m, ok := c.markers[path]; ok {
		m.timer.Stop()
		delete(c.markers, path)
	}
}

// OnRename moves the snapshot and marker to the new path. Renaming an
// unknown path is a no-op. Pending membership is not migrated; a diff that
// was pending under the old path stays keyed there until resolved.
func (c *Classifier) OnRename(oldPath, newPath string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if snap, ok := c.snapshots[oldPath]; ok {
		delete(c.snapshots, oldPath)
		c.snapshots[newPath] = snap
	}
	if m, ok := c.markers[oldPath]; ok {
		delete(c.markers, oldPath)
		m.path = newPath
		c.markers[newPath] = m
	}
}

// MarkInternalEdit arms (or re-arms) the internal-edit marker for a path.
// Any prior marker is cancelled first; the new marker self-expires after the
// configured debounce duration.
func (c *Classifier) MarkInternalEdit(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if prev, ok := c.markers[path]; ok {
		prev.timer.Stop()
	}
	m := &marker{path: path}
	m.timer = time.AfterFunc(c.debounce, func() { c.expire(m) })
	c.markers[path] = m
}

// expire removes a marker when its timer fires. Identity is compared so a
// stale timer that lost a re-arm race can never cancel the newer marker.
func (c *Classifier) expire(m *marker) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.markers[m.path] == m {
		delete(c.markers, m.path)
	}
}

// ResolveSnapshot installs the resolved content as the new baseline and
// clears the pending flag. The resolution flow must call this after an
// accept or reject decision.
func (c *Classifier) ResolveSnapshot(path, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.snapshots[path] = content
	delete(c.pending, path)
}

// Snapshot returns the current baseline for a path.
func (c *Classifier) Snapshot(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snapshots[path]
	return snap, ok
}

// Pending reports whether a path has an unresolved external diff.
func (c *Classifier) Pending(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[path]
}

// PendingPaths returns all paths with unresolved external diffs.
func (c *Classifier) PendingPaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	paths := make([]string, 0, len(c.pending))
	for path := range c.pending {
		paths = append(paths, path)
	}
	return paths
}

// Teardown cancels every outstanding marker and clears all state. No marker
// can fire after Teardown returns, and all later calls are no-ops.
func (c *Classifier) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, m := range c.markers {
		m.timer.Stop()
	}
	c.snapshots = make(map[string]string)
	c.markers = make(map[string]*marker)
	c.pending = make(map[string]bool)
	c.closed = true
}
