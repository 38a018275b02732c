// Package session wires the driftwatch components together and manages their
// lifecycle: the document store, the classifier, the file system watcher with
// its debouncer, and the monitor loop that connects them.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dshills/driftwatch/internal/classify"
	"github.com/dshills/driftwatch/internal/config"
	"github.com/dshills/driftwatch/internal/document"
	"github.com/dshills/driftwatch/internal/monitor"
	"github.com/dshills/driftwatch/internal/vfs"
	"github.com/dshills/driftwatch/internal/watch"
)

// ResolvePolicy decides what happens to a reported external change.
type ResolvePolicy string

const (
	// ResolveNone leaves the change pending for manual resolution.
	ResolveNone ResolvePolicy = "none"
	// ResolveAccept adopts the on-disk content as the new baseline.
	ResolveAccept ResolvePolicy = "accept"
	// ResolveReject restores the baseline to disk.
	ResolveReject ResolvePolicy = "reject"
)

// ParseResolvePolicy parses a policy name.
func ParseResolvePolicy(s string) (ResolvePolicy, error) {
	switch ResolvePolicy(s) {
	case ResolveNone, ResolveAccept, ResolveReject:
		return ResolvePolicy(s), nil
	}
	return "", fmt.Errorf("invalid resolve policy %q (must be none, accept, or reject)", s)
}

// Options configures a Session.
type Options struct {
	// Config holds the loaded configuration.
	Config config.Config

	// Policy decides how reported changes are resolved.
	Policy ResolvePolicy

	// JSON switches report output from text to JSON lines.
	JSON bool

	// Out receives reports. Defaults to os.Stdout.
	Out io.Writer

	// ErrOut receives per-document errors. Defaults to os.Stderr.
	ErrOut io.Writer

	// FS overrides the file system, used by tests. Defaults to the OS.
	FS vfs.VFS
}

// Session is a running driftwatch instance.
type Session struct {
	cfg    config.Config
	policy ResolvePolicy
	json   bool

	outMu  sync.Mutex
	out    io.Writer
	errOut io.Writer

	fs        vfs.VFS
	store     *document.Store
	cls       *classify.Classifier
	watcher   *watch.Watcher
	debouncer *watch.Debouncer
	mon       *monitor.Monitor
	ignore    *watch.IgnoreSet

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// New creates a Session. Nothing runs until Start.
func New(opts Options) (*Session, error) {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.ErrOut == nil {
		opts.ErrOut = os.Stderr
	}
	if opts.Policy == "" {
		opts.Policy = ResolveNone
	}
	if opts.FS == nil {
		opts.FS = vfs.NewOS()
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		cfg:    opts.Config,
		policy: opts.Policy,
		json:   opts.JSON,
		out:    opts.Out,
		errOut: opts.ErrOut,
		fs:     opts.FS,
		ignore: watch.NewIgnoreSet(opts.Config.Watcher.IgnorePatterns, opts.Config.Watcher.IgnoreHidden),
	}

	s.store = document.NewStore(s.fs, document.WithMaxFileSize(s.cfg.Classifier.MaxFileSize))
	s.cls = classify.New(s.store, s.handleReport,
		classify.WithDebounce(s.cfg.Classifier.Debounce.Duration()),
		classify.WithViewQuery(s.store.Views),
		classify.WithErrorFunc(s.reportError),
	)
	s.mon = monitor.New(s.store, s.cls, monitor.WithErrorFunc(s.reportError))
	s.debouncer = watch.NewDebouncer(s.cfg.Watcher.WriteDelay.Duration())
	s.debouncer.SetOnDrop(func(ev watch.Event) {
		s.reportError(ev.Path, watch.ErrEventOverflow)
	})

	return s, nil
}

// Store exposes the document store for resolution tooling.
func (s *Session) Store() *document.Store {
	return s.store
}

// Classifier exposes the classifier for resolution tooling.
func (s *Session) Classifier() *classify.Classifier {
	return s.cls
}

// Start seeds tracking for every text file under the configured root, arms
// the watcher, and launches the processing goroutines.
func (s *Session) Start(ctx context.Context) error {
	if s.started {
		return fmt.Errorf("session already started")
	}

	root, err := s.fs.Abs(s.cfg.Root)
	if err != nil {
		return fmt.Errorf("resolving root %s: %w", s.cfg.Root, err)
	}
	if !s.fs.IsDir(root) {
		return fmt.Errorf("root %s is not a directory", root)
	}

	if err := s.Seed(root); err != nil {
		return err
	}
	s.cls.Start()

	watcher, err := watch.New(
		watch.WithBufferSize(s.cfg.Watcher.BufferSize),
		watch.WithRenameWindow(s.cfg.Watcher.RenameWindow.Duration()),
		watch.WithIgnorePatterns(s.cfg.Watcher.IgnorePatterns),
		watch.WithIgnoreHidden(s.cfg.Watcher.IgnoreHidden),
	)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	s.watcher = watcher
	if err := s.watcher.AddRecursive(root); err != nil {
		s.watcher.Close()
		return fmt.Errorf("watching %s: %w", root, err)
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.started = true

	// Raw watcher events feed the debouncer; the monitor consumes the
	// coalesced stream on its own goroutine, keeping per-path ordering.
	s.wg.Add(3)
	go func() {
		defer s.wg.Done()
		for ev := range s.watcher.Events() {
			s.debouncer.Feed(ev)
		}
		s.debouncer.Close()
	}()
	go func() {
		defer s.wg.Done()
		s.mon.Run(ctx, s.debouncer.Events())
	}()
	go func() {
		defer s.wg.Done()
		for err := range s.watcher.Errors() {
			s.reportError("", err)
		}
	}()

	return nil
}

// Seed tracks every text file under root, skipping ignored paths. Refused
// files (binary, oversized) are silently left untracked.
func (s *Session) Seed(root string) error {
	return s.fs.Walk(root, func(path string, info vfs.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if info.IsDir() {
			if path != root && s.ignore.Match(path, true) {
				return vfs.SkipDir
			}
			return nil
		}
		if s.ignore.Match(path, false) {
			return nil
		}
		if trackErr := s.store.Track(path); trackErr != nil && !isRefusal(trackErr) {
			s.reportError(path, trackErr)
		}
		return nil
	})
}

// Shutdown stops the watcher and all goroutines, then tears down the
// classifier so no marker timer can fire afterwards.
func (s *Session) Shutdown() {
	if !s.started {
		return
	}
	s.started = false

	s.watcher.Close()
	s.cancel()
	s.wg.Wait()
	s.cls.Teardown()
}

// handleReport renders a report and applies the resolve policy. It runs on
// the monitor goroutine, outside the classifier lock.
func (s *Session) handleReport(rep classify.Report) {
	rendered := s.render(rep)

	s.outMu.Lock()
	fmt.Fprintln(s.out, rendered)
	s.outMu.Unlock()

	switch s.policy {
	case ResolveAccept:
		s.cls.ResolveSnapshot(rep.Path, rep.Content)
	case ResolveReject:
		// Mark first so the restoring write is classified as internal.
		s.cls.MarkInternalEdit(rep.Path)
		if err := s.store.Write(rep.Path, rep.Baseline); err != nil {
			s.reportError(rep.Path, err)
			return
		}
		s.cls.ResolveSnapshot(rep.Path, rep.Baseline)
	}
}

func (s *Session) render(rep classify.Report) string {
	if s.json {
		return renderJSON(rep, s.cfg)
	}
	return renderText(rep, s.cfg)
}

func (s *Session) reportError(path string, err error) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if path == "" {
		fmt.Fprintf(s.errOut, "driftwatch: %v\n", err)
		return
	}
	fmt.Fprintf(s.errOut, "driftwatch: %s: %v\n", path, err)
}

func isRefusal(err error) bool {
	return errors.Is(err, document.ErrIsDirectory) ||
		errors.Is(err, document.ErrBinaryFile) ||
		errors.Is(err, document.ErrTooLarge) ||
		errors.Is(err, document.ErrAlreadyTracked)
}
