package monitor

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/dshills/driftwatch/internal/document"
	"github.com/dshills/driftwatch/internal/vfs"
	"github.com/dshills/driftwatch/internal/watch"
)

// recordingClassifier records the calls it receives.
type recordingClassifier struct {
	calls []string
}

func (r *recordingClassifier) OnCreate(path, content string) {
	r.calls = append(r.calls, "create "+path+" "+content)
}

func (r *recordingClassifier) OnModify(path, content string) {
	r.calls = append(r.calls, "modify "+path+" "+content)
}

func (r *recordingClassifier) OnDelete(path string) {
	r.calls = append(r.calls, "delete "+path)
}

func (r *recordingClassifier) OnRename(oldPath, newPath string) {
	r.calls = append(r.calls, "rename "+oldPath+" "+newPath)
}

func newTestMonitor(t *testing.T) (*Monitor, *document.Store, *vfs.Memory, *recordingClassifier) {
	t.Helper()
	m := vfs.NewMemory()
	store := document.NewStore(m)
	cls := &recordingClassifier{}
	return New(store, cls), store, m, cls
}

func TestHandleCreate(t *testing.T) {
	mon, store, m, cls := newTestMonitor(t)
	if err := m.WriteFile("/a.txt", []byte("hello"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	mon.Handle(watch.Event{Path: "/a.txt", Op: watch.OpCreate})

	if !store.IsTracked("/a.txt") {
		t.Error("created file should be tracked")
	}
	want := []string{"create /a.txt hello"}
	if !reflect.DeepEqual(cls.calls, want) {
		t.Errorf("calls = %v, want %v", cls.calls, want)
	}
}

func TestHandleCreateBinarySkipped(t *testing.T) {
	mon, store, m, cls := newTestMonitor(t)
	var errs []error
	mon.onError = func(path string, err error) { errs = append(errs, err) }
	if err := m.WriteFile("/bin.dat", []byte{0x00, 0x01}, 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	mon.Handle(watch.Event{Path: "/bin.dat", Op: watch.OpCreate})

	if store.IsTracked("/bin.dat") {
		t.Error("binary file should not be tracked")
	}
	if len(cls.calls) != 0 {
		t.Errorf("calls = %v, want none", cls.calls)
	}
	if len(errs) != 0 {
		t.Errorf("refusals should be silent, got %v", errs)
	}
}

func TestHandleCreateOnTrackedPathIsModify(t *testing.T) {
	mon, _, m, cls := newTestMonitor(t)
	if err := m.WriteFile("/a.txt", []byte("v1"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	mon.Handle(watch.Event{Path: "/a.txt", Op: watch.OpCreate})

	if err := m.WriteFile("/a.txt", []byte("v2"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	mon.Handle(watch.Event{Path: "/a.txt", Op: watch.OpCreate})

	want := []string{"create /a.txt v1", "modify /a.txt v2"}
	if !reflect.DeepEqual(cls.calls, want) {
		t.Errorf("calls = %v, want %v", cls.calls, want)
	}
}

func TestHandleWrite(t *testing.T) {
	mon, store, m, cls := newTestMonitor(t)
	if err := m.WriteFile("/a.txt", []byte("v1"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := store.Track("/a.txt"); err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	if err := m.WriteFile("/a.txt", []byte("v2"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	mon.Handle(watch.Event{Path: "/a.txt", Op: watch.OpWrite})

	// Writes to untracked paths are ignored.
	if err := m.WriteFile("/other.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	mon.Handle(watch.Event{Path: "/other.txt", Op: watch.OpWrite})

	want := []string{"modify /a.txt v2"}
	if !reflect.DeepEqual(cls.calls, want) {
		t.Errorf("calls = %v, want %v", cls.calls, want)
	}
}

func TestHandleRemove(t *testing.T) {
	mon, store, m, cls := newTestMonitor(t)
	if err := m.WriteFile("/a.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := store.Track("/a.txt"); err != nil {
		t.Fatalf("Track failed: %v", err)
	}

	mon.Handle(watch.Event{Path: "/a.txt", Op: watch.OpRemove})
	mon.Handle(watch.Event{Path: "/unknown.txt", Op: watch.OpRemove})

	if store.IsTracked("/a.txt") {
		t.Error("removed file should be untracked")
	}
	want := []string{"delete /a.txt"}
	if !reflect.DeepEqual(cls.calls, want) {
		t.Errorf("calls = %v, want %v", cls.calls, want)
	}
}

func TestHandleRename(t *testing.T) {
	mon, store, m, cls := newTestMonitor(t)
	if err := m.WriteFile("/old.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := store.Track("/old.txt"); err != nil {
		t.Fatalf("Track failed: %v", err)
	}
	if err := m.Rename("/old.txt", "/new.txt"); err != nil {
		t.Fatalf("vfs rename failed: %v", err)
	}

	mon.Handle(watch.Event{Path: "/new.txt", OldPath: "/old.txt", Op: watch.OpRename})

	if store.IsTracked("/old.txt") || !store.IsTracked("/new.txt") {
		t.Error("rename should move tracking to the new path")
	}
	want := []string{"rename /old.txt /new.txt"}
	if !reflect.DeepEqual(cls.calls, want) {
		t.Errorf("calls = %v, want %v", cls.calls, want)
	}
}

func TestHandleRenameUntrackedBecomesCreate(t *testing.T) {
	mon, store, m, cls := newTestMonitor(t)
	if err := m.WriteFile("/new.txt", []byte("fresh"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	mon.Handle(watch.Event{Path: "/new.txt", OldPath: "/elsewhere.txt", Op: watch.OpRename})

	if !store.IsTracked("/new.txt") {
		t.Error("renamed-in file should be tracked")
	}
	want := []string{"create /new.txt fresh"}
	if !reflect.DeepEqual(cls.calls, want) {
		t.Errorf("calls = %v, want %v", cls.calls, want)
	}
}

func TestRunDrainsUntilClose(t *testing.T) {
	mon, _, m, cls := newTestMonitor(t)
	if err := m.WriteFile("/a.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	events := make(chan watch.Event, 2)
	events <- watch.Event{Path: "/a.txt", Op: watch.OpCreate}
	close(events)

	done := make(chan struct{})
	go func() {
		mon.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after channel close")
	}
	if len(cls.calls) != 1 {
		t.Errorf("calls = %v, want one create", cls.calls)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	mon, _, _, _ := newTestMonitor(t)
	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan watch.Event)

	done := make(chan struct{})
	go func() {
		mon.Run(ctx, events)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
