package bnk

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/hansbonini/bnktools/pkg/common"
)

// ErrClosed is returned by every Editor operation after Close.
var ErrClosed = errors.New("editor is closed")

// EventKind identifies a state change of an Editor.
type EventKind int

const (
	EventModified EventKind = iota
	EventUndo
	EventRedo
	EventNamesAssigned
	EventSaved
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventModified:
		return "modified"
	case EventUndo:
		return "undo"
	case EventRedo:
		return "redo"
	case EventNamesAssigned:
		return "names-assigned"
	case EventSaved:
		return "saved"
	case EventClosed:
		return "closed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is delivered to subscribers after a state change. ModifiedCount is
// the number of modified assets once the change has been applied.
type Event struct {
	Kind          EventKind
	AssetID       uint32
	Path          string
	ModifiedCount int
}

// EditorOptions configures an Editor.
type EditorOptions struct {
	// HistoryLimit bounds the undo history. Zero keeps everything.
	HistoryLimit int
	// Backup keeps a compressed copy of a bank before it is overwritten.
	Backup bool
	// Workers bounds concurrent per-asset work. Zero means one per CPU.
	Workers int
	// Codec converts payloads for extraction and import. Nil selects
	// PassthroughCodec.
	Codec AudioCodec
}

// Editor is an editing session over one bank. All mutations are
// serialized; subscribers are called outside the session lock.
type Editor struct {
	mu        sync.Mutex
	container *Container
	history   *CommandStack
	path      string
	opts      EditorOptions
	closed    bool

	listenersMu sync.Mutex
	listeners   []func(Event)
}

// Open loads the bank at path into a new editing session.
func Open(ctx context.Context, path string, opts EditorOptions) (*Editor, error) {
	c, err := OpenFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return NewEditor(c, path, opts), nil
}

// NewEditor starts a session over an already loaded container. path is
// where Save writes to.
func NewEditor(c *Container, path string, opts EditorOptions) *Editor {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Codec == nil {
		opts.Codec = PassthroughCodec{}
	}
	return &Editor{
		container: c,
		history:   NewCommandStack(opts.HistoryLimit),
		path:      path,
		opts:      opts,
	}
}

// Subscribe registers fn for every subsequent event.
func (e *Editor) Subscribe(fn func(Event)) {
	e.listenersMu.Lock()
	defer e.listenersMu.Unlock()
	e.listeners = append(e.listeners, fn)
}

func (e *Editor) notify(events ...Event) {
	e.listenersMu.Lock()
	listeners := append([]func(Event){}, e.listeners...)
	e.listenersMu.Unlock()

	for _, ev := range events {
		for _, fn := range listeners {
			fn(ev)
		}
	}
}

// Container returns the edited bank.
func (e *Editor) Container() *Container {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.container
}

// Library returns the edited asset library.
func (e *Editor) Library() *AssetLibrary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.container.Library
}

// snapshot copies the library for batch work that runs without the
// session lock.
func (e *Editor) snapshot() (*AssetLibrary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}
	return e.container.Library.snapshot(), nil
}

// Path returns the path Save writes to.
func (e *Editor) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

// Dirty reports whether any asset differs from the last saved state.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.container.Library.ModifiedCount() > 0
}

func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanUndo()
}

func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.history.CanRedo()
}

// Replace swaps the payload of asset id. format tags the payload source and
// defaults to the asset's current format.
func (e *Editor) Replace(id uint32, data []byte, format string) error {
	e.mu.Lock()
	events, err := e.replaceLocked([]Replacement{{AssetID: id, Data: data, Format: format}})
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notify(events...)
	return nil
}

// ReplaceAll applies every replacement as its own undoable command. All
// ids are checked first; nothing is changed if one is missing.
func (e *Editor) ReplaceAll(replacements []Replacement) error {
	e.mu.Lock()
	events, err := e.replaceLocked(replacements)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notify(events...)
	return nil
}

func (e *Editor) replaceLocked(replacements []Replacement) ([]Event, error) {
	if e.closed {
		return nil, ErrClosed
	}
	lib := e.container.Library
	targets := make([]*Asset, len(replacements))
	for i, r := range replacements {
		a, ok := lib.Get(r.AssetID)
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, r.AssetID)
		}
		targets[i] = a
	}

	events := make([]Event, 0, len(replacements))
	for i, r := range replacements {
		a := targets[i]
		before := len(a.Data)
		e.history.Execute(NewReplaceCommand(a, r.Data, r.Format))
		common.LogInfo(common.InfoAssetReplaced, a.ID, before, len(a.Data))
		events = append(events, Event{
			Kind:          EventModified,
			AssetID:       a.ID,
			Path:          e.path,
			ModifiedCount: lib.ModifiedCount(),
		})
	}
	return events, nil
}

// Undo reverts the most recent replacement. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	return e.step(EventUndo)
}

// Redo re-applies the most recently undone replacement.
func (e *Editor) Redo() bool {
	return e.step(EventRedo)
}

func (e *Editor) step(kind EventKind) bool {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return false
	}
	var ok bool
	if kind == EventUndo {
		ok = e.history.Undo()
	} else {
		ok = e.history.Redo()
	}
	ev := Event{Kind: kind, Path: e.path, ModifiedCount: e.container.Library.ModifiedCount()}
	e.mu.Unlock()

	if ok {
		e.notify(ev)
	}
	return ok
}

// AssignNames sets display names from the text index at path. The index
// is matched against a copy of the library without holding the session
// lock, so progress observers may call back into the editor. The outcome,
// including names cleared by a failed run, is then copied back.
func (e *Editor) AssignNames(ctx context.Context, path string, progress ProgressFunc) (int, error) {
	snap, err := e.snapshot()
	if err != nil {
		return 0, err
	}
	n, assignErr := AssignNames(ctx, snap.Assets(), path, progress)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return 0, ErrClosed
	}
	lib := e.container.Library
	for i, a := range snap.Assets() {
		lib.At(i).Name = a.Name
	}
	ev := Event{Kind: EventNamesAssigned, Path: e.path, ModifiedCount: lib.ModifiedCount()}
	total := lib.Len()
	e.mu.Unlock()

	if assignErr != nil {
		return 0, assignErr
	}
	common.LogInfo(common.InfoNamesAssigned, n, total)
	e.notify(ev)
	return n, nil
}

// ExtractAll writes every asset into dir. Workers and the codec come from
// the session options. The assets are copied first and written without
// holding the session lock.
func (e *Editor) ExtractAll(ctx context.Context, dir string, opts BatchOptions) ([]string, error) {
	snap, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = e.opts.Workers
	}
	return ExtractAll(ctx, snap.Assets(), dir, e.opts.Codec, opts)
}

// Import loads replacements from dir and applies them. Nothing is applied
// unless every file converts. Files are converted without holding the
// session lock; the ids are checked again when the result is applied.
func (e *Editor) Import(ctx context.Context, dir string, opts BatchOptions) (int, error) {
	snap, err := e.snapshot()
	if err != nil {
		return 0, err
	}
	if opts.Workers <= 0 {
		opts.Workers = e.opts.Workers
	}
	replacements, err := LoadReplacements(ctx, snap, dir, e.opts.Codec, opts)
	if err != nil {
		return 0, err
	}
	if err := checkCanceled(ctx); err != nil {
		return 0, err
	}

	e.mu.Lock()
	events, err := e.replaceLocked(replacements)
	e.mu.Unlock()
	if err != nil {
		return 0, err
	}
	e.notify(events...)
	return len(replacements), nil
}

// Save writes the bank back to its path.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	ev, err := e.saveLocked(ctx, e.path)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notify(ev)
	return nil
}

// SaveAs rebuilds the bank in memory and then replaces path atomically.
// On failure or cancellation path is untouched and the session keeps its
// modified state. On success path becomes the session path.
func (e *Editor) SaveAs(ctx context.Context, path string) error {
	e.mu.Lock()
	ev, err := e.saveLocked(ctx, path)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notify(ev)
	return nil
}

func (e *Editor) saveLocked(ctx context.Context, path string) (Event, error) {
	if e.closed {
		return Event{}, ErrClosed
	}
	if err := checkCanceled(ctx); err != nil {
		return Event{}, err
	}
	data, err := Rebuild(e.container)
	if err != nil {
		return Event{}, common.FormatError(common.ErrFailedToRebuildBank, err)
	}
	if err := checkCanceled(ctx); err != nil {
		return Event{}, err
	}

	if e.opts.Backup {
		if _, err := WriteBackup(path); err != nil {
			return Event{}, err
		}
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := writeFileAtomic(path, data, perm); err != nil {
		return Event{}, err
	}

	e.container.Library.markSaved()
	e.history.Clear()
	e.path = path
	common.LogInfo(common.InfoBankSaved, path, len(data))
	return Event{Kind: EventSaved, Path: path}, nil
}

// Close ends the session and releases the model. Unsaved changes are
// discarded.
func (e *Editor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	if n := e.container.Library.ModifiedCount(); n > 0 {
		common.LogWarn(common.WarnUnsavedChanges, n)
	}
	e.closed = true
	e.history.Clear()
	err := e.container.Close()
	ev := Event{Kind: EventClosed, Path: e.path}
	e.mu.Unlock()

	e.notify(ev)
	return err
}
