// Package bridge is the narrow channel between page-level logic and the
// privileged side that owns the window and the file system dialogs.
//
// Pages never reach the window or the picker directly; they hold a Bridge.
package bridge

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/koustreak/tablescope/internal/errs"
	"github.com/koustreak/tablescope/internal/logger"
)

// Bridge is everything a page may ask of the privileged side.
type Bridge interface {
	// Notify sends a one-way diagnostic message. It never fails.
	Notify(message string)

	// Navigate asks the window to load pagePath. Failures are logged by the
	// privileged side and never reported back.
	Navigate(pagePath string)

	// PickFile opens a file picker. ok is false with a nil error when the
	// user dismissed it. Returned paths are absolute.
	PickFile(ctx context.Context) (path string, ok bool, err error)
}

// Window loads pages. Implemented by the terminal UI.
type Window interface {
	Load(pagePath string) error
}

// Picker presents a file choice to the user. An empty path means cancel.
type Picker interface {
	Pick(ctx context.Context, filter FileFilter) (string, error)
}

// FileFilter restricts which files a picker offers.
type FileFilter struct {
	Name       string
	Extensions []string // with leading dot, e.g. ".csv"
}

// Allows reports whether path carries one of the filter's extensions.
// The comparison ignores case. An empty filter allows everything.
func (f FileFilter) Allows(path string) bool {
	if len(f.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range f.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// CSVFilter offers CSV files only.
var CSVFilter = FileFilter{Name: "csv", Extensions: []string{".csv"}}

// Shell is the Bridge implementation used by both the terminal UI and the CLI.
type Shell struct {
	log    *logger.Logger
	filter FileFilter
	sem    *semaphore.Weighted

	mu     sync.RWMutex
	window Window
	picker Picker
	notify func(string)
}

var _ Bridge = (*Shell)(nil)

// NewShell creates a shell that opens picker restricted to filter.
func NewShell(log *logger.Logger, picker Picker, filter FileFilter) *Shell {
	if log == nil {
		log = logger.Nop()
	}
	return &Shell{
		log:    log.Named("bridge"),
		filter: filter,
		sem:    semaphore.NewWeighted(1),
		picker: picker,
	}
}

// Attach sets the window Navigate loads pages into.
func (s *Shell) Attach(w Window) {
	s.mu.Lock()
	s.window = w
	s.mu.Unlock()
}

// Detach drops the window. Later Navigate calls are logged and dropped.
func (s *Shell) Detach() {
	s.Attach(nil)
}

// SetPicker replaces the picker used by PickFile.
func (s *Shell) SetPicker(p Picker) {
	s.mu.Lock()
	s.picker = p
	s.mu.Unlock()
}

// OnNotify registers fn to receive every Notify message after it is logged.
func (s *Shell) OnNotify(fn func(string)) {
	s.mu.Lock()
	s.notify = fn
	s.mu.Unlock()
}

// Filter returns the file filter handed to the picker.
func (s *Shell) Filter() FileFilter {
	return s.filter
}

func (s *Shell) Notify(message string) {
	s.log.With().Str("message", message).Logger().Info("notify")

	s.mu.RLock()
	fn := s.notify
	s.mu.RUnlock()
	if fn != nil {
		fn(message)
	}
}

func (s *Shell) Navigate(pagePath string) {
	s.mu.RLock()
	w := s.window
	s.mu.RUnlock()

	log := s.log.With().Str("page", pagePath).Logger()
	if w == nil {
		log.Warn("navigate dropped: window not found")
		return
	}
	if err := w.Load(pagePath); err != nil {
		log.ErrorWith("failed to load page", err, nil)
		return
	}
	log.Info("loading new page")
}

func (s *Shell) PickFile(ctx context.Context) (string, bool, error) {
	if !s.sem.TryAcquire(1) {
		return "", false, errs.New(errs.ErrKindBusy, "a file picker is already open")
	}
	defer s.sem.Release(1)

	s.mu.RLock()
	p := s.picker
	s.mu.RUnlock()
	if p == nil {
		return "", false, errs.New(errs.ErrKindInvalidInput, "no file picker configured")
	}

	path, err := p.Pick(ctx, s.filter)
	switch {
	case err == nil:
	case errs.IsCancelled(err), errors.Is(err, context.Canceled):
		return "", false, nil
	default:
		return "", false, err
	}
	if path == "" {
		return "", false, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, errs.Wrap(errs.ErrKindInvalidInput, "failed to resolve picked path", err)
	}
	s.log.With().Str("path", abs).Logger().Debug("file picked")
	return abs, true, nil
}

// StaticPicker always picks the same path. An empty StaticPicker cancels.
type StaticPicker string

func (p StaticPicker) Pick(context.Context, FileFilter) (string, error) {
	return string(p), nil
}

// PickerFunc adapts a function to the Picker interface.
type PickerFunc func(ctx context.Context, filter FileFilter) (string, error)

func (f PickerFunc) Pick(ctx context.Context, filter FileFilter) (string, error) {
	return f(ctx, filter)
}
