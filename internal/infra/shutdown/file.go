package shutdown

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// DefaultShutdownFileEnv is the environment variable naming the shutdown file.
// The hosting platform creates that file to ask the job to stop.
const DefaultShutdownFileEnv = "WEBJOBS_SHUTDOWN_FILE"

// FileSignal fires when the shutdown file is created or written.
type FileSignal struct {
	path   string
	logger *slog.Logger

	ctx  context.Context
	trig atomic.Pointer[trigger]

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

// NewFileSignal starts watching for the shutdown file.
//
// It never fails: a missing path or an unwatchable directory leaves the
// signal inert.
func NewFileSignal(opts ...Option) *FileSignal {
	o := newOptions(opts)
	s := &FileSignal{
		path:   o.path,
		logger: o.logger,
		ctx:    context.Background(),
		done:   make(chan struct{}),
	}

	if s.path == "" && o.envVar != "" {
		s.path = os.Getenv(o.envVar)
	}
	if s.path == "" {
		s.logger.Debug("shutdown file not configured, signal disabled", "env", o.envVar)
		return s
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		s.logger.Debug("cannot create shutdown file watcher, signal disabled", "error", err)
		return s
	}

	// Watch the directory, not the file: the file does not exist yet.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		s.logger.Debug("cannot watch shutdown file directory, signal disabled",
			"path", dir,
			"error", err,
		)
		return s
	}

	t := newTrigger()
	t.onFire(func() {
		s.logger.Info("shutdown file detected", "file", s.path)
	})
	s.ctx = t.ctx
	s.trig.Store(t)
	s.watcher = w

	s.wg.Add(1)
	go s.loop(strings.ToLower(filepath.Base(s.path)))

	s.logger.Debug("watching for shutdown file",
		"path", dir,
		"file", filepath.Base(s.path),
	)
	return s
}

// Path returns the configured shutdown file path, or "" if none.
func (s *FileSignal) Path() string {
	return s.path
}

// Armed reports whether the signal is watching for the shutdown file.
func (s *FileSignal) Armed() bool {
	return s.watcher != nil
}

// Context returns the token cancelled when the shutdown file appears.
func (s *FileSignal) Context() context.Context {
	return s.ctx
}

// OnFire registers fn to run on the watcher goroutine when the file appears.
func (s *FileSignal) OnFire(fn func()) {
	if t := s.trig.Load(); t != nil {
		t.onFire(fn)
	}
}

// Close stops watching. It waits for the event loop to exit.
func (s *FileSignal) Close() error {
	var err error
	s.once.Do(func() {
		// Drop the trigger first so an event racing with Close sees nil.
		s.trig.Swap(nil)
		if s.watcher == nil {
			return
		}
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}

func (s *FileSignal) loop(name string) {
	defer s.wg.Done()

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !strings.Contains(strings.ToLower(event.Name), name) {
				continue
			}
			s.logger.Debug("shutdown file event",
				"file", event.Name,
				"op", event.Op.String(),
			)
			s.fire()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("shutdown file watcher error", "error", err)
		case <-s.done:
			return
		}
	}
}

// fire is a no-op once Close has dropped the trigger.
func (s *FileSignal) fire() {
	if t := s.trig.Load(); t != nil {
		t.fire(SourceSignalFile)
	}
}
