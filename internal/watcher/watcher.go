// Package watcher turns fsnotify notifications for one folder into a
// stream of file-created events.
//
// The watch is not recursive. Only Create operations for regular entries
// are emitted; directories created inside the folder are ignored.
package watcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/agentstation/shotwatch/internal/server/events"
	"github.com/agentstation/shotwatch/pkg/constants"
	"github.com/agentstation/shotwatch/pkg/errors"
)

// Options configures a Watcher.
type Options struct {
	// Fs is used to create the folder and stat new entries. Defaults to the OS filesystem.
	Fs afero.Fs

	// Buffer is the capacity of the Events channel.
	Buffer int

	// Filter limits which file names are emitted. Nil emits every file.
	Filter Filter

	Logger *zerolog.Logger
}

// Filter decides whether a created file name is emitted. *matcher.Set
// satisfies it.
type Filter interface {
	Match(name string) bool
}

// Watcher emits one event per file created in its folder.
type Watcher struct {
	folder string
	fs     afero.Fs
	fsw    *fsnotify.Watcher
	filter Filter
	events chan events.FileCreatedEvent
	logger *zerolog.Logger

	done      chan struct{}
	closeOnce sync.Once
	stopped   chan struct{}
}

// Start creates folder if it is missing and begins watching it. The watch
// runs until ctx is cancelled or Close is called; either closes Events.
func Start(ctx context.Context, folder string, opts Options) (*Watcher, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Buffer <= 0 {
		opts.Buffer = constants.EventBufferSize
	}
	if opts.Logger == nil {
		nop := zerolog.Nop()
		opts.Logger = &nop
	}

	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, errors.NewWatchError(folder, "resolve", err)
	}

	if err := opts.Fs.MkdirAll(abs, constants.DirPermissions); err != nil {
		return nil, errors.NewWatchError(abs, "create", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.NewWatchError(abs, "init", err)
	}
	if err := fsw.Add(abs); err != nil {
		_ = fsw.Close()
		return nil, errors.NewWatchError(abs, "watch", err)
	}

	w := &Watcher{
		folder:  abs,
		fs:      opts.Fs,
		fsw:     fsw,
		filter:  opts.Filter,
		events:  make(chan events.FileCreatedEvent, opts.Buffer),
		logger:  opts.Logger,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go w.run(ctx)

	w.logger.Info().Str("folder", abs).Msg("Watching folder")
	return w, nil
}

// Events returns the stream of detected files.
func (w *Watcher) Events() <-chan events.FileCreatedEvent {
	return w.events
}

// Folder returns the absolute watched path.
func (w *Watcher) Folder() string {
	return w.folder
}

// Close stops the watch and waits for the event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
	})
	<-w.stopped
	return err
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.stopped)
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			_ = w.fsw.Close()
			return
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			created, ok := w.accept(ev)
			if !ok {
				continue
			}
			select {
			case w.events <- created:
			case <-ctx.Done():
				_ = w.fsw.Close()
				return
			case <-w.done:
				return
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error().Err(err).Str("folder", w.folder).Msg("Watch error")
		}
	}
}

// accept filters raw notifications down to newly created files.
func (w *Watcher) accept(ev fsnotify.Event) (events.FileCreatedEvent, bool) {
	if !ev.Has(fsnotify.Create) {
		return events.FileCreatedEvent{}, false
	}

	name := filepath.Base(ev.Name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return events.FileCreatedEvent{}, false
	}

	if w.filter != nil && !w.filter.Match(name) {
		w.logger.Debug().Str("file", name).Msg("Ignoring file not matching filter")
		return events.FileCreatedEvent{}, false
	}

	// A stat failure means the entry is already gone; still report it so
	// subscribers see every creation.
	if info, err := w.fs.Stat(ev.Name); err == nil && info.IsDir() {
		w.logger.Debug().Str("path", ev.Name).Msg("Ignoring new directory")
		return events.FileCreatedEvent{}, false
	}

	return events.FileCreatedEvent{
		Name:       name,
		FullPath:   ev.Name,
		DetectedAt: time.Now(),
	}, true
}
