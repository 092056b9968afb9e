package sim

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// watcher reloads a fixture file after it settles. The parent directory is
// watched so editors that save by rename are picked up.
type watcher struct {
	fs       *fsnotify.Watcher
	path     string
	debounce time.Duration
	log      zerolog.Logger
	fixtures chan *Fixture
	stopCh   chan struct{}
	done     chan struct{}
}

func newWatcher(path string, debounce time.Duration, log zerolog.Logger) (*watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, err
	}
	w := &watcher{
		fs:       fs,
		path:     abs,
		debounce: debounce,
		log:      log,
		fixtures: make(chan *Fixture, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	log.Debug().Str("path", abs).Msg("watching fixture")
	go w.loop()
	return w, nil
}

func (w *watcher) loop() {
	defer close(w.done)
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			f, err := LoadFixture(w.path)
			if err != nil {
				w.log.Warn().Err(err).Msg("fixture reload failed, keeping previous screen")
				continue
			}
			// Drop an unconsumed older reload in favour of this one.
			select {
			case <-w.fixtures:
			default:
			}
			w.fixtures <- f

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("fixture watcher error")
		}
	}
}

func (w *watcher) Close() {
	close(w.stopCh)
	w.fs.Close()
	<-w.done
}
