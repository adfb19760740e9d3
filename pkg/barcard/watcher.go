package barcard

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultWatchDebounce is the default debounce interval for file watch events.
const DefaultWatchDebounce = 500 * time.Millisecond

// configWatcher reloads a card file when it changes on disk.
type configWatcher struct {
	watcher  *fsnotify.Watcher
	absPath  string
	baseName string
	debounce time.Duration
	onChange func() error
	onError  func(error)

	stopCh    chan struct{}
	stoppedCh chan struct{}
	stopOnce  sync.Once
}

// newConfigWatcher watches the directory holding filePath, so editors that
// save by renaming a temporary file are still seen.
func newConfigWatcher(filePath string, debounce time.Duration, onChange func() error, onError func(error)) (*configWatcher, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	cw := &configWatcher{
		watcher:   watcher,
		absPath:   absPath,
		baseName:  filepath.Base(absPath),
		debounce:  debounce,
		onChange:  onChange,
		onError:   onError,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	go cw.loop()
	return cw, nil
}

// Stop ends the watch loop and waits for it to exit. Safe to call twice.
func (cw *configWatcher) Stop() {
	cw.stopOnce.Do(func() { close(cw.stopCh) })
	<-cw.stoppedCh
}

// relevant reports whether ev changes the watched file's content.
func (cw *configWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	if filepath.Base(ev.Name) != cw.baseName {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	return err != nil || abs == cw.absPath
}

func (cw *configWatcher) loop() {
	defer close(cw.stoppedCh)
	defer cw.watcher.Close()

	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-cw.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.relevant(ev) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(cw.debounce)
			fire = timer.C

		case <-fire:
			timer, fire = nil, nil
			if cw.onChange == nil {
				continue
			}
			if err := cw.onChange(); err != nil && cw.onError != nil {
				cw.onError(err)
			}

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			if cw.onError != nil {
				cw.onError(err)
			}
		}
	}
}
