// FILE: lixenwraith/stories/watch.go
package stories

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

// Watch events sent in place of an option path
const (
	EventFileDeleted        = "file_deleted"
	EventPermissionsChanged = "permissions_changed"
	EventReloadTimeout      = "reload_timeout"
	EventReloadErrorPrefix  = "reload_error:"
)

// WatchOptions configures override file watching
type WatchOptions struct {
	// PollInterval for file stat checks (minimum MinPollInterval)
	PollInterval time.Duration

	// Debounce duration to coalesce rapid writes
	Debounce time.Duration

	// MaxWatchers limits concurrent watch channels
	MaxWatchers int

	// ReloadTimeout bounds a single reload
	ReloadTimeout time.Duration

	// VerifyPermissions refuses reloads after group/world permission changes
	VerifyPermissions bool
}

// DefaultWatchOptions returns the default watch options
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:      DefaultPollInterval,
		Debounce:          DefaultDebounce,
		MaxWatchers:       DefaultMaxWatchers,
		ReloadTimeout:     DefaultReloadTimeout,
		VerifyPermissions: true,
	}
}

// watcher polls the override file and republishes the binder on change
type watcher struct {
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	opts             WatchOptions
	filePath         string
	lastModTime      time.Time
	lastSize         int64
	lastMode         os.FileMode
	watching         atomic.Bool
	reloadInProgress atomic.Bool
	subscribers      map[int64]chan string
	subscriberID     atomic.Int64
	debounceTimer    *time.Timer
}

// AutoUpdate reloads the override file whenever it changes
func (b *Binder) AutoUpdate() {
	b.AutoUpdateWithOptions(DefaultWatchOptions())
}

// AutoUpdateWithOptions is AutoUpdate with custom options. Without a loaded
// override file it does nothing.
func (b *Binder) AutoUpdateWithOptions(opts WatchOptions) {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.MaxWatchers <= 0 {
		opts.MaxWatchers = DefaultMaxWatchers
	}
	if opts.ReloadTimeout <= 0 {
		opts.ReloadTimeout = DefaultReloadTimeout
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	filePath := b.configFilePath
	if filePath == "" {
		return
	}

	if b.watcher != nil && b.watcher.filePath != filePath {
		b.watcher.stop()
		b.watcher = nil
	}
	if b.watcher != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &watcher{
		ctx:         ctx,
		cancel:      cancel,
		opts:        opts,
		filePath:    filePath,
		subscribers: make(map[int64]chan string),
	}
	if info, err := os.Stat(filePath); err == nil {
		w.lastModTime = info.ModTime()
		w.lastSize = info.Size()
		w.lastMode = info.Mode()
	}
	b.watcher = w

	// Marked before the goroutine starts so IsWatching is immediately true
	w.watching.Store(true)
	go w.watchLoop(b)

	b.logger.Debug("watching override file", "path", filePath, "interval", opts.PollInterval)
}

// StopAutoUpdate stops watching and closes all watch channels
func (b *Binder) StopAutoUpdate() {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.watcher != nil {
		b.watcher.stop()
		b.watcher = nil
	}
}

// Watch returns a channel receiving the paths of options changed by reloads
func (b *Binder) Watch() <-chan string {
	return b.WatchWithOptions(DefaultWatchOptions())
}

// WatchWithOptions is Watch with custom options. The channel is closed when
// watching stops; without an override file it is returned closed.
func (b *Binder) WatchWithOptions(opts WatchOptions) <-chan string {
	b.AutoUpdateWithOptions(opts)

	b.mutex.RLock()
	w := b.watcher
	b.mutex.RUnlock()

	if w == nil {
		ch := make(chan string)
		close(ch)
		return ch
	}
	return w.subscribe()
}

// WatchFile loads filePath and watches it instead of the current file
func (b *Binder) WatchFile(filePath string, formatHint ...string) error {
	b.mutex.RLock()
	opts := DefaultWatchOptions()
	if b.watcher != nil {
		opts = b.watcher.opts
	}
	b.mutex.RUnlock()

	b.StopAutoUpdate()

	if len(formatHint) > 0 {
		if err := b.SetFileFormat(formatHint[0]); err != nil {
			return fmt.Errorf("invalid format hint: %w", err)
		}
	}

	if err := b.LoadFile(filePath); err != nil {
		return fmt.Errorf("failed to load new file for watching: %w", err)
	}

	b.AutoUpdateWithOptions(opts)
	return nil
}

// IsWatching reports whether auto-update is running
func (b *Binder) IsWatching() bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.watcher != nil && b.watcher.watching.Load()
}

// WatcherCount returns the number of open watch channels
func (b *Binder) WatcherCount() int {
	b.mutex.RLock()
	w := b.watcher
	b.mutex.RUnlock()

	if w == nil {
		return 0
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.subscribers)
}

func (w *watcher) watchLoop(b *Binder) {
	defer w.watching.Store(false)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.checkAndReload(b)
		}
	}
}

// checkAndReload schedules a debounced reload when the file changed
func (w *watcher) checkAndReload(b *Binder) {
	info, err := os.Stat(w.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			w.notify(EventFileDeleted)
		}
		return
	}

	if w.opts.VerifyPermissions && w.lastMode != 0 && (info.Mode()&0077) != (w.lastMode&0077) {
		b.logger.Warn("override file permissions changed, not reloading", "path", w.filePath, "mode", info.Mode())
		w.notify(EventPermissionsChanged)
		return
	}

	if info.ModTime().Equal(w.lastModTime) && info.Size() == w.lastSize {
		return
	}

	w.lastModTime = info.ModTime()
	w.lastSize = info.Size()
	w.lastMode = info.Mode()

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
		w.performReload(b)
	})
	w.mu.Unlock()
}

// performReload reloads the file and notifies each changed option path
func (w *watcher) performReload(b *Binder) {
	if !w.reloadInProgress.CompareAndSwap(false, true) {
		return
	}
	defer w.reloadInProgress.Store(false)

	ctx, cancel := context.WithTimeout(w.ctx, w.opts.ReloadTimeout)
	defer cancel()

	before := b.snapshot()

	done := make(chan error, 1)
	go func() {
		done <- b.loadFile(w.filePath)
	}()

	select {
	case err := <-done:
		if err != nil {
			b.logger.Warn("override file reload failed", "path", w.filePath, "error", err)
			w.notify(EventReloadErrorPrefix + err.Error())
			return
		}

		after := b.snapshot()
		for path, value := range after {
			if old, existed := before[path]; !existed || !reflect.DeepEqual(old, value) {
				w.notify(path)
			}
		}
		for path := range before {
			if _, exists := after[path]; !exists {
				w.notify(path)
			}
		}

	case <-ctx.Done():
		b.logger.Warn("override file reload timed out", "path", w.filePath)
		w.notify(EventReloadTimeout)
	}
}

// subscribe opens a new watch channel
func (w *watcher) subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.subscribers) >= w.opts.MaxWatchers {
		ch := make(chan string)
		close(ch)
		return ch
	}

	ch := make(chan string, 10)
	id := w.subscriberID.Add(1)
	w.subscribers[id] = ch

	go func() {
		<-w.ctx.Done()
		w.mu.Lock()
		delete(w.subscribers, id)
		close(ch)
		w.mu.Unlock()
	}()

	return ch
}

// notify sends event to every subscriber without blocking
func (w *watcher) notify(event string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// stop cancels the watcher and waits briefly for the loop to exit
func (w *watcher) stop() {
	w.cancel()

	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.mu.Unlock()

	deadline := time.Now().Add(ShutdownTimeout)
	for w.watching.Load() && time.Now().Before(deadline) {
		time.Sleep(SpinWaitInterval)
	}
}
