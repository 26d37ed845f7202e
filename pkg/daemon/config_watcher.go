package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/grovetools/linkpicker/logging"
)

// DefaultDebounce is how long the watcher waits after the last change to a
// config file before reporting it.
const DefaultDebounce = 200 * time.Millisecond

// configFiles are the names the watcher reacts to.
var configFiles = map[string]bool{
	"linkpicker.yml":  true,
	"linkpicker.yaml": true,
	"linkpicker.toml": true,
}

// ConfigWatcher reports edits of linkpicker.yml (or .yaml, .toml) in the
// config directory. A burst of events for one save is reported once, after
// the debounce interval. Config files that are symlinks, as dotfile
// managers create them, are followed to their target directory.
type ConfigWatcher struct {
	watcher   *fsnotify.Watcher
	debounce  time.Duration
	logger    *logrus.Entry
	onReload  func(file string)
	configDir string
	// links maps a resolved symlink target to the link name in configDir.
	links map[string]string

	mu      sync.Mutex
	timer   *time.Timer
	pending string
}

// NewConfigWatcher watches configDir, creating it if needed. onReload gets
// the path of the config file that changed, as seen in configDir.
func NewConfigWatcher(configDir string, debounce time.Duration, onReload func(string)) (*ConfigWatcher, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(configDir); err != nil {
		fw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &ConfigWatcher{
		watcher:   fw,
		debounce:  debounce,
		logger:    logging.NewLogger("config-watcher"),
		onReload:  onReload,
		configDir: configDir,
		links:     make(map[string]string),
	}
	w.followLinks()
	return w, nil
}

// followLinks adds the directories of symlinked config files to the watch
// list, since fsnotify reports events on the link target only.
func (w *ConfigWatcher) followLinks() {
	entries, err := os.ReadDir(w.configDir)
	if err != nil {
		return
	}
	watched := map[string]bool{w.configDir: true}
	for _, entry := range entries {
		if !configFiles[entry.Name()] || entry.Type()&os.ModeSymlink == 0 {
			continue
		}
		target, err := filepath.EvalSymlinks(filepath.Join(w.configDir, entry.Name()))
		if err != nil {
			w.logger.WithError(err).WithField("file", entry.Name()).Warn("Cannot resolve config symlink")
			continue
		}
		w.links[target] = entry.Name()

		dir := filepath.Dir(target)
		if watched[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.WithError(err).WithField("dir", dir).Warn("Cannot watch symlink target")
			continue
		}
		watched[dir] = true
		w.logger.WithField("dir", dir).Debug("Watching symlink target")
	}
}

// Start begins watching for config changes. It blocks until the context is
// cancelled or the watcher is closed.
func (w *ConfigWatcher) Start(ctx context.Context) {
	defer w.stopTimer()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if file, ok := w.resolve(event.Name); ok {
				w.schedule(file)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.watcher.Close()
			return
		}
	}
}

// resolve maps an event path to the config file it concerns.
func (w *ConfigWatcher) resolve(name string) (string, bool) {
	if link, ok := w.links[name]; ok {
		w.logger.Debugf("Mapped symlink target %s -> %s", name, link)
		return filepath.Join(w.configDir, link), true
	}
	if filepath.Dir(name) != filepath.Clean(w.configDir) {
		return "", false
	}
	base := filepath.Base(name)
	if !configFiles[base] || strings.HasPrefix(base, ".") {
		return "", false
	}
	return name, true
}

// schedule restarts the debounce timer for file.
func (w *ConfigWatcher) schedule(file string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending = file
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *ConfigWatcher) fire() {
	w.mu.Lock()
	file := w.pending
	w.pending = ""
	w.timer = nil
	w.mu.Unlock()

	if file == "" {
		return
	}
	w.logger.Infof("Config changed: %s", filepath.Base(file))
	if w.onReload != nil {
		w.onReload(file)
	}
}

func (w *ConfigWatcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// Close stops the watcher and releases resources.
func (w *ConfigWatcher) Close() error {
	return w.watcher.Close()
}
