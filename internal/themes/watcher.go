package themes

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the themes directory and reloads the inventory when
// themes are installed, removed, or their manifests change.
type Watcher struct {
	inv     *Inventory
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher creates a watcher for the inventory's themes directory.
func NewWatcher(inv *Inventory) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		inv:     inv,
		watcher: fw,
		done:    make(chan struct{}),
	}, nil
}

// Start begins watching. Reload errors are swallowed: a transient scan
// failure keeps the previous inventory, which is the safe side for theme
// validation.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.inv.dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.relevant(event) {
				_ = w.inv.Reload()
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// relevant filters events down to theme directories appearing or
// disappearing, and manifest edits.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename) {
		return true
	}
	return event.Op.Has(fsnotify.Write) && filepath.Base(event.Name) == ManifestFile
}
