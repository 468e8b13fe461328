// Package file reads artifacts from files, directory trees and stdin, and
// can follow directories for new files.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/crimson-sun/sift/internal/connector"
	"github.com/crimson-sun/sift/internal/model"
)

// Provider is the registry name of this connector.
const Provider = "file"

// StdinPath reads one artifact from stdin.
const StdinPath = "-"

const defaultSettle = 250 * time.Millisecond

var (
	errNoPaths = errors.New("file connector: no paths given")
	errStop    = errors.New("stop")
)

func init() {
	connector.Register(Provider, func() connector.Connector {
		return &Connector{}
	})
}

// Connector implements connector.Connector over the local filesystem.
type Connector struct{}

// Query reads every path. Directories are walked in lexical order and
// hidden entries are skipped.
func (c *Connector) Query(ctx context.Context, cfg connector.Config, params connector.QueryParams) ([]model.Artifact, error) {
	if len(cfg.Paths) == 0 {
		return nil, errNoPaths
	}
	var out []model.Artifact
	err := walk(ctx, cfg, params, func(a model.Artifact) bool {
		out = append(out, a)
		return params.Limit == 0 || len(out) < params.Limit
	})
	return out, err
}

// Stream emits the current contents of every path, then, with Follow set,
// keeps emitting files created or rewritten under them until ctx ends.
func (c *Connector) Stream(ctx context.Context, cfg connector.Config) (<-chan model.Artifact, error) {
	if len(cfg.Paths) == 0 {
		return nil, errNoPaths
	}

	var w *watch
	if cfg.Follow {
		var err error
		if w, err = newWatch(cfg.Paths); err != nil {
			return nil, err
		}
	}

	log := cfg.Log()
	ch := make(chan model.Artifact, 16)
	go func() {
		defer close(ch)
		send := func(a model.Artifact) bool {
			select {
			case ch <- a:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if err := walk(ctx, cfg, connector.QueryParams{}, send); err != nil && ctx.Err() == nil {
			log.Warn("file connector: initial read failed", zap.Error(err))
		}
		if w == nil {
			return
		}
		defer w.Close()
		w.follow(ctx, cfg, send)
	}()
	return ch, nil
}

func walk(ctx context.Context, cfg connector.Config, params connector.QueryParams, emit func(model.Artifact) bool) error {
	log := cfg.Log()
	for _, path := range cfg.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == StdinPath {
			a, err := readStdin(cfg)
			if err != nil {
				return err
			}
			if !emit(cfg.Apply(a)) {
				return nil
			}
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("file connector: %w", err)
		}
		if !info.IsDir() {
			a, ok, err := readFile(path, info, params.MaxBytes, log)
			if err != nil {
				return fmt.Errorf("file connector: %w", err)
			}
			if ok && !emit(cfg.Apply(a)) {
				return nil
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Warn("file connector: skipping unreadable entry", zap.String("path", p), zap.Error(err))
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if p != path && hidden(p) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			a, ok, err := readFile(p, info, params.MaxBytes, log)
			if err != nil {
				log.Warn("file connector: skipping unreadable file", zap.String("path", p), zap.Error(err))
				return nil
			}
			if ok && !emit(cfg.Apply(a)) {
				return errStop
			}
			return nil
		})
		if errors.Is(err, errStop) {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func readStdin(cfg connector.Config) (model.Artifact, error) {
	r := cfg.Stdin
	if r == nil {
		r = os.Stdin
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return model.Artifact{}, fmt.Errorf("file connector: read stdin: %w", err)
	}
	return model.Artifact{Filename: cfg.StdinName, Content: string(data)}, nil
}

// readFile returns ok=false when the file exceeds maxBytes.
func readFile(path string, info fs.FileInfo, maxBytes int64, log *zap.Logger) (model.Artifact, bool, error) {
	if maxBytes > 0 && info.Size() > maxBytes {
		log.Warn("file connector: skipping oversized file",
			zap.String("path", path),
			zap.Int64("size", info.Size()),
			zap.Int64("max_bytes", maxBytes))
		return model.Artifact{}, false, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Artifact{}, false, err
	}
	return model.Artifact{Filename: path, Content: string(data)}, true, nil
}

func hidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// watch follows directories with fsnotify. Explicit file paths are
// followed through their parent directory.
type watch struct {
	*fsnotify.Watcher
	dirs  []string
	files map[string]bool
}

func newWatch(paths []string) (*watch, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("file connector: %w", err)
	}
	w := &watch{Watcher: fw, files: map[string]bool{}}
	for _, path := range paths {
		if path == StdinPath {
			fw.Close()
			return nil, errors.New("file connector: cannot follow stdin")
		}
		info, err := os.Stat(path)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("file connector: %w", err)
		}
		if info.IsDir() {
			w.dirs = append(w.dirs, filepath.Clean(path))
			err = w.addTree(path)
		} else {
			w.files[filepath.Clean(path)] = true
			err = fw.Add(filepath.Dir(path))
		}
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("file connector: watch %s: %w", path, err)
		}
	}
	return w, nil
}

func (w *watch) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != root && hidden(p) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}

func (w *watch) wanted(path string) bool {
	path = filepath.Clean(path)
	if w.files[path] {
		return true
	}
	if hidden(path) {
		return false
	}
	for _, dir := range w.dirs {
		if strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// follow reads a changed file once it has been quiet for the settle period.
func (w *watch) follow(ctx context.Context, cfg connector.Config, send func(model.Artifact) bool) {
	log := cfg.Log()
	settle := cfg.Settle
	if settle <= 0 {
		settle = defaultSettle
	}
	pending := map[string]time.Time{}
	ticker := time.NewTicker(settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			info, err := os.Stat(ev.Name)
			if err != nil {
				continue
			}
			if info.IsDir() {
				if ev.Has(fsnotify.Create) && w.wanted(ev.Name) {
					if err := w.addTree(ev.Name); err != nil {
						log.Warn("file connector: watch failed", zap.String("path", ev.Name), zap.Error(err))
					}
				}
				continue
			}
			if w.wanted(ev.Name) {
				pending[ev.Name] = time.Now()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warn("file connector: watcher error", zap.Error(err))
		case now := <-ticker.C:
			var ready []string
			for p, last := range pending {
				if now.Sub(last) >= settle {
					ready = append(ready, p)
				}
			}
			sort.Strings(ready)
			for _, p := range ready {
				delete(pending, p)
				info, err := os.Stat(p)
				if err != nil {
					continue
				}
				a, ok, err := readFile(p, info, 0, log)
				if err != nil {
					log.Warn("file connector: skipping unreadable file", zap.String("path", p), zap.Error(err))
					continue
				}
				if ok && !send(cfg.Apply(a)) {
					return
				}
			}
		}
	}
}
