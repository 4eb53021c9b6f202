package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/folio/internal/config"
	"github.com/Bitlatte/folio/internal/logfields"
)

const debounceDuration = 300 * time.Millisecond

var serverPort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and rebuilds on changes",
	Long: `The serve command performs an initial build of your site, then starts a local
web server for the output directory. It watches the input directory and rebuilds
the site shortly after files change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), appConfig, serverPort)
	},
}

func runServe(ctx context.Context, cfg config.Config, port int) error {
	logger.Info("Performing initial build")
	if _, err := runBuildProcess(ctx, cfg); err != nil {
		return fmt.Errorf("initial build failed: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, cfg.Dir.Input, cfg.Dir.Output); err != nil {
		return err
	}

	rb := &rebuilder{build: func() error {
		_, err := runBuildProcess(ctx, cfg)
		return err
	}}
	go watchLoop(ctx, watcher, cfg.Dir.Output, rb)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           newSiteHandler(cfg.Dir.Output),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Serving site", logfields.OutputPath(cfg.Dir.Output), logfields.URL(fmt.Sprintf("http://localhost:%d/", port)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start HTTP server: %w", err)
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// watchTree adds root and every directory below it to the watcher, except
// the output directory and ignored names.
func watchTree(watcher *fsnotify.Watcher, root, output string) error {
	out := filepath.Clean(output)
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("Error walking directory", logfields.InputPath(p), logfields.Error(err))
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && (filepath.Clean(p) == out || skipWatch(d.Name())) {
			return filepath.SkipDir
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func skipWatch(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, output string, rb *rebuilder) {
	out := filepath.Clean(output)
	for {
		select {
		case <-ctx.Done():
			rb.stop()
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if isWithin(event.Name, out) {
				continue
			}
			logger.Debug("Change detected", logfields.InputPath(event.Name), "op", event.Op.String())

			// New subdirectories are not watched automatically.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := watchTree(watcher, event.Name, out); err != nil {
					logger.Warn("Could not watch new directory", logfields.InputPath(event.Name), logfields.Error(err))
				}
			}
			rb.trigger(debounceDuration)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// rebuilder debounces rebuild requests and never runs two builds at once.
type rebuilder struct {
	build func() error

	mu      sync.Mutex
	timer   *time.Timer
	running sync.Mutex
}

func (r *rebuilder) trigger(delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(delay, r.run)
}

func (r *rebuilder) run() {
	r.running.Lock()
	defer r.running.Unlock()
	logger.Info("Rebuilding site")
	if err := r.build(); err != nil {
		logger.Error("Rebuild failed", logfields.Error(err))
	}
}

func (r *rebuilder) stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.timer != nil {
		r.timer.Stop()
	}
}

// newSiteHandler serves dir without directory listings and with caching
// disabled.
func newSiteHandler(dir string) http.Handler {
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && !hasIndex(dir, r.URL.Path) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		files.ServeHTTP(w, r)
	})
}

// hasIndex reports whether the directory urlPath names inside dir holds an
// index.html. urlPath is cleaned first so it cannot leave dir.
func hasIndex(dir, urlPath string) bool {
	clean := path.Clean("/" + urlPath)
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(clean), "index.html"))
	return err == nil
}

func isDir(p string) bool {
	fileInfo, err := os.Stat(p)
	if err != nil {
		return false
	}
	return fileInfo.IsDir()
}

func isWithin(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && filepath.IsLocal(rel)
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
