// Package server exposes the shared download directory over HTTP: a
// browsable listing, inline viewing, and forced downloads.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediafetch/internal/logging"
	"mediafetch/internal/util"
)

// Handler serves files from dir. Partial downloads and anything outside
// dir are never served.
func Handler(dir string) http.Handler {
	mux := http.NewServeMux()
	files := http.FileServer(completeOnly{http.Dir(dir)})
	mux.Handle("GET "+listingRoute, http.StripPrefix(strings.TrimSuffix(listingRoute, "/"), files))
	mux.HandleFunc("GET "+downloadRoute+"{name}", func(w http.ResponseWriter, r *http.Request) {
		forceDownload(w, r, dir)
	})
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, listingRoute, http.StatusFound)
	})
	return mux
}

func forceDownload(w http.ResponseWriter, r *http.Request, dir string) {
	name := r.PathValue("name")
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") || util.IsPartial(name) {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Type", "application/octet-stream")
	logging.FromContext(r.Context()).Info("download", "name", name, "size", fi.Size())
	http.ServeContent(w, r, name, fi.ModTime(), f)
}

// completeOnly hides partial downloads and dotfiles from the file server,
// both in listings and on direct access.
type completeOnly struct {
	fs http.FileSystem
}

func hidden(name string) bool {
	base := filepath.Base(name)
	return util.IsPartial(base) || (strings.HasPrefix(base, ".") && base != "." && base != "/")
}

func (c completeOnly) Open(name string) (http.File, error) {
	if hidden(name) {
		return nil, os.ErrNotExist
	}
	f, err := c.fs.Open(name)
	if err != nil {
		return nil, err
	}
	return filteredFile{f}, nil
}

type filteredFile struct {
	http.File
}

func (f filteredFile) Readdir(n int) ([]os.FileInfo, error) {
	all, err := f.File.Readdir(n)
	kept := all[:0]
	for _, fi := range all {
		if fi.IsDir() || hidden(fi.Name()) {
			continue
		}
		kept = append(kept, fi)
	}
	return kept, err
}

// Server runs the artifact HTTP endpoint.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

func New(addr, dir string, log *slog.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           logging.HTTPLogging(log, Handler(dir)),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.srv.Addr)
		errc <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}
