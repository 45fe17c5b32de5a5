package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"My Song - abc.mp3": "song",
		"clip.mp4.part":     "partial",
		".hidden":           "secret",
	} {
		be.Equal(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644), nil)
	}
	return dir
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestHandler_Listing(t *testing.T) {
	h := Handler(setupDir(t))
	rr := get(t, h, "/downloads/")
	be.Equal(t, rr.Code, http.StatusOK)
	body := rr.Body.String()
	be.Equal(t, strings.Contains(body, "My%20Song%20-%20abc.mp3"), true)
	be.Equal(t, strings.Contains(body, "clip.mp4.part"), false)
	be.Equal(t, strings.Contains(body, ".hidden"), false)
}

func TestHandler_View(t *testing.T) {
	h := Handler(setupDir(t))
	rr := get(t, h, "/downloads/My%20Song%20-%20abc.mp3")
	be.Equal(t, rr.Code, http.StatusOK)
	be.Equal(t, rr.Body.String(), "song")

	be.Equal(t, get(t, h, "/downloads/clip.mp4.part").Code, http.StatusNotFound)
	be.Equal(t, get(t, h, "/downloads/.hidden").Code, http.StatusNotFound)
}

func TestHandler_ForceDownload(t *testing.T) {
	h := Handler(setupDir(t))
	rr := get(t, h, "/force-download/My%20Song%20-%20abc.mp3")
	be.Equal(t, rr.Code, http.StatusOK)
	be.Equal(t, strings.HasPrefix(rr.Header().Get("Content-Disposition"), "attachment"), true)
	body, _ := io.ReadAll(rr.Body)
	be.Equal(t, string(body), "song")

	for _, target := range []string{
		"/force-download/clip.mp4.part",
		"/force-download/missing.mp4",
		"/force-download/.hidden",
	} {
		be.Equal(t, get(t, h, target).Code, http.StatusNotFound)
	}
	be.Equal(t, get(t, h, "/force-download/..%2Fetc%2Fpasswd").Code != http.StatusOK, true)
}

func TestLinker(t *testing.T) {
	l := Linker{Base: "https://files.example.com/"}
	got := l.Links("u1-c2-3-abc - Song #1 - x?.mp3")
	be.Equal(t, got.View, "https://files.example.com/downloads/u1-c2-3-abc%20-%20Song%20%231%20-%20x%3F.mp3")
	be.Equal(t, got.Download, "https://files.example.com/force-download/u1-c2-3-abc%20-%20Song%20%231%20-%20x%3F.mp3")
	be.Equal(t, got.Listing, "https://files.example.com/downloads/")

	// Links must resolve against the handler.
	dir := t.TempDir()
	name := "Song #1?.mp3"
	be.Equal(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644), nil)
	h := Handler(dir)
	links := Linker{}.Links(name)
	be.Equal(t, get(t, h, links.View).Code, http.StatusOK)
	be.Equal(t, get(t, h, links.Download).Code, http.StatusOK)
}
