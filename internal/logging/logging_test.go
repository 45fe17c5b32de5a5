package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(&buf, "debug", FormatAuto)
	be.Equal(t, err, nil)
	log.Debug("hello", "k", 1)

	// A bytes.Buffer is not a terminal, so auto means JSON.
	var rec map[string]any
	be.Equal(t, json.Unmarshal(buf.Bytes(), &rec), nil)
	be.Equal(t, rec["msg"], any("hello"))

	buf.Reset()
	log, err = New(&buf, "info", FormatText)
	be.Equal(t, err, nil)
	log.Debug("dropped")
	log.Info("kept")
	be.Equal(t, strings.Contains(buf.String(), "msg=kept"), true)
	be.Equal(t, strings.Contains(buf.String(), "dropped"), false)
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "loud", FormatText)
	be.Equal(t, err != nil, true)
	_, err = New(&bytes.Buffer{}, "info", "xml")
	be.Equal(t, err != nil, true)
}

func TestFromContext_Default(t *testing.T) {
	be.Equal(t, FromContext(context.Background()), slog.Default())
	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	be.Equal(t, FromContext(Context(context.Background(), log)), log)
}

func TestHTTPLogging_RecoversPanic(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	var sawLogger bool
	h := HTTPLogging(log, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = FromContext(r.Context()) != slog.Default()
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/x", nil))
	be.Equal(t, rr.Code, http.StatusInternalServerError)
	be.Equal(t, sawLogger, true)
	be.Equal(t, strings.Contains(buf.String(), "panic recovered"), true)
}
