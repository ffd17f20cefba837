package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMap(t *testing.T, dir, name, body string, mod time.Time) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	require.NoError(t, os.Chtimes(p, mod, mod))
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, New(t.TempDir()).Handler(), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListMaps_NewestFirst(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)
	writeMap(t, dir, "ccus_status_map_20240309_140000.html", "<html>a</html>", base)
	writeMap(t, dir, "ccus_maturity_map_20240309_150000.html", "<html>b</html>", base.Add(time.Hour))
	writeMap(t, dir, "ccus_maturity_map_20240309_150000.geojson", "{}", base.Add(30*time.Minute))
	writeMap(t, dir, "notes.txt", "skip", base.Add(2*time.Hour))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.html"), 0o755))

	rec := get(t, New(dir).Handler(), "/maps")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var files []MapFile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &files))
	require.Len(t, files, 3)
	assert.Equal(t, "ccus_maturity_map_20240309_150000.html", files[0].Name)
	assert.Equal(t, "ccus_maturity_map_20240309_150000.geojson", files[1].Name)
	assert.Equal(t, "ccus_status_map_20240309_140000.html", files[2].Name)
	assert.Equal(t, "/maps/ccus_status_map_20240309_140000.html", files[2].URL)
	assert.Equal(t, int64(len("<html>a</html>")), files[2].Size)
}

func TestListMaps_MissingDir(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "not-yet"))
	files, err := s.ListMaps()
	require.NoError(t, err)
	assert.Empty(t, files)

	rec := get(t, s.Handler(), "/maps")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServeMap(t *testing.T) {
	dir := t.TempDir()
	writeMap(t, dir, "quick_map.html", "<html>quick</html>", time.Now())

	rec := get(t, New(dir).Handler(), "/maps/quick_map.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>quick</html>", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestServeMap_Rejected(t *testing.T) {
	dir := t.TempDir()
	h := New(dir).Handler()

	tests := []struct {
		path string
		code int
	}{
		{"/maps/missing.html", http.StatusNotFound},
		{"/maps/.env", http.StatusBadRequest},
		{"/maps/..%2Fsecret.html", http.StatusBadRequest},
		{"/maps/config.yaml", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			assert.Equal(t, tt.code, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestValidName(t *testing.T) {
	assert.True(t, validName("ccus_status_map_20240309_140507.html"))
	assert.True(t, validName("export.geojson"))
	assert.False(t, validName(""))
	assert.False(t, validName("../x.html"))
	assert.False(t, validName(`..\x.html`))
	assert.False(t, validName(".hidden.html"))
	assert.False(t, validName("report.csv"))
}

func TestPublishLive(t *testing.T) {
	s := New(t.TempDir())
	s.Publish("quick", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "live canvas")
	}))

	rec := get(t, s.Handler(), "/live/quick")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "live canvas", rec.Body.String())

	rec = get(t, s.Handler(), "/live/other")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := New(t.TempDir()).Handler()
	req := httptest.NewRequest(http.MethodOptions, "/maps", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListenAndServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- New(t.TempDir()).ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestAddr(t *testing.T) {
	assert.Equal(t, ":8080", Addr(8080))
}
