package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
)

// setupEnv points every path at a temp dir and the backend at url.
func setupEnv(t *testing.T, url string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BACKEND_URL", url)
	t.Setenv("SETTINGS_PATH", filepath.Join(dir, "settings.json"))
	t.Setenv("DATABASE_PATH", filepath.Join(dir, "history.db"))
	t.Setenv("LOG_PATH", filepath.Join(dir, "sit.log"))
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "reports"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("RESULTS_SOURCE", "mock")
	t.Setenv("DESKTOP_NOTIFY", "false")
	t.Setenv("OPEN_REPORT", "false")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := newApp(&stdout, &stderr).Run(context.Background(), append([]string{"sit"}, args...))
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	out, err := run(t, "version")
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("sleep-insight-tui")
}

func TestSummary_Mock(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	out, err := run(t, "summary", "--mock")
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("Average Sleep (min)")
	gt.S(t, out).Contains("425")
	gt.S(t, out).Contains("Sleep Quality Score")
	gt.S(t, out).Contains("2024-03-04")
}

func TestMetrics_MockPage(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	out, err := run(t, "metrics", "--mock", "--category", "vitals", "--page", "2", "--page-size", "50")
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("Vitals • page 2 • 50 per page • 120 records")
	// record 50 is the first one on page 2
	gt.S(t, out).Contains("2024-03-11T02:20:00Z")
	gt.B(t, strings.Contains(out, "2024-03-11T02:16:00Z")).False()
}

func TestMetrics_MockPagePastEnd(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	out, err := run(t, "metrics", "--mock", "--category", "vitals", "--page", "9223372036854775807", "--page-size", "500")
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("No records")
}

func TestMetrics_InvalidCategory(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	_, err := run(t, "metrics", "--mock", "--category", "sleep")
	gt.Error(t, err)
}

func TestMetrics_Backend(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		_, _ = w.Write([]byte(`[{"timestamp": "2024-01-01T00:00:00Z", "db": 31.5}]`))
	}))
	defer srv.Close()

	setupEnv(t, srv.URL)
	t.Setenv("RESULTS_SOURCE", "backend")

	out, err := run(t, "metrics", "-c", "environment", "-p", "3", "-n", "250")
	gt.NoError(t, err).Required()
	gt.Equal(t, gotPath, "/metrics/environment")
	gt.Equal(t, gotQuery, "page=3&page_size=250")
	gt.S(t, out).Contains("31.5")
}

func TestUpload(t *testing.T) {
	var gotName string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, hdr, err := r.FormFile("file"); err == nil {
			gotName = hdr.Filename
		}
		_, _ = w.Write([]byte(`{"status": "ok"}`))
	}))
	defer srv.Close()

	dir := setupEnv(t, srv.URL)
	path := filepath.Join(dir, "export.xml")
	gt.NoError(t, os.WriteFile(path, []byte("<HealthData/>"), 0o600)).Required()

	out, err := run(t, "upload", path)
	gt.NoError(t, err).Required()
	gt.Equal(t, gotName, "export.xml")
	gt.S(t, out).Contains("Uploaded successfully")
	gt.S(t, out).Contains(`"status": "ok"`)
}

func TestUpload_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	dir := setupEnv(t, srv.URL)

	t.Run("missing argument", func(t *testing.T) {
		_, err := run(t, "upload")
		gt.Error(t, err)
	})

	t.Run("unsupported type", func(t *testing.T) {
		path := filepath.Join(dir, "export.csv")
		gt.NoError(t, os.WriteFile(path, []byte("a,b"), 0o600)).Required()
		_, err := run(t, "upload", path)
		gt.Error(t, err)
	})

	t.Run("backend failure", func(t *testing.T) {
		path := filepath.Join(dir, "export.zip")
		gt.NoError(t, os.WriteFile(path, []byte("PK"), 0o600)).Required()
		_, err := run(t, "upload", path)
		gt.S(t, fmt.Sprint(err)).Contains("Upload failed: 500")
	})
}

func TestConfigURL(t *testing.T) {
	setupEnv(t, "http://localhost:8000")

	out, err := run(t, "config", "get-url")
	gt.NoError(t, err).Required()
	gt.Equal(t, strings.TrimSpace(out), "http://localhost:8000")

	_, err = run(t, "config", "set-url", "  http://sleep.test:9000  ")
	gt.NoError(t, err).Required()

	out, err = run(t, "config", "get-url")
	gt.NoError(t, err).Required()
	gt.Equal(t, strings.TrimSpace(out), "http://sleep.test:9000")

	_, err = run(t, "config", "set-url", "")
	gt.NoError(t, err).Required()
	out, err = run(t, "config", "get-url")
	gt.NoError(t, err).Required()
	gt.Equal(t, strings.TrimSpace(out), "http://localhost:8000")
}

func TestConfigShow(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	out, err := run(t, "config", "show")
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("RESULTS_SOURCE")
	gt.S(t, out).Contains("mock")
}

func TestScore_Mock(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	out, err := run(t, "score", "--mock")
	gt.NoError(t, err).Required()
	gt.S(t, out).Contains("Duration")
	gt.S(t, out).Contains("Consistency")
}

func TestExport_Mock(t *testing.T) {
	dir := setupEnv(t, "http://localhost:8000")
	out, err := run(t, "export", "--mock")
	gt.NoError(t, err).Required()

	path := strings.TrimSpace(out)
	gt.Equal(t, filepath.Dir(path), filepath.Join(dir, "reports"))
	gt.Equal(t, filepath.Ext(path), ".html")

	data, err := os.ReadFile(path)
	gt.NoError(t, err).Required()
	gt.S(t, string(data)).Contains("Sleep Health Insight")
}

func TestInvalidLogFormat(t *testing.T) {
	setupEnv(t, "http://localhost:8000")
	t.Setenv("LOG_FORMAT", "xml")
	_, err := run(t, "version")
	gt.Error(t, err)
}
