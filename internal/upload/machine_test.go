package upload

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/j-veylop/sleep-insight-tui/internal/api"
)

func TestMachine_SubmitWithoutFile(t *testing.T) {
	m := New(nil)
	if _, ok := m.Submit(); ok {
		t.Error("Submit without a staged file should be a no-op")
	}
	if m.Status() != StatusIdle {
		t.Errorf("status = %v, want idle", m.Status())
	}
}

func TestMachine_Success(t *testing.T) {
	var got api.UploadResult
	calls := 0
	m := New(func(r api.UploadResult) {
		calls++
		got = r
	})

	m.Stage(File{Name: "export.zip", Path: "/tmp/export.zip", Size: 2048})
	if m.Status() != StatusIdle {
		t.Errorf("staging changed status to %v", m.Status())
	}

	f, ok := m.Submit()
	if !ok || f.Name != "export.zip" {
		t.Fatalf("Submit() = %+v, %v", f, ok)
	}
	if m.Status() != StatusUploading {
		t.Errorf("status = %v, want uploading", m.Status())
	}
	if _, ok := m.Submit(); ok {
		t.Error("second Submit while uploading should be a no-op")
	}

	m.Finish(api.UploadResult{"status": "ok"}, nil)
	if m.Status() != StatusSuccess || m.Message() != SuccessMessage {
		t.Errorf("status = %v, message = %q", m.Status(), m.Message())
	}
	if calls != 1 || got["status"] != "ok" {
		t.Errorf("completion callback calls = %d, payload = %v", calls, got)
	}

	// Finish outside of uploading is ignored.
	m.Finish(nil, errors.New("late"))
	if m.Status() != StatusSuccess {
		t.Errorf("late Finish changed status to %v", m.Status())
	}
}

func TestMachine_Error(t *testing.T) {
	called := false
	m := New(func(api.UploadResult) { called = true })
	m.Stage(File{Name: "export.xml"})
	m.Submit()

	m.Finish(nil, &api.HTTPError{Op: api.OpUpload, Status: 500, Body: "Internal"})
	if m.Status() != StatusError {
		t.Fatalf("status = %v, want error", m.Status())
	}
	if m.Message() != "Upload failed: 500 Internal" {
		t.Errorf("message = %q", m.Message())
	}
	if called {
		t.Error("completion callback must not run on failure")
	}
}

func TestMachine_Clear(t *testing.T) {
	m := New(nil)
	if m.Clear() {
		t.Error("Clear from idle should have no effect")
	}

	m.Stage(File{Name: "a.zip"})
	m.Submit()
	if m.Clear() {
		t.Error("Clear while uploading should have no effect")
	}

	m.Finish(api.UploadResult{}, nil)
	if !m.Clear() {
		t.Fatal("Clear from success should return to idle")
	}
	if m.Status() != StatusIdle || m.Message() != "" {
		t.Errorf("status = %v, message = %q", m.Status(), m.Message())
	}
	if _, ok := m.File(); ok {
		t.Error("Clear should discard the staged file")
	}
	if _, ok := m.Submit(); ok {
		t.Error("Submit after Clear should be a no-op")
	}
}

func TestMachine_StageIgnoredWhileUploading(t *testing.T) {
	m := New(nil)
	m.Stage(File{Name: "first.zip"})
	m.Submit()
	m.Stage(File{Name: "second.zip"})

	f, _ := m.File()
	if f.Name != "first.zip" {
		t.Errorf("staged file = %q, want first.zip", f.Name)
	}
}

func TestMachine_Unstage(t *testing.T) {
	m := New(nil)
	m.Stage(File{Name: "first.zip"})
	m.Unstage()
	if _, ok := m.File(); ok {
		t.Error("Unstage should drop the staged file")
	}
	if _, ok := m.Submit(); ok {
		t.Error("Submit after Unstage should be a no-op")
	}

	m.Stage(File{Name: "second.zip"})
	m.Submit()
	m.Unstage()
	if f, ok := m.File(); !ok || f.Name != "second.zip" {
		t.Errorf("Unstage while uploading dropped the file: %+v, %v", f, ok)
	}
}

func TestAccepted(t *testing.T) {
	tests := map[string]bool{
		"export.zip":      true,
		"EXPORT.XML":      true,
		"/a/b/export.xml": true,
		"export.csv":      false,
		"export":          false,
		"zip":             false,
	}
	for path, want := range tests {
		if got := Accepted(path); got != want {
			t.Errorf("Accepted(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "export.zip")
	if err := os.WriteFile(path, make([]byte, 1500), 0o600); err != nil {
		t.Fatal(err)
	}

	f, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if f.Name != "export.zip" || f.Size != 1500 {
		t.Errorf("unexpected file %+v", f)
	}
	if f.SizeString() != "1.5 kB" {
		t.Errorf("SizeString() = %q", f.SizeString())
	}

	if _, err := Inspect(filepath.Join(dir, "notes.txt")); err == nil {
		t.Error("expected an error for an unsupported extension")
	}
	if _, err := Inspect(filepath.Join(dir, "missing.xml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
