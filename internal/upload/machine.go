// Package upload is the state machine behind the upload view.
package upload

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/j-veylop/sleep-insight-tui/internal/api"
)

// Status is the upload state.
type Status int

const (
	// StatusIdle means nothing is in flight.
	StatusIdle Status = iota
	// StatusUploading means a file is being sent.
	StatusUploading
	// StatusSuccess means the last upload succeeded.
	StatusSuccess
	// StatusError means the last upload failed.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusUploading:
		return "uploading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// SuccessMessage is shown after a successful upload.
const SuccessMessage = "Uploaded successfully"

// Extensions lists the accepted export file extensions.
var Extensions = []string{".zip", ".xml"}

// File is a staged export file.
type File struct {
	Name string
	Path string
	Size int64
}

// SizeString returns the size in human units.
func (f File) SizeString() string {
	return humanize.Bytes(uint64(max(f.Size, 0)))
}

// Accepted reports whether path has one of Extensions.
func Accepted(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Inspect stats path and returns it as a File ready for staging.
func Inspect(path string) (File, error) {
	if !Accepted(path) {
		return File{}, fmt.Errorf("unsupported file type %q (want .zip or .xml)", filepath.Ext(path))
	}
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	return File{Name: filepath.Base(path), Path: path, Size: info.Size()}, nil
}

// Machine tracks one upload flow: idle, uploading, then success or error,
// and back to idle on Clear.
type Machine struct {
	onComplete func(api.UploadResult)
	file       *File
	message    string
	status     Status
}

// New returns an idle machine. onComplete, if set, receives the payload of
// every successful upload.
func New(onComplete func(api.UploadResult)) *Machine {
	return &Machine{onComplete: onComplete}
}

// Status returns the current state.
func (m *Machine) Status() Status { return m.status }

// Message returns the success or error text.
func (m *Machine) Message() string { return m.message }

// File returns the staged file, if any.
func (m *Machine) File() (File, bool) {
	if m.file == nil {
		return File{}, false
	}
	return *m.file, true
}

// Stage holds f for the next submit. It is ignored while uploading.
func (m *Machine) Stage(f File) {
	if m.status == StatusUploading {
		return
	}
	m.file = &f
	m.message = ""
}

// Unstage drops the staged file. It is ignored while uploading.
func (m *Machine) Unstage() {
	if m.status == StatusUploading {
		return
	}
	m.file = nil
}

// Submit moves to uploading and returns the file to send. Without a staged
// file, or while an upload is in flight, it does nothing.
func (m *Machine) Submit() (File, bool) {
	if m.file == nil || m.status == StatusUploading {
		return File{}, false
	}
	m.status = StatusUploading
	m.message = ""
	return *m.file, true
}

// Finish records the outcome of the upload started by Submit.
func (m *Machine) Finish(result api.UploadResult, err error) {
	if m.status != StatusUploading {
		return
	}
	if err != nil {
		m.status = StatusError
		m.message = api.Message(err)
		return
	}
	m.status = StatusSuccess
	m.message = SuccessMessage
	if m.onComplete != nil {
		m.onComplete(result)
	}
}

// Clear returns to idle from success or error, discarding the staged file.
func (m *Machine) Clear() bool {
	if m.status != StatusSuccess && m.status != StatusError {
		return false
	}
	m.status = StatusIdle
	m.message = ""
	m.file = nil
	return true
}
