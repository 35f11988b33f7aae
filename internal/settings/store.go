// Package settings persists the backend base URL with file watching.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/j-veylop/sleep-insight-tui/internal/logger"
)

// DefaultBackendURL is used when no URL has been saved.
const DefaultBackendURL = "http://localhost:8000"

// File is the on-disk layout of the settings file.
type File struct {
	BackendBaseURL string `json:"backendBaseUrl,omitempty"`
	Version        int    `json:"version,omitempty"`
}

// EventType defines the type of settings event.
type EventType int

const (
	// EventChanged is sent when the effective URL changes.
	EventChanged EventType = iota
	// EventError is sent when the file or watcher fails.
	EventError
)

// Event represents a settings store event.
type Event struct {
	Error error
	URL   string
	Type  EventType
}

// Store holds the persisted backend URL. Get never fails; a missing or
// empty value falls back to the default.
type Store struct {
	watcher       *fsnotify.Watcher
	debounceTimer *time.Timer
	eventChan     chan Event
	stopChan      chan struct{}
	filePath      string
	defaultURL    string
	url           string
	mu            sync.RWMutex
	closeOnce     sync.Once
}

// DefaultPath returns the default settings file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "settings.json"
	}
	return filepath.Join(home, ".config", "sleep-insight", "settings.json")
}

// New opens the settings file at filePath and starts watching it.
// A missing file is not an error.
func New(filePath, defaultURL string) (*Store, error) {
	if filePath == "" {
		filePath = DefaultPath()
	}
	if defaultURL == "" {
		defaultURL = DefaultBackendURL
	}

	s := &Store{
		filePath:   filePath,
		defaultURL: defaultURL,
		eventChan:  make(chan Event, 16),
		stopChan:   make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	url, err := s.readFile()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	s.url = url

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start settings watcher: %w", err)
	}

	return s, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.filePath
}

// Events returns the event channel for subscribing to settings changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// Get returns the persisted backend URL, or the default if none is saved.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.url == "" {
		return s.defaultURL
	}
	return s.url
}

// Default returns the URL used when nothing is persisted.
func (s *Store) Default() string {
	return s.defaultURL
}

// Set overwrites the persisted URL. The value is stored as given.
func (s *Store) Set(url string) error {
	s.mu.Lock()
	prev := s.url
	s.url = url
	if err := s.writeLocked(); err != nil {
		s.url = prev
		s.mu.Unlock()
		logger.Error("failed to save settings", "path", s.filePath, "error", err)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	s.mu.Unlock()

	s.sendEvent(Event{Type: EventChanged, URL: s.Get()})
	return nil
}

func (s *Store) readFile() (string, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", nil
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("invalid settings file %s: %w", s.filePath, err)
	}
	return f.BackendBaseURL, nil
}

// writeLocked writes the settings file atomically (must hold lock).
func (s *Store) writeLocked() error {
	data, err := json.MarshalIndent(File{BackendBaseURL: s.url, Version: 1}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmpFile := s.filePath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmpFile, s.filePath); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// startWatcher watches the settings directory so creation and removal are seen.
func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}
	s.watcher = watcher

	go s.watchLoop()
	return nil
}

func (s *Store) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.reload)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// reload re-reads the file after an external change. Writes made by Set
// produce no second event since the value is unchanged.
func (s *Store) reload() {
	url, err := s.readFile()
	if err != nil {
		logger.Warn("failed to reload settings", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.mu.Lock()
	changed := url != s.url
	s.url = url
	s.mu.Unlock()

	if changed {
		logger.Info("settings reloaded", "path", s.filePath)
		s.sendEvent(Event{Type: EventChanged, URL: s.Get()})
	}
}

// sendEvent sends without blocking, dropping the oldest event when full.
func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
