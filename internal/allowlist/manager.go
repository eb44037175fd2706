// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package allowlist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileVersion is written to new allow-list files
const FileVersion = "1.0"

// Manager edits an allow-list file
type Manager struct {
	path string
	file *File
	now  func() time.Time
}

// NewManager loads the allow-list file at path. A missing file starts empty
// and is created on the first save.
func NewManager(path string, now func() time.Time) (*Manager, error) {
	if path == "" {
		return nil, errors.New("allow-list file path is required")
	}
	if now == nil {
		now = time.Now
	}
	m := &Manager{path: filepath.Clean(path), now: now}

	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		m.file = &File{Version: FileVersion}
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read allow-list file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse allow-list file %s: %w", m.path, err)
	}
	if file.Version == "" {
		file.Version = FileVersion
	}
	m.file = &file
	return m, nil
}

// Path returns the file being edited
func (m *Manager) Path() string {
	return m.path
}

// Entries returns the entries in file order
func (m *Manager) Entries() []Entry {
	return m.file.Entries
}

// Active reports whether e currently applies
func (m *Manager) Active(e Entry) bool {
	return e.active(m.now())
}

// Add appends an entry, replacing an existing one with the same value and
// language, and saves the file
func (m *Manager) Add(e Entry) error {
	if e.Value == "" {
		return errors.New("allow-list entry value is required")
	}
	for i, existing := range m.file.Entries {
		if existing.Value == e.Value && existing.Language == e.Language {
			m.file.Entries[i] = e
			return m.save()
		}
	}
	m.file.Entries = append(m.file.Entries, e)
	return m.save()
}

// Remove deletes the entry with value and language and saves the file
func (m *Manager) Remove(value, language string) error {
	for i, e := range m.file.Entries {
		if e.Value == value && e.Language == language {
			m.file.Entries = append(m.file.Entries[:i], m.file.Entries[i+1:]...)
			return m.save()
		}
	}
	if language == "" {
		return fmt.Errorf("allow-list entry %q not found", value)
	}
	return fmt.Errorf("allow-list entry %q for language %s not found", value, language)
}

// CleanupExpired removes expired entries, saving the file when any were
// removed, and returns how many were removed
func (m *Manager) CleanupExpired() (int, error) {
	now := m.now()
	kept := m.file.Entries[:0]
	for _, e := range m.file.Entries {
		if e.ExpiresAt == nil || now.Before(*e.ExpiresAt) {
			kept = append(kept, e)
		}
	}
	removed := len(m.file.Entries) - len(kept)
	m.file.Entries = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, m.save()
}

func (m *Manager) save() error {
	data, err := yaml.Marshal(m.file)
	if err != nil {
		return fmt.Errorf("failed to marshal allow-list file: %w", err)
	}

	dir := filepath.Dir(m.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write allow-list file: %w", err)
	}
	return nil
}
