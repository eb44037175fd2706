// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package allowlist

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManagerMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "allow.yaml")
	m, err := NewManager(path, nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if len(m.Entries()) != 0 {
		t.Errorf("expected no entries, got %d", len(m.Entries()))
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file should not be created before the first change")
	}
}

func TestManagerAddRemovePersist(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	path := filepath.Join(t.TempDir(), "allow.yaml")

	m, err := NewManager(path, func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Add(Entry{Value: "contact@example.com", Reason: "support mailbox"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Add(Entry{Value: "Bruxelles", Language: "fr"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Add(Entry{Value: "contact@example.com", Reason: "updated"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadFile(path, now)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("expected 2 terms, got %d", loaded.Len())
	}
	if !loaded.Allowed("fr", "Bruxelles") {
		t.Error("fr entry should be allowed in fr")
	}

	reopened, err := NewManager(path, func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if len(reopened.Entries()) != 2 || reopened.Entries()[0].Reason != "updated" {
		t.Errorf("unexpected entries after reload: %+v", reopened.Entries())
	}

	if err := reopened.Remove("Bruxelles", ""); err == nil {
		t.Error("removing with the wrong language should fail")
	}
	if err := reopened.Remove("Bruxelles", "fr"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if len(reopened.Entries()) != 1 {
		t.Errorf("expected 1 entry after remove, got %d", len(reopened.Entries()))
	}
}

func TestManagerAddRequiresValue(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "allow.yaml"), nil)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := m.Add(Entry{Reason: "no value"}); err == nil {
		t.Error("expected an error for an empty value")
	}
}

func TestManagerCleanupExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	path := filepath.Join(t.TempDir(), "allow.yaml")

	m, err := NewManager(path, func() time.Time { return now })
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	for _, e := range []Entry{
		{Value: "old", ExpiresAt: &past},
		{Value: "current", ExpiresAt: &future},
		{Value: "forever"},
	} {
		if err := m.Add(e); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}
	if m.Active(m.Entries()[0]) {
		t.Error("expired entry should not be active")
	}

	removed, err := m.CleanupExpired()
	if err != nil {
		t.Fatalf("CleanupExpired() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
	if len(m.Entries()) != 2 || m.Entries()[0].Value != "current" {
		t.Errorf("unexpected entries: %+v", m.Entries())
	}

	removed, err = m.CleanupExpired()
	if err != nil || removed != 0 {
		t.Errorf("second cleanup = (%d, %v), want (0, nil)", removed, err)
	}
}

func TestManagerInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "allow.yaml")
	if err := os.WriteFile(path, []byte("entries: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager(path, nil); err == nil {
		t.Error("expected a parse error")
	}
}
