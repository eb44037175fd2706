// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"pii-analyzer/internal/allowlist"
)

// AllowlistCmd groups allow-list file operations
type AllowlistCmd struct {
	List    AllowlistListCmd    `cmd:"" help:"List allow-list entries"`
	Add     AllowlistAddCmd     `cmd:"" help:"Add or replace an entry"`
	Remove  AllowlistRemoveCmd  `cmd:"" help:"Remove an entry"`
	Cleanup AllowlistCleanupCmd `cmd:"" help:"Remove expired entries"`
}

// AllowlistFile holds the --file flag shared by the allow-list commands
type AllowlistFile struct {
	File string `short:"f" type:"path" help:"Allow-list file (default: allow_list_file from the configuration)"`
}

// manager opens the allow-list file named by --file or the configuration
func (c *AllowlistFile) manager(g *Globals) (*allowlist.Manager, error) {
	path := c.File
	if path == "" {
		cfg, err := g.loadConfiguration()
		if err != nil {
			return nil, err
		}
		path = cfg.AllowListFile
	}
	if path == "" {
		return nil, errors.New("no allow-list file: pass --file or set allow_list_file in the configuration")
	}
	return allowlist.NewManager(path, time.Now)
}

// AllowlistListCmd lists entries
type AllowlistListCmd struct {
	AllowlistFile
}

func (c *AllowlistListCmd) Run(g *Globals) error {
	m, err := c.manager(g)
	if err != nil {
		return err
	}
	entries := m.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(g.stdout, "No allow-list entries found.")
		return nil
	}

	fmt.Fprintf(g.stdout, "Found %d allow-list entries in %s:\n\n", len(entries), m.Path())
	for _, e := range entries {
		fmt.Fprintf(g.stdout, "Value: %s\n", e.Value)
		if e.Language != "" {
			fmt.Fprintf(g.stdout, "Language: %s\n", e.Language)
		}
		if e.Reason != "" {
			fmt.Fprintf(g.stdout, "Reason: %s\n", e.Reason)
		}
		if e.CreatedBy != "" {
			fmt.Fprintf(g.stdout, "Created By: %s\n", e.CreatedBy)
		}
		if e.ExpiresAt != nil {
			fmt.Fprintf(g.stdout, "Expires At: %s\n", e.ExpiresAt.Format("2006-01-02 15:04:05"))
		}
		status := "active"
		if !m.Active(e) {
			status = "inactive"
		}
		fmt.Fprintf(g.stdout, "Status: %s\n\n", status)
	}
	return nil
}

// AllowlistAddCmd adds an entry
type AllowlistAddCmd struct {
	AllowlistFile

	Value     string        `arg:"" help:"Literal value to allow"`
	Language  string        `short:"l" help:"Only allow the value for this language"`
	Reason    string        `short:"r" help:"Why the value is allowed"`
	ExpiresIn time.Duration `name:"expires-in" help:"Expire the entry after this duration, e.g. 720h"`
}

func (c *AllowlistAddCmd) Run(g *Globals) error {
	m, err := c.manager(g)
	if err != nil {
		return err
	}
	entry := allowlist.Entry{
		Value:     c.Value,
		Language:  c.Language,
		Reason:    c.Reason,
		CreatedBy: currentUser(),
	}
	if c.ExpiresIn > 0 {
		expires := time.Now().Add(c.ExpiresIn).UTC()
		entry.ExpiresAt = &expires
	}
	if err := m.Add(entry); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout, "Added %q to %s\n", c.Value, m.Path())
	return nil
}

// AllowlistRemoveCmd removes an entry
type AllowlistRemoveCmd struct {
	AllowlistFile

	Value    string `arg:"" help:"Value to remove"`
	Language string `short:"l" help:"Language of the entry"`
}

func (c *AllowlistRemoveCmd) Run(g *Globals) error {
	m, err := c.manager(g)
	if err != nil {
		return err
	}
	if err := m.Remove(c.Value, c.Language); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout, "Removed %q from %s\n", c.Value, m.Path())
	return nil
}

// AllowlistCleanupCmd removes expired entries
type AllowlistCleanupCmd struct {
	AllowlistFile
}

func (c *AllowlistCleanupCmd) Run(g *Globals) error {
	m, err := c.manager(g)
	if err != nil {
		return err
	}
	removed, err := m.CleanupExpired()
	if err != nil {
		return err
	}
	fmt.Fprintf(g.stdout, "Removed %d expired entries\n", removed)
	return nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
