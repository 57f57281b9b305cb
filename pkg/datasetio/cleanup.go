package datasetio

import (
	"fmt"
	"os"
	"time"
)

// AuditEntry records one cleanup action taken against a stale output file.
type AuditEntry struct {
	Timestamp time.Time
	Path      string
	Removed   bool
	Error     error
}

// Cleaner removes stale output artifacts before a run starts — the
// node-feature CSV is append-only, so a leftover file from a previous run
// would otherwise bleed into the new one's rows.
type Cleaner struct {
	auditLog []AuditEntry
}

// NewCleaner returns an empty Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean removes each of paths if present, skipping any that don't exist, and
// logs every attempt to the audit log.
func (c *Cleaner) Clean(paths ...string) error {
	var firstErr error
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := os.Remove(p)
		removed := err == nil
		if err != nil && os.IsNotExist(err) {
			err = nil
		}
		c.auditLog = append(c.auditLog, AuditEntry{
			Timestamp: time.Now(),
			Path:      p,
			Removed:   removed,
			Error:     err,
		})
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("cleanup: %w", firstErr)
	}
	return nil
}

// AuditLog returns every cleanup action attempted so far.
func (c *Cleaner) AuditLog() []AuditEntry {
	return c.auditLog
}

// Summary reports how many stale files were actually removed.
func (c *Cleaner) Summary() string {
	removed := 0
	for _, e := range c.auditLog {
		if e.Removed {
			removed++
		}
	}
	return fmt.Sprintf("cleanup: %d checked, %d removed", len(c.auditLog), removed)
}
