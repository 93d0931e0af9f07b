package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Migration is one schema migration script.
type Migration struct {
	// Filename is the script's base name, e.g. "001_create_users.sql".
	Filename string

	// SQL is the script body, one or more semicolon-terminated statements.
	SQL string

	// AppliedAt is when the ledger recorded the script. Zero while pending.
	AppliedAt time.Time
}

// IsApplied returns true once the migration has a ledger row.
func (m Migration) IsApplied() bool {
	return !m.AppliedAt.IsZero()
}

// LedgerEntry is one row of the migrations ledger table.
type LedgerEntry struct {
	ID       int64
	Filename string
	RunAt    time.Time
}

// MigrationExt is the file extension of migration scripts.
const MigrationExt = ".sql"

// MigrationOrdinal returns the leading run of digits of a filename and
// false if the name does not start with a digit.
func MigrationOrdinal(filename string) (string, bool) {
	end := 0
	for end < len(filename) && filename[end] >= '0' && filename[end] <= '9' {
		end++
	}
	if end == 0 {
		return "", false
	}
	return filename[:end], true
}

// CompareMigrations orders filenames by numeric prefix. Names without a
// prefix sort after all numbered ones; ties fall back to the filename.
func CompareMigrations(a, b string) int {
	ka, oka := MigrationOrdinal(a)
	kb, okb := MigrationOrdinal(b)
	switch {
	case oka && !okb:
		return -1
	case !oka && okb:
		return 1
	case oka && okb:
		if c := compareDigits(ka, kb); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

// compareDigits compares two digit strings numerically without parsing,
// so prefixes longer than an int64 still order correctly.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// SortMigrationFilenames returns the filenames in apply order.
func SortMigrationFilenames(filenames []string) []string {
	out := make([]string, len(filenames))
	copy(out, filenames)
	sort.SliceStable(out, func(i, j int) bool {
		return CompareMigrations(out[i], out[j]) < 0
	})
	return out
}

// PendingMigrations returns the discovered filenames missing from applied,
// in apply order.
func PendingMigrations(discovered []string, applied []string) []string {
	done := make(map[string]bool, len(applied))
	for _, name := range applied {
		done[name] = true
	}
	var pending []string
	for _, name := range discovered {
		if !done[name] {
			pending = append(pending, name)
		}
	}
	return SortMigrationFilenames(pending)
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// MigrationFilename builds the filename for a new migration from a
// free-form description, numbered after the existing filenames.
func MigrationFilename(name string, existing []string) (string, error) {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if slug == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidMigrationName, name)
	}

	next := 1
	for _, f := range existing {
		digits, ok := MigrationOrdinal(f)
		if !ok {
			continue
		}
		var n int
		if _, err := fmt.Sscanf(digits, "%d", &n); err == nil && n >= next {
			next = n + 1
		}
	}
	return fmt.Sprintf("%03d_%s%s", next, slug, MigrationExt), nil
}
