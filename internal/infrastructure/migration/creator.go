package migration

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"text/template"
	"time"
)

// versionLayout sorts lexically in apply order
const versionLayout = "20060102150405"

var fileTemplate = template.Must(template.New("migration").Parse(`-- Migration: {{.Name}}
-- Created: {{.Timestamp}}
-- Description: {{.Description}}

`))

// fileName matches golang-migrate's <version>_<name>.<up|down>.sql naming
var fileName = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)

// ErrInvalidName is returned when a migration name sanitizes to nothing
var ErrInvalidName = errors.New("migration: name must contain letters or digits")

// MigrationFile is a newly created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	Timestamp   string
	UpPath      string
	DownPath    string
}

// Info describes one migration found on disk
type Info struct {
	Version string
	Name    string
	HasDown bool
}

// String renders the base file name
func (i Info) String() string {
	return i.Version + "_" + i.Name
}

// Creator writes migration pairs into a directory
type Creator struct {
	dir string
	now func() time.Time
}

// NewCreator returns a creator for dir
func NewCreator(dir string) *Creator {
	return &Creator{dir: dir, now: time.Now}
}

// Create writes <version>_<name>.up.sql and .down.sql. The version is the
// current UTC time; an existing migration with the same version is an error.
func (c *Creator) Create(name, description string) (*MigrationFile, error) {
	base := sanitizeName(name)
	if base == "" {
		return nil, ErrInvalidName
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	now := c.now().UTC()
	version := now.Format(versionLayout)
	existing, err := List(c.dir)
	if err != nil {
		return nil, err
	}
	for _, m := range existing {
		if m.Version == version {
			return nil, fmt.Errorf("migration version %s already exists (%s)", version, m)
		}
	}

	stem := filepath.Join(c.dir, version+"_"+base)
	mf := &MigrationFile{
		Version:     version,
		Name:        base,
		Description: description,
		Timestamp:   now.Format(time.RFC3339),
		UpPath:      stem + ".up.sql",
		DownPath:    stem + ".down.sql",
	}

	if err := writeFile(mf.UpPath, mf, description); err != nil {
		return nil, err
	}
	if err := writeFile(mf.DownPath, mf, "Rollback "+base); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeFile(path string, mf *MigrationFile, description string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	data := *mf
	data.Description = description
	if err := fileTemplate.Execute(f, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// sanitizeName lowercases name and collapses every run of separators into
// one underscore. Other characters are dropped.
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// List returns the migrations in dir in apply order. A missing directory
// yields an empty list.
func List(dir string) ([]Info, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byKey := make(map[string]*Info)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		parts := fileName.FindStringSubmatch(entry.Name())
		if parts == nil {
			continue
		}
		key := parts[1] + "_" + parts[2]
		info, ok := byKey[key]
		if !ok {
			info = &Info{Version: parts[1], Name: parts[2]}
			byKey[key] = info
		}
		if parts[3] == "down" {
			info.HasDown = true
		}
	}

	out := make([]Info, 0, len(byKey))
	for _, info := range byKey {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
