// Package discovery reads the line-oriented provider index used to
// autoload modules. The index is a directory of plain files: each file is
// named after a provider interface and lists registered implementation
// names, one per line. Blank lines and '#' comments are ignored.
//
// Resolution of implementation names to concrete module descriptors happens
// in the registry's factory table; this package only knows the wire format.
package discovery

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Record is one (provider, implementation) entry read from an index.
type Record struct {
	Provider string
	Impl     string
	Line     int
}

// Source is a read-only provider index. Sources may be shared between
// concurrently constructed runtimes.
type Source struct {
	FS    fs.FS
	Label string
}

// Dir returns a Source backed by a directory on disk.
func Dir(path string) Source {
	return Source{FS: os.DirFS(path), Label: path}
}

// Records reads every provider file in the source and returns all entries
// in provider-file order, preserving line order within each file.
func (s Source) Records() ([]Record, error) {
	if s.FS == nil {
		return nil, nil
	}
	entries, err := fs.ReadDir(s.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("discovery: reading index %q: %w", s.Label, err)
	}

	var records []Record
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		recs, err := s.RecordsFor(entry.Name())
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}
	return records, nil
}

// RecordsFor reads the entries of a single provider file.
func (s Source) RecordsFor(provider string) ([]Record, error) {
	f, err := s.FS.Open(provider)
	if err != nil {
		return nil, fmt.Errorf("discovery: provider %q in index %q: %w", provider, s.Label, err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		records = append(records, Record{Provider: provider, Impl: text, Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("discovery: provider %q in index %q: %w", provider, s.Label, err)
	}
	return records, nil
}

// Error reports a discovery record that could not be resolved to a
// loadable module descriptor. Unresolvable records are fatal to assembly.
type Error struct {
	Provider string
	Impl     string
	Source   string
	Reason   string
}

// Error implements the error interface for Error.
func (e *Error) Error() string {
	return fmt.Sprintf("discovery: provider %q entry %q (index %q): %s", e.Provider, e.Impl, e.Source, e.Reason)
}
