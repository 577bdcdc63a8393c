// Package template discovers and loads content-template bundles: named
// directories of markdown files that manage_sections-shaped handlers can
// stamp onto a project, feature or task in one call. Templates are
// external content the engine never generates.
package template

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Section is one file within a template bundle: its title (the filename
// stem) and raw content.
type Section struct {
	Title   string
	Content string
}

// Loader reads template bundles from Dir, where each bundle is a
// subdirectory of Dir holding one or more *.md files.
type Loader struct {
	Dir string
}

// NewLoader wraps the directory template bundles live under, conventionally
// <project root>/.taskorchestrator/templates.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// List returns the names of every available template bundle, sorted.
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads every *.md file in the named bundle, sorted by filename so
// ordinal assignment (by the caller) is stable across repeated applies.
func (l *Loader) Load(name string) ([]Section, error) {
	dir := filepath.Join(l.Dir, name)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("template %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", name, err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	sections := make([]Section, 0, len(files))
	for _, f := range files {
		content, err := os.ReadFile(filepath.Join(dir, f))
		if err != nil {
			return nil, fmt.Errorf("read %s/%s: %w", name, f, err)
		}
		sections = append(sections, Section{
			Title:   strings.TrimSuffix(f, ".md"),
			Content: string(content),
		})
	}
	return sections, nil
}
