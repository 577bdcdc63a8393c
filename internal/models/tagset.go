// Package models defines the core domain entities of the task orchestrator:
// Project, Feature, Task, Section, Dependency and RoleTransition.
package models

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var tagFold = cases.Fold()

// TagSet is an ordered, de-duplicated collection of tags. Membership is
// case-insensitive (folded with golang.org/x/text/cases) but the original
// casing of the first insertion is preserved for display and storage.
type TagSet struct {
	order  []string
	index  map[string]string // folded -> original
	counts map[string]int    // folded -> occurrences seen by Add
}

// NewTagSet builds a TagSet from a slice of raw tag strings, dropping blanks
// and duplicates (case-insensitively).
func NewTagSet(tags []string) TagSet {
	ts := TagSet{index: make(map[string]string)}
	for _, t := range tags {
		ts.Add(t)
	}
	return ts
}

// Add inserts a tag if not already present (case-insensitively) and bumps
// its occurrence count. No-op on blank input.
func (ts *TagSet) Add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	if ts.index == nil {
		ts.index = make(map[string]string)
	}
	if ts.counts == nil {
		ts.counts = make(map[string]int)
	}
	key := tagFold.String(tag)
	ts.counts[key]++
	if _, ok := ts.index[key]; ok {
		return
	}
	ts.index[key] = tag
	ts.order = append(ts.order, key)
}

// Has reports whether tag is a member, case-insensitively.
func (ts TagSet) Has(tag string) bool {
	if ts.index == nil {
		return false
	}
	_, ok := ts.index[tagFold.String(strings.TrimSpace(tag))]
	return ok
}

// Intersects reports whether ts shares at least one tag with other.
func (ts TagSet) Intersects(other []string) bool {
	for _, t := range other {
		if ts.Has(t) {
			return true
		}
	}
	return false
}

// Slice returns the tags in insertion order, using their original casing.
func (ts TagSet) Slice() []string {
	out := make([]string, 0, len(ts.order))
	for _, key := range ts.order {
		out = append(out, ts.index[key])
	}
	return out
}

// Len returns the number of distinct tags.
func (ts TagSet) Len() int {
	return len(ts.order)
}

// SortedSlice returns the tags in their original spelling, sorted
// byte-wise (case-sensitive), for stable
// output such as list_tags aggregation.
func (ts TagSet) SortedSlice() []string {
	out := ts.Slice()
	sort.Strings(out)
	return out
}

// TagCount pairs a tag with how many times Add saw it, for list_tags.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Counts returns every tag's occurrence count, sorted by tag for stable
// output.
func (ts TagSet) Counts() []TagCount {
	out := make([]TagCount, 0, len(ts.order))
	for _, key := range ts.order {
		out = append(out, TagCount{Tag: ts.index[key], Count: ts.counts[key]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tag < out[j].Tag })
	return out
}

// titleCaser renders a status/role label for human-readable log and
// display contexts (e.g. "in-development" -> "In Development").
var titleCaser = cases.Title(language.English)

// TitleCase converts a hyphen-separated wire label into a human-readable
// title, for informational logging only - never for comparisons.
func TitleCase(label string) string {
	words := strings.Split(label, "-")
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}
