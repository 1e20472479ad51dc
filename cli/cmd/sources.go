package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// expandSources resolves the file list of a lint session.
//
// Include patterns are doublestar globs matched against slash-separated
// paths relative to root. Arguments containing glob metacharacters are
// treated as extra include patterns; other arguments are taken verbatim.
// Exclude patterns drop matches from either source. Duplicates keep their
// first position.
func expandSources(root string, include, exclude, args []string) ([]string, error) {
	if root == "" {
		root = "."
	}
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid source pattern %q", p)
		}
	}

	patterns := append([]string{}, include...)
	var explicit []string
	for _, a := range args {
		if hasMeta(a) {
			if !doublestar.ValidatePattern(filepath.ToSlash(a)) {
				return nil, fmt.Errorf("invalid source pattern %q", a)
			}
			patterns = append(patterns, filepath.ToSlash(a))
			continue
		}
		explicit = append(explicit, a)
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(rel string) {
		if isExcluded(rel, exclude) {
			return
		}
		if _, dup := seen[rel]; dup {
			return
		}
		seen[rel] = struct{}{}
		files = append(files, filepath.FromSlash(rel))
	}

	fsys := os.DirFS(root)
	for _, p := range patterns {
		matches, err := doublestar.Glob(fsys, p, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", p, err)
		}
		for _, m := range matches {
			add(m)
		}
	}
	for _, f := range explicit {
		add(filepath.ToSlash(filepath.Clean(f)))
	}

	return files, nil
}

func hasMeta(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

// isExcluded reports whether rel matches any exclude pattern.
func isExcluded(rel string, exclude []string) bool {
	for _, p := range exclude {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// matchesSources reports whether rel would be selected by include/exclude.
// Used by watch mode to filter change events.
func matchesSources(rel string, include, exclude []string) bool {
	rel = filepath.ToSlash(rel)
	if isExcluded(rel, exclude) {
		return false
	}
	for _, p := range include {
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
	}
	return false
}
