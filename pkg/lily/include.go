package lily

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// Lookup resolves an include reference to its content. Resolve returns a
// canonical identity for the reference (used for cycle detection) along
// with the referenced text. A missing reference must be an error, never an
// empty expansion.
type Lookup interface {
	Resolve(ref string) (id string, content string, err error)
}

// DirLookup resolves include references as file paths relative to Base.
type DirLookup struct {
	Base string
}

// Resolve reads the referenced file. The canonical identity is the
// absolute cleaned path, so the same file reached through different
// relative spellings still counts as one identity.
func (d DirLookup) Resolve(ref string) (string, string, error) {
	path := ref
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.Base, ref)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("cannot resolve include %q: %w", ref, err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", "", fmt.Errorf("cannot read include %q: %w", ref, err)
	}
	return abs, string(data), nil
}

var includeRe = regexp.MustCompile(`\\include\s+"([^"]+)"`)

// ExpandIncludes substitutes \include "ref" directives with their
// referenced content, recursively, before tokenization. An identity that
// recurs while still on the active expansion path is an IncludeCycleError;
// diamond inclusion (the same file reached twice on separate paths)
// succeeds.
func ExpandIncludes(src string, lookup Lookup) (string, error) {
	return expandIncludes(src, lookup, nil)
}

func expandIncludes(src string, lookup Lookup, path []string) (string, error) {
	for {
		loc := includeRe.FindStringSubmatchIndex(src)
		if loc == nil {
			return src, nil
		}
		ref := src[loc[2]:loc[3]]

		id, content, err := lookup.Resolve(ref)
		if err != nil {
			return "", err
		}
		for _, seen := range path {
			if seen == id {
				return "", &IncludeCycleError{Path: append(append([]string{}, path...), id)}
			}
		}

		expanded, err := expandIncludes(content, lookup, append(path, id))
		if err != nil {
			return "", err
		}
		src = src[:loc[0]] + expanded + src[loc[1]:]
	}
}
