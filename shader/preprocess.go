package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// includeRe matches both `#include "file"` and `#pragma include <file>`
// spellings.
var includeRe = regexp.MustCompile(`#\s*(?:pragma\s*)?include\s+[<"]([^">]*)[">]`)

// Resolver reads the contents of an included file by name.
type Resolver func(name string) (string, error)

// FileResolver resolves include names relative to base.
func FileResolver(base string) Resolver {
	return func(name string) (string, error) {
		data, err := os.ReadFile(filepath.Join(base, name))
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// CycleError reports a file that was included again while it was still
// being expanded.
type CycleError struct {
	File string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("include cycle: %q has already been included further up the tree", e.File)
}

// Preprocess recursively expands include directives in source. Each
// directive is replaced by the expanded contents of the named file. The set
// of files on the current inclusion path is tracked so a file including
// itself, directly or through intermediaries, fails with a CycleError;
// sibling branches may include the same file again. Resolver failures are
// returned unchanged. Nothing is cached, the whole tree is re-read on every
// load.
func Preprocess(source string, resolve Resolver) (string, error) {
	return expandIncludes(source, resolve, nil)
}

func expandIncludes(source string, resolve Resolver, path map[string]bool) (string, error) {
	loc := includeRe.FindStringSubmatchIndex(source)
	if loc == nil {
		return source, nil
	}
	name := source[loc[2]:loc[3]]
	if path[name] {
		return "", &CycleError{File: name}
	}

	included, err := resolve(name)
	if err != nil {
		return "", err
	}

	// The included file is expanded with this file on its path; the
	// remainder of this file is not, so siblings may repeat an include.
	branch := make(map[string]bool, len(path)+1)
	for k := range path {
		branch[k] = true
	}
	branch[name] = true

	expanded, err := expandIncludes(included, resolve, branch)
	if err != nil {
		return "", err
	}
	rest, err := expandIncludes(source[loc[1]:], resolve, path)
	if err != nil {
		return "", err
	}

	return source[:loc[0]] + expanded + rest, nil
}
