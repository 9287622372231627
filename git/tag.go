package git

import (
	"context"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing"
)

// TagFilter is a predicate function for filtering tags.
// Filters are applied progressively: a tag must pass all of them.
type TagFilter func(name string, ref *plumbing.Reference) bool

// Tags returns the short names of all tags passing filters, sorted.
//
// Context timeout/cancellation is honored during the operation.
func (r *Repo) Tags(ctx context.Context, filters ...TagFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	iter, err := r.repo.Tags()
	if err != nil {
		return nil, WrapError(err, "failed to list tags")
	}

	var tags []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := ref.Name().Short()
		for _, f := range filters {
			if f != nil && !f(name, ref) {
				return nil
			}
		}
		tags = append(tags, name)
		return nil
	})
	if err != nil {
		return nil, WrapError(err, "failed to iterate tags")
	}

	sort.Strings(tags)
	return tags, nil
}

// TagPatternFilter matches tags against a path.Match glob such as "2.3.*".
func TagPatternFilter(pattern string) TagFilter {
	return func(name string, _ *plumbing.Reference) bool {
		return matchesPattern(name, pattern)
	}
}

// TagPrefixFilter matches tags with the given prefix.
func TagPrefixFilter(prefix string) TagFilter {
	return func(name string, _ *plumbing.Reference) bool {
		return strings.HasPrefix(name, prefix)
	}
}

// TagExcludeFilter drops tags matching pattern.
func TagExcludeFilter(pattern string) TagFilter {
	include := TagPatternFilter(pattern)
	return func(name string, ref *plumbing.Reference) bool {
		return !include(name, ref)
	}
}

// matchesPattern reports whether name matches a glob. An empty pattern
// matches everything and malformed patterns match nothing.
func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
