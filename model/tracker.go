package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/releasetrain/errors"
)

const (
	// GitHubTicketPattern matches GitHub issue references such as #123, gh-123 or 123.
	GitHubTicketPattern = `(#|gh-|GH-)?\d+`

	// JiraTicketPattern matches Jira issue keys such as DATACMNS-1234.
	JiraTicketPattern = `[A-Z][A-Z0-9]+-\d+`
)

// Tracker is an issue tracker a project files its tickets in.
type Tracker struct {
	name    string
	pattern *regexp.Regexp
}

// NewTracker creates a tracker whose ticket identifiers match pattern.
// The pattern is matched against whole names.
func NewTracker(name, pattern string) (Tracker, error) {
	if strings.TrimSpace(name) == "" {
		return Tracker{}, errors.New(errors.CodeInvalidConfig, "tracker name cannot be empty")
	}
	re, err := regexp.Compile(fmt.Sprintf("^(?:%s)$", pattern))
	if err != nil {
		return Tracker{}, errors.Wrap(err, errors.CodeInvalidConfig, fmt.Sprintf("invalid ticket pattern for tracker %s", name))
	}
	return Tracker{name: name, pattern: re}, nil
}

// GitHub is the GitHub issue tracker.
var GitHub = mustTracker("GitHub", GitHubTicketPattern)

// Jira is the Jira issue tracker.
var Jira = mustTracker("Jira", JiraTicketPattern)

func mustTracker(name, pattern string) Tracker {
	t, err := NewTracker(name, pattern)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the tracker name.
func (t Tracker) Name() string { return t.name }

// TicketPattern returns the anchored ticket identifier pattern.
func (t Tracker) TicketPattern() string {
	if t.pattern == nil {
		return ""
	}
	return t.pattern.String()
}

// Matches reports whether name is a ticket identifier of this tracker.
func (t Tracker) Matches(name string) bool {
	return t.pattern != nil && t.pattern.MatchString(name)
}

// Equal reports whether t and o are the same tracker.
func (t Tracker) Equal(o Tracker) bool {
	return strings.EqualFold(t.name, o.name)
}

// String returns the tracker name.
func (t Tracker) String() string { return t.name }
