package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Selection is a filter's decision about one test.
type Selection int

const (
	// Selected means the test runs.
	Selected Selection = iota
	// NotSelected means the test does not run its own checks, but any subtests it starts are
	// filtered individually. This lets a pattern that names a nested test reach it.
	NotSelected
	// Excluded means the test and all of its subtests are skipped.
	Excluded
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) Selection

type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) Selection {
	name := id.String()
	if r.MustNotMatch.AnyMatch(name) {
		return Excluded
	}
	if r.MustMatch.IsDefined() && !r.MustMatch.AnyMatch(name) {
		return NotSelected
	}
	return Selected
}

func (r RegexFilters) IsDefined() bool {
	return r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined()
}

type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if !filters.IsDefined() {
		return
	}
	fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
	if filters.MustMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
	}
	if filters.MustNotMatch.IsDefined() {
		fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
	}
	fmt.Fprintln(out)
}
