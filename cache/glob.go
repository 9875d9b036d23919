package cache

import (
	"regexp"
	"strings"
)

// globMatcher translates a glob pattern where * matches any run of characters
// into a predicate over keys
func globMatcher(pattern string) func(string) bool {
	if pattern == "" || pattern == "*" {
		return func(string) bool { return true }
	}

	parts := strings.Split(pattern, "*")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	re := regexp.MustCompile("^" + strings.Join(parts, ".*") + "$")

	return re.MatchString
}
