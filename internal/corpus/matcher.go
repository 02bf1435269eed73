package corpus

import (
	"path/filepath"
	"regexp"
	"strings"
)

type rule struct {
	pattern  string
	negated  bool
	dirOnly  bool
	anchored bool
}

// Matcher applies gitignore-like exclusion rules to profile files, with
// "last rule wins" behavior so user negations can re-include paths.
type Matcher struct {
	rules []rule
}

// NewMatcher builds a matcher from user-provided --exclude patterns. Defaults
// keep version-control and editor litter out of the corpus and can be
// overridden by negation rules.
func NewMatcher(userRules []string) *Matcher {
	defaultRules := []string{
		".git/",
		".svn/",
		"*.bak",
		"*.orig",
		"*~",
	}

	all := make([]string, 0, len(defaultRules)+len(userRules))
	all = append(all, defaultRules...)
	all = append(all, userRules...)

	rules := make([]rule, 0, len(all))
	for _, line := range all {
		if parsed, ok := parseRule(line); ok {
			rules = append(rules, parsed)
		}
	}

	return &Matcher{rules: rules}
}

// ShouldSkip returns true when relPath should be excluded from loading.
func (m *Matcher) ShouldSkip(relPath string, isDir bool) bool {
	relPath = normalizePath(relPath)
	skipped := false
	for _, r := range m.rules {
		if ruleMatches(r, relPath, isDir) {
			skipped = !r.negated
		}
	}
	return skipped
}

func parseRule(line string) (rule, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return rule{}, false
	}

	parsed := rule{}
	if strings.HasPrefix(line, "!") {
		parsed.negated = true
		line = strings.TrimPrefix(line, "!")
	}
	if strings.HasPrefix(line, "/") {
		parsed.anchored = true
		line = strings.TrimPrefix(line, "/")
	}
	if strings.HasSuffix(line, "/") {
		parsed.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}

	line = normalizePath(line)
	if line == "" {
		return rule{}, false
	}
	parsed.pattern = line
	return parsed, true
}

func ruleMatches(r rule, relPath string, isDir bool) bool {
	if r.dirOnly {
		if matchDirectoryPattern(r, relPath) {
			return true
		}
		return isDir && matchPathPattern(r.pattern, filepath.Base(relPath))
	}

	if r.anchored {
		return matchPathPattern(r.pattern, relPath)
	}

	if strings.Contains(r.pattern, "/") {
		if matchPathPattern(r.pattern, relPath) {
			return true
		}
		parts := strings.Split(relPath, "/")
		for i := 1; i < len(parts); i++ {
			if matchPathPattern(r.pattern, strings.Join(parts[i:], "/")) {
				return true
			}
		}
		return false
	}

	if matchPathPattern(r.pattern, filepath.Base(relPath)) {
		return true
	}
	for _, segment := range strings.Split(relPath, "/") {
		if matchPathPattern(r.pattern, segment) {
			return true
		}
	}
	return false
}

func matchDirectoryPattern(r rule, relPath string) bool {
	if r.anchored {
		return relPath == r.pattern || strings.HasPrefix(relPath, r.pattern+"/")
	}
	if relPath == r.pattern || strings.HasPrefix(relPath, r.pattern+"/") {
		return true
	}
	parts := strings.Split(relPath, "/")
	for i := range parts {
		if strings.Join(parts[:i+1], "/") == r.pattern {
			return true
		}
	}
	return false
}

func matchPathPattern(pattern, candidate string) bool {
	ok, err := regexp.MatchString("^"+globToRegex(pattern)+"$", candidate)
	return err == nil && ok
}

func globToRegex(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]

		if ch == '*' {
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				b.WriteString(".*")
				i++
				continue
			}
			b.WriteString("[^/]*")
			continue
		}

		if ch == '?' {
			b.WriteString("[^/]")
			continue
		}

		if strings.ContainsRune(`.+()|[]{}^$\\`, rune(ch)) {
			b.WriteByte('\\')
		}
		b.WriteByte(ch)
	}
	return b.String()
}

func normalizePath(path string) string {
	path = filepath.ToSlash(path)
	path = strings.TrimPrefix(path, "./")
	path = strings.TrimPrefix(path, "/")
	return path
}
