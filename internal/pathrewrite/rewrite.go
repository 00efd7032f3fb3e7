// Package pathrewrite maps scan-reported source paths onto repository paths.
package pathrewrite

import (
	"fmt"
	"strings"
)

// Rule replaces the first occurrence of Old with New.
type Rule struct {
	Old string
	New string
}

// Rules are applied first-match: only one rule ever rewrites a path.
type Rules []Rule

// ParseRule parses "old:new". New may be empty; old may not.
// Only the first colon separates the halves.
func ParseRule(s string) (Rule, error) {
	old, replacement, found := strings.Cut(s, ":")
	if !found {
		return Rule{}, fmt.Errorf("path rewrite rule %q: expected old:new", s)
	}
	if old == "" {
		return Rule{}, fmt.Errorf("path rewrite rule %q: old prefix is empty", s)
	}
	return Rule{Old: old, New: replacement}, nil
}

// ParseRules parses every non-blank entry, keeping their order.
func ParseRules(entries []string) (Rules, error) {
	var rules Rules
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		rule, err := ParseRule(entry)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

// Rewrite applies the first rule whose Old occurs anywhere in path.
func (rs Rules) Rewrite(path string) string {
	for _, r := range rs {
		if strings.Contains(path, r.Old) {
			return strings.Replace(path, r.Old, r.New, 1)
		}
	}
	return path
}

func (r Rule) String() string {
	return r.Old + ":" + r.New
}
