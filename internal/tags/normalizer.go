// Package tags rewrites drifted tag spellings and drops retired session tags.
package tags

import (
	"errors"
	"fmt"
)

// DefaultBlocklist lists retired or irrelevant session tags that are removed outright.
var DefaultBlocklist = []string{
	"gate2018-ce-2", "gate2015-ec-1", "gateme-2022-set1", "gateme-2022-set2",
	"gatecivil-2022-set1", "gatecivil-2021-set1", "gateme-2021-set1",
	"gatecivil-2024-set2", "gatecivil-2024-set1", "gateme-2024",
	"gateme-2021-set2", "gatecivil-2023-set1", "gateece-2024",
	"gateme-2020-set2", "gate2020-ce-1", "gateme-2023", "gate2015-ec-3",
	"gateoverflow-test-series", "gatecse-2026-test-series",
	"gatecse-2014-set1", "gate2026_cs_set1_memorybased",
}

// DefaultRenames maps known year-format drift to the canonical spelling.
var DefaultRenames = map[string]string{
	"gatecse2025-set1": "gatecse-2025-set1",
	"gatecse2025-set2": "gatecse-2025-set2",
}

// Rules are the tables driving the normalizer. Matching is exact and case-sensitive.
type Rules struct {
	Blocklist []string          `yaml:"blocklist"`
	Renames   map[string]string `yaml:"renames"`
}

// DefaultRules returns a copy of the built-in tables.
func DefaultRules() Rules {
	renames := make(map[string]string, len(DefaultRenames))
	for from, to := range DefaultRenames {
		renames[from] = to
	}
	return Rules{
		Blocklist: append([]string(nil), DefaultBlocklist...),
		Renames:   renames,
	}
}

// ErrRenameIntoBlocklist is returned when a rename target would be dropped on the next run.
var ErrRenameIntoBlocklist = errors.New("rename target is blocklisted")

// Validate rejects tables whose output would not be stable across runs.
func (r Rules) Validate() error {
	blocked := toSet(r.Blocklist)
	for from, to := range r.Renames {
		if to == "" {
			return fmt.Errorf("rename %q: empty target", from)
		}
		if _, ok := blocked[to]; ok {
			return fmt.Errorf("rename %q -> %q: %w", from, to, ErrRenameIntoBlocklist)
		}
		if next, chained := r.Renames[to]; chained && next != to {
			return fmt.Errorf("rename %q -> %q is chained to %q", from, to, next)
		}
	}
	return nil
}

// Normalizer applies Rules to tag sequences.
type Normalizer struct {
	blocked map[string]struct{}
	renames map[string]string
}

// NewNormalizer builds a normalizer from rules.
func NewNormalizer(rules Rules) *Normalizer {
	renames := make(map[string]string, len(rules.Renames))
	for from, to := range rules.Renames {
		renames[from] = to
	}
	return &Normalizer{
		blocked: toSet(rules.Blocklist),
		renames: renames,
	}
}

// IsBlocked reports whether tag is on the blocklist.
func (n *Normalizer) IsBlocked(tag string) bool {
	_, ok := n.blocked[tag]
	return ok
}

// Normalize drops blocklisted tags, rewrites drifted spellings and removes
// duplicates keeping first-seen order. The input is not modified.
func (n *Normalizer) Normalize(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))

	for _, tag := range in {
		if n.IsBlocked(tag) {
			continue
		}
		if canonical, ok := n.renames[tag]; ok {
			tag = canonical
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}

	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
