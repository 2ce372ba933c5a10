package fit

import "sort"

// Entry is a classified monitor-FIT archive member, split into its directory
// and filename components.
type Entry struct {
	Dir  string
	Name string
}

type groupKey struct {
	dir    string
	prefix string
}

// PlanDeletions computes the normalized paths of duplicate copies to remove.
// Entries group by (directory, copy-suffix prefix); within a group every
// non-zero digit is a victim, but only when the digit-0 keeper is actually
// present — a group without its keeper is left alone rather than losing its
// only copies. Entries without a copy-suffix key are never touched.
//
// The result is deduplicated and sorted so repeated runs over the same input
// plan identically.
func PlanDeletions(entries []Entry) []string {
	groups := make(map[groupKey][]Entry)
	digits := make(map[groupKey]map[string]bool)

	for _, e := range entries {
		prefix, digit, ok := CopySuffixKey(e.Name)
		if !ok {
			continue
		}
		k := groupKey{dir: e.Dir, prefix: prefix}
		groups[k] = append(groups[k], e)
		if digits[k] == nil {
			digits[k] = make(map[string]bool)
		}
		digits[k][digit] = true
	}

	seen := make(map[string]bool)
	victims := []string{}
	for k, group := range groups {
		if !digits[k]["0"] {
			continue
		}
		for _, e := range group {
			_, digit, ok := CopySuffixKey(e.Name)
			if !ok || digit == "0" {
				continue
			}
			path := e.Name
			if e.Dir != "" {
				path = e.Dir + "/" + e.Name
			}
			if !seen[path] {
				seen[path] = true
				victims = append(victims, path)
			}
		}
	}

	sort.Strings(victims)
	return victims
}
