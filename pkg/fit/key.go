package fit

import (
	"regexp"
	"strings"
)

// copySuffixRe matches stems whose duplicate exports differ only in a final
// digit after a "0000" anchor, e.g. M1I00000..M1I00009. Other numeric
// endings (0050 vs 0056) must never match.
var copySuffixRe = regexp.MustCompile(`^(.*0000)(\d)$`)

// CopySuffixKey extracts the duplicate-group key from a filename: the stem
// prefix ending in "0000" and the single trailing copy digit. ok is false
// when the filename has no extension or its stem does not follow the
// copy-suffix convention.
func CopySuffixKey(filename string) (prefix, digit string, ok bool) {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return "", "", false
	}
	m := copySuffixRe.FindStringSubmatch(filename[:i])
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// KeeperPath returns the path of the keeper a victim collapses into: the
// same name with the trailing copy digit replaced by 0.
func KeeperPath(victim string) (string, bool) {
	dir, name := SplitDirFile(victim)
	prefix, _, ok := CopySuffixKey(name)
	if !ok {
		return "", false
	}
	ext := name[strings.LastIndex(name, ".")+1:]
	keep := prefix + "0." + ext
	if dir != "" {
		keep = dir + "/" + keep
	}
	return keep, true
}
