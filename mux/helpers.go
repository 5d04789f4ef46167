package mux

import (
	"fmt"
	"path"
	"regexp"
	"slices"
	"strings"
)

// cleanPath removes dot segments and repeated slashes from p (RFC 3986
// section 5.2.4). The result is rooted and keeps a trailing slash.
func cleanPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	cleaned := path.Clean(p)
	if cleaned != "/" && strings.HasSuffix(p, "/") {
		return cleaned + "/"
	}

	return cleaned
}

// checkDuplicateParams reports the first placeholder name used twice.
func checkDuplicateParams(names []string) error {
	for i, n := range names {
		if slices.Contains(names[:i], n) {
			return fmt.Errorf("duplicated placeholder %q", n)
		}
	}

	return nil
}

// joinTemplate prefixes a method-level template with a type-level base path.
// The base is literal text. A raw regexp method template keeps its anchor in
// front of the quoted base. Any other template would turn a base with
// regexp characters into a raw regexp and lose its placeholders, so such a
// base is rejected.
func joinTemplate(base, tpl string) (string, error) {
	switch {
	case base == "":
		return tpl, nil
	case strings.HasPrefix(tpl, "^"):
		return "^" + regexp.QuoteMeta(strings.TrimRight(base, "/")) + tpl[1:], nil
	case strings.ContainsAny(base, regexpMeta):
		return "", fmt.Errorf("%w: base path %q contains regexp characters, use a method template starting with ^",
			ErrInvalidRoute, base)
	case tpl == "":
		return base, nil
	}

	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(tpl, "/"), nil
}
