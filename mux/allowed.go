package mux

import "slices"

// AllowedMethods returns the methods of the enabled routes whose pattern
// matches path, in registration order and without duplicates. Routes
// registered for MethodAll are not listed.
func (r *Router) AllowedMethods(path string) []string {
	var methods []string

	for _, route := range r.Routes() {
		if !route.Enabled() || route.method == MethodAll {
			continue
		}

		m := string(route.method)
		if route.pattern.MatchString(path) && !slices.Contains(methods, m) {
			methods = append(methods, m)
		}
	}

	return methods
}
