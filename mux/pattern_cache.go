package mux

import (
	"regexp"
	"sync"
)

// compiled holds every expression built from a registered template. Routes
// are registered far less often than they are matched, and equal templates
// share one *regexp.Regexp.
var compiled sync.Map // string -> *regexp.Regexp

func compileRegexp(expr string) (*regexp.Regexp, error) {
	if re, ok := compiled.Load(expr); ok {
		return re.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	shared, _ := compiled.LoadOrStore(expr, re)

	return shared.(*regexp.Regexp), nil
}

// mustCompileRegexp panics if expr does not compile. It is used for
// expressions built only from quoted literals and fixed groups.
func mustCompileRegexp(expr string) *regexp.Regexp {
	re, err := compileRegexp(expr)
	if err != nil {
		panic("mux: " + err.Error())
	}

	return re
}
