package mux

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// scanTagName is the struct tag key read from the embedded Resource field.
const scanTagName = "vine"

var (
	contextType  = reflect.TypeOf((*Context)(nil))
	resourceType = reflect.TypeOf(Resource{})
)

// Resource marks a handler type. Embed it and tag the field to give every
// route of the type a base path, or to opt unmarked methods in:
//
//	type Users struct {
//		mux.Resource `vine:"base=/users,implicit"`
//	}
//
// The implicit option registers every eligible method that has no marker
// of its own for all methods on the base path.
type Resource struct{}

// Marker describes one route produced by a handler method. A zero Method
// means MethodAll and an empty Path matches every path below the base.
type Marker struct {
	Method Method
	Path   string
}

// Mark returns a Marker for method and path.
func Mark(method Method, path string) Marker {
	return Marker{Method: method, Path: path}
}

// Markers maps Go method names to the routes they serve. A method listed
// with several markers is registered once per marker.
type Markers map[string][]Marker

// Marked is implemented by handler types that declare route markers.
//
//	func (Users) RouteMarkers() mux.Markers {
//		return mux.Markers{
//			"List": {mux.Mark(mux.MethodGet, "")},
//			"Show": {mux.Mark(mux.MethodGet, "/[id]")},
//		}
//	}
//
// RouteMarkers is called once per registration on a fresh or supplied
// receiver.
type Marked interface {
	RouteMarkers() Markers
}

// ScanTarget is an explicit list of handler types, values and functions
// registered together by Router.RegisterTarget. Packages typically build
// one in an init function or a constructor.
type ScanTarget struct {
	name   string
	types  []reflect.Type
	values []any
	funcs  []scanFunc
}

type scanFunc struct {
	name    string
	handler HandlerFunc
	markers []Marker
}

// NewScanTarget returns an empty target. The name is used in errors only.
func NewScanTarget(name string) *ScanTarget {
	return &ScanTarget{name: name}
}

// Name returns the target name.
func (t *ScanTarget) Name() string {
	return t.name
}

// AddTypes adds handler types. Each type is instantiated with its zero
// value when the target is registered.
func (t *ScanTarget) AddTypes(types ...reflect.Type) *ScanTarget {
	t.types = append(t.types, types...)
	return t
}

// AddValues adds configured handler values used as method receivers.
func (t *ScanTarget) AddValues(values ...any) *ScanTarget {
	t.values = append(t.values, values...)
	return t
}

// AddFunc adds a plain handler function. Without markers it is registered
// for all methods on every path.
func (t *ScanTarget) AddFunc(name string, handler HandlerFunc, markers ...Marker) *ScanTarget {
	t.funcs = append(t.funcs, scanFunc{name: name, handler: handler, markers: markers})
	return t
}

// RegisterType registers the marked methods of t, calling them on a new
// zero value of the type. t may be a struct type or a pointer to one.
//
// Every problem found in the type is reported and the type registers no
// routes unless all of its routes are valid. Types that cannot be
// instantiated fail with a *ConfigError listing their route methods.
func (r *Router) RegisterType(t reflect.Type) ([]*Route, error) {
	if t == nil {
		return nil, &ConfigError{Reason: "nil type"}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if !constructible(t) {
		methods := eligibleMethods(t)
		if len(methods) == 0 {
			return nil, nil
		}

		return nil, &ConfigError{
			Type:    t.String(),
			Methods: methods,
			Reason:  fmt.Sprintf("%s kind is not default-constructible", t.Kind()),
		}
	}

	return r.registerReceiver(t, reflect.New(t))
}

// RegisterValue registers the marked methods of v using v as the receiver.
// A non-pointer value is copied so that pointer methods are included.
func (r *Router) RegisterValue(v any) ([]*Route, error) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, &ConfigError{Reason: "nil handler value"}
	}

	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, &ConfigError{Type: rv.Type().String(), Reason: "nil handler value"}
		}
		return r.registerReceiver(rv.Type().Elem(), rv)
	}

	ptr := reflect.New(rv.Type())
	ptr.Elem().Set(rv)

	return r.registerReceiver(rv.Type(), ptr)
}

// RegisterTarget registers every concrete type, value and function of the
// target. Errors from all of them are collected; items without errors are
// registered regardless.
func (r *Router) RegisterTarget(target *ScanTarget) ([]*Route, error) {
	if target == nil {
		return nil, &ConfigError{Reason: "nil scan target"}
	}

	var (
		routes []*Route
		merr   *multierror.Error
	)

	collect := func(rs []*Route, err error) {
		routes = append(routes, rs...)
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	for _, t := range target.types {
		if t == nil || t.Kind() == reflect.Interface {
			continue
		}
		collect(r.RegisterType(t))
	}

	for _, v := range target.values {
		collect(r.RegisterValue(v))
	}

	for _, fn := range target.funcs {
		collect(r.registerFunc(fn))
	}

	if merr != nil {
		return routes, fmt.Errorf("mux: scan target %q: %w", target.name, merr)
	}

	return routes, nil
}

func (r *Router) registerFunc(fn scanFunc) ([]*Route, error) {
	markers := fn.markers
	if len(markers) == 0 {
		markers = []Marker{{}}
	}

	routes := make([]*Route, 0, len(markers))
	for i, m := range markers {
		route, err := newRoute(fn.handler, m.Method, m.Path)
		if err != nil {
			return nil, &ConfigError{Methods: []string{fn.name}, Reason: configReason(err)}
		}
		route.name = markerRouteName("", fn.name, i)
		routes = append(routes, route)
	}

	if err := r.appendRoutes(routes); err != nil {
		return nil, err
	}

	return routes, nil
}

// registerReceiver builds every route of type t bound to recv, a pointer to
// a t value, and appends them only if all are valid.
func (r *Router) registerReceiver(t reflect.Type, recv reflect.Value) ([]*Route, error) {
	typeName := t.String()

	res, err := parseResource(t)
	if err != nil {
		return nil, &ConfigError{Type: typeName, Reason: err.Error()}
	}

	markers := make(Markers)
	if m, ok := recv.Interface().(Marked); ok {
		for name, marks := range m.RouteMarkers() {
			markers[name] = marks
		}
	}

	eligible := eligibleMethods(t)

	var merr *multierror.Error

	for _, name := range sortedKeys(markers) {
		if !slices.Contains(eligible, name) {
			merr = multierror.Append(merr, &ConfigError{
				Type:    typeName,
				Methods: []string{name},
				Reason:  "marker names a missing or ineligible method, want func(*mux.Context) *mux.Context",
			})
		}
	}

	if res.implicit {
		for _, name := range eligible {
			if _, ok := markers[name]; !ok {
				markers[name] = []Marker{{}}
			}
		}
	}

	var routes []*Route
	for _, name := range eligible {
		marks, ok := markers[name]
		if !ok {
			continue
		}

		fn, ok := recv.MethodByName(name).Interface().(func(*Context) *Context)
		if !ok {
			continue
		}

		for i, m := range marks {
			route, err := markerRoute(fn, res.base, m)
			if err != nil {
				merr = multierror.Append(merr, &ConfigError{
					Type:    typeName,
					Methods: []string{name},
					Reason:  configReason(err),
				})
				continue
			}
			route.name = markerRouteName(typeName, name, i)
			routes = append(routes, route)
		}
	}

	if merr != nil {
		return nil, merr.ErrorOrNil()
	}

	if err := r.appendRoutes(routes); err != nil {
		return nil, err
	}

	return routes, nil
}

type resourceOptions struct {
	base     string
	implicit bool
}

// parseResource reads the tag of an embedded Resource field.
func parseResource(t reflect.Type) (resourceOptions, error) {
	var opts resourceOptions

	if t.Kind() != reflect.Struct {
		return opts, nil
	}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous || f.Type != resourceType {
			continue
		}

		tag, ok := f.Tag.Lookup(scanTagName)
		if !ok {
			return opts, nil
		}

		for _, part := range strings.Split(tag, ",") {
			part = strings.TrimSpace(part)
			switch {
			case part == "":
			case part == "implicit":
				opts.implicit = true
			case strings.HasPrefix(part, "base="):
				opts.base = strings.TrimPrefix(part, "base=")
			default:
				return opts, fmt.Errorf("unknown resource option %q", part)
			}
		}

		return opts, nil
	}

	return opts, nil
}

// eligibleMethods returns the exported methods of *t (or of t itself for
// interfaces) shaped func(*Context) *Context, sorted by name.
func eligibleMethods(t reflect.Type) []string {
	var (
		methods []string
		set     = t
		offset  = 0
	)

	if t.Kind() != reflect.Interface {
		set = reflect.PointerTo(t)
		offset = 1
	}

	for i := 0; i < set.NumMethod(); i++ {
		m := set.Method(i)
		if !m.IsExported() {
			continue
		}

		mt := m.Type
		if mt.NumIn() != offset+1 || mt.NumOut() != 1 {
			continue
		}
		if mt.In(offset) != contextType || mt.Out(0) != contextType {
			continue
		}

		methods = append(methods, m.Name)
	}

	return methods
}

// constructible reports whether a usable zero value of t can be created.
func constructible(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Interface, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return false
	case reflect.Pointer:
		return constructible(t.Elem())
	default:
		return true
	}
}

func markerRouteName(typeName, method string, index int) string {
	name := method
	if typeName != "" {
		name = typeName + "." + method
	}
	if index > 0 {
		name = fmt.Sprintf("%s#%d", name, index+1)
	}

	return name
}

// configReason strips the package prefix of an error from newRoute.
func markerRoute(fn HandlerFunc, base string, m Marker) (*Route, error) {
	template, err := joinTemplate(base, m.Path)
	if err != nil {
		return nil, err
	}

	return newRoute(fn, m.Method, template)
}

func configReason(err error) string {
	if ce, ok := err.(*ConfigError); ok {
		return ce.Reason
	}

	return err.Error()
}

func sortedKeys(m Markers) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
