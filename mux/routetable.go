package mux

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Route table output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// RouteInfo describes one registered route.
type RouteInfo struct {
	Index    int      `json:"index" yaml:"index"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Method   string   `json:"method" yaml:"method"`
	Template string   `json:"template" yaml:"template"`
	Pattern  string   `json:"pattern" yaml:"pattern"`
	Raw      bool     `json:"raw,omitempty" yaml:"raw,omitempty"`
	Params   []string `json:"params,omitempty" yaml:"params,omitempty"`
	Enabled  bool     `json:"enabled" yaml:"enabled"`
}

// RouteTable returns the registered routes in evaluation order.
func (r *Router) RouteTable() []RouteInfo {
	routes := r.Routes()
	table := make([]RouteInfo, 0, len(routes))

	for i, route := range routes {
		table = append(table, RouteInfo{
			Index:    i,
			Name:     route.name,
			Method:   string(route.method),
			Template: route.template,
			Pattern:  route.pattern.String(),
			Raw:      route.pattern.IsRaw(),
			Params:   route.ParamNames(),
			Enabled:  route.Enabled(),
		})
	}

	return table
}

// WriteRouteTable writes the route table to w as YAML or JSON.
func (r *Router) WriteRouteTable(w io.Writer, format string) error {
	table := r.RouteTable()

	switch format {
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(table); err != nil {
			return err
		}
		return enc.Close()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(table)

	default:
		return fmt.Errorf("mux: unsupported route table format %q", format)
	}
}
