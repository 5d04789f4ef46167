package mux

import (
	"regexp"
	"strings"
)

// CatchAll is the pattern source produced for an empty template.
const CatchAll = "^.*$"

// regexpMeta lists the characters that mark a template as a raw regular
// expression when they appear outside of placeholder syntax.
const regexpMeta = `\()$+.*`

// placeholderGroup is the capture group substituted for each [name].
const placeholderGroup = "(.+)"

// placeholderRe finds well-formed [name] placeholders. Anything else in
// square brackets is literal text.
var placeholderRe = regexp.MustCompile(`\[(\w+)\]`)

// Pattern is a compiled path template.
//
// A Pattern always matches the whole request path: a raw regular expression
// registered without anchors still has to cover the full path.
type Pattern struct {
	// template is the string the pattern was compiled from.
	template string
	// source is the regular expression the template compiled to. For raw
	// templates it is the template itself.
	source string
	// raw indicates the template was recognized as a regular expression.
	raw bool
	// full is source wrapped as ^(?:source)$.
	full *regexp.Regexp
	// params are the placeholder names in left-to-right order.
	params []string
}

// Compile turns a path template into a Pattern and the ordered list of its
// placeholder names.
//
// An empty template compiles to a catch-all. A template that starts with ^
// or contains one of \ ( ) $ + . * outside of [name] placeholders is used
// verbatim as a regular expression and yields no placeholder names. Any other
// template has its literal text escaped, each [name] replaced with a capture
// group and is anchored with ^...$.
//
// Compile never fails. A raw template that is not a valid regular expression
// matches only the exact template string.
func Compile(template string) (*Pattern, []string) {
	if template == "" {
		return &Pattern{
			source: CatchAll,
			full:   mustCompileRegexp(CatchAll),
		}, nil
	}

	if isRawRegexp(template) {
		full, err := compileRegexp("^(?:" + template + ")$")
		if err != nil {
			full = mustCompileRegexp("^" + regexp.QuoteMeta(template) + "$")
		}

		return &Pattern{
			template: template,
			source:   template,
			raw:      true,
			full:     full,
		}, nil
	}

	var (
		pattern strings.Builder
		names   []string
		end     int
	)

	pattern.WriteByte('^')

	for _, idx := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		pattern.WriteString(regexp.QuoteMeta(template[end:idx[0]]))
		pattern.WriteString(placeholderGroup)
		names = append(names, template[idx[2]:idx[3]])
		end = idx[1]
	}

	pattern.WriteString(regexp.QuoteMeta(template[end:]))
	pattern.WriteByte('$')

	source := pattern.String()

	p := &Pattern{
		template: template,
		source:   source,
		full:     mustCompileRegexp("^(?:" + source + ")$"),
		params:   names,
	}

	return p, p.ParamNames()
}

// isRawRegexp reports whether the template should be treated as a regular
// expression rather than a placeholder path.
func isRawRegexp(template string) bool {
	if strings.HasPrefix(template, "^") {
		return true
	}

	stripped := placeholderRe.ReplaceAllString(template, "")

	return strings.ContainsAny(stripped, regexpMeta)
}

// String returns the regular expression source of the pattern.
func (p *Pattern) String() string {
	return p.source
}

// Template returns the template the pattern was compiled from.
func (p *Pattern) Template() string {
	return p.template
}

// IsRaw reports whether the template was used verbatim as a regexp.
func (p *Pattern) IsRaw() bool {
	return p.raw
}

// ParamNames returns a copy of the placeholder names in template order.
func (p *Pattern) ParamNames() []string {
	if len(p.params) == 0 {
		return nil
	}

	names := make([]string, len(p.params))
	copy(names, p.params)

	return names
}

// MatchString reports whether the pattern matches the entire path.
func (p *Pattern) MatchString(path string) bool {
	return p.full.MatchString(path)
}

// Params extracts placeholder values from path. It returns nil when the
// pattern has no placeholders or the path does not match.
func (p *Pattern) Params(path string) map[string]string {
	if len(p.params) == 0 {
		return nil
	}

	matches := p.full.FindStringSubmatch(path)
	if matches == nil {
		return nil
	}

	params := make(map[string]string, len(p.params))
	for i, name := range p.params {
		if i+1 < len(matches) {
			params[name] = matches[i+1]
		}
	}

	return params
}
