package routing

import (
	"fmt"
	"regexp"
	"strings"
)

// defaultSegmentPattern matches a placeholder without a requirement.
const defaultSegmentPattern = `[^/]+`

var placeholderNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// compiledRoute is a route prepared for matching.
type compiledRoute struct {
	route     *Route
	regex     *regexp.Regexp
	variables []string
	condition *Condition
}

// segment is a literal or placeholder part of a path template.
type segment struct {
	text        string
	placeholder bool
}

// parseTemplate splits a path template into literal and placeholder
// segments.
func parseTemplate(path string) ([]segment, error) {
	var segments []segment

	rest := path
	for rest != "" {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			if strings.IndexByte(rest, '}') >= 0 {
				return nil, fmt.Errorf("unbalanced '}' in path %q", path)
			}
			segments = append(segments, segment{text: rest})
			break
		}
		if strings.IndexByte(rest[:open], '}') >= 0 {
			return nil, fmt.Errorf("unbalanced '}' in path %q", path)
		}
		if open > 0 {
			segments = append(segments, segment{text: rest[:open]})
		}

		closeIdx := strings.IndexByte(rest[open:], '}')
		if closeIdx < 0 {
			return nil, fmt.Errorf("unclosed placeholder in path %q", path)
		}
		name := rest[open+1 : open+closeIdx]
		if !placeholderNamePattern.MatchString(name) {
			return nil, fmt.Errorf("invalid placeholder name %q in path %q", name, path)
		}
		segments = append(segments, segment{text: name, placeholder: true})
		rest = rest[open+closeIdx+1:]
	}

	return segments, nil
}

// compileRoute compiles a route's path and condition.
func compileRoute(route *Route) (*compiledRoute, error) {
	if !strings.HasPrefix(route.Path, "/") {
		return nil, fmt.Errorf("path %q must start with '/'", route.Path)
	}

	segments, err := parseTemplate(route.Path)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteByte('^')

	compiled := &compiledRoute{route: route}
	seen := make(map[string]bool)

	for _, seg := range segments {
		if !seg.placeholder {
			b.WriteString(regexp.QuoteMeta(seg.text))
			continue
		}
		if seen[seg.text] {
			return nil, fmt.Errorf("placeholder %q used twice in path %q", seg.text, route.Path)
		}
		seen[seg.text] = true

		pattern := defaultSegmentPattern
		if req, ok := route.Requirements[seg.text]; ok && req != "" {
			pattern = req
		}
		fmt.Fprintf(&b, "(?P<%s>%s)", seg.text, pattern)
		compiled.variables = append(compiled.variables, seg.text)
	}
	b.WriteByte('$')

	compiled.regex, err = regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("invalid requirement in path %q: %w", route.Path, err)
	}

	if route.Condition != "" {
		compiled.condition, err = CompileCondition(route.Condition)
		if err != nil {
			return nil, err
		}
	}

	return compiled, nil
}

// matchPath returns the placeholder values when path matches.
func (c *compiledRoute) matchPath(path string) (map[string]string, bool) {
	matches := c.regex.FindStringSubmatch(path)
	if matches == nil {
		return nil, false
	}

	params := make(map[string]string, len(c.variables))
	for i, name := range c.regex.SubexpNames() {
		if i > 0 && name != "" {
			params[name] = matches[i]
		}
	}
	return params, true
}
