package style

import (
	"fmt"
	"sort"

	"github.com/james-see/codecomposer/pkg/errs"
)

// UnknownStyleError is returned when a style name is not registered
type UnknownStyleError struct {
	Name  string
	Known []string
}

func (e *UnknownStyleError) Error() string {
	return fmt.Sprintf("%s: unknown style %q (known: %v)", errs.ErrConfiguration, e.Name, e.Known)
}

// Is makes errors.Is(err, errs.ErrConfiguration) hold
func (e *UnknownStyleError) Is(target error) bool {
	return target == errs.ErrConfiguration
}

// InvalidStyleConfigError is returned when a style record fails validation
type InvalidStyleConfigError struct {
	Style  string
	Field  string
	Reason string
}

func (e *InvalidStyleConfigError) Error() string {
	return fmt.Sprintf("%s: style %q: %s: %s", errs.ErrConfiguration, e.Style, e.Field, e.Reason)
}

// Is makes errors.Is(err, errs.ErrConfiguration) hold
func (e *InvalidStyleConfigError) Is(target error) bool {
	return target == errs.ErrConfiguration
}

// Registry is a read-only table of validated styles keyed by name
type Registry struct {
	styles map[string]Style
}

// NewRegistry validates styles and indexes them by name
func NewRegistry(styles ...Style) (*Registry, error) {
	r := &Registry{styles: make(map[string]Style, len(styles))}
	for _, s := range styles {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.styles[s.Name]; dup {
			return nil, &InvalidStyleConfigError{Style: s.Name, Field: "name", Reason: "defined twice"}
		}
		r.styles[s.Name] = s.Clone()
	}
	return r, nil
}

// Resolve returns the named style
func (r *Registry) Resolve(name string) (Style, error) {
	s, ok := r.styles[name]
	if !ok {
		return Style{}, &UnknownStyleError{Name: name, Known: r.Names()}
	}
	return s.Clone(), nil
}

// Names lists registered style names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.styles))
	for name := range r.styles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Styles returns every style sorted by name
func (r *Registry) Styles() []Style {
	out := make([]Style, 0, len(r.styles))
	for _, name := range r.Names() {
		out = append(out, r.styles[name].Clone())
	}
	return out
}

// Merge returns a registry holding r's styles overridden by other's
func (r *Registry) Merge(other *Registry) *Registry {
	merged := &Registry{styles: make(map[string]Style, len(r.styles)+len(other.styles))}
	for name, s := range r.styles {
		merged.styles[name] = s
	}
	for name, s := range other.styles {
		merged.styles[name] = s
	}
	return merged
}
