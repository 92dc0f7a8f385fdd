// Package schema models the tool gateway's method catalog and normalizes it
// for consumption by model providers.
package schema

import "strings"

// Method describes one callable gateway operation. Params is a JSON-Schema-like
// mapping of parameter name to schema fragment, exactly as the gateway
// advertises it.
type Method struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Params      map[string]any `json:"params,omitempty"`
	Returns     any            `json:"returns,omitempty"`
}

// Catalog is the tool catalog fetched once per orchestration run. It is
// immutable for the duration of the run.
type Catalog struct {
	Version string   `json:"version,omitempty"`
	Methods []Method `json:"methods"`
}

// Lookup returns the method with the given exact name.
func (c Catalog) Lookup(name string) (Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// Resolve maps a possibly unqualified operation name onto a catalog entry:
// case-insensitive exact match first, then case-insensitive suffix match
// against dotted namespaces ("list" -> "todos.list"). Names that already
// carry a namespace separator are returned untouched, as is anything with no
// match; the downstream dispatch is expected to fail normally in that case.
func (c Catalog) Resolve(name string) string {
	if name == "" || strings.Contains(name, ".") {
		return name
	}
	lower := strings.ToLower(name)
	for _, m := range c.Methods {
		if strings.ToLower(m.Name) == lower {
			return m.Name
		}
	}
	for _, m := range c.Methods {
		if strings.HasSuffix(strings.ToLower(m.Name), "."+lower) {
			return m.Name
		}
	}
	return name
}
