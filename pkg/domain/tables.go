package domain

import (
	"maps"
	"slices"
)

// EndpointTable maps an endpoint identifier (e.g. TODOS) to its base URL.
type EndpointTable map[string]string

// URL returns the base URL of an endpoint. Empty URLs count as unknown.
func (t EndpointTable) URL(endpoint string) (string, bool) {
	u, ok := t[endpoint]
	return u, ok && u != ""
}

// Keys returns the endpoint identifiers in ascending order.
func (t EndpointTable) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}

// Clone returns a copy that does not share storage with t.
func (t EndpointTable) Clone() EndpointTable {
	return maps.Clone(t)
}

// VerbTable maps a verb identifier (e.g. LOAD) to an HTTP method.
type VerbTable map[string]string

// DefaultVerbs returns the built-in verb to method table.
func DefaultVerbs() VerbTable {
	return VerbTable{
		"CREATE": "POST",
		"DELETE": "DELETE",
		"LOAD":   "GET",
		"UPDATE": "PATCH",
		"MODIFY": "PUT",
	}
}

// Merge returns a new table with overrides applied on top of t.
func (t VerbTable) Merge(overrides map[string]string) VerbTable {
	merged := maps.Clone(t)
	if merged == nil {
		merged = VerbTable{}
	}
	maps.Copy(merged, overrides)
	return merged
}

// Method returns the HTTP method of a verb. Empty methods count as unsupported.
func (t VerbTable) Method(verb string) (string, bool) {
	m, ok := t[verb]
	return m, ok && m != ""
}

// Keys returns the verb identifiers in ascending order.
func (t VerbTable) Keys() []string {
	return slices.Sorted(maps.Keys(t))
}
