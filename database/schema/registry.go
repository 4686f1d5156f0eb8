package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps table names to schemas. It is an explicit value, not a
// process-wide singleton, and is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register adds schemas, rejecting a table name that is already registered.
func (r *Registry) Register(schemas ...*Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range schemas {
		if s == nil {
			return &SchemaError{Reason: "cannot register a nil schema"}
		}
		if _, exists := r.schemas[s.table]; exists {
			return &SchemaError{Table: s.table, Reason: "table already registered"}
		}
		r.schemas[s.table] = s
	}
	return nil
}

// Define declares a schema and registers it in one step.
func (r *Registry) Define(table string, fields []Field, opts ...Option) (*Schema, error) {
	s, err := Define(table, fields, opts...)
	if err != nil {
		return nil, err
	}
	if err := r.Register(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup returns the schema registered for table.
func (r *Registry) Lookup(table string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[table]
	return s, ok
}

// MustLookup is Lookup that panics when the table is unknown.
func (r *Registry) MustLookup(table string) *Schema {
	s, ok := r.Lookup(table)
	if !ok {
		panic(fmt.Sprintf("schema: table %q is not registered", table))
	}
	return s
}

// Tables returns the registered table names, sorted.
func (r *Registry) Tables() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tables := make([]string, 0, len(r.schemas))
	for table := range r.schemas {
		tables = append(tables, table)
	}
	sort.Strings(tables)
	return tables
}
