// Package query constructs SQL queries from view-level field names using
// a fluent builder with automatic parameter numbering.
package query

import "strings"

// ProjectionMap maps view-level field names to aliased table columns.
type ProjectionMap struct {
	schema string
	table  string
	alias  string
	fields []string
	cols   map[string]string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table,
// and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		cols:   make(map[string]string),
	}
}

// Project registers a column under a view-level field name and returns
// the map for chaining.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	p.fields = append(p.fields, field)
	p.cols[field] = p.alias + "." + column
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// Table returns the aliased table reference for FROM clauses.
func (p *ProjectionMap) Table() string {
	return p.schema + "." + p.table + " " + p.alias
}

// Column resolves a view-level field name to its aliased column.
// Unknown fields are returned unchanged.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.cols[field]; ok {
		return col
	}
	return field
}

// Columns returns the projected columns as a comma-separated list in
// registration order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ColumnList(), ", ")
}

// ColumnList returns the projected columns in registration order.
func (p *ProjectionMap) ColumnList() []string {
	list := make([]string, len(p.fields))
	for i, f := range p.fields {
		list[i] = p.cols[f]
	}
	return list
}
