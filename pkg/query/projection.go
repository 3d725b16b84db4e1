// Package query builds parameterized SQL against a projection of view
// property names onto qualified table columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap binds a table (schema, name, alias) to the view property
// names its queries expose. Builders resolve sort and filter fields
// through the projection so callers never hand-write column references.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	byName  map[string]string
	ordered []string
}

// NewProjectionMap starts a projection for schema.table under alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		byName: map[string]string{},
	}
}

// Project maps a database column to a view property name. Returns the
// receiver so mappings chain.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.byName[viewName] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// Alias returns the table alias.
func (p *ProjectionMap) Alias() string {
	return p.alias
}

// From renders the FROM clause target: "schema.table alias".
func (p *ProjectionMap) From() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column resolves a view property to its qualified column. Unmapped
// names pass through unchanged.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.byName[viewName]; ok {
		return col
	}
	return viewName
}

// Columns renders the projection's select list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}

// ColumnList returns the qualified columns in projection order.
func (p *ProjectionMap) ColumnList() []string {
	return p.ordered
}
