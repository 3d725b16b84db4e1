package query

import (
	"fmt"
	"reflect"
	"strings"
)

// SortField names a logical field and direction for an ORDER BY clause.
type SortField struct {
	Field      string
	Descending bool
}

// Builder assembles parameterized SELECT statements over a projection.
// Parameters are numbered as conditions are added, so a builder emits
// the page query and its COUNT(*) companion with identical placeholders
// and a shared argument slice.
type Builder struct {
	projection  *ProjectionMap
	where       []string
	args        []any
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder over projection. The default sort applies
// whenever OrderByFields is not called.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// ParseSortFields splits a comma-separated sort expression into fields.
// A leading "-" marks a field descending: "MerchantName,-UploadedAt".
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if name, ok := strings.CutPrefix(part, "-"); ok {
			fields = append(fields, SortField{Field: name, Descending: true})
			continue
		}
		fields = append(fields, SortField{Field: part})
	}

	return fields
}

// OrderByFields overrides the default sort order.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds an equality condition. Nil values are skipped so
// optional filters pass through untouched.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	b.addCondition(b.projection.Column(field)+" = %s", value)
	return b
}

// WhereContains adds a case-insensitive substring condition. Skipped for
// nil or empty values.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	b.addCondition(b.projection.Column(field)+" ILIKE %s", "%"+*value+"%")
	return b
}

// WhereSearch matches the search text against any of the given fields.
// Skipped for nil or empty search terms.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + *search + "%"
	clauses := make([]string, len(fields))
	values := make([]any, len(fields))
	for i, field := range fields {
		clauses[i] = b.projection.Column(field) + " ILIKE %s"
		values[i] = pattern
	}

	b.addCondition("("+strings.Join(clauses, " OR ")+")", values...)
	return b
}

// addCondition appends values to the argument slice and substitutes
// their final placeholder numbers into the clause template, which uses
// one %s per value.
func (b *Builder) addCondition(clause string, values ...any) {
	placeholders := make([]any, len(values))
	for i, v := range values {
		b.args = append(b.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(b.args))
	}
	b.where = append(b.where, fmt.Sprintf(clause, placeholders...))
}

// Build renders the full SELECT with conditions and ordering.
func (b *Builder) Build() (string, []any) {
	return b.selectClause() + b.whereClause() + b.orderClause(), b.args
}

// BuildCount renders the COUNT(*) companion of Build.
func (b *Builder) BuildCount() (string, []any) {
	return "SELECT COUNT(*) FROM " + b.projection.From() + b.whereClause(), b.args
}

// BuildPage renders Build with LIMIT/OFFSET for the given page.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql := fmt.Sprintf(
		"%s%s%s LIMIT %d OFFSET %d",
		b.selectClause(),
		b.whereClause(),
		b.orderClause(),
		pageSize,
		(page-1)*pageSize,
	)
	return sql, b.args
}

// BuildSingle renders a lookup of one record by its identifier field,
// independent of any accumulated conditions.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	sql := fmt.Sprintf("%s WHERE %s = $1", b.selectClause(), b.projection.Column(idField))
	return sql, []any{id}
}

func (b *Builder) selectClause() string {
	return fmt.Sprintf("SELECT %s FROM %s", b.projection.Columns(), b.projection.From())
}

func (b *Builder) whereClause() string {
	if len(b.where) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.where, " AND ")
}

func (b *Builder) orderClause() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	parts := make([]string, len(fields))
	for i, f := range fields {
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		parts[i] = b.projection.Column(f.Field) + dir
	}

	return " ORDER BY " + strings.Join(parts, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}

	return false
}
