package extract

import "fmt"

// SchemaDriftError means a structural assumption about an upstream's
// markup or payload no longer holds: a required selector resolved to
// nothing, a build identifier disappeared, a JSON path went missing.
// It is fatal for that source's run and carries enough context to guide
// a mapping-configuration fix.
type SchemaDriftError struct {
	Source string
	Field  string
	Page   int
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("schema drift in %s: field %q not resolvable on page %d", e.Source, e.Field, e.Page)
}
