package intake

import (
	"fmt"
	"strings"
)

// Dialect selects placeholder and case-folding syntax for a store.
type Dialect int

const (
	DialectPostgres Dialect = iota
	DialectSQLite
)

const (
	colID               = "id"
	colFullName         = "full_name"
	colEmail            = "email"
	colDOB              = "dob"
	colPatientID        = "patient_id"
	colSymptoms         = "symptoms"
	colMedicalHistory   = "medical_history"
	colNotes            = "notes"
	colDocumentsURLs    = "documents_urls"
	colPhysicianName    = "physician_name"
	colPhysicianEmail   = "physician_email"
	colRecommendations  = "recommendations"
	colCreatedAt        = "created_at"
	colConsultationDate = "consultation_date"
)

// DefaultSortField is used when the requested sort field is not allowed.
const DefaultSortField = "createdAt"

// sortColumns is the sort allow-list, keyed by public field name.
var sortColumns = map[string]string{
	"id":        colID,
	"createdAt": colCreatedAt,
	"fullName":  colFullName,
	"patientId": colPatientID,
	"dob":       colDOB,
	"email":     colEmail,
}

// searchColumns are matched by free-text search, combined with OR.
var searchColumns = []string{
	colFullName,
	colEmail,
	colPatientID,
	colSymptoms,
	colMedicalHistory,
	colNotes,
	colDocumentsURLs,
	colPhysicianName,
	colPhysicianEmail,
	colRecommendations,
}

type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// ListQuery is a normalized list request. Build it with NewListQuery; every
// field is already safe to render.
type ListQuery struct {
	Search    string
	SortField string
	Direction SortDirection
}

// NewListQuery normalizes untrusted list parameters. Unknown sort fields fall
// back to createdAt, and any direction other than "asc" (any case) is
// descending. The search text is kept verbatim.
func NewListQuery(search, sortField, sortDirection string) ListQuery {
	if _, ok := sortColumns[sortField]; !ok {
		sortField = DefaultSortField
	}
	dir := SortDesc
	if strings.EqualFold(sortDirection, "asc") {
		dir = SortAsc
	}
	return ListQuery{Search: search, SortField: sortField, Direction: dir}
}

func (q ListQuery) sortColumn() string {
	if col, ok := sortColumns[q.SortField]; ok {
		return col
	}
	return colCreatedAt
}

func (q ListQuery) direction() SortDirection {
	if q.Direction == SortAsc {
		return SortAsc
	}
	return SortDesc
}

// Where renders the search predicate for d. It returns "" and no args when
// the search is empty so that every record matches, including ones whose
// searchable columns are NULL.
func (q ListQuery) Where(d Dialect) (string, []interface{}) {
	if q.Search == "" {
		return "", nil
	}
	pattern := "%" + escapeLike(q.Search) + "%"

	preds := make([]string, len(searchColumns))
	var args []interface{}
	switch d {
	case DialectPostgres:
		for i, col := range searchColumns {
			preds[i] = col + ` ILIKE $1 ESCAPE '\'`
		}
		args = []interface{}{pattern}
	default:
		for i, col := range searchColumns {
			preds[i] = fmt.Sprintf(`LOWER(%s) LIKE LOWER(?) ESCAPE '\'`, col)
			args = append(args, pattern)
		}
	}
	return "(" + strings.Join(preds, " OR ") + ")", args
}

// OrderBy renders the ORDER BY list. id breaks ties so equal sort keys come
// back in a stable order.
func (q ListQuery) OrderBy() string {
	col := q.sortColumn()
	if col == colID {
		return fmt.Sprintf("%s %s", colID, q.direction())
	}
	return fmt.Sprintf("%s %s, %s ASC", col, q.direction(), colID)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
