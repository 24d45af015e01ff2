package grading

import "errors"

// MassFilter selects which graded cells a bulk conclusion reaches.
type MassFilter string

const (
	FilterAllWithGrade    MassFilter = "all_with_grade"
	FilterSpecificGrade   MassFilter = "specific_grade"
	FilterEmptyConclusion MassFilter = "empty_conclusion"
)

var ErrInvalidFilter = errors.New("filtro de conclusión masiva inválido")

// MassCriteria is a validated bulk-conclusion filter.
type MassCriteria struct {
	Filter MassFilter
	Grade  Level
}

// NewMassCriteria validates the filter; specific_grade needs a level.
func NewMassCriteria(filter string, grade string) (MassCriteria, error) {
	c := MassCriteria{Filter: MassFilter(filter)}
	switch c.Filter {
	case FilterAllWithGrade, FilterEmptyConclusion:
		return c, nil
	case FilterSpecificGrade:
		lvl, err := ParseLevel(grade)
		if err != nil || lvl.IsEmpty() {
			return c, ErrInvalidFilter
		}
		c.Grade = lvl
		return c, nil
	}
	return c, ErrInvalidFilter
}

// CellKey identifies one competency grade of one student.
type CellKey struct {
	StudentID    string
	CompetencyID int64
}

// Cell is the stored content of a graded cell.
type Cell struct {
	Grade      Level
	Conclusion string
}

// Matches applies the filter to a cell. Ungraded cells never match.
func (c MassCriteria) Matches(cell Cell) bool {
	if cell.Grade.IsEmpty() {
		return false
	}
	switch c.Filter {
	case FilterAllWithGrade:
		return true
	case FilterSpecificGrade:
		return cell.Grade == c.Grade
	case FilterEmptyConclusion:
		return cell.Conclusion == ""
	}
	return false
}

// SelectTargets walks every competency × student pair in order and keeps
// those whose current cell matches. Each competency is its own slot, so a
// student appears once per matching competency.
func SelectTargets(c MassCriteria, competencyIDs []int64, studentIDs []string, cells map[CellKey]Cell) []CellKey {
	var out []CellKey
	for _, compID := range competencyIDs {
		for _, sid := range studentIDs {
			key := CellKey{StudentID: sid, CompetencyID: compID}
			cell, ok := cells[key]
			if !ok {
				continue
			}
			if c.Matches(cell) {
				out = append(out, key)
			}
		}
	}
	return out
}
