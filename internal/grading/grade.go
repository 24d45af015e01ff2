package grading

import (
	"errors"
	"strings"
)

// Level is a competency grade on the AD/A/B/C scale. The empty level
// means "no grade" and is never stored.
type Level string

const (
	LevelAD    Level = "AD"
	LevelA     Level = "A"
	LevelB     Level = "B"
	LevelC     Level = "C"
	LevelEmpty Level = ""
)

var ErrInvalidLevel = errors.New("nivel de logro inválido")

// Levels lists the storable levels, best first.
var Levels = []Level{LevelAD, LevelA, LevelB, LevelC}

// ParseLevel accepts upper or lower case and surrounding spaces.
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToUpper(strings.TrimSpace(s)))
	if !l.Valid() {
		return LevelEmpty, ErrInvalidLevel
	}
	return l, nil
}

// Valid reports whether l is a known level or empty.
func (l Level) Valid() bool {
	switch l {
	case LevelAD, LevelA, LevelB, LevelC, LevelEmpty:
		return true
	}
	return false
}

// IsEmpty reports the "no grade" level.
func (l Level) IsEmpty() bool { return l == LevelEmpty }

// Description is the scale wording printed on report cards.
func (l Level) Description() string {
	switch l {
	case LevelAD:
		return "Logro Destacado"
	case LevelA:
		return "Logro Previsto"
	case LevelB:
		return "En Proceso"
	case LevelC:
		return "En Inicio"
	}
	return ""
}

// ScaleLegend is the legend line of the report card.
const ScaleLegend = "AD: Logro Destacado | A: Logro Previsto | B: En Proceso | C: En Inicio"

// ConclusionRequired reports whether a descriptive conclusion is expected
// for the grade: B or C in primary, C in secondary. The level is matched
// case-insensitively as a substring so "Primaria", "PRIMARIA - 3ro" etc.
// all qualify. The result is advisory and never blocks a write.
func ConclusionRequired(courseLevel string, grade Level) bool {
	lvl := strings.ToUpper(courseLevel)
	switch {
	case strings.Contains(lvl, "PRIMARIA"):
		return grade == LevelB || grade == LevelC
	case strings.Contains(lvl, "SECUNDARIA"):
		return grade == LevelC
	}
	return false
}
