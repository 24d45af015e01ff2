package grading

import "strings"

// Tally counts filled slots against expected slots.
type Tally struct {
	Filled   int `json:"filled"`
	Expected int `json:"expected"`
}

// Add returns the element-wise sum.
func (t Tally) Add(o Tally) Tally {
	return Tally{Filled: t.Filled + o.Filled, Expected: t.Expected + o.Expected}
}

// Percentage is round-half-up(100 × filled / expected) clamped to
// [0, 100]. An empty denominator yields 0.
func (t Tally) Percentage() int {
	if t.Expected <= 0 || t.Filled <= 0 {
		return 0
	}
	if t.Filled >= t.Expected {
		return 100
	}
	// integer round-half-up: floor((200f + e) / 2e)
	return (200*t.Filled + t.Expected) / (2 * t.Expected)
}

// Complete reports whether every expected slot is filled.
func (t Tally) Complete() bool {
	return t.Expected > 0 && t.Filled >= t.Expected
}

// Category is one family of grading slots.
type Category string

const (
	CategoryAcademic     Category = "academic"
	CategoryBehavior     Category = "behavior"
	CategoryFamily       Category = "family"
	CategoryAppreciation Category = "appreciation"
)

// AllCategories in reporting order.
var AllCategories = []Category{CategoryAcademic, CategoryBehavior, CategoryFamily, CategoryAppreciation}

// CategorySet selects which categories a computation includes.
type CategorySet map[Category]bool

// ParseCategories reads a comma separated list; an empty string selects
// every category. Unknown names are ignored.
func ParseCategories(s string) CategorySet {
	set := CategorySet{}
	for _, part := range strings.Split(s, ",") {
		c := Category(strings.TrimSpace(strings.ToLower(part)))
		for _, known := range AllCategories {
			if c == known {
				set[c] = true
			}
		}
	}
	if len(set) == 0 {
		for _, c := range AllCategories {
			set[c] = true
		}
	}
	return set
}

// Has reports whether c is selected. A nil set selects everything.
func (s CategorySet) Has(c Category) bool {
	return s == nil || s[c]
}

// Breakdown is a per-category tally.
type Breakdown map[Category]Tally

// Total sums every category.
func (b Breakdown) Total() Tally {
	var t Tally
	for _, c := range AllCategories {
		t = t.Add(b[c])
	}
	return t
}

// Slots per tutored student for the non-academic categories.
const (
	BehaviorSlotsPerStudent     = 2 // comportamiento + valores
	AppreciationSlotsPerStudent = 1
)

// AcademicExpected is students × competencies for one course.
func AcademicExpected(students, competencies int) int {
	return nonNeg(students) * nonNeg(competencies)
}

// BehaviorExpected is tutored students × 2.
func BehaviorExpected(students int) int {
	return nonNeg(students) * BehaviorSlotsPerStudent
}

// FamilyExpected is tutored students × active commitments.
func FamilyExpected(students, activeCommitments int) int {
	return nonNeg(students) * nonNeg(activeCommitments)
}

// AppreciationExpected is tutored students × 1.
func AppreciationExpected(students int) int {
	return nonNeg(students) * AppreciationSlotsPerStudent
}

func nonNeg(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// ScopeKind is the extent of a completion computation.
type ScopeKind string

const (
	ScopeCourse  ScopeKind = "course"
	ScopeSection ScopeKind = "section"
	ScopeTeacher ScopeKind = "teacher"
	ScopeGlobal  ScopeKind = "global"
)

// Valid reports a known scope.
func (k ScopeKind) Valid() bool {
	switch k {
	case ScopeCourse, ScopeSection, ScopeTeacher, ScopeGlobal:
		return true
	}
	return false
}

// AppreciationBar decides which appreciation rows count as filled.
type AppreciationBar string

const (
	// BarApproved counts only approved appreciations.
	BarApproved AppreciationBar = "approved"
	// BarCommented counts any appreciation with text.
	BarCommented AppreciationBar = "commented"
)

// DefaultBar is the bar each scope uses unless the caller overrides it:
// institution-wide and per-teacher dashboards count only finalized
// appreciations, section and course detail count written ones.
func DefaultBar(k ScopeKind) AppreciationBar {
	switch k {
	case ScopeGlobal, ScopeTeacher:
		return BarApproved
	}
	return BarCommented
}

// ParseBar falls back to the scope default for unknown input.
func ParseBar(s string, k ScopeKind) AppreciationBar {
	switch AppreciationBar(strings.ToLower(strings.TrimSpace(s))) {
	case BarApproved:
		return BarApproved
	case BarCommented:
		return BarCommented
	}
	return DefaultBar(k)
}
