package grading

import (
	"errors"
	"testing"
)

func sampleCells() map[CellKey]Cell {
	return map[CellKey]Cell{
		{StudentID: "s1", CompetencyID: 1}: {Grade: LevelB},
		{StudentID: "s2", CompetencyID: 1}: {Grade: LevelA, Conclusion: "Logra el propósito"},
		{StudentID: "s3", CompetencyID: 1}: {Grade: LevelB, Conclusion: "Requiere apoyo"},
		// s4 has no grade on competency 1
		{StudentID: "s1", CompetencyID: 2}: {Grade: LevelB},
		{StudentID: "s4", CompetencyID: 2}: {Grade: LevelC},
	}
}

func TestNewMassCriteria(t *testing.T) {
	if _, err := NewMassCriteria("specific_grade", ""); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("specific_grade without a grade should fail, got %v", err)
	}
	if _, err := NewMassCriteria("whatever", ""); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("unknown filter should fail, got %v", err)
	}
	c, err := NewMassCriteria("specific_grade", "b")
	if err != nil || c.Grade != LevelB {
		t.Errorf("expected grade B, got %+v (%v)", c, err)
	}
}

func TestSelectTargets_SpecificGradeOnlyTouchesThatGrade(t *testing.T) {
	c, _ := NewMassCriteria("specific_grade", "B")
	got := SelectTargets(c, []int64{1}, []string{"s1", "s2", "s3", "s4"}, sampleCells())

	if len(got) != 2 {
		t.Fatalf("expected 2 targets, got %d: %v", len(got), got)
	}
	for _, k := range got {
		if sampleCells()[k].Grade != LevelB {
			t.Errorf("target %v does not have grade B", k)
		}
		if k.StudentID == "s4" {
			t.Error("ungraded pair must never be targeted")
		}
	}
}

func TestSelectTargets_EmptyConclusion(t *testing.T) {
	c, _ := NewMassCriteria("empty_conclusion", "")
	got := SelectTargets(c, []int64{1}, []string{"s1", "s2", "s3", "s4"}, sampleCells())
	if len(got) != 1 || got[0].StudentID != "s1" {
		t.Errorf("expected only s1, got %v", got)
	}
}

func TestSelectTargets_AllCompetenciesNoDedup(t *testing.T) {
	c, _ := NewMassCriteria("all_with_grade", "")
	got := SelectTargets(c, []int64{1, 2}, []string{"s1", "s2", "s3", "s4"}, sampleCells())

	// s1 appears once per graded competency
	if len(got) != 5 {
		t.Fatalf("expected 5 targets, got %d: %v", len(got), got)
	}
	count := 0
	for _, k := range got {
		if k.StudentID == "s1" {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected s1 twice, got %d", count)
	}
}

func TestMassCriteria_IgnoresEmptyGrade(t *testing.T) {
	c, _ := NewMassCriteria("all_with_grade", "")
	if c.Matches(Cell{Grade: LevelEmpty}) {
		t.Error("an ungraded cell never matches")
	}
}
