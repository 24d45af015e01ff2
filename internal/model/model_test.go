package model

import (
	"testing"
	"time"
)

func TestClassroomDisplayName(t *testing.T) {
	c := Classroom{Level: "primaria", Grade: "3ro", Section: "B"}
	if got := c.DisplayName(); got != `3ro "B" Primaria` {
		t.Errorf("unexpected name %q", got)
	}
}

func TestStudentFullName(t *testing.T) {
	s := Student{FirstName: "Ana", LastName: "Quispe"}
	if s.FullName() != "Quispe, Ana" {
		t.Errorf("unexpected full name %q", s.FullName())
	}
}

func TestBimestreContains(t *testing.T) {
	b := Bimestre{
		StartDate: time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC),
	}
	if !b.Contains(time.Date(2026, 5, 8, 18, 30, 0, 0, time.UTC)) {
		t.Error("end date should be inclusive")
	}
	if b.Contains(time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)) {
		t.Error("day after end should be outside")
	}
}

func TestBehaviorFilledSlots(t *testing.T) {
	a, empty := "A", ""
	if (&BehaviorGrade{BehaviorGrade: &a, ValuesGrade: &empty}).FilledSlots() != 1 {
		t.Error("empty values grade should not count")
	}
	if (&BehaviorGrade{BehaviorGrade: &a, ValuesGrade: &a}).FilledSlots() != 2 {
		t.Error("both fields should count")
	}
}

func TestProfileIsTutorOf(t *testing.T) {
	id := int64(4)
	p := Profile{TutorClassroomID: &id}
	if !p.IsTutorOf(4) || p.IsTutorOf(5) {
		t.Error("tutor check mismatch")
	}
	if (&Profile{}).IsTutorOf(4) {
		t.Error("profile without classroom tutors nothing")
	}
}
