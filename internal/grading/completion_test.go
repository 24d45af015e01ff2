package grading

import "testing"

func TestTally_PercentageZeroDenominator(t *testing.T) {
	if got := (Tally{}).Percentage(); got != 0 {
		t.Errorf("expected 0 for empty denominator, got %d", got)
	}
	if got := (Tally{Filled: 3, Expected: 0}).Percentage(); got != 0 {
		t.Errorf("expected 0 when nothing is expected, got %d", got)
	}
}

func TestTally_PercentageRoundsHalfUp(t *testing.T) {
	cases := []struct {
		filled, expected, want int
	}{
		{1, 8, 13}, // 12.5
		{1, 3, 33}, // 33.3
		{2, 3, 67}, // 66.7
		{1, 200, 1},
		{10, 30, 33},
		{199, 200, 100}, // 99.5
		{5, 5, 100},
	}
	for _, c := range cases {
		got := Tally{Filled: c.filled, Expected: c.expected}.Percentage()
		if got != c.want {
			t.Errorf("%d/%d: got %d, want %d", c.filled, c.expected, got, c.want)
		}
	}
}

func TestTally_PercentageClamped(t *testing.T) {
	if got := (Tally{Filled: 12, Expected: 10}).Percentage(); got != 100 {
		t.Errorf("expected clamp to 100, got %d", got)
	}
	if got := (Tally{Filled: -2, Expected: 10}).Percentage(); got != 0 {
		t.Errorf("expected clamp to 0, got %d", got)
	}
}

func TestCompletion_EmptyCourse(t *testing.T) {
	// 5 students, 4 competencies, nothing graded
	tally := Tally{Filled: 0, Expected: AcademicExpected(5, 4)}
	if tally.Expected != 20 || tally.Filled != 0 || tally.Percentage() != 0 {
		t.Errorf("unexpected tally %+v (%d%%)", tally, tally.Percentage())
	}
}

func TestCompletion_AcademicPlusBehavior(t *testing.T) {
	b := Breakdown{
		CategoryAcademic: {Filled: 10, Expected: AcademicExpected(5, 4)},
		CategoryBehavior: {Filled: 0, Expected: BehaviorExpected(5)},
	}
	total := b.Total()
	if total.Expected != 30 || total.Filled != 10 {
		t.Fatalf("unexpected total %+v", total)
	}
	if total.Percentage() != 33 {
		t.Errorf("expected 33%%, got %d", total.Percentage())
	}
}

func TestExpectedFormulas(t *testing.T) {
	if FamilyExpected(5, 3) != 15 {
		t.Error("family expected should be students × commitments")
	}
	if FamilyExpected(5, 0) != 0 {
		t.Error("no active commitments means no family slots")
	}
	if AppreciationExpected(7) != 7 {
		t.Error("appreciation expected should be one per student")
	}
	if AcademicExpected(-1, 3) != 0 {
		t.Error("negative counts must not produce negative slots")
	}
}

func TestParseCategories(t *testing.T) {
	all := ParseCategories("")
	for _, c := range AllCategories {
		if !all.Has(c) {
			t.Errorf("empty input should select %s", c)
		}
	}

	some := ParseCategories("academic, Behavior,bogus")
	if !some.Has(CategoryAcademic) || !some.Has(CategoryBehavior) {
		t.Error("academic and behavior should be selected")
	}
	if some.Has(CategoryFamily) || some.Has(CategoryAppreciation) {
		t.Error("family and appreciation should not be selected")
	}

	var none CategorySet
	if !none.Has(CategoryFamily) {
		t.Error("nil set selects everything")
	}
}

func TestDefaultBar(t *testing.T) {
	if DefaultBar(ScopeGlobal) != BarApproved || DefaultBar(ScopeTeacher) != BarApproved {
		t.Error("global and teacher dashboards count approved appreciations")
	}
	if DefaultBar(ScopeSection) != BarCommented || DefaultBar(ScopeCourse) != BarCommented {
		t.Error("section and course detail count written appreciations")
	}
	if ParseBar("approved", ScopeSection) != BarApproved {
		t.Error("explicit bar should override the default")
	}
	if ParseBar("nonsense", ScopeGlobal) != BarApproved {
		t.Error("unknown bar should fall back to the scope default")
	}
}
