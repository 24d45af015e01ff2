package grading

import "testing"

func TestSortByUrgency(t *testing.T) {
	cards := []SectionCard{
		{ClassroomID: 4, PendingAppreciations: 1},
		{ClassroomID: 2, PendingAppreciations: 3},
		{ClassroomID: 3, PendingAppreciations: 1},
		{ClassroomID: 1, PendingAppreciations: 0},
	}
	SortByUrgency(cards)

	want := []int64{2, 3, 4, 1}
	for i, id := range want {
		if cards[i].ClassroomID != id {
			t.Fatalf("position %d: expected classroom %d, got %d", i, id, cards[i].ClassroomID)
		}
	}
}

func TestFilterSections(t *testing.T) {
	cards := []SectionCard{
		{ClassroomID: 1, Name: `1ro "A" Primaria`, Level: "primaria", Progress: 100},
		{ClassroomID: 2, Name: `2do "B" Secundaria`, Level: "secundaria", Progress: 40, PendingAppreciations: 2},
		{ClassroomID: 3, Name: `3ro "A" Primaria`, Level: "primaria", Progress: 0},
	}

	if got := FilterSections(cards, StatusCompleted, ""); len(got) != 1 || got[0].ClassroomID != 1 {
		t.Errorf("completed filter: %v", got)
	}
	if got := FilterSections(cards, StatusIncomplete, ""); len(got) != 2 {
		t.Errorf("incomplete filter: %v", got)
	}
	if got := FilterSections(cards, StatusPending, ""); len(got) != 1 || got[0].ClassroomID != 2 {
		t.Errorf("pending filter: %v", got)
	}
	if got := FilterSections(cards, StatusAll, "secundaria"); len(got) != 1 {
		t.Errorf("search filter: %v", got)
	}
}
