package grading

import (
	"sort"
	"strings"
)

// SectionStatus filters the monitoring dashboard.
type SectionStatus string

const (
	StatusAll        SectionStatus = "all"
	StatusPending    SectionStatus = "pending"
	StatusCompleted  SectionStatus = "completed"
	StatusIncomplete SectionStatus = "incomplete"
)

// SectionCard is one classroom on the monitoring dashboard.
type SectionCard struct {
	ClassroomID          int64  `json:"id"`
	Name                 string `json:"name"`
	Level                string `json:"level"`
	StudentCount         int    `json:"student_count"`
	TotalCourses         int    `json:"total_courses"`
	Progress             int    `json:"progress"`
	PendingAppreciations int    `json:"pending_appreciations"`
}

// SortByUrgency orders cards by pending appreciations descending, then by
// classroom id ascending.
func SortByUrgency(cards []SectionCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].PendingAppreciations != cards[j].PendingAppreciations {
			return cards[i].PendingAppreciations > cards[j].PendingAppreciations
		}
		return cards[i].ClassroomID < cards[j].ClassroomID
	})
}

// FilterSections keeps the cards matching status and a case-insensitive
// name/level search.
func FilterSections(cards []SectionCard, status SectionStatus, query string) []SectionCard {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]SectionCard, 0, len(cards))
	for _, c := range cards {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(strings.ToLower(c.Level), q) {
			continue
		}
		switch status {
		case StatusPending:
			if c.PendingAppreciations == 0 {
				continue
			}
		case StatusCompleted:
			if c.Progress != 100 {
				continue
			}
		case StatusIncomplete:
			if c.Progress >= 100 {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
