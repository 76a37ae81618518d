package diary

import (
	"context"
	"math"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"

	"github.com/trezcool/diario/core"
)

type StudentSummary struct {
	StudentID int64   `json:"student_id"`
	Name      string  `json:"name"`
	Present   int     `json:"present"`
	Absent    int     `json:"absent"`
	Rate      float64 `json:"rate"` // presences / counted days, in %
}

// Summary counts the attendance of the current roster over the saved days of a period.
type Summary struct {
	ClassID  int64            `json:"class_id"`
	From     civil.Date       `json:"from"`
	To       civil.Date       `json:"to"`
	Days     int              `json:"days"`
	Students []StudentSummary `json:"students"`
}

// Summary reconciles every saved day between from & to with the current roster, then tallies it.
// Days saved before a student joined the class are skipped for them unless they were recorded.
func (svc *Service) Summary(ctx context.Context, classID int64, from, to civil.Date) (Summary, error) {
	if to.Before(from) {
		return Summary{}, core.NewValidationError(nil, core.FieldError{Field: "to", Error: "must not be before from"})
	}

	roster, err := svc.fetchRoster(ctx, classID)
	if err != nil {
		return Summary{}, err
	}
	entries, err := svc.repo.Range(ctx, classID, from, to)
	if err != nil {
		return Summary{}, errors.Wrap(err, "listing diary entries")
	}

	sum := Summary{ClassID: classID, From: from, To: to, Days: len(entries), Students: make([]StudentSummary, 0, len(roster))}
	idx := make(map[int64]int, len(roster))
	for _, std := range Reconcile(roster, nil) {
		idx[std.StudentID] = len(sum.Students)
		sum.Students = append(sum.Students, StudentSummary{StudentID: std.StudentID, Name: std.Name})
	}

	since := make(map[int64]civil.Date, len(roster))
	for _, std := range roster {
		since[std.StudentID] = std.Since
	}

	for i := range entries {
		e := &entries[i]
		recorded := make(map[int64]bool, len(e.Attendance))
		for _, rec := range e.Attendance {
			recorded[rec.StudentID] = true
		}
		for _, rec := range Reconcile(roster, e) {
			// before joining the class, only what was actually recorded counts
			if e.Date.Before(since[rec.StudentID]) && !recorded[rec.StudentID] {
				continue
			}
			s := &sum.Students[idx[rec.StudentID]]
			if rec.Present {
				s.Present++
			} else {
				s.Absent++
			}
		}
	}

	for i := range sum.Students {
		s := &sum.Students[i]
		if total := s.Present + s.Absent; total > 0 {
			s.Rate = math.Round(float64(s.Present)*10000/float64(total)) / 100
		}
	}
	return sum, nil
}
