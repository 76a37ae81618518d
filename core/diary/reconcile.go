package diary

import "github.com/trezcool/diario/core/enrollment"

// Reconcile merges the active roster of a class with the attendance stored for one day.
//
// The result holds exactly one record per roster student, in roster order. A student
// without a stored record is present. Stored records of students no longer on the roster
// are left out of the result but not removed from storage. A nil persisted entry means
// nothing was saved for that day yet.
func Reconcile(roster []enrollment.RosterEntry, persisted *Entry) []StudentAttendance {
	stored := make(map[int64]bool)
	if persisted != nil {
		for _, rec := range persisted.Attendance {
			stored[rec.StudentID] = rec.Present
		}
	}

	seen := make(map[int64]bool, len(roster))
	out := make([]StudentAttendance, 0, len(roster))
	for _, std := range roster {
		if seen[std.StudentID] {
			continue
		}
		seen[std.StudentID] = true

		present, ok := stored[std.StudentID]
		if !ok {
			present = true
		}
		out = append(out, StudentAttendance{StudentID: std.StudentID, Name: std.Name, Present: present})
	}
	return out
}
