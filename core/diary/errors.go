package diary

import "fmt"

// RosterFetchError is returned when the roster of a class could not be loaded.
// Attendance is never reconciled against a missing roster.
type RosterFetchError struct {
	ClassID int64
	Err     error
}

func (e *RosterFetchError) Error() string {
	return fmt.Sprintf("could not load the roster of class %d", e.ClassID)
}

func (e *RosterFetchError) Unwrap() error { return e.Err }

// PersistenceError is returned when a diary entry could not be saved.
// Entry holds the submitted data so that it can be sent again.
type PersistenceError struct {
	Entry Entry
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("could not save the diary of class %d for %s", e.Entry.ClassID, e.Entry.Date)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
