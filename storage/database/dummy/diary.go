package dummydb

import (
	"context"
	"sort"

	"cloud.google.com/go/civil"

	"github.com/trezcool/diario/core/diary"
)

type diaryRepository struct {
	*table[diary.Entry]
}

var _ diary.Repository = (*diaryRepository)(nil) // interface compliance check

func NewDiaryRepository(db *DB) diary.Repository {
	return &diaryRepository{db.diary}
}

// lookup must be called with the lock held.
func (repo *diaryRepository) lookup(classID int64, date civil.Date) (diary.Entry, bool) {
	for _, e := range repo.rows {
		if e.ClassID == classID && e.Date == date {
			return e, true
		}
	}
	return diary.Entry{}, false
}

func (repo *diaryRepository) Find(_ context.Context, classID int64, date civil.Date) (diary.Entry, error) {
	repo.RLock()
	defer repo.RUnlock()
	if e, ok := repo.lookup(classID, date); ok {
		return copyEntry(e), nil
	}
	return diary.Entry{}, diary.ErrNotFound
}

func (repo *diaryRepository) Upsert(_ context.Context, e diary.Entry) (int64, error) {
	repo.Lock()
	defer repo.Unlock()

	e = copyEntry(e)
	if old, ok := repo.lookup(e.ClassID, e.Date); ok {
		e.ID = old.ID
		e.CreatedAt = old.CreatedAt
	} else {
		repo.lastID++
		e.ID = repo.lastID
	}
	repo.rows[e.ID] = e
	return e.ID, nil
}

func (repo *diaryRepository) Delete(_ context.Context, classID int64, date civil.Date) error {
	repo.Lock()
	defer repo.Unlock()
	e, ok := repo.lookup(classID, date)
	if !ok {
		return diary.ErrNotFound
	}
	delete(repo.rows, e.ID)
	return nil
}

func (repo *diaryRepository) Range(_ context.Context, classID int64, from, to civil.Date) ([]diary.Entry, error) {
	found := repo.find(func(e diary.Entry) bool {
		return e.ClassID == classID && !e.Date.Before(from) && !e.Date.After(to)
	})
	entries := make([]diary.Entry, 0, len(found))
	for _, e := range found {
		entries = append(entries, copyEntry(e))
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })
	return entries, nil
}

// copyEntry detaches the attendance slice from the stored one.
func copyEntry(e diary.Entry) diary.Entry {
	records := make([]diary.AttendanceRecord, len(e.Attendance))
	copy(records, e.Attendance)
	e.Attendance = records
	return e
}
