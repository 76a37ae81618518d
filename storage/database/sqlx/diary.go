package sqlxrepos

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	sq "github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/diario/core/diary"
)

type diaryRow struct {
	ID           int64          `db:"id"`
	ClassID      int64          `db:"class_id"`
	Date         time.Time      `db:"date"`
	Subject      null.String    `db:"subject"`
	Content      null.String    `db:"content"`
	Activities   null.String    `db:"activities"`
	Homework     null.String    `db:"homework"`
	Observations null.String    `db:"observations"`
	Attendance   types.JSONText `db:"attendance"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type diaryRepository struct {
	*table[diary.Entry, diaryRow]
}

var _ diary.Repository = (*diaryRepository)(nil) // interface compliance check

func NewDiaryRepository(db *sqlx.DB) diary.Repository {
	return &diaryRepository{&table[diary.Entry, diaryRow]{
		db:       db,
		schema:   diary.Schema,
		resource: "diary entry",
		notFound: diary.ErrNotFound,
		id:       func(e diary.Entry) int64 { return e.ID },
		toRow:    toDiaryRow,
		fromRow:  fromDiaryRow,
	}}
}

func toDiaryRow(e diary.Entry) diaryRow {
	records := e.Attendance
	if records == nil {
		records = []diary.AttendanceRecord{}
	}
	attendance, _ := sonic.Marshal(records) // plain structs, cannot fail
	return diaryRow{
		ID:           e.ID,
		ClassID:      e.ClassID,
		Date:         dateToTime(e.Date),
		Subject:      nullString(e.Subject),
		Content:      nullString(e.Content),
		Activities:   nullString(e.Activities),
		Homework:     nullString(e.Homework),
		Observations: nullString(e.Observations),
		Attendance:   attendance,
		CreatedAt:    e.CreatedAt.UTC(),
		UpdatedAt:    e.UpdatedAt.UTC(),
	}
}

func fromDiaryRow(r diaryRow) diary.Entry {
	records := []diary.AttendanceRecord{}
	if len(r.Attendance) > 0 {
		_ = sonic.Unmarshal(r.Attendance, &records) // JSONB written by toDiaryRow
	}
	return diary.Entry{
		ID:           r.ID,
		ClassID:      r.ClassID,
		Date:         civil.DateOf(r.Date),
		Subject:      r.Subject.String,
		Content:      r.Content.String,
		Activities:   r.Activities.String,
		Homework:     r.Homework.String,
		Observations: r.Observations.String,
		Attendance:   records,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func (repo *diaryRepository) Find(ctx context.Context, classID int64, date civil.Date) (diary.Entry, error) {
	return repo.getWhere(ctx, sq.Eq{"class_id": classID, "date": dateToTime(date)})
}

func (repo *diaryRepository) Upsert(ctx context.Context, e diary.Entry) (int64, error) {
	query, args, err := psql.Insert(repo.schema.Table).
		SetMap(repo.values(repo.toRow(e), "id")).
		Suffix(`ON CONFLICT (class_id, date) DO UPDATE SET
			subject = EXCLUDED.subject,
			content = EXCLUDED.content,
			activities = EXCLUDED.activities,
			homework = EXCLUDED.homework,
			observations = EXCLUDED.observations,
			attendance = EXCLUDED.attendance,
			updated_at = EXCLUDED.updated_at
		RETURNING id`).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building upsert query")
	}
	var id int64
	if err = repo.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, repo.trapErr(err, "upserting diary entry")
	}
	return id, nil
}

func (repo *diaryRepository) Delete(ctx context.Context, classID int64, date civil.Date) error {
	query, args, err := psql.Delete(repo.schema.Table).
		Where(sq.Eq{"class_id": classID, "date": dateToTime(date)}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return repo.trapErr(err, "deleting diary entry")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return diary.ErrNotFound
	}
	return nil
}

func (repo *diaryRepository) Range(ctx context.Context, classID int64, from, to civil.Date) ([]diary.Entry, error) {
	return repo.selectWhere(ctx, sq.And{
		sq.Eq{"class_id": classID},
		sq.GtOrEq{"date": dateToTime(from)},
		sq.LtOrEq{"date": dateToTime(to)},
	}, "date ASC")
}
