package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"class-tutor-service/internal/domain"
	"class-tutor-service/internal/domain/model"
	"class-tutor-service/internal/domain/ports/repository"
)

var _ repository.RecordingRepository = (*recordingRepo)(nil)

type recordingRepo struct {
	pool *pgxpool.Pool
}

func NewRecordingRepo(pool *pgxpool.Pool) *recordingRepo {
	return &recordingRepo{pool: pool}
}

func (r *recordingRepo) Insert(ctx context.Context, rec *model.Recording) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Date == "" {
		rec.Date = time.Now().Format("2006-01-02")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	const q = `
INSERT INTO recordings (id, date, class_name, section, subject, audio_filename, job_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := r.pool.Exec(ctx, q,
		rec.ID, rec.Date, rec.ClassName, rec.Section, rec.Subject, rec.AudioFilename, rec.JobID, rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: the job_id (or id) unique constraint fired
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateJob
		}
		return err
	}
	return nil
}

func (r *recordingRepo) FindByJobID(ctx context.Context, jobID string) (*model.Recording, error) {
	const q = `
SELECT id, date, class_name, COALESCE(section, ''), subject, audio_filename, COALESCE(combined_md, ''), job_id, created_at
FROM recordings
WHERE job_id = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, jobID))
}

func (r *recordingRepo) FindByID(ctx context.Context, id string) (*model.Recording, error) {
	const q = `
SELECT id, date, class_name, COALESCE(section, ''), subject, audio_filename, COALESCE(combined_md, ''), job_id, created_at
FROM recordings
WHERE id = $1;`
	return r.scanOne(r.pool.QueryRow(ctx, q, id))
}

func (r *recordingRepo) List(ctx context.Context, offset, limit int) ([]*model.Recording, error) {
	const q = `
SELECT id, date, class_name, COALESCE(section, ''), subject, audio_filename, job_id, created_at
FROM recordings
ORDER BY created_at DESC
LIMIT $1 OFFSET $2;`

	rows, err := r.pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Recording
	for rows.Next() {
		var rec model.Recording
		if err := rows.Scan(
			&rec.ID, &rec.Date, &rec.ClassName, &rec.Section, &rec.Subject,
			&rec.AudioFilename, &rec.JobID, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (r *recordingRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM recordings;`).Scan(&n)
	return n, err
}

func (r *recordingRepo) UpdateCombinedMarkdown(ctx context.Context, jobID, combinedMD string) error {
	const q = `
UPDATE recordings
SET combined_md = $1
WHERE job_id = $2;`

	tag, err := r.pool.Exec(ctx, q, combinedMD, jobID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *recordingRepo) scanOne(row pgx.Row) (*model.Recording, error) {
	var rec model.Recording
	err := row.Scan(
		&rec.ID, &rec.Date, &rec.ClassName, &rec.Section, &rec.Subject,
		&rec.AudioFilename, &rec.CombinedMarkdown, &rec.JobID, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}
