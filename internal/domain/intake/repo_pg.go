package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wetreat/intake/internal/platform/db"
)

type recordRepoPG struct {
	pool *pgxpool.Pool
}

func NewRecordRepoPG(pool *pgxpool.Pool) RecordStore {
	return &recordRepoPG{pool: pool}
}

func (r *recordRepoPG) conn() querier {
	return r.pool
}

const recordCols = `id, full_name, email, dob, patient_id, symptoms, medical_history, notes, documents_urls,
	physician_name, physician_email, consultation_date, recommendations, created_at`

func (r *recordRepoPG) Create(ctx context.Context, rec *PatientRecord) error {
	rec.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	err := r.conn().QueryRow(ctx, `
		INSERT INTO patients (
			full_name, email, dob, patient_id, symptoms, medical_history, notes, documents_urls,
			physician_name, physician_email, consultation_date, recommendations, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NULL,NULL,NULL,NULL,$9)
		RETURNING id`,
		rec.FullName, rec.Email, rec.DOB, rec.PatientID, rec.Symptoms, rec.MedicalHistory, rec.Notes, rec.DocumentsURLs,
		rec.CreatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("patient record create: %w", err)
	}
	return nil
}

func (r *recordRepoPG) Find(ctx context.Context, q ListQuery) ([]*PatientRecord, error) {
	sql := `SELECT ` + recordCols + ` FROM patients`
	where, args := q.Where(DialectPostgres)
	if where != "" {
		sql += ` WHERE ` + where
	}
	sql += ` ORDER BY ` + q.OrderBy()

	rows, err := r.conn().Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("patient record find: %w", err)
	}
	defer rows.Close()

	recs := []*PatientRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("patient record scan: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patient record find: %w", err)
	}
	return recs, nil
}

func (r *recordRepoPG) FindOne(ctx context.Context, id int64) (*PatientRecord, error) {
	rec, err := scanRecord(r.conn().QueryRow(ctx, `SELECT `+recordCols+` FROM patients WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patient record find one: %w", err)
	}
	return rec, nil
}

func (r *recordRepoPG) UpdateConsultation(ctx context.Context, id int64, c Consultation) error {
	tag, err := r.conn().Exec(ctx, `
		UPDATE patients
		SET physician_name = $1, physician_email = $2, consultation_date = $3, recommendations = $4
		WHERE id = $5`,
		c.PhysicianName, c.PhysicianEmail, c.ConsultationDate, c.Recommendations, id,
	)
	if err != nil {
		return fmt.Errorf("patient record update consultation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn().Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patient record delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepoPG) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *recordRepoPG) Location() string {
	cc := r.pool.Config().ConnConfig
	return fmt.Sprintf("%s:%d/%s", cc.Host, cc.Port, cc.Database)
}

// PoolStats lets the health endpoint report pool usage.
func (r *recordRepoPG) PoolStats() *db.PoolStats {
	return db.GetPoolStats(r.pool)
}

func scanRecord(row pgx.Row) (*PatientRecord, error) {
	var rec PatientRecord
	err := row.Scan(
		&rec.ID, &rec.FullName, &rec.Email, &rec.DOB, &rec.PatientID,
		&rec.Symptoms, &rec.MedicalHistory, &rec.Notes, &rec.DocumentsURLs,
		&rec.PhysicianName, &rec.PhysicianEmail, &rec.ConsultationDate, &rec.Recommendations,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}
