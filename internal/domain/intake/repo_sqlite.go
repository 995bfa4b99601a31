package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

type recordRepoSQLite struct {
	db   *gorm.DB
	path string
}

// NewRecordRepoSQLite migrates the patients table and returns a store on gdb.
// path is only reported by Location.
func NewRecordRepoSQLite(gdb *gorm.DB, path string) (RecordStore, error) {
	if err := gdb.AutoMigrate(&PatientRecord{}); err != nil {
		return nil, fmt.Errorf("migrate patients table: %w", err)
	}
	return &recordRepoSQLite{db: gdb, path: path}, nil
}

func (r *recordRepoSQLite) Create(ctx context.Context, rec *PatientRecord) error {
	rec.ID = 0
	rec.CreatedAt = time.Now().UTC()
	rec.PhysicianName, rec.PhysicianEmail, rec.ConsultationDate, rec.Recommendations = nil, nil, nil, nil
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return fmt.Errorf("patient record create: %w", err)
	}
	return nil
}

func (r *recordRepoSQLite) Find(ctx context.Context, q ListQuery) ([]*PatientRecord, error) {
	tx := r.db.WithContext(ctx).Model(&PatientRecord{})
	if where, args := q.Where(DialectSQLite); where != "" {
		tx = tx.Where(where, args...)
	}

	recs := []*PatientRecord{}
	if err := tx.Order(q.OrderBy()).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("patient record find: %w", err)
	}
	for _, rec := range recs {
		rec.CreatedAt = rec.CreatedAt.UTC()
	}
	return recs, nil
}

func (r *recordRepoSQLite) FindOne(ctx context.Context, id int64) (*PatientRecord, error) {
	var rec PatientRecord
	err := r.db.WithContext(ctx).Where(colID+" = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patient record find one: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}

func (r *recordRepoSQLite) UpdateConsultation(ctx context.Context, id int64, c Consultation) error {
	res := r.db.WithContext(ctx).Model(&PatientRecord{}).
		Where(colID+" = ?", id).
		Updates(map[string]interface{}{
			colPhysicianName:    c.PhysicianName,
			colPhysicianEmail:   c.PhysicianEmail,
			colConsultationDate: c.ConsultationDate,
			colRecommendations:  c.Recommendations,
		})
	if res.Error != nil {
		return fmt.Errorf("patient record update consultation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepoSQLite) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where(colID+" = ?", id).Delete(&PatientRecord{})
	if res.Error != nil {
		return fmt.Errorf("patient record delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *recordRepoSQLite) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *recordRepoSQLite) Location() string {
	return r.path
}
