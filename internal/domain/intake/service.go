package intake

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wetreat/intake/internal/platform/report"
)

type Service struct {
	store    RecordStore
	renderer *report.Renderer
	loc      *time.Location
	validate *validator.Validate
}

func NewService(store RecordStore, renderer *report.Renderer, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:    store,
		renderer: renderer,
		loc:      loc,
		validate: validator.New(),
	}
}

func (s *Service) check(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// Intake stores a new record from the public form.
func (s *Service) Intake(ctx context.Context, in *IntakeRequest) (*PatientRecord, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	rec := in.Record()
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// List returns every record matching search, ordered by the normalized sort.
func (s *Service) List(ctx context.Context, search, sortField, sortDirection string) ([]*PatientRecord, error) {
	return s.store.Find(ctx, NewListQuery(search, sortField, sortDirection))
}

func (s *Service) Get(ctx context.Context, id int64) (*PatientRecord, error) {
	if id <= 0 {
		return nil, ErrNotFound
	}
	return s.store.FindOne(ctx, id)
}

func (s *Service) UpdateConsultation(ctx context.Context, id int64, c *Consultation) error {
	if err := s.check(c); err != nil {
		return err
	}
	if id <= 0 {
		return ErrNotFound
	}
	return s.store.UpdateConsultation(ctx, id, *c)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrNotFound
	}
	return s.store.Delete(ctx, id)
}

// Export renders the record's PDF report. The record lookup error is
// returned unchanged so callers can tell ErrNotFound from render failures.
func (s *Service) Export(ctx context.Context, id int64) (*bytes.Buffer, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(ctx, &buf, BuildReport(rec, s.loc)); err != nil {
		return nil, fmt.Errorf("render report for patient %d: %w", id, err)
	}
	return &buf, nil
}
