package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"path2prevention/internal/model"
	"path2prevention/internal/search"
)

const programSelect = `
SELECT p.id, p.organization_name, p.cdc_recognition_status, p.mdpp_supplier,
       p.contact_phone, p.contact_email, p.website_url, p.description,
       pl.address_line1, pl.address_line2, pl.city, pl.state, pl.zip_code,
       pl.latitude, pl.longitude,
       pd.delivery_mode, pd.language, pd.class_schedule, pd.enrollment_status,
       pd.cost, pd.duration_weeks, pd.max_participants, pd.current_participants
FROM programs p
LEFT JOIN program_locations pl ON p.id = pl.program_id
LEFT JOIN program_details pd ON p.id = pd.program_id`

type ProgramRepository struct {
	db *gorm.DB
}

func NewProgramRepository(db *gorm.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// SearchByLocation runs the single predicate chosen by search.SelectBranch.
func (r *ProgramRepository) SearchByLocation(ctx context.Context, f search.Filter) ([]model.ProgramRow, error) {
	f = f.Normalize()
	var (
		where string
		args  []interface{}
	)
	switch search.SelectBranch(f) {
	case search.BranchStateCityZip:
		where, args = "WHERE pl.state = ? AND pl.city ILIKE ? AND pl.zip_code = ?", []interface{}{f.State, like(f.City), f.ZipCode}
	case search.BranchStateCity:
		where, args = "WHERE pl.state = ? AND pl.city ILIKE ?", []interface{}{f.State, like(f.City)}
	case search.BranchState:
		where, args = "WHERE pl.state = ?", []interface{}{f.State}
	case search.BranchCity:
		where, args = "WHERE pl.city ILIKE ?", []interface{}{like(f.City)}
	case search.BranchZip:
		where, args = "WHERE pl.zip_code = ?", []interface{}{f.ZipCode}
	}

	rows, err := r.query(ctx, where+" ORDER BY p.organization_name", args...)
	if err != nil {
		return nil, fmt.Errorf("search programs by location failed: %w", err)
	}
	return rows, nil
}

func (r *ProgramRepository) SearchByDeliveryModes(ctx context.Context, modes []string) ([]model.ProgramRow, error) {
	rows, err := r.query(ctx, "WHERE pd.delivery_mode = ANY(?) ORDER BY p.organization_name", pq.StringArray(modes))
	if err != nil {
		return nil, fmt.Errorf("search programs by delivery mode failed: %w", err)
	}
	return rows, nil
}

func (r *ProgramRepository) SearchByName(ctx context.Context, name string) ([]model.ProgramRow, error) {
	rows, err := r.query(ctx, "WHERE p.organization_name ILIKE ? ORDER BY p.organization_name", like(name))
	if err != nil {
		return nil, fmt.Errorf("search programs by name failed: %w", err)
	}
	return rows, nil
}

func (r *ProgramRepository) ListAll(ctx context.Context) ([]model.ProgramRow, error) {
	rows, err := r.query(ctx, "ORDER BY p.organization_name")
	if err != nil {
		return nil, fmt.Errorf("list programs failed: %w", err)
	}
	return rows, nil
}

func (r *ProgramRepository) GetByID(ctx context.Context, id uint) (*model.ProgramRow, error) {
	rows, err := r.query(ctx, "WHERE p.id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("get program failed: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// Recommended returns open programs in the given modes, programs in the given
// state first, capped at ten.
func (r *ProgramRepository) Recommended(ctx context.Context, modes []string, state string) ([]model.ProgramRow, error) {
	var stateArg interface{}
	if state != "" {
		stateArg = state
	}
	rows, err := r.query(ctx, `
WHERE pd.delivery_mode = ANY(?)
  AND pd.enrollment_status = 'open'
  AND (CAST(? AS TEXT) IS NULL OR pl.state = ?)
ORDER BY CASE WHEN pl.state = ? THEN 1 ELSE 2 END, p.organization_name
LIMIT 10`, pq.StringArray(modes), stateArg, stateArg, stateArg)
	if err != nil {
		return nil, fmt.Errorf("recommend programs failed: %w", err)
	}
	return rows, nil
}

// CreateWithRelations inserts a program together with its location and
// details in one transaction.
func (r *ProgramRepository) CreateWithRelations(ctx context.Context, program *model.Program) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(program).Error
	})
	if err != nil {
		return fmt.Errorf("create program failed: %w", err)
	}
	return nil
}

func (r *ProgramRepository) query(ctx context.Context, tail string, args ...interface{}) ([]model.ProgramRow, error) {
	rows := make([]model.ProgramRow, 0)
	err := r.db.WithContext(ctx).Raw(programSelect+"\n"+tail, args...).Scan(&rows).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return rows, nil
}

func like(s string) string {
	return "%" + s + "%"
}
