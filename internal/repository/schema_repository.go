package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"path2prevention/internal/model"
)

// RelationalTables lists the tables created by Migrate, in creation order.
var RelationalTables = []string{"programs", "program_locations", "program_details", "assessment_results"}

type SchemaRepository struct {
	db *gorm.DB
}

func NewSchemaRepository(db *gorm.DB) *SchemaRepository {
	return &SchemaRepository{db: db}
}

// Migrate creates the relational tables if they are missing.
func (r *SchemaRepository) Migrate(ctx context.Context) error {
	err := r.db.WithContext(ctx).AutoMigrate(
		&model.Program{},
		&model.ProgramLocation{},
		&model.ProgramDetails{},
		&model.AssessmentResult{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}
	return nil
}

func (r *SchemaRepository) Describe(ctx context.Context) (*model.DatabaseStructure, error) {
	db := r.db.WithContext(ctx)
	out := &model.DatabaseStructure{}

	if err := db.Raw(`SELECT current_database() AS name, version() AS version, current_user AS "user"`).
		Scan(&out.Database).Error; err != nil {
		return nil, fmt.Errorf("describe database failed: %w", err)
	}

	var tables []string
	if err := db.Raw(`
SELECT table_name FROM information_schema.tables
WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
ORDER BY table_name`).Scan(&tables).Error; err != nil {
		return nil, fmt.Errorf("list tables failed: %w", err)
	}

	out.Tables = make([]model.TableInfo, 0, len(tables))
	for _, name := range tables {
		info := model.TableInfo{Name: name}
		if err := db.Raw(`
SELECT column_name AS name, data_type, is_nullable, column_default AS "default"
FROM information_schema.columns
WHERE table_schema = 'public' AND table_name = ?
ORDER BY ordinal_position`, name).Scan(&info.Columns).Error; err != nil {
			return nil, fmt.Errorf("describe columns of %s failed: %w", name, err)
		}
		if err := db.Table(name).Count(&info.RowCount).Error; err != nil {
			return nil, fmt.Errorf("count rows of %s failed: %w", name, err)
		}
		out.Tables = append(out.Tables, info)
	}

	if err := db.Raw(`
SELECT tc.table_name AS "table", kcu.column_name AS "column",
       ccu.table_name AS foreign_table, ccu.column_name AS foreign_column
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
JOIN information_schema.constraint_column_usage ccu
  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = 'public'
ORDER BY tc.table_name`).Scan(&out.ForeignKeys).Error; err != nil {
		return nil, fmt.Errorf("list foreign keys failed: %w", err)
	}

	out.Summary.TotalTables = len(out.Tables)
	out.Summary.TotalForeignKeys = len(out.ForeignKeys)
	return out, nil
}
