package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// ProgramVector is the denormalized search projection. The row is always
// rebuilt as a whole, so SearchText and Embedding describe the same source.
type ProgramVector struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	ProgramID            uint            `gorm:"uniqueIndex;not null" json:"program_id"`
	OrganizationName     string          `gorm:"size:255;not null" json:"organization_name"`
	Description          string          `gorm:"type:text" json:"description"`
	City                 string          `gorm:"size:100" json:"city"`
	State                string          `gorm:"size:2" json:"state"`
	ZipCode              string          `gorm:"size:10" json:"zip_code"`
	DeliveryMode         string          `gorm:"size:50" json:"delivery_mode"`
	Language             string          `gorm:"size:50" json:"language"`
	Cost                 *float64        `gorm:"type:decimal(10,2)" json:"cost"`
	DurationWeeks        *int            `json:"duration_weeks"`
	EnrollmentStatus     string          `gorm:"size:20" json:"enrollment_status"`
	CDCRecognitionStatus string          `gorm:"size:100" json:"cdc_recognition_status"`
	MDPPSupplier         bool            `json:"mdpp_supplier"`
	ContactPhone         string          `gorm:"size:20" json:"contact_phone"`
	ContactEmail         string          `gorm:"size:255" json:"contact_email"`
	WebsiteURL           string          `gorm:"type:text" json:"website_url"`
	ClassSchedule        string          `gorm:"type:text" json:"class_schedule"`
	SearchText           string          `gorm:"type:text" json:"-"`
	Embedding            pgvector.Vector `gorm:"type:vector(384)" json:"-"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (ProgramVector) TableName() string {
	return "programs_vector"
}

// NewProgramVector copies the searchable fields of a flattened program.
func NewProgramVector(row ProgramRow, searchText string, embedding []float32) *ProgramVector {
	return &ProgramVector{
		ProgramID:            row.ID,
		OrganizationName:     row.OrganizationName,
		Description:          row.Description,
		City:                 row.City,
		State:                row.State,
		ZipCode:              row.ZipCode,
		DeliveryMode:         row.DeliveryMode,
		Language:             row.Language,
		Cost:                 row.Cost,
		DurationWeeks:        row.DurationWeeks,
		EnrollmentStatus:     row.EnrollmentStatus,
		CDCRecognitionStatus: row.CDCRecognitionStatus,
		MDPPSupplier:         row.MDPPSupplier,
		ContactPhone:         row.ContactPhone,
		ContactEmail:         row.ContactEmail,
		WebsiteURL:           row.WebsiteURL,
		ClassSchedule:        row.ClassSchedule,
		SearchText:           searchText,
		Embedding:            pgvector.NewVector(embedding),
	}
}

// VectorStats summarizes the vector table.
type VectorStats struct {
	TotalPrograms          int64      `json:"total_programs"`
	ProgramsWithEmbeddings int64      `json:"programs_with_embeddings"`
	DeliveryModes          int64      `json:"delivery_modes"`
	StatesCovered          int64      `json:"states_covered"`
	AvgCost                *float64   `json:"avg_cost"`
	OldestProgram          *time.Time `json:"oldest_program"`
	LastUpdated            *time.Time `json:"last_updated"`
}
