package model

import (
	"time"

	"github.com/lib/pq"
)

const (
	DeliveryInPerson         = "in-person"
	DeliveryVirtualLive      = "virtual-live"
	DeliveryVirtualSelfPaced = "virtual-self-paced"
	DeliveryHybrid           = "hybrid"

	EnrollmentOpen     = "open"
	EnrollmentClosed   = "closed"
	EnrollmentWaitlist = "waitlist"
)

type Program struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	OrganizationName     string    `gorm:"size:255;not null" json:"organization_name"`
	CDCRecognitionStatus string    `gorm:"size:100" json:"cdc_recognition_status"`
	MDPPSupplier         bool      `gorm:"default:false" json:"mdpp_supplier"`
	ContactPhone         string    `gorm:"size:20" json:"contact_phone"`
	ContactEmail         string    `gorm:"size:255" json:"contact_email"`
	WebsiteURL           string    `gorm:"type:text" json:"website_url"`
	Description          string    `gorm:"type:text" json:"description"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`

	Location *ProgramLocation `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"location,omitempty"`
	Details  *ProgramDetails  `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

type ProgramLocation struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProgramID    uint      `gorm:"not null;index" json:"program_id"`
	AddressLine1 string    `gorm:"size:255" json:"address_line1"`
	AddressLine2 string    `gorm:"size:255" json:"address_line2"`
	City         string    `gorm:"size:100;not null;index" json:"city"`
	State        string    `gorm:"size:2;not null;index" json:"state"`
	ZipCode      string    `gorm:"size:10;not null;index" json:"zip_code"`
	Latitude     *float64  `gorm:"type:decimal(10,8)" json:"latitude"`
	Longitude    *float64  `gorm:"type:decimal(11,8)" json:"longitude"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProgramDetails struct {
	ID                  uint           `gorm:"primaryKey" json:"id"`
	ProgramID           uint           `gorm:"not null;index" json:"program_id"`
	DeliveryMode        string         `gorm:"size:50;index" json:"delivery_mode"`
	Language            string         `gorm:"size:50;default:English" json:"language"`
	ClassSchedule       string         `gorm:"type:text" json:"class_schedule"`
	DurationWeeks       *int           `json:"duration_weeks"`
	Cost                *float64       `gorm:"type:decimal(10,2)" json:"cost"`
	InsuranceAccepted   pq.StringArray `gorm:"type:text[]" json:"insurance_accepted"`
	MaxParticipants     *int           `json:"max_participants"`
	CurrentParticipants int            `gorm:"default:0" json:"current_participants"`
	EnrollmentStatus    string         `gorm:"size:20;default:open" json:"enrollment_status"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
}
