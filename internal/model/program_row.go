package model

// ProgramRow is the flattened program + location + details projection that
// every search path returns. Similarity fields are only set by ranked searches.
type ProgramRow struct {
	ID                   uint     `json:"id"`
	OrganizationName     string   `json:"organization_name"`
	CDCRecognitionStatus string   `json:"cdc_recognition_status,omitempty"`
	MDPPSupplier         bool     `json:"mdpp_supplier"`
	ContactPhone         string   `json:"contact_phone,omitempty"`
	ContactEmail         string   `json:"contact_email,omitempty"`
	WebsiteURL           string   `json:"website_url,omitempty"`
	Description          string   `json:"description,omitempty"`
	AddressLine1         string   `json:"address_line1,omitempty"`
	AddressLine2         string   `json:"address_line2,omitempty"`
	City                 string   `json:"city"`
	State                string   `json:"state"`
	ZipCode              string   `json:"zip_code"`
	Latitude             *float64 `json:"latitude"`
	Longitude            *float64 `json:"longitude"`
	DeliveryMode         string   `json:"delivery_mode"`
	Language             string   `json:"language,omitempty"`
	ClassSchedule        string   `json:"class_schedule,omitempty"`
	EnrollmentStatus     string   `json:"enrollment_status,omitempty"`
	Cost                 *float64 `json:"cost"`
	DurationWeeks        *int     `json:"duration_weeks"`
	MaxParticipants      *int     `json:"max_participants,omitempty"`
	CurrentParticipants  *int     `json:"current_participants,omitempty"`

	Similarity       *float64 `json:"similarity,omitempty"`
	VectorSimilarity *float64 `json:"vector_similarity,omitempty"`
	TextRank         *float64 `json:"text_rank,omitempty"`
}

// Flatten projects a Program with its preloaded relations.
func (p *Program) Flatten() ProgramRow {
	row := ProgramRow{
		ID:                   p.ID,
		OrganizationName:     p.OrganizationName,
		CDCRecognitionStatus: p.CDCRecognitionStatus,
		MDPPSupplier:         p.MDPPSupplier,
		ContactPhone:         p.ContactPhone,
		ContactEmail:         p.ContactEmail,
		WebsiteURL:           p.WebsiteURL,
		Description:          p.Description,
	}
	if loc := p.Location; loc != nil {
		row.AddressLine1 = loc.AddressLine1
		row.AddressLine2 = loc.AddressLine2
		row.City = loc.City
		row.State = loc.State
		row.ZipCode = loc.ZipCode
		row.Latitude = loc.Latitude
		row.Longitude = loc.Longitude
	}
	if d := p.Details; d != nil {
		current := d.CurrentParticipants
		row.DeliveryMode = d.DeliveryMode
		row.Language = d.Language
		row.ClassSchedule = d.ClassSchedule
		row.EnrollmentStatus = d.EnrollmentStatus
		row.Cost = d.Cost
		row.DurationWeeks = d.DurationWeeks
		row.MaxParticipants = d.MaxParticipants
		row.CurrentParticipants = &current
	}
	return row
}
