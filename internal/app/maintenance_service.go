package app

import (
	"context"
	"fmt"
	"strings"

	"path2prevention/internal/model"
	"path2prevention/internal/platform/logger"
)

// RelationalTables lists what InitDB creates, in creation order.
var RelationalTables = []string{"programs", "program_locations", "program_details", "assessment_results"}

type SchemaStore interface {
	Migrate(ctx context.Context) error
	Describe(ctx context.Context) (*model.DatabaseStructure, error)
}

type ProgramWriter interface {
	CreateWithRelations(ctx context.Context, program *model.Program) error
}

type sampleProgram struct {
	organization string
	city         string
	state        string
	zip          string
	address      string
	mode         string
	language     string
	cost         float64
	weeks        int
}

var samplePrograms = []sampleProgram{
	{"Atlanta Diabetes Prevention Center", "Atlanta", "GA", "30309", "123 Peachtree St", model.DeliveryInPerson, "English", 75, 16},
	{"Virtual Health Solutions", "Remote", "GA", "00000", "Online Platform", model.DeliveryVirtualLive, "English", 0, 12},
	{"Community Wellness Network", "Savannah", "GA", "31401", "456 River St", model.DeliveryHybrid, "Spanish", 25, 16},
	{"Northside Medical Center", "Roswell", "GA", "30075", "789 Medical Plaza", model.DeliveryInPerson, "English", 100, 20},
	{"Flexible Learning Health", "Remote", "FL", "00000", "Self-Paced Online", model.DeliveryVirtualSelfPaced, "English", 49.99, 24},
}

type MaintenanceService struct {
	schema   SchemaStore
	programs ProgramWriter
	vectors  VectorWriter
	log      *logger.Logger
}

func NewMaintenanceService(schema SchemaStore, programs ProgramWriter, vectors VectorWriter, log *logger.Logger) *MaintenanceService {
	if log == nil {
		log = logger.Nop()
	}
	return &MaintenanceService{schema: schema, programs: programs, vectors: vectors, log: log}
}

// InitDB creates the relational tables when absent and returns their names.
func (s *MaintenanceService) InitDB(ctx context.Context) ([]string, error) {
	if err := s.schema.Migrate(ctx); err != nil {
		return nil, err
	}
	s.log.Info("database initialized", "tables", strings.Join(RelationalTables, ","))
	return RelationalTables, nil
}

// PopulateSampleData inserts the fixed sample catalogue. Running it twice
// inserts the rows twice.
func (s *MaintenanceService) PopulateSampleData(ctx context.Context) (int, error) {
	for i, sample := range samplePrograms {
		program := sample.build(i)
		if err := s.programs.CreateWithRelations(ctx, program); err != nil {
			return i, fmt.Errorf("insert sample %q failed: %w", sample.organization, err)
		}
		s.log.Info("sample program added", "organization", sample.organization, "program_id", program.ID)
	}
	return len(samplePrograms), nil
}

func (s *MaintenanceService) InitVectorStore(ctx context.Context) error {
	if err := s.vectors.EnsureSchema(ctx); err != nil {
		return err
	}
	s.log.Info("vector store initialized")
	return nil
}

func (s *MaintenanceService) DescribeSchema(ctx context.Context) (*model.DatabaseStructure, error) {
	return s.schema.Describe(ctx)
}

// build derives the MDPP flag and capacity from the row index so repeated
// runs produce identical data.
func (p sampleProgram) build(index int) *model.Program {
	cost := p.cost
	weeks := p.weeks
	capacity := 10 + (index*7)%20
	return &model.Program{
		OrganizationName:     p.organization,
		CDCRecognitionStatus: "CDC-Recognized",
		MDPPSupplier:         index%2 == 0,
		ContactPhone:         "(555) 123-4567",
		ContactEmail:         "contact@" + strings.Join(strings.Fields(strings.ToLower(p.organization)), "") + ".org",
		Description:          "Comprehensive diabetes prevention program offered by " + p.organization,
		Location: &model.ProgramLocation{
			AddressLine1: p.address,
			City:         p.city,
			State:        p.state,
			ZipCode:      p.zip,
		},
		Details: &model.ProgramDetails{
			DeliveryMode:     p.mode,
			Language:         p.language,
			DurationWeeks:    &weeks,
			Cost:             &cost,
			MaxParticipants:  &capacity,
			EnrollmentStatus: model.EnrollmentOpen,
		},
	}
}
