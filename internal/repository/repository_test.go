package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"path2prevention/internal/model"
	"path2prevention/internal/search"
)

// testDB returns a transaction scoped to a throwaway schema. It is rolled
// back when the test ends. Tests are skipped without TEST_POSTGRES_DSN.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run repository integration tests")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)

	tx := db.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })

	schema := fmt.Sprintf("p2p_test_%d", time.Now().UnixNano())
	require.NoError(t, tx.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error)
	require.NoError(t, tx.Exec("CREATE SCHEMA "+schema).Error)
	require.NoError(t, tx.Exec("SET LOCAL search_path TO "+schema+", public").Error)
	require.NoError(t, NewSchemaRepository(tx).Migrate(context.Background()))
	return tx
}

func seedProgram(t *testing.T, repo *ProgramRepository, name, city, state, zip, mode string) *model.Program {
	t.Helper()
	p := &model.Program{
		OrganizationName:     name,
		CDCRecognitionStatus: "CDC-Recognized",
		Location:             &model.ProgramLocation{City: city, State: state, ZipCode: zip},
		Details:              &model.ProgramDetails{DeliveryMode: mode, Language: "English", EnrollmentStatus: "open"},
	}
	require.NoError(t, repo.CreateWithRelations(context.Background(), p))
	return p
}

func TestProgramRepositorySearchByLocation(t *testing.T) {
	repo := NewProgramRepository(testDB(t))
	ctx := context.Background()
	seedProgram(t, repo, "Zeta Wellness", "Atlanta", "GA", "30309", model.DeliveryInPerson)
	seedProgram(t, repo, "Alpha Health", "Savannah", "GA", "31401", model.DeliveryHybrid)
	seedProgram(t, repo, "Beta Online", "Remote", "FL", "00000", model.DeliveryVirtualLive)

	rows, err := repo.SearchByLocation(ctx, search.Filter{State: "GA"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha Health", rows[0].OrganizationName)
	assert.Equal(t, "Zeta Wellness", rows[1].OrganizationName)

	rows, err = repo.SearchByLocation(ctx, search.Filter{City: "atlanta"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Atlanta", rows[0].City)

	rows, err = repo.SearchByDeliveryModes(ctx, search.NormalizeDeliveryMode("online"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Beta Online", rows[0].OrganizationName)
}

func TestProgramRepositoryGetByIDAndRecommended(t *testing.T) {
	repo := NewProgramRepository(testDB(t))
	ctx := context.Background()
	fl := seedProgram(t, repo, "Alpha Florida", "Miami", "FL", "33101", model.DeliveryInPerson)
	seedProgram(t, repo, "Zeta Georgia", "Atlanta", "GA", "30309", model.DeliveryInPerson)

	got, err := repo.GetByID(ctx, fl.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Miami", got.City)

	missing, err := repo.GetByID(ctx, fl.ID+1000)
	require.NoError(t, err)
	assert.Nil(t, missing)

	rows, err := repo.Recommended(ctx, []string{model.DeliveryInPerson}, "GA")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Zeta Georgia", rows[0].OrganizationName)

	rows, err = repo.Recommended(ctx, []string{model.DeliveryInPerson}, "")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alpha Florida", rows[0].OrganizationName)
}

func TestVectorRepositoryIdenticalEmbeddingRanksFirst(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	vectors := NewVectorRepository(db)
	require.NoError(t, vectors.EnsureSchema(ctx))
	require.NoError(t, db.Exec("SET LOCAL ivfflat.probes = 100").Error)

	target := unitVector(0)
	other := unitVector(1)
	require.NoError(t, vectors.Upsert(ctx, model.NewProgramVector(
		model.ProgramRow{ID: 1, OrganizationName: "Target"}, "target program", target)))
	require.NoError(t, vectors.Upsert(ctx, model.NewProgramVector(
		model.ProgramRow{ID: 2, OrganizationName: "Other"}, "other program", other)))

	rows, err := vectors.SemanticSearch(ctx, target, 5, -1)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, uint(1), rows[0].ID)
	require.NotNil(t, rows[0].Similarity)
	assert.InDelta(t, 1.0, *rows[0].Similarity, 1e-6)

	stats, err := vectors.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ProgramsWithEmbeddings)

	require.NoError(t, vectors.Upsert(ctx, model.NewProgramVector(
		model.ProgramRow{ID: 1, OrganizationName: "Target renamed"}, "target program", target)))
	stats, err = vectors.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalPrograms, "upsert keeps one row per program")
}

func unitVector(hot int) []float32 {
	v := make([]float32, 384)
	v[hot] = 1
	return v
}
