package app

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"path2prevention/internal/model"
	"path2prevention/internal/pkg/jwtutil"
)

type fakeAssessmentWriter struct {
	created []*model.AssessmentResult
	err     error
}

func (f *fakeAssessmentWriter) Create(_ context.Context, r *model.AssessmentResult) error {
	if f.err != nil {
		return f.err
	}
	r.ID = uint(len(f.created) + 1)
	f.created = append(f.created, r)
	return nil
}

type fakeAssessmentPublisher struct {
	published []model.AssessmentResult
	err       error
}

func (f *fakeAssessmentPublisher) Publish(_ context.Context, r model.AssessmentResult) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, r)
	return nil
}

func TestAssessmentSubmitValidates(t *testing.T) {
	svc := NewAssessmentService(&fakeAssessmentWriter{}, nil, nil, nil)

	_, err := svc.Submit(context.Background(), AssessmentInput{RiskLevel: "extreme"})
	require.ErrorIs(t, err, ErrInvalidRiskLevel)

	_, err = svc.Submit(context.Background(), AssessmentInput{RiskLevel: "low", AssessmentData: json.RawMessage(`{broken`)})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAssessmentSubmitWritesDirectly(t *testing.T) {
	writer := &fakeAssessmentWriter{}
	store := &fakeProgramStore{rows: []model.ProgramRow{row(1, "Clinic", model.DeliveryInPerson, "GA")}}
	svc := NewAssessmentService(writer, nil, NewProgramService(store, 25, nil), nil)

	out, err := svc.Submit(context.Background(), AssessmentInput{
		RiskLevel:               " HIGH ",
		RecommendedProgramTypes: []string{"in-person", " "},
		AssessmentData:          json.RawMessage(`{"age":52}`),
		State:                   "ga",
	})
	require.NoError(t, err)
	assert.False(t, out.Queued)
	require.Len(t, writer.created, 1)
	assert.Equal(t, model.RiskHigh, writer.created[0].RiskLevel)
	assert.NotEmpty(t, writer.created[0].SessionID)
	assert.Equal(t, []string{"in-person"}, []string(writer.created[0].RecommendedProgramTypes))
	assert.JSONEq(t, `{"age":52}`, string(writer.created[0].AssessmentData))

	require.NotNil(t, out.Recommended)
	assert.Equal(t, []string{"Clinic"}, names(out.Recommended.Programs))
	assert.Equal(t, "GA", store.lastState)
	assert.Equal(t, []string{model.DeliveryInPerson}, store.lastModes)
}

func TestAssessmentSubmitQueuesWhenPublisherPresent(t *testing.T) {
	writer := &fakeAssessmentWriter{}
	publisher := &fakeAssessmentPublisher{}
	svc := NewAssessmentService(writer, publisher, nil, nil)

	out, err := svc.Submit(context.Background(), AssessmentInput{SessionID: "s-1", RiskLevel: "medium"})
	require.NoError(t, err)
	assert.True(t, out.Queued)
	assert.Empty(t, writer.created)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "s-1", publisher.published[0].SessionID)

	publisher.err = errDBDown
	_, err = svc.Submit(context.Background(), AssessmentInput{RiskLevel: "low"})
	require.ErrorIs(t, err, errDBDown)
}

func TestAdminLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	svc := NewAdminService(string(hash), "signing-key", time.Hour)
	require.True(t, svc.Enabled())

	_, err = svc.Login(LoginInput{Username: "admin", Password: ""})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Login(LoginInput{Username: "admin", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredential)
	_, err = svc.Login(LoginInput{Username: "root", Password: "s3cret-pass"})
	require.ErrorIs(t, err, ErrInvalidCredential)

	res, err := svc.Login(LoginInput{Username: "admin", Password: "s3cret-pass"})
	require.NoError(t, err)
	claims, err := jwtutil.ParseToken("signing-key", res.Token)
	require.NoError(t, err)
	assert.Equal(t, jwtutil.RoleAdmin, claims.Role)
	assert.Equal(t, "admin", claims.Username)
}

func TestAdminLoginDisabledWithoutHash(t *testing.T) {
	svc := NewAdminService("", "signing-key", time.Hour)
	assert.False(t, svc.Enabled())
	_, err := svc.Login(LoginInput{Username: "admin", Password: "x"})
	require.ErrorIs(t, err, ErrAdminDisabled)
}
