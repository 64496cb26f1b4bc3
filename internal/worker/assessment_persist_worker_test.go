package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"path2prevention/internal/model"
	"path2prevention/internal/platform/logger"
)

type recordingSink struct {
	saved []model.AssessmentResult
	err   error
}

func (s *recordingSink) Create(_ context.Context, result *model.AssessmentResult) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, *result)
	return nil
}

func TestHandlePersistsDecodedResult(t *testing.T) {
	sink := &recordingSink{}
	w := NewAssessmentPersistWorker(nil, sink, "q", logger.Nop())

	body, err := json.Marshal(model.AssessmentResult{
		ID:                      42,
		SessionID:               "abc",
		RiskLevel:               model.RiskHigh,
		RecommendedProgramTypes: []string{"in-person"},
	})
	require.NoError(t, err)

	require.NoError(t, w.Handle(context.Background(), body))
	require.Len(t, sink.saved, 1)
	assert.Equal(t, uint(0), sink.saved[0].ID)
	assert.Equal(t, "abc", sink.saved[0].SessionID)
	assert.Equal(t, model.RiskHigh, sink.saved[0].RiskLevel)
}

func TestHandleRejectsBadPayload(t *testing.T) {
	w := NewAssessmentPersistWorker(nil, &recordingSink{}, "q", logger.Nop())

	assert.ErrorContains(t, w.Handle(context.Background(), []byte("{")), "decode")
}

func TestHandleSurfacesSinkError(t *testing.T) {
	w := NewAssessmentPersistWorker(nil, &recordingSink{err: errors.New("db down")}, "q", logger.Nop())

	err := w.Handle(context.Background(), []byte(`{"session_id":"x","risk_level":"low"}`))

	assert.ErrorContains(t, err, "db down")
}

func TestRequeueOnlyWhenDatabaseUnreachable(t *testing.T) {
	w := NewAssessmentPersistWorker(nil, &recordingSink{err: errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")}, "q", logger.Nop())
	body := []byte(`{"session_id":"x","risk_level":"low"}`)

	assert.True(t, Requeue(w.Handle(context.Background(), body)))

	w = NewAssessmentPersistWorker(nil, &recordingSink{err: &pgconn.PgError{Code: "23502"}}, "q", logger.Nop())
	assert.False(t, Requeue(w.Handle(context.Background(), body)))

	assert.False(t, Requeue(w.Handle(context.Background(), []byte("{"))))
}
