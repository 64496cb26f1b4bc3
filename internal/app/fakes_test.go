package app

import (
	"context"
	"errors"
	"sort"
	"sync"

	"path2prevention/internal/ai"
	"path2prevention/internal/embedding"
	"path2prevention/internal/model"
	"path2prevention/internal/search"
)

var errDBDown = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

type fakeProgramStore struct {
	rows []model.ProgramRow
	err  error

	lastModes []string
	lastState string
	lastName  string
}

func (f *fakeProgramStore) SearchByLocation(_ context.Context, filter search.Filter) ([]model.ProgramRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.ProgramRow, 0)
	for _, r := range f.rows {
		if search.MatchesLocation(r, filter) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProgramStore) SearchByDeliveryModes(_ context.Context, modes []string) ([]model.ProgramRow, error) {
	f.lastModes = modes
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.ProgramRow, 0)
	for _, r := range f.rows {
		if search.MatchesDeliveryModes(r, modes) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeProgramStore) SearchByName(_ context.Context, name string) ([]model.ProgramRow, error) {
	f.lastName = name
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeProgramStore) ListAll(context.Context) ([]model.ProgramRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeProgramStore) GetByID(_ context.Context, id uint) (*model.ProgramRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.rows {
		if r.ID == id {
			row := r
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakeProgramStore) Recommended(_ context.Context, modes []string, state string) ([]model.ProgramRow, error) {
	f.lastModes = modes
	f.lastState = state
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

type fakeVectorStore struct {
	stats    *model.VectorStats
	statsErr error

	semantic    []model.ProgramRow
	semanticErr error
	vectorRows  []model.ProgramRow
	vectorErr   error
	textRows    []model.ProgramRow
	textErr     error

	// indexed, when set, makes SemanticSearch rank by cosine similarity
	// the way the pgvector query does.
	indexed []indexedProgram

	mu             sync.Mutex
	semanticCalls  int
	lastThreshold  float64
	upserts        []*model.ProgramVector
	upsertErrForID uint
	ensureErr      error
	ensured        bool
}

func (f *fakeVectorStore) Stats(context.Context) (*model.VectorStats, error) {
	return f.stats, f.statsErr
}

func (f *fakeVectorStore) SemanticSearch(_ context.Context, query []float32, limit int, threshold float64) ([]model.ProgramRow, error) {
	f.mu.Lock()
	f.semanticCalls++
	f.lastThreshold = threshold
	f.mu.Unlock()
	if f.semanticErr != nil {
		return nil, f.semanticErr
	}
	if f.indexed != nil {
		return f.rankIndexed(query, limit, threshold), nil
	}
	if len(f.semantic) > limit {
		return f.semantic[:limit], nil
	}
	return f.semantic, nil
}

type indexedProgram struct {
	row model.ProgramRow
	vec []float32
}

func (f *fakeVectorStore) rankIndexed(query []float32, limit int, threshold float64) []model.ProgramRow {
	out := make([]model.ProgramRow, 0, len(f.indexed))
	for _, p := range f.indexed {
		sim := embedding.Cosine(query, p.vec)
		if sim <= threshold {
			continue
		}
		row := p.row
		row.Similarity = &sim
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Similarity > *out[j].Similarity })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeVectorStore) VectorCandidates(context.Context, []float32, float64) ([]model.ProgramRow, error) {
	return f.vectorRows, f.vectorErr
}

func (f *fakeVectorStore) TextCandidates(context.Context, string) ([]model.ProgramRow, error) {
	return f.textRows, f.textErr
}

func (f *fakeVectorStore) EnsureSchema(context.Context) error {
	f.ensured = true
	return f.ensureErr
}

func (f *fakeVectorStore) Upsert(_ context.Context, row *model.ProgramVector) error {
	if f.upsertErrForID != 0 && row.ProgramID == f.upsertErrForID {
		return errors.New("upsert failed")
	}
	f.mu.Lock()
	f.upserts = append(f.upserts, row)
	f.mu.Unlock()
	return nil
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vec, nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vec) }

type fakeCompleter struct {
	reply string
	err   error

	mu       sync.Mutex
	messages []ai.ChatMessage
	opts     ai.CompletionOptions
}

func (f *fakeCompleter) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage, opts ai.CompletionOptions) (string, error) {
	f.mu.Lock()
	f.messages = messages
	f.opts = opts
	f.mu.Unlock()
	return f.reply, f.err
}

func fptr(v float64) *float64 { return &v }

func row(id uint, name, mode, state string) model.ProgramRow {
	return model.ProgramRow{ID: id, OrganizationName: name, DeliveryMode: mode, State: state, City: "Somewhere"}
}
