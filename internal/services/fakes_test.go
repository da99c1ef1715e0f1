package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"tripwise/internal/models/db_models"
	"tripwise/internal/repositories"
	"tripwise/pkg/utils"
)

type fakeAccountRepo struct {
	byID map[string]*db_models.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byID: map[string]*db_models.Account{}}
}

func (r *fakeAccountRepo) InsertTx(_ context.Context, a *db_models.Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.byID[a.ID.String()] = a
	return nil
}

func (r *fakeAccountRepo) FindById(_ context.Context, id string) (*db_models.Account, error) {
	return r.byID[id], nil
}

func (r *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*db_models.Account, error) {
	for _, a := range r.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

type fakeItineraryRepo struct {
	byID map[string]*db_models.Itinerary
	// embeddings, when set, is cleared alongside Delete like the real cascade.
	embeddings *fakeEmbeddingRepo
}

func newFakeItineraryRepo() *fakeItineraryRepo {
	return &fakeItineraryRepo{byID: map[string]*db_models.Itinerary{}}
}

func (r *fakeItineraryRepo) Create(_ context.Context, it *db_models.Itinerary) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	r.byID[it.ID.String()] = it
	return nil
}

func (r *fakeItineraryRepo) FindByID(_ context.Context, id string) (*db_models.Itinerary, error) {
	return r.byID[id], nil
}

func (r *fakeItineraryRepo) ListByAccount(_ context.Context, accountID string) ([]db_models.Itinerary, error) {
	var out []db_models.Itinerary
	for _, it := range r.byID {
		if it.AccountID.String() == accountID {
			out = append(out, *it)
		}
	}
	return out, nil
}

func (r *fakeItineraryRepo) Update(_ context.Context, it *db_models.Itinerary) error {
	r.byID[it.ID.String()] = it
	return nil
}

func (r *fakeItineraryRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	if r.embeddings != nil {
		delete(r.embeddings.byID, id)
	}
	return nil
}

type fakeEmbeddingRepo struct {
	byID    map[string]*db_models.ItineraryEmbedding
	similar []db_models.ItineraryEmbedding
}

func newFakeEmbeddingRepo() *fakeEmbeddingRepo {
	return &fakeEmbeddingRepo{byID: map[string]*db_models.ItineraryEmbedding{}}
}

func (r *fakeEmbeddingRepo) Upsert(_ context.Context, e *db_models.ItineraryEmbedding) error {
	r.byID[e.ItineraryID.String()] = e
	return nil
}

func (r *fakeEmbeddingRepo) FindSimilar(_ context.Context, _ string, _ pgvector.Vector, _ string, limit int) ([]db_models.ItineraryEmbedding, error) {
	if len(r.similar) > limit {
		return r.similar[:limit], nil
	}
	return r.similar, nil
}

func (r *fakeEmbeddingRepo) FindByItineraryID(_ context.Context, id string) (*db_models.ItineraryEmbedding, error) {
	return r.byID[id], nil
}

type fakeExpenseRepo struct {
	byID map[string]*db_models.Expense
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{byID: map[string]*db_models.Expense{}}
}

func (r *fakeExpenseRepo) Create(_ context.Context, e *db_models.Expense) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.byID[e.ID.String()] = e
	return nil
}

func (r *fakeExpenseRepo) FindByID(_ context.Context, id string) (*db_models.Expense, error) {
	return r.byID[id], nil
}

func (r *fakeExpenseRepo) matches(e *db_models.Expense, accountID string, f repositories.ExpenseFilter) bool {
	if e.AccountID.String() != accountID {
		return false
	}
	if f.ItineraryID != "" && (e.ItineraryID == nil || e.ItineraryID.String() != f.ItineraryID) {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.StartDate != "" && e.ExpenseDate < f.StartDate {
		return false
	}
	if f.EndDate != "" && e.ExpenseDate > f.EndDate {
		return false
	}
	return true
}

func (r *fakeExpenseRepo) List(_ context.Context, accountID string, f repositories.ExpenseFilter) ([]db_models.Expense, error) {
	var out []db_models.Expense
	for _, e := range r.byID {
		if r.matches(e, accountID, f) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpenseDate > out[j].ExpenseDate })
	return out, nil
}

func (r *fakeExpenseRepo) Update(_ context.Context, e *db_models.Expense) error {
	r.byID[e.ID.String()] = e
	return nil
}

func (r *fakeExpenseRepo) Delete(_ context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func (r *fakeExpenseRepo) TotalsByCategory(_ context.Context, accountID, itineraryID string) ([]repositories.CategoryTotal, error) {
	totals := map[string]*repositories.CategoryTotal{}
	for _, e := range r.byID {
		if !r.matches(e, accountID, repositories.ExpenseFilter{ItineraryID: itineraryID}) {
			continue
		}
		t, ok := totals[e.Category]
		if !ok {
			t = &repositories.CategoryTotal{Category: e.Category}
			totals[e.Category] = t
		}
		t.Total += e.Amount
		t.Count++
	}
	out := make([]repositories.CategoryTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	return out, nil
}

// fakeAI replays canned answers in order; once exhausted it repeats the last.
type fakeAI struct {
	mu        sync.Mutex
	responses []string
	err       error
	embedErr  error
	calls     int
	prompts   []string
}

func (f *fakeAI) Provider() string { return "fake" }

func (f *fakeAI) CompleteJSON(_ context.Context, _, userPrompt string, _ float32) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, userPrompt)
	if f.err != nil {
		return "", f.err
	}
	if len(f.responses) == 0 {
		return "", errors.New("no canned response")
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], nil
}

func (f *fakeAI) GetEmbedding(_ context.Context, text string) (pgvector.Vector, error) {
	if f.embedErr != nil {
		return pgvector.Vector{}, f.embedErr
	}
	return utils.TextToVector(text), nil
}

func (f *fakeAI) Close() error { return nil }

type fakeTranscriber struct {
	text     string
	err      error
	language string
	audio    []byte
}

func (f *fakeTranscriber) Transcribe(_ context.Context, audio io.Reader, _, language string) (string, error) {
	f.language = language
	f.audio, _ = io.ReadAll(audio)
	return f.text, f.err
}
