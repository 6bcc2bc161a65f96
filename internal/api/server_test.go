package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/council-mode/council/internal/core"
	"github.com/council-mode/council/internal/council"
)

type fakeDeliberator struct {
	lastReq council.DeliberateRequest
	outcome *council.DeliberateOutcome
	err     error
}

func (f *fakeDeliberator) Deliberate(_ context.Context, req council.DeliberateRequest) (*council.DeliberateOutcome, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.outcome, nil
}

type fakeStore struct {
	deliberations map[string]*core.CouncilDeliberation
	summaries     []core.DeliberationSummary
	lastLimit     int
}

func (f *fakeStore) Save(_ context.Context, d *core.CouncilDeliberation) error { return nil }

func (f *fakeStore) Get(_ context.Context, id string) (*core.CouncilDeliberation, error) {
	if d, ok := f.deliberations[id]; ok {
		return d, nil
	}
	return nil, core.ErrNotFound("deliberation", id)
}

func (f *fakeStore) List(_ context.Context, limit int) ([]core.DeliberationSummary, error) {
	f.lastLimit = limit
	return f.summaries, nil
}

func (f *fakeStore) Close() error { return nil }

type fixedQuota struct{ used int }

func (q fixedQuota) UsedToday(context.Context, string) (int, error) { return q.used, nil }
func (q fixedQuota) Consume(context.Context, string) error         { return nil }

func sampleOutcome() *council.DeliberateOutcome {
	return &council.DeliberateOutcome{
		Decision: council.Decision{
			ShouldTrigger: true,
			Reason:        council.ReasonUserInvoked,
			Conditions:    []string{council.ReasonUserInvoked},
		},
		Deliberation: &core.CouncilDeliberation{
			ID:        "d-1",
			Query:     "should I refinance?",
			Agreement: core.AgreementAnalysis{Level: core.AgreementHigh, Score: 85},
			Synthesis: core.SynthesisResult{FinalText: "Refinance now."},
			Trigger:   core.TriggerUser,
			CreatedAt: time.Now().UTC(),
		},
		Display: core.DisplayDefault,
	}
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := NewServer(&fakeDeliberator{}, &fakeStore{})

	rec := doRequest(t, s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestCreateDeliberation_Triggered(t *testing.T) {
	engine := &fakeDeliberator{outcome: sampleOutcome()}
	s := NewServer(engine, &fakeStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/deliberations/",
		`{"query":"/council should I refinance?","user_id":"u1","tier":"pro"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var resp createDeliberationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !resp.Triggered || resp.Reason != council.ReasonUserInvoked {
		t.Errorf("decision = %+v", resp)
	}
	if resp.Deliberation == nil || resp.Deliberation.ID != "d-1" {
		t.Errorf("deliberation missing: %+v", resp.Deliberation)
	}
	if resp.Display != core.DisplayDefault {
		t.Errorf("display = %q", resp.Display)
	}

	if engine.lastReq.Context == nil {
		t.Fatal("trigger context missing for an identified user")
	}
	if engine.lastReq.Context.Tier != core.TierPro {
		t.Errorf("tier = %q", engine.lastReq.Context.Tier)
	}
}

func TestCreateDeliberation_Declined(t *testing.T) {
	engine := &fakeDeliberator{outcome: &council.DeliberateOutcome{
		Decision: council.Decision{Reason: council.ReasonNoTrigger},
	}}
	s := NewServer(engine, &fakeStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/deliberations/", `{"query":"simple question"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 when the council declines", rec.Code)
	}
	var resp createDeliberationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Triggered || resp.Deliberation != nil {
		t.Errorf("resp = %+v, want declined with no deliberation", resp)
	}
}

func TestCreateDeliberation_AnonymousHasNoContext(t *testing.T) {
	engine := &fakeDeliberator{outcome: sampleOutcome()}
	s := NewServer(engine, &fakeStore{})

	doRequest(t, s, http.MethodPost, "/api/v1/deliberations/", `{"query":"/council q"}`)

	if engine.lastReq.Context != nil {
		t.Error("anonymous requests must not carry a trigger context")
	}
}

func TestCreateDeliberation_QuotaResolved(t *testing.T) {
	engine := &fakeDeliberator{outcome: sampleOutcome()}
	s := NewServer(engine, &fakeStore{}, WithQuotaService(fixedQuota{used: 7}))

	doRequest(t, s, http.MethodPost, "/api/v1/deliberations/", `{"query":"/council q","user_id":"u1"}`)

	if got := engine.lastReq.Context.QueriesUsedToday; got != 7 {
		t.Errorf("QueriesUsedToday = %d, want 7", got)
	}
	if engine.lastReq.Context.Tier != core.TierFree {
		t.Errorf("tier = %q, want free default", engine.lastReq.Context.Tier)
	}
}

func TestCreateDeliberation_InvalidBody(t *testing.T) {
	s := NewServer(&fakeDeliberator{}, &fakeStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/deliberations/", `{broken`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestCreateDeliberation_TierLimit(t *testing.T) {
	engine := &fakeDeliberator{err: core.ErrTierLimitExceeded(core.TierFree, 3, 3)}
	s := NewServer(engine, &fakeStore{})

	rec := doRequest(t, s, http.MethodPost, "/api/v1/deliberations/", `{"query":"big question","user_id":"u1"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.Code != core.CodeTierLimit {
		t.Errorf("code = %q", resp.Code)
	}
}

func TestGetDeliberation(t *testing.T) {
	store := &fakeStore{deliberations: map[string]*core.CouncilDeliberation{
		"d-1": sampleOutcome().Deliberation,
	}}
	s := NewServer(&fakeDeliberator{}, store)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/deliberations/d-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var d core.CouncilDeliberation
	if err := json.Unmarshal(rec.Body.Bytes(), &d); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if d.ID != "d-1" {
		t.Errorf("ID = %q", d.ID)
	}
}

func TestGetDeliberation_NotFound(t *testing.T) {
	s := NewServer(&fakeDeliberator{}, &fakeStore{})

	rec := doRequest(t, s, http.MethodGet, "/api/v1/deliberations/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestGetSummary(t *testing.T) {
	store := &fakeStore{deliberations: map[string]*core.CouncilDeliberation{
		"d-1": sampleOutcome().Deliberation,
	}}
	s := NewServer(&fakeDeliberator{}, store)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/deliberations/d-1/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var summary council.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if summary.Consensus.Level != "strong" {
		t.Errorf("consensus level = %q, want strong", summary.Consensus.Level)
	}
	if summary.Answer != "Refinance now." {
		t.Errorf("answer = %q", summary.Answer)
	}
}

func TestListDeliberations(t *testing.T) {
	store := &fakeStore{summaries: []core.DeliberationSummary{
		{ID: "d-2"}, {ID: "d-1"},
	}}
	s := NewServer(&fakeDeliberator{}, store)

	rec := doRequest(t, s, http.MethodGet, "/api/v1/deliberations/?limit=10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.lastLimit != 10 {
		t.Errorf("limit = %d, want 10", store.lastLimit)
	}
	if !strings.Contains(rec.Body.String(), `"count":2`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestListDeliberations_BadLimit(t *testing.T) {
	s := NewServer(&fakeDeliberator{}, &fakeStore{})

	for _, raw := range []string{"0", "501", "abc"} {
		rec := doRequest(t, s, http.MethodGet, "/api/v1/deliberations/?limit="+raw, "")
		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("limit %q: status = %d, want 422", raw, rec.Code)
		}
	}
}
