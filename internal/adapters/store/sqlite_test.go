package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/council-mode/council/internal/core"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "council", "deliberations.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func storedDeliberation(id string, createdAt time.Time) *core.CouncilDeliberation {
	return &core.CouncilDeliberation{
		ID:    id,
		Query: "should I refinance?",
		Tags:  []core.QueryType{core.QueryGeneral},
		Responses: []core.ModelResponse{
			{
				ModelID:     "claude",
				DisplayName: "Claude",
				Content:     "Refinance now.",
				Status:      core.StatusSuccess,
				Confidence:  core.Confidence{NormalizedScore: 82},
			},
		},
		Agreement: core.AgreementAnalysis{
			Level:         core.AgreementHigh,
			Score:         85,
			AlignedPoints: []string{"refinance"},
		},
		Synthesis: core.SynthesisResult{FinalText: "Refinance now."},
		Trigger:   core.TriggerUser,
		CreatedAt: createdAt,
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	want := storedDeliberation("d-1", time.Now().UTC())
	require.NoError(t, s.Save(ctx, want))

	got, err := s.Get(ctx, "d-1")
	require.NoError(t, err)

	assert.Equal(t, want.Query, got.Query)
	assert.Equal(t, core.AgreementHigh, got.Agreement.Level)
	require.Len(t, got.Responses, 1)
	assert.Equal(t, "claude", got.Responses[0].ModelID)
	assert.Equal(t, 82.0, got.Responses[0].Confidence.NormalizedScore)
}

func TestSQLiteStore_GetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get(context.Background(), "no-such-id")
	require.Error(t, err)
	assert.True(t, core.IsCategory(err, core.ErrCatNotFound), "err = %v", err)
}

func TestSQLiteStore_ListNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		d := storedDeliberation(fmt.Sprintf("d-%d", i), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, s.Save(ctx, d))
	}

	got, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "d-2", got[0].ID)
	assert.Equal(t, "d-1", got[1].ID)
	assert.Equal(t, core.AgreementHigh, got[0].AgreementLevel)
	assert.Equal(t, core.TriggerUser, got[0].Trigger)
	assert.True(t, got[0].CreatedAt.Equal(base.Add(2*time.Minute)), "CreatedAt = %v", got[0].CreatedAt)
}

func TestSQLiteStore_ListEmpty(t *testing.T) {
	s := openTestStore(t)

	got, err := s.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLiteStore_DuplicateID(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	d := storedDeliberation("dup", time.Now().UTC())
	require.NoError(t, s.Save(ctx, d))
	require.Error(t, s.Save(ctx, d), "saving the same id twice must fail")
}
