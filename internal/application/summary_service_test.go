package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/memory"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/metrics"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
)

func newSummaryService(t *testing.T, gen *stubGenerator) (*SummaryService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	svc := NewSummaryService(store.Entries(), store.Users(), gen, time.Second, time.UTC, metrics.New("test"), helpers.NewNopLogger())
	svc.Now = nowFunc
	return svc, store
}

func TestSummarize_EmptyRangeSkipsGenerator(t *testing.T) {
	gen := &stubGenerator{text: "should not be used"}
	svc, store := newSummaryService(t, gen)
	seedEntry(store, "old", "ann", "long ago", "", fixedNow.AddDate(0, -3, 0))

	got, err := svc.Summarize(context.Background(), "ann", RangeRequest{Range: "7days"}, ModeStandard)
	require.NoError(t, err)
	assert.Equal(t, emptyStandardSummary, got)

	got, err = svc.Summarize(context.Background(), "ann", RangeRequest{Range: "7days"}, ModeDeeper)
	require.NoError(t, err)
	assert.Equal(t, emptyDeeperAnalysis, got)
	assert.Zero(t, gen.calls)
}

func TestSummarize_PromptIsChronological(t *testing.T) {
	gen := &stubGenerator{text: "  a warm summary  "}
	svc, store := newSummaryService(t, gen)
	dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Users().Create(context.Background(), &entity.User{ID: "ann", Email: "ann@example.com", Gender: "female", DateOfBirth: &dob}))
	seedEntry(store, "e2", "ann", "second day", "", fixedNow.Add(-24*time.Hour))
	seedEntry(store, "e1", "ann", "first day", "Happy", fixedNow.Add(-48*time.Hour))
	seedEntry(store, "b1", "bob", "not mine", "", fixedNow.Add(-24*time.Hour))

	got, err := svc.Summarize(context.Background(), "ann", RangeRequest{Range: "7days"}, ModeStandard)
	require.NoError(t, err)
	assert.Equal(t, "  a warm summary  ", got, "generator text is returned unmodified")
	require.Equal(t, 1, gen.calls)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "The Narrative Weaver")
	assert.Contains(t, prompt, "Date: Thu Jun 13 2024, Feeling: Happy\nEntry: first day\n\n---\n\nDate: Fri Jun 14 2024, Feeling: Not specified\nEntry: second day")
	assert.NotContains(t, prompt, "not mine")
	assert.Contains(t, prompt, "- Gender: female")
	assert.Contains(t, prompt, "- Ethnicity: Not specified")
	assert.Contains(t, prompt, "- Date of Birth: Tue May 1 1990")
	assert.Contains(t, prompt, "Potential Areas for Growth")
}

func TestSummarize_DeeperPrompt(t *testing.T) {
	gen := &stubGenerator{text: "analysis"}
	svc, store := newSummaryService(t, gen)
	seedEntry(store, "e1", "ann", "I dreamt of a locked door", "", fixedNow.Add(-time.Hour))

	got, err := svc.Summarize(context.Background(), "ann", RangeRequest{}, ModeDeeper)
	require.NoError(t, err)
	assert.Equal(t, "analysis", got)
	for _, section := range []string{"Defense Mechanisms", "Parapraxes", "Dream Interpretation", "Subconscious Mind", "Concluding Insight", "this could suggest"} {
		assert.Contains(t, gen.prompts[0], section)
	}
	assert.Contains(t, gen.prompts[0], "- Gender: Not specified", "missing profile degrades to placeholders")
}

func TestSummarize_GeneratorFailures(t *testing.T) {
	for name, gen := range map[string]*stubGenerator{
		"error": {err: errors.New("quota exceeded")},
		"empty": {text: " \n "},
	} {
		t.Run(name, func(t *testing.T) {
			svc, store := newSummaryService(t, gen)
			seedEntry(store, "e1", "ann", "text", "", fixedNow.Add(-time.Hour))

			_, err := svc.Summarize(context.Background(), "ann", RangeRequest{Range: "all"}, ModeStandard)
			assert.ErrorIs(t, err, errs.ErrExternal)
			assert.Equal(t, "Error generating summary.", errs.Message(err))
			assert.Equal(t, 1, gen.calls, "no retry")
		})
	}
}

func TestSummarize_CustomRange(t *testing.T) {
	gen := &stubGenerator{text: "ok"}
	svc, store := newSummaryService(t, gen)
	seedEntry(store, "in", "ann", "inside", "", time.Date(2024, 3, 10, 23, 30, 0, 0, time.UTC))
	seedEntry(store, "out", "ann", "outside", "", time.Date(2024, 3, 11, 0, 0, 1, 0, time.UTC))

	_, err := svc.Summarize(context.Background(), "ann", RangeRequest{Range: "custom", CustomStart: "2024-03-01"}, ModeStandard)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Zero(t, gen.calls)

	_, err = svc.Summarize(context.Background(), "ann", RangeRequest{Range: "custom", CustomStart: "2024-03-01", CustomEnd: "2024-03-10"}, ModeStandard)
	require.NoError(t, err)
	assert.Contains(t, gen.prompts[0], "inside")
	assert.False(t, strings.Contains(gen.prompts[0], "outside"))
}
