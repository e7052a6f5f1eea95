package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/domain/daterange"
	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
	repo "github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/metrics"
)

// Mode selects the summary prompt.
type Mode string

const (
	ModeStandard Mode = "standard"
	ModeDeeper   Mode = "deeper"
)

const (
	emptyStandardSummary = "No diary entries were found for the selected period. Write some more to get a summary!"
	emptyDeeperAnalysis  = "No diary entries were found for deeper analysis."
)

var errEmptyGeneration = errors.New("generator returned no text")

// SummaryService turns a user's entries in a range into generated prose.
// The generator is called at most once per request and never retried.
type SummaryService struct {
	Entries   repo.DiaryEntryRepository
	Users     repo.UserRepository
	Generator Generator
	Timeout   time.Duration
	Location  *time.Location
	Metrics   *metrics.Metrics
	Logger    *logrus.Logger
	Now       func() time.Time
}

func NewSummaryService(entries repo.DiaryEntryRepository, users repo.UserRepository, gen Generator, timeout time.Duration, loc *time.Location, m *metrics.Metrics, logger *logrus.Logger) *SummaryService {
	return &SummaryService{
		Entries:   entries,
		Users:     users,
		Generator: gen,
		Timeout:   timeout,
		Location:  loc,
		Metrics:   m,
		Logger:    logger,
		Now:       time.Now,
	}
}

func (s *SummaryService) Summarize(ctx context.Context, ownerID string, rr RangeRequest, mode Mode) (string, error) {
	if mode != ModeDeeper {
		mode = ModeStandard
	}
	entries, err := rangeEntries(ctx, s.Entries, ownerID, rr, clock(s.Now, s.Location))
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		if mode == ModeDeeper {
			return emptyDeeperAnalysis, nil
		}
		return emptyStandardSummary, nil
	}

	prompt := s.buildPrompt(ctx, ownerID, entries, mode)

	c := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		c, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	start := time.Now()
	text, err := s.Generator.Generate(c, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyGeneration
	}
	if err != nil {
		s.Metrics.ObserveGeneration(string(mode), "error", time.Since(start))
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": ownerID, "mode": mode}).Error("generation failed")
		}
		if mode == ModeDeeper {
			return "", errs.External("Error generating deeper analysis.", err)
		}
		return "", errs.External("Error generating summary.", err)
	}
	s.Metrics.ObserveGeneration(string(mode), "ok", time.Since(start))
	return text, nil
}

// buildPrompt degrades to an empty profile when the user record is unreadable.
func (s *SummaryService) buildPrompt(ctx context.Context, ownerID string, entries []*entity.DiaryEntry, mode Mode) string {
	u, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", ownerID).Warn("profile context unavailable")
		}
		u = nil
	}
	profile := profileContext(u)
	text := transcript(entries, s.Location)
	if mode == ModeDeeper {
		return deeperPrompt(profile, text)
	}
	return standardPrompt(profile, text)
}

// clock returns the current time in loc, for range resolution.
func clock(now func() time.Time, loc *time.Location) time.Time {
	t := time.Now()
	if now != nil {
		t = now()
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t
}

// rangeEntries resolves rr and loads the owner's entries in it, oldest first.
func rangeEntries(ctx context.Context, entries repo.DiaryEntryRepository, ownerID string, rr RangeRequest, now time.Time) ([]*entity.DiaryEntry, error) {
	r, err := daterange.Resolve(rr.Range, rr.CustomStart, rr.CustomEnd, now)
	if err != nil {
		return nil, err
	}
	list, err := entries.List(ctx, repo.EntryQuery{
		OwnerID: ownerID,
		From:    r.Start,
		To:      r.End,
		Order:   repo.OldestFirst,
	})
	if err != nil {
		return nil, errs.Store("list entries", err)
	}
	return list, nil
}
