package application

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
	repo "github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/metrics"
	"github.com/oksasatya/narrative-weaver/pkg/document"
)

const (
	ExportTitle       = "My Diary Entries from The Narrative Weaver"
	exportBaseName    = "MyDiary"
	exportTimeLayout  = "1/2/2006, 3:04:05 PM"
	exportFeelingLead = "Feeling: "
)

// ExportResult is a rendered download.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders a range of entries with the renderer registered for
// the requested format.
type ExportService struct {
	Entries   repo.DiaryEntryRepository
	Renderers map[string]document.Renderer
	Location  *time.Location
	Metrics   *metrics.Metrics
	Logger    *logrus.Logger
	Now       func() time.Time
}

// NewExportService registers the PDF and DOCX renderers.
func NewExportService(entries repo.DiaryEntryRepository, loc *time.Location, m *metrics.Metrics, logger *logrus.Logger) *ExportService {
	return &ExportService{
		Entries: entries,
		Renderers: map[string]document.Renderer{
			"pdf":  document.PDF{},
			"docx": document.DOCX{},
		},
		Location: loc,
		Metrics:  m,
		Logger:   logger,
		Now:      time.Now,
	}
}

func (s *ExportService) Export(ctx context.Context, ownerID string, rr RangeRequest, format string) (*ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	renderer, ok := s.Renderers[format]
	if !ok {
		return nil, errs.Validation("Unsupported format")
	}

	entries, err := rangeEntries(ctx, s.Entries, ownerID, rr, clock(s.Now, s.Location))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errs.NotFound("No entries found for the selected range.")
	}

	body, err := renderer.Render(document.Document{Title: ExportTitle, Blocks: exportBlocks(entries, s.Location)})
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"user_id": ownerID, "format": format}).Error("render export failed")
		}
		return nil, errs.External("Failed to export entries.", err)
	}
	s.Metrics.ObserveExport(format)
	return &ExportResult{
		Filename:    exportBaseName + "." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

// exportBlocks is the one entry-to-block mapping shared by every renderer.
func exportBlocks(entries []*entity.DiaryEntry, loc *time.Location) []document.Block {
	if loc == nil {
		loc = time.UTC
	}
	blocks := make([]document.Block, 0, len(entries))
	for _, e := range entries {
		var feeling string
		if f := strings.TrimSpace(e.Feeling); f != "" {
			feeling = exportFeelingLead + f
		}
		blocks = append(blocks, document.Block{
			Timestamp: e.CreatedAt.In(loc).Format(exportTimeLayout),
			Feeling:   feeling,
			Body:      e.Text,
		})
	}
	return blocks
}
