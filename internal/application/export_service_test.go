package application

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/errs"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/memory"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/metrics"
	"github.com/oksasatya/narrative-weaver/pkg/document"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
)

func newExportService(t *testing.T) (*ExportService, *memory.Store, *countingEntries) {
	t.Helper()
	store := memory.NewStore()
	entries := &countingEntries{DiaryEntryRepository: store.Entries()}
	svc := NewExportService(entries, time.UTC, metrics.New("test"), helpers.NewNopLogger())
	svc.Now = nowFunc
	return svc, store, entries
}

func TestExport_UnsupportedFormatBeforeQuery(t *testing.T) {
	svc, _, entries := newExportService(t)

	_, err := svc.Export(context.Background(), "ann", RangeRequest{}, "txt")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "Unsupported format", errs.Message(err))
	assert.Zero(t, entries.lists)
}

func TestExport_EmptyRange(t *testing.T) {
	svc, store, _ := newExportService(t)
	seedEntry(store, "e1", "ann", "old", "", fixedNow.AddDate(-2, 0, 0))

	_, err := svc.Export(context.Background(), "ann", RangeRequest{Range: "year"}, "pdf")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, "No entries found for the selected range.", errs.Message(err))
}

func TestExport_PDF(t *testing.T) {
	svc, store, _ := newExportService(t)
	seedEntry(store, "e1", "ann", "hello", "Happy", fixedNow)

	res, err := svc.Export(context.Background(), "ann", RangeRequest{Range: "all"}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "MyDiary.pdf", res.Filename)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.True(t, bytes.HasPrefix(res.Body, []byte("%PDF-")))
}

func TestExport_DOCX(t *testing.T) {
	svc, store, _ := newExportService(t)
	seedEntry(store, "e2", "ann", "second", "", fixedNow)
	seedEntry(store, "e1", "ann", "first", "Calm", fixedNow.Add(-time.Hour))

	res, err := svc.Export(context.Background(), "ann", RangeRequest{}, "docx")
	require.NoError(t, err)
	assert.Equal(t, "MyDiary.docx", res.Filename)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", res.ContentType)

	zr, err := zip.NewReader(bytes.NewReader(res.Body), int64(len(res.Body)))
	require.NoError(t, err)
	var body string
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			b, _ := io.ReadAll(rc)
			_ = rc.Close()
			body = string(b)
		}
	}
	assert.Contains(t, body, ExportTitle)
	assert.Less(t, bytes.Index([]byte(body), []byte("first")), bytes.Index([]byte(body), []byte("second")))
	assert.Contains(t, body, "Feeling: Calm")
}

func utf16be(s string) []byte {
	out := make([]byte, 0, 2*len(s))
	for _, r := range s {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}

func TestExport_AllAsPDFKeepsEveryEntryOldestFirst(t *testing.T) {
	svc, store, _ := newExportService(t)
	svc.Renderers["pdf"] = document.PDF{Uncompressed: true}
	seedEntry(store, "e3", "ann", "charlie", "Tired", fixedNow)
	seedEntry(store, "e1", "ann", "alpha", "Calm", fixedNow.AddDate(-1, 0, 0))
	seedEntry(store, "e2", "ann", "bravo", "", fixedNow.AddDate(0, -1, 0))
	seedEntry(store, "x1", "bob", "zulu", "", fixedNow)

	res, err := svc.Export(context.Background(), "ann", RangeRequest{Range: "all"}, "pdf")
	require.NoError(t, err)

	stamps := []string{"6/15/2023, 12:00:00 PM", "5/15/2024, 12:00:00 PM", "6/15/2024, 12:00:00 PM"}
	words := []string{"alpha", "bravo", "charlie"}
	prev := -1
	for i := range words {
		stamp, word := utf16be(stamps[i]), utf16be(words[i])
		assert.Equal(t, 1, bytes.Count(res.Body, stamp), stamps[i])
		assert.Equal(t, 1, bytes.Count(res.Body, word), words[i])
		at := bytes.Index(res.Body, stamp)
		assert.Greater(t, at, prev, "block %d out of order", i)
		assert.Greater(t, bytes.Index(res.Body, word), at)
		prev = at
	}
	assert.NotContains(t, string(res.Body), string(utf16be("zulu")))
}

func TestExport_EmptyRangeDOCX(t *testing.T) {
	svc, store, _ := newExportService(t)
	seedEntry(store, "e1", "ann", "old", "", fixedNow.AddDate(0, -2, 0))

	res, err := svc.Export(context.Background(), "ann", RangeRequest{Range: "week"}, "docx")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, errs.ErrNotFound)
	assert.Equal(t, "No entries found for the selected range.", errs.Message(err))
}

func TestExportBlocks(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	blocks := exportBlocks([]*entity.DiaryEntry{
		{Text: "a", Feeling: "Happy", CreatedAt: time.Date(2024, 1, 5, 8, 4, 5, 0, time.UTC)},
		{Text: "b", CreatedAt: time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)},
	}, loc)

	require.Len(t, blocks, 2)
	assert.Equal(t, "1/5/2024, 3:04:05 PM", blocks[0].Timestamp)
	assert.Equal(t, "Feeling: Happy", blocks[0].Feeling)
	assert.Equal(t, "a", blocks[0].Body)
	assert.Equal(t, "1/1/2025, 3:00:00 AM", blocks[1].Timestamp)
	assert.Empty(t, blocks[1].Feeling)
}
