package application

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/narrative-weaver/internal/domain/entity"
	"github.com/oksasatya/narrative-weaver/internal/domain/repository"
	"github.com/oksasatya/narrative-weaver/internal/infrastructure/memory"
	"github.com/oksasatya/narrative-weaver/pkg/helpers"
	"github.com/oksasatya/narrative-weaver/pkg/mailer"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func nowFunc() time.Time { return fixedNow }

type stubGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   int
	prompts []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

type fakeIndex struct {
	mu        sync.Mutex
	put       []string
	removed   []string
	owners    []string
	searchIDs []string
	searchErr error
}

func (x *fakeIndex) Put(_ context.Context, e *entity.DiaryEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.put = append(x.put, e.ID)
	return nil
}

func (x *fakeIndex) Remove(_ context.Context, id string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.removed = append(x.removed, id)
	return nil
}

func (x *fakeIndex) RemoveByOwner(_ context.Context, ownerID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.owners = append(x.owners, ownerID)
	return nil
}

func (x *fakeIndex) Search(context.Context, string, string, int) ([]string, error) {
	return x.searchIDs, x.searchErr
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (p *fakePublisher) PublishJSON(_ context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobs = append(p.jobs, body.(mailer.EmailJob))
	return nil
}

func (p *fakePublisher) templates() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.jobs))
	for _, j := range p.jobs {
		out = append(out, j.Template)
	}
	return out
}

type fakeImages struct {
	path        string
	contentType string
	body        string
}

func (f *fakeImages) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	b, _ := io.ReadAll(r)
	f.path, f.contentType, f.body = objectPath, contentType, string(b)
	return "https://storage.googleapis.com/bucket/" + objectPath, nil
}

// countingEntries records List calls on top of a real repository.
type countingEntries struct {
	repository.DiaryEntryRepository
	lists int
}

func (c *countingEntries) List(ctx context.Context, q repository.EntryQuery) ([]*entity.DiaryEntry, error) {
	c.lists++
	return c.DiaryEntryRepository.List(ctx, q)
}

func seedEntry(store *memory.Store, id, owner, text, feeling string, at time.Time) {
	_ = store.Entries().Create(context.Background(), &entity.DiaryEntry{
		ID: id, OwnerID: owner, Text: text, Feeling: feeling, CreatedAt: at, UpdatedAt: at,
	})
}

func seedUser(store *memory.Store, id, email, password string) *entity.User {
	hash, _ := helpers.HashPassword(password)
	u := &entity.User{ID: id, Name: strings.ToUpper(id[:1]) + id[1:], Email: email, Password: hash, CreatedAt: fixedNow, UpdatedAt: fixedNow}
	_ = store.Users().Create(context.Background(), u)
	return u
}
