package service

import (
	"context"
	"sync"

	"surveyhub/internal/model"
	"surveyhub/internal/repository"
)

type fakeFetcher struct {
	payloads *model.Payloads
	err      error
	calls    int
}

func (f *fakeFetcher) FetchAll(context.Context) (*model.Payloads, error) {
	f.calls++
	return f.payloads, f.err
}

// fakeRepo keeps documents in memory. ReplaceAll writes to a staging slice
// first, like the Mongo repository does with its staging collection.
type fakeRepo struct {
	exists  bool
	docs    []model.Document
	staged  []model.Document
	indexed int
	finds   int

	// insertErr fails ReplaceAll after failAfter documents were staged
	insertErr error
	failAfter int
	replaced  int
}

func (r *fakeRepo) CollectionExists(context.Context) (bool, error) { return r.exists, nil }

func (r *fakeRepo) ReplaceAll(_ context.Context, docs []model.Document) (int, error) {
	r.staged = nil
	for i, d := range docs {
		if r.insertErr != nil && i == r.failAfter {
			r.staged = nil
			return 0, r.insertErr
		}
		r.staged = append(r.staged, d)
	}
	r.docs, r.staged = r.staged, nil
	r.exists = true
	r.replaced++
	return len(r.docs), nil
}

func (r *fakeRepo) FindAll(context.Context) ([]model.Document, error) {
	return append([]model.Document{}, r.docs...), nil
}

func (r *fakeRepo) FindByRespondentID(_ context.Context, id string) (*model.Document, error) {
	r.finds++
	for _, d := range r.docs {
		if d.RespondentID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeRepo) Replace(_ context.Context, doc *model.Document) error {
	for i, d := range r.docs {
		if d.RecordID == doc.RecordID {
			r.docs[i] = *doc
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	for i, d := range r.docs {
		if d.RespondentID == id {
			r.docs = append(r.docs[:i], r.docs[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) EnsureIndexes(context.Context) error {
	r.indexed++
	return nil
}

type fakeLock struct {
	held     bool
	released int
}

func (l *fakeLock) Acquire(context.Context) (string, error) {
	if l.held {
		return "", nil
	}
	l.held = true
	return "token", nil
}

func (l *fakeLock) Release(context.Context, string) error {
	l.held = false
	l.released++
	return nil
}

type fakeCache struct {
	docs    map[string]*model.Document
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{docs: map[string]*model.Document{}}
}

func (c *fakeCache) Set(_ context.Context, doc *model.Document) error {
	c.docs[doc.RespondentID] = doc
	return nil
}

func (c *fakeCache) Get(_ context.Context, id string) (*model.Document, error) {
	return c.docs[id], nil
}

func (c *fakeCache) Delete(_ context.Context, id string) error {
	c.deletes++
	delete(c.docs, id)
	return nil
}

type message struct {
	Type    string
	Payload interface{}
}

type recordingBroadcaster struct {
	mu       sync.Mutex
	messages []message
}

func (b *recordingBroadcaster) Broadcast(msgType string, payload interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, message{msgType, payload})
}

func (b *recordingBroadcaster) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, m := range b.messages {
		out = append(out, m.Type)
	}
	return out
}
