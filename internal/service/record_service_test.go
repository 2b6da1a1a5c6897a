package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"surveyhub/internal/model"
	"surveyhub/internal/repository"
)

func strp(s string) *string { return &s }

func storedDoc(id string) model.Document {
	return model.Document{
		RecordID:     primitive.NewObjectID(),
		RespondentID: id,
		CommonFields: model.CommonFields{Status: strp("Complete")},
		SurveyData: map[string]model.AnswerEntry{
			"q1": {Question: strp("Color"), Answer: model.TextAnswer("Blue")},
		},
	}
}

func newRecordFixture() (*RecordService, *fakeRepo, *fakeCache, *recordingBroadcaster) {
	repo := &fakeRepo{exists: true, docs: []model.Document{storedDoc("r1"), storedDoc("r2")}}
	c := newFakeCache()
	events := &recordingBroadcaster{}
	svc := NewRecordService(repo, c, nil, nil)
	svc.SetBroadcaster(events)
	return svc, repo, c, events
}

func TestRecordService_GetIsCached(t *testing.T) {
	svc, repo, c, _ := newRecordFixture()
	ctx := context.Background()

	first, err := svc.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", first.RespondentID)
	assert.Contains(t, c.docs, "r1")

	_, err = svc.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.finds, "second read is served from cache")
}

func TestRecordService_GetNotFound(t *testing.T) {
	svc, _, _, _ := newRecordFixture()

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRecordService_Update(t *testing.T) {
	svc, repo, c, events := newRecordFixture()
	ctx := context.Background()
	original := repo.docs[0]

	_, err := svc.Get(ctx, "r1")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "r1", &model.DocumentUpdate{
		CommonFields: model.CommonFields{Status: strp("Reviewed")},
	})
	require.NoError(t, err)

	assert.Equal(t, original.RecordID, updated.RecordID, "record id is kept")
	assert.Equal(t, "r1", updated.RespondentID)
	assert.Equal(t, "Reviewed", *repo.docs[0].Status)
	assert.NotNil(t, repo.docs[0].SurveyData)
	assert.Empty(t, repo.docs[0].SurveyData)
	assert.NotContains(t, c.docs, "r1", "cache is invalidated")
	assert.Equal(t, []string{MsgRecordUpdated}, events.types())
}

func TestRecordService_Delete(t *testing.T) {
	svc, repo, c, events := newRecordFixture()
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, "r2"))
	assert.Len(t, repo.docs, 1)
	assert.Equal(t, 1, c.deletes)
	assert.Equal(t, []string{MsgRecordDeleted}, events.types())

	assert.ErrorIs(t, svc.Delete(ctx, "r2"), repository.ErrNotFound)
}

func TestRecordService_WithoutCache(t *testing.T) {
	repo := &fakeRepo{docs: []model.Document{storedDoc("r1")}}
	svc := NewRecordService(repo, nil, nil, nil)

	doc, err := svc.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", doc.RespondentID)

	issues, err := svc.Validate(context.Background(), "r1")
	require.NoError(t, err)
	assert.Empty(t, issues)
}
