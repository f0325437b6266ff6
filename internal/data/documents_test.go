package data

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocuments(t *testing.T) (DocumentModel, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return DocumentModel{Client: client, Prefix: "test:"}, mr
}

func TestDocumentModel_CRUD(t *testing.T) {
	m, mr := newTestDocuments(t)
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, "order", Document{"id": "o2", "total": 9.5}))
	require.NoError(t, m.Insert(ctx, "order", Document{"id": "o1", "total": 3}))

	assert.True(t, mr.Exists("test:order"))

	doc, err := m.Get(ctx, "order", "o2")
	require.NoError(t, err)
	assert.Equal(t, "o2", doc.ID())
	assert.Equal(t, json.Number("9.5"), doc["total"])

	docs, err := m.GetAll(ctx, "order")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "o1", docs[0].ID())
	assert.Equal(t, "o2", docs[1].ID())

	require.NoError(t, m.Update(ctx, "order", "o1", Document{"id": "other", "total": 4}))
	doc, err = m.Get(ctx, "order", "o1")
	require.NoError(t, err)
	assert.Equal(t, "o1", doc.ID())
	assert.Equal(t, json.Number("4"), doc["total"])

	require.NoError(t, m.Delete(ctx, "order", "o1"))
	_, err = m.Get(ctx, "order", "o1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDocumentModel_InsertGeneratesID(t *testing.T) {
	m, _ := newTestDocuments(t)

	doc := Document{"title": "hello"}
	require.NoError(t, m.Insert(context.Background(), "post", doc))
	assert.NotEmpty(t, doc.ID())

	stored, err := m.Get(context.Background(), "post", doc.ID())
	require.NoError(t, err)
	assert.Equal(t, "hello", stored["title"])
}

func TestDocumentModel_InsertNeverOverwrites(t *testing.T) {
	m, _ := newTestDocuments(t)
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, "post", Document{"id": "p1", "title": "first"}))
	err := m.Insert(ctx, "post", Document{"id": "p1", "title": "second"})
	assert.ErrorIs(t, err, ErrDuplicateRecord)

	doc, err := m.Get(ctx, "post", "p1")
	require.NoError(t, err)
	assert.Equal(t, "first", doc["title"])
}

func TestDocumentModel_Missing(t *testing.T) {
	m, mr := newTestDocuments(t)
	ctx := context.Background()

	_, err := m.Get(ctx, "post", "nope")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	err = m.Update(ctx, "post", "nope", Document{"title": "x"})
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.False(t, mr.Exists("test:post"))

	assert.ErrorIs(t, m.Delete(ctx, "post", "nope"), ErrRecordNotFound)

	docs, err := m.GetAll(ctx, "post")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentModel_CollectionsAreSeparate(t *testing.T) {
	m, _ := newTestDocuments(t)
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, "order", Document{"id": "x"}))
	_, err := m.Get(ctx, "post", "x")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestDocumentModel_CorruptEntry(t *testing.T) {
	m, mr := newTestDocuments(t)
	mr.HSet("test:order", "bad", "{not json")

	_, err := m.GetAll(context.Background(), "order")
	assert.ErrorContains(t, err, "decode order/bad")
}

func TestDocumentModel_Unreachable(t *testing.T) {
	m, mr := newTestDocuments(t)
	mr.Close()

	_, err := m.Get(context.Background(), "order", "o1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRecordNotFound)
}

func TestDocument_ID(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{name: "string", doc: Document{"id": "o1"}, want: "o1"},
		{name: "json number", doc: Document{"id": json.Number("7")}, want: "7"},
		{name: "float", doc: Document{"id": 7.0}, want: "7"},
		{name: "fractional float", doc: Document{"id": 2.5}, want: "2.5"},
		{name: "int", doc: Document{"id": 12}, want: "12"},
		{name: "missing", doc: Document{"title": "x"}, want: ""},
		{name: "object", doc: Document{"id": map[string]any{"a": 1}}, want: ""},
		{name: "bool", doc: Document{"id": true}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.doc.ID())
		})
	}
}

func TestDocumentModel_InsertNumericID(t *testing.T) {
	m, mr := newTestDocuments(t)
	ctx := context.Background()

	require.NoError(t, m.Insert(ctx, "order", Document{"id": json.Number("7"), "total": 1}))
	assert.True(t, mr.Exists("test:order"))

	doc, err := m.Get(ctx, "order", "7")
	require.NoError(t, err)
	assert.Equal(t, json.Number("7"), doc["id"])
	assert.Equal(t, "7", doc.ID())

	err = m.Insert(ctx, "order", Document{"id": 7.0})
	assert.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestDocumentModel_InsertRejectsInvalidID(t *testing.T) {
	m, mr := newTestDocuments(t)

	for _, id := range []any{true, []any{"a"}, map[string]any{"k": "v"}} {
		err := m.Insert(context.Background(), "order", Document{"id": id})
		assert.ErrorIs(t, err, ErrInvalidDocumentID)
	}
	assert.False(t, mr.Exists("test:order"))
}
