package data

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidDocumentID is returned when a document's "id" is neither a string
// nor a number.
var ErrInvalidDocumentID = errors.New("invalid document id")

// Document is an opaque JSON object stored by the MDB service. Its "id"
// field is the key within its collection.
type Document map[string]any

// ID returns the document's key, or "" if it has none or its id is not
// usable as a key.
func (d Document) ID() string {
	id, _ := d.key()
	return id
}

// key turns the "id" field into a hash field name. Numbers are keyed by their
// decimal text so {"id": 7} lives at "7".
func (d Document) key() (string, error) {
	switch id := d["id"].(type) {
	case nil:
		return "", nil
	case string:
		return id, nil
	case json.Number:
		return id.String(), nil
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64), nil
	case int, int64:
		return fmt.Sprint(id), nil
	default:
		return "", ErrInvalidDocumentID
	}
}

// updateIfExistsScript replaces a hash field only when it already exists.
// KEYS[1] = collection hash
// ARGV[1] = document id
// ARGV[2] = encoded document
var updateIfExistsScript = redis.NewScript(`
	if redis.call('HEXISTS', KEYS[1], ARGV[1]) == 1 then
		redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
		return 1
	end
	return 0
`)

// DocumentModel keeps each collection in one Redis hash mapping id to the
// encoded document.
type DocumentModel struct {
	Client *redis.Client
	Prefix string
}

func (m DocumentModel) key(collection string) string {
	return m.Prefix + collection
}

func decodeDocument(raw string) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetAll returns every document in collection ordered by id.
func (m DocumentModel) GetAll(ctx context.Context, collection string) ([]Document, error) {
	entries, err := m.Client.HGetAll(ctx, m.key(collection)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	docs := make([]Document, 0, len(ids))
	for _, id := range ids {
		doc, err := decodeDocument(entries[id])
		if err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, id, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Get returns one document.
func (m DocumentModel) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := m.Client.HGet(ctx, m.key(collection), id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return decodeDocument(raw)
}

// Insert stores doc under its id, generating one when it has none. An
// existing document with the same id is never overwritten.
func (m DocumentModel) Insert(ctx context.Context, collection string, doc Document) error {
	id, err := doc.key()
	if err != nil {
		return err
	}
	if id == "" {
		id = uuid.NewString()
		doc["id"] = id
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	created, err := m.Client.HSetNX(ctx, m.key(collection), id, raw).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrDuplicateRecord
	}
	return nil
}

// Update replaces the document stored under id. The id inside doc is forced
// to match.
func (m DocumentModel) Update(ctx context.Context, collection, id string, doc Document) error {
	doc["id"] = id

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	updated, err := updateIfExistsScript.Run(ctx, m.Client, []string{m.key(collection)}, id, raw).Int()
	if err != nil {
		return err
	}
	if updated == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Delete removes the document stored under id.
func (m DocumentModel) Delete(ctx context.Context, collection, id string) error {
	n, err := m.Client.HDel(ctx, m.key(collection), id).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRecordNotFound
	}
	return nil
}
