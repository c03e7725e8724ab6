package favorites

import (
	"context"
	"time"

	"github.com/hamba/avro/v2"

	"github.com/kartikshukla17/mashoor-landing-project/internal/catalog"
)

// SnapshotStore persists the favorites of a session between processes.
type SnapshotStore interface {
	// Load returns the saved favorites, or nil when the session has none.
	Load(ctx context.Context, sessionID string) ([]catalog.ProductView, error)
	// Save replaces the saved favorites; an empty list deletes them.
	Save(ctx context.Context, sessionID string, items []catalog.ProductView) error
}

const snapshotSchemaText = `{
	"type": "record",
	"namespace": "mashur.favorites",
	"name": "snapshot",
	"fields": [
		{"name": "session_id", "type": "string"},
		{"name": "saved_at", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "items", "type": {"type": "array", "items": {
			"type": "record",
			"name": "favorite",
			"fields": [
				{"name": "id", "type": "string"},
				{"name": "slug", "type": "string"},
				{"name": "name", "type": "string"},
				{"name": "description", "type": "string"},
				{"name": "price", "type": "double"},
				{"name": "currency", "type": "string"},
				{"name": "image", "type": "string"},
				{"name": "has_image", "type": "boolean"}
			]
		}}}
	]
}`

var snapshotSchema = avro.MustParse(snapshotSchemaText)

type snapshotV1 struct {
	SessionID string       `avro:"session_id"`
	SavedAt   time.Time    `avro:"saved_at"`
	Items     []favoriteV1 `avro:"items"`
}

type favoriteV1 struct {
	ID          string  `avro:"id"`
	Slug        string  `avro:"slug"`
	Name        string  `avro:"name"`
	Description string  `avro:"description"`
	Price       float64 `avro:"price"`
	Currency    string  `avro:"currency"`
	Image       string  `avro:"image"`
	HasImage    bool    `avro:"has_image"`
}

func encodeSnapshot(sessionID string, at time.Time, items []catalog.ProductView) ([]byte, error) {
	s := snapshotV1{
		SessionID: sessionID,
		SavedAt:   at.UTC().Truncate(time.Millisecond),
		Items:     make([]favoriteV1, len(items)),
	}
	for i, p := range items {
		s.Items[i] = favoriteV1(p)
	}
	return avro.Marshal(snapshotSchema, s)
}

func decodeSnapshot(data []byte) (snapshotV1, []catalog.ProductView, error) {
	var s snapshotV1
	if err := avro.Unmarshal(snapshotSchema, data, &s); err != nil {
		return snapshotV1{}, nil, err
	}
	items := make([]catalog.ProductView, len(s.Items))
	for i, f := range s.Items {
		items[i] = catalog.ProductView(f)
	}
	return s, items, nil
}
