// Package analytics publishes favorite changes as Avro records to Kafka.
package analytics

import (
	"time"

	"github.com/hamba/avro/v2"

	"github.com/kartikshukla17/mashoor-landing-project/internal/favorites"
)

const FavoriteEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "mashur.analytics",
	"name": "favorite_event",
	"fields": [
		{"name": "session_id", "type": "string"},
		{"name": "kind", "type": {"type": "enum", "name": "kind", "symbols": ["add", "remove", "clear"]}},
		{"name": "product_id", "type": "string"},
		{"name": "slug", "type": "string"},
		{"name": "at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

var favoriteEventSchema = avro.MustParse(FavoriteEventSchemaTextV1)

type FavoriteEventV1 struct {
	SessionID string    `avro:"session_id"`
	Kind      string    `avro:"kind"`
	ProductID string    `avro:"product_id"`
	Slug      string    `avro:"slug"`
	At        time.Time `avro:"at"`
}

func NewFavoriteEvent(sessionID string, ch favorites.Change, at time.Time) FavoriteEventV1 {
	return FavoriteEventV1{
		SessionID: sessionID,
		Kind:      string(ch.Kind),
		ProductID: ch.ID,
		Slug:      ch.Product.Slug,
		At:        at.UTC().Truncate(time.Millisecond),
	}
}

func EncodeFavoriteEvent(ev FavoriteEventV1) ([]byte, error) {
	return avro.Marshal(favoriteEventSchema, ev)
}

func DecodeFavoriteEvent(data []byte) (FavoriteEventV1, error) {
	var ev FavoriteEventV1
	err := avro.Unmarshal(favoriteEventSchema, data, &ev)
	return ev, err
}
