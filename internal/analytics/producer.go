package analytics

import (
	"context"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/kartikshukla17/mashoor-landing-project/internal/favorites"
)

// Emitter receives favorite changes tagged with their session.
type Emitter interface {
	Emit(sessionID string, ch favorites.Change)
	Close(ctx context.Context) error
}

// ProducerClient is the part of *kgo.Client the emitter uses.
type ProducerClient interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// Nop drops every event. It is used when no brokers are configured.
type Nop struct{}

func (Nop) Emit(string, favorites.Change) {}
func (Nop) Close(context.Context) error { return nil }

type KafkaEmitter struct {
	cl  ProducerClient
	log *zap.Logger
	now func() time.Time
}

// NewKafkaClient connects a producer that writes to topic and checks that
// at least one seed broker answers.
func NewKafkaClient(ctx context.Context, brokers []string, topic string) (*kgo.Client, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopicAlways(),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, err
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, err
	}
	return cl, nil
}

func NewKafkaEmitter(cl ProducerClient, log *zap.Logger) *KafkaEmitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaEmitter{cl: cl, log: log, now: time.Now}
}

// Emit produces asynchronously; delivery failures are logged, never
// returned, so a broker outage cannot fail a page view. Records are keyed
// by session id to keep one session's events ordered.
func (e *KafkaEmitter) Emit(sessionID string, ch favorites.Change) {
	value, err := EncodeFavoriteEvent(NewFavoriteEvent(sessionID, ch, e.now()))
	if err != nil {
		e.log.Error("encode favorite event", zap.Error(err))
		return
	}

	rec := &kgo.Record{Key: []byte(sessionID), Value: value}
	e.cl.Produce(context.Background(), rec, func(_ *kgo.Record, err error) {
		if err != nil {
			e.log.Warn("produce favorite event",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	})
}

// Close flushes buffered records, then closes the client.
func (e *KafkaEmitter) Close(ctx context.Context) error {
	err := e.cl.Flush(ctx)
	e.cl.Close()
	return err
}
