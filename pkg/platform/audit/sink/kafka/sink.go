// Package kafka forwards activity events to a Kafka topic with franz-go.
package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "pollcast/pkg/platform/audit"
)

// Producer is the subset of *kgo.Client the sink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

// TopicCreator is the subset of *kadm.Client used to provision the topic.
type TopicCreator interface {
	CreateTopic(ctx context.Context, partitions int32, replicationFactor int16, configs map[string]*string, topic string) (kadm.CreateTopicResponse, error)
}

// Sink is an audit.Store that writes each event as one record keyed by poll id.
type Sink struct {
	producer Producer
	topic    string
}

// New connects a producer to brokers and makes sure topic exists, since
// brokers commonly run with auto creation disabled.
func New(ctx context.Context, brokers []string, topic string, opts ...kgo.Opt) (*Sink, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if topic == "" {
		return nil, errors.New("kafka topic is required")
	}
	client, err := kgo.NewClient(append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if err := EnsureTopic(ctx, kadm.NewClient(client), topic); err != nil {
		client.Close()
		return nil, err
	}
	return NewWithProducer(client, topic), nil
}

// EnsureTopic creates topic with the broker's default partition count and
// replication factor. An existing topic is not an error.
func EnsureTopic(ctx context.Context, admin TopicCreator, topic string) error {
	_, err := admin.CreateTopic(ctx, -1, -1, nil, topic)
	if err == nil || errors.Is(err, kerr.TopicAlreadyExists) {
		return nil
	}
	return fmt.Errorf("ensure kafka topic %s: %w", topic, err)
}

// NewWithProducer wraps an existing producer.
func NewWithProducer(producer Producer, topic string) *Sink {
	return &Sink{producer: producer, topic: topic}
}

func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode activity event: %w", err)
	}
	record := &kgo.Record{Topic: s.topic, Value: value}
	if event.PollID != "" {
		record.Key = []byte(event.PollID)
	}
	if err := s.producer.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce activity event: %w", err)
	}
	return nil
}

func (s *Sink) Close() {
	s.producer.Close()
}
