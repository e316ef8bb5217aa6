package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "pollcast/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
	closed  bool
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		if p.err == nil {
			p.records = append(p.records, r)
		}
		results = append(results, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return results
}

func (p *fakeProducer) Close() {
	p.closed = true
}

func TestSinkAppend(t *testing.T) {
	producer := &fakeProducer{}
	sink := NewWithProducer(producer, "poll-activity")
	at := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	err := sink.Append(context.Background(), audit.Event{
		Action:    string(audit.EventVoteCounted),
		PollID:    "abcd1234",
		OptionID:  "o2",
		Timestamp: at,
	})
	require.NoError(t, err)

	require.Len(t, producer.records, 1)
	rec := producer.records[0]
	assert.Equal(t, "poll-activity", rec.Topic)
	assert.Equal(t, "abcd1234", string(rec.Key))

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, "o2", decoded.OptionID)
	assert.True(t, at.Equal(decoded.Timestamp))

	sink.Close()
	assert.True(t, producer.closed)
}

func TestSinkAppendPropagatesProduceError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("leader not available")}
	sink := NewWithProducer(producer, "poll-activity")

	err := sink.Append(context.Background(), audit.Event{Action: "x"})
	assert.ErrorContains(t, err, "leader not available")
}

type fakeAdmin struct {
	err        error
	topic      string
	partitions int32
	replicas   int16
}

func (a *fakeAdmin) CreateTopic(_ context.Context, partitions int32, replicationFactor int16, _ map[string]*string, topic string) (kadm.CreateTopicResponse, error) {
	a.topic, a.partitions, a.replicas = topic, partitions, replicationFactor
	return kadm.CreateTopicResponse{Topic: topic, Err: a.err}, a.err
}

func TestEnsureTopic(t *testing.T) {
	t.Run("creates with broker defaults", func(t *testing.T) {
		admin := &fakeAdmin{}
		require.NoError(t, EnsureTopic(context.Background(), admin, "poll-activity"))
		assert.Equal(t, "poll-activity", admin.topic)
		assert.Equal(t, int32(-1), admin.partitions)
		assert.Equal(t, int16(-1), admin.replicas)
	})

	t.Run("existing topic is fine", func(t *testing.T) {
		admin := &fakeAdmin{err: kerr.TopicAlreadyExists}
		assert.NoError(t, EnsureTopic(context.Background(), admin, "poll-activity"))
	})

	t.Run("other failures are returned", func(t *testing.T) {
		admin := &fakeAdmin{err: kerr.TopicAuthorizationFailed}
		err := EnsureTopic(context.Background(), admin, "poll-activity")
		require.Error(t, err)
		assert.ErrorIs(t, err, kerr.TopicAuthorizationFailed)
	})
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New(context.Background(), nil, "poll-activity")
	assert.Error(t, err)
	_, err = New(context.Background(), []string{"localhost:9092"}, "")
	assert.Error(t, err)
}
