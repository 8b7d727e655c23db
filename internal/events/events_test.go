package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"socialhub/internal/config"
	"socialhub/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	kgo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotification() *models.Notification {
	return &models.Notification{
		ID:        "n1",
		UserID:    "author",
		Type:      models.NotificationLike,
		Payload:   models.NotificationPayload{PostID: "p1", FromUserID: "fan"},
		CreatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotificationCreated(t *testing.T) {
	t.Parallel()

	evt := NotificationCreated(sampleNotification())
	assert.Equal(t, TypeNotificationCreated, evt.Type)
	assert.Equal(t, "author", evt.Key)

	raw, err := json.Marshal(evt)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "notification.created",
		"key": "author",
		"occurredAt": "2024-03-01T12:00:00Z",
		"data": {
			"id": "n1",
			"userId": "author",
			"type": "LIKE",
			"payload": {"postId": "p1", "fromUserId": "fan"},
			"createdAt": "2024-03-01T12:00:00Z"
		}
	}`, string(raw))
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:abc", UserChannel("abc"))
}

func TestRedisPublisher_NilClient(t *testing.T) {
	t.Parallel()
	p := NewRedisPublisher(nil)
	assert.NoError(t, p.Publish(context.Background(), NotificationCreated(sampleNotification())))
	assert.Equal(t, "redis", p.Backend())
}

func TestRedisPublisher_Publish(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	sub := rdb.Subscribe(ctx, UserChannel("author"))
	defer func() { _ = sub.Close() }()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	p := NewRedisPublisher(rdb)
	require.NoError(t, p.Publish(ctx, NotificationCreated(sampleNotification())))

	select {
	case msg := <-sub.Channel():
		var evt struct {
			Type string                  `json:"type"`
			Data NotificationCreatedData `json:"data"`
		}
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
		assert.Equal(t, TypeNotificationCreated, evt.Type)
		assert.Equal(t, "n1", evt.Data.ID)
		assert.Equal(t, "fan", evt.Data.Payload.FromUserID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

type fakeWriter struct {
	msgs   []kgo.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kgo.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := &KafkaPublisher{w: w}

	require.NoError(t, p.Publish(context.Background(), NotificationCreated(sampleNotification())))
	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "author", string(msg.Key))
	assert.Equal(t, []kgo.Header{{Key: "type", Value: []byte(TypeNotificationCreated)}}, msg.Headers)
	assert.Contains(t, string(msg.Value), `"fromUserId":"fan"`)

	w.err = errors.New("leader not available")
	assert.Error(t, p.Publish(context.Background(), NotificationCreated(sampleNotification())))

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaPublisher_Validates(t *testing.T) {
	t.Parallel()

	_, err := NewKafkaPublisher(nil, "topic", 1)
	assert.Error(t, err)

	_, err = NewKafkaPublisher([]string{"localhost:9092"}, "", 1)
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "topic", -1)
	require.NoError(t, err)
	assert.Equal(t, "kafka", p.Backend())
	require.NoError(t, p.Close())
}

func TestNew(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tests := []struct {
		name    string
		cfg     config.Config
		rdb     *redis.Client
		backend string
		wantErr bool
	}{
		{name: "none", cfg: config.Config{EventsBackend: "none"}, backend: "none"},
		{name: "redis", cfg: config.Config{EventsBackend: "redis"}, rdb: rdb, backend: "redis"},
		{name: "redis without client", cfg: config.Config{EventsBackend: "redis"}, backend: "none"},
		{name: "kafka", cfg: config.Config{EventsBackend: "kafka", KafkaBrokers: "localhost:9092", KafkaTopic: "t"}, backend: "kafka"},
		{name: "kafka without brokers", cfg: config.Config{EventsBackend: "kafka", KafkaTopic: "t"}, wantErr: true},
		{name: "kafka without topic", cfg: config.Config{EventsBackend: "kafka", KafkaBrokers: "localhost:9092"}, wantErr: true},
		{name: "unknown", cfg: config.Config{EventsBackend: "carrier-pigeon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p, err := New(&tt.cfg, tt.rdb)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, p == nil, "publisher must be an untyped nil on error")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.backend, p.Backend())
			assert.NoError(t, p.Close())
		})
	}
}
