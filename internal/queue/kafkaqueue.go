package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/segmentio/kafka-go"
)

const defaultKafkaTopic = "mipforge.rebuild"

// KafkaQueue stores requests on a single Kafka topic. Pop consumes through a
// consumer group; List peeks recent messages without committing; Clear and
// exact Stats are not supported on this backend.
type KafkaQueue struct {
	brokers string
	topic   string
	groupID string
}

// NewKafkaQueue constructs a Kafka queue backend.
func NewKafkaQueue(brokers, topic string) *KafkaQueue {
	if topic == "" {
		topic = defaultKafkaTopic
	}
	return &KafkaQueue{brokers: brokers, topic: topic, groupID: "mipforge-pop"}
}

func (k *KafkaQueue) ensure() error {
	if k.brokers == "" {
		return errors.New("kafka brokers not configured")
	}
	return nil
}

func (k *KafkaQueue) Enqueue(ctx context.Context, req Request) error {
	if err := k.ensure(); err != nil {
		return err
	}
	if req.EnqueuedAt == 0 {
		req.EnqueuedAt = time.Now().Unix()
	}
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(k.brokers),
		Topic:        k.topic,
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	defer w.Close()
	return w.WriteMessages(ctx, kafka.Message{Value: data})
}

func (k *KafkaQueue) List(ctx context.Context) ([]Request, error) {
	if err := k.ensure(); err != nil {
		return nil, err
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{k.brokers},
		Topic:       k.topic,
		GroupID:     "mipforge-peek",
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	defer r.Close()

	var items []Request
	for {
		peekCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		msg, err := r.ReadMessage(peekCtx)
		cancel()
		if err != nil {
			break
		}
		var req Request
		if err := json.Unmarshal(msg.Value, &req); err == nil {
			items = append(items, req)
		}
	}
	return items, nil
}

func (k *KafkaQueue) Clear(ctx context.Context) error {
	if err := k.ensure(); err != nil {
		return err
	}
	return errors.New("clear is not supported on the kafka backend")
}

func (k *KafkaQueue) Stats(ctx context.Context) (Stats, error) {
	if err := k.ensure(); err != nil {
		return Stats{}, err
	}
	items, err := k.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Length: len(items)}
	if len(items) > 0 && items[0].EnqueuedAt > 0 {
		stats.OldestAge = time.Now().Unix() - items[0].EnqueuedAt
	}
	return stats, nil
}

func (k *KafkaQueue) Pop(ctx context.Context, max int) ([]Request, error) {
	if err := k.ensure(); err != nil {
		return nil, err
	}
	if max <= 0 {
		max = 1
	}
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{k.brokers},
		Topic:    k.topic,
		GroupID:  k.groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer r.Close()

	var items []Request
	for i := 0; i < max; i++ {
		popCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		msg, err := r.ReadMessage(popCtx)
		cancel()
		if err != nil {
			break
		}
		var req Request
		if err := json.Unmarshal(msg.Value, &req); err == nil {
			items = append(items, req)
		}
	}
	return items, nil
}
