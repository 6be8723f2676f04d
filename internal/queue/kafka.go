package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"task-tracker/internal/models"
	"task-tracker/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// EnsureTopic creates the task events topic with the given partitions (idempotent).
// Call at startup; if it fails (e.g. no broker or topic exists), the app still runs.
func EnsureTopic(ctx context.Context, brokers []string, topic string, partitions int) {
	if len(brokers) == 0 {
		return
	}
	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		logger.Debug(ctx, "Kafka dial for topic creation failed", "error", err)
		return
	}
	defer conn.Close()
	controller, err := conn.Controller()
	if err != nil {
		logger.Debug(ctx, "Kafka controller lookup failed", "error", err)
		return
	}
	ctrlConn, err := kafka.DialContext(ctx, "tcp", fmt.Sprintf("%s:%d", controller.Host, controller.Port))
	if err != nil {
		logger.Debug(ctx, "Kafka controller dial failed", "error", err)
		return
	}
	defer ctrlConn.Close()
	err = ctrlConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Debug(ctx, "Kafka create topic failed (topic may already exist)", "error", err)
		return
	}
	logger.Info(ctx, "Kafka topic ensured", "topic", topic, "partitions", partitions)
}

// Publisher writes task events to Kafka. Events for one task share a
// partition, so consumers see them in commit order.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher returns nil when no brokers are configured.
func NewPublisher(ctx context.Context, brokers []string, topic string) *Publisher {
	if len(brokers) == 0 {
		logger.Info(ctx, "Kafka publisher disabled (no brokers)")
		return nil
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    100,
		BatchTimeout: 0,
		Async:        true,
		RequiredAcks: kafka.RequireOne,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn(ctx, "Kafka async write failed", "error", err, "messages", len(messages))
			}
		},
	}
	logger.Info(ctx, "Kafka producer initialized", "topic", topic, "brokers", brokers)
	return &Publisher{writer: w}
}

// PublishTaskEvent publishes ev. Non-blocking because the writer is async.
// A nil Publisher drops events.
func (p *Publisher) PublishTaskEvent(ctx context.Context, ev models.TaskEvent) error {
	if p == nil {
		return nil
	}
	msg, err := EncodeEvent(ev)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}

// EncodeEvent builds the Kafka message for ev, keyed by task id.
func EncodeEvent(ev models.TaskEvent) (kafka.Message, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(ev.TaskID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
		},
	}, nil
}

// DecodeEvent parses a message value produced by EncodeEvent.
func DecodeEvent(value []byte) (models.TaskEvent, error) {
	var ev models.TaskEvent
	if err := json.Unmarshal(value, &ev); err != nil {
		return models.TaskEvent{}, err
	}
	if ev.Type == "" || ev.TaskID == "" {
		return models.TaskEvent{}, fmt.Errorf("task event missing type or task id")
	}
	return ev, nil
}
