package worker

import (
	"context"
	"sync/atomic"

	"task-tracker/internal/models"
	"task-tracker/internal/queue"
	"task-tracker/pkg/logger"

	"github.com/segmentio/kafka-go"
)

const groupID = "task-activity"

// Recorder stores consumed task events.
type Recorder interface {
	Record(ctx context.Context, ev models.TaskEvent) error
}

// logRecorder is used when no database is configured.
type logRecorder struct{}

func (logRecorder) Record(ctx context.Context, ev models.TaskEvent) error {
	logger.Info(ctx, "Task activity", "type", ev.Type, "id", ev.TaskID, "at", ev.At)
	return nil
}

// Run consumes task events and hands them to rec until ctx is cancelled.
// One consumer per process; replicas share partitions through the group.
func Run(ctx context.Context, brokers []string, topic string, rec Recorder) {
	if len(brokers) == 0 {
		logger.Info(ctx, "Worker disabled (no Kafka brokers)")
		return
	}
	if rec == nil {
		rec = logRecorder{}
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer reader.Close()

	var processed int64
	logger.Info(ctx, "Kafka consumer started", "topic", topic, "group", groupID)
	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info(ctx, "Kafka consumer stopped", "processed", atomic.LoadInt64(&processed))
				return
			}
			logger.Error(ctx, "Worker fetch failed", "error", err)
			continue
		}
		if err := handleMessage(ctx, rec, msg.Value); err != nil {
			logger.Error(ctx, "Worker handle failed", "error", err, "payload", string(msg.Value))
			// Commit anyway to avoid poison pill blocking the partition
			_ = reader.CommitMessages(ctx, msg)
			continue
		}
		if err := reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "Worker commit failed", "error", err)
		}
		atomic.AddInt64(&processed, 1)
	}
}

func handleMessage(ctx context.Context, rec Recorder, payload []byte) error {
	ev, err := queue.DecodeEvent(payload)
	if err != nil {
		return err
	}
	switch ev.Type {
	case models.EventCreated, models.EventUpdated, models.EventToggled, models.EventDeleted:
		return rec.Record(ctx, ev)
	default:
		logger.Debug(ctx, "Worker skipping unknown event type", "type", ev.Type)
		return nil
	}
}
