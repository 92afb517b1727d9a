package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/streadway/amqp"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
)

const DefaultQueue = "resume_uploads"

// Handler processes one batch of notifications.
type Handler interface {
	Handle(ctx context.Context, notifications []ingest.Notification) ingest.Report
}

// Consumer runs a pool of workers, each with its own connection, reading
// bucket notifications from one durable queue. Every message is one batch.
type Consumer struct {
	URL     string
	Queue   string
	Workers int
	Handler Handler
	Logger  *slog.Logger
}

func (c *Consumer) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// Run blocks until ctx is cancelled. Workers reconnect after losing their
// connection.
func (c *Consumer) Run(ctx context.Context) {
	workers := max(c.Workers, 1)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := range workers {
		c.logger().Info("worker started", slog.Int("worker", i+1))
		go func(id int) {
			defer wg.Done()
			c.worker(ctx, id)
		}(i + 1)
	}
	wg.Wait()
}

func (c *Consumer) worker(ctx context.Context, id int) {
	log := c.logger().With(slog.Int("worker", id))
	for ctx.Err() == nil {
		err := c.consume(ctx, id, log)
		if err == nil || ctx.Err() != nil {
			return
		}
		log.Warn("consumer stopped, reconnecting", slog.Any("error", err))
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
	}
}

func (c *Consumer) consume(ctx context.Context, id int, log *slog.Logger) error {
	conn, err := Dial(ctx, c.URL)
	if err != nil {
		return err
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()

	queue := c.Queue
	if queue == "" {
		queue = DefaultQueue
	}
	_, err = ch.QueueDeclare(
		queue, // queue name
		true,  // durable (survives broker restarts)
		false, // auto-delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		queue,
		fmt.Sprintf("resume-worker-%d", id), // consumer tag
		false,                               // auto-ack
		false,                               // exclusive
		false,                               // no-local
		false,                               // no-wait
		nil,                                 // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq message: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.handle(ctx, msg, log)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg amqp.Delivery, log *slog.Logger) {
	notifications, err := DecodeNotifications(msg.Body)
	if err != nil {
		log.Error("error unmarshalling message body", slog.Any("error", err))
		if err := msg.Reject(false); err != nil {
			log.Warn("failed to reject message", slog.Any("error", err))
		}
		return
	}

	report := c.Handler.Handle(ctx, notifications)
	if ctx.Err() != nil {
		// shutdown interrupted the batch; hand it back to the broker
		log.Warn("batch interrupted, requeueing message",
			slog.Int("processed", report.Processed()),
			slog.Int("failed", report.Failed()),
			slog.Any("error", ctx.Err()),
		)
		if err := msg.Nack(false, true); err != nil {
			log.Warn("failed to nack message", slog.Any("error", err))
		}
		return
	}
	log.Info("message processed",
		slog.Int("processed", report.Processed()),
		slog.Int("failed", report.Failed()),
	)
	if err := msg.Ack(false); err != nil {
		log.Warn("failed to ack message", slog.Any("error", err))
	}
}

// DecodeNotifications accepts an S3 event document (as sent by S3, R2 and
// MinIO bucket notifications), a single {"bucket","key"} object, or a list
// of them.
func DecodeNotifications(body []byte) ([]ingest.Notification, error) {
	var event events.S3Event
	if err := json.Unmarshal(body, &event); err == nil && len(event.Records) > 0 {
		return ingest.NotificationsFromS3Event(event), nil
	}

	var list []ingest.Notification
	if err := json.Unmarshal(body, &list); err != nil {
		var one ingest.Notification
		if err := json.Unmarshal(body, &one); err != nil {
			return nil, fmt.Errorf("message is not an s3 event or notification: %w", err)
		}
		list = []ingest.Notification{one}
	}
	for _, n := range list {
		if n.Bucket == "" || n.Key == "" {
			return nil, errors.New("notification is missing bucket or key")
		}
	}
	if len(list) == 0 {
		return nil, errors.New("message carries no notifications")
	}
	return list, nil
}
