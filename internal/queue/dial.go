// Package queue consumes bucket notifications from RabbitMQ and publishes
// resume status updates back to it.
package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/streadway/amqp"
)

// DialTimeout bounds how long Dial keeps retrying.
var DialTimeout = 2 * time.Minute

// Dial connects to RabbitMQ, retrying with exponential backoff while the
// broker is unreachable.
func Dial(ctx context.Context, url string) (*amqp.Connection, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 15 * time.Second

	conn, err := backoff.Retry(ctx, func() (*amqp.Connection, error) {
		return amqp.Dial(url)
	}, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(DialTimeout))
	if err != nil {
		return nil, fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	return conn, nil
}
