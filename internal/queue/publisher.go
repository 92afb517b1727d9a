package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/streadway/amqp"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
)

const DefaultStatusExchange = "resume_updates"

// StatusPublisher sends status events to a topic exchange.
type StatusPublisher struct {
	conn     *amqp.Connection
	exchange string
}

func NewStatusPublisher(conn *amqp.Connection, exchange string) (*StatusPublisher, error) {
	if exchange == "" {
		exchange = DefaultStatusExchange
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}
	return &StatusPublisher{conn: conn, exchange: exchange}, nil
}

func (p *StatusPublisher) Publish(_ context.Context, ev ingest.StatusEvent) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.Publish(
		p.exchange,
		RoutingKey(ev),
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   ev.Timestamp,
			Body:        body,
		},
	)
}

// RoutingKey is resume.<team>.<job>, or resume.unresolved for keys that
// never resolved. Dots inside identifiers become underscores.
func RoutingKey(ev ingest.StatusEvent) string {
	if ev.TeamID == "" || ev.JobID == "" {
		return "resume.unresolved"
	}
	word := strings.NewReplacer(".", "_", " ", "_")
	return fmt.Sprintf("resume.%s.%s", word.Replace(ev.TeamID), word.Replace(ev.JobID))
}
