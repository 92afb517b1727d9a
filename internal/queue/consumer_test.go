package queue

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/ingest"
)

type fakeAcknowledger struct {
	acked, nacked, rejected bool
	requeue                 bool
}

func (f *fakeAcknowledger) Ack(uint64, bool) error {
	f.acked = true
	return nil
}

func (f *fakeAcknowledger) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func (f *fakeAcknowledger) Reject(_ uint64, requeue bool) error {
	f.rejected = true
	f.requeue = requeue
	return nil
}

// recordingHandler fails every document with the context error, if any.
type recordingHandler struct {
	calls int
}

func (h *recordingHandler) Handle(ctx context.Context, ns []ingest.Notification) ingest.Report {
	h.calls++
	var report ingest.Report
	for _, n := range ns {
		report.Results = append(report.Results, ingest.Result{Notification: n, Err: ctx.Err()})
	}
	return report
}

func TestConsumerHandle(t *testing.T) {
	discard := slog.New(slog.NewTextHandler(io.Discard, nil))
	notification := []byte(`{"bucket":"b","key":"raw_resume/T/J/a.pdf"}`)

	tests := []struct {
		name        string
		body        []byte
		cancel      bool
		wantCalls   int
		wantAck     bool
		wantNack    bool
		wantReject  bool
		wantRequeue  bool
	}{
		{name: "processed batch is acked", body: notification, wantCalls: 1, wantAck: true},
		{name: "undecodable body is rejected", body: []byte("not json"), wantReject: true},
		{name: "cancelled batch is requeued", body: notification, cancel: true, wantCalls: 1, wantNack: true, wantRequeue: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}

			h := &recordingHandler{}
			ack := &fakeAcknowledger{}
			c := &Consumer{Handler: h, Logger: discard}
			c.handle(ctx, amqp.Delivery{Acknowledger: ack, Body: tt.body}, discard)

			assert.Equal(t, tt.wantCalls, h.calls)
			assert.Equal(t, tt.wantAck, ack.acked)
			assert.Equal(t, tt.wantNack, ack.nacked)
			assert.Equal(t, tt.wantReject, ack.rejected)
			assert.Equal(t, tt.wantRequeue, ack.requeue)
		})
	}
}
