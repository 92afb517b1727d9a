package ingest

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/hsiehbocheng/hAIre-ai-recruiter-assistent/internal/llm"
)

type putCall struct {
	Bucket      string
	Key         string
	Body        []byte
	ContentType string
}

type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []putCall
	putErr  error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: map[string][]byte{}}
}

func (m *memBlobs) add(bucket, key string, body []byte) {
	m.objects[bucket+"/"+key] = body
}

func (m *memBlobs) Get(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return body, nil
}

func (m *memBlobs) Put(_ context.Context, bucket, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.puts = append(m.puts, putCall{Bucket: bucket, Key: key, Body: body, ContentType: contentType})
	return nil
}

type memRecords struct {
	mu   sync.Mutex
	recs []ResumeRecord
	err  error
}

func (m *memRecords) Put(_ context.Context, rec ResumeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, rec)
	return nil
}

// scriptedGenerator answers requests from reply in call order.
type scriptedGenerator struct {
	mu    sync.Mutex
	calls []llm.Request
	reply func(call int, req llm.Request) (string, error)
}

func replies(out ...string) *scriptedGenerator {
	return &scriptedGenerator{reply: func(call int, _ llm.Request) (string, error) {
		if call >= len(out) {
			return "", errors.New("unexpected generate call")
		}
		return out[call], nil
	}}
}

func (g *scriptedGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	call := len(g.calls)
	g.calls = append(g.calls, req)
	g.mu.Unlock()
	return g.reply(call, req)
}

func (g *scriptedGenerator) imageCount() int {
	n := 0
	for _, c := range g.calls {
		for _, p := range c.Parts {
			if p.IsImage() {
				n++
			}
		}
	}
	return n
}

type fakeRenderer struct {
	pages    int
	openErr  error
	rendered []int
	closed   bool
}

func (r *fakeRenderer) Open([]byte) (PDFDocument, error) {
	if r.openErr != nil {
		return nil, r.openErr
	}
	return &fakeDoc{r: r}, nil
}

type fakeDoc struct{ r *fakeRenderer }

func (d *fakeDoc) NumPage() int { return d.r.pages }

func (d *fakeDoc) RenderPage(page int, _ float64) (image.Image, error) {
	if page >= d.r.pages {
		return nil, errors.New("page out of range")
	}
	d.r.rendered = append(d.r.rendered, page)
	return image.NewGray(image.Rect(0, 0, 2, 2)), nil
}

func (d *fakeDoc) Close() error {
	d.r.closed = true
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []StatusEvent
}

func (n *recordingNotifier) Publish(_ context.Context, ev StatusEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}
