package services

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/busraauz/ai-quest-platform/internal/adapters/driven/storage/memory"
	"github.com/busraauz/ai-quest-platform/internal/core/agent"
	"github.com/busraauz/ai-quest-platform/internal/core/domain"
	"github.com/busraauz/ai-quest-platform/internal/core/ports/driven"
	"github.com/busraauz/ai-quest-platform/internal/postprocessors/chunker"
)

// --- Mock implementations ---

// fakeChatModel answers every call with reply(call index, messages).
type fakeChatModel struct {
	mu    sync.Mutex
	calls [][]driven.ChatMessage
	reply func(i int, messages []driven.ChatMessage) (string, error)
}

func (m *fakeChatModel) Chat(_ context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	i := len(m.calls)
	m.calls = append(m.calls, messages)
	m.mu.Unlock()
	return m.reply(i, messages)
}

func (m *fakeChatModel) ModelName() string           { return "fake-chat" }
func (m *fakeChatModel) Ping(_ context.Context) error { return nil }
func (m *fakeChatModel) Close() error                 { return nil }

func (m *fakeChatModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *fakeChatModel) lastCall() []driven.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[len(m.calls)-1]
}

// fakeEmbedder returns deterministic vectors derived from each text.
type fakeEmbedder struct {
	mu      sync.Mutex
	dims    int
	batches [][]string
	err     error
	// short drops the last vector of every batch.
	short bool
	// wrongDims makes the vector at this overall index one element too long.
	wrongDims int
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims, wrongDims: -1}
}

func (e *fakeEmbedder) vector(text string) []float32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	seed := h.Sum32()
	v := make([]float32, e.dims)
	for i := range v {
		v[i] = float32((seed>>(uint(i)%24))&0xff) + 1
	}
	return v
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (e *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	offset := 0
	for _, b := range e.batches {
		offset += len(b)
	}
	e.batches = append(e.batches, append([]string(nil), texts...))
	e.mu.Unlock()

	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
		if offset+i == e.wrongDims {
			out[i] = append(out[i], 0)
		}
	}
	if e.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (e *fakeEmbedder) Dimensions() int              { return e.dims }
func (e *fakeEmbedder) ModelName() string            { return "fake-embed" }
func (e *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (e *fakeEmbedder) Close() error                 { return nil }

func (e *fakeEmbedder) batchCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.batches)
}

// fakeExtractor returns fixed text or an error.
type fakeExtractor struct {
	text string
	err  error
}

func (x *fakeExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	return x.text, x.err
}

// fakeBlobStore records every put.
type fakeBlobStore struct {
	mu   sync.Mutex
	puts map[string]string // bucket/path -> content type
	err  error
}

func (b *fakeBlobStore) Put(_ context.Context, bucket, path string, _ []byte, contentType string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.puts == nil {
		b.puts = make(map[string]string)
	}
	ref := bucket + "/" + path
	b.puts[ref] = contentType
	return ref, nil
}

// fakeIndexer is a retriever backend that also keeps its own index.
type fakeIndexer struct {
	*memory.DocumentStore
	indexed []domain.Chunk
}

func (f *fakeIndexer) IndexChunks(_ context.Context, chunks []domain.Chunk) error {
	f.indexed = append(f.indexed, chunks...)
	return nil
}

// --- Fixtures ---

func mcqQuestion(text string) map[string]any {
	return map[string]any{
		"question_type":    "mcq",
		"question_text":    text,
		"options":          map[string]any{"A": "Mitochondria", "B": "Nucleus", "C": "Ribosome", "D": "Vacuole"},
		"correct_answer":   "A",
		"explanation":      "Mitochondria carry out cellular respiration, which produces ATP.",
		"tags":             map[string]any{"topic": "biology"},
		"confidence_score": 0.9,
	}
}

func questionsJSON(t *testing.T, n int) string {
	t.Helper()
	qs := make([]map[string]any, n)
	for i := range qs {
		qs[i] = mcqQuestion("Which organelle produces ATP in the cell?")
	}
	b, err := json.Marshal(map[string]any{"questions": qs})
	require.NoError(t, err)
	return string(b)
}

func questionJSON(t *testing.T, text string) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"question": mcqQuestion(text)})
	require.NoError(t, err)
	return string(b)
}

// userText returns the content of the last user turn.
func userText(messages []driven.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == driven.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

// studyText builds n characters of prose.
func studyText(n int) string {
	const sentence = "Cells convert glucose into ATP through respiration. "
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(sentence)
	}
	return b.String()[:n]
}

var errBoom = errors.New("boom")

// documentFixture wires a DocumentService over in-memory stores.
type documentFixture struct {
	sessions  *memory.SessionStore
	documents *memory.DocumentStore
	questions *memory.QuestionStore
	blobs     *fakeBlobStore
	extractor *fakeExtractor
	embedder  *fakeEmbedder
	model     *fakeChatModel
	service   *DocumentService
}

func newDocumentFixture(t *testing.T, text string, reply func(int, []driven.ChatMessage) (string, error)) *documentFixture {
	t.Helper()
	f := &documentFixture{
		sessions:  memory.NewSessionStore(),
		documents: memory.NewDocumentStore(),
		questions: memory.NewQuestionStore(),
		blobs:     &fakeBlobStore{},
		extractor: &fakeExtractor{text: text},
		embedder:  newFakeEmbedder(8),
		model:     &fakeChatModel{reply: reply},
	}
	protocol := agent.Protocol{Model: f.model, MaxRetries: 2, Temperature: 0.2}
	f.service = NewDocumentService(
		f.sessions,
		f.documents,
		f.questions,
		f.blobs,
		f.extractor,
		chunker.New(),
		NewEmbeddingGateway(f.embedder, domain.EmbeddingSettings{Dimensions: 8, BatchSize: 2}),
		NewRetriever(f.documents),
		agent.NewDocumentAgent(protocol, agent.NewPrompts(nil)),
		DocumentConfig{},
	)
	return f
}
