package biz

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kart-io/onboarding-assistant/internal/model"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/store"
	"github.com/kart-io/onboarding-assistant/pkg/component/database"
	"github.com/kart-io/onboarding-assistant/pkg/llm"
	"github.com/kart-io/onboarding-assistant/pkg/llm/local"
	dbopts "github.com/kart-io/onboarding-assistant/pkg/options/database"
)

const testDimension = 256

var errStoreDown = stderrors.New("milvus: connection refused")

func newTestFactory(t *testing.T) store.Factory {
	t.Helper()
	opts := dbopts.NewOptions()
	opts.SQLitePath = ":memory:"
	opts.LogLevel = 1

	db, err := database.Open(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, store.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return store.NewFactory(db)
}

// fakeChat 记录请求并返回预设回复。
type fakeChat struct {
	mu       sync.Mutex
	reply    string
	err      error
	requests []llm.CompletionRequest
}

func (c *fakeChat) Name() string { return "fake" }

func (c *fakeChat) Complete(_ context.Context, req llm.CompletionRequest) (*llm.Completion, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = append(c.requests, req)
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Completion{
		Content:    c.reply,
		Model:      "fake",
		TokenUsage: &llm.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (c *fakeChat) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.requests) == 0 {
		return ""
	}
	return c.requests[len(c.requests)-1].Prompt
}

func (c *fakeChat) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// flakyStore 在指定的 Upsert 调用次数起失败。
type flakyStore struct {
	*store.MemoryStore

	mu           sync.Mutex
	upserts      int
	failUpsertOn int
	searchErr    error
}

func newFlakyStore() *flakyStore {
	return &flakyStore{MemoryStore: store.NewMemoryStore()}
}

func (s *flakyStore) Upsert(ctx context.Context, chunks []*store.Chunk) error {
	s.mu.Lock()
	s.upserts++
	fail := s.failUpsertOn > 0 && s.upserts >= s.failUpsertOn
	s.mu.Unlock()
	if fail {
		return errStoreDown
	}
	return s.MemoryStore.Upsert(ctx, chunks)
}

func (s *flakyStore) Search(ctx context.Context, embedding []float32, topK int, filter store.SearchFilter) ([]*store.SearchResult, error) {
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.MemoryStore.Search(ctx, embedding, topK, filter)
}

// failingEmbedder 总是返回错误。
type failingEmbedder struct{}

func (failingEmbedder) Name() string { return "failing" }

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, stderrors.New("embedding endpoint unreachable")
}

func (failingEmbedder) EmbedSingle(context.Context, string) ([]float32, error) {
	return nil, stderrors.New("embedding endpoint unreachable")
}

type testEnv struct {
	factory store.Factory
	vectors *flakyStore
	chat    *fakeChat
	svc     *Service
}

func newTestEnv(t *testing.T, cfg *ServiceConfig) *testEnv {
	t.Helper()
	env := &testEnv{
		factory: newTestFactory(t),
		vectors: newFlakyStore(),
		chat:    &fakeChat{reply: "ok"},
	}
	env.svc = NewService(&Dependencies{
		Store:    env.factory,
		Vectors:  env.vectors,
		Embedder: local.New(testDimension),
		Chat:     env.chat,
	}, cfg)
	require.NoError(t, env.svc.Index.Init(context.Background(), testDimension))
	return env
}

func (env *testEnv) createEmployee(t *testing.T, id, role, department string) *model.Employee {
	t.Helper()
	emp, err := env.svc.Employees.Create(context.Background(), &model.CreateEmployeeRequest{
		EmployeeID: id,
		Name:       "Grace Hopper",
		Email:      "grace@example.com",
		Role:       role,
		Department: department,
		StartDate:  time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return emp
}

// fillerText 返回指定长度的填充文本，词汇与测试查询互不相交。
func fillerText(n int) string {
	const words = "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda omicron "
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(words)
	}
	return b.String()[:n]
}

const validPlan = `### SECTION: Week 1
Set up your laptop and accounts.
Meet your onboarding buddy.

### SECTION: Week 2
Shadow the on-call engineer.
### CHECKLIST
#### Setup
- [ ] Collect laptop from IT
- [ ] Enable two-factor authentication
#### People
- [ ] Meet your manager
### END
`
