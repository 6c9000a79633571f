package onboarding

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFlags(t *testing.T, opts *Options, args ...string) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fss := opts.Flags()
	for _, name := range fss.Order {
		fs.AddFlagSet(fss.FlagSets[name])
	}
	require.NoError(t, fs.Parse(args))
}

func TestNewOptionsDefaults(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.Complete())
	require.NoError(t, opts.Validate())

	assert.Equal(t, VectorBackendMemory, opts.Vector.Backend)
	ingest := opts.IngestConfig()
	assert.Equal(t, 1000, ingest.Chunk.Window)
	assert.Equal(t, 200, ingest.Chunk.Overlap)
	assert.Equal(t, 5, opts.AnswerConfig().TopK)
	assert.Equal(t, 10, opts.PlanConfig().RoleTopK)
	assert.Equal(t, 5, opts.PlanConfig().GeneralTopK)
}

func TestFlags(t *testing.T) {
	opts := NewOptions()
	parseFlags(t, opts,
		"--server.addr=:9090",
		"--db.driver=postgres",
		"--db.host=db.internal",
		"--db.database=onboarding",
		"--vector.backend=milvus",
		"--milvus.address=milvus:19530",
		"--cache.enabled",
		"--cache.redis.host=cache.internal",
		"--embedding.provider=ollama",
		"--embedding.dimension=768",
		"--chat.provider=openai",
		"--chat.api-key=sk-test",
		"--kafka.brokers=k1:9092,k2:9092",
		"--ingest.chunk-window=500",
		"--ingest.chunk-overlap=50",
		"--answer.top-k=8",
		"--plan.role-top-k=4",
	)
	require.NoError(t, opts.Complete())
	require.NoError(t, opts.Validate())

	assert.Equal(t, ":9090", opts.Server.Addr)
	assert.Equal(t, 5432, opts.Database.Port)
	assert.Equal(t, VectorBackendMilvus, opts.Vector.Backend)
	assert.Equal(t, "milvus:19530", opts.Milvus.Address)
	assert.Equal(t, "cache.internal", opts.Cache.Redis.Host)
	assert.Equal(t, 768, opts.Embedding.Dimension)
	assert.Equal(t, "openai", opts.Chat.Provider)
	assert.True(t, opts.Kafka.Enabled())
	assert.Equal(t, 500, opts.IngestConfig().Chunk.Window)
	assert.Equal(t, 8, opts.AnswerConfig().TopK)
	assert.Equal(t, 4, opts.PlanConfig().RoleTopK)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
		want   string
	}{
		{"未知向量后端", func(o *Options) { o.Vector.Backend = "faiss" }, "vector.backend"},
		{"重叠不小于窗口", func(o *Options) { o.Ingest.ChunkOverlap = o.Ingest.ChunkWindow }, "overlap"},
		{"窗口为零", func(o *Options) { o.Ingest.ChunkWindow = 0 }, "window"},
		{"openai 缺少密钥", func(o *Options) { o.Chat.Provider = "openai" }, "chat: api-key"},
		{"向量维度为零", func(o *Options) { o.Embedding.Provider = "ollama"; o.Embedding.Dimension = 0 }, "embedding.dimension"},
		{"上传上限为零", func(o *Options) { o.Ingest.MaxUploadBytes = 0 }, "max-upload-bytes"},
		{"检索数为零", func(o *Options) { o.Answer.TopK = 0 }, "answer.top-k"},
		{"计划预算为零", func(o *Options) { o.Plan.ContextBudget = 0 }, "plan.context-budget"},
		{"工作协程为负", func(o *Options) { o.Ingest.Workers = -1 }, "ingest.workers"},
		{"回答预算小于分块", func(o *Options) { o.Answer.ContextBudget = 500 }, "answer.context-budget (500) must be at least ingest.chunk-window (1000)"},
		{"计划预算小于分块", func(o *Options) { o.Ingest.ChunkWindow = 20000; o.Ingest.ChunkOverlap = 0 }, "plan.context-budget (12000)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions()
			tt.modify(opts)
			err := opts.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateBudgetEqualToWindow(t *testing.T) {
	opts := NewOptions()
	opts.Answer.ContextBudget = opts.Ingest.ChunkWindow
	opts.Plan.ContextBudget = opts.Ingest.ChunkWindow
	assert.NoError(t, opts.Validate())
}

func TestPoolConfig(t *testing.T) {
	opts := NewOptions()
	cfg := opts.PoolConfig()
	require.NotNil(t, cfg)
	assert.Equal(t, opts.Ingest.Workers, cfg.Capacity)
	assert.False(t, cfg.Nonblocking)
	assert.Equal(t, 64, cfg.MaxBlockingTasks)

	opts.Ingest.QueueSize = 0
	assert.True(t, opts.PoolConfig().Nonblocking)

	opts.Ingest.Workers = 0
	assert.Nil(t, opts.PoolConfig(), "synchronous ingestion needs no pool")
}
