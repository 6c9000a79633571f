// Package onboarding provides the onboarding assistant application.
package onboarding

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/onboarding-assistant/internal/onboarding/biz"
	"github.com/kart-io/onboarding-assistant/internal/onboarding/handler"
	"github.com/kart-io/onboarding-assistant/pkg/infra/app"
	"github.com/kart-io/onboarding-assistant/pkg/infra/pool"
	cacheopts "github.com/kart-io/onboarding-assistant/pkg/options/cache"
	dbopts "github.com/kart-io/onboarding-assistant/pkg/options/database"
	kafkaopts "github.com/kart-io/onboarding-assistant/pkg/options/kafka"
	llmopts "github.com/kart-io/onboarding-assistant/pkg/options/llm"
	logopts "github.com/kart-io/onboarding-assistant/pkg/options/logger"
	milvusopts "github.com/kart-io/onboarding-assistant/pkg/options/milvus"
	serveropts "github.com/kart-io/onboarding-assistant/pkg/options/server"
	tracingopts "github.com/kart-io/onboarding-assistant/pkg/options/tracing"
)

var _ app.CliOptions = (*Options)(nil)

// Vector index backends.
const (
	VectorBackendMemory = "memory"
	VectorBackendMilvus = "milvus"
)

// Options contains all onboarding service options.
type Options struct {
	// Server contains HTTP server configuration.
	Server *serveropts.Options `json:"server" mapstructure:"server"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Tracing contains OpenTelemetry exporter configuration.
	Tracing *tracingopts.Options `json:"tracing" mapstructure:"tracing"`

	// Database holds employees, documents, plans and reminders.
	Database *dbopts.Options `json:"db" mapstructure:"db"`

	// Vector selects the chunk index backend.
	Vector *VectorOptions `json:"vector" mapstructure:"vector"`

	// Milvus is used when vector.backend=milvus.
	Milvus *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// Cache contains the Redis answer cache configuration.
	Cache *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// Embedding contains embedding provider configuration.
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// Chat contains completion provider configuration.
	Chat *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// Kafka publishes domain events when brokers are configured.
	Kafka *kafkaopts.Options `json:"kafka" mapstructure:"kafka"`

	Ingest *IngestOptions `json:"ingest" mapstructure:"ingest"`
	Answer *AnswerOptions `json:"answer" mapstructure:"answer"`
	Plan   *PlanOptions   `json:"plan" mapstructure:"plan"`
}

// VectorOptions 向量索引配置。
type VectorOptions struct {
	// Backend 为 memory 或 milvus。
	Backend string `json:"backend" mapstructure:"backend"`
}

// IngestOptions 文档导入配置。
type IngestOptions struct {
	ChunkWindow  int           `json:"chunk-window" mapstructure:"chunk-window"`
	ChunkOverlap int           `json:"chunk-overlap" mapstructure:"chunk-overlap"`
	BatchSize    int           `json:"batch-size" mapstructure:"batch-size"`
	Timeout      time.Duration `json:"timeout" mapstructure:"timeout"`

	// Workers 异步 PDF 导入的并发数，0 表示同步导入。
	Workers int `json:"workers" mapstructure:"workers"`
	// QueueSize 等待中的任务上限，超出时返回 ErrIngestionBusy。
	QueueSize      int   `json:"queue-size" mapstructure:"queue-size"`
	MaxUploadBytes int64 `json:"max-upload-bytes" mapstructure:"max-upload-bytes"`
}

// AnswerOptions 问答配置。
type AnswerOptions struct {
	TopK          int           `json:"top-k" mapstructure:"top-k"`
	ContextBudget int           `json:"context-budget" mapstructure:"context-budget"`
	MaxTokens     int           `json:"max-tokens" mapstructure:"max-tokens"`
	Timeout       time.Duration `json:"timeout" mapstructure:"timeout"`
}

// PlanOptions 计划生成配置。
type PlanOptions struct {
	RoleTopK      int           `json:"role-top-k" mapstructure:"role-top-k"`
	GeneralTopK   int           `json:"general-top-k" mapstructure:"general-top-k"`
	ContextBudget int           `json:"context-budget" mapstructure:"context-budget"`
	MaxTokens     int           `json:"max-tokens" mapstructure:"max-tokens"`
	Timeout       time.Duration `json:"timeout" mapstructure:"timeout"`
}

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	ingest := biz.DefaultIngestOptions()
	answer := biz.DefaultAnswerOptions()
	plan := biz.DefaultPlanOptions()

	return &Options{
		Server:    serveropts.NewOptions(),
		Log:       logopts.NewOptions(),
		Tracing:   tracingopts.NewOptions(),
		Database:  dbopts.NewOptions(),
		Vector:    &VectorOptions{Backend: VectorBackendMemory},
		Milvus:    milvusopts.NewOptions(),
		Cache:     cacheopts.NewOptions(),
		Embedding: llmopts.NewProviderOptions(),
		Chat:      llmopts.NewProviderOptions(),
		Kafka:     kafkaopts.NewOptions(),
		Ingest: &IngestOptions{
			ChunkWindow:    ingest.Chunk.Window,
			ChunkOverlap:   ingest.Chunk.Overlap,
			BatchSize:      ingest.BatchSize,
			Timeout:        ingest.Timeout,
			Workers:        pool.DefaultConfig().Capacity,
			QueueSize:      64,
			MaxUploadBytes: handler.DefaultMaxUploadBytes,
		},
		Answer: &AnswerOptions{
			TopK:          answer.TopK,
			ContextBudget: answer.ContextBudget,
			MaxTokens:     answer.MaxTokens,
			Timeout:       answer.Timeout,
		},
		Plan: &PlanOptions{
			RoleTopK:      plan.RoleTopK,
			GeneralTopK:   plan.GeneralTopK,
			ContextBudget: plan.ContextBudget,
			MaxTokens:     plan.MaxTokens,
			Timeout:       plan.Timeout,
		},
	}
}

// Flags returns the flag sets grouped by section.
func (o *Options) Flags() (fss app.NamedFlagSets) {
	o.Server.AddFlags(fss.FlagSet("server"))
	o.Log.AddFlags(fss.FlagSet("log"))
	o.Tracing.AddFlags(fss.FlagSet("tracing"))
	o.Database.AddFlags(fss.FlagSet("database"))
	o.addVectorFlags(fss.FlagSet("vector"))
	o.Milvus.AddFlags(fss.FlagSet("vector"))
	o.Cache.AddFlags(fss.FlagSet("cache"))
	o.Embedding.AddFlags(fss.FlagSet("embedding"), "embedding")
	o.Chat.AddFlags(fss.FlagSet("chat"), "chat")
	o.Kafka.AddFlags(fss.FlagSet("events"))
	o.addIngestFlags(fss.FlagSet("ingest"))
	o.addAnswerFlags(fss.FlagSet("answer"))
	o.addPlanFlags(fss.FlagSet("plan"))
	return fss
}

func (o *Options) addVectorFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Vector.Backend, "vector.backend", o.Vector.Backend, "Vector index backend (memory|milvus).")
}

func (o *Options) addIngestFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Ingest.ChunkWindow, "ingest.chunk-window", o.Ingest.ChunkWindow, "Chunk window size in characters.")
	fs.IntVar(&o.Ingest.ChunkOverlap, "ingest.chunk-overlap", o.Ingest.ChunkOverlap, "Characters shared by consecutive chunks.")
	fs.IntVar(&o.Ingest.BatchSize, "ingest.batch-size", o.Ingest.BatchSize, "Chunks embedded and upserted per batch.")
	fs.DurationVar(&o.Ingest.Timeout, "ingest.timeout", o.Ingest.Timeout, "Timeout of one background ingestion.")
	fs.IntVar(&o.Ingest.Workers, "ingest.workers", o.Ingest.Workers, "Concurrent background PDF ingestions; 0 ingests uploads synchronously.")
	fs.IntVar(&o.Ingest.QueueSize, "ingest.queue-size", o.Ingest.QueueSize, "Uploads allowed to wait for a worker before rejecting.")
	fs.Int64Var(&o.Ingest.MaxUploadBytes, "ingest.max-upload-bytes", o.Ingest.MaxUploadBytes, "Maximum size of an uploaded document.")
}

func (o *Options) addAnswerFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Answer.TopK, "answer.top-k", o.Answer.TopK, "Chunks retrieved per question.")
	fs.IntVar(&o.Answer.ContextBudget, "answer.context-budget", o.Answer.ContextBudget, "Maximum context characters; lowest-similarity chunks are dropped first.")
	fs.IntVar(&o.Answer.MaxTokens, "answer.max-tokens", o.Answer.MaxTokens, "Maximum tokens of an answer.")
	fs.DurationVar(&o.Answer.Timeout, "answer.timeout", o.Answer.Timeout, "Timeout of one answer completion.")
}

func (o *Options) addPlanFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Plan.RoleTopK, "plan.role-top-k", o.Plan.RoleTopK, "Chunks retrieved by the role query.")
	fs.IntVar(&o.Plan.GeneralTopK, "plan.general-top-k", o.Plan.GeneralTopK, "Chunks retrieved by the general query.")
	fs.IntVar(&o.Plan.ContextBudget, "plan.context-budget", o.Plan.ContextBudget, "Maximum context characters of a plan prompt.")
	fs.IntVar(&o.Plan.MaxTokens, "plan.max-tokens", o.Plan.MaxTokens, "Maximum tokens of a plan.")
	fs.DurationVar(&o.Plan.Timeout, "plan.timeout", o.Plan.Timeout, "Timeout of one plan completion.")
}

// Complete completes all the required options.
func (o *Options) Complete() error {
	if err := o.Server.Complete(); err != nil {
		return err
	}
	if err := o.Database.Complete(); err != nil {
		return err
	}
	return o.Cache.Complete()
}

// Validate checks Options and returns every problem found.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Server.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Tracing.Validate()...)
	errs = append(errs, o.Database.Validate()...)
	errs = append(errs, o.Cache.Validate()...)
	errs = append(errs, o.Kafka.Validate()...)

	switch o.Vector.Backend {
	case VectorBackendMemory:
	case VectorBackendMilvus:
		errs = append(errs, o.Milvus.Validate()...)
	default:
		errs = append(errs, fmt.Errorf("unsupported vector.backend %q", o.Vector.Backend))
	}

	for name, p := range map[string]*llmopts.ProviderOptions{"embedding": o.Embedding, "chat": o.Chat} {
		for _, err := range p.Validate() {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if o.Embedding.Dimension <= 0 {
		errs = append(errs, fmt.Errorf("embedding.dimension must be positive"))
	}

	if err := o.IngestConfig().Chunk.Validate(); err != nil {
		errs = append(errs, err)
	}
	if o.Ingest.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("ingest.batch-size must be positive"))
	}
	if o.Ingest.Workers < 0 || o.Ingest.QueueSize < 0 {
		errs = append(errs, fmt.Errorf("ingest.workers and ingest.queue-size must not be negative"))
	}
	if o.Ingest.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("ingest.max-upload-bytes must be positive"))
	}
	if o.Answer.TopK <= 0 || o.Answer.ContextBudget <= 0 {
		errs = append(errs, fmt.Errorf("answer.top-k and answer.context-budget must be positive"))
	}
	if o.Plan.RoleTopK <= 0 || o.Plan.GeneralTopK <= 0 || o.Plan.ContextBudget <= 0 {
		errs = append(errs, fmt.Errorf("plan.role-top-k, plan.general-top-k and plan.context-budget must be positive"))
	}
	// 预算至少容纳一个完整分块，否则最相关的块也会被截断
	if o.Answer.ContextBudget > 0 && o.Answer.ContextBudget < o.Ingest.ChunkWindow {
		errs = append(errs, fmt.Errorf("answer.context-budget (%d) must be at least ingest.chunk-window (%d)", o.Answer.ContextBudget, o.Ingest.ChunkWindow))
	}
	if o.Plan.ContextBudget > 0 && o.Plan.ContextBudget < o.Ingest.ChunkWindow {
		errs = append(errs, fmt.Errorf("plan.context-budget (%d) must be at least ingest.chunk-window (%d)", o.Plan.ContextBudget, o.Ingest.ChunkWindow))
	}
	return utilerrors.NewAggregate(errs)
}

// IngestConfig converts the ingest section to biz options.
func (o *Options) IngestConfig() *biz.IngestOptions {
	return &biz.IngestOptions{
		Chunk:     biz.ChunkOptions{Window: o.Ingest.ChunkWindow, Overlap: o.Ingest.ChunkOverlap},
		BatchSize: o.Ingest.BatchSize,
		Timeout:   o.Ingest.Timeout,
	}
}

// AnswerConfig converts the answer section to biz options.
func (o *Options) AnswerConfig() *biz.AnswerOptions {
	cfg := biz.DefaultAnswerOptions()
	cfg.TopK = o.Answer.TopK
	cfg.ContextBudget = o.Answer.ContextBudget
	cfg.MaxTokens = o.Answer.MaxTokens
	cfg.Timeout = o.Answer.Timeout
	return cfg
}

// PlanConfig converts the plan section to biz options.
func (o *Options) PlanConfig() *biz.PlanOptions {
	return &biz.PlanOptions{
		RoleTopK:      o.Plan.RoleTopK,
		GeneralTopK:   o.Plan.GeneralTopK,
		ContextBudget: o.Plan.ContextBudget,
		MaxTokens:     o.Plan.MaxTokens,
		Timeout:       o.Plan.Timeout,
	}
}

// PoolConfig returns the ingestion pool configuration, or nil when uploads
// are ingested synchronously.
func (o *Options) PoolConfig() *pool.Config {
	if o.Ingest.Workers == 0 {
		return nil
	}
	cfg := pool.DefaultConfig()
	cfg.Capacity = o.Ingest.Workers
	if o.Ingest.QueueSize > 0 {
		cfg.Nonblocking = false
		cfg.MaxBlockingTasks = o.Ingest.QueueSize
	}
	return cfg
}
