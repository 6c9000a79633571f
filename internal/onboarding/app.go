package onboarding

import (
	"context"
	"fmt"
	"strings"

	"github.com/kart-io/logger"
	"github.com/spf13/viper"

	"github.com/kart-io/onboarding-assistant/pkg/infra/app"
)

const (
	appName        = "onboarding"
	appDescription = `Employee Onboarding Assistant

Answers new-hire questions from company documents and generates personalized
onboarding plans with trackable checklists.

This server provides:
  - PDF and text document ingestion into a vector index
  - Retrieval-augmented question answering with citations
  - Onboarding plan generation, checklist progress and reminders`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithConfigWatcher(func(v *viper.Viper) {
			reloadLogLevel(opts, v)
		}),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run runs the onboarding service with the given options.
func Run(opts *Options) error {
	printBanner(opts)

	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting onboarding service...")

	ctx := context.Background()
	srv, err := NewServer(ctx, opts)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

// reloadLogLevel applies a changed log.level from the config file. Other
// settings take effect on restart.
func reloadLogLevel(opts *Options, v *viper.Viper) {
	level := v.GetString("log.level")
	if level == "" || strings.EqualFold(level, opts.Log.Level) {
		return
	}
	prev := opts.Log.Level
	if err := opts.Log.SetLevel(level); err != nil {
		logger.Warnw("failed to apply reloaded log level", "level", level, "error", err.Error())
		return
	}
	logger.Infow("Log level reloaded", "from", prev, "to", level)
}

func printBanner(opts *Options) {
	fmt.Printf("Starting %s...\n", appName)
	fmt.Printf("  Embedding: %s (%s)\n", opts.Embedding.Provider, opts.Embedding.Model)
	fmt.Printf("  Chat: %s (%s)\n", opts.Chat.Provider, opts.Chat.Model)
	fmt.Printf("  Vector backend: %s\n", opts.Vector.Backend)
}
