package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	catalogx "github.com/tanpawarit/ai-toolkit/agent/catalog"
	contractx "github.com/tanpawarit/ai-toolkit/agent/contract"
	executorx "github.com/tanpawarit/ai-toolkit/agent/executor"
	gatex "github.com/tanpawarit/ai-toolkit/agent/gate"
	generationx "github.com/tanpawarit/ai-toolkit/agent/generation"
	llmx "github.com/tanpawarit/ai-toolkit/agent/llm"
	memoryx "github.com/tanpawarit/ai-toolkit/agent/memory"
	servicex "github.com/tanpawarit/ai-toolkit/agent/service"
	configx "github.com/tanpawarit/ai-toolkit/pkg/config"
	postgresx "github.com/tanpawarit/ai-toolkit/pkg/postgres"
	qstashx "github.com/tanpawarit/ai-toolkit/pkg/qstash"
)

type settings struct {
	llm     *llmx.Config
	memory  *memoryx.Config
	upstash *memoryx.UpstashRedisConfig
	qstash  *qstashx.Config
}

func loadSettings() (*settings, error) {
	llmCfg, err := configx.New[llmx.Config]("OPENROUTER")
	if err != nil {
		return nil, fmt.Errorf("%w: openrouter: %v", contractx.ErrConfiguration, err)
	}
	memCfg, err := configx.New[memoryx.Config]("MEMORY")
	if err != nil {
		return nil, fmt.Errorf("%w: memory: %v", contractx.ErrConfiguration, err)
	}
	upstashCfg, err := configx.New[memoryx.UpstashRedisConfig]("UPSTASH")
	if err != nil {
		return nil, fmt.Errorf("%w: upstash: %v", contractx.ErrConfiguration, err)
	}
	qstashCfg, err := configx.New[qstashx.Config]("QSTASH")
	if err != nil {
		return nil, fmt.Errorf("%w: qstash: %v", contractx.ErrConfiguration, err)
	}

	return &settings{
		llm:     llmCfg,
		memory:  memCfg,
		upstash: upstashCfg,
		qstash:  qstashCfg,
	}, nil
}

// app holds every collaborator a command needs. close releases the
// database pool.
type app struct {
	settings *settings
	db       *bun.DB
	service  *servicex.Service
}

func openDatabase(ctx context.Context) (*bun.DB, error) {
	cfg, err := configx.New[postgresx.Config]("DATABASE")
	if err != nil {
		return nil, fmt.Errorf("%w: database: %v", contractx.ErrConfiguration, err)
	}
	db, err := postgresx.New(*cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}
	if err := postgresx.Ping(ctx, db, cfg.Timeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func newApp(ctx context.Context, observers ...generationx.Observer) (*app, error) {
	s, err := loadSettings()
	if err != nil {
		return nil, err
	}

	if err := s.llm.Validate(); err != nil {
		return nil, err
	}

	db, err := openDatabase(ctx)
	if err != nil {
		return nil, err
	}

	memory, err := memoryx.Open(ctx, *s.memory, db, *s.upstash)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	generateModel, explainModel, err := buildModels(ctx, *s.llm)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	deps := servicex.Deps{
		GenerateModel: generateModel,
		ExplainModel:  explainModel,
		Catalog:       catalogx.New(db),
		Memory:        memory,
		Executor:      executorx.New(db),
		MaxSteps:      s.llm.StepBudget(),
		Observers:     observers,
	}
	if verbose {
		deps.Observers = append(deps.Observers, generationx.LogObserver{})
	}
	if s.qstash.Enabled() {
		client, err := qstashx.NewClient(*s.qstash)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%w: qstash: %v", contractx.ErrConfiguration, err)
		}
		deps.Notifier = gatex.NewQStashNotifier(client)
	}

	svc, err := servicex.New(ctx, deps)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info().
		Str("memory_backend", s.memory.Backend).
		Int("max_steps", s.llm.StepBudget()).
		Bool("review_queue", deps.Notifier != nil).
		Msg("ai toolkit loaded")

	return &app{
		settings: s,
		db:       db,
		service:  svc,
	}, nil
}

// openMemory opens just the memory store for the memory subcommands.
func openMemory(ctx context.Context) (contractx.MemoryStore, func(), error) {
	s, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}

	var db *bun.DB
	closeFn := func() {}
	if backend := strings.ToLower(strings.TrimSpace(s.memory.Backend)); backend == "" || backend == memoryx.BackendPostgres {
		if db, err = openDatabase(ctx); err != nil {
			return nil, nil, err
		}
		closeFn = func() { _ = db.Close() }
	}

	memory, err := memoryx.Open(ctx, *s.memory, db, *s.upstash)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return memory, closeFn, nil
}

func buildModels(ctx context.Context, cfg llmx.Config) (model.ToolCallingChatModel, model.ToolCallingChatModel, error) {
	generateCfg := cfg.OpenRouterFor(contractx.PurposeGenerate)
	generateModel, err := generateCfg.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}

	explainCfg := cfg.OpenRouterFor(contractx.PurposeExplain)
	if explainCfg.Model == generateCfg.Model && explainCfg.Temperature == generateCfg.Temperature {
		return generateModel, generateModel, nil
	}
	explainModel, err := explainCfg.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", contractx.ErrConfiguration, err)
	}
	return generateModel, explainModel, nil
}

func (a *app) close() {
	if a == nil || a.db == nil {
		return
	}
	if err := a.db.Close(); err != nil {
		log.Warn().Err(err).Msg("closing database")
	}
	log.Debug().Msg("ai toolkit stopped")
}
