package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/pkg/adapters/file"
	"github.com/aretw0/weft/pkg/adapters/memory"
	"github.com/aretw0/weft/pkg/adapters/redis"
	"github.com/aretw0/weft/pkg/catalog"
	"github.com/aretw0/weft/pkg/codec"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/observability"
	"github.com/aretw0/weft/pkg/ports"
)

// Closer releases what NewEditor opened.
type Closer func() error

// NewEditor builds an editor from the CLI configuration. Extra options are
// applied last.
func NewEditor(cfg config.Config, logger *slog.Logger, extra ...weft.Option) (*weft.Editor, Closer, error) {
	opts := []weft.Option{
		weft.WithLogger(logger),
		weft.WithGraphOptions(GraphOptions(cfg)...),
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		opts = append(opts, weft.WithLifecycleHooks(observability.LogHooks(logger)))
	}

	reg, err := NewCatalog(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, weft.WithCatalog(reg))

	store, locker, closer, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, weft.WithStore(store))
	if locker != nil {
		opts = append(opts, weft.WithLocker(locker, cfg.Redis.LockTTL))
	}

	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, nil, errors.Join(err, closer())
	}
	if active != nil {
		opts = append(opts, weft.WithEncryption(active, fallback...))
	}
	if len(cfg.Redact) > 0 {
		opts = append(opts, weft.WithRedaction(cfg.Redact...))
	}

	ed, err := weft.New(append(opts, extra...)...)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("error initializing editor: %w", err), closer())
	}
	return ed, closer, nil
}

// GraphOptions maps the engine settings of cfg to graph options.
func GraphOptions(cfg config.Config) []domain.Option {
	var opts []domain.Option
	if cfg.MaxPropagationDepth > 0 {
		opts = append(opts, domain.WithMaxPropagationDepth(cfg.MaxPropagationDepth))
	}
	if cfg.RejectCycles {
		opts = append(opts, domain.WithCycleRejection())
	}
	if cfg.StrictLoad {
		opts = append(opts, domain.WithStrictLoad())
	}
	return opts
}

// NewCatalog returns the built-in kinds plus the templates files named in
// cfg. Template kinds carry no behaviour.
func NewCatalog(cfg config.Config, logger *slog.Logger) (*catalog.Registry, error) {
	reg := catalog.NewRegistry(catalog.WithLogger(logger))
	if err := catalog.RegisterBuiltins(reg); err != nil {
		return nil, err
	}
	for _, path := range cfg.Templates {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read templates: %w", err)
		}
		templates, err := catalog.ParseTemplates(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for _, t := range templates {
			if err := reg.RegisterTemplate(t, nil); err != nil {
				return nil, fmt.Errorf("invalid template in %s: %w", path, err)
			}
		}
		logger.Debug("templates loaded", "path", path, "count", len(templates))
	}
	return reg, nil
}

func openStore(cfg config.Config) (ports.DocumentStore, ports.DistributedLocker, Closer, error) {
	noop := func() error { return nil }
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewStore(), nil, noop, nil
	case config.StoreFile:
		format, err := codec.ParseFormat(cfg.Format)
		if err != nil {
			return nil, nil, nil, err
		}
		return file.New(cfg.Dir, file.WithFormat(format)), nil, noop, nil
	case config.StoreRedis:
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithPrefix(cfg.Redis.Prefix),
			redis.WithTTL(cfg.Redis.TTL),
		)
		return store, redis.NewLocker(store.Client(), cfg.Redis.Prefix), store.Close, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}
