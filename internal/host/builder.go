package host

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/roach88/convene/internal/compose"
	"github.com/roach88/convene/internal/engine"
	"github.com/roach88/convene/internal/ir"
)

// Builder assembles a Host from contributed conventions.
type Builder struct {
	hostType   ir.HostType
	categories []ir.Category
	factory    ConventionFactory
	prepended  []any
	appended   []any
	logger     *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithHostType sets the host type conventions are resolved for.
// Default: ir.HostLive.
func WithHostType(h ir.HostType) Option {
	return func(b *Builder) { b.hostType = h }
}

// WithCategories restricts resolution to the given categories.
func WithCategories(categories ...ir.Category) Option {
	return func(b *Builder) { b.categories = append(b.categories, categories...) }
}

// WithFactory sets the source of scanned conventions.
func WithFactory(f ConventionFactory) Option {
	return func(b *Builder) { b.factory = f }
}

// Prepend adds contributions ahead of the scanned ones.
func Prepend(contributions ...any) Option {
	return func(b *Builder) { b.prepended = append(b.prepended, contributions...) }
}

// Append adds contributions after the scanned ones.
func Append(contributions ...any) Option {
	return func(b *Builder) { b.appended = append(b.appended, contributions...) }
}

// WithLogger sets the logger used while building. It is not the
// application logger, which the logging stage produces.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Builder.
func New(opts ...Option) *Builder {
	b := &Builder{
		hostType: ir.HostLive,
		factory:  Static(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Host is a configured application.
type Host struct {
	HostType      ir.HostType
	Provider      *engine.Provider
	Configuration *Configuration
	Logger        *slog.Logger
	Services      *ServiceCollection
}

// Build resolves the conventions once and applies them in three stages:
// configuration, logging, services. The first convention error stops the
// build and is returned unmodified.
func (b *Builder) Build() (*Host, error) {
	provider := engine.NewProvider(
		b.hostType,
		slices.Clone(b.categories),
		b.factory.Conventions(b.hostType),
		b.prepended,
		b.appended,
		engine.WithLogger(b.logger),
	)

	cfgBuilder := NewConfigurationBuilder()
	configure := compose.Composer[*ConfigurationBuilder, ConfigurationConvention, ConfigurationDelegate]{
		Convention: func(c ConfigurationConvention, cb *ConfigurationBuilder) error { return c.ConfigureConfiguration(cb) },
		Delegate:   func(d ConfigurationDelegate, cb *ConfigurationBuilder) error { return d(cb) },
		Observer:   b.observer("configuration"),
	}
	if err := configure.Register(provider, b.hostType, cfgBuilder); err != nil {
		return nil, err
	}
	conf, err := cfgBuilder.Build()
	if err != nil {
		return nil, fmt.Errorf("configuration stage: %w", err)
	}

	logBuilder, err := NewLoggingBuilder(conf)
	if err != nil {
		return nil, fmt.Errorf("logging stage: %w", err)
	}
	logging := compose.Composer[*LoggingBuilder, LoggingConvention, LoggingDelegate]{
		Convention: func(c LoggingConvention, lb *LoggingBuilder) error { return c.ConfigureLogging(lb) },
		Delegate:   func(d LoggingDelegate, lb *LoggingBuilder) error { return d(lb) },
		Observer:   b.observer("logging"),
	}
	if err := logging.Register(provider, b.hostType, logBuilder); err != nil {
		return nil, err
	}
	logger := logBuilder.Build()

	sc := &ServiceContext{
		HostType:      b.hostType,
		Services:      NewServiceCollection(),
		Configuration: conf,
		Logger:        logger,
	}
	services := compose.Composer[*ServiceContext, ServiceConvention, ServiceDelegate]{
		Convention: func(c ServiceConvention, sc *ServiceContext) error { return c.ConfigureServices(sc) },
		Delegate:   func(d ServiceDelegate, sc *ServiceContext) error { return d(sc) },
		Observer:   b.observer("services"),
	}
	if err := services.Register(provider, b.hostType, sc); err != nil {
		return nil, err
	}

	b.logger.Info("host built",
		"host_type", b.hostType.String(),
		"configuration_keys", len(conf.Keys()),
		"services", sc.Services.Len(),
	)

	return &Host{
		HostType:      b.hostType,
		Provider:      provider,
		Configuration: conf,
		Logger:        logger,
		Services:      sc.Services,
	}, nil
}

func (b *Builder) observer(stage string) compose.Observer {
	return func(inv compose.Invocation) {
		b.logger.Debug("applying convention",
			"stage", stage,
			"index", inv.Index,
			"name", inv.Entry.Name(),
		)
	}
}
