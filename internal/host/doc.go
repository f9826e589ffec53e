// Package host is the composition root of a convention-configured
// application.
//
// One engine.Provider resolves the contributed conventions once. Three
// composers then apply that sequence in stages, each against its own
// context:
//
//   - configuration: *ConfigurationBuilder, layered key/value sources
//   - logging: *LoggingBuilder, producing the application *slog.Logger
//   - services: *ServiceContext, a registry of named service descriptors
//
// A convention joins a stage by implementing that stage's interface
// (ConfigurationConvention, LoggingConvention, ServiceConvention) or by
// being a delegate of that stage's func type. A single convention may take
// part in several stages.
package host
