// Package loader reads mapper documents and the top-level configuration
// file, decodes them into declaration bundles and feeds them through the
// mapper builder. It owns the load phase: one initiating goroutine, a
// resolution checkpoint after each document and a final fixed-point pass.
package loader

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/dengquanbo/gobatis/internal/builder"
	"github.com/dengquanbo/gobatis/internal/mapping"
	"github.com/dengquanbo/gobatis/internal/registry"
)

// Loader populates a registry from mapper documents.
type Loader struct {
	registry      *registry.Registry
	logger        *zap.Logger
	keyGenerators map[mapping.KeyGeneratorType]mapping.KeyGenerator
}

// New creates a loader writing into reg.
func New(reg *registry.Registry, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		registry:      reg,
		logger:        logger,
		keyGenerators: make(map[mapping.KeyGeneratorType]mapping.KeyGenerator),
	}
}

// RegisterKeyGenerator supplies the execution-layer implementation for a
// key-generation strategy, passed through to every statement built.
func (l *Loader) RegisterKeyGenerator(t mapping.KeyGeneratorType, generator mapping.KeyGenerator) {
	l.keyGenerators[t] = generator
}

// LoadMapperFile decodes one mapper document and processes it. The path
// doubles as the resource id, so a file is processed at most once.
func (l *Loader) LoadMapperFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading mapper %s: %w", path, err)
	}
	var doc builder.MapperDocument
	if err := v.Unmarshal(&doc); err != nil {
		return fmt.Errorf("decoding mapper %s: %w", path, err)
	}

	mb := builder.NewMapperBuilder(l.registry, path, l.logger)
	for t, generator := range l.keyGenerators {
		mb.RegisterKeyGenerator(t, generator)
	}
	if err := mb.Build(&doc); err != nil {
		return fmt.Errorf("processing mapper %s: %w", path, err)
	}
	l.logger.Info("loaded mapper",
		zap.String("resource", path),
		zap.String("namespace", doc.Namespace),
		zap.Int("pending", l.registry.PendingCount()),
	)
	return nil
}

// LoadMapperFiles processes each document in order, then drives the pending
// sets to their fixed point. Anything still unresolved is a fatal dangling
// reference.
func (l *Loader) LoadMapperFiles(paths ...string) error {
	for _, path := range paths {
		if err := l.LoadMapperFile(path); err != nil {
			return err
		}
	}
	if err := l.registry.FinishLoad(); err != nil {
		return err
	}
	l.logger.Info("load phase complete",
		zap.Int("statements", len(l.registry.StatementIDs())),
		zap.Int("resultMaps", len(l.registry.ResultMapIDs())),
		zap.Int("caches", len(l.registry.CacheNamespaces())),
	)
	return nil
}

// config is the top-level configuration file shape.
type config struct {
	Settings registry.Settings `mapstructure:"settings"`
	Mappers  []string          `mapstructure:"mappers"`
}

// LoadConfig reads a configuration file, builds a registry with its
// settings and loads the mapper documents it names (relative paths resolve
// against the configuration file's directory).
func LoadConfig(path string, logger *zap.Logger) (*registry.Registry, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := config{Settings: registry.DefaultSettings()}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}

	reg := registry.NewWithSettings(cfg.Settings)
	l := New(reg, logger)

	base := filepath.Dir(path)
	mappers := make([]string, 0, len(cfg.Mappers))
	for _, m := range cfg.Mappers {
		if !filepath.IsAbs(m) {
			m = filepath.Join(base, m)
		}
		mappers = append(mappers, m)
	}
	if err := l.LoadMapperFiles(mappers...); err != nil {
		return nil, err
	}
	return reg, nil
}
