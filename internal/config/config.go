package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/annel0/voxel-strike/internal/cache"
	"github.com/annel0/voxel-strike/internal/world"
	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации симуляции.
type Config struct {
	World     WorldConfig       `yaml:"world"`
	Streaming StreamingConfig   `yaml:"streaming"`
	Collapse  CollapseConfig    `yaml:"collapse"`
	Explosion ExplosionConfig   `yaml:"explosion"`
	Logging   LoggingConfig     `yaml:"logging"`
	Metrics   MetricsConfig     `yaml:"metrics"`
	Cache     cache.CacheConfig `yaml:"cache"`
	EventBus  EventBusConfig    `yaml:"eventbus"`
	Tracing   TracingConfig     `yaml:"tracing"`
}

type WorldConfig struct {
	Seed           *int64 `yaml:"seed"` // Единственное, что определяет генерацию
	ChunkSize      int    `yaml:"chunk_size"`
	RenderDistance int    `yaml:"render_distance"`
	FloorY         int    `yaml:"floor_y"`
}

type StreamingConfig struct {
	GenerationsPerTick int `yaml:"generations_per_tick"`
	MeshesPerTick      int `yaml:"meshes_per_tick"`
}

type CollapseConfig struct {
	StepIntervalMs    int `yaml:"step_interval_ms"`
	MaxStepsPerFrame  int `yaml:"max_steps_per_frame"`
	MaxImpactsPerStep int `yaml:"max_impacts_per_step"`
}

type ExplosionConfig struct {
	DebrisPerVoxel       float64 `yaml:"debris_per_voxel"`
	MaxDebrisPerMaterial int     `yaml:"max_debris_per_material"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // Пусто - HTTP-экспорт выключен
}

type EventBusConfig struct {
	Capacity  int    `yaml:"capacity"`
	URL       string `yaml:"url"` // NATS; пусто - только in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"` // host:port OTLP/HTTP; пусто - localhost:4318
	ServiceName string `yaml:"service_name"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	ec := world.DefaultEngineConfig()
	return &Config{
		World: WorldConfig{
			ChunkSize:      ec.ChunkSize,
			RenderDistance: ec.RenderDistance,
			FloorY:         ec.FloorY,
		},
		Streaming: StreamingConfig{
			GenerationsPerTick: ec.GenerationsPerTick,
			MeshesPerTick:      ec.MeshesPerTick,
		},
		Collapse: CollapseConfig{
			StepIntervalMs:    int(ec.CollapseStepInterval / time.Millisecond),
			MaxStepsPerFrame:  ec.MaxCollapseStepsPerFrame,
			MaxImpactsPerStep: ec.MaxImpactsPerStep,
		},
		Explosion: ExplosionConfig{
			DebrisPerVoxel:       ec.DebrisPerVoxel,
			MaxDebrisPerMaterial: ec.MaxDebrisPerMaterial,
		},
		Logging: LoggingConfig{Level: "INFO"},
		Cache:   cache.CacheConfig{Backend: cache.BackendNone},
		EventBus: EventBusConfig{
			Capacity:  1024,
			Stream:    "VOXEL",
			Retention: 24,
		},
		Tracing: TracingConfig{ServiceName: "voxelsim"},
	}
}

// GetSeed возвращает сид с приоритетом: config -> env VOXEL_SEED -> 0
func (w *WorldConfig) GetSeed() int64 {
	if w.Seed != nil {
		return *w.Seed
	}
	if envVal := os.Getenv("VOXEL_SEED"); envVal != "" {
		if seed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return seed
		}
	}
	return 0
}

// GetAddr возвращает адрес /metrics с приоритетом: config -> env VOXEL_METRICS_ADDR -> выключено
func (m *MetricsConfig) GetAddr() string {
	if m.Addr != "" {
		return m.Addr
	}
	return os.Getenv("VOXEL_METRICS_ADDR")
}

// Validate проверяет конфигурацию так же, как ядро мира
func (c *Config) Validate() error {
	if err := c.ToEngineConfig().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.EventBus.Capacity <= 0 {
		return fmt.Errorf("invalid config: eventbus capacity %d must be positive", c.EventBus.Capacity)
	}
	switch c.Cache.Backend {
	case "", cache.BackendNone, cache.BackendMemory, cache.BackendBadger, cache.BackendRedis:
	default:
		return fmt.Errorf("invalid config: %w: %q", cache.ErrUnknownBackend, c.Cache.Backend)
	}
	return nil
}

// ToEngineConfig переводит конфигурацию в параметры ядра мира
func (c *Config) ToEngineConfig() world.EngineConfig {
	return world.EngineConfig{
		Seed:                     c.World.GetSeed(),
		ChunkSize:                c.World.ChunkSize,
		RenderDistance:           c.World.RenderDistance,
		FloorY:                   c.World.FloorY,
		GenerationsPerTick:       c.Streaming.GenerationsPerTick,
		MeshesPerTick:            c.Streaming.MeshesPerTick,
		CollapseStepInterval:     time.Duration(c.Collapse.StepIntervalMs) * time.Millisecond,
		MaxCollapseStepsPerFrame: c.Collapse.MaxStepsPerFrame,
		MaxImpactsPerStep:        c.Collapse.MaxImpactsPerStep,
		DebrisPerVoxel:           c.Explosion.DebrisPerVoxel,
		MaxDebrisPerMaterial:     c.Explosion.MaxDebrisPerMaterial,
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV VOXEL_CONFIG,
// а без него возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("VOXEL_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
