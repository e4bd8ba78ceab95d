package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-strike/internal/cache"
	"github.com/annel0/voxel-strike/internal/config"
	"github.com/annel0/voxel-strike/internal/eventbus"
	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/annel0/voxel-strike/internal/observability"
	"github.com/annel0/voxel-strike/internal/render"
	"github.com/annel0/voxel-strike/internal/world"
	"github.com/annel0/voxel-strike/internal/world/building"
	"github.com/annel0/voxel-strike/internal/world/terrain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		configPath   = flag.String("config", "", "путь к YAML конфигурации (или VOXEL_CONFIG)")
		seed         = flag.Int64("seed", 0, "сид мира (перекрывает конфигурацию, если задан)")
		frames       = flag.Int("frames", 3600, "количество кадров симуляции")
		fps          = flag.Float64("fps", 60, "частота кадров")
		realtime     = flag.Bool("realtime", false, "выдерживать реальное время кадра")
		speed        = flag.Float64("speed", 40, "скорость полёта, воксели в секунду")
		altitude     = flag.Float64("altitude", 30, "высота полёта над рельефом")
		explodeEvery = flag.Int("explode-every", 120, "кадров между взрывами (0 - без взрывов)")
		radius       = flag.Float64("radius", 6, "радиус взрыва")
		objPath      = flag.String("obj", "", "выгрузить меши в OBJ (.zst - со сжатием)")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			cfg.World.Seed = seed
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	if err := logging.InitLogger(cfg.Logging.Dir, level); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseLogger()
	defer logging.GetLoggerManager().CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, runOptions{
		frames:       *frames,
		dt:           1 / *fps,
		realtime:     *realtime,
		speed:        *speed,
		altitude:     *altitude,
		explodeEvery: *explodeEvery,
		radius:       *radius,
		objPath:      *objPath,
	}); err != nil {
		logging.Error("❌ Симуляция остановлена: %v", err)
		logging.CloseLogger()
		os.Exit(1)
	}
}

type runOptions struct {
	frames       int
	dt           float64
	realtime     bool
	speed        float64
	altitude     float64
	explodeEvery int
	radius       float64
	objPath      string
}

func run(ctx context.Context, cfg *config.Config, opts runOptions) error {
	simLog := logging.GetSimLogger()
	ec := cfg.ToEngineConfig()
	simLog.Info("🌍 Запуск симуляции: seed=%d chunk=%d radius=%d", ec.Seed, ec.ChunkSize, ec.RenderDistance)

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := world.NewMetrics(reg)

	if addr := cfg.Metrics.GetAddr(); addr != "" {
		srv := &http.Server{Addr: addr, Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				simLog.Error("Metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		simLog.Info("📊 Prometheus метрики: http://%s/metrics", addr)
	}

	// === ТРАССИРОВКА ===
	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
		if err != nil {
			simLog.Warn("OpenTelemetry выключен: %v", err)
		} else {
			defer shutdown(context.Background())
		}
	}

	// === ШИНА СОБЫТИЙ ===
	bus := eventbus.NewMemoryBus(cfg.EventBus.Capacity)
	if sub, err := eventbus.StartLoggingListener(bus, logging.GetComponentLogger("events")); err == nil {
		defer sub.Unsubscribe()
	}
	exporter := eventbus.NewMetricsExporter(bus, reg)
	exporter.Start(5 * time.Second)
	defer exporter.Stop()

	if cfg.EventBus.URL != "" {
		js, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, time.Duration(cfg.EventBus.Retention)*time.Hour)
		if err != nil {
			simLog.Warn("JetStream недоступен, события остаются в процессе: %v", err)
		} else {
			defer js.Close()
			if sub, err := eventbus.Forward(ctx, bus, js, eventbus.Filter{}, simLog); err == nil {
				defer sub.Unsubscribe()
			}
			simLog.Info("📡 События пересылаются в JetStream %s", cfg.EventBus.URL)
		}
	}

	// === ГЕНЕРАЦИЯ ===
	templates := building.NewCache()
	var generator world.ChunkGenerator = terrain.NewGenerator(ec.Seed, templates)
	repo, err := cache.NewRepo(ctx, cfg.Cache)
	if err != nil {
		simLog.Warn("Кеш чанков выключен: %v", err)
	} else if repo != nil {
		chunkCache, err := cache.NewChunkCache(generator, repo, ec.Seed, cfg.Cache.TTL, logging.GetTerrainLogger())
		if err != nil {
			return err
		}
		defer func() {
			m := chunkCache.Metrics()
			simLog.Info("Кеш чанков: hits=%d misses=%d ratio=%.2f generated=%d",
				m.CacheHits, m.CacheMisses, m.HitRatio, chunkCache.Generated())
			_ = chunkCache.Close()
		}()
		generator = chunkCache
		simLog.Info("💾 Кеш чанков: %s", cfg.Cache.Backend)
	}

	renderer := render.NewMemoryRenderer(ec.ChunkSize, logging.GetComponentLogger("render"))
	engine, err := world.NewEngine(ec,
		world.WithRenderer(renderer),
		world.WithListener(world.NewBusListener(bus, simLog)),
		world.WithLogger(logging.GetWorldLogger()),
		world.WithMetrics(metrics),
		world.WithTemplateCache(templates),
		world.WithChunkGenerator(generator),
	)
	if err != nil {
		return err
	}

	// === ПОЛЁТ ===
	flight := newFlight(engine, opts.speed, opts.altitude)
	started := time.Now()
	simErr := fly(ctx, engine, flight, opts)

	st := engine.Streamer().Stats()
	rs := renderer.Stats()
	simLog.Info("🏁 Кадров: %d за %v", engine.Frame(), time.Since(started).Round(time.Millisecond))
	simLog.Info("Чанки: loaded=%d generated=%d evicted=%d meshes=%d stale=%d",
		st.Loaded, st.Generated, st.Evicted, st.MeshesBuilt, st.StaleDropped)
	simLog.Info("Геометрия: meshes=%d chunks=%d triangles=%d", rs.Live, rs.ChunkCount, rs.Triangles)
	simLog.Info("Шина: %+v", bus.Metrics())
	reportProcess(simLog)

	if opts.objPath != "" {
		if err := renderer.WriteOBJ(opts.objPath); err != nil {
			simLog.Error("Выгрузка OBJ: %v", err)
		} else {
			simLog.Info("🧊 Меши выгружены в %s", opts.objPath)
		}
	}
	return simErr
}

func fly(ctx context.Context, engine *world.Engine, f *flight, opts runOptions) error {
	tracer := observability.NewFrameTracer(nil)
	var ticker *time.Ticker
	if opts.realtime {
		ticker = time.NewTicker(time.Duration(opts.dt * float64(time.Second)))
		defer ticker.Stop()
	}

	for i := 0; i < opts.frames; i++ {
		select {
		case <-ctx.Done():
			logging.GetSimLogger().Info("📡 Получен сигнал завершения")
			return nil
		default:
		}

		if err := engine.SetViewpoint(f.advance(opts.dt)); err != nil {
			return err
		}
		if err := tracer.Advance(ctx, engine, opts.dt); err != nil {
			return err
		}
		if opts.explodeEvery > 0 && i > 0 && i%opts.explodeEvery == 0 {
			if _, err := tracer.Explode(ctx, engine, f.target(), opts.radius); err != nil {
				return err
			}
		}

		if ticker != nil {
			<-ticker.C
		}
	}
	return nil
}
