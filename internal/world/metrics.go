package world

import (
	"time"

	"github.com/annel0/voxel-strike/internal/world/block"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики ядра мира. Методы nil-метрик ничего не делают.
type Metrics struct {
	chunksLoaded     prometheus.Gauge
	chunksGenerated  prometheus.Counter
	chunksEvicted    prometheus.Counter
	generateSeconds  prometheus.Histogram
	meshesBuilt      prometheus.Counter
	meshQuads        prometheus.Histogram
	queueDepth       *prometheus.GaugeVec
	staleDropped     *prometheus.CounterVec
	collapseMoves    prometheus.Counter
	collapseImpacts  prometheus.Counter
	collapsePending  prometheus.Gauge
	explosions       prometheus.Counter
	voxelsDestroyed  *prometheus.CounterVec
	templateEntries  prometheus.Gauge
	simulationHalted prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется глобальный регистр Prometheus.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		chunksLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "chunks_loaded",
			Help:      "Количество загруженных чанков.",
		}),
		chunksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunks_generated_total",
			Help:      "Сгенерировано чанков.",
		}),
		chunksEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunks_evicted_total",
			Help:      "Выгружено чанков.",
		}),
		generateSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Name:      "chunk_generate_seconds",
			Help:      "Время генерации одного чанка.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 10),
		}),
		meshesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "chunk_meshes_built_total",
			Help:      "Пересборок мешей чанков.",
		}),
		meshQuads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voxel",
			Name:      "chunk_mesh_quads",
			Help:      "Количество граней в меше чанка после слияния.",
			Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
		}),
		queueDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "queue_depth",
			Help:      "Длина очередей работы.",
		}, []string{"queue"}),
		staleDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "queue_stale_dropped_total",
			Help:      "Устаревшие элементы, отброшенные при извлечении из очереди.",
		}, []string{"queue"}),
		collapseMoves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "collapse_moves_total",
			Help:      "Перемещений вокселей при обрушении.",
		}),
		collapseImpacts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "collapse_impacts_total",
			Help:      "Событий приземления вокселей.",
		}),
		collapsePending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "collapse_pending_chunks",
			Help:      "Чанки, ожидающие проверки на обрушение.",
		}),
		explosions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "explosions_total",
			Help:      "Количество взрывов.",
		}),
		voxelsDestroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxel",
			Name:      "voxels_destroyed_total",
			Help:      "Разрушено вокселей по материалам.",
		}, []string{"material"}),
		templateEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "building_templates_cached",
			Help:      "Шаблонов построек в кеше.",
		}),
		simulationHalted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "voxel",
			Name:      "simulation_halted",
			Help:      "1, если симуляция остановлена из-за нарушения инварианта.",
		}),
	}

	reg.MustRegister(
		m.chunksLoaded, m.chunksGenerated, m.chunksEvicted, m.generateSeconds,
		m.meshesBuilt, m.meshQuads, m.queueDepth, m.staleDropped,
		m.collapseMoves, m.collapseImpacts, m.collapsePending,
		m.explosions, m.voxelsDestroyed, m.templateEntries, m.simulationHalted,
	)
	return m
}

func (m *Metrics) chunkGenerated(took time.Duration, loaded int) {
	if m == nil {
		return
	}
	m.chunksGenerated.Inc()
	m.generateSeconds.Observe(took.Seconds())
	m.chunksLoaded.Set(float64(loaded))
}

func (m *Metrics) chunkEvicted(loaded int) {
	if m == nil {
		return
	}
	m.chunksEvicted.Inc()
	m.chunksLoaded.Set(float64(loaded))
}

func (m *Metrics) meshBuilt(quads int) {
	if m == nil {
		return
	}
	m.meshesBuilt.Inc()
	m.meshQuads.Observe(float64(quads))
}

func (m *Metrics) queues(generation, meshing int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues("generation").Set(float64(generation))
	m.queueDepth.WithLabelValues("mesh").Set(float64(meshing))
}

func (m *Metrics) stale(queue string) {
	if m == nil {
		return
	}
	m.staleDropped.WithLabelValues(queue).Inc()
}

func (m *Metrics) collapseStep(moves, impacts, pending int) {
	if m == nil {
		return
	}
	m.collapseMoves.Add(float64(moves))
	m.collapseImpacts.Add(float64(impacts))
	m.collapsePending.Set(float64(pending))
}

func (m *Metrics) explosion(destroyed map[block.Type]int) {
	if m == nil {
		return
	}
	m.explosions.Inc()
	for t, n := range destroyed {
		m.voxelsDestroyed.WithLabelValues(t.String()).Add(float64(n))
	}
}

func (m *Metrics) templates(entries int) {
	if m == nil {
		return
	}
	m.templateEntries.Set(float64(entries))
}

func (m *Metrics) halted() {
	if m == nil {
		return
	}
	m.simulationHalted.Set(1)
}
