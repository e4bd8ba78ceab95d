package observability

import (
	"context"

	"github.com/annel0/voxel-strike/internal/vec"
	"github.com/annel0/voxel-strike/internal/world"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// TracerName - имя трассировщика симуляции
const TracerName = "github.com/annel0/voxel-strike/world"

// FrameTracer оборачивает вызовы ядра мира в спаны.
// Без настроенного провайдера спаны ничего не стоят (noop).
type FrameTracer struct {
	tracer oteltrace.Tracer
}

// NewFrameTracer создаёт трассировщик из провайдера tp (nil - глобальный)
func NewFrameTracer(tp oteltrace.TracerProvider) *FrameTracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &FrameTracer{tracer: tp.Tracer(TracerName)}
}

// Advance выполняет кадр ядра внутри спана "world.frame"
func (ft *FrameTracer) Advance(ctx context.Context, e *world.Engine, dt float64) error {
	_, span := ft.tracer.Start(ctx, "world.frame")
	defer span.End()

	before := e.Streamer().Stats()
	err := e.Advance(dt)
	after := e.Streamer().Stats()

	span.SetAttributes(
		attribute.Int64("world.frame", int64(e.Frame())),
		attribute.Int("world.chunks_loaded", after.Loaded),
		attribute.Int64("world.chunks_generated", int64(after.Generated-before.Generated)),
		attribute.Int64("world.meshes_built", int64(after.MeshesBuilt-before.MeshesBuilt)),
		attribute.Int("world.collapse_pending", e.Collapse().PendingLen()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Explode выполняет взрыв внутри спана "world.explosion"
func (ft *FrameTracer) Explode(ctx context.Context, e *world.Engine, center vec.Vec3Float, radius float64) (world.ExplosionResult, error) {
	_, span := ft.tracer.Start(ctx, "world.explosion")
	defer span.End()

	res, err := e.CreateExplosion(center, radius)
	span.SetAttributes(
		attribute.Float64("explosion.radius", radius),
		attribute.Int("explosion.destroyed", res.Total),
		attribute.Int("explosion.touched_chunks", len(res.Touched)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return res, err
}
