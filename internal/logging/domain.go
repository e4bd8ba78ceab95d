package logging

import "time"

// LogChunkGenerated логирует генерацию чанка
func (l *Logger) LogChunkGenerated(cx, cy, cz, solid int, took time.Duration) {
	l.Debug("Chunk generated: chunk(%d,%d,%d) solid=%d in %s", cx, cy, cz, solid, took)
}

// LogChunkEvicted логирует выгрузку чанка
func (l *Logger) LogChunkEvicted(cx, cy, cz, meshes int) {
	l.Debug("Chunk evicted: chunk(%d,%d,%d) released %d meshes", cx, cy, cz, meshes)
}

// LogExplosion логирует взрыв и количество разрушенных вокселей по материалам
func (l *Logger) LogExplosion(x, y, z, radius float64, destroyed map[string]int, touched int) {
	l.Info("Explosion at (%.1f,%.1f,%.1f) r=%.1f destroyed=%v chunks=%d", x, y, z, radius, destroyed, touched)
}

// LogCollapseSettled логирует завершение обрушения
func (l *Logger) LogCollapseSettled(steps, moves, impacts int) {
	l.Info("Collapse settled after %d steps: %d moves, %d impacts", steps, moves, impacts)
}
