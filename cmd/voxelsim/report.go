package main

import (
	"os"

	"github.com/annel0/voxel-strike/internal/logging"
	"github.com/shirou/gopsutil/v3/process"
)

// reportProcess пишет в лог потребление ресурсов процессом
func reportProcess(logger *logging.Logger) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warn("gopsutil: %v", err)
		return
	}

	var rssMB float64
	if mem, err := p.MemoryInfo(); err == nil {
		rssMB = float64(mem.RSS) / (1 << 20)
	}
	cpu, _ := p.CPUPercent()
	threads, _ := p.NumThreads()
	logger.Info("Процесс: rss=%.1fMB cpu=%.1f%% threads=%d", rssMB, cpu, threads)
}
