package workers

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"time"

	"zyan/contract"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HostStatsWorker)(nil)

// HostStats is what the host reports besides process metrics.
type HostStats struct {
	Sessions    int
	Components  int
	QueueLength int
	Dropped     int64
}

// HostStatsWorker periodically logs the process footprint (RSS, CPU) along
// with the host counters.
type HostStatsWorker struct {
	log      *slog.Logger
	interval time.Duration
	stats    func() HostStats
}

func NewHostStatsWorker(log *slog.Logger, interval time.Duration, stats func() HostStats) *HostStatsWorker {
	return &HostStatsWorker{log: log, interval: interval, stats: stats}
}

func (w *HostStatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *HostStatsWorker) report(p *process.Process) {
	rss, cpu, err := getSelfStats(p)
	if err != nil {
		w.log.Error("Failed to collect self stats", "error", err)
		return
	}
	s := w.stats()
	w.log.Info("Host stats",
		"rss_bytes", rss,
		"cpu_percent", cpu,
		"goroutines", runtime.NumGoroutine(),
		"sessions", s.Sessions,
		"components", s.Components,
		"queue_length", s.QueueLength,
		"dropped_tasks", s.Dropped)
}

func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
