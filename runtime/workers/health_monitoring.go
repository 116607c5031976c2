package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"friend-chat/contract"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HealthMonitoringWorker)(nil)

// Health is one sample of the server process.
type Health struct {
	Cpu         float64
	Ram         float32
	Connections int
	Serving     bool
}

// HealthMonitoringWorker samples the server process at each interval and reports
// whether it still accepts traffic. Above ramThreshold percent the server is not serving.
type HealthMonitoringWorker struct {
	log          *slog.Logger
	registry     contract.IRegistry
	interval     time.Duration
	ramThreshold float32
	report       func(Health)
	pid          int32
}

func NewHealthMonitoringWorker(log *slog.Logger, registry contract.IRegistry,
	interval time.Duration, ramThreshold float32, report func(Health)) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:          log,
		registry:     registry,
		interval:     interval,
		ramThreshold: ramThreshold,
		report:       report,
		pid:          int32(os.Getpid()),
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(w.pid)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return ctx.Err()
		case <-ticker.C:
			health, err := w.sample(p)
			if err != nil {
				w.log.Error("Error while sampling process", "pid", w.pid, "error", err)
				continue
			}
			if !health.Serving {
				w.log.Warn("Memory above threshold", "ram", health.Ram, "threshold", w.ramThreshold)
			}
			w.log.Debug("Server health", "cpu", health.Cpu, "ram", health.Ram, "connections", health.Connections)
			w.report(health)
		}
	}
}

func (w *HealthMonitoringWorker) sample(p *process.Process) (Health, error) {
	cpu, err := p.CPUPercent()
	if err != nil {
		return Health{}, err
	}
	ram, err := p.MemoryPercent()
	if err != nil {
		return Health{}, err
	}
	return Health{
		Cpu:         cpu,
		Ram:         ram,
		Connections: len(w.registry.SnapshotOnline()),
		Serving:     ram < w.ramThreshold,
	}, nil
}
