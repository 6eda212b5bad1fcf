package app

import (
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/xymaxim/fmtinfo/internal/version"
)

type healthResponse struct {
	Status     string   `json:"status"`
	Version    string   `json:"version"`
	Uptime     string   `json:"uptime"`
	Sources    []string `json:"sources"`
	Goroutines int      `json:"goroutines"`
	MemoryRSS  uint64   `json:"memory_rss,omitempty"`
	CPUPercent float64  `json:"cpu_percent,omitempty"`
}

func (a *App) HealthHandler(w http.ResponseWriter, _ *http.Request) error {
	health := healthResponse{
		Status:     "ok",
		Version:    version.GetShort(),
		Uptime:     time.Since(a.startedAt).Truncate(time.Second).String(),
		Sources:    a.Service.Names(),
		Goroutines: runtime.NumGoroutine(),
	}

	proc, err := process.NewProcess(int32(os.Getpid())) // #nosec: G115
	if err != nil {
		slog.Debug("inspecting process", "err", err)
	} else {
		if memInfo, err := proc.MemoryInfo(); err == nil {
			health.MemoryRSS = memInfo.RSS
		}
		health.CPUPercent, _ = proc.CPUPercent()
	}

	writeJSON(w, http.StatusOK, health)
	return nil
}
