package api

import (
	"net/http"
	"runtime"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/career-coach/internal/api/shared"
	"github.com/phrazzld/career-coach/internal/platform/logger"
	"github.com/phrazzld/career-coach/internal/session"
	"github.com/shirou/gopsutil/v4/mem"
)

// SessionInfo handles GET /sessions/{id}.
func (h *StreamHandler) SessionInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	info, ok := h.sessions.Info(id)
	if !ok {
		shared.RespondWithError(w, r, http.StatusNotFound, "Session not found")
		return
	}
	shared.RespondWithData(w, r, http.StatusOK, "Session retrieved successfully", info)
}

// MemoryStats is the memory section of the health response, in bytes.
type MemoryStats struct {
	HeapAlloc      uint64  `json:"heapAlloc"`
	HeapSys        uint64  `json:"heapSys"`
	Goroutines     int     `json:"goroutines"`
	SystemTotal    uint64  `json:"systemTotal,omitempty"`
	SystemUsed     uint64  `json:"systemUsed,omitempty"`
	SystemUsedPerc float64 `json:"systemUsedPercent,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status        string      `json:"status"`
	ActiveStreams int         `json:"activeStreams"`
	Memory        MemoryStats `json:"memory"`
}

// ActiveCounter reports the number of live streaming sessions.
type ActiveCounter interface {
	ActiveCount() int
}

// HealthHandler serves GET /health.
type HealthHandler struct {
	sessions ActiveCounter
	// virtualMemory is swappable in tests.
	virtualMemory func() (*mem.VirtualMemoryStat, error)
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(sessions ActiveCounter) *HealthHandler {
	return &HealthHandler{sessions: sessions, virtualMemory: mem.VirtualMemory}
}

// Health handles GET /health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	stats := MemoryStats{
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.HeapSys,
		Goroutines: runtime.NumGoroutine(),
	}
	if vm, err := h.virtualMemory(); err == nil {
		stats.SystemTotal = vm.Total
		stats.SystemUsed = vm.Used
		stats.SystemUsedPerc = vm.UsedPercent
	} else {
		logger.FromContext(r.Context()).Debug("system memory unavailable", "error", err)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:        "ok",
		ActiveStreams: h.sessions.ActiveCount(),
		Memory:        stats,
	})
}

var _ ActiveCounter = (*session.Registry)(nil)
