package controllers

import (
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"emospray/internal/services"
)

type HealthController struct {
	service   services.DeviceServiceInterface
	startTime time.Time
}

type healthResponse struct {
	Status        string     `json:"status"`
	Uptime        string     `json:"uptime"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	ConfigLoaded  bool       `json:"config_loaded"`
	Revision      uint64     `json:"revision"`
	LastUpdate    *time.Time `json:"last_update"`
}

func (hc *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	st := hc.service.Status()
	uptime := time.Since(hc.startTime)
	resp := healthResponse{
		Status:        "ok",
		Uptime:        formatDuration(uptime),
		UptimeSeconds: uptime.Seconds(),
		ConfigLoaded:  st.Loaded,
		Revision:      st.Revision,
	}
	if st.Corrupt {
		resp.Status = "degraded"
	}
	if !st.UpdatedAt.IsZero() {
		ts := st.UpdatedAt.UTC()
		resp.LastUpdate = &ts
	}

	gson, err := json.Marshal(resp)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	writeRaw(w, http.StatusOK, gson)
}

func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh%dm%ds", hours, minutes, seconds)
}

func NewHealthController(service services.DeviceServiceInterface) *HealthController {
	return &HealthController{
		service:   service,
		startTime: time.Now(),
	}
}
