package manager

import (
	"time"

	"diffusiond/pkg/types"
)

// Status builds a detailed status response for /sdapi/v1/status.
func (m *Manager) Status() types.StatusResponse {
	prof := m.prober.Profile()

	m.mu.Lock()
	defer m.mu.Unlock()
	resp := types.StatusResponse{
		State:             string(m.state),
		LastError:         m.lastErr,
		DeviceTotalGB:     prof.TotalGB,
		DeviceFreeGB:      prof.FreeGB,
		ShouldOffload:     prof.ShouldOffload,
		CanLoadLargeModel: prof.CanLoadLargeModel,
		UptimeSeconds:     int64(time.Since(m.startTime).Seconds()),
		SwitchesTotal:     m.switchesTotal,
		GenerationsTotal:  m.generationsTotal,
		FallbacksTotal:    m.fallbacksTotal,
	}
	if m.active != nil {
		resp.ActiveModel = m.active.Descriptor.Name
		resp.DeviceKind = string(m.active.Device)
	}
	return resp
}
