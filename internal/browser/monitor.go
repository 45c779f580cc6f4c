package browser

import (
	"github.com/farrandale/plscrape/internal/utils"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthMonitor samples system memory and CPU between fetch targets. A
// long headless session leaks memory slowly; the scrape loop checks this
// between targets so a starved host shows up in the logs before the
// browser starts failing navigations.
type HealthMonitor struct {
	// MinAvailableMemory is the available-memory floor in bytes below
	// which a warning is logged.
	MinAvailableMemory uint64
	// CPUWarnPercent is the load threshold above which a warning is
	// logged.
	CPUWarnPercent float64
}

// NewHealthMonitor returns a monitor with a 500MB memory floor and an
// 90% CPU threshold.
func NewHealthMonitor() *HealthMonitor {
	return &HealthMonitor{
		MinAvailableMemory: 500 * 1024 * 1024,
		CPUWarnPercent:     90,
	}
}

// Check samples once and logs warnings for degraded conditions. Sampling
// failures are logged at debug level only; health checks must never
// abort a run.
func (m *HealthMonitor) Check() {
	vm, err := mem.VirtualMemory()
	if err != nil {
		utils.Debugf("health: memory sample failed: %v", err)
	} else if vm.Available < m.MinAvailableMemory {
		utils.Warnf("health: available memory low: %.0fMB", float64(vm.Available)/(1024*1024))
	}

	loads, err := cpu.Percent(0, false)
	if err != nil {
		utils.Debugf("health: cpu sample failed: %v", err)
	} else if len(loads) > 0 && loads[0] > m.CPUWarnPercent {
		utils.Warnf("health: cpu load high: %.0f%%", loads[0])
	}
}
