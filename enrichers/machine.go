package enrichers

import (
	"os"
	"sync"

	"github.com/shirou/gopsutil/v3/host"

	"github.com/corelogio/corelog/core"
)

// MachineName adds the machine's hostname under "machine_name", computed
// once via gopsutil's host.Info (richer than os.Hostname in that it keeps
// working the same way across the platforms gopsutil supports) and falling
// back to os.Hostname if gopsutil can't resolve it.
func MachineName() core.EnricherFunc {
	var once sync.Once
	var name string

	return func(entry *core.LogEntry) {
		once.Do(func() {
			if info, err := host.Info(); err == nil && info.Hostname != "" {
				name = info.Hostname
				return
			}
			if h, err := os.Hostname(); err == nil {
				name = h
				return
			}
			name = "unknown"
		})
		entry.CustomContext["machine_name"] = name
	}
}
