package enrichers

import (
	"os"
	"strconv"
	"sync"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/corelogio/corelog/core"
)

// Process adds the current process id and executable name under
// "process_id" / "process_name", plus the process start time (epoch
// milliseconds, via gopsutil so it works the same on platforms where /proc
// isn't available) under "process_start". All three are computed once and
// cached — they don't change for the life of the logger.
func Process() core.EnricherFunc {
	var once sync.Once
	var pid, name, start string

	return func(entry *core.LogEntry) {
		once.Do(func() {
			p := os.Getpid()
			pid = strconv.Itoa(p)
			name = os.Args[0]
			if proc, err := process.NewProcess(int32(p)); err == nil {
				if createdMs, err := proc.CreateTime(); err == nil {
					start = strconv.FormatInt(createdMs, 10)
				}
			}
		})
		entry.CustomContext["process_id"] = pid
		entry.CustomContext["process_name"] = name
		if start != "" {
			entry.CustomContext["process_start"] = start
		}
	}
}
