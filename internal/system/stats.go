package system

import (
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// Stats is a snapshot of the current process.
type Stats struct {
	RSS        uint64
	CPUPercent float64
}

func ProcessStats() (Stats, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return Stats{}, err
	}
	mem, err := p.MemoryInfo()
	if err != nil {
		return Stats{}, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return Stats{}, err
	}
	return Stats{RSS: mem.RSS, CPUPercent: cpu}, nil
}
