// Package process probes the process table to decide whether a recorded
// pid still belongs to a live autosync run.
package process

import (
	"strings"

	"github.com/google/gops/goprocess"
)

// Prober answers liveness questions against a snapshot of the process table.
type Prober struct {
	procs []goprocess.P
}

// NewProber takes a snapshot of the currently running Go processes.
func NewProber() *Prober {
	return &Prober{procs: goprocess.FindAll()}
}

// Alive reports whether any process in the snapshot has the given pid.
func (p *Prober) Alive(pid int) bool {
	for _, proc := range p.procs {
		if proc.PID == pid {
			return true
		}
	}

	return false
}

// AliveWithName reports whether the pid is alive and its executable
// matches name. Guards against pid reuse by an unrelated process.
func (p *Prober) AliveWithName(pid int, name string) bool {
	name = strings.ToLower(name)

	for _, proc := range p.procs {
		if proc.PID != pid {
			continue
		}

		return strings.Contains(strings.ToLower(proc.Exec), name) ||
			strings.Contains(strings.ToLower(proc.Path), name)
	}

	return false
}
