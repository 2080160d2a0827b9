package loadrun

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	ps "github.com/shirou/gopsutil/process"
)

const profileHeader = "elapsed_ms,cpu_percent,rss,vms,swap"

// profiler samples one process until stopped.
type profiler struct {
	f        *os.File
	w        *bufio.Writer
	interval time.Duration
	logger   *log.Logger

	done chan struct{}
	wg   sync.WaitGroup
}

func newProfiler(file string, interval time.Duration, logger *log.Logger) (*profiler, error) {
	f, err := os.Create(file)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create profile file %s", file)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, profileHeader)
	return &profiler{f: f, w: w, interval: interval, logger: logger, done: make(chan struct{})}, nil
}

// start begins sampling pid. It is safe to never call it.
func (p *profiler) start(pid int) {
	proc, err := ps.NewProcess(int32(pid))
	if err != nil {
		p.logger.Printf("cannot profile pid %d: %v", pid, err)
		return
	}
	p.wg.Add(1)
	go p.sample(proc)
}

func (p *profiler) sample(proc *ps.Process) {
	defer p.wg.Done()
	began := time.Now()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			cpu, err := proc.CPUPercent()
			if err != nil {
				return
			}
			mem, err := proc.MemoryInfo()
			if err != nil {
				return
			}
			fmt.Fprintf(p.w, "%d,%f,%d,%d,%d\n", time.Since(began).Milliseconds(), cpu, mem.RSS, mem.VMS, mem.Swap)
		}
	}
}

func (p *profiler) stop() error {
	close(p.done)
	p.wg.Wait()
	if err := p.w.Flush(); err != nil {
		p.f.Close()
		return err
	}
	return p.f.Close()
}
