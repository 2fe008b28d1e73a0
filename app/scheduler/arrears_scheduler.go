// Package scheduler
package scheduler

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/olara1989/wisp-platform-sub000/app/dto"
	"github.com/olara1989/wisp-platform-sub000/app/middleware"
	businessflow "github.com/olara1989/wisp-platform-sub000/business_flow"
)

// ArrearsScheduler periodically runs an unfiltered fleet scan so the cached
// worklist and the delinquency gauge stay warm between operator requests
type ArrearsScheduler struct {
	scanFlow businessflow.ArrearsScanFlow
	logger   *log.Logger
	interval time.Duration

	logFile *os.File
}

func NewArrearsScheduler(scanFlow businessflow.ArrearsScanFlow, interval time.Duration) *ArrearsScheduler {
	if interval <= 0 {
		interval = time.Hour
	}

	s := &ArrearsScheduler{
		scanFlow: scanFlow,
		interval: interval,
	}

	if err := s.initSchedulerLogger(); err != nil {
		s.logger = log.Default()
		s.logger.Printf("scheduler: failed to initialize file logger: %v", err)
	}

	return s
}

// initSchedulerLogger configures a logger that writes to a persistent file under data/ (or /data)
func (s *ArrearsScheduler) initSchedulerLogger() error {
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		logPath := filepath.Join(dir, "scheduler.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		s.logFile = f
		s.logger = log.New(f, "", log.LstdFlags|log.LUTC)
		return nil
	}
	s.logger = log.Default()
	return nil
}

// Start launches the warm-up loop and returns its cancel function
func (s *ArrearsScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		defer s.close()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *ArrearsScheduler) runOnce(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	start := time.Now()
	result, err := s.scanFlow.ScanArrears(scanCtx, &dto.ScanArrearsRequest{})
	if err != nil {
		middleware.RecordScan(true, 0)
		s.logger.Printf("scheduled arrears scan failed: %v", err)
		return
	}

	middleware.RecordScan(false, result.TotalDelinquent)
	s.logger.Printf("scheduled arrears scan: %d active, %d delinquent (%.1f%%), %d failures, took %s",
		result.TotalActive, result.TotalDelinquent, result.DelinquentPct, len(result.Failures), time.Since(start).Round(time.Millisecond))
}

func (s *ArrearsScheduler) close() {
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}
