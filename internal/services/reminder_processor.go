package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finledger/internal/log"
)

// ReminderProcessorConfig holds configuration for the reminder processor
type ReminderProcessorConfig struct {
	// Interval is how often to scan for reminders (default: 1h)
	Interval time.Duration
}

// DefaultReminderProcessorConfig returns sensible defaults
func DefaultReminderProcessorConfig() ReminderProcessorConfig {
	return ReminderProcessorConfig{
		Interval: time.Hour,
	}
}

// ReminderProcessor runs a ReminderScanner on a fixed interval.
type ReminderProcessor struct {
	scanner *ReminderScanner
	source  SnapshotSource
	config  ReminderProcessorConfig
	logger  *log.Logger

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewReminderProcessor creates a new reminder processor
func NewReminderProcessor(scanner *ReminderScanner, source SnapshotSource, config ReminderProcessorConfig) *ReminderProcessor {
	if config.Interval <= 0 {
		config.Interval = DefaultReminderProcessorConfig().Interval
	}
	logger := log.Nop()
	if scanner != nil {
		logger = scanner.logger
	}
	return &ReminderProcessor{
		scanner: scanner,
		source:  source,
		config:  config,
		logger:  logger,
	}
}

// Start begins the scan loop. Returns an error if already running.
func (p *ReminderProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("reminder processor is already running")
	}
	if p.scanner == nil || p.source == nil {
		p.mu.Unlock()
		return fmt.Errorf("reminder processor not properly initialized")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Reminder processor started", "interval", p.config.Interval)
	return nil
}

// Stop gracefully stops the processor and waits for the current scan.
func (p *ReminderProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		p.logger.InfoContext(ctx, "Reminder processor stopped gracefully")
		return nil
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Reminder processor stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the processor is currently running
func (p *ReminderProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Wait blocks until the loop has exited.
func (p *ReminderProcessor) Wait() {
	p.mu.Lock()
	doneCh := p.doneCh
	p.mu.Unlock()
	if doneCh != nil {
		<-doneCh
	}
}

func (p *ReminderProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.Interval)
	defer ticker.Stop()

	// Scan immediately on startup
	p.scan(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.scan(ctx)
		}
	}
}

func (p *ReminderProcessor) scan(ctx context.Context) {
	if _, err := p.scanner.Run(ctx, p.source); err != nil {
		p.logger.ErrorContext(ctx, "Reminder scan failed", log.FieldError, err)
	}
}
