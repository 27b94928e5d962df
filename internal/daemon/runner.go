// Package daemon provides the lifecycle policy for the shiftdl daemon:
// inactivity-timeout shutdown and the refusal to run as root.
package daemon

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shiftdl/shiftdl/pkg/logger"
)

// Sentinel errors for the daemon runner.
var (
	// ErrIdleTimeout is returned by Wait when the daemon shut down
	// because no client activity happened within the timeout.
	ErrIdleTimeout = errors.New("daemon idle timeout reached")

	// ErrRootUser is returned by CheckEnvironment when the daemon is
	// started with root privileges.
	ErrRootUser = errors.New("this daemon must not be run as root")
)

// DefaultInactivityTimeout is the idle period after which the daemon exits
// when no client requests arrive. Zero disables the timeout.
const DefaultInactivityTimeout = 5 * time.Minute

// Config holds the configuration for the daemon runner.
type Config struct {
	// InactivityTimeout is the idle period before automatic shutdown.
	// Zero disables inactivity shutdown.
	InactivityTimeout time.Duration
}

// Dependencies holds external dependencies, injectable for testing.
type Dependencies struct {
	// Euid returns the effective user id. If nil, the real system call
	// is used.
	Euid func() int

	// Uid returns the real user id. If nil, the real system call is
	// used.
	Uid func() int
}

// Runner enforces the inactivity timeout. Every client request is reported
// via Touch; when the configured idle period elapses without one, Wait
// returns ErrIdleTimeout.
type Runner struct {
	config *Config
	log    logger.Logger

	mu       sync.Mutex
	lastSeen time.Time
}

func New(config *Config, log logger.Logger) *Runner {
	if config == nil {
		config = &Config{InactivityTimeout: DefaultInactivityTimeout}
	}
	return &Runner{
		config: config,
		log:    log,
	}
}

// Config returns the runner's configuration.
func (r *Runner) Config() *Config { return r.config }

// Touch records client activity, deferring the inactivity shutdown.
func (r *Runner) Touch() {
	r.mu.Lock()
	r.lastSeen = time.Now()
	r.mu.Unlock()
}

// Wait blocks until the inactivity timeout elapses or ctx is cancelled.
// It returns ErrIdleTimeout on timeout and nil on context cancellation.
func (r *Runner) Wait(ctx context.Context) error {
	timeout := r.config.InactivityTimeout
	if timeout <= 0 {
		<-ctx.Done()
		return nil
	}

	r.Touch()
	ticker := time.NewTicker(timeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.mu.Lock()
			idle := time.Since(r.lastSeen)
			r.mu.Unlock()
			if idle >= timeout {
				r.log.Info("No client activity for %s, shutting down", idle.Round(time.Second))
				return ErrIdleTimeout
			}
		}
	}
}

// CheckEnvironment refuses to run with root privileges. Checked before
// any scheduling state exists.
func CheckEnvironment(deps *Dependencies) error {
	euid, uid := processIds(deps)
	if euid == 0 || uid == 0 {
		return ErrRootUser
	}
	return nil
}

func processIds(deps *Dependencies) (euid, uid int) {
	if deps != nil && deps.Euid != nil && deps.Uid != nil {
		return deps.Euid(), deps.Uid()
	}
	return systemEuid(), systemUid()
}
