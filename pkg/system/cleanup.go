package system

import (
	"context"
	"errors"
	"time"

	realsync "sync"

	sync "github.com/bacalhau-project/golang-mutex-tracer"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"
)

type cleanupCallback struct {
	name string
	fn   func(context.Context) error
}

// CleanupManager runs the shutdown callbacks of the resources a command
// opened: transports, embedded servers, result stores, meter providers.
type CleanupManager struct {
	fnsMutex sync.Mutex
	fns      []cleanupCallback
	fnsDone  bool
}

// NewCleanupManager returns a new CleanupManager instance.
func NewCleanupManager() *CleanupManager {
	c := &CleanupManager{}
	c.fnsMutex.EnableTracerWithOpts(sync.Opts{
		Threshold: 10 * time.Millisecond,
		Id:        "CleanupManager.fnsMutex",
	})
	return c
}

// RegisterCallback registers a clean-up function.
func (cm *CleanupManager) RegisterCallback(fn func() error) {
	cm.RegisterCallbackWithContext("", func(context.Context) error { return fn() })
}

// RegisterCallbackWithContext registers a named clean-up function that
// receives the context passed to Cleanup.
func (cm *CleanupManager) RegisterCallbackWithContext(name string, fn func(context.Context) error) {
	cm.fnsMutex.Lock()
	defer cm.fnsMutex.Unlock()

	if cm.fnsDone {
		log.Error().Str("Callback", name).Msg("CleanupManager: RegisterCallback called after Cleanup")
		return
	}
	cm.fns = append(cm.fns, cleanupCallback{name: name, fn: fn})
}

// Cleanup runs all registered clean-up functions concurrently and waits for
// them. Errors other than cancellation are logged and returned combined.
func (cm *CleanupManager) Cleanup(ctx context.Context) error {
	cm.fnsMutex.Lock()
	defer cm.fnsMutex.Unlock()

	if cm.fnsDone {
		log.Ctx(ctx).Warn().Msg("CleanupManager: Cleanup called again after already called")
		return nil
	}

	var (
		wg   realsync.WaitGroup
		mu   realsync.Mutex
		errs error
	)
	for _, cb := range cm.fns {
		wg.Add(1)
		go func(cb cleanupCallback) {
			defer wg.Done()
			if err := cb.fn(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Ctx(ctx).Error().Err(err).Str("Callback", cb.name).Msg("Error during clean-up callback")
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
		}(cb)
	}

	wg.Wait()
	cm.fnsDone = true
	return errs
}
