package config

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// PolicyWatcher watches the policy file for changes and fans reloaded
// policies out to registered listeners.
type PolicyWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	current  *Policy
	mu       sync.RWMutex
	onChange []func(*Policy)
	logger   *zap.Logger
	stopCh   chan struct{}
}

// NewPolicyWatcher creates a new policy watcher
func NewPolicyWatcher(policyPath string, logger *zap.Logger) (*PolicyWatcher, error) {
	policy, err := LoadPolicy(policyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial policy: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(policyPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch policy file: %w", err)
	}

	// Also watch the directory for atomic saves (rename operations)
	if err := watcher.Add(filepath.Dir(policyPath)); err != nil {
		logger.Warn("failed to watch policy directory", zap.Error(err))
	}

	return &PolicyWatcher{
		path:     policyPath,
		watcher:  watcher,
		current:  policy,
		onChange: make([]func(*Policy), 0),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Current returns the most recently loaded policy.
func (w *PolicyWatcher) Current() *Policy {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// OnChange registers a callback run after every successful reload.
// Must be called before Start.
func (w *PolicyWatcher) OnChange(fn func(*Policy)) {
	w.onChange = append(w.onChange, fn)
}

// Start begins watching for policy changes
func (w *PolicyWatcher) Start() {
	go w.watchLoop()
	w.logger.Info("policy watcher started", zap.String("path", w.path))
}

// Stop stops watching for policy changes
func (w *PolicyWatcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	w.logger.Info("policy watcher stopped")
}

func (w *PolicyWatcher) watchLoop() {
	// Debounce to avoid reloading on every partial write
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, w.handlePolicyChange)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("policy watcher error", zap.Error(err))
		}
	}
}

func (w *PolicyWatcher) handlePolicyChange() {
	w.logger.Info("policy file changed, reloading", zap.String("path", w.path))

	policy, err := LoadPolicy(w.path)
	if err != nil {
		w.logger.Error("failed to reload policy, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	w.current = policy
	w.mu.Unlock()

	for _, handler := range w.onChange {
		go handler(policy)
	}

	w.logger.Info("policy reloaded",
		zap.Int("window_weeks", policy.RecommendationWindowWeeks),
		zap.Float64("time_of_day_weight", policy.TimeOfDayWeight),
		zap.Float64("day_of_week_weight", policy.DayOfWeekWeight),
	)
}
