package util

import (
	"fmt"
	"sync"
	"time"
)

// TimeProvider resolves "now" in the configured timezone. Document headers and
// date-range defaults go through it so a single --timezone flag governs both.
type TimeProvider struct {
	location *time.Location
	now      func() time.Time
	mu       sync.RWMutex
}

var (
	globalTimeProvider *TimeProvider
	mu                 sync.Mutex
)

// NewTimeProvider builds a provider for timezone. A nil clock uses time.Now.
func NewTimeProvider(timezone string, clock func() time.Time) (*TimeProvider, error) {
	if clock == nil {
		clock = time.Now
	}
	provider := &TimeProvider{now: clock}
	if err := provider.SetTimezone(timezone); err != nil {
		return nil, err
	}
	return provider, nil
}

// InitializeTimeProvider installs the global provider for timezone.
func InitializeTimeProvider(timezone string) error {
	provider, err := NewTimeProvider(timezone, nil)
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	globalTimeProvider = provider
	return nil
}

// GetTimeProvider returns the global provider, defaulting to Local.
func GetTimeProvider() *TimeProvider {
	mu.Lock()
	defer mu.Unlock()
	if globalTimeProvider == nil {
		globalTimeProvider = &TimeProvider{location: time.Local, now: time.Now}
	}
	return globalTimeProvider
}

// SetTimezone updates the provider's location. "" and "Local" mean the
// process's local zone.
func (tp *TimeProvider) SetTimezone(timezone string) error {
	loc := time.Local
	if timezone != "" && timezone != "Local" {
		l, err := time.LoadLocation(timezone)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w\nValid examples: Local, UTC, America/New_York, Asia/Shanghai, Europe/London", timezone, err)
		}
		loc = l
	}

	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.location = loc
	return nil
}

// Location returns the configured location.
func (tp *TimeProvider) Location() *time.Location {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.location
}

// Now returns the current time in the configured timezone.
func (tp *TimeProvider) Now() time.Time {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return tp.now().In(tp.location)
}

// Today returns midnight of the current day in the configured timezone.
func (tp *TimeProvider) Today() time.Time {
	now := tp.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Format formats t in the configured timezone.
func (tp *TimeProvider) Format(t time.Time, layout string) string {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return t.In(tp.location).Format(layout)
}
