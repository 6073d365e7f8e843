package config

import "fmt"

// EventBusConfig holds backlog sizing for the domain event bus and the
// live task broadcaster. Both are in-process, bounded-channel fanouts;
// the backlog bounds how far a slow subscriber can lag before its
// oldest buffered event is dropped.
type EventBusConfig struct {
	Backlog            int `mapstructure:"backlog" env:"EVENTBUS_BACKLOG" default:"128"`
	BroadcasterBacklog int `mapstructure:"broadcaster_backlog" env:"EVENTBUS_BROADCASTER_BACKLOG" default:"128"`
}

// Validate validates event bus configuration.
func (e *EventBusConfig) Validate() error {
	if e.Backlog <= 0 {
		return fmt.Errorf("backlog must be positive")
	}
	if e.BroadcasterBacklog <= 0 {
		return fmt.Errorf("broadcaster backlog must be positive")
	}
	return nil
}
