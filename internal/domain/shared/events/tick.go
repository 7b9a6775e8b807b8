package events

import "time"

const (
	EventTypeCronHourly  = "cron.hourly"
	EventTypeCronDaily   = "cron.daily"
	EventTypeCronMonthly = "cron.monthly"
)

// TickEvent is published by the scheduler on each recurring tick.
type TickEvent struct {
	BaseEvent
	Schedule string `json:"schedule"`
}

func NewTickEvent(eventType, schedule string, at time.Time) *TickEvent {
	return &TickEvent{
		BaseEvent: NewBaseEvent(schedule, eventType, at),
		Schedule:  schedule,
	}
}
