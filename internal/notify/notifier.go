// Package notify fans roster changes out to Redis subscribers and student
// confirmation emails. Delivery is best effort: failures are logged and
// counted, never returned to the HTTP caller.
package notify

import (
	"context"
	"sync"
	"time"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/models"

	"github.com/google/uuid"
)

// Channel delivers roster events to one destination.
type Channel interface {
	Name() string
	Notify(ctx context.Context, event models.RosterEvent) error
}

// NewEvent stamps a roster change with an ID and time.
func NewEvent(eventType models.RosterEventType, activity, email string, participantCount int) models.RosterEvent {
	return models.RosterEvent{
		ID:               uuid.NewString(),
		Type:             eventType,
		Activity:         activity,
		Email:            email,
		ParticipantCount: participantCount,
		OccurredAt:       time.Now().UTC(),
	}
}

// Dispatcher sends each event to every channel in turn.
type Dispatcher struct {
	channels []Channel
	timeout  time.Duration
	logger   logger.Logger
	inflight sync.WaitGroup
}

// NewDispatcher builds a Dispatcher. A zero timeout means no deadline beyond ctx.
func NewDispatcher(timeout time.Duration, log logger.Logger, channels ...Channel) *Dispatcher {
	return &Dispatcher{
		channels: channels,
		timeout:  timeout,
		logger:   log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// Channels returns the configured channel names.
func (d *Dispatcher) Channels() []string {
	names := make([]string, 0, len(d.channels))
	for _, c := range d.channels {
		names = append(names, c.Name())
	}
	return names
}

// Go delivers event on a background goroutine. Wait blocks until every
// delivery started this way has finished.
func (d *Dispatcher) Go(ctx context.Context, event models.RosterEvent) {
	if len(d.channels) == 0 {
		return
	}
	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		d.Dispatch(ctx, event)
	}()
}

// Wait blocks until background deliveries have finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// Dispatch delivers event and returns the number of channels that failed.
// Cancellation of ctx does not abort delivery; the dispatcher's own timeout does.
func (d *Dispatcher) Dispatch(ctx context.Context, event models.RosterEvent) int {
	if len(d.channels) == 0 {
		return 0
	}

	ctx = context.WithoutCancel(ctx)
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	failed := 0
	for _, c := range d.channels {
		if err := c.Notify(ctx, event); err != nil {
			failed++
			stdErr := apperrors.NewNotificationSendFailedError(c.Name(), err)
			metrics.NotificationFailuresTotal.WithLabelValues(c.Name()).Inc()
			d.logger.Warn("Roster notification failed", map[string]interface{}{
				"eventId":   event.ID,
				"eventType": string(event.Type),
				"activity":  event.Activity,
				"channel":   c.Name(),
				"errorCode": string(stdErr.Code),
				"details":   stdErr.Details,
			})
			continue
		}
		d.logger.Debug("Roster notification sent", map[string]interface{}{
			"eventId": event.ID,
			"channel": c.Name(),
		})
	}
	return failed
}
