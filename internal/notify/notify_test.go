package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"activity-signup/internal/common/logger"
	"activity-signup/internal/common/metrics"
	"activity-signup/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/go-redis/redismock/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type fakeChannel struct {
	name     string
	err      error
	received []models.RosterEvent
	deadline bool
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Notify(ctx context.Context, event models.RosterEvent) error {
	_, f.deadline = ctx.Deadline()
	f.received = append(f.received, event)
	return f.err
}

type gatedChannel struct {
	release  <-chan struct{}
	received []models.RosterEvent
	err      error
}

func (g *gatedChannel) Name() string { return "gated" }

func (g *gatedChannel) Notify(ctx context.Context, event models.RosterEvent) error {
	select {
	case <-g.release:
	case <-ctx.Done():
		g.err = ctx.Err()
		return g.err
	}
	g.received = append(g.received, event)
	return nil
}

func fixedEvent() models.RosterEvent {
	return models.RosterEvent{
		ID:               "4b4e4a3a-0000-4000-8000-000000000001",
		Type:             models.RosterEventSignup,
		Activity:         "Chess Club",
		Email:            "a@x.edu",
		ParticipantCount: 3,
		OccurredAt:       time.Date(2024, 9, 6, 15, 30, 0, 0, time.UTC),
	}
}

// ==========================
// Events
// ==========================

func TestNewEvent(t *testing.T) {
	before := time.Now().UTC()
	event := NewEvent(models.RosterEventUnregister, "Gym Class", "john@mergington.edu", 1)

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, models.RosterEventUnregister, event.Type)
	assert.Equal(t, "Gym Class", event.Activity)
	assert.Equal(t, "john@mergington.edu", event.Email)
	assert.Equal(t, 1, event.ParticipantCount)
	assert.False(t, event.OccurredAt.Before(before))

	other := NewEvent(models.RosterEventUnregister, "Gym Class", "john@mergington.edu", 1)
	assert.NotEqual(t, event.ID, other.ID)
}

// ==========================
// Dispatcher
// ==========================

func TestDispatcher_FansOutAndCountsFailures(t *testing.T) {
	ok := &fakeChannel{name: "ok"}
	broken := &fakeChannel{name: "broken-test-channel", err: errors.New("unreachable")}
	d := NewDispatcher(time.Second, logger.NewTestLogger(t), ok, broken)

	before := testutil.ToFloat64(metrics.NotificationFailuresTotal.WithLabelValues("broken-test-channel"))

	failed := d.Dispatch(context.Background(), fixedEvent())

	assert.Equal(t, 1, failed)
	assert.Len(t, ok.received, 1)
	assert.Len(t, broken.received, 1)
	assert.True(t, ok.deadline)
	assert.Equal(t, []string{"ok", "broken-test-channel"}, d.Channels())

	after := testutil.ToFloat64(metrics.NotificationFailuresTotal.WithLabelValues("broken-test-channel"))
	assert.Equal(t, before+1, after)
}

func TestDispatcher_IgnoresCallerCancellation(t *testing.T) {
	ch := &fakeChannel{name: "ok"}
	d := NewDispatcher(0, logger.NewNoOpLogger(), ch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, d.Dispatch(ctx, fixedEvent()))
	assert.Len(t, ch.received, 1)
	assert.False(t, ch.deadline)
}

func TestDispatcher_NoChannels(t *testing.T) {
	d := NewDispatcher(time.Second, logger.NewNoOpLogger())
	assert.Equal(t, 0, d.Dispatch(context.Background(), fixedEvent()))
	assert.Empty(t, d.Channels())

	d.Go(context.Background(), fixedEvent())
	d.Wait()
}

func TestDispatcher_GoDeliversInBackground(t *testing.T) {
	release := make(chan struct{})
	gate := &gatedChannel{release: release}
	d := NewDispatcher(time.Second, logger.NewTestLogger(t), gate)

	ctx, cancel := context.WithCancel(context.Background())
	d.Go(ctx, fixedEvent())
	cancel()

	// Go has returned while the channel is still blocked.
	close(release)
	d.Wait()

	require.Len(t, gate.received, 1)
	assert.Equal(t, "Chess Club", gate.received[0].Activity)
	assert.NoError(t, gate.err)
}

// ==========================
// Redis publisher
// ==========================

func TestRedisPublisher_PublishesJSON(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub := client.Subscribe(ctx, "activities:roster")
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	publisher := NewRedisPublisher(client, "activities:roster")
	assert.Equal(t, "redis", publisher.Name())
	require.NoError(t, publisher.Notify(ctx, fixedEvent()))

	select {
	case msg := <-sub.Channel():
		var got models.RosterEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, fixedEvent(), got)
	case <-ctx.Done():
		t.Fatal("timed out waiting for roster event")
	}
}

func TestRedisPublisher_PublishError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	payload, err := json.Marshal(fixedEvent())
	require.NoError(t, err)

	mock.ExpectPublish("activities:roster", payload).SetErr(errors.New("connection reset"))

	err = NewRedisPublisher(client, "activities:roster").Notify(context.Background(), fixedEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to activities:roster")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Email notifier
// ==========================

func TestEmailNotifier_SendsConfirmation(t *testing.T) {
	var captured *ses.SendEmailInput
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{}, nil
		},
	}

	n := NewEmailNotifier(mock, "activities@mergington.edu")
	assert.Equal(t, "email", n.Name())
	require.NoError(t, n.Notify(context.Background(), fixedEvent()))

	require.NotNil(t, captured)
	assert.Equal(t, "activities@mergington.edu", *captured.Source)
	assert.Equal(t, []string{"a@x.edu"}, captured.Destination.ToAddresses)
	assert.Equal(t, "You are signed up for Chess Club", *captured.Message.Subject.Data)
	assert.Contains(t, *captured.Message.Body.Text.Data, "a@x.edu is now signed up for Chess Club")
}

func TestEmailNotifier_UnregisterWording(t *testing.T) {
	event := fixedEvent()
	event.Type = models.RosterEventUnregister
	event.ParticipantCount = 2

	subject, body := renderEmail(event)
	assert.Equal(t, "You have left Chess Club", subject)
	assert.True(t, strings.Contains(body, "2 students remain"))
}

func TestEmailNotifier_SendError(t *testing.T) {
	mock := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	err := NewEmailNotifier(mock, "activities@mergington.edu").Notify(context.Background(), fixedEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send email to a@x.edu")
}
