package jobs

import (
	"context"
	"errors"
	"testing"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/events"
	"drgroup/cmd/internal/infrastructure/firebase"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	report    *contract.ExtensionCheckResponse
	apierr    apierror.ErrorResponse
	lookahead int
}

func (s *stubChecker) CheckExtensions(_ context.Context, lookahead int) (*contract.ExtensionCheckResponse, apierror.ErrorResponse) {
	s.lookahead = lookahead
	if s.apierr != nil {
		return nil, s.apierr
	}
	return s.report, nil
}

type captured struct {
	events []events.SocketEvent
}

func (c *captured) Broadcast(_ context.Context, evt events.SocketEvent) {
	c.events = append(c.events, evt)
}

type stubNotifier struct {
	topic string
	data  map[string]string
	err   error
}

func (s *stubNotifier) NotifyTopic(_ context.Context, topic, _, _ string, data map[string]string) error {
	s.topic = topic
	s.data = data
	return s.err
}

func TestExtensionWatcher_RunOnce(t *testing.T) {
	checker := &stubChecker{report: &contract.ExtensionCheckResponse{TotalGroups: 4, NeedsExtension: 2, LookaheadMonth: 3}}
	sink := &captured{}
	notifier := &stubNotifier{}

	w := NewExtensionWatcher("0 0 7 * * *", 3, checker, sink, notifier)
	assert.True(t, w.RunOnce(context.Background()))
	assert.Equal(t, 3, checker.lookahead)

	require.Len(t, sink.events, 1)
	due, ok := sink.events[0].(*events.ExtensionDue)
	require.True(t, ok)
	assert.Equal(t, 2, due.NeedsExtension)

	assert.Equal(t, firebase.TopicExtensionsDue, notifier.topic)
	assert.Equal(t, "2", notifier.data["needs_extension"])
	assert.Equal(t, "4", notifier.data["total_groups"])
}

func TestExtensionWatcher_RunOnceQuiet(t *testing.T) {
	sink := &captured{}
	notifier := &stubNotifier{}

	idle := NewExtensionWatcher("@daily", 3, &stubChecker{report: &contract.ExtensionCheckResponse{TotalGroups: 4}}, sink, notifier)
	assert.False(t, idle.RunOnce(context.Background()))

	failing := NewExtensionWatcher("@daily", 3, &stubChecker{apierr: apierror.InternalServerError}, sink, notifier)
	assert.False(t, failing.RunOnce(context.Background()))

	assert.Empty(t, sink.events)
	assert.Empty(t, notifier.topic)
}

func TestExtensionWatcher_NotifierFailureStillReports(t *testing.T) {
	checker := &stubChecker{report: &contract.ExtensionCheckResponse{TotalGroups: 1, NeedsExtension: 1}}
	w := NewExtensionWatcher("@daily", 3, checker, nil, &stubNotifier{err: errors.New("fcm down")})
	assert.True(t, w.RunOnce(context.Background()))
}

func TestExtensionWatcher_StartRejectsBadSchedule(t *testing.T) {
	w := NewExtensionWatcher("not a schedule", 3, &stubChecker{}, nil, nil)
	assert.Error(t, w.Start())

	ok := NewExtensionWatcher("0 0 7 * * *", 3, &stubChecker{}, nil, nil)
	require.NoError(t, ok.Start())
	ok.Stop()
}

type countingSweeper struct {
	calls int
	now   int64
}

func (s *countingSweeper) SweepStale(_ context.Context, now int64) int {
	s.calls++
	s.now = now
	return 1
}

func TestConnectionCleaner_Cleanup(t *testing.T) {
	sweeper := &countingSweeper{}
	NewConnectionCleaner(sweeper).cleanup()

	assert.Equal(t, 1, sweeper.calls)
	assert.Positive(t, sweeper.now)
}

func TestConnectionCleaner_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		NewConnectionCleaner(&countingSweeper{}).Start(ctx)
		close(done)
	}()
	<-done
}
