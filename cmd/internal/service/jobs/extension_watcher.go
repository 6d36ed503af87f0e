package jobs

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"drgroup/cmd/internal/contract"
	"drgroup/cmd/internal/domain/events"
	"drgroup/cmd/internal/infrastructure/firebase"
	"drgroup/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
	"github.com/robfig/cron/v3"
)

const watchTimeout = 2 * time.Minute

type ExtensionChecker interface {
	CheckExtensions(ctx context.Context, lookaheadMonths int) (*contract.ExtensionCheckResponse, apierror.ErrorResponse)
}

type EventBroadcaster interface {
	Broadcast(ctx context.Context, evt events.SocketEvent)
}

// TopicNotifier pushes a notification to mobile subscribers of a topic.
type TopicNotifier interface {
	NotifyTopic(ctx context.Context, topic, title, body string, data map[string]string) error
}

// ExtensionWatcher periodically looks for recurring series about to run out
// and tells the dashboards. It never generates commitments itself.
type ExtensionWatcher struct {
	scheduler *cron.Cron
	jobID     cron.EntryID
	schedule  string
	lookahead int

	checker  ExtensionChecker
	events   EventBroadcaster
	notifier TopicNotifier
}

// NewExtensionWatcher builds a watcher for a 6-field (with seconds) cron
// schedule. notifier may be nil.
func NewExtensionWatcher(schedule string, lookahead int, checker ExtensionChecker, events EventBroadcaster, notifier TopicNotifier) *ExtensionWatcher {
	return &ExtensionWatcher{
		scheduler: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		schedule:  schedule,
		lookahead: lookahead,
		checker:   checker,
		events:    events,
		notifier:  notifier,
	}
}

func (w *ExtensionWatcher) Start() error {
	var err error
	w.jobID, err = w.scheduler.AddFunc(w.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), watchTimeout)
		defer cancel()
		w.RunOnce(ctx)
	})
	if err != nil {
		return fmt.Errorf("error scheduling extension watcher: %w", err)
	}

	w.scheduler.Start()
	log.Infof("Extension watcher started with schedule %q", w.schedule)
	return nil
}

func (w *ExtensionWatcher) Stop() {
	if w.scheduler == nil {
		return
	}
	<-w.scheduler.Stop().Done()
	log.Info("Extension watcher stopped")
}

// RunOnce performs a single detection pass. It reports whether any group
// needs extending.
func (w *ExtensionWatcher) RunOnce(ctx context.Context) bool {
	report, apierr := w.checker.CheckExtensions(ctx, w.lookahead)
	if apierr != nil {
		log.Errorf("Watcher: extension check failed with status %d", apierr.Code())
		return false
	}

	if report.NeedsExtension == 0 {
		log.Debugf("Watcher: none of %d recurring groups needs extending", report.TotalGroups)
		return false
	}

	log.Infof("Watcher: %d of %d recurring groups end within %d months",
		report.NeedsExtension, report.TotalGroups, report.LookaheadMonth)

	if w.events != nil {
		w.events.Broadcast(ctx, &events.ExtensionDue{ExtensionCheckResponse: report})
	}

	if w.notifier != nil {
		body := fmt.Sprintf("%d series recurrentes requieren extensión", report.NeedsExtension)
		data := map[string]string{
			"needs_extension": strconv.Itoa(report.NeedsExtension),
			"total_groups":    strconv.Itoa(report.TotalGroups),
		}
		if err := w.notifier.NotifyTopic(ctx, firebase.TopicExtensionsDue, "Compromisos por extender", body, data); err != nil {
			log.Warnf("Watcher: failed to push extension notification: %v", err)
		}
	}
	return true
}
