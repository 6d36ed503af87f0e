package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/labstack/gommon/log"
)

// TopicExtensionsDue is the FCM topic dashboard clients subscribe to for
// extension reminders.
const TopicExtensionsDue = "commitment-extensions"

type Notifier struct {
	client *messaging.Client
}

func (a *App) Notifier(ctx context.Context) (*Notifier, error) {
	client, err := a.app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting Messaging client: %w", err)
	}
	return &Notifier{client: client}, nil
}

// NotifyTopic sends a data-carrying notification to every subscriber of topic.
func (n *Notifier) NotifyTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	message := &messaging.Message{
		Topic: topic,
		Data:  data,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	response, err := n.client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending message to topic %s: %w", topic, err)
	}

	log.Debugf("sent FCM message %s to topic %s", response, topic)
	return nil
}
