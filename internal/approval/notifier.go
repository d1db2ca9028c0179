package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/waypointworks/liftnet-core/internal/infrastructure/mqtt"
)

// Publisher is the one messaging-client method the notifier needs.
type Publisher interface {
	PublishDefault(topic string, payload []byte) error
}

// ChannelNotifier delivers private notifications over the per-user
// notification topics. Delivery is fire-and-forget; an offline user's
// notification is simply lost, which is acceptable because the durable
// approval message is the record, not the ping.
type ChannelNotifier struct {
	publisher Publisher
	topics    mqtt.Topics
	from      string
}

// NewChannelNotifier creates a notifier sending on behalf of the given
// display name.
func NewChannelNotifier(publisher Publisher, from string) *ChannelNotifier {
	return &ChannelNotifier{publisher: publisher, from: from}
}

// notification is the wire shape on user topics.
type notification struct {
	From   string `json:"from"`
	Text   string `json:"text"`
	SentAt string `json:"sentAt"`
}

// Notify publishes a short text to the user's notification topic.
func (n *ChannelNotifier) Notify(_ context.Context, userID, text string) error {
	payload, err := json.Marshal(notification{
		From:   n.from,
		Text:   text,
		SentAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}
	if err := n.publisher.PublishDefault(n.topics.UserNotification(userID), payload); err != nil {
		return fmt.Errorf("publishing notification to %s: %w", userID, err)
	}
	return nil
}
