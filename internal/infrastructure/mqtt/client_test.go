package mqtt

import (
	"testing"
)

// Tests here avoid requiring a running broker: they exercise topic
// builders and input validation on a disconnected client. Round-trip
// behaviour against a live Mosquitto is covered by the integration tests.

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{
			name: "socket",
			got:  topics.Socket(),
			want: "liftnet/socket",
		},
		{
			name: "legacy set",
			got:  topics.Legacy("setCurrentLevel"),
			want: "liftnet/legacy/setCurrentLevel",
		},
		{
			name: "legacy get",
			got:  topics.Legacy("getCurrentLevel"),
			want: "liftnet/legacy/getCurrentLevel",
		},
		{
			name: "legacy changed",
			got:  topics.Legacy("currentLevelChanged"),
			want: "liftnet/legacy/currentLevelChanged",
		},
		{
			name: "all legacy wildcard",
			got:  topics.AllLegacy(),
			want: "liftnet/legacy/+",
		},
		{
			name: "user notification",
			got:  topics.UserNotification("usr-1"),
			want: "liftnet/user/usr-1/notification",
		},
		{
			name: "system status",
			got:  topics.SystemStatus(),
			want: "liftnet/system/status",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

// disconnectedClient returns a Client that was never connected.
func disconnectedClient() *Client {
	return &Client{
		subscriptions: make(map[string]subscription),
	}
}

func TestPublishEmptyTopic(t *testing.T) {
	c := disconnectedClient()
	if err := c.Publish("", []byte("x"), 1, false); err != ErrInvalidTopic {
		t.Errorf("Publish() error = %v, want ErrInvalidTopic", err)
	}
}

func TestPublishInvalidQoS(t *testing.T) {
	c := disconnectedClient()
	if err := c.Publish("liftnet/socket", []byte("x"), 3, false); err != ErrInvalidQoS {
		t.Errorf("Publish() error = %v, want ErrInvalidQoS", err)
	}
}

func TestPublishDisconnected(t *testing.T) {
	c := disconnectedClient()
	if err := c.Publish("liftnet/socket", []byte("x"), 1, false); err != ErrNotConnected {
		t.Errorf("Publish() error = %v, want ErrNotConnected", err)
	}
}

func TestSubscribeEmptyTopic(t *testing.T) {
	c := disconnectedClient()
	err := c.Subscribe("", 1, func(string, []byte) error { return nil })
	if err != ErrInvalidTopic {
		t.Errorf("Subscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscribeNilHandler(t *testing.T) {
	c := disconnectedClient()
	err := c.Subscribe("liftnet/socket", 1, nil)
	if err == nil {
		t.Error("Subscribe() expected error for nil handler")
	}
}

func TestSubscribeDisconnected(t *testing.T) {
	c := disconnectedClient()
	err := c.Subscribe("liftnet/socket", 1, func(string, []byte) error { return nil })
	if err != ErrNotConnected {
		t.Errorf("Subscribe() error = %v, want ErrNotConnected", err)
	}
}

func TestUnsubscribeEmptyTopic(t *testing.T) {
	c := disconnectedClient()
	if err := c.Unsubscribe(""); err != ErrInvalidTopic {
		t.Errorf("Unsubscribe() error = %v, want ErrInvalidTopic", err)
	}
}

func TestSubscriptionCount_Empty(t *testing.T) {
	c := disconnectedClient()
	if got := c.SubscriptionCount(); got != 0 {
		t.Errorf("SubscriptionCount() = %d, want 0", got)
	}
}

func TestHasSubscription_NotSubscribed(t *testing.T) {
	c := disconnectedClient()
	if c.HasSubscription("liftnet/socket") {
		t.Error("HasSubscription() = true for never-subscribed topic")
	}
}

func TestIsConnected_NeverConnected(t *testing.T) {
	c := disconnectedClient()
	if c.IsConnected() {
		t.Error("IsConnected() = true for never-connected client")
	}
}
