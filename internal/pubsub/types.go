package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventResultsChanged  EventType = "results-changed"
	EventImportCommitted EventType = "import-committed"
	EventPlayersMerged   EventType = "players-merged"
)

// ChangeNotice tells subscribers which rankings of a tenant went stale.
type ChangeNotice struct {
	TenantID   string    `msgpack:"tenant_id"`
	Categories []string  `msgpack:"categories"`
	Source     string    `msgpack:"source"`
	Reference  string    `msgpack:"reference,omitempty"`
	Succeeded  int       `msgpack:"succeeded,omitempty"`
	Failed     int       `msgpack:"failed,omitempty"`
	OccurredAt time.Time `msgpack:"occurred_at"`
}

// PushEnvelope is the JSON body of a pubsub push subscription request.
type PushEnvelope struct {
	Message struct {
		Data       []byte            `json:"data"`
		MessageID  string            `json:"messageId"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}
