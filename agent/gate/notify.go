package gate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	qstashx "github.com/tanpawarit/ai-toolkit/pkg/qstash"
)

type publisher interface {
	Publish(ctx context.Context, body []byte, headers map[string]string) (string, error)
}

// QStashNotifier queues quarantined statements for human review.
type QStashNotifier struct {
	client publisher
	now    func() time.Time
}

var _ Notifier = (*QStashNotifier)(nil)

func NewQStashNotifier(client *qstashx.Client) *QStashNotifier {
	return &QStashNotifier{client: client, now: time.Now}
}

type reviewMessage struct {
	ID            string    `json:"id"`
	Statement     string    `json:"statement"`
	Disclaimer    string    `json:"disclaimer"`
	Risk          string    `json:"risk"`
	QuarantinedAt time.Time `json:"quarantined_at"`
}

func (n *QStashNotifier) NotifyQuarantined(ctx context.Context, v Verdict) error {
	msg := reviewMessage{
		ID:            uuid.NewString(),
		Statement:     v.Statement,
		Disclaimer:    v.Disclaimer,
		Risk:          string(v.Risk),
		QuarantinedAt: n.now().UTC(),
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal review message: %w", err)
	}

	messageID, err := n.client.Publish(ctx, body, map[string]string{
		"X-Review-Id": msg.ID,
	})
	if err != nil {
		return err
	}
	log.Info().Str("review_id", msg.ID).Str("message_id", messageID).Msg("quarantined statement queued for review")
	return nil
}
