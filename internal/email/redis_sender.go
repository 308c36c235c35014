package email

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockEmailTTL is how long a captured email stays readable.
const MockEmailTTL = 5 * time.Minute

// MockEmailKey is the Redis key holding the latest email captured for a recipient.
func MockEmailKey(to string) string {
	return "mockemail:" + strings.ToLower(to)
}

// MockEmail is the JSON document stored by RedisSender.
type MockEmail struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	SentAt  string `json:"sent_at"`
}

// RedisSender stores emails in Redis instead of delivering them, for tests
// driving the service API.
type RedisSender struct {
	client *redis.Client
	from   string
}

func NewRedisSender(client *redis.Client, from string) *RedisSender {
	return &RedisSender{client: client, from: from}
}

// Send stores the message under the key of every recipient.
func (s *RedisSender) Send(ctx context.Context, to []string, subject string, rawMessage []byte) error {
	data, err := json.Marshal(MockEmail{
		To:      strings.Join(to, ", "),
		From:    s.from,
		Subject: subject,
		Body:    string(rawMessage),
		SentAt:  time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email data: %w", err)
	}
	for _, rcpt := range to {
		key := MockEmailKey(rcpt)
		if err := s.client.Set(ctx, key, data, MockEmailTTL).Err(); err != nil {
			return fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
		}
	}
	return nil
}
