package logsink

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
)

// Severity levels accepted by a Sink.
const (
	SeverityInfo  = "info"
	SeverityError = "error"
)

// Sink receives error-level events for out-of-band delivery. Implementations
// must never block the caller on delivery failures.
type Sink interface {
	Emit(severity, message string, data map[string]interface{})
}

// NopSink discards all events. Used when no webhook is configured and in
// tests.
type NopSink struct{}

func (NopSink) Emit(string, string, map[string]interface{}) {}

// DiscordSink delivers events as Discord webhook embeds.
type DiscordSink struct {
	webhookURL string
	client     *http.Client
	log        logger.Logger
}

const (
	embedColorError = 0xE74C3C
	embedColorInfo  = 0x3498DB

	// Discord caps embed descriptions at 4096; stay well under it.
	maxDescriptionLen = 1800
)

func NewDiscordSink(webhookURL string) *DiscordSink {
	return &DiscordSink{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		log:        logger.New(),
	}
}

type discordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
	Timestamp   string `json:"timestamp"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Emit posts the event to the webhook. Delivery errors are logged and
// swallowed so a dead webhook can never take down a request.
func (s *DiscordSink) Emit(severity, message string, data map[string]interface{}) {
	if s.webhookURL == "" {
		return
	}

	title := "Backend Info: " + severity
	color := embedColorInfo
	if severity == SeverityError {
		title = "Backend Error: " + severity
		color = embedColorError
	}

	description := "**Message:**\n" + message
	for key, value := range data {
		description += fmt.Sprintf("\n**%s:** %v", key, value)
	}
	if len(description) > maxDescriptionLen {
		description = description[:maxDescriptionLen] + "...\n(truncated)"
	}

	payload := discordPayload{
		Embeds: []discordEmbed{{
			Title:       title,
			Description: description,
			Color:       color,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		}},
	}

	if err := s.post(payload); err != nil {
		s.log.Err(err).Error("discord sink delivery error")
	}
}

func (s *DiscordSink) post(payload discordPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WithStack(err)
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("discord webhook returned %d", resp.StatusCode)
	}
	return nil
}
