// Package notify delivers monitor messages to people and systems.
package notify

import (
	"context"

	"pi-monitor/internal/incident"
	"pi-monitor/internal/models"

	"github.com/rs/zerolog/log"
)

// Notifier sends one message to one recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Journal records delivery attempts.
type Journal interface {
	RecordDelivery(delivery *models.Delivery) error
}

// Message is what the monitor wants said, independent of transport.
type Message struct {
	Kind    incident.Kind
	CycleID string
	Subject string
	Body    string
}

// Broadcaster fans a message out to every configured destination.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg Message) int
}

// Dispatcher sends each message once per recipient through Mailer and, when
// configured, once to Webhook. Delivery failures are logged and journaled but
// never returned: a failed mail must not affect monitoring.
type Dispatcher struct {
	Mailer     Notifier
	Webhook    *Webhook
	Recipients []string
	Journal    Journal
}

// Broadcast returns the number of successful deliveries.
func (d *Dispatcher) Broadcast(ctx context.Context, msg Message) int {
	delivered := 0

	if d.Mailer != nil {
		for _, recipient := range d.Recipients {
			err := d.Mailer.Send(ctx, recipient, msg.Subject, msg.Body)
			if err != nil {
				log.Error().Err(err).
					Str("recipient", recipient).
					Str("kind", string(msg.Kind)).
					Msg("[mail] delivery failed")
			} else {
				delivered++
				log.Info().Str("recipient", recipient).Str("kind", string(msg.Kind)).Msg("[mail] delivered")
			}
			d.record(msg, "mail", recipient, err)
		}
	} else if len(d.Recipients) > 0 {
		log.Warn().Str("kind", string(msg.Kind)).Msg("[mail] no mail server configured, message dropped")
	}

	if d.Webhook != nil && d.Webhook.URL != "" {
		err := d.Webhook.Fire(ctx, msg)
		if err != nil {
			log.Error().Err(err).Str("kind", string(msg.Kind)).Msg("[webhook] delivery failed")
		} else {
			delivered++
		}
		d.record(msg, "webhook", d.Webhook.URL, err)
	}

	return delivered
}

func (d *Dispatcher) record(msg Message, channel, recipient string, sendErr error) {
	if d.Journal == nil {
		return
	}

	delivery := &models.Delivery{
		CycleID:   msg.CycleID,
		Kind:      msg.Kind,
		Channel:   channel,
		Recipient: recipient,
		Subject:   msg.Subject,
		Body:      msg.Body,
		Delivered: sendErr == nil,
	}
	if sendErr != nil {
		delivery.Error = sendErr.Error()
	}

	if err := d.Journal.RecordDelivery(delivery); err != nil {
		log.Warn().Err(err).Msg("failed to journal delivery")
	}
}
