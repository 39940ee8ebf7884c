package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"renthub/internal/domain"
	"renthub/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier listens to booking events and messages the affected
// parties through the bot: the owner hears about new requests, the booker
// hears about decisions. Users without a linked Telegram id are skipped.
type TelegramNotifier struct {
	sender domain.TelegramSender
	users  domain.UserDirectory
	logger *zerolog.Logger
}

func NewTelegramNotifier(sender domain.TelegramSender, users domain.UserDirectory, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, users: users, logger: logger}
}

// Register subscribes the notifier to booking events on the bus.
func (n *TelegramNotifier) Register(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handle)
	bus.Subscribe(events.EventBookingApproved, n.handle)
	bus.Subscribe(events.EventBookingRejected, n.handle)
}

func (n *TelegramNotifier) handle(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to decode booking event")
		return err
	}

	var recipientID int64
	var text string

	interval := fmt.Sprintf("%s — %s",
		payload.StartDate.Format("2006-01-02 15:04"),
		payload.EndDate.Format("2006-01-02 15:04"))

	switch event.Type {
	case events.EventBookingCreated:
		recipientID = payload.OwnerID
		text = fmt.Sprintf("New booking request #%d for %q (%s). Approve or reject it in the app.",
			payload.BookingID, payload.ItemName, interval)
	case events.EventBookingApproved:
		recipientID = payload.BookerID
		text = fmt.Sprintf("Your booking #%d for %q (%s) was approved.",
			payload.BookingID, payload.ItemName, interval)
	case events.EventBookingRejected:
		recipientID = payload.BookerID
		text = fmt.Sprintf("Your booking #%d for %q (%s) was rejected.",
			payload.BookingID, payload.ItemName, interval)
	default:
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, err := n.users.GetUser(ctx, recipientID)
	if err != nil {
		n.logger.Error().Err(err).Int64("user_id", recipientID).Msg("failed to resolve notification recipient")
		return err
	}
	if user.TelegramID == 0 {
		return nil
	}

	if _, err := n.sender.Send(tgbotapi.NewMessage(user.TelegramID, text)); err != nil {
		n.logger.Error().Err(err).Int64("user_id", recipientID).Msg("failed to send telegram notification")
		return err
	}
	return nil
}
