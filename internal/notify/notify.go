// Package notify delivers best-effort status messages to participants.
// A failed delivery is logged and swallowed; it never rolls back the
// ledger mutation that triggered it.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/guggenheimg/cakebot/core/logger"
	"github.com/guggenheimg/cakebot/internal/domain"
)

// Sender is the outbound side of the messaging transport. *tele.Bot
// satisfies it.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Dispatcher fans notifications out to customers and operators.
type Dispatcher struct {
	sender Sender
}

// New wires the dispatcher over the transport.
func New(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Notify sends one message to one participant, best-effort, one
// attempt. It reports whether the send succeeded so callers can phrase
// their outcome messages, but failure carries no further consequence.
func (d *Dispatcher) Notify(ctx context.Context, userID int64, text string) bool {
	_, err := d.sender.Send(tele.ChatID(userID), text, &tele.SendOptions{ParseMode: tele.ModeHTML})
	if err != nil {
		logger.Warn(ctx, "notify", "notify.send",
			slog.Int64("user_id", userID),
			slog.String("status", "fail"),
			slog.String("err", logger.RedactError(err)),
		)
		return false
	}
	logger.Debug(ctx, "notify", "notify.send",
		slog.Int64("user_id", userID),
		slog.String("status", "ok"),
	)
	return true
}

// StatusChanged tells the owning customer about a status update.
func (d *Dispatcher) StatusChanged(ctx context.Context, userID, orderID int64, status string) bool {
	text := fmt.Sprintf("✅ Ваш заказ №%d обновлён.\nНовый статус: <b>%s</b>", orderID, status)
	return d.Notify(ctx, userID, text)
}

// NewOrder announces a fresh order to every operator. Each send is
// attempted independently; one failure does not block the others.
func (d *Dispatcher) NewOrder(ctx context.Context, operators []int64, orderID int64, userID int64, userName string, draft domain.Draft, date string) {
	text := fmt.Sprintf(
		"📦 <b>Новый заказ</b>\n\n"+
			"№ %d\n"+
			"Пользователь: @%s (ID: %d)\n"+
			"Торт: %s\n"+
			"Вкус: %s\n"+
			"Размер: %d персон\n"+
			"Декор: %s\n"+
			"Статус: %s\n"+
			"Дата: %s",
		orderID, userName, userID,
		draft.Cake.Name, draft.Taste, draft.Size, draft.Decor,
		domain.StatusPending, date,
	)
	for _, operatorID := range operators {
		d.Notify(ctx, operatorID, text)
	}
}
