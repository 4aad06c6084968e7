package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/guggenheimg/cakebot/core/logger"
	tghelpers "github.com/guggenheimg/cakebot/core/telegram/helpers"
	"github.com/guggenheimg/cakebot/internal/domain"
	"github.com/guggenheimg/cakebot/internal/ledger"
	"github.com/guggenheimg/cakebot/internal/pager"
)

// viewOrders dumps every order that still needs attention, newest
// first, in fixed-size chunks so a long backlog does not hit the
// message length cap.
func (f *Flow) viewOrders(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "flow.view_orders")

	all := f.ledger.ListAll(ctx)
	if len(all) == 0 {
		return tghelpers.SendText(c, msgNoOrders, operatorMenu())
	}

	pending := all[:0:0]
	for _, o := range all {
		if o.Status != domain.StatusDelivered {
			pending = append(pending, o)
		}
	}
	if len(pending) == 0 {
		return tghelpers.SendText(c, msgNoPendingOrders, operatorMenu())
	}

	sorted := ledger.SortByDateDesc(pending)
	pages := pager.Count(len(sorted), f.operatorPageSize)
	for i := 0; i < pages; i++ {
		page := pager.Render(sorted, i, f.operatorPageSize, msgAllOrdersHeader, pager.OperatorBlock)
		if err := tghelpers.SendHTML(c, page.Text); err != nil {
			return err
		}
	}

	logger.Debug(ctx, "flow", "orders.reviewed",
		slog.Int64("user_id", c.Sender().ID),
		slog.Int("pending", len(sorted)),
		slog.Int("pages", pages),
	)
	return nil
}

// promptStatusUpdate opens the status-update dialogue.
func (f *Flow) promptStatusUpdate(c tele.Context) error {
	f.sessions.SetState(c.Sender().ID, stateUpdatingStatus)
	return tghelpers.SendText(c, msgAskStatusUpdate, cancelMarkup())
}

// onStatusUpdateInput parses "<OrderID> <new status>". Malformed input
// re-prompts and keeps the dialogue open; a valid attempt ends it
// whether the update lands or not.
func (f *Flow) onStatusUpdateInput(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "flow.update_status")

	parts := strings.SplitN(strings.TrimSpace(c.Text()), " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return tghelpers.SendText(c, msgBadUpdateFormat)
	}
	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return tghelpers.SendText(c, msgOrderIDNotNumber)
	}
	status := strings.TrimSpace(parts[1])

	f.sessions.Clear(c.Sender().ID)

	if err := f.ledger.UpdateStatus(ctx, orderID, status); err != nil {
		logger.Warn(ctx, "flow", "status.update",
			slog.Int64("order_id", orderID),
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		return tghelpers.SendText(c, msgStatusUpdateFailed, operatorMenu())
	}

	logger.Info(ctx, "flow", "status.updated",
		slog.Int64("order_id", orderID),
		slog.String("new_status", logger.Sanitize(status)),
	)

	text := f.notifyStatusChange(ctx, orderID, status)
	return tghelpers.SendText(c, text, operatorMenu())
}

// notifyStatusChange tells the owning customer and phrases the
// operator's outcome line. A customer that cannot be resolved or
// reached yields the partial-success wording; the ledger update itself
// already stands.
func (f *Flow) notifyStatusChange(ctx context.Context, orderID int64, status string) string {
	partial := fmt.Sprintf(
		"Статус заказа №%d обновлён, но не удалось уведомить пользователя.", orderID)

	order, found := f.ledger.Find(ctx, orderID)
	if !found {
		return partial
	}
	customerID, err := strconv.ParseInt(strings.TrimSpace(order.UserID), 10, 64)
	if err != nil {
		logger.Warn(ctx, "flow", "status.notify",
			slog.Int64("order_id", orderID),
			slog.String("user_id", order.UserID),
			slog.String("err", "unparseable user id"),
		)
		return partial
	}
	if f.notify == nil || !f.notify.StatusChanged(ctx, customerID, orderID, status) {
		return partial
	}
	return fmt.Sprintf(
		"Статус заказа №%d обновлён на «%s». Уведомление пользователю отправлено.",
		orderID, status)
}
