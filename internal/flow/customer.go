package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/guggenheimg/cakebot/core/logger"
	"github.com/guggenheimg/cakebot/core/telegram/callbacks"
	tghelpers "github.com/guggenheimg/cakebot/core/telegram/helpers"
	"github.com/guggenheimg/cakebot/core/telegram/keyboard"
	"github.com/guggenheimg/cakebot/internal/domain"
	"github.com/guggenheimg/cakebot/internal/ledger"
	"github.com/guggenheimg/cakebot/internal/pager"
)

// makeOrder opens the order dialogue: show the catalog, then ask for a
// cake name.
func (f *Flow) makeOrder(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "flow.make_order")

	cakes := f.catalog.Fetch(ctx)
	if len(cakes) == 0 {
		return tghelpers.SendText(c, msgCatalogEmpty, customerMenu())
	}

	for _, cake := range cakes {
		caption := fmt.Sprintf("<b>%s</b>\nЦена: %s руб.\n%s", cake.Name, cake.Price, cake.Description)
		if cake.Photo != "" {
			if err := tghelpers.SendPhotoHTML(c, cake.Photo, caption); err == nil {
				continue
			}
			// A broken photo reference should not hide the cake.
		}
		if err := tghelpers.SendHTML(c, caption); err != nil {
			return err
		}
	}

	f.sessions.SetState(c.Sender().ID, stateChoosingCake)
	return tghelpers.SendText(c, msgAskCakeName, cancelMarkup())
}

func (f *Flow) onCakeName(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "flow.choose_cake")
	name := strings.TrimSpace(c.Text())

	cake, ok := f.catalog.FindByName(ctx, name)
	if !ok {
		return tghelpers.SendText(c, msgUnknownCake)
	}

	userID := c.Sender().ID
	f.sessions.SetTemp(userID, draftKey, &domain.Draft{Cake: cake})
	f.sessions.SetState(userID, stateChoosingTaste)
	return tghelpers.SendText(c, msgAskTaste)
}

func (f *Flow) onTaste(c tele.Context) error {
	draft, ok := f.draft(c)
	if !ok {
		return f.abortDialogue(c)
	}
	draft.Taste = strings.TrimSpace(c.Text())
	f.sessions.SetState(c.Sender().ID, stateChoosingSize)
	return tghelpers.SendText(c, msgAskSize)
}

func (f *Flow) onSize(c tele.Context) error {
	draft, ok := f.draft(c)
	if !ok {
		return f.abortDialogue(c)
	}

	n, err := strconv.Atoi(strings.TrimSpace(c.Text()))
	if err != nil || n <= 0 {
		return tghelpers.SendText(c, msgSizeNotNumber)
	}

	draft.Size = n
	f.sessions.SetState(c.Sender().ID, stateChoosingDecor)
	return tghelpers.SendText(c, msgAskDecor)
}

func (f *Flow) onDecor(c tele.Context) error {
	draft, ok := f.draft(c)
	if !ok {
		return f.abortDialogue(c)
	}

	draft.Decor = strings.TrimSpace(c.Text())
	f.sessions.SetState(c.Sender().ID, stateConfirming)

	summary := fmt.Sprintf(
		"Проверьте ваш заказ:\n\nТорт: %s\nЦена: %s руб.\nВкус: %s\nРазмер: %d персон\nДекор: %s\n\nПодтверждаете?",
		draft.Cake.Name, draft.Cake.Price, draft.Taste, draft.Size, draft.Decor,
	)
	markup := keyboard.InlineRow(
		keyboard.InlineBtn{Text: "Да", Unique: cbConfirmOrder, Data: "yes"},
		keyboard.InlineBtn{Text: "Нет", Unique: cbConfirmOrder, Data: "no"},
	)
	return tghelpers.SendHTML(c, summary, markup)
}

// onConfirmText accepts the typed confirmation for users who answer
// the summary with a message instead of the inline buttons.
func (f *Flow) onConfirmText(c tele.Context) error {
	switch strings.ToLower(strings.TrimSpace(c.Text())) {
	case "да":
		return f.submitOrder(c, false)
	case "нет":
		return f.rejectOrder(c, false)
	}
	return tghelpers.SendText(c, msgConfirmHint)
}

func (f *Flow) onConfirmCallback(c tele.Context) error {
	if f.sessions.GetState(c.Sender().ID) != stateConfirming {
		return c.Respond(&tele.CallbackResponse{Text: msgUnknownAction})
	}

	_, payload := callbacks.Parse(c.Callback())
	var err error
	switch payload {
	case "yes":
		err = f.submitOrder(c, true)
	case "no":
		err = f.rejectOrder(c, true)
	default:
		return c.Respond(&tele.CallbackResponse{Text: msgUnknownAction})
	}
	if err != nil {
		return err
	}
	return c.Respond()
}

func (f *Flow) submitOrder(c tele.Context, edit bool) error {
	ctx := tghelpers.WithHandler(c, "flow.submit_order")
	userID := c.Sender().ID

	draft, ok := f.draft(c)
	if !ok {
		return f.abortDialogue(c)
	}
	f.sessions.Clear(userID)

	orderID, err := f.ledger.Create(ctx, userID, displayName(c.Sender()), *draft)
	if err != nil {
		logger.Error(ctx, "flow", "order.create",
			slog.Int64("user_id", userID),
			slog.String("err", err.Error()),
		)
		return f.reply(c, edit, msgOrderFailed, customerMenu())
	}

	logger.Info(ctx, "flow", "order.created",
		slog.Int64("user_id", userID),
		slog.Int64("order_id", orderID),
		slog.String("cake", draft.Cake.Name),
	)

	if f.notify != nil {
		f.notify.NewOrder(ctx, f.roles.Operators(), orderID, userID, displayName(c.Sender()),
			*draft, time.Now().Format(domain.DateLayout))
	}

	text := fmt.Sprintf("Спасибо! Заказ №%d оформлен.\nОжидается подтверждение администратора.", orderID)
	return f.reply(c, edit, text, customerMenu())
}

func (f *Flow) rejectOrder(c tele.Context, edit bool) error {
	f.sessions.Clear(c.Sender().ID)
	return f.reply(c, edit, msgOrderCancelled, customerMenu())
}

// reply edits the inline-button message in place when the answer came
// through a callback, and sends a fresh message otherwise.
func (f *Flow) reply(c tele.Context, edit bool, text string, markup *tele.ReplyMarkup) error {
	if edit {
		if err := tghelpers.EditOrSendHTML(c, text); err != nil {
			return err
		}
		return tghelpers.SendText(c, msgBackToCustomerMenu, markup)
	}
	return tghelpers.SendText(c, text, markup)
}

// orderStatus shows the first page of the customer's own orders.
func (f *Flow) orderStatus(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "flow.order_status")
	return f.renderOwnOrders(ctx, c, 0, false)
}

// ordersPage handles the prev/next inline buttons of the customer list.
func (f *Flow) ordersPage(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "flow.orders_page")

	page, err := callbacks.PayloadInt(c)
	if err != nil || page < 0 {
		return c.Respond(&tele.CallbackResponse{Text: msgBadPageNumber})
	}
	if err := f.renderOwnOrders(ctx, c, page, true); err != nil {
		return err
	}
	return c.Respond()
}

func (f *Flow) renderOwnOrders(ctx context.Context, c tele.Context, page int, edit bool) error {
	userID := c.Sender().ID

	orders := ledger.SortByDateDesc(f.ledger.ListByCustomer(ctx, userID))
	if len(orders) == 0 {
		if edit {
			return tghelpers.EditOrSendHTML(c, msgNoOwnOrders)
		}
		return tghelpers.SendText(c, msgNoOwnOrders, customerMenu())
	}

	pages := pager.Count(len(orders), f.pageSize)
	if page >= pages {
		page = pages - 1
	}

	rendered := pager.Render(orders, page, f.pageSize, msgOwnOrdersHeader, pager.CustomerBlock)
	markup := pageMarkup(rendered)

	if edit {
		return tghelpers.EditOrSendHTML(c, rendered.Text, markup)
	}
	return tghelpers.SendHTML(c, rendered.Text, markup)
}

func pageMarkup(p pager.Page) *tele.ReplyMarkup {
	var buttons []keyboard.InlineBtn
	if p.HasPrev {
		buttons = append(buttons, keyboard.InlineBtn{
			Text: btnPrevPage, Unique: cbOrdersPage, Data: strconv.Itoa(p.Index - 1),
		})
	}
	if p.HasNext {
		buttons = append(buttons, keyboard.InlineBtn{
			Text: btnNextPage, Unique: cbOrdersPage, Data: strconv.Itoa(p.Index + 1),
		})
	}
	if len(buttons) == 0 {
		return nil
	}
	return keyboard.InlineRow(buttons...)
}

// draft pulls the order in progress from session temp data.
func (f *Flow) draft(c tele.Context) (*domain.Draft, bool) {
	v, ok := f.sessions.GetTemp(c.Sender().ID, draftKey)
	if !ok {
		return nil, false
	}
	draft, ok := v.(*domain.Draft)
	return draft, ok
}

// abortDialogue handles a session that lost its draft mid-dialogue
// (eviction by the idle sweeper, most likely).
func (f *Flow) abortDialogue(c tele.Context) error {
	f.sessions.Clear(c.Sender().ID)
	return tghelpers.SendText(c, msgOrderFailed, customerMenu())
}
