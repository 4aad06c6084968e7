// Package flow holds the conversational engine of the bot: per-chat
// menus, the multi-step order dialogue and the operator track. Every
// stateful exchange goes through state.Manager; handlers themselves stay
// stateless and pull the draft from session temp data.
package flow

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/guggenheimg/cakebot/core/logger"
	"github.com/guggenheimg/cakebot/core/telegram"
	"github.com/guggenheimg/cakebot/core/telegram/callbacks"
	tghelpers "github.com/guggenheimg/cakebot/core/telegram/helpers"
	"github.com/guggenheimg/cakebot/core/telegram/keyboard"
	"github.com/guggenheimg/cakebot/core/telegram/middleware"
	"github.com/guggenheimg/cakebot/core/telegram/state"
	"github.com/guggenheimg/cakebot/internal/catalog"
	"github.com/guggenheimg/cakebot/internal/ledger"
	"github.com/guggenheimg/cakebot/internal/notify"
	"github.com/guggenheimg/cakebot/internal/roles"
)

// Dialogue states. The prefix groups states by track so logs stay
// greppable.
const (
	stateChoosingCake  state.State = "order.choosing_cake"
	stateChoosingTaste state.State = "order.choosing_taste"
	stateChoosingSize  state.State = "order.choosing_size"
	stateChoosingDecor state.State = "order.choosing_decor"
	stateConfirming    state.State = "order.confirming"

	stateUpdatingStatus state.State = "status.updating"
)

// Callback uniques.
const (
	cbConfirmOrder = "confirm_order"
	cbOrdersPage   = "orders_page"
)

const draftKey = "order_draft"

// Flow wires the domain services into telegram handlers.
type Flow struct {
	sessions state.Manager
	roles    *roles.Resolver
	catalog  *catalog.Service
	ledger   *ledger.Ledger
	notify   *notify.Dispatcher

	pageSize         int
	operatorPageSize int
}

// Options carries everything Flow needs; all fields are required
// except the page sizes, which fall back to sane defaults.
type Options struct {
	Sessions state.Manager
	Roles    *roles.Resolver
	Catalog  *catalog.Service
	Ledger   *ledger.Ledger
	Notify   *notify.Dispatcher

	PageSize         int
	OperatorPageSize int
}

// New builds the flow and registers its state handlers on the session
// manager.
func New(opts Options) *Flow {
	f := &Flow{
		sessions:         opts.Sessions,
		roles:            opts.Roles,
		catalog:          opts.Catalog,
		ledger:           opts.Ledger,
		notify:           opts.Notify,
		pageSize:         opts.PageSize,
		operatorPageSize: opts.OperatorPageSize,
	}
	if f.pageSize <= 0 {
		f.pageSize = 1
	}
	if f.operatorPageSize <= 0 {
		f.operatorPageSize = 10
	}

	customer := f.gateCustomer
	operator := f.gateOperator

	f.sessions.Register(stateChoosingCake, customer(f.onCakeName))
	f.sessions.Register(stateChoosingTaste, customer(f.onTaste))
	f.sessions.Register(stateChoosingSize, customer(f.onSize))
	f.sessions.Register(stateChoosingDecor, customer(f.onDecor))
	f.sessions.Register(stateConfirming, customer(f.onConfirmText))

	f.sessions.Register(stateUpdatingStatus, operator(f.onStatusUpdateInput))

	return f
}

// SetNotifier wires the outbound notifier once the transport exists.
// Until then order submission and status updates simply skip the
// notification step.
func (f *Flow) SetNotifier(n *notify.Dispatcher) {
	f.notify = n
}

// Routes returns the endpoint bindings for telegram.Run.
func (f *Flow) Routes() []telegram.Route {
	return []telegram.Route{
		{Endpoint: "/start", Handler: f.Start},
		{Endpoint: tele.OnText, Handler: f.onText},
		{Endpoint: tele.OnCallback, Handler: f.onCallback},
	}
}

func (f *Flow) gateCustomer(next tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RequireRole(func(id int64) bool {
		return !f.roles.IsOperator(id)
	}, msgOperatorDenied)(next)
}

func (f *Flow) gateOperator(next tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RequireRole(f.roles.IsOperator, msgCustomerDenied)(next)
}

// Start greets the sender with the menu for their role and drops any
// dialogue in progress.
func (f *Flow) Start(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "flow.start")
	f.sessions.Clear(c.Sender().ID)

	if f.roles.IsOperator(c.Sender().ID) {
		logger.Debug(ctx, "flow", "start.operator", slog.Int64("user_id", c.Sender().ID))
		return tghelpers.SendText(c, msgGreetingOperator, operatorMenu())
	}
	logger.Debug(ctx, "flow", "start.customer", slog.Int64("user_id", c.Sender().ID))
	return tghelpers.SendText(c, msgGreetingCustomer, customerMenu())
}

// onText routes plain-text updates: the cancel word wins over
// everything, a dialogue in progress gets the update next, and only
// then do menu buttons match.
func (f *Flow) onText(c tele.Context) error {
	userID := c.Sender().ID

	if c.Text() == btnCancel {
		return f.cancel(c)
	}

	if f.sessions.InProgress(userID) {
		return f.sessions.Dispatch(c)
	}

	switch c.Text() {
	case btnMakeOrder:
		return f.gateCustomer(f.makeOrder)(c)
	case btnOrderStatus:
		return f.gateCustomer(f.orderStatus)(c)
	case btnViewOrders:
		return f.gateOperator(f.viewOrders)(c)
	case btnUpdateStatus:
		return f.gateOperator(f.promptStatusUpdate)(c)
	}

	ctx := tghelpers.WithHandler(c, "flow.text")
	logger.Debug(ctx, "flow", "text.unmatched",
		slog.Int64("user_id", userID),
		slog.String("text", logger.Sanitize(c.Text())),
	)
	return nil
}

// onCallback dispatches inline-button presses by their unique key.
func (f *Flow) onCallback(c tele.Context) error {
	key, _ := callbacks.Parse(c.Callback())
	switch key {
	case cbConfirmOrder:
		return f.gateCustomer(f.onConfirmCallback)(c)
	case cbOrdersPage:
		return f.gateCustomer(f.ordersPage)(c)
	}
	return c.Respond(&tele.CallbackResponse{Text: msgUnknownAction})
}

// cancel aborts whatever the user was doing and returns them to their
// role menu.
func (f *Flow) cancel(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "flow.cancel")
	userID := c.Sender().ID
	f.sessions.Clear(userID)
	logger.Debug(ctx, "flow", "dialogue.cancelled", slog.Int64("user_id", userID))

	if f.roles.IsOperator(userID) {
		return tghelpers.SendText(c, msgBackToOperatorMenu, operatorMenu())
	}
	return tghelpers.SendText(c, msgBackToCustomerMenu, customerMenu())
}

func customerMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnMakeOrder},
		[]string{btnOrderStatus},
		[]string{btnCancel},
	)
}

func operatorMenu() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{btnViewOrders},
		[]string{btnUpdateStatus},
		[]string{btnCancel},
	)
}

func cancelMarkup() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{btnCancel})
}

// displayName mirrors how the order ledger identifies senders: the
// username when present, otherwise the visible name.
func displayName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
