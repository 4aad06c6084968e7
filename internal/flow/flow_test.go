package flow

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/guggenheimg/cakebot/core/telegram/state"
	"github.com/guggenheimg/cakebot/internal/catalog"
	"github.com/guggenheimg/cakebot/internal/domain"
	"github.com/guggenheimg/cakebot/internal/ledger"
	"github.com/guggenheimg/cakebot/internal/notify"
	"github.com/guggenheimg/cakebot/internal/roles"
	"github.com/guggenheimg/cakebot/internal/sheet"
)

const (
	customerID = int64(100)
	operatorID = int64(900)
)

type fixture struct {
	flow     *Flow
	sessions state.Manager
	orders   *sheet.Memory
	cakes    *sheet.Memory
	outbound *fakeSender
}

func newFixture() *fixture {
	cakes := sheet.NewMemory(catalog.Columns...)
	orders := sheet.NewMemory(ledger.Columns...)
	sessions := state.NewMemoryManager()
	outbound := &fakeSender{}

	f := New(Options{
		Sessions:         sessions,
		Roles:            roles.NewResolver([]int64{operatorID}),
		Catalog:          catalog.New(cakes),
		Ledger:           ledger.New(orders),
		Notify:           notify.New(outbound),
		PageSize:         1,
		OperatorPageSize: 2,
	})

	return &fixture{flow: f, sessions: sessions, orders: orders, cakes: cakes, outbound: outbound}
}

func (fx *fixture) seedCake(name, price string) {
	fx.cakes.Seed(name, price, "описание", "")
}

func (fx *fixture) seedOrder(id, userID, status, date string) {
	fx.orders.Seed(id, userID, "alice", "Наполеон", "1500", "ваниль", "4", "ягоды", status, date)
}

// say delivers a plain-text update from the user and returns the
// context for inspecting replies.
func (fx *fixture) say(t *testing.T, userID int64, text string) *fakeContext {
	t.Helper()
	c := &fakeContext{user: &tele.User{ID: userID, Username: "alice"}, text: text}
	require.NoError(t, fx.flow.onText(c))
	return c
}

// press delivers an inline-button press.
func (fx *fixture) press(t *testing.T, userID int64, unique, data string) *fakeContext {
	t.Helper()
	c := &fakeContext{
		user: &tele.User{ID: userID, Username: "alice"},
		cb:   &tele.Callback{Unique: unique, Data: data},
	}
	require.NoError(t, fx.flow.onCallback(c))
	return c
}

func (fx *fixture) startOrder(t *testing.T) {
	t.Helper()
	fx.say(t, customerID, btnMakeOrder)
	fx.say(t, customerID, "Наполеон")
	fx.say(t, customerID, "ваниль")
	fx.say(t, customerID, "4")
	fx.say(t, customerID, "ягоды")
}

func TestOrderHappyPath(t *testing.T) {
	fx := newFixture()
	fx.seedCake("Наполеон", "1500")

	c := fx.say(t, customerID, btnMakeOrder)
	assert.Equal(t, stateChoosingCake, fx.sessions.GetState(customerID))
	assert.Contains(t, c.allText(), msgAskCakeName)
	assert.Contains(t, c.allText(), "Наполеон")

	c = fx.say(t, customerID, "Наполеон")
	assert.Equal(t, stateChoosingTaste, fx.sessions.GetState(customerID))
	assert.Contains(t, c.allText(), msgAskTaste)

	fx.say(t, customerID, "ваниль")
	assert.Equal(t, stateChoosingSize, fx.sessions.GetState(customerID))

	fx.say(t, customerID, "4")
	assert.Equal(t, stateChoosingDecor, fx.sessions.GetState(customerID))

	c = fx.say(t, customerID, "ягоды")
	assert.Equal(t, stateConfirming, fx.sessions.GetState(customerID))
	assert.Contains(t, c.allText(), "Подтверждаете?")

	c = fx.say(t, customerID, "Да")
	assert.Contains(t, c.allText(), "Заказ №1 оформлен")
	assert.False(t, fx.sessions.InProgress(customerID))

	records, err := fx.orders.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1", records[0]["OrderID"])
	assert.Equal(t, "100", records[0]["user_id"])
	assert.Equal(t, "1500", records[0]["price"])
	assert.Equal(t, domain.StatusPending, records[0]["status"])

	// the operator hears about the new order
	require.Len(t, fx.outbound.sent, 1)
	assert.Equal(t, "900", fx.outbound.sent[0].to)
	assert.Contains(t, fx.outbound.sent[0].text, "Новый заказ")
}

func TestUnknownCakeReprompts(t *testing.T) {
	fx := newFixture()
	fx.seedCake("Наполеон", "1500")
	fx.say(t, customerID, btnMakeOrder)

	c := fx.say(t, customerID, "Тирамису")
	assert.Contains(t, c.allText(), msgUnknownCake)
	assert.Equal(t, stateChoosingCake, fx.sessions.GetState(customerID))
}

func TestSizeMustBePositiveNumber(t *testing.T) {
	fx := newFixture()
	fx.seedCake("Наполеон", "1500")
	fx.say(t, customerID, btnMakeOrder)
	fx.say(t, customerID, "Наполеон")
	fx.say(t, customerID, "ваниль")

	for _, bad := range []string{"abc", "0", "-3"} {
		c := fx.say(t, customerID, bad)
		assert.Contains(t, c.allText(), msgSizeNotNumber)
		assert.Equal(t, stateChoosingSize, fx.sessions.GetState(customerID))
	}

	fx.say(t, customerID, "4")
	assert.Equal(t, stateChoosingDecor, fx.sessions.GetState(customerID))
}

func TestCancelAbortsDialogueFromAnyStep(t *testing.T) {
	fx := newFixture()
	fx.seedCake("Наполеон", "1500")

	steps := [][]string{
		{btnMakeOrder},
		{btnMakeOrder, "Наполеон"},
		{btnMakeOrder, "Наполеон", "ваниль"},
		{btnMakeOrder, "Наполеон", "ваниль", "4"},
		{btnMakeOrder, "Наполеон", "ваниль", "4", "ягоды"},
	}
	for _, inputs := range steps {
		for _, in := range inputs {
			fx.say(t, customerID, in)
		}
		c := fx.say(t, customerID, btnCancel)
		assert.Contains(t, c.allText(), msgBackToCustomerMenu)
		assert.False(t, fx.sessions.InProgress(customerID))
	}

	records, err := fx.orders.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records, "cancelled dialogues must not write orders")
}

func TestConfirmViaCallback(t *testing.T) {
	fx := newFixture()
	fx.seedCake("Наполеон", "1500")
	fx.startOrder(t)

	c := fx.press(t, customerID, cbConfirmOrder, "yes")
	assert.Contains(t, c.allEdits(), "Заказ №1 оформлен")
	assert.Contains(t, c.allText(), msgBackToCustomerMenu)
	assert.NotEmpty(t, c.responses, "callback must be acknowledged")
	assert.False(t, fx.sessions.InProgress(customerID))
}

func TestRejectViaCallback(t *testing.T) {
	fx := newFixture()
	fx.seedCake("Наполеон", "1500")
	fx.startOrder(t)

	c := fx.press(t, customerID, cbConfirmOrder, "no")
	assert.Contains(t, c.allEdits(), msgOrderCancelled)
	assert.False(t, fx.sessions.InProgress(customerID))

	records, err := fx.orders.Records(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestConfirmCallbackOutsideDialogueIsRejected(t *testing.T) {
	fx := newFixture()

	c := fx.press(t, customerID, cbConfirmOrder, "yes")
	require.NotEmpty(t, c.responses)
	assert.Equal(t, msgUnknownAction, c.responses[0].Text)
}

func TestTypedConfirmationNeedsYesOrNo(t *testing.T) {
	fx := newFixture()
	fx.seedCake("Наполеон", "1500")
	fx.startOrder(t)

	c := fx.say(t, customerID, "возможно")
	assert.Contains(t, c.allText(), msgConfirmHint)
	assert.Equal(t, stateConfirming, fx.sessions.GetState(customerID))

	c = fx.say(t, customerID, "НЕТ")
	assert.Contains(t, c.allText(), msgOrderCancelled)
}

func TestEmptyCatalogStopsOrdering(t *testing.T) {
	fx := newFixture()

	c := fx.say(t, customerID, btnMakeOrder)
	assert.Contains(t, c.allText(), msgCatalogEmpty)
	assert.False(t, fx.sessions.InProgress(customerID))
}

func TestOperatorCannotUseCustomerTrack(t *testing.T) {
	fx := newFixture()
	fx.seedCake("Наполеон", "1500")

	c := fx.say(t, operatorID, btnMakeOrder)
	assert.Contains(t, c.allText(), msgOperatorDenied)
	assert.False(t, fx.sessions.InProgress(operatorID))
}

func TestCustomerCannotUseOperatorTrack(t *testing.T) {
	fx := newFixture()

	c := fx.say(t, customerID, btnViewOrders)
	assert.Contains(t, c.allText(), msgCustomerDenied)

	c = fx.say(t, customerID, btnUpdateStatus)
	assert.Contains(t, c.allText(), msgCustomerDenied)
	assert.False(t, fx.sessions.InProgress(customerID))
}

func TestOwnOrdersPagination(t *testing.T) {
	fx := newFixture()
	fx.seedOrder("1", "100", domain.StatusPending, "2025-01-01 10:00:00")
	fx.seedOrder("2", "100", domain.StatusPending, "2025-02-01 10:00:00")
	fx.seedOrder("3", "200", domain.StatusPending, "2025-03-01 10:00:00")

	c := fx.say(t, customerID, btnOrderStatus)
	// newest own order first, one per page; the other customer's order
	// never shows
	assert.Contains(t, c.allText(), "№ 2")
	assert.NotContains(t, c.allText(), "№ 3")

	c = fx.press(t, customerID, cbOrdersPage, "1")
	assert.Contains(t, c.allEdits(), "№ 1")
	assert.NotEmpty(t, c.responses)
}

func TestOwnOrdersEmpty(t *testing.T) {
	fx := newFixture()

	c := fx.say(t, customerID, btnOrderStatus)
	assert.Contains(t, c.allText(), msgNoOwnOrders)
}

func TestOrdersPageRejectsBadPayload(t *testing.T) {
	fx := newFixture()
	fx.seedOrder("1", "100", domain.StatusPending, "2025-01-01 10:00:00")

	c := fx.press(t, customerID, cbOrdersPage, "banana")
	require.NotEmpty(t, c.responses)
	assert.Equal(t, msgBadPageNumber, c.responses[0].Text)
}

func TestViewOrdersSkipsDelivered(t *testing.T) {
	fx := newFixture()
	fx.seedOrder("1", "100", domain.StatusPending, "2025-01-01 10:00:00")
	fx.seedOrder("2", "200", domain.StatusDelivered, "2025-02-01 10:00:00")
	fx.seedOrder("3", "300", domain.StatusPending, "2025-03-01 10:00:00")
	fx.seedOrder("4", "400", domain.StatusPending, "2025-04-01 10:00:00")

	c := fx.say(t, operatorID, btnViewOrders)

	// three pending orders, chunked two per message
	require.Len(t, c.sends, 2)
	assert.NotContains(t, c.allText(), "№ 2")
	assert.Contains(t, c.allText(), "№ 4")
	// newest first
	assert.Less(t, strings.Index(c.allText(), "№ 4"), strings.Index(c.allText(), "№ 1"))
}

func TestViewOrdersEmptyStates(t *testing.T) {
	fx := newFixture()

	c := fx.say(t, operatorID, btnViewOrders)
	assert.Contains(t, c.allText(), msgNoOrders)

	fx.seedOrder("1", "100", domain.StatusDelivered, "2025-01-01 10:00:00")
	c = fx.say(t, operatorID, btnViewOrders)
	assert.Contains(t, c.allText(), msgNoPendingOrders)
}

func TestStatusUpdateHappyPath(t *testing.T) {
	fx := newFixture()
	fx.seedOrder("1", "100", domain.StatusPending, "2025-01-01 10:00:00")

	fx.say(t, operatorID, btnUpdateStatus)
	assert.Equal(t, stateUpdatingStatus, fx.sessions.GetState(operatorID))

	c := fx.say(t, operatorID, "1 Доставлен")
	assert.Contains(t, c.allText(), "Статус заказа №1 обновлён")
	assert.False(t, fx.sessions.InProgress(operatorID))

	records, err := fx.orders.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, records[0]["status"])

	require.Len(t, fx.outbound.sent, 1)
	assert.Equal(t, "100", fx.outbound.sent[0].to)
	assert.Contains(t, fx.outbound.sent[0].text, domain.StatusDelivered)
}

func TestStatusUpdateValidationKeepsDialogueOpen(t *testing.T) {
	fx := newFixture()
	fx.seedOrder("1", "100", domain.StatusPending, "2025-01-01 10:00:00")
	fx.say(t, operatorID, btnUpdateStatus)

	c := fx.say(t, operatorID, "1")
	assert.Contains(t, c.allText(), msgBadUpdateFormat)
	assert.Equal(t, stateUpdatingStatus, fx.sessions.GetState(operatorID))

	c = fx.say(t, operatorID, "abc Доставлен")
	assert.Contains(t, c.allText(), msgOrderIDNotNumber)
	assert.Equal(t, stateUpdatingStatus, fx.sessions.GetState(operatorID))

	c = fx.say(t, operatorID, "1 Доставлен")
	assert.Contains(t, c.allText(), "обновлён")
	assert.False(t, fx.sessions.InProgress(operatorID))
}

func TestStatusUpdateUnknownOrderClearsDialogue(t *testing.T) {
	fx := newFixture()
	fx.say(t, operatorID, btnUpdateStatus)

	c := fx.say(t, operatorID, "99 Доставлен")
	assert.Contains(t, c.allText(), msgStatusUpdateFailed)
	assert.False(t, fx.sessions.InProgress(operatorID))
}

func TestStatusUpdatePartialWhenCustomerUnreachable(t *testing.T) {
	fx := newFixture()
	fx.seedOrder("1", "100", domain.StatusPending, "2025-01-01 10:00:00")
	fx.outbound.failAll = true
	fx.say(t, operatorID, btnUpdateStatus)

	c := fx.say(t, operatorID, "1 Доставлен")
	assert.Contains(t, c.allText(), "не удалось уведомить")

	records, err := fx.orders.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, records[0]["status"], "the update must stand")
}

func TestUnknownCallbackKeyIsRejected(t *testing.T) {
	fx := newFixture()

	c := fx.press(t, customerID, "mystery", "1")
	require.NotEmpty(t, c.responses)
	assert.Equal(t, msgUnknownAction, c.responses[0].Text)
}

// fakeContext implements the slice of tele.Context the flow touches.
type fakeContext struct {
	tele.Context
	user *tele.User
	text string
	cb   *tele.Callback

	kv        map[string]interface{}
	sends     []interface{}
	edits     []interface{}
	responses []*tele.CallbackResponse
}

func (f *fakeContext) Sender() *tele.User      { return f.user }
func (f *fakeContext) Chat() *tele.Chat        { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Text() string            { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.cb }
func (f *fakeContext) Update() tele.Update      { return tele.Update{} }

func (f *fakeContext) Get(key string) interface{} { return f.kv[key] }
func (f *fakeContext) Set(key string, value interface{}) {
	if f.kv == nil {
		f.kv = make(map[string]interface{})
	}
	f.kv[key] = value
}

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.sends = append(f.sends, what)
	return nil
}

func (f *fakeContext) EditOrSend(what interface{}, opts ...interface{}) error {
	f.edits = append(f.edits, what)
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	if len(resp) == 0 {
		resp = []*tele.CallbackResponse{{}}
	}
	f.responses = append(f.responses, resp...)
	return nil
}

func (f *fakeContext) allText() string  { return joinPayloads(f.sends) }
func (f *fakeContext) allEdits() string { return joinPayloads(f.edits) }

func joinPayloads(items []interface{}) string {
	var b strings.Builder
	for _, item := range items {
		switch v := item.(type) {
		case string:
			b.WriteString(v)
		case *tele.Photo:
			b.WriteString(v.Caption)
		default:
			fmt.Fprint(&b, v)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// fakeSender captures notifications sent past the bot transport.
type fakeSender struct {
	sent    []outboundMessage
	failAll bool
}

type outboundMessage struct {
	to   string
	text string
}

func (f *fakeSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if f.failAll {
		return nil, fmt.Errorf("unreachable")
	}
	f.sent = append(f.sent, outboundMessage{to: to.Recipient(), text: fmt.Sprint(what)})
	return &tele.Message{}, nil
}
