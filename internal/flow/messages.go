package flow

// Menu button labels. These double as routing keys for plain-text
// updates, the way reply keyboards work.
const (
	btnMakeOrder    = "Сделать заказ"
	btnOrderStatus  = "Статус заказов"
	btnViewOrders   = "Просмотреть заказы"
	btnUpdateStatus = "Обновить статус заказа"
	btnCancel       = "Отмена"

	btnPrevPage = "Назад"
	btnNextPage = "Вперёд"
)

const (
	msgGreetingCustomer = "Привет! Я бот для оформления заказов на торты."
	msgGreetingOperator = "Привет, Администратор!"

	msgBackToCustomerMenu = "Возврат в пользовательское меню."
	msgBackToOperatorMenu = "Возврат в админ-меню."

	msgOperatorDenied = "Администратор не может использовать этот функционал."
	msgCustomerDenied = "У вас нет доступа к этому функционалу."

	msgCatalogEmpty  = "Каталог тортов пока пуст."
	msgAskCakeName   = "Введите название торта:"
	msgUnknownCake   = "Такого торта нет в каталоге. Попробуйте ещё раз или нажмите Отмена."
	msgAskTaste      = "Какой вкус вы предпочитаете?"
	msgAskSize       = "На сколько персон?"
	msgSizeNotNumber = "Пожалуйста, введите число или нажмите Отмена."
	msgAskDecor      = "Какой декор? (например: ягоды, фигурки...)"
	msgConfirmHint   = "Отправьте «Да» для подтверждения или «Нет» для отмены."

	msgOrderCancelled = "Заказ отменён."
	msgOrderFailed    = "Произошла ошибка при оформлении заказа."

	msgNoOwnOrders     = "У вас ещё нет заказов."
	msgOwnOrdersHeader = "<b>Ваши заказы:</b>"
	msgBadPageNumber   = "Неверный номер страницы."

	msgNoOrders        = "Нет доступных заказов."
	msgNoPendingOrders = "Нет заказов, ожидающих подтверждения."
	msgAllOrdersHeader = "<b>Заказы:</b>"

	msgAskStatusUpdate    = "Введите OrderID и новый статус через пробел.\nНапример: `1 Доставлен`"
	msgBadUpdateFormat    = "Неверный формат. Введите OrderID и новый статус через пробел.\nНапример: `1 Доставлен`"
	msgOrderIDNotNumber   = "OrderID должен быть числом."
	msgStatusUpdateFailed = "Не удалось обновить статус. Проверьте OrderID."

	msgUnknownAction = "Неизвестное действие."
)
