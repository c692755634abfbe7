// Package notify отправляет уведомления бухгалтерии в Telegram о
// финансовых событиях (оплата счета, частичное распределение комиссий).
// Уведомления вспомогательные: их отказ никогда не ломает основную
// операцию.
package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"

	"ArborCRM/internal/payroll"
	"ArborCRM/internal/utils"
)

// Notifier шлет сообщения в чат бухгалтерии. Нулевой указатель
// безопасен: все методы на nil-получателе молча выходят, так что
// уведомления выключаются простым отсутствием токена.
type Notifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier подключается к Telegram Bot API. Пустой токен или
// нулевой chatID отключают уведомления (возвращается nil, это не ошибка).
func NewNotifier(token string, chatID int64) *Notifier {
	if token == "" || chatID == 0 {
		log.Println("notify: токен или чат бухгалтерии не заданы, уведомления отключены.")
		return nil
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("notify: ошибка подключения к Telegram API: %v. Уведомления отключены.", err)
		return nil
	}

	log.Printf("notify: уведомления бухгалтерии включены (бот @%s).", api.Self.UserName)
	return &Notifier{api: api, chatID: chatID}
}

func (n *Notifier) send(text string) {
	if n == nil || n.api == nil {
		return
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.api.Send(msg); err != nil {
		log.Printf("notify: ошибка отправки уведомления: %v", err)
	}
}

// PaymentRecorded уведомляет об успешно проведенной оплате.
func (n *Notifier) PaymentRecorded(res *payroll.Result) {
	if n == nil {
		return
	}
	text := fmt.Sprintf(
		"✅ <b>Оплата по работе #%d</b>\nСчет #%d отмечен оплаченным.\nКомиссий начислено: %d по %s.",
		res.JobID, res.InvoiceID, len(res.Credited), utils.FormatMoney(res.CommissionPerTech),
	)
	n.send(text)
}

// PartialDistribution уведомляет о частично проведенном распределении:
// бухгалтерии нужно знать, что счет завис в неоплаченном состоянии.
func (n *Notifier) PartialDistribution(res *payroll.Result) {
	if n == nil {
		return
	}
	text := fmt.Sprintf(
		"⚠️ <b>Частичное распределение по работе #%d</b>\nНачислено: %d, отказов: %d. Счет #%d НЕ отмечен оплаченным, требуется повтор.",
		res.JobID, len(res.Credited), len(res.Failed), res.InvoiceID,
	)
	n.send(text)
}
