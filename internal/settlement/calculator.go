// Package settlement считает производную финансовую картину работы:
// подытог, налог, итог по счету и чистую прибыль. Никакого I/O —
// только арифметика над уже загруженными данными; результат нигде
// не сохраняется и каждый раз считается заново.
package settlement

import (
	"strings"

	"ArborCRM/internal/constants"
	"ArborCRM/internal/models"
)

// Breakdown - расчет по одной работе.
type Breakdown struct {
	BasePrice             float64 `json:"base_price"`
	BillableExpensesTotal float64 `json:"billable_expenses_total"`
	InternalExpensesTotal float64 `json:"internal_expenses_total"`
	Subtotal              float64 `json:"subtotal"`
	TaxRatePercent        float64 `json:"tax_rate_percent"`
	TaxAmount             float64 `json:"tax_amount"`
	GrandTotal            float64 `json:"grand_total"`
	NetProfit             float64 `json:"net_profit"`
}

// IsBillableCategory сообщает, перевыставляется ли категория расхода
// клиенту. Закрытый allowlist (materials, rental), регистр не важен;
// любая новая категория по умолчанию внутренняя.
func IsBillableCategory(category string) bool {
	return constants.BillableExpenseCategories[strings.ToLower(strings.TrimSpace(category))]
}

// Calculate строит расчет по работе. taxRatePercent - голый процент
// (8.5 означает 8.5%), значение не клампится: что пришло из настроек,
// с тем и считаем.
//
// Битая цена работы и битые суммы расходов уже превращены в 0 на
// уровне разбора (models.FlexFloat): один кривой столбец не должен
// ронять весь экран.
func Calculate(job *models.Job, taxRatePercent float64) Breakdown {
	b := Breakdown{
		BasePrice:      job.Price.Value(),
		TaxRatePercent: taxRatePercent,
	}

	for _, exp := range job.Expenses {
		if IsBillableCategory(exp.Category) {
			b.BillableExpensesTotal += exp.Amount.Value()
		} else {
			b.InternalExpensesTotal += exp.Amount.Value()
		}
	}

	b.Subtotal = b.BasePrice + b.BillableExpensesTotal
	b.TaxAmount = b.Subtotal * (taxRatePercent / 100)
	b.GrandTotal = b.Subtotal + b.TaxAmount

	// ВАЖНО: не упрощать до BasePrice - InternalExpensesTotal.
	// Алгебраически это то же самое (налог и перевыставляемые расходы
	// сокращаются), но полная формула оставляет видимым само допущение
	// о транзитности. Тесты проверяют, что тождество выполняется.
	b.NetProfit = (b.GrandTotal - b.TaxAmount) - (b.BillableExpensesTotal + b.InternalExpensesTotal)

	return b
}
