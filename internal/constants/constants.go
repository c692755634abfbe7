package constants

// User Roles
// Роли пользователей (закрытый набор, новые роли добавляются только сюда)
const (
	ROLE_SUPER_ADMIN = "super_admin"
	ROLE_EMPLOYEE    = "employee"
	ROLE_TECHNICIAN  = "technician"
)

// Job Statuses
// Статусы заявок. Жизненный цикл строго монотонный:
// pending -> active -> completed -> paid. Откатов назад нет.
const (
	STATUS_PENDING   = "pending"
	STATUS_ACTIVE    = "active"
	STATUS_COMPLETED = "completed"
	STATUS_PAID      = "paid"
)

// JobStatusRank задает порядок статусов для проверки монотонности.
// Неизвестный статус в карте отсутствует — это признак ошибки данных.
// JobStatusRank defines status ordering for the monotonic-advance check.
var JobStatusRank = map[string]int{
	STATUS_PENDING:   0,
	STATUS_ACTIVE:    1,
	STATUS_COMPLETED: 2,
	STATUS_PAID:      3,
}

// Invoice Statuses
// Статусы счетов. Переход unpaid -> paid происходит ровно один раз.
const (
	INVOICE_STATUS_UNPAID  = "unpaid"
	INVOICE_STATUS_PENDING = "pending" // Бэкенд исторически отдает и "pending" как синоним неоплаченного
	INVOICE_STATUS_PAID    = "paid"
)

// Expense Categories
// Категории расходов. Перевыставляемые клиенту категории — закрытый
// allowlist из двух значений; все остальные считаются внутренними
// (поглощаются прибылью). Сравнение регистронезависимое.
const (
	EXPENSE_CAT_MATERIALS = "materials"
	EXPENSE_CAT_RENTAL    = "rental"
)

// BillableExpenseCategories — allowlist категорий, которые
// перевыставляются клиенту в счете.
var BillableExpenseCategories = map[string]bool{
	EXPENSE_CAT_MATERIALS: true,
	EXPENSE_CAT_RENTAL:    true,
}

// Earning Types
// Типы начислений сотрудникам
const (
	EARNING_TYPE_JOB_COMMISSION = "Job Commission"
)

// Routing
// Маршруты SPA, которые резолвит селектор представлений.
const (
	PATH_ROOT      = "/"
	PATH_LOGIN     = "/login"
	PATH_QUOTE     = "/quote"
	PATH_DASHBOARD = "/dashboard"
)

// PublicPaths — маршруты, доступные без аутентификации.
var PublicPaths = map[string]bool{
	PATH_LOGIN: true,
	PATH_QUOTE: true,
}

// AdminOnlyPaths — маршруты, доступные только super_admin.
// Любая другая роль молча перенаправляется на /dashboard (так задумано:
// не страница ошибки, а «тихое понижение» до общего дашборда).
var AdminOnlyPaths = map[string]bool{
	"/users":           true,
	"/analytics":       true,
	"/leads":           true,
	"/offers":          true,
	"/invoices":        true,
	"/settings":        true,
	"/content-manager": true,
	"/testimonials":    true,
	"/expenses":        true,
}

// SharedProtectedPaths — маршруты, доступные любой аутентифицированной роли.
var SharedProtectedPaths = map[string]bool{
	PATH_DASHBOARD: true,
	"/earnings":    true,
	"/jobs":        true,
}

// General Text Messages
// Общие текстовые сообщения API
const (
	AccessDeniedMessage = "Forbidden: insufficient permissions"
)

// Audit Event Types
// Типы событий для локального журнала аудита
const (
	EVENT_SETTLEMENT_VIEWED    = "job.settlement_viewed"
	EVENT_STATUS_ADVANCED      = "job.status_advanced"
	EVENT_CREW_TOGGLED         = "job.crew_toggled"
	EVENT_PAYMENT_RECORDED     = "invoice.payment_recorded"
	EVENT_PAYMENT_DUPLICATE    = "invoice.payment_duplicate"
	EVENT_DISTRIBUTION_PARTIAL = "payroll.distribution_partial"
	EVENT_EARNINGS_EXPORTED    = "earnings.exported"
)

// Status display names for the SPA
// Отображаемые названия статусов (клиентская часть на английском)
var StatusDisplayMap = map[string]string{
	STATUS_PENDING:   "Pending",
	STATUS_ACTIVE:    "Active",
	STATUS_COMPLETED: "Completed",
	STATUS_PAID:      "Paid",
}

var RoleDisplayMap = map[string]string{
	ROLE_SUPER_ADMIN: "Administrator",
	ROLE_EMPLOYEE:    "Employee",
	ROLE_TECHNICIAN:  "Technician",
}

// Pagination
// Пагинация
const (
	EarningsPerPage = 25
)

// IsInvoicePaid проверяет, считается ли статус счета оплаченным.
func IsInvoicePaid(status string) bool {
	return status == INVOICE_STATUS_PAID
}

// IsInvoiceUnpaid проверяет оба исторических варианта неоплаченного статуса.
func IsInvoiceUnpaid(status string) bool {
	return status == INVOICE_STATUS_UNPAID || status == INVOICE_STATUS_PENDING
}
