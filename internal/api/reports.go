// Файл: internal/api/reports.go
package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/skip2/go-qrcode"
	"github.com/xuri/excelize/v2"

	"ArborCRM/internal/audit"
	"ArborCRM/internal/constants"
	"ArborCRM/internal/utils"
)

// maxExportPages ограничивает выгрузку, чтобы один запрос не выкачивал
// бэкенд бесконечно.
const maxExportPages = 200

// ExportEarningsExcel выгружает журнал начислений в Excel-файл.
// Начисления постранично вычитываются с бэкенда до первой пустой страницы.
func (deps *ApiDependencies) ExportEarningsExcel(w http.ResponseWriter, r *http.Request) {
	f := excelize.NewFile()
	sheetName := "Начисления"
	index, _ := f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1") // Удаляем стандартный лист
	f.SetActiveSheet(index)

	headers := []string{"ID Начисления", "ID Техника", "ID Работы", "Тип", "Сумма", "Дата начисления"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	rowIndex := 2
	for page := 1; page <= maxExportPages; page++ {
		earnings, err := deps.Backend.ListEarnings(r.Context(), page)
		if err != nil {
			log.Printf("ExportEarningsExcel: ошибка загрузки страницы %d начислений: %v", page, err)
			writeJSONError(w, backendStatusCode(err), "Не удалось загрузить начисления.")
			return
		}
		if len(earnings) == 0 {
			break
		}

		for _, e := range earnings {
			f.SetCellValue(sheetName, fmt.Sprintf("A%d", rowIndex), e.ID)
			f.SetCellValue(sheetName, fmt.Sprintf("B%d", rowIndex), e.UserID)
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", rowIndex), e.JobID)
			f.SetCellValue(sheetName, fmt.Sprintf("D%d", rowIndex), e.Type)
			f.SetCellValue(sheetName, fmt.Sprintf("E%d", rowIndex), utils.FormatMoney(e.Amount))
			f.SetCellValue(sheetName, fmt.Sprintf("F%d", rowIndex), e.EarnedAt.Format("2006-01-02 15:04"))
			rowIndex++
		}

		if len(earnings) < constants.EarningsPerPage {
			break
		}
	}

	if user, ok := currentUser(r); ok {
		deps.logEvent(audit.NewEvent(
			audit.WithType(constants.EVENT_EARNINGS_EXPORTED),
			audit.WithData(map[string]int{"rows": rowIndex - 2}),
			audit.WithActor(user.ID, user.Role),
		))
	}

	fileName := fmt.Sprintf("earnings_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	if err := f.Write(w); err != nil {
		log.Printf("ExportEarningsExcel: ошибка записи Excel-файла в ответ: %v", err)
	}
}

// InvoiceQR отдает PNG с QR-кодом ссылки на публичную страницу оплаты
// счета — печатается на бумажном счете для клиента.
func (deps *ApiDependencies) InvoiceQR(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := utils.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Некорректный идентификатор счета.")
		return
	}

	if deps.Config.PaymentPageURL == "" {
		writeJSONError(w, http.StatusServiceUnavailable, "Страница оплаты не настроена, QR-код недоступен.")
		return
	}

	link := fmt.Sprintf("%s?invoice=%d", deps.Config.PaymentPageURL, invoiceID)
	// qrcode.Medium - уровень коррекции ошибок, 256 - размер в пикселях.
	qrBytes, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		log.Printf("InvoiceQR: ошибка генерации QR-кода для счета #%d: %v", invoiceID, err)
		writeJSONError(w, http.StatusInternalServerError, "Не удалось сгенерировать QR-код.")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(qrBytes); err != nil {
		log.Printf("InvoiceQR: ошибка записи QR-кода в ответ: %v", err)
	}
}
