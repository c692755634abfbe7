// Файл: internal/utils/formatters.go

package utils

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// FormatMoney форматирует денежную сумму для отображения: два знака
// после запятой и символ доллара (клиенты компании в США).
func FormatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// FormatDateForDisplay форматирует дату "YYYY-MM-DD" в "02 Jan 2006".
// Нераспознанная строка возвращается как есть: отчет с сырой датой
// полезнее отчета с пустой ячейкой.
func FormatDateForDisplay(dateStr string) string {
	if dateStr == "" {
		return "не указана"
	}
	parsed, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		log.Printf("FormatDateForDisplay: не удалось распарсить дату '%s': %v", dateStr, err)
		return dateStr
	}
	return parsed.Format("02 Jan 2006")
}

// Int64SliceToStringSlice преобразует слайс int64 в слайс string.
func Int64SliceToStringSlice(int64Slice []int64) []string {
	stringSlice := make([]string, len(int64Slice))
	for i, v := range int64Slice {
		stringSlice[i] = strconv.FormatInt(v, 10)
	}
	return stringSlice
}

// GenerateUUID возвращает новый UUID в строковом виде.
func GenerateUUID() string {
	return uuid.New().String()
}

// ParseID разбирает строковый идентификатор из URL. Ноль и
// отрицательные значения считаются некорректными.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("некорректный идентификатор: %q", raw)
	}
	return id, nil
}
