package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// FlexFloat - обертка над float64 для терпимого разбора денежных полей.
// Бэкенд (и исторические данные в нем) отдает суммы то числом, то строкой,
// то null; битое значение не должно ронять весь расчет, поэтому все,
// что не удалось разобрать, становится нулем.
// FlexFloat is a float64 wrapper for tolerant decoding of money fields.
// Anything unparseable decodes to zero instead of failing the whole payload.
type FlexFloat float64

// UnmarshalJSON реализует интерфейс json.Unmarshaler для FlexFloat.
func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" || s == "null" {
		*f = 0
		return nil
	}

	// Сначала пробуем как число
	var num float64
	if err := json.Unmarshal(b, &num); err == nil {
		*f = FlexFloat(num)
		return nil
	}

	// Потом как строку с числом внутри ("199.99")
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		parsed, errParse := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if errParse != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat(parsed)
		return nil
	}

	// Неизвестная форма (объект, массив) — считаем нулем, не ошибкой
	*f = 0
	return nil
}

// MarshalJSON реализует интерфейс json.Marshaler для FlexFloat.
func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

// Value возвращает значение как обычный float64.
func (f FlexFloat) Value() float64 {
	return float64(f)
}
