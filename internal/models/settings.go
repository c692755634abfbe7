package models

import (
	"encoding/json"
	"log"
)

// Settings - общесистемные настройки, которые читает калькулятор.
// TaxRate хранится как голый процент (8.5 означает 8.5%), без валидации
// диапазона: проверка значений — забота экрана настроек, не наша.
type Settings struct {
	TaxRate  float64           `json:"tax_rate"`
	Branding map[string]string `json:"branding,omitempty"`
}

// settingsKV - элемент для формата «массив пар ключ-значение»,
// который старый бэкенд отдает вместо объекта.
type settingsKV struct {
	Key   string    `json:"key"`
	Value FlexFloat `json:"value"`
}

// UnmarshalJSON принимает обе исторические формы ответа GET /settings:
// либо объект {"tax_rate": 8.5, ...}, либо массив [{"key":"tax_rate","value":8.5}, ...].
// UnmarshalJSON accepts both wire shapes of GET /settings.
func (s *Settings) UnmarshalJSON(b []byte) error {
	// Вариант 1: массив пар
	var pairs []settingsKV
	if err := json.Unmarshal(b, &pairs); err == nil {
		for _, kv := range pairs {
			if kv.Key == "tax_rate" {
				s.TaxRate = kv.Value.Value()
			}
		}
		return nil
	}

	// Вариант 2: обычный объект. Отдельная структура, чтобы не
	// зациклиться на собственном UnmarshalJSON.
	var obj struct {
		TaxRate  FlexFloat         `json:"tax_rate"`
		Branding map[string]string `json:"branding"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		log.Printf("Settings.UnmarshalJSON: не удалось разобрать настройки: %v", err)
		return err
	}
	s.TaxRate = obj.TaxRate.Value()
	s.Branding = obj.Branding
	return nil
}
