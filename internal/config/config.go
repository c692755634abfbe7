// internal/config/config.go
package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	BackendAPIURL   string // Базовый URL REST-бэкенда (джобы, счета, начисления)
	BackendAPIToken string // Сервисный Bearer-токен для запросов к бэкенду
	PaymentPageURL  string // Публичная страница оплаты счета (для QR-кодов)
	DatabaseURL     string // Локальная БД журнала аудита
	AppEnv          string
	Port            string
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string

	// CommissionRate - доля от базовой цены работы, начисляемая каждому
	// назначенному технику при оплате счета. Это правило расчета зарплаты,
	// НЕ связанное с расчетом прибыли — две независимые политики.
	CommissionRate float64

	// RequestTimeout - таймаут одного запроса к бэкенду. Таймаут
	// считается отказом для правила «не фиксировать оплату частично».
	RequestTimeout time.Duration

	TelegramToken    string // Опционально: уведомления бухгалтерии
	AccountingChatID int64
}

// DefaultCommissionRate - комиссия по умолчанию: 40% от базовой цены.
const DefaultCommissionRate = 0.40

// DefaultRequestTimeout - таймаут запроса к бэкенду по умолчанию.
const DefaultRequestTimeout = 30 * time.Second

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BackendAPIURL:   os.Getenv("BACKEND_API_URL"),
		BackendAPIToken: os.Getenv("BACKEND_API_TOKEN"),
		PaymentPageURL:  os.Getenv("PAYMENT_PAGE_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		AppEnv:          os.Getenv("ENV"),
		Port:            os.Getenv("PORT"),
		TelegramToken:   os.Getenv("TELEGRAM_APITOKEN"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	cfg.AccountingChatID, err = strconv.ParseInt(os.Getenv("ACCOUNTING_CHAT_ID"), 10, 64)
	if err != nil {
		log.Printf("Предупреждение: не удалось прочитать ACCOUNTING_CHAT_ID: %v. Установлено в 0, уведомления бухгалтерии отключены.", err)
		cfg.AccountingChatID = 0
	}

	commissionStr := os.Getenv("COMMISSION_RATE")
	if commissionStr == "" {
		log.Printf("Предупреждение: COMMISSION_RATE не установлен, используется значение по умолчанию %.2f (40%%).", DefaultCommissionRate)
		cfg.CommissionRate = DefaultCommissionRate
	} else {
		rate, errParse := strconv.ParseFloat(commissionStr, 64)
		if errParse != nil || rate <= 0 || rate >= 1 {
			log.Printf("Предупреждение: некорректное значение COMMISSION_RATE ('%s'): %v. Используется значение по умолчанию %.2f.", commissionStr, errParse, DefaultCommissionRate)
			cfg.CommissionRate = DefaultCommissionRate
		} else {
			cfg.CommissionRate = rate
		}
	}

	timeoutStr := os.Getenv("BACKEND_REQUEST_TIMEOUT_SEC")
	if timeoutStr == "" {
		cfg.RequestTimeout = DefaultRequestTimeout
	} else {
		seconds, errParse := strconv.Atoi(timeoutStr)
		if errParse != nil || seconds <= 0 {
			log.Printf("Предупреждение: некорректное значение BACKEND_REQUEST_TIMEOUT_SEC ('%s'). Используется %s.", timeoutStr, DefaultRequestTimeout)
			cfg.RequestTimeout = DefaultRequestTimeout
		} else {
			cfg.RequestTimeout = time.Duration(seconds) * time.Second
		}
	}

	if cfg.BackendAPIURL == "" {
		log.Println("Критическая ошибка: BACKEND_API_URL не установлен.")
	}
	if cfg.BackendAPIToken == "" {
		log.Println("Предупреждение: BACKEND_API_TOKEN не установлен. Запросы к бэкенду пойдут без авторизации.")
	}
	if cfg.PaymentPageURL == "" {
		log.Println("Предупреждение: PAYMENT_PAGE_URL не установлен. QR-коды счетов будут недоступны.")
	}
	if cfg.TelegramToken == "" {
		log.Println("Предупреждение: TELEGRAM_APITOKEN не установлен. Уведомления бухгалтерии отключены.")
	}

	if cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: DATABASE_URL не установлен.")
	} else {
		parsedURL, parseErr := url.Parse(cfg.DatabaseURL)
		if parseErr != nil {
			log.Printf("Критическая ошибка: ошибка парсинга DATABASE_URL: %v", parseErr)
		} else {
			cfg.DBHost = parsedURL.Hostname()
			cfg.DBPort = parsedURL.Port()
			if cfg.DBPort == "" {
				cfg.DBPort = "5432"
			}
			cfg.DBUser = parsedURL.User.Username()
			cfg.DBPassword, _ = parsedURL.User.Password()
			cfg.DBName = strings.TrimPrefix(parsedURL.Path, "/")
		}
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}
