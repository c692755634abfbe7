package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"ArborCRM/internal/api"
	"ArborCRM/internal/audit"
	"ArborCRM/internal/backend"
	"ArborCRM/internal/config"
	"ArborCRM/internal/db"
	"ArborCRM/internal/notify"
	"ArborCRM/internal/payroll"
	"ArborCRM/internal/session"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer db.CloseDB()

	// Журнал аудита пишется асинхронно, остаток буфера дописывается
	// при остановке.
	auditStore := audit.NewSqlEventStore(db.DB)
	auditWorker := audit.NewWorker(auditStore, 256)
	auditWorker.Start()
	defer auditWorker.Shutdown()

	backendClient := backend.NewClient(cfg.BackendAPIURL, cfg.BackendAPIToken, cfg.RequestTimeout)
	sessionManager := session.NewSessionManager(backendClient)
	distributor := payroll.NewDistributor(backendClient, cfg.CommissionRate)
	notifier := notify.NewNotifier(cfg.TelegramToken, cfg.AccountingChatID)

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	// ГЛОБАЛЬНЫЕ MIDDLEWARES ДОЛЖНЫ ИДТИ ПЕРЕД api.SetupRoutes
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiDeps := &api.ApiDependencies{
		Config:   cfg,
		Backend:  backendClient,
		Sessions: sessionManager,
		Payroll:  distributor,
		Audit:    auditWorker,
		Events:   auditStore,
		Notify:   notifier,
	}

	api.SetupRoutes(apiRouter, apiDeps)

	// Обработка запроса иконки, чтобы избежать ошибки 404 в логах
	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Запускаем HTTP-сервер в отдельной горутине, чтобы main мог
	// дождаться сигнала остановки и корректно дописать журнал аудита.
	go func() {
		log.Printf("Запуск HTTP-сервера API на порту %s", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, apiRouter); err != nil {
			log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("Получен сигнал остановки, завершаем работу.")
}
