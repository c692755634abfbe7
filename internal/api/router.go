package api

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes настраивает все маршруты для API.
func SetupRoutes(r *chi.Mux, deps *ApiDependencies) {
	// Публичные маршруты: без токена
	r.Group(func(r chi.Router) {
		r.Get("/api/client-config", deps.GetClientConfig)
		// Резолвер сам разбирается с опциональным токеном
		r.Get("/api/resolve", deps.ResolveView)
	})

	r.Group(func(r chi.Router) {
		r.Use(deps.AuthMiddleware)

		// --- Маршруты для всех аутентифицированных ролей ---
		r.Get("/api/profile", deps.GetProfile)

		// --- Маршруты для админов ---
		r.Route("/api", func(r chi.Router) {
			r.Use(deps.AdminMiddleware)

			r.Get("/jobs/{id}/settlement", deps.GetJobSettlement)
			r.Post("/jobs/{id}/pay", deps.PayJob)
			r.Put("/jobs/{id}/status", deps.UpdateJobStatus)
			r.Post("/jobs/{id}/assign", deps.ToggleAssignment)

			r.Get("/invoices/{id}/qr", deps.InvoiceQR)
			r.Get("/reports/earnings.xlsx", deps.ExportEarningsExcel)
			r.Get("/audit", deps.ListAuditEvents)
		})
	})
}
