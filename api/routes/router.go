package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/pdv-backend/api/controllers"
	"github.com/angelmondragon/pdv-backend/api/middleware"
	pkgAuth "github.com/angelmondragon/pdv-backend/pkg/auth"
	"github.com/angelmondragon/pdv-backend/pkg/config"
	"github.com/angelmondragon/pdv-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	terminals controllers.TerminalRegistry,
	saleReader controllers.SaleReader,
	health map[string]controllers.Pinger,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, health))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Get("/api/public/ping", controllers.PublicPing())

	view := middleware.RequirePermission(pkgAuth.ModulePDV, pkgAuth.ActionView, logg)
	sell := middleware.RequirePermission(pkgAuth.ModulePDV, pkgAuth.ActionCreate, logg)
	stock := middleware.RequirePermission(pkgAuth.ModuleInventory, pkgAuth.ActionCreate, logg)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Get("/ping", controllers.OperatorPing())

		r.With(view).Get("/sales/{saleNumber}", controllers.SaleDetail(saleReader, logg))

		r.Route("/terminals/{terminalId}", func(r chi.Router) {
			r.With(view).Get("/", controllers.TerminalState(terminals, logg))
			r.With(view).Get("/history", controllers.TerminalHistory(terminals, logg))
			r.With(view).Delete("/", controllers.TerminalRelease(terminals, logg))

			r.Group(func(r chi.Router) {
				r.Use(sell)
				r.Post("/sales", controllers.SaleStart(terminals, logg))
				r.Post("/scan", controllers.SaleScan(terminals, logg))
				r.Post("/items", controllers.SaleAddItem(terminals, logg))
				r.Delete("/items/last", controllers.SaleRemoveLast(terminals, logg))
				r.Patch("/items/{code}", controllers.SaleChangeQuantity(terminals, logg))
				r.Delete("/items/{code}", controllers.SaleVoidLine(terminals, logg))
				r.Post("/items/{code}/decrement", controllers.SaleDecrement(terminals, logg))
				r.Put("/note", controllers.SaleSetNote(terminals, logg))
				r.Post("/finalize", controllers.SaleFinalize(terminals, logg))
				r.Post("/buyer", controllers.SaleSetBuyer(terminals, logg))
				r.Post("/payment", controllers.SalePayment(terminals, logg))
				r.Post("/receipt", controllers.SaleReceipt(terminals, logg))
				r.Post("/cancel", controllers.SaleCancel(terminals, logg))
				r.Post("/close-all", controllers.TerminalCloseAll(terminals, logg))
				r.Post("/keys/{key}", controllers.TerminalPressKey(terminals, logg))
			})

			r.With(stock).Post("/catalog/items", controllers.CatalogRegisterItem(terminals, logg))
		})
	})

	return r
}
