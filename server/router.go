package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	sheettable "github.com/ideamans/go-sheettable"
)

// NewRouter exposes table over HTTP as a JSON resource.
func NewRouter(table *sheettable.Table) http.Handler {
	h := &Handler{table: table, log: log.WithField("sheet", table.SheetName())}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	return applyRoutes(r, h)
}

func applyRoutes(r chi.Router, h *Handler) chi.Router {
	r.Get("/columns", h.getColumns)

	r.Route("/rows", func(r chi.Router) {
		r.Get("/", h.listRows)
		r.Post("/", h.insertRow)
		r.Get("/count", h.countRows)

		r.Route("/{number}", func(r chi.Router) {
			r.Get("/", h.getRow)
			r.Patch("/", h.updateRow)
			r.Delete("/", h.deleteRow)
		})
	})

	return r
}
