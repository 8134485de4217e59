package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/itemtrace/indexer/internal/items"
	"github.com/itemtrace/indexer/internal/services/db"
)

type Router struct {
	db *db.DB
}

func NewServer(db *db.DB) *Router {
	return &Router{
		db: db,
	}
}

// Start starts the read api server
func (r *Router) Start(port int) error {
	cr := chi.NewRouter()

	// configure middleware
	cr.Use(middleware.RequestID)
	cr.Use(middleware.Logger)

	// configure custom middleware
	cr.Use(OptionsMiddleware)
	cr.Use(HealthMiddleware)
	cr.Use(RequestSizeLimitMiddleware(1 << 20)) // Limit request bodies to 1MB
	cr.Use(middleware.Compress(9))

	// instantiate handlers
	i := items.NewService(r.db)

	cr.Route("/items", func(cr chi.Router) {
		cr.Get("/", i.GetAll)
		cr.Get("/{item_id}/changes", i.GetChanges)
	})

	cr.Get("/checkpoint", i.GetCheckpoint)

	return http.ListenAndServe(fmt.Sprintf(":%v", port), cr)
}
