package items

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	com "github.com/itemtrace/indexer/internal/common"
	"github.com/itemtrace/indexer/internal/services/db"
)

type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{
		db: db,
	}
}

// GetAll returns the indexed item creations, most recent first
func (s *Service) GetAll(w http.ResponseWriter, r *http.Request) {
	// parse pagination params from url query
	limitq := r.URL.Query().Get("limit")
	offsetq := r.URL.Query().Get("offset")

	limit, err := strconv.Atoi(limitq)
	if err != nil {
		limit = 20
	}

	offset, err := strconv.Atoi(offsetq)
	if err != nil {
		offset = 0
	}

	items, err := s.db.ItemDB.GetPaginatedItems(limit, offset)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	total, err := s.db.ItemDB.GetItemsCount()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	err = com.BodyMultiple(w, items, com.Pagination{Limit: limit, Offset: offset, Total: total})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// GetChanges returns the status history of an item in chain order
func (s *Service) GetChanges(w http.ResponseWriter, r *http.Request) {
	itemIDq := chi.URLParam(r, "item_id")

	itemID, err := strconv.ParseInt(itemIDq, 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	changes, err := s.db.ItemDB.GetItemStatusChanges(itemID)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	err = com.BodyMultiple(w, changes, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

// GetCheckpoint returns the current indexing checkpoint
func (s *Service) GetCheckpoint(w http.ResponseWriter, r *http.Request) {
	settings, err := s.db.SettingsDB.GetSettings()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	err = com.Body(w, settings, nil)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
