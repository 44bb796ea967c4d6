package controllers

import (
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"ledgerbook-backend/database"
	"ledgerbook-backend/finance"
)

// Handlers carries the request handlers' dependencies. The finance
// engine gets its store injected here; nothing below reaches for a
// package-level handle.
type Handlers struct {
	db     *gorm.DB
	store  *database.Store
	engine *finance.Engine
	log    zerolog.Logger
}

func New(db *gorm.DB, log zerolog.Logger) *Handlers {
	store := database.NewStore(db)
	return &Handlers{
		db:     db,
		store:  store,
		engine: finance.NewEngine(store, log),
		log:    log,
	}
}
