package handlers

import (
	"github.com/jmoiron/sqlx"

	"cardbazaar/internal/config"
	"cardbazaar/internal/repos"
	"cardbazaar/internal/services"
)

type Deps struct {
	ListingHandler    *ListingHandler
	OrderHandler      *OrderHandler
	CollectionHandler *CollectionHandler
	DeckHandler       *DeckHandler
	CardHandler       *CardHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, idem services.IdempotencyStore) *Deps {
	cardRepo := repos.NewCardRepo(db)
	listingRepo := repos.NewListingRepo(db)
	orderRepo := repos.NewOrderRepo(db)
	collectionRepo := repos.NewCollectionRepo(db)
	deckRepo := repos.NewDeckRepo(db)
	userRepo := repos.NewUserRepo(db)

	marketSvc := services.NewMarketService(listingRepo, cardRepo, userRepo)
	orderSvc := services.NewOrderService(db, listingRepo, orderRepo, userRepo, idem)
	collectionSvc := services.NewCollectionService(db, collectionRepo, cardRepo)
	deckSvc := services.NewDeckService(db, deckRepo, cardRepo, cfg.DeckCopyLimit)

	return &Deps{
		ListingHandler:    &ListingHandler{Market: marketSvc, Listings: listingRepo, Cards: cardRepo},
		OrderHandler:      &OrderHandler{Order: orderSvc, Orders: orderRepo},
		CollectionHandler: &CollectionHandler{Collection: collectionSvc, Collections: collectionRepo},
		DeckHandler:       &DeckHandler{Deck: deckSvc, Decks: deckRepo},
		CardHandler:       &CardHandler{Cards: cardRepo},
	}
}
