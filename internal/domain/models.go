package domain

type Card struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	Game      string `db:"game" json:"game"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

// CardSet is a specific printing of a card (set, collector number, rarity, edition).
type CardSet struct {
	ID        string `db:"id" json:"id"`
	CardID    string `db:"card_id" json:"cardId"`
	SetCode   string `db:"set_code" json:"setCode"`
	Number    string `db:"number" json:"number"`
	Rarity    string `db:"rarity" json:"rarity"`
	Edition   string `db:"edition" json:"edition"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type PricePoint struct {
	ID         string  `db:"id" json:"id"`
	CardSetID  string  `db:"card_set_id" json:"cardSetId"`
	Market     string  `db:"market" json:"market"`
	Amount     float64 `db:"amount" json:"amount"`
	RecordedAt string  `db:"recorded_at" json:"recordedAt"`
}

type Collection struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"userId"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type CollectionItem struct {
	CollectionID  string   `db:"collection_id" json:"collectionId"`
	CardSetID     string   `db:"card_set_id" json:"cardSetId"`
	Quantity      int      `db:"quantity" json:"quantity"`
	Condition     string   `db:"condition" json:"condition"`
	PurchasePrice *float64 `db:"purchase_price" json:"purchasePrice,omitempty"`
	CreatedAt     string   `db:"created_at" json:"createdAt"`
	UpdatedAt     *string  `db:"updated_at" json:"updatedAt,omitempty"`
}

type Deck struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"userId"`
	Name      string `db:"name" json:"name"`
	Format    string `db:"format" json:"format"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

type DeckSlot struct {
	DeckID    string  `db:"deck_id" json:"deckId"`
	CardSetID string  `db:"card_set_id" json:"cardSetId"`
	Section   string  `db:"section" json:"section"`
	Qty       int     `db:"qty" json:"qty"`
	CreatedAt string  `db:"created_at" json:"createdAt"`
	UpdatedAt *string `db:"updated_at" json:"updatedAt,omitempty"`
}

type ListingStatus string

const (
	ListingActive    ListingStatus = "ACTIVE"
	ListingSoldOut   ListingStatus = "SOLD_OUT"
	ListingCancelled ListingStatus = "CANCELLED"
)

type Listing struct {
	ID               string        `db:"id" json:"id"`
	SellerID         string        `db:"seller_id" json:"sellerId"`
	CardSetID        string        `db:"card_set_id" json:"cardSetId"`
	Condition        string        `db:"condition" json:"condition"`
	Price            float64       `db:"price" json:"price"`
	Quantity         int           `db:"quantity" json:"quantity"`
	OriginalQuantity int           `db:"original_quantity" json:"originalQuantity"`
	Status           ListingStatus `db:"status" json:"status"`
	Version          int           `db:"version" json:"version"` // optimistic locking
	CreatedAt        string        `db:"created_at" json:"createdAt"`
	UpdatedAt        *string       `db:"updated_at" json:"updatedAt,omitempty"`
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderRefunded  OrderStatus = "REFUNDED"
)

// Restores reports whether entering this status hands the ordered units back
// to the listing.
func (s OrderStatus) Restores() bool {
	return s == OrderCancelled || s == OrderRefunded
}

type Order struct {
	ID        string      `db:"id" json:"id"`
	BuyerID   string      `db:"buyer_id" json:"buyerId"`
	ListingID string      `db:"listing_id" json:"listingId"`
	Quantity  int         `db:"quantity" json:"quantity"`
	Total     float64     `db:"total" json:"total"` // frozen price snapshot at placement
	Status    OrderStatus `db:"status" json:"status"`
	CreatedAt string      `db:"created_at" json:"createdAt"`
	UpdatedAt *string     `db:"updated_at" json:"updatedAt,omitempty"`
}

// Availability is the buyer-facing stock summary for a listing.
type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | SOLD_OUT | CANCELLED
	Qty    int    `json:"qty,omitempty"`
}

type User struct {
	ID    string `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Hash  string `db:"password_hash" json:"-"`
}
