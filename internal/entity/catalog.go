package entity

import "time"

// CatalogPerson is a contact candidate from the cached CRM dataset.
type CatalogPerson struct {
	PersonId  int    `json:"personId"`
	Name      string `json:"name"`
	MineGroup string `json:"mineGroup"`
	MineName  string `json:"mineName"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	JobTitle  string `json:"jobTitle,omitempty"`
}

// ContactsCatalog is the hierarchical contact lookup: mine group -> mine
// name -> persons. Stale is computed against the fetch time at read time and
// surfaced to the caller, never hidden.
type ContactsCatalog struct {
	Groups    map[string]map[string][]CatalogPerson `json:"groups"`
	FetchedAt time.Time                             `json:"fetchedAt"`
	Stale     bool                                  `json:"stale"`
}

type CatalogProduct struct {
	ProductId        int     `json:"productId"`
	Name             string  `json:"name"`
	Code             string  `json:"code,omitempty"`
	Category         string  `json:"category"`
	Price            float64 `json:"price"`
	ShortDescription string  `json:"shortDescription,omitempty"`
}

// ProductsCatalog groups products by category.
type ProductsCatalog struct {
	Categories map[string][]CatalogProduct `json:"categories"`
	FetchedAt  time.Time                   `json:"fetchedAt"`
	Stale      bool                        `json:"stale"`
}

// KVEntry is a row of the kv_cache table: the persisted copy of a cached
// CRM dataset.
type KVEntry struct {
	Key       string    `db:"key"`
	Payload   []byte    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}
