package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the lifecycle state of an order as it appears on the wire.
type Status string

const (
	StatusProcessing Status = "Processing"
	StatusAccepted   Status = "Accepted"
	StatusRejected   Status = "Rejected"
	StatusFinished   Status = "Finished"
)

// ParseStatus converts a wire string into a Status. Matching is case-sensitive.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusProcessing, StatusAccepted, StatusRejected, StatusFinished:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown order status: %q", s)
}

// Valid reports whether the status is one of the four known values.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusAccepted, StatusRejected, StatusFinished:
		return true
	}
	return false
}

// Article represents a sellable item with tracked stock
type Article struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	Price       float64   `db:"price" json:"price"`
	Quantity    int       `db:"quantity" json:"quantity"`
	ImageBase64 string    `db:"image_base64" json:"image_base64,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Order represents a customer order
type Order struct {
	ID                int64      `db:"id" json:"id"`
	CustomerFirstname string     `db:"customer_firstname" json:"customer_firstname"`
	CustomerLastname  string     `db:"customer_lastname" json:"customer_lastname"`
	CustomerEmail     string     `db:"customer_email" json:"customer_email"`
	CustomerPhone     string     `db:"customer_phone" json:"customer_phone"`
	CustomerAddress   string     `db:"customer_address" json:"customer_address"`
	Items             OrderItems `db:"items" json:"items"`
	Status            Status     `db:"status" json:"status"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt       *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}

// ItemRef is one entry of a structured item list
type ItemRef struct {
	ArticleID int64 `json:"article_id"`
	Quantity  int   `json:"quantity"`
}

// ItemsKind tags which wire shape an item list arrived in.
type ItemsKind int

const (
	// ItemsNone means the list was absent or empty.
	ItemsNone ItemsKind = iota
	// ItemsStructured means a JSON array of {article_id, quantity} records.
	ItemsStructured
	// ItemsFlat means a comma-separated string of article ids, one per unit.
	ItemsFlat
	// ItemsMalformed means the payload matched neither recognized shape.
	ItemsMalformed
)

// OrderItems holds an order's item list in whichever shape it arrived.
// The two valid shapes are a structured array and a flat delimited id
// string (an order for two units of article 23 and one of 24 is encoded
// as "23, 23, 24"). Resolution into a per-article quantity map happens
// in the fulfillment package; this type only carries the raw shape
// across JSON and SQL boundaries.
type OrderItems struct {
	Kind ItemsKind
	Refs []ItemRef
	Flat string
}

// FlatItems builds an OrderItems in the flat wire shape.
func FlatItems(s string) OrderItems {
	if s == "" {
		return OrderItems{Kind: ItemsNone}
	}
	return OrderItems{Kind: ItemsFlat, Flat: s}
}

// StructuredItems builds an OrderItems from structured records.
func StructuredItems(refs []ItemRef) OrderItems {
	if len(refs) == 0 {
		return OrderItems{Kind: ItemsNone}
	}
	return OrderItems{Kind: ItemsStructured, Refs: refs}
}

// UnmarshalJSON accepts either item-list shape. An unrecognized payload
// is recorded as malformed rather than failing the whole decode; the
// fulfillment engine flags such orders instead of blocking on them.
func (it *OrderItems) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*it = FlatItems(s)
		return nil
	}

	var refs []ItemRef
	if err := json.Unmarshal(data, &refs); err == nil {
		*it = StructuredItems(refs)
		return nil
	}

	*it = OrderItems{Kind: ItemsMalformed}
	return nil
}

// MarshalJSON emits the shape the list is held in. Flat and empty lists
// serialize as a string, matching what the stores expect on the wire.
func (it OrderItems) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case ItemsStructured:
		return json.Marshal(it.Refs)
	default:
		return json.Marshal(it.Flat)
	}
}

// Value implements driver.Valuer; orders persist items as the flat string.
func (it OrderItems) Value() (driver.Value, error) {
	if it.Kind == ItemsStructured {
		return flattenRefs(it.Refs), nil
	}
	return it.Flat, nil
}

// Scan implements sql.Scanner for the items column.
func (it *OrderItems) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*it = OrderItems{Kind: ItemsNone}
	case string:
		*it = FlatItems(v)
	case []byte:
		*it = FlatItems(string(v))
	default:
		return fmt.Errorf("cannot scan %T into OrderItems", src)
	}
	return nil
}

func flattenRefs(refs []ItemRef) string {
	out := ""
	for _, ref := range refs {
		for i := 0; i < ref.Quantity; i++ {
			if out != "" {
				out += ", "
			}
			out += fmt.Sprintf("%d", ref.ArticleID)
		}
	}
	return out
}

// StockDelta is one signed stock change applied to an article during a
// transition. Negative consumes stock, positive restores it.
type StockDelta struct {
	ArticleID int64 `json:"article_id"`
	Delta     int   `json:"delta"`
}
