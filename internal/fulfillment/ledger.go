package fulfillment

import (
	"sort"
	"strconv"
	"strings"

	"webshop-service/internal/models"
)

// Ledger maps article IDs to the total quantity an order requests.
// It is rebuilt from the order's item list on every transition attempt
// and never persisted.
type Ledger map[int64]int

// BuildLedger resolves an item list into a ledger. Both wire shapes
// produce the same ledger for equivalent input: the flat string
// "23, 23, 24" and the records [{23,2},{24,1}] both yield {23:2, 24:1}.
// Entries with an unparsable article id or a non-positive quantity are
// dropped. A malformed or empty list yields an empty ledger.
func BuildLedger(items models.OrderItems) Ledger {
	ledger := make(Ledger)

	switch items.Kind {
	case models.ItemsStructured:
		for _, ref := range items.Refs {
			if ref.ArticleID <= 0 || ref.Quantity <= 0 {
				continue
			}
			ledger[ref.ArticleID] += ref.Quantity
		}

	case models.ItemsFlat:
		for _, token := range strings.Split(items.Flat, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(token), 10, 64)
			if err != nil || id <= 0 {
				continue
			}
			ledger[id]++
		}
	}

	return ledger
}

// ArticleIDs returns the affected article IDs in ascending order, so
// adjustments and retries apply in a stable sequence.
func (l Ledger) ArticleIDs() []int64 {
	ids := make([]int64, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EncodeItems re-encodes the ledger into the flat wire representation:
// each article id repeated once per requested unit, ascending, joined
// with ", ".
func (l Ledger) EncodeItems() models.OrderItems {
	parts := make([]string, 0, len(l))
	for _, id := range l.ArticleIDs() {
		for i := 0; i < l[id]; i++ {
			parts = append(parts, strconv.FormatInt(id, 10))
		}
	}
	return models.FlatItems(strings.Join(parts, ", "))
}
