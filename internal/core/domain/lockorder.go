package domain

import "sort"

// CanonicalOrder merges duplicate product ids and returns the line items
// sorted by ascending product id.
//
// Every transaction that locks more than one product row must acquire the
// locks in this order. Because all writers agree on the same total order, no
// cycle can form in the lock wait-for graph, so two checkouts contending for
// an overlapping product set cannot deadlock. Callers accept request items in
// arbitrary order and pass them through here before touching the store.
func CanonicalOrder(items []LineItem) []LineItem {
	merged := make(map[int64]int, len(items))
	for _, it := range items {
		merged[it.ProductID] += it.Quantity
	}

	out := make([]LineItem, 0, len(merged))
	for id, qty := range merged {
		out = append(out, LineItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
