package match

import "forecast-recon/feature/reconciliation/models"

// Pool is the shrinking set of unresolved records during one run.
type Pool struct {
	orders  []models.OrderForecast
	entries []models.GLEntry

	orderIdx map[uint]int
	entryIdx map[uint]int
}

// NewPool builds a pool from the records selected for a run, in id order.
func NewPool(orders []models.OrderForecast, entries []models.GLEntry) *Pool {
	p := &Pool{orders: orders, entries: entries}
	p.reindex()
	return p
}

func (p *Pool) reindex() {
	p.orderIdx = make(map[uint]int, len(p.orders))
	for i, o := range p.orders {
		p.orderIdx[o.ID] = i
	}
	p.entryIdx = make(map[uint]int, len(p.entries))
	for i, g := range p.entries {
		p.entryIdx[g.ID] = i
	}
}

// Orders returns the unclaimed orders.
func (p *Pool) Orders() []models.OrderForecast { return p.orders }

// Entries returns the unclaimed GL entries.
func (p *Pool) Entries() []models.GLEntry { return p.entries }

// Order returns the pooled order with id, or nil.
func (p *Pool) Order(id uint) *models.OrderForecast {
	if i, ok := p.orderIdx[id]; ok {
		return &p.orders[i]
	}
	return nil
}

// Entry returns the pooled GL entry with id, or nil.
func (p *Pool) Entry(id uint) *models.GLEntry {
	if i, ok := p.entryIdx[id]; ok {
		return &p.entries[i]
	}
	return nil
}

// Remove drops claimed records so later strategies cannot see them.
func (p *Pool) Remove(orderIDs, glIDs map[uint]struct{}) {
	orders := make([]models.OrderForecast, 0, len(p.orders))
	for _, o := range p.orders {
		if _, gone := orderIDs[o.ID]; !gone {
			orders = append(orders, o)
		}
	}
	entries := make([]models.GLEntry, 0, len(p.entries))
	for _, g := range p.entries {
		if _, gone := glIDs[g.ID]; !gone {
			entries = append(entries, g)
		}
	}
	p.orders, p.entries = orders, entries
	p.reindex()
}
