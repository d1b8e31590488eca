package models

import "fmt"

// RecordKind names the two sides of a match.
type RecordKind string

const (
	KindOrder RecordKind = "order"
	KindGL    RecordKind = "gl"
)

// Valid reports whether k is a known record kind.
func (k RecordKind) Valid() bool {
	return k == KindOrder || k == KindGL
}

// OrderStatus is the reconciliation state of an order forecast line.
type OrderStatus string

const (
	OrderUnmatched OrderStatus = "unmatched"
	OrderFuzzy     OrderStatus = "fuzzy"
	OrderMatched   OrderStatus = "matched"
	OrderExcluded  OrderStatus = "excluded"
)

// Valid reports whether s is a declared order status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// Resolved reports whether the order holds a GL match.
func (s OrderStatus) Resolved() bool {
	return s == OrderMatched || s == OrderFuzzy
}

// orderTransitions lists the legal next states of each order status.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderUnmatched: {OrderMatched, OrderFuzzy, OrderExcluded},
	OrderMatched:   {OrderUnmatched},
	OrderFuzzy:     {OrderUnmatched},
	OrderExcluded:  {OrderUnmatched, OrderExcluded},
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// GLStatus is the reconciliation state of a GL entry.
// It mirrors whether an order references the entry and is written only together with that order.
type GLStatus string

const (
	GLUnmatched GLStatus = "unmatched"
	GLMatched   GLStatus = "matched"
)

// Valid reports whether s is a declared GL status.
func (s GLStatus) Valid() bool {
	return s == GLUnmatched || s == GLMatched
}

// TransitionError reports an illegal state change. Status is the record's current status.
type TransitionError struct {
	Kind   RecordKind
	ID     uint
	Status string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %d is %s: %s", e.Kind, e.ID, e.Status, e.Reason)
}
