package models

// Match pairs the order with glID. status must be matched or fuzzy.
func (o *OrderForecast) Match(glID uint, status OrderStatus) error {
	if o.IsExcluded || o.ReconciliationStatus == OrderExcluded {
		return o.conflict("excluded records cannot be matched")
	}
	if !status.Resolved() || !CanTransitionOrder(o.ReconciliationStatus, status) {
		return o.conflict("unmatch first")
	}
	id := glID
	o.ReconciliationStatus = status
	o.GLMatchID = &id
	return nil
}

// ClearMatch returns a matched or fuzzy order to unmatched.
func (o *OrderForecast) ClearMatch() error {
	if !o.ReconciliationStatus.Resolved() {
		return o.conflict("order holds no match")
	}
	o.ReconciliationStatus = OrderUnmatched
	o.GLMatchID = nil
	return nil
}

// Exclude takes the order out of scope. Re-excluding only replaces the reason.
func (o *OrderForecast) Exclude(reason *string) error {
	if !CanTransitionOrder(o.ReconciliationStatus, OrderExcluded) {
		return o.conflict("unmatch first")
	}
	o.ReconciliationStatus = OrderExcluded
	o.IsExcluded = true
	o.ExclusionReason = reason
	return nil
}

// Include returns an excluded order to unmatched. It reports whether anything changed.
func (o *OrderForecast) Include() bool {
	if !o.IsExcluded && o.ReconciliationStatus != OrderExcluded {
		return false
	}
	o.ReconciliationStatus = OrderUnmatched
	o.IsExcluded = false
	o.ExclusionReason = nil
	return true
}

func (o *OrderForecast) conflict(reason string) error {
	return &TransitionError{Kind: KindOrder, ID: o.ID, Status: string(o.ReconciliationStatus), Reason: reason}
}

// Claim marks the entry matched. Callers write the referencing order in the same transaction.
func (g *GLEntry) Claim() error {
	if g.IsExcluded {
		return g.conflict("excluded records cannot be matched")
	}
	if g.ReconciliationStatus != GLUnmatched {
		return g.conflict("unmatch first")
	}
	g.ReconciliationStatus = GLMatched
	return nil
}

// Release marks the entry unmatched.
func (g *GLEntry) Release() {
	g.ReconciliationStatus = GLUnmatched
}

// Exclude takes the entry out of scope. Only unmatched entries can be excluded.
func (g *GLEntry) Exclude(reason *string) error {
	if g.ReconciliationStatus != GLUnmatched {
		return g.conflict("unmatch first")
	}
	g.IsExcluded = true
	g.ExclusionReason = reason
	return nil
}

// Include clears the exclusion flag. It reports whether anything changed.
func (g *GLEntry) Include() bool {
	if !g.IsExcluded {
		return false
	}
	g.IsExcluded = false
	g.ExclusionReason = nil
	return true
}

func (g *GLEntry) conflict(reason string) error {
	return &TransitionError{Kind: KindGL, ID: g.ID, Status: string(g.ReconciliationStatus), Reason: reason}
}
