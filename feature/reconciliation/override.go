package reconciliation

import (
	"context"
	"errors"
	"sort"

	"forecast-recon/feature/reconciliation/models"
	"forecast-recon/feature/reconciliation/store"

	"go.uber.org/zap"
)

// Pair is an order and the GL entry an override touched, as committed.
type Pair struct {
	Order   models.OrderForecast `json:"order"`
	GLEntry models.GLEntry       `json:"gl_entry"`
}

// ExclusionResult holds the records of one exclusion call, as committed.
type ExclusionResult struct {
	Orders    []models.OrderForecast `json:"orders,omitempty"`
	GLEntries []models.GLEntry       `json:"gl_entries,omitempty"`
}

// ManualMatch pairs an unmatched order with an unmatched GL entry.
// A matched or fuzzy order must be unmatched first.
func (s *Service) ManualMatch(ctx context.Context, req MatchRequest, actor string) (*Pair, error) {
	if err := validate(s.validate, req); err != nil {
		return nil, err
	}

	var pair Pair
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		o, g, err := loadPair(ctx, tx, req)
		if err != nil {
			return err
		}
		if err := o.Match(g.ID, models.OrderMatched); err != nil {
			return err
		}
		if err := g.Claim(); err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.SaveGLEntry(ctx, g); err != nil {
			return err
		}
		pair = Pair{Order: *o, GLEntry: *g}
		return nil
	})
	if err != nil {
		s.logger.Warn("Manual match rejected", zap.Uint("order_id", req.OrderID), zap.Uint("gl_id", req.GLID), zap.Error(err))
		return nil, translate("manual match", err)
	}

	s.auditor.Record(ctx, AuditEvent{
		Action:   "match",
		Actor:    actorOrDefault(actor),
		Kind:     models.KindOrder,
		IDs:      []uint{req.OrderID},
		GLID:     req.GLID,
		Occurred: s.now().UTC(),
	})
	return &pair, nil
}

// Unmatch clears the pairing between an order and the GL entry it references.
func (s *Service) Unmatch(ctx context.Context, req MatchRequest, actor string) (*Pair, error) {
	if err := validate(s.validate, req); err != nil {
		return nil, err
	}

	var pair Pair
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		o, g, err := loadPair(ctx, tx, req)
		if err != nil {
			return err
		}
		if o.GLMatchID == nil || *o.GLMatchID != g.ID {
			return &StateConflictError{
				Kind:    models.KindOrder,
				ID:      o.ID,
				Status:  string(o.ReconciliationStatus),
				Message: "order is not matched to this gl entry",
			}
		}
		if err := o.ClearMatch(); err != nil {
			return err
		}
		g.Release()
		if err := tx.SaveOrder(ctx, o); err != nil {
			return err
		}
		if err := tx.SaveGLEntry(ctx, g); err != nil {
			return err
		}
		pair = Pair{Order: *o, GLEntry: *g}
		return nil
	})
	if err != nil {
		s.logger.Warn("Unmatch rejected", zap.Uint("order_id", req.OrderID), zap.Uint("gl_id", req.GLID), zap.Error(err))
		return nil, translate("unmatch", err)
	}

	s.auditor.Record(ctx, AuditEvent{
		Action:   "unmatch",
		Actor:    actorOrDefault(actor),
		Kind:     models.KindOrder,
		IDs:      []uint{req.OrderID},
		GLID:     req.GLID,
		Occurred: s.now().UTC(),
	})
	return &pair, nil
}

// SetExclusion excludes or re-includes several records of one kind atomically.
// Excluding a matched or fuzzy record fails the whole call. Including a record
// that is not excluded leaves it unchanged.
func (s *Service) SetExclusion(ctx context.Context, req ExclusionRequest, actor string) (*ExclusionResult, error) {
	if err := validate(s.validate, req); err != nil {
		return nil, err
	}
	ids := uniqueSorted(req.IDs)
	reason := req.Reason
	if !req.Excluded {
		reason = nil
	}

	var result ExclusionResult
	err := s.store.Transaction(ctx, func(tx *store.Store) error {
		switch req.Kind {
		case models.KindOrder:
			orders, err := excludeOrders(ctx, tx, ids, req.Excluded, reason)
			result.Orders = orders
			return err
		default:
			entries, err := excludeGLEntries(ctx, tx, ids, req.Excluded, reason)
			result.GLEntries = entries
			return err
		}
	})
	if err != nil {
		s.logger.Warn("Exclusion rejected", zap.String("kind", string(req.Kind)), zap.Uints("ids", ids), zap.Error(err))
		return nil, translate("set exclusion", err)
	}

	action := "include"
	if req.Excluded {
		action = "exclude"
	}
	s.auditor.Record(ctx, AuditEvent{
		Action:   action,
		Actor:    actorOrDefault(actor),
		Kind:     req.Kind,
		IDs:      ids,
		Reason:   reason,
		Occurred: s.now().UTC(),
	})
	return &result, nil
}

func excludeOrders(ctx context.Context, tx *store.Store, ids []uint, excluded bool, reason *string) ([]models.OrderForecast, error) {
	orders, missing, err := tx.GetOrders(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Kind: models.KindOrder, ID: missing[0]}
	}
	for i := range orders {
		o := &orders[i]
		if excluded {
			if err := o.Exclude(reason); err != nil {
				return nil, err
			}
		} else if !o.Include() {
			continue
		}
		if err := tx.SaveOrder(ctx, o); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func excludeGLEntries(ctx context.Context, tx *store.Store, ids []uint, excluded bool, reason *string) ([]models.GLEntry, error) {
	entries, missing, err := tx.GetGLEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Kind: models.KindGL, ID: missing[0]}
	}
	for i := range entries {
		g := &entries[i]
		if excluded {
			if err := g.Exclude(reason); err != nil {
				return nil, err
			}
		} else if !g.Include() {
			continue
		}
		if err := tx.SaveGLEntry(ctx, g); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func loadPair(ctx context.Context, tx *store.Store, req MatchRequest) (*models.OrderForecast, *models.GLEntry, error) {
	o, err := tx.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, nil, notFound(models.KindOrder, req.OrderID, err)
	}
	g, err := tx.GetGLEntry(ctx, req.GLID)
	if err != nil {
		return nil, nil, notFound(models.KindGL, req.GLID, err)
	}
	return o, g, nil
}

func notFound(kind models.RecordKind, id uint, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}

func uniqueSorted(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func actorOrDefault(actor string) string {
	if actor == "" {
		return "system"
	}
	return actor
}
