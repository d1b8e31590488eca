package match

import (
	"strings"

	"forecast-recon/feature/reconciliation/models"
)

// CodeTable maps accounting item labels to the GL accounts they post to.
type CodeTable struct {
	byItem map[string][]models.AccountMapping
}

// NewCodeTable indexes mappings by accounting item.
func NewCodeTable(mappings []models.AccountMapping) *CodeTable {
	t := &CodeTable{byItem: make(map[string][]models.AccountMapping, len(mappings))}
	for _, m := range mappings {
		key := strings.TrimSpace(m.AccountingItem)
		t.byItem[key] = append(t.byItem[key], m)
	}
	return t
}

// Len returns the number of mapped items.
func (t *CodeTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byItem)
}

// Matches reports whether item posts to the entry's account. An unmapped item
// matches an entry whose account name equals the item.
func (t *CodeTable) Matches(item string, gl models.GLEntry) bool {
	item = strings.TrimSpace(item)
	var mapped []models.AccountMapping
	if t != nil {
		mapped = t.byItem[item]
	}
	if len(mapped) == 0 {
		return item != "" && item == strings.TrimSpace(gl.AccountName)
	}
	for _, m := range mapped {
		if m.AccountCode != "" && m.AccountCode == gl.AccountCode {
			return true
		}
		if m.AccountName != "" && m.AccountName == gl.AccountName {
			return true
		}
	}
	return false
}
