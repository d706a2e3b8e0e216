package federation

import (
	"sort"

	"github.com/eventatlas/portalfeed/model"
)

// AccessEntry is one decoded projection row. A nil category set means the
// portal sees every category of the source.
type AccessEntry struct {
	SourceID   string
	AccessType string
	categories map[string]bool
}

// Allows reports whether the entry covers the category.
func (e *AccessEntry) Allows(category string) bool {
	if e.categories == nil {
		return true
	}
	return e.categories[category]
}

// AccessTable is one portal's projection keyed by source id, decoded once so
// feed assembly can gate thousands of candidate events without re-parsing
// category JSON.
type AccessTable map[string]*AccessEntry

// Allows reports whether the portal may see the given category of the given
// source. Sources absent from the table are not visible at all.
func (t AccessTable) Allows(sourceID, category string) bool {
	entry, ok := t[sourceID]
	if !ok {
		return false
	}
	return entry.Allows(category)
}

// SourceIDs lists the accessible source ids, sorted for stable SQL IN
// clauses and cache keys.
func (t AccessTable) SourceIDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BuildAccessTable decodes projection rows into an AccessTable.
func BuildAccessTable(rows []model.PortalSourceAccess) AccessTable {
	table := make(AccessTable, len(rows))
	for i := range rows {
		row := &rows[i]
		entry := &AccessEntry{SourceID: row.SourceID, AccessType: row.AccessType}
		if categories, all := row.CategorySet(); !all {
			entry.categories = make(map[string]bool, len(categories))
			for _, c := range categories {
				entry.categories[c] = true
			}
		}
		table[row.SourceID] = entry
	}
	return table
}
