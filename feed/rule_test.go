package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/eventatlas/portalfeed/model"
)

func eventOn(id, category, sourceID string, day int) model.Event {
	return model.Event{
		Id:        id,
		Category:  category,
		SourceID:  sourceID,
		VenueID:   "venue-1",
		StartDate: time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC),
	}
}

func TestParseSectionRuleEmptyMatchesEverything(t *testing.T) {
	for _, raw := range []datatypes.JSON{nil, datatypes.JSON(`null`)} {
		rule, err := ParseSectionRule(raw)
		require.NoError(t, err)
		e := eventOn("e1", "music", "s1", 14)
		assert.True(t, rule.MatchesEvent(&e))
	}
}

func TestParseSectionRuleMalformed(t *testing.T) {
	_, err := ParseSectionRule(datatypes.JSON(`{"categories": "not-an-array"`))
	assert.Error(t, err)
}

func TestSectionRuleClauses(t *testing.T) {
	music := eventOn("e1", "music", "s1", 14)
	food := eventOn("e2", "food", "s2", 14)

	t.Run("categories", func(t *testing.T) {
		rule, err := ParseSectionRule(datatypes.JSON(`{"categories":["music"]}`))
		require.NoError(t, err)
		assert.True(t, rule.MatchesEvent(&music))
		assert.False(t, rule.MatchesEvent(&food))
	})

	t.Run("source allow-list", func(t *testing.T) {
		rule, err := ParseSectionRule(datatypes.JSON(`{"source_ids":["s2"]}`))
		require.NoError(t, err)
		assert.False(t, rule.MatchesEvent(&music))
		assert.True(t, rule.MatchesEvent(&food))
	})

	t.Run("venue allow-list", func(t *testing.T) {
		rule, err := ParseSectionRule(datatypes.JSON(`{"venue_ids":["venue-9"]}`))
		require.NoError(t, err)
		assert.False(t, rule.MatchesEvent(&music))
	})

	t.Run("exclusions beat everything", func(t *testing.T) {
		rule, err := ParseSectionRule(datatypes.JSON(`{"exclude_event_ids":["e1"]}`))
		require.NoError(t, err)
		assert.False(t, rule.MatchesEvent(&music))
		assert.True(t, rule.MatchesEvent(&food))
	})

	t.Run("free only", func(t *testing.T) {
		rule, err := ParseSectionRule(datatypes.JSON(`{"free_only":true}`))
		require.NoError(t, err)
		assert.False(t, rule.MatchesEvent(&music))

		freebie := music
		freebie.IsFree = true
		assert.True(t, rule.MatchesEvent(&freebie))
	})

	t.Run("tag overlap", func(t *testing.T) {
		rule, err := ParseSectionRule(datatypes.JSON(`{"tags":["late-night","rooftop"]}`))
		require.NoError(t, err)

		tagged := music
		tagged.Tags = "jazz, rooftop"
		assert.True(t, rule.MatchesEvent(&tagged))

		tagged.Tags = "jazz"
		assert.False(t, rule.MatchesEvent(&tagged))

		tagged.Tags = ""
		assert.False(t, rule.MatchesEvent(&tagged))
	})
}

func TestSectionRuleDateBounds(t *testing.T) {
	rule, err := ParseSectionRule(datatypes.JSON(`{"date_from":"2026-03-10","date_to":"March 20, 2026"}`))
	require.NoError(t, err)

	before := eventOn("e1", "music", "s1", 9)
	inside := eventOn("e2", "music", "s1", 14)
	onFrom := eventOn("e3", "music", "s1", 10)
	onTo := eventOn("e4", "music", "s1", 20)
	after := eventOn("e5", "music", "s1", 21)

	assert.False(t, rule.MatchesEvent(&before))
	assert.True(t, rule.MatchesEvent(&inside))
	assert.True(t, rule.MatchesEvent(&onFrom), "from bound is inclusive")
	assert.True(t, rule.MatchesEvent(&onTo), "to bound is inclusive")
	assert.False(t, rule.MatchesEvent(&after))
}

func TestSectionRuleUnparseableDateBoundIsIgnored(t *testing.T) {
	rule, err := ParseSectionRule(datatypes.JSON(`{"date_from":"whenever works"}`))
	require.NoError(t, err)

	early := eventOn("e1", "music", "s1", 1)
	assert.True(t, rule.MatchesEvent(&early), "a bound nobody can read must not filter")
}
