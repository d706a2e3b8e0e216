package model

import (
	"time"

	"gorm.io/datatypes"
)

// Section kinds. Mixed pins curated items first and fills the remainder from
// the rule-matched pool.
const (
	SectionKindCurated = "curated"
	SectionKindAuto    = "auto"
	SectionKindMixed   = "mixed"
)

/*

FeedSection is a portal-authored definition of one feed slice

The row stores a definition, not materialized content: curated item id lists
and the auto-filter rule are JSON columns interpreted by the feed package at
assembly time.

Id: primary key
CreatedAt: time when entity is created
UpdatedAt: time when the definition is edited in the portal CMS

PortalID: owning portal
Title: rendered section headline
Kind: curated / auto / mixed
Position: display order within the portal's feed, ascending
MaxItems: per-section cap; a non-positive value falls back to the default
CuratedEventIDs: JSON array of event ids in author-assigned order
Rule: JSON auto-filter (see feed.SectionRule)
Active: sections are toggled, not deleted
*/
type FeedSection struct {
	Id              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PortalID        string `gorm:"index"`
	Title           string
	Kind            string
	Position        int
	MaxItems        int
	CuratedEventIDs datatypes.JSON
	Rule            datatypes.JSON
	Active          bool `gorm:"default:true"`
}

// CuratedIDs decodes the curated item id column, preserving author order.
func (s *FeedSection) CuratedIDs() []string {
	return StringsFromJSON(s.CuratedEventIDs)
}
