package model

import (
	"time"
)

/*

Source is a data model for an upstream event feed

Example: a city listings crawler, a ticketing export, a venue CMS

Id: primary key, use to identify a source
CreatedAt: time when entity is created
UpdatedAt: time when ownership or metadata changes

Name: the display name of the source, for example "Ticketline Nightly Export"
Active: sources are never deleted, only deactivated; inactive sources are
        invisible to access resolution and feed assembly
OwnerPortalID:
OwnerPortal: the portal that owns this source, "belongs-to" relation; null
             means no tenant owns it (exposure is still governed by the
             sharing rule)
SharingRule: owner-authored exposure policy, "has-one" relation, exactly one
             per source
*/
type Source struct {
	Id            string `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Name          string
	Active        bool         `gorm:"default:true"`
	OwnerPortalID *string      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	OwnerPortal   *Portal      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	SharingRule   *SharingRule `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
