package model

import (
	"time"
)

/*

Venue is a data model for a physical destination

Id: primary key; identity is immutable even when coordinates get corrected
CreatedAt: time when entity is created
UpdatedAt: time when entity is updated, for example a coordinate fix

Name: display name
City: city slug, matches Portal.City
Neighborhood: free-form neighborhood name used by feed geo filters
VenueType: coarse type slug, for example "bar", "gallery"
Lat, Lng: WGS84 coordinates
Specials: time-boxed offers running at this venue, "has-many" relation
Active: venues are never deleted, only deactivated
*/
type Venue struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string
	City         string `gorm:"index"`
	Neighborhood string
	VenueType    string
	Lat          float64
	Lng          float64
	Specials     []Special `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Active       bool      `gorm:"default:true"`
}
