package model

import (
	"time"
)

/*

Portal is a data model for one tenant of the platform

Example: a city guide site, a hotel concierge microsite

Id: primary key, use to identify a portal
CreatedAt: time when entity is created
UpdatedAt: time when portal settings are updated

Name: the portal's display name, for example "Oldtown After Dark"
City: city slug the portal is anchored to, used to scope the event pool
CenterLat, CenterLng: the portal's reference point for proximity ranking
RadiusKm: default radius for the nearby-venue ranking
Active: portals are never deleted, only deactivated
*/
type Portal struct {
	Id        string `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string
	City      string `gorm:"index"`
	CenterLat float64
	CenterLng float64
	RadiusKm  float64
	Active    bool `gorm:"default:true"`
}
