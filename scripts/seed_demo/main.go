package main

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/eventatlas/portalfeed/federation"
	"github.com/eventatlas/portalfeed/model"
	"github.com/eventatlas/portalfeed/utils"
	"github.com/eventatlas/portalfeed/utils/dotenv"
)

// Seeds a demo city with two portals, a shared source, venues with specials,
// a week of events and a sectioned feed. Run against the dev database:
//
//	go run scripts/seed_demo/main.go

func ptr(s string) *string { return &s }

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		log.Fatalln("fail to load env: ", err)
	}
	db, err := utils.GetDBConnection()
	if err != nil {
		log.Fatalln("fail to connect database: ", err)
	}
	utils.DatabaseSetupAndMigration(db)

	uptown := model.Portal{
		Id: uuid.New().String(), Name: "Uptown Guide", City: "springfield",
		CenterLat: 39.81, CenterLng: -89.64, RadiusKm: 3.0, Active: true,
	}
	oldtown := model.Portal{
		Id: uuid.New().String(), Name: "Oldtown After Dark", City: "springfield",
		CenterLat: 39.8, CenterLng: -89.65, RadiusKm: 2.5, Active: true,
	}
	if err := db.Create([]*model.Portal{&uptown, &oldtown}).Error; err != nil {
		log.Fatalln("fail to create portals: ", err)
	}

	ticketline := model.Source{
		Id: uuid.New().String(), Name: "Ticketline Nightly Export",
		Active: true, OwnerPortalID: &uptown.Id,
	}
	cityCalendar := model.Source{
		Id: uuid.New().String(), Name: "City Calendar", Active: true,
	}
	if err := db.Create([]*model.Source{&ticketline, &cityCalendar}).Error; err != nil {
		log.Fatalln("fail to create sources: ", err)
	}

	rules := []model.SharingRule{
		{
			Id: uuid.New().String(), SourceID: ticketline.Id,
			Scope:             model.SharingScopeSelected,
			AllowedCategories: model.JSONStrings([]string{"food", "music"}),
		},
		{
			Id: uuid.New().String(), SourceID: cityCalendar.Id,
			Scope: model.SharingScopeAll,
		},
	}
	if err := db.Create(&rules).Error; err != nil {
		log.Fatalln("fail to create sharing rules: ", err)
	}

	sub := model.Subscription{
		Id: uuid.New().String(), PortalID: oldtown.Id, SourceID: ticketline.Id,
		Scope:      model.SubscriptionScopeSelected,
		Categories: model.JSONStrings([]string{"food", "music"}),
		Active:     true,
	}
	if err := db.Create(&sub).Error; err != nil {
		log.Fatalln("fail to create subscription: ", err)
	}

	theSpot := model.Venue{
		Id: uuid.New().String(), Name: "The Spot", City: "springfield",
		Neighborhood: "oldtown", VenueType: "bar",
		Lat: 39.8002, Lng: -89.6501, Active: true,
	}
	harborHall := model.Venue{
		Id: uuid.New().String(), Name: "Harbor Hall", City: "springfield",
		Neighborhood: "harbor", VenueType: "music_hall",
		Lat: 39.812, Lng: -89.64, Active: true,
	}
	if err := db.Create([]*model.Venue{&theSpot, &harborHall}).Error; err != nil {
		log.Fatalln("fail to create venues: ", err)
	}

	specials := []model.Special{
		{
			Id: uuid.New().String(), VenueID: theSpot.Id,
			Title:      "Weekday happy hour",
			DaysOfWeek: model.JSONInts([]int{1, 2, 3, 4, 5}),
			StartTime:  ptr("16:00"), EndTime: ptr("19:00"),
			Confidence: model.ConfidenceHigh, Active: true,
		},
		{
			Id: uuid.New().String(), VenueID: harborHall.Id,
			Title:     "Late night listening bar",
			StartTime: ptr("22:00"), EndTime: ptr("02:00"),
			Confidence: model.ConfidenceMedium, Active: true,
		},
	}
	if err := db.Create(&specials).Error; err != nil {
		log.Fatalln("fail to create specials: ", err)
	}

	today := utils.DateOnly(time.Now())
	events := []model.Event{
		{
			Id: uuid.New().String(), SourceID: ticketline.Id, VenueID: theSpot.Id,
			Category: "food", Title: "Oyster night",
			StartDate: today, StartTime: ptr("19:00:00"),
		},
		{
			Id: uuid.New().String(), SourceID: ticketline.Id, VenueID: harborHall.Id,
			Category: "music", Title: "Vinyl DJ set",
			StartDate: today, StartTime: ptr("21:00:00"),
		},
		{
			Id: uuid.New().String(), SourceID: ticketline.Id, VenueID: harborHall.Id,
			Category: "music", Title: "Jazz trio residency",
			StartDate: today.AddDate(0, 0, 1), StartTime: ptr("20:30:00"),
		},
		{
			Id: uuid.New().String(), SourceID: cityCalendar.Id, VenueID: theSpot.Id,
			Category: "food", Title: "Night market", IsFree: true,
			StartDate: today.AddDate(0, 0, 2),
		},
		{
			Id: uuid.New().String(), SourceID: cityCalendar.Id, VenueID: harborHall.Id,
			Category: "art", Title: "Riverfront mural walk", IsFree: true,
			StartDate: today.AddDate(0, 0, 3), StartTime: ptr("11:00:00"),
		},
	}
	if err := db.Create(&events).Error; err != nil {
		log.Fatalln("fail to create events: ", err)
	}

	sections := []model.FeedSection{
		{
			Id: uuid.New().String(), PortalID: oldtown.Id,
			Title: "Editor's picks", Kind: model.SectionKindCurated, Position: 1,
			CuratedEventIDs: model.JSONStrings([]string{events[0].Id, events[1].Id}),
			Active:          true,
		},
		{
			Id: uuid.New().String(), PortalID: oldtown.Id,
			Title: "Tonight", Kind: model.SectionKindAuto, Position: 2,
			Rule:   []byte(`{"categories":["food","music"]}`),
			Active: true,
		},
		{
			Id: uuid.New().String(), PortalID: oldtown.Id,
			Title: "Free this week", Kind: model.SectionKindAuto, Position: 3,
			Rule:   []byte(`{"free_only":true}`),
			Active: true,
		},
	}
	if err := db.Create(&sections).Error; err != nil {
		log.Fatalln("fail to create feed sections: ", err)
	}

	resolver := federation.NewResolver(db)
	refreshed, err := resolver.RefreshAllPortals()
	if err != nil {
		log.Fatalln("fail to refresh projections: ", err)
	}

	fmt.Println("seeded demo data")
	fmt.Println("  portal (owner):      ", uptown.Id)
	fmt.Println("  portal (subscriber): ", oldtown.Id)
	fmt.Println("  refreshed portals:   ", refreshed)
	fmt.Printf("  try: curl localhost:8080/portals/%s/feed\n", oldtown.Id)
}
