package services

import (
	"context"
	"log/slog"
	"time"

	"eventhive/models"
)

// SeedSampleEvents populates the store with demo content for a fresh
// development environment. It does nothing when any events already exist.
func SeedSampleEvents(ctx context.Context, store *EventStore) {
	if store.Count() > 0 {
		return
	}

	now := time.Now().UTC()
	samples := []models.Event{
		{
			ID:               newRecordID("event"),
			Name:             "Hedera Builders Summit",
			Description:      "A full-day conference on building consumer apps on Hedera, with workshops and a live hackathon showcase.",
			Date:             now.AddDate(0, 1, 0).Format("2006-01-02"),
			Venue:            "Moscone Center West, San Francisco",
			Organizer:        "Hashgraph Association",
			TicketPrice:      25,
			MaxTickets:       500,
			CoverImage:       selectCoverImage("Hedera Builders Summit"),
			CreatorAccountID: "0.0.12345",
			CreatedAt:        now,
			IsActive:         true,
			TicketTypes: []models.TicketType{
				{ID: "general", Name: "General Admission", Description: "Access to all talks and the expo floor", Price: 25, MaxSupply: 400},
				{ID: "vip", Name: "VIP", Description: "Front-row seating plus the speakers dinner", Price: 80, MaxSupply: 100},
			},
		},
		{
			ID:               newRecordID("event"),
			Name:             "Midnight Frequencies",
			Description:      "An open-air electronic music night with three stages and on-chain collectible passes.",
			Date:             now.AddDate(0, 2, 0).Format("2006-01-02"),
			Venue:            "Brooklyn Mirage, New York",
			Organizer:        "Nightloop Collective",
			TicketPrice:      12.5,
			MaxTickets:       1500,
			CoverImage:       selectCoverImage("Midnight Frequencies"),
			CreatorAccountID: "0.0.67890",
			CreatedAt:        now.Add(-time.Minute),
			IsActive:         true,
		},
	}

	for _, ev := range samples {
		store.Insert(ctx, ev)
	}
	slog.Info("seeded sample events", "count", len(samples))
}
