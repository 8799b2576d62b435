package main

import (
	"context"

	"github.com/google/uuid"

	"listinghub/marketplace/marketplace-backend/internal/bookings"
	"listinghub/marketplace/marketplace-backend/internal/reviews"
)

// bookingRefAdapter lets the reviews service validate bookings without
// importing the bookings package directly.
type bookingRefAdapter struct {
	repo bookings.Repository
}

func (a *bookingRefAdapter) GetBookingRef(ctx context.Context, bookingID uuid.UUID) (*reviews.BookingRef, error) {
	booking, err := a.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &reviews.BookingRef{
		ID:           booking.ID,
		ListingID:    booking.ListingID,
		ContractorID: booking.ContractorID,
		HomeownerID:  booking.HomeownerID,
		Completed:    booking.Status == bookings.StatusCompleted,
	}, nil
}
