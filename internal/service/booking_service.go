package service

import (
	"context"
	"time"

	"renthub/internal/database"
	"renthub/internal/domain"
	"renthub/internal/events"
	"renthub/internal/metrics"
	"renthub/internal/models"

	"github.com/rs/zerolog"
)

// BookingService is the booking lifecycle core: it validates creation
// requests, runs the approve/reject state machine and computes the
// authorization-scoped, time-classified booking views. It holds no booking
// state between calls and is safe for concurrent use.
type BookingService struct {
	bookings        domain.BookingStore
	users           domain.UserDirectory
	items           domain.ItemCatalog
	clock           domain.Clock
	eventBus        domain.EventPublisher
	syncWorker      domain.SyncWorker
	defaultPageSize int
	logger          *zerolog.Logger
}

func NewBookingService(
	bookings domain.BookingStore,
	users domain.UserDirectory,
	items domain.ItemCatalog,
	clock domain.Clock,
	eventBus domain.EventPublisher,
	syncWorker domain.SyncWorker,
	defaultPageSize int,
	logger *zerolog.Logger,
) *BookingService {
	if clock == nil {
		clock = SystemClock{}
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	return &BookingService{
		bookings:        bookings,
		users:           users,
		items:           items,
		clock:           clock,
		eventBus:        eventBus,
		syncWorker:      syncWorker,
		defaultPageSize: defaultPageSize,
		logger:          logger,
	}
}

// Create registers a new booking in waiting status. Owners cannot book
// their own items, and the item must currently be open for booking.
func (s *BookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	booker, err := s.users.GetUser(ctx, bookerID)
	if err != nil {
		return nil, err
	}

	// Intervals are persisted at second precision; validate the bounds
	// that will actually be stored.
	start = start.Truncate(time.Second)
	end = end.Truncate(time.Second)
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if !item.Available {
		return nil, ErrNotAvailable
	}

	if item.OwnerID == booker.ID {
		return nil, ErrSelfBooking
	}

	booking := &models.Booking{
		ItemID:    item.ID,
		BookerID:  booker.ID,
		StartDate: start,
		EndDate:   end,
		Status:    models.StatusWaiting,
	}

	saved, err := s.bookings.SaveBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingCreated()
	s.publishEvent(events.EventBookingCreated, saved, item)
	s.enqueueUpsert(ctx, saved)

	s.logger.Info().
		Int64("booking_id", saved.ID).
		Int64("item_id", item.ID).
		Int64("booker_id", booker.ID).
		Msg("booking created")

	return saved, nil
}

// Decide moves a waiting booking to approved or rejected. Only the item
// owner may decide; for anyone else the booking does not exist. An
// approved booking accepts no further decisions.
func (s *BookingService) Decide(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}

	// Non-owners are told the booking does not exist rather than that
	// they lack access.
	if item.OwnerID != ownerID {
		return nil, database.ErrBookingNotFound
	}

	if booking.Status == models.StatusApproved {
		return nil, ErrAlreadyApproved
	}

	eventType := events.EventBookingRejected
	booking.Status = models.StatusRejected
	if approved {
		eventType = events.EventBookingApproved
		booking.Status = models.StatusApproved
	}

	saved, err := s.bookings.SaveBooking(ctx, booking)
	if err != nil {
		return nil, err
	}

	metrics.IncBookingDecision(saved.Status)
	s.publishEvent(eventType, saved, item)
	s.enqueueStatus(ctx, saved)

	s.logger.Info().
		Int64("booking_id", saved.ID).
		Str("status", saved.Status).
		Msg("booking decided")

	return saved, nil
}

// GetVisible returns the booking when the caller is its booker or the
// owner of its item; otherwise the booking does not exist for the caller.
func (s *BookingService) GetVisible(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID == userID {
		return booking, nil
	}

	item, err := s.items.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == userID {
		return booking, nil
	}

	return nil, database.ErrBookingNotFound
}

// ListForBooker returns the caller's bookings in the given temporal state,
// most recent start first.
func (s *BookingService) ListForBooker(ctx context.Context, userID int64, state string, from, size int) ([]*models.Booking, error) {
	st, now, opts, err := s.prepareQuery(ctx, userID, state, from, size)
	if err != nil {
		return nil, err
	}
	return s.bookings.QueryByBooker(ctx, userID, st, now, opts)
}

// ListForOwner returns bookings of the caller's items in the given
// temporal state, most recent start first.
func (s *BookingService) ListForOwner(ctx context.Context, userID int64, state string, from, size int) ([]*models.Booking, error) {
	st, now, opts, err := s.prepareQuery(ctx, userID, state, from, size)
	if err != nil {
		return nil, err
	}
	return s.bookings.QueryByOwner(ctx, userID, st, now, opts)
}

// LastApprovedBefore returns the approved booking of the item with the
// greatest start before now, or nil.
func (s *BookingService) LastApprovedBefore(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return s.bookings.LastApprovedBefore(ctx, itemID, now)
}

// NextApprovedAfter returns the approved booking of the item with the
// least start after now, or nil.
func (s *BookingService) NextApprovedAfter(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	return s.bookings.NextApprovedAfter(ctx, itemID, now)
}

func (s *BookingService) prepareQuery(ctx context.Context, userID int64, state string, from, size int) (models.State, time.Time, domain.QueryOptions, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return "", time.Time{}, domain.QueryOptions{}, err
	}

	st, err := models.ParseState(state)
	if err != nil {
		return "", time.Time{}, domain.QueryOptions{}, ErrUnsupportedState
	}

	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = s.defaultPageSize
	}

	opts := domain.QueryOptions{
		Order:  domain.OrderStartDesc,
		Offset: from,
		Limit:  size,
	}
	return st, s.clock.Now(), opts, nil
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, item *models.Item) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    item.ID,
		ItemName:  item.Name,
		OwnerID:   item.OwnerID,
		BookerID:  booking.BookerID,
		Status:    booking.Status,
		StartDate: booking.StartDate,
		EndDate:   booking.EndDate,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueUpsert(ctx context.Context, booking *models.Booking) {
	if s.syncWorker == nil {
		return
	}
	if err := s.syncWorker.EnqueueUpsert(ctx, booking); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}

func (s *BookingService) enqueueStatus(ctx context.Context, booking *models.Booking) {
	if s.syncWorker == nil {
		return
	}
	if err := s.syncWorker.EnqueueStatus(ctx, booking.ID, booking.Status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("sheets enqueue error")
	}
}
