package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"renthub/internal/database"
	"renthub/internal/domain"
	"renthub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type bookingFixture struct {
	bookings *MockBookingStore
	users    *MockUserDirectory
	items    *MockItemCatalog
	svc      *BookingService
	now      time.Time
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	logger := zerolog.Nop()
	f := &bookingFixture{
		bookings: new(MockBookingStore),
		users:    new(MockUserDirectory),
		items:    new(MockItemCatalog),
		now:      time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewBookingService(f.bookings, f.users, f.items, fixedClock{now: f.now}, nil, nil, 10, &logger)
	return f
}

func (f *bookingFixture) user(id int64) *models.User {
	return &models.User{ID: id, Name: "user", Email: "user@example.com"}
}

func (f *bookingFixture) item(id, ownerID int64, available bool) *models.Item {
	return &models.Item{ID: id, OwnerID: ownerID, Name: "drill", Available: available}
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()
		f.bookings.On("SaveBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.ID == 0 && b.ItemID == 5 && b.BookerID == 2 && b.Status == models.StatusWaiting
		})).Return(&models.Booking{ID: 7, ItemID: 5, BookerID: 2, StartDate: start, EndDate: end, Status: models.StatusWaiting}, nil).Once()

		booking, err := f.svc.Create(ctx, 2, 5, start, end)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), booking.ID)
		assert.Equal(t, models.StatusWaiting, booking.Status)
		f.bookings.AssertExpectations(t)
	})

	t.Run("EndEqualsStart", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()

		_, err := f.svc.Create(ctx, 2, 5, start, start)
		assert.ErrorIs(t, err, ErrInvalidInterval)
		f.bookings.AssertNotCalled(t, "SaveBooking", mock.Anything, mock.Anything)
	})

	t.Run("SubSecondIntervalRejected", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()

		// Shorter than the stored precision: both bounds collapse to
		// the same second.
		_, err := f.svc.Create(ctx, 2, 5, start, start.Add(500*time.Millisecond))
		assert.ErrorIs(t, err, ErrInvalidInterval)
		f.bookings.AssertNotCalled(t, "SaveBooking", mock.Anything, mock.Anything)
	})

	t.Run("SubSecondPrecisionDropped", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()
		f.bookings.On("SaveBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.StartDate.Equal(start) && b.EndDate.Equal(end)
		})).Return(&models.Booking{ID: 7, ItemID: 5, BookerID: 2, StartDate: start, EndDate: end, Status: models.StatusWaiting}, nil).Once()

		_, err := f.svc.Create(ctx, 2, 5, start.Add(250*time.Millisecond), end.Add(700*time.Millisecond))
		assert.NoError(t, err)
		f.bookings.AssertExpectations(t)
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()

		_, err := f.svc.Create(ctx, 2, 5, start, start.Add(-time.Hour))
		assert.ErrorIs(t, err, ErrInvalidInterval)
	})

	t.Run("ItemNotAvailable", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, false), nil).Once()

		_, err := f.svc.Create(ctx, 2, 5, start, end)
		assert.ErrorIs(t, err, ErrNotAvailable)
	})

	t.Run("OwnBooking", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(1)).Return(f.user(1), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()

		_, err := f.svc.Create(ctx, 1, 5, start, end)
		assert.ErrorIs(t, err, ErrSelfBooking)
	})

	t.Run("UnknownBooker", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(99)).Return(nil, database.ErrUserNotFound).Once()

		_, err := f.svc.Create(ctx, 99, 5, start, end)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
	})

	t.Run("UnknownItem", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.items.On("GetItem", ctx, int64(42)).Return(nil, database.ErrItemNotFound).Once()

		_, err := f.svc.Create(ctx, 2, 42, start, end)
		assert.ErrorIs(t, err, database.ErrItemNotFound)
	})
}

func TestBookingService_Decide(t *testing.T) {
	ctx := context.Background()

	waiting := func() *models.Booking {
		return &models.Booking{ID: 7, ItemID: 5, BookerID: 2, Status: models.StatusWaiting}
	}

	t.Run("Approve", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(1)).Return(f.user(1), nil).Once()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(waiting(), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()
		f.bookings.On("SaveBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.ID == 7 && b.Status == models.StatusApproved
		})).Return(&models.Booking{ID: 7, ItemID: 5, BookerID: 2, Status: models.StatusApproved}, nil).Once()

		booking, err := f.svc.Decide(ctx, 1, 7, true)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusApproved, booking.Status)
	})

	t.Run("Reject", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(1)).Return(f.user(1), nil).Once()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(waiting(), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()
		f.bookings.On("SaveBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.ID == 7 && b.Status == models.StatusRejected
		})).Return(&models.Booking{ID: 7, ItemID: 5, BookerID: 2, Status: models.StatusRejected}, nil).Once()

		booking, err := f.svc.Decide(ctx, 1, 7, false)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusRejected, booking.Status)
	})

	t.Run("NotOwnerSeesNotFound", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(3)).Return(f.user(3), nil).Once()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(waiting(), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()

		_, err := f.svc.Decide(ctx, 3, 7, true)
		assert.ErrorIs(t, err, database.ErrBookingNotFound)
		f.bookings.AssertNotCalled(t, "SaveBooking", mock.Anything, mock.Anything)
	})

	t.Run("BookerCannotDecideOwnRequest", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(waiting(), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()

		_, err := f.svc.Decide(ctx, 2, 7, true)
		assert.ErrorIs(t, err, database.ErrBookingNotFound)
	})

	t.Run("AlreadyApproved", func(t *testing.T) {
		f := newBookingFixture(t)
		approved := &models.Booking{ID: 7, ItemID: 5, BookerID: 2, Status: models.StatusApproved}
		f.users.On("GetUser", ctx, int64(1)).Return(f.user(1), nil).Twice()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(approved, nil).Twice()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Twice()

		_, err := f.svc.Decide(ctx, 1, 7, true)
		assert.ErrorIs(t, err, ErrAlreadyApproved)

		// Demoting an approved booking is refused the same way.
		_, err = f.svc.Decide(ctx, 1, 7, false)
		assert.ErrorIs(t, err, ErrAlreadyApproved)
	})

	t.Run("RejectedCanBeReDecided", func(t *testing.T) {
		f := newBookingFixture(t)
		rejected := &models.Booking{ID: 7, ItemID: 5, BookerID: 2, Status: models.StatusRejected}
		f.users.On("GetUser", ctx, int64(1)).Return(f.user(1), nil).Once()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(rejected, nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()
		f.bookings.On("SaveBooking", ctx, mock.MatchedBy(func(b *models.Booking) bool {
			return b.Status == models.StatusApproved
		})).Return(&models.Booking{ID: 7, ItemID: 5, BookerID: 2, Status: models.StatusApproved}, nil).Once()

		booking, err := f.svc.Decide(ctx, 1, 7, true)
		assert.NoError(t, err)
		assert.Equal(t, models.StatusApproved, booking.Status)
	})
}

func TestBookingService_GetVisible(t *testing.T) {
	ctx := context.Background()
	booking := &models.Booking{ID: 7, ItemID: 5, BookerID: 2, Status: models.StatusWaiting}

	t.Run("Booker", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(booking, nil).Once()

		got, err := f.svc.GetVisible(ctx, 2, 7)
		assert.NoError(t, err)
		assert.Equal(t, booking, got)
		f.items.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
	})

	t.Run("Owner", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(1)).Return(f.user(1), nil).Once()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(booking, nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()

		got, err := f.svc.GetVisible(ctx, 1, 7)
		assert.NoError(t, err)
		assert.Equal(t, booking, got)
	})

	t.Run("StrangerSeesNotFound", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(9)).Return(f.user(9), nil).Once()
		f.bookings.On("GetBooking", ctx, int64(7)).Return(booking, nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()

		_, err := f.svc.GetVisible(ctx, 9, 7)
		assert.ErrorIs(t, err, database.ErrBookingNotFound)
	})
}

func TestBookingService_Lists(t *testing.T) {
	ctx := context.Background()

	t.Run("BookerQueryCarriesStateAndPaging", func(t *testing.T) {
		f := newBookingFixture(t)
		expected := []*models.Booking{{ID: 3}, {ID: 1}}
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.bookings.On("QueryByBooker", ctx, int64(2), models.StateFuture, f.now,
			domain.QueryOptions{Order: domain.OrderStartDesc, Offset: 4, Limit: 2}).
			Return(expected, nil).Once()

		got, err := f.svc.ListForBooker(ctx, 2, "future", 4, 2)
		assert.NoError(t, err)
		assert.Equal(t, expected, got)
	})

	t.Run("OwnerQuery", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(1)).Return(f.user(1), nil).Once()
		f.bookings.On("QueryByOwner", ctx, int64(1), models.StateAll, f.now,
			domain.QueryOptions{Order: domain.OrderStartDesc, Offset: 0, Limit: 10}).
			Return([]*models.Booking{}, nil).Once()

		got, err := f.svc.ListForOwner(ctx, 1, "ALL", 0, 0)
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("UnsupportedState", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()

		_, err := f.svc.ListForBooker(ctx, 2, "SOMEDAY", 0, 10)
		assert.ErrorIs(t, err, ErrUnsupportedState)
		f.bookings.AssertNotCalled(t, "QueryByBooker", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NegativeOffsetClampedAndSizeDefaulted", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.bookings.On("QueryByBooker", ctx, int64(2), models.StateWaiting, f.now,
			domain.QueryOptions{Order: domain.OrderStartDesc, Offset: 0, Limit: 10}).
			Return([]*models.Booking{}, nil).Once()

		_, err := f.svc.ListForBooker(ctx, 2, "WAITING", -5, 0)
		assert.NoError(t, err)
		f.bookings.AssertExpectations(t)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		f := newBookingFixture(t)
		f.users.On("GetUser", ctx, int64(99)).Return(nil, database.ErrUserNotFound).Once()

		_, err := f.svc.ListForOwner(ctx, 99, "ALL", 0, 10)
		assert.ErrorIs(t, err, database.ErrUserNotFound)
	})
}

func TestBookingService_LastNextHelpers(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("PassThrough", func(t *testing.T) {
		f := newBookingFixture(t)
		last := &models.Booking{ID: 1, Status: models.StatusApproved}
		f.bookings.On("LastApprovedBefore", ctx, int64(5), now).Return(last, nil).Once()
		f.bookings.On("NextApprovedAfter", ctx, int64(5), now).Return(nil, nil).Once()

		got, err := f.svc.LastApprovedBefore(ctx, 5, now)
		assert.NoError(t, err)
		assert.Equal(t, last, got)

		next, err := f.svc.NextApprovedAfter(ctx, 5, now)
		assert.NoError(t, err)
		assert.Nil(t, next)
	})

	t.Run("StoreError", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookings.On("LastApprovedBefore", ctx, int64(5), now).Return(nil, errors.New("db error")).Once()

		_, err := f.svc.LastApprovedBefore(ctx, 5, now)
		assert.Error(t, err)
	})
}

func TestBookingService_SideEffects(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	t.Run("CreateEnqueuesSheetsUpsert", func(t *testing.T) {
		f := newBookingFixture(t)
		syncWorker := new(MockSyncWorker)
		logger := zerolog.Nop()
		f.svc = NewBookingService(f.bookings, f.users, f.items, fixedClock{now: f.now}, nil, syncWorker, 10, &logger)

		saved := &models.Booking{ID: 7, ItemID: 5, BookerID: 2, StartDate: start, EndDate: end, Status: models.StatusWaiting}
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()
		f.bookings.On("SaveBooking", ctx, mock.Anything).Return(saved, nil).Once()
		syncWorker.On("EnqueueUpsert", ctx, saved).Return(nil).Once()

		_, err := f.svc.Create(ctx, 2, 5, start, end)
		assert.NoError(t, err)
		syncWorker.AssertExpectations(t)
	})

	t.Run("EnqueueFailureDoesNotFailCreate", func(t *testing.T) {
		f := newBookingFixture(t)
		syncWorker := new(MockSyncWorker)
		logger := zerolog.Nop()
		f.svc = NewBookingService(f.bookings, f.users, f.items, fixedClock{now: f.now}, nil, syncWorker, 10, &logger)

		saved := &models.Booking{ID: 7, ItemID: 5, BookerID: 2, StartDate: start, EndDate: end, Status: models.StatusWaiting}
		f.users.On("GetUser", ctx, int64(2)).Return(f.user(2), nil).Once()
		f.items.On("GetItem", ctx, int64(5)).Return(f.item(5, 1, true), nil).Once()
		f.bookings.On("SaveBooking", ctx, mock.Anything).Return(saved, nil).Once()
		syncWorker.On("EnqueueUpsert", ctx, saved).Return(errors.New("queue full")).Once()

		booking, err := f.svc.Create(ctx, 2, 5, start, end)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), booking.ID)
	})
}
