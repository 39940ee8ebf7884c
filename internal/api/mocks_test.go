package api

import (
	"context"
	"time"

	"renthub/internal/config"
	"renthub/internal/domain"
	"renthub/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error) {
	args := m.Called(ctx, bookerID, itemID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) Decide(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error) {
	args := m.Called(ctx, ownerID, bookingID, approved)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) GetVisible(ctx context.Context, userID, bookingID int64) (*models.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) ListForBooker(ctx context.Context, userID int64, state string, from, size int) ([]*models.Booking, error) {
	args := m.Called(ctx, userID, state, from, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingService) ListForOwner(ctx context.Context, userID int64, state string, from, size int) ([]*models.Booking, error) {
	args := m.Called(ctx, userID, state, from, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingService) LastApprovedBefore(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) NextApprovedAfter(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

type MockItemService struct {
	mock.Mock
}

func (m *MockItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	args := m.Called(ctx, ownerID, item)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemService) Update(ctx context.Context, ownerID, itemID int64, patch domain.ItemPatch) (*models.Item, error) {
	args := m.Called(ctx, ownerID, itemID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, ownerID, itemID int64) error {
	args := m.Called(ctx, ownerID, itemID)
	return args.Error(0)
}

func (m *MockItemService) Get(ctx context.Context, userID, itemID int64) (*models.ItemView, error) {
	args := m.Called(ctx, userID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemView), args.Error(1)
}

func (m *MockItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemView, error) {
	args := m.Called(ctx, ownerID, from, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemView), args.Error(1)
}

func (m *MockItemService) Search(ctx context.Context, userID int64, text string, from, size int) ([]*models.Item, error) {
	args := m.Called(ctx, userID, text, from, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	args := m.Called(ctx, authorID, itemID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Comment), args.Error(1)
}

type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) Create(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	args := m.Called(ctx, requesterID, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemRequest), args.Error(1)
}

func (m *MockRequestService) ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequestView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequestView), args.Error(1)
}

func (m *MockRequestService) ListOthers(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestView, error) {
	args := m.Called(ctx, userID, from, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequestView), args.Error(1)
}

func (m *MockRequestService) Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestView, error) {
	args := m.Called(ctx, userID, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemRequestView), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Create(ctx context.Context, user *models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id int64, patch domain.UserPatch) (*models.User, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserService) Get(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type serverFixture struct {
	bookings *MockBookingService
	items    *MockItemService
	users    *MockUserService
	requests *MockRequestService
	server   *Server
}

func newServerFixture() *serverFixture {
	logger := zerolog.Nop()
	f := &serverFixture{
		bookings: new(MockBookingService),
		items:    new(MockItemService),
		users:    new(MockUserService),
		requests: new(MockRequestService),
	}
	cfg := config.APIConfig{Port: 8080, RPS: 1000, Burst: 1000, UserLimit: 1000, UserWindowSec: 60}
	f.server = NewServer(cfg, f.bookings, f.items, f.users, f.requests, nil, &logger)
	return f
}
