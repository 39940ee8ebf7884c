package domain

import (
	"context"
	"time"

	"renthub/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Order is an explicit sort direction for booking queries. Callers always
// pass it; there is no ambient default comparator.
type Order string

const (
	OrderStartDesc Order = "start_desc"
	OrderStartAsc  Order = "start_asc"
)

// QueryOptions carries pagination and ordering for booking queries. Offset
// is a pure item-count offset, not a page number.
type QueryOptions struct {
	Order  Order
	Offset int
	Limit  int
}

// ItemPatch is a partial item update; nil fields are left unchanged.
type ItemPatch struct {
	Name        *string
	Description *string
	Available   *bool
}

// UserPatch is a partial user update; nil fields are left unchanged.
type UserPatch struct {
	Name       *string
	Email      *string
	TelegramID *int64
}

// Clock supplies the current moment for temporal classification.
type Clock interface {
	Now() time.Time
}

// UserDirectory resolves users by id.
type UserDirectory interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUsers(ctx context.Context) ([]*models.User, error)
	SaveUser(ctx context.Context, user *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// ItemCatalog resolves items by id and supports owner-scoped listing and
// text search.
type ItemCatalog interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	GetItemsByOwner(ctx context.Context, ownerID int64, opts QueryOptions) ([]*models.Item, error)
	GetItemsByRequest(ctx context.Context, requestID int64) ([]*models.Item, error)
	SearchItems(ctx context.Context, text string, opts QueryOptions) ([]*models.Item, error)
	SaveItem(ctx context.Context, item *models.Item) (*models.Item, error)
	DeleteItem(ctx context.Context, id int64) error
}

// RequestStore persists item requests.
type RequestStore interface {
	SaveRequest(ctx context.Context, req *models.ItemRequest) (*models.ItemRequest, error)
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	GetRequestsExcluding(ctx context.Context, requesterID int64, opts QueryOptions) ([]*models.ItemRequest, error)
}

// BookingStore persists bookings and answers state/time scoped queries.
type BookingStore interface {
	SaveBooking(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	QueryByBooker(ctx context.Context, bookerID int64, state models.State, now time.Time, opts QueryOptions) ([]*models.Booking, error)
	QueryByOwner(ctx context.Context, ownerID int64, state models.State, now time.Time, opts QueryOptions) ([]*models.Booking, error)
	LastApprovedBefore(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextApprovedAfter(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasFinishedApprovedBooking(ctx context.Context, itemID, bookerID int64, now time.Time) (bool, error)
}

// CommentStore persists item comments.
type CommentStore interface {
	SaveComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	GetCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

// EventPublisher pushes domain events to in-process subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// RateLimiter answers whether a caller is within its request budget.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// TelegramSender is the slice of the bot API used for notifications.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// SheetsWriter mirrors booking rows to a spreadsheet.
type SheetsWriter interface {
	UpsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error
}

// SyncWorker schedules spreadsheet mirroring jobs.
type SyncWorker interface {
	EnqueueUpsert(ctx context.Context, booking *models.Booking) error
	EnqueueStatus(ctx context.Context, bookingID int64, status string) error
}

// BookingService is the booking lifecycle core.
type BookingService interface {
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	Decide(ctx context.Context, ownerID, bookingID int64, approved bool) (*models.Booking, error)
	GetVisible(ctx context.Context, userID, bookingID int64) (*models.Booking, error)
	ListForBooker(ctx context.Context, userID int64, state string, from, size int) ([]*models.Booking, error)
	ListForOwner(ctx context.Context, userID int64, state string, from, size int) ([]*models.Booking, error)
	LastApprovedBefore(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextApprovedAfter(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
}

// ItemService manages items and their derived views.
type ItemService interface {
	Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, ownerID, itemID int64, patch ItemPatch) (*models.Item, error)
	Delete(ctx context.Context, ownerID, itemID int64) error
	Get(ctx context.Context, userID, itemID int64) (*models.ItemView, error)
	ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemView, error)
	Search(ctx context.Context, userID int64, text string, from, size int) ([]*models.Item, error)
	AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

// RequestService manages item requests and their responses.
type RequestService interface {
	Create(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error)
	ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequestView, error)
	ListOthers(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestView, error)
	Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestView, error)
}

// UserService manages user records.
type UserService interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, patch UserPatch) (*models.User, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
}
