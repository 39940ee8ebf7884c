package service

import (
	"context"
	"strings"

	"renthub/internal/database"
	"renthub/internal/domain"
	"renthub/internal/models"

	"github.com/rs/zerolog"
)

// ItemService manages listed items, their comments and the derived views
// that enrich owner reads with the last and next approved booking.
type ItemService struct {
	items           domain.ItemCatalog
	users           domain.UserDirectory
	bookings        domain.BookingStore
	comments        domain.CommentStore
	requests        domain.RequestStore
	clock           domain.Clock
	defaultPageSize int
	logger          *zerolog.Logger
}

func NewItemService(
	items domain.ItemCatalog,
	users domain.UserDirectory,
	bookings domain.BookingStore,
	comments domain.CommentStore,
	requests domain.RequestStore,
	clock domain.Clock,
	defaultPageSize int,
	logger *zerolog.Logger,
) *ItemService {
	if clock == nil {
		clock = SystemClock{}
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	return &ItemService{
		items:           items,
		users:           users,
		bookings:        bookings,
		comments:        comments,
		requests:        requests,
		clock:           clock,
		defaultPageSize: defaultPageSize,
		logger:          logger,
	}
}

func (s *ItemService) Create(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	owner, err := s.users.GetUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	toSave := *item
	toSave.ID = 0
	toSave.OwnerID = owner.ID

	// An item listed in response to a request must point at a real one.
	if toSave.RequestID != 0 {
		if _, err := s.requests.GetRequest(ctx, toSave.RequestID); err != nil {
			return nil, err
		}
	}

	saved, err := s.items.SaveItem(ctx, &toSave)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", saved.ID).Int64("owner_id", owner.ID).Msg("item created")
	return saved, nil
}

// Update applies a partial update. Items of other owners are reported as
// not found.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch domain.ItemPatch) (*models.Item, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, database.ErrItemNotFound
	}

	if patch.Name != nil && strings.TrimSpace(*patch.Name) != "" {
		item.Name = *patch.Name
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) != "" {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	return s.items.SaveItem(ctx, item)
}

func (s *ItemService) Delete(ctx context.Context, ownerID, itemID int64) error {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return err
	}
	if item.OwnerID != ownerID {
		return database.ErrItemNotFound
	}

	return s.items.DeleteItem(ctx, itemID)
}

// Get returns the item view. The owner additionally sees the last and
// next approved bookings of the item.
func (s *ItemService) Get(ctx context.Context, userID, itemID int64) (*models.ItemView, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	return s.buildView(ctx, item, item.OwnerID == userID)
}

// ListByOwner returns the owner's items with booking enrichment.
func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemView, error) {
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = s.defaultPageSize
	}

	items, err := s.items.GetItemsByOwner(ctx, ownerID, domain.QueryOptions{Offset: from, Limit: size})
	if err != nil {
		return nil, err
	}

	views := make([]*models.ItemView, 0, len(items))
	for _, item := range items {
		view, err := s.buildView(ctx, item, true)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Search finds available items matching the text. Blank text matches
// nothing.
func (s *ItemService) Search(ctx context.Context, userID int64, text string, from, size int) ([]*models.Item, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return []*models.Item{}, nil
	}

	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = s.defaultPageSize
	}

	return s.items.SearchItems(ctx, text, domain.QueryOptions{Offset: from, Limit: size})
}

// AddComment stores item feedback. The author must have an approved
// booking of the item that already ended.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	author, err := s.users.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	rented, err := s.bookings.HasFinishedApprovedBooking(ctx, item.ID, author.ID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if !rented {
		return nil, ErrNotRented
	}

	comment := &models.Comment{
		ItemID:     item.ID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Text:       text,
	}

	saved, err := s.comments.SaveComment(ctx, comment)
	if err != nil {
		return nil, err
	}
	saved.AuthorName = author.Name
	return saved, nil
}

func (s *ItemService) buildView(ctx context.Context, item *models.Item, asOwner bool) (*models.ItemView, error) {
	comments, err := s.comments.GetCommentsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	view := &models.ItemView{Item: *item, Comments: comments}
	if !asOwner {
		return view, nil
	}

	now := s.clock.Now()
	if view.LastBooking, err = s.bookings.LastApprovedBefore(ctx, item.ID, now); err != nil {
		return nil, err
	}
	if view.NextBooking, err = s.bookings.NextApprovedAfter(ctx, item.ID, now); err != nil {
		return nil, err
	}
	return view, nil
}
