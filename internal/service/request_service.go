package service

import (
	"context"

	"renthub/internal/domain"
	"renthub/internal/models"

	"github.com/rs/zerolog"
)

// RequestService manages item requests: users post a description of an
// item they need, owners respond by listing items against the request.
type RequestService struct {
	requests        domain.RequestStore
	users           domain.UserDirectory
	items           domain.ItemCatalog
	defaultPageSize int
	logger          *zerolog.Logger
}

func NewRequestService(
	requests domain.RequestStore,
	users domain.UserDirectory,
	items domain.ItemCatalog,
	defaultPageSize int,
	logger *zerolog.Logger,
) *RequestService {
	if defaultPageSize <= 0 {
		defaultPageSize = 20
	}
	return &RequestService{
		requests:        requests,
		users:           users,
		items:           items,
		defaultPageSize: defaultPageSize,
		logger:          logger,
	}
}

func (s *RequestService) Create(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	requester, err := s.users.GetUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	saved, err := s.requests.SaveRequest(ctx, &models.ItemRequest{
		RequesterID: requester.ID,
		Description: description,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", saved.ID).Int64("requester_id", requester.ID).Msg("item request created")
	return saved, nil
}

// ListOwn returns the caller's requests with their responses, newest
// first.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]*models.ItemRequestView, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	requests, err := s.requests.GetRequestsByRequester(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, requests)
}

// ListOthers returns requests posted by other users, newest first, so
// owners can find items to offer.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestView, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = s.defaultPageSize
	}

	requests, err := s.requests.GetRequestsExcluding(ctx, userID, domain.QueryOptions{Offset: from, Limit: size})
	if err != nil {
		return nil, err
	}
	return s.buildViews(ctx, requests)
}

// Get returns a single request with its responses. Any known user may
// read any request.
func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.ItemRequestView, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, request)
}

func (s *RequestService) buildViews(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestView, error) {
	views := make([]*models.ItemRequestView, 0, len(requests))
	for _, request := range requests {
		view, err := s.buildView(ctx, request)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *RequestService) buildView(ctx context.Context, request *models.ItemRequest) (*models.ItemRequestView, error) {
	items, err := s.items.GetItemsByRequest(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Item{}
	}
	return &models.ItemRequestView{ItemRequest: *request, Items: items}, nil
}
