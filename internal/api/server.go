package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"renthub/internal/config"
	"renthub/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Server exposes the booking, item, item-request and user operations
// over plain HTTP. The acting user is carried in the X-Sharer-User-Id
// header.
type Server struct {
	cfg      config.APIConfig
	bookings domain.BookingService
	items    domain.ItemService
	users    domain.UserService
	requests domain.RequestService
	server   *http.Server
	logger   *zerolog.Logger
}

func NewServer(
	cfg config.APIConfig,
	bookings domain.BookingService,
	items domain.ItemService,
	users domain.UserService,
	requests domain.RequestService,
	userLimiter domain.RateLimiter,
	logger *zerolog.Logger,
) *Server {
	s := &Server{
		cfg:      cfg,
		bookings: bookings,
		items:    items,
		users:    users,
		requests: requests,
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/bookings", s.handleBookings)
	mux.HandleFunc("/bookings/", s.handleBookingSubpath)
	mux.HandleFunc("/items", s.handleItems)
	mux.HandleFunc("/items/", s.handleItemSubpath)
	mux.HandleFunc("/users", s.handleUsers)
	mux.HandleFunc("/users/", s.handleUserSubpath)
	mux.HandleFunc("/requests", s.handleRequests)
	mux.HandleFunc("/requests/", s.handleRequestSubpath)

	global := rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)
	handler := requestIDMiddleware(
		accessLogMiddleware(logger,
			globalLimitMiddleware(global,
				userLimitMiddleware(userLimiter, cfg, logger, mux))))

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the composed handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// actingUser reads the mandatory X-Sharer-User-Id header.
func actingUser(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(headerUserID))
	if raw == "" {
		return 0, fmt.Errorf("%s header is required", headerUserID)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s header must be a positive integer", headerUserID)
	}
	return id, nil
}

// pathID extracts the numeric id segment after the given prefix.
func pathID(path, prefix string) (int64, error) {
	raw := strings.TrimPrefix(path, prefix)
	raw = strings.Trim(raw, "/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id in path")
	}
	return id, nil
}

// pageParams reads from/size query parameters. Missing values default to
// zero; the service substitutes its configured page size.
func pageParams(r *http.Request) (from, size int, err error) {
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		from, err = strconv.Atoi(raw)
		if err != nil || from < 0 {
			return 0, 0, fmt.Errorf("from must be a non-negative integer")
		}
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		size, err = strconv.Atoi(raw)
		if err != nil || size < 1 {
			return 0, 0, fmt.Errorf("size must be a positive integer")
		}
	}
	return from, size, nil
}
