package google

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"renthub/internal/models"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	bookingsSheetName = "Bookings"
	bookingsHeaderRow = 1
)

// SheetsService mirrors booking rows into a Google spreadsheet so
// operators get a live view without touching the database.
type SheetsService struct {
	service *sheets.Service
	sheetID string

	// rowCache maps booking id to its sheet row to avoid a full scan on
	// every update.
	rowCache map[int64]int
	cacheMu  sync.RWMutex
}

// NewSheetsService authenticates with a service account credentials file.
func NewSheetsService(ctx context.Context, credentialsFile, sheetID string) (*SheetsService, error) {
	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return &SheetsService{
		service:  srv,
		sheetID:  sheetID,
		rowCache: make(map[int64]int),
	}, nil
}

func bookingRow(b *models.Booking) []interface{} {
	return []interface{}{
		strconv.FormatInt(b.ID, 10),
		strconv.FormatInt(b.ItemID, 10),
		strconv.FormatInt(b.BookerID, 10),
		b.StartDate.Format(time.RFC3339),
		b.EndDate.Format(time.RFC3339),
		b.Status,
		b.CreatedAt.Format(time.RFC3339),
	}
}

// UpsertBooking appends the booking row, or rewrites it when it was
// already mirrored.
func (s *SheetsService) UpsertBooking(ctx context.Context, booking *models.Booking) error {
	row, ok := s.cachedRow(booking.ID)
	if !ok {
		var err error
		row, err = s.findRow(ctx, booking.ID)
		if err != nil {
			return err
		}
	}

	values := &sheets.ValueRange{Values: [][]interface{}{bookingRow(booking)}}

	if row == 0 {
		resp, err := s.service.Spreadsheets.Values.
			Append(s.sheetID, bookingsSheetName, values).
			ValueInputOption("RAW").
			InsertDataOption("INSERT_ROWS").
			Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to append booking row: %w", err)
		}
		if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
			if appended, ok := parseRowFromRange(resp.Updates.UpdatedRange); ok {
				s.storeRow(booking.ID, appended)
			}
		}
		return nil
	}

	rangeRef := fmt.Sprintf("%s!A%d", bookingsSheetName, row)
	_, err := s.service.Spreadsheets.Values.
		Update(s.sheetID, rangeRef, values).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update booking row: %w", err)
	}
	return nil
}

// UpdateBookingStatus rewrites only the status cell of a mirrored row.
func (s *SheetsService) UpdateBookingStatus(ctx context.Context, bookingID int64, status string) error {
	row, ok := s.cachedRow(bookingID)
	if !ok {
		var err error
		row, err = s.findRow(ctx, bookingID)
		if err != nil {
			return err
		}
	}
	if row == 0 {
		return fmt.Errorf("booking %d is not mirrored yet", bookingID)
	}

	rangeRef := fmt.Sprintf("%s!F%d", bookingsSheetName, row)
	values := &sheets.ValueRange{Values: [][]interface{}{{status}}}
	_, err := s.service.Spreadsheets.Values.
		Update(s.sheetID, rangeRef, values).
		ValueInputOption("RAW").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update booking status cell: %w", err)
	}
	return nil
}

func (s *SheetsService) cachedRow(bookingID int64) (int, bool) {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	row, ok := s.rowCache[bookingID]
	return row, ok
}

func (s *SheetsService) storeRow(bookingID int64, row int) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.rowCache[bookingID] = row
}

// findRow scans column A for the booking id. Returns 0 when absent.
func (s *SheetsService) findRow(ctx context.Context, bookingID int64) (int, error) {
	rangeRef := fmt.Sprintf("%s!A:A", bookingsSheetName)
	resp, err := s.service.Spreadsheets.Values.Get(s.sheetID, rangeRef).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to read booking id column: %w", err)
	}

	want := strconv.FormatInt(bookingID, 10)
	for i, row := range resp.Values {
		if i < bookingsHeaderRow {
			continue
		}
		if len(row) > 0 && fmt.Sprint(row[0]) == want {
			found := i + 1
			s.storeRow(bookingID, found)
			return found, nil
		}
	}
	return 0, nil
}

// parseRowFromRange extracts the row number from a range like
// "Bookings!A42:G42".
func parseRowFromRange(rangeRef string) (int, bool) {
	digits := ""
	for _, r := range rangeRef {
		if r >= '0' && r <= '9' {
			digits += string(r)
		} else if digits != "" {
			break
		}
	}
	if digits == "" {
		return 0, false
	}
	row, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return row, true
}
