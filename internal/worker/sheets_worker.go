package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"renthub/internal/database"
	"renthub/internal/domain"
	"renthub/internal/metrics"
	"renthub/internal/models"

	"github.com/rs/zerolog"
)

const (
	TaskUpsert       = "upsert"
	TaskUpdateStatus = "update_status"
)

// taskPayload is persisted in SyncTask.Payload as JSON.
type taskPayload struct {
	Booking *models.Booking `json:"booking,omitempty"`
	Status  string          `json:"status,omitempty"`
}

// SheetsWorker drains the persisted sync queue and applies tasks to the
// bookings spreadsheet with exponential backoff on failure.
type SheetsWorker struct {
	db           *database.DB
	sheets       domain.SheetsWriter
	retryPolicy  RetryPolicy
	wakeup       chan struct{}
	pollInterval time.Duration
	batchSize    int
	logger       *zerolog.Logger
}

// NewSheetsWorker builds a worker with sane defaults.
func NewSheetsWorker(db *database.DB, sheets domain.SheetsWriter, retry RetryPolicy, logger *zerolog.Logger) *SheetsWorker {
	retry = retry.withDefaults()

	return &SheetsWorker{
		db:           db,
		sheets:       sheets,
		retryPolicy:  retry,
		wakeup:       make(chan struct{}, 1),
		pollInterval: 2 * time.Second,
		batchSize:    20,
		logger:       logger,
	}
}

// EnqueueUpsert schedules mirroring of the full booking row.
func (w *SheetsWorker) EnqueueUpsert(ctx context.Context, booking *models.Booking) error {
	if booking == nil || booking.ID == 0 {
		return fmt.Errorf("booking id is required")
	}
	return w.enqueue(ctx, TaskUpsert, booking.ID, taskPayload{Booking: booking})
}

// EnqueueStatus schedules a status-only cell update.
func (w *SheetsWorker) EnqueueStatus(ctx context.Context, bookingID int64, status string) error {
	if bookingID == 0 {
		return fmt.Errorf("booking id is required")
	}
	return w.enqueue(ctx, TaskUpdateStatus, bookingID, taskPayload{Status: status})
}

func (w *SheetsWorker) enqueue(ctx context.Context, taskType string, bookingID int64, payload taskPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := &models.SyncTask{
		TaskType:  taskType,
		BookingID: bookingID,
		Payload:   string(raw),
		Status:    models.SyncStatusPending,
	}
	if err := w.db.CreateSyncTask(ctx, task); err != nil {
		return err
	}

	// Nudge the loop; a full channel means a wakeup is already pending.
	select {
	case w.wakeup <- struct{}{}:
	default:
	}
	return nil
}

// Run drains the queue until the context is canceled.
func (w *SheetsWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.wakeup:
		case <-ticker.C:
		}

		w.processBatch(ctx)
	}
}

func (w *SheetsWorker) processBatch(ctx context.Context) {
	tasks, err := w.db.GetPendingSyncTasks(ctx, w.batchSize)
	if err != nil {
		w.logger.Error().Err(err).Msg("failed to load pending sync tasks")
		return
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			return
		}
		w.processTask(ctx, task)
	}
}

func (w *SheetsWorker) processTask(ctx context.Context, task models.SyncTask) {
	err := w.applyTask(ctx, task)
	if err == nil {
		if uerr := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil); uerr != nil {
			w.logger.Error().Err(uerr).Int64("task_id", task.ID).Msg("failed to mark sync task completed")
		}
		metrics.IncSyncTask("completed")
		return
	}

	attempt := task.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Int("attempts", attempt).Msg("sync task failed permanently")
		if uerr := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, err.Error(), nil); uerr != nil {
			w.logger.Error().Err(uerr).Int64("task_id", task.ID).Msg("failed to mark sync task failed")
		}
		metrics.IncSyncTask("failed")
		return
	}

	next := time.Now().Add(w.retryPolicy.NextDelay(attempt))
	w.logger.Warn().Err(err).Int64("task_id", task.ID).Time("next_retry", next).Msg("sync task failed, scheduling retry")
	if uerr := w.db.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, err.Error(), &next); uerr != nil {
		w.logger.Error().Err(uerr).Int64("task_id", task.ID).Msg("failed to schedule sync task retry")
	}
	metrics.IncSyncTask("retried")
}

func (w *SheetsWorker) applyTask(ctx context.Context, task models.SyncTask) error {
	var payload taskPayload
	if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch task.TaskType {
	case TaskUpsert:
		if payload.Booking == nil {
			return fmt.Errorf("upsert task without booking")
		}
		return w.sheets.UpsertBooking(ctx, payload.Booking)
	case TaskUpdateStatus:
		return w.sheets.UpdateBookingStatus(ctx, task.BookingID, payload.Status)
	default:
		return fmt.Errorf("unknown task type: %s", task.TaskType)
	}
}
