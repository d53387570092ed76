package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/gradix/gradix/internal/models"
	"github.com/gradix/gradix/internal/service"
	"github.com/gradix/gradix/internal/worker/queue"
)

// GradingWorker drives the async pipeline: on each sheet.uploaded event it
// runs OCR, grammar preprocessing and evaluation for the sheet.
type GradingWorker interface {
	Start(ctx context.Context) error
	Stop() error
	ProcessSheet(ctx context.Context, sheetID string) error
}

type gradingWorker struct {
	pool       *WorkerPool
	consumer   queue.Consumer
	ocr        service.OCRService
	preprocess service.PreprocessService
	evaluation service.EvaluationService
	logger     zerolog.Logger
}

func NewGradingWorker(
	pool *WorkerPool,
	consumer queue.Consumer,
	ocr service.OCRService,
	preprocess service.PreprocessService,
	evaluation service.EvaluationService,
	logger zerolog.Logger,
) GradingWorker {
	return &gradingWorker{
		pool:       pool,
		consumer:   consumer,
		ocr:        ocr,
		preprocess: preprocess,
		evaluation: evaluation,
		logger:     logger,
	}
}

func (w *gradingWorker) Start(ctx context.Context) error {
	w.logger.Info().Msg("Starting grading worker")

	if err := w.pool.Start(ctx); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}

	msgs, err := w.consumer.Consume(ctx)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	go w.processMessages(ctx, msgs)

	w.logger.Info().Msg("Grading worker started")
	return nil
}

func (w *gradingWorker) Stop() error {
	w.logger.Info().Msg("Stopping grading worker")

	if err := w.pool.Stop(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}
	if err := w.consumer.Close(); err != nil {
		w.logger.Error().Err(err).Msg("Failed to close queue consumer")
	}

	return nil
}

func (w *gradingWorker) processMessages(ctx context.Context, msgs <-chan queue.Message) {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping message processing")
			return
		case msg, ok := <-msgs:
			if !ok {
				w.logger.Warn().Msg("Message channel closed")
				return
			}

			w.pool.Submit(func() {
				if err := w.processMessage(ctx, msg); err != nil {
					w.logger.Error().Err(err).Msg("Failed to process grading message")

					// Malformed or stale messages are dropped; transient
					// failures go back on the queue.
					if isPermanentError(err) {
						if ackErr := msg.Ack(false); ackErr != nil {
							w.logger.Error().Err(ackErr).Msg("Failed to ack message")
						}
						return
					}

					if nackErr := msg.Nack(false, true); nackErr != nil {
						w.logger.Error().Err(nackErr).Msg("Failed to nack message")
					}
					return
				}

				if err := msg.Ack(false); err != nil {
					w.logger.Error().Err(err).Msg("Failed to ack message")
				}
			})
		}
	}
}

func (w *gradingWorker) processMessage(ctx context.Context, msg queue.Message) error {
	var event models.SheetUploadedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return permanent(fmt.Errorf("failed to unmarshal event: %w", err))
	}

	if strings.TrimSpace(event.SheetID) == "" {
		return permanent(errors.New("empty sheet_id"))
	}

	w.logger.Info().
		Str("sheet_id", event.SheetID).
		Str("exam_id", event.ExamID).
		Msg("Processing uploaded sheet")

	return w.ProcessSheet(ctx, event.SheetID)
}

func (w *gradingWorker) ProcessSheet(ctx context.Context, sheetID string) error {
	if _, err := w.ocr.Run(ctx, sheetID); err != nil {
		if errors.Is(err, service.ErrSheetNotFound) {
			return permanent(fmt.Errorf("sheet vanished before OCR: %w", err))
		}
		return fmt.Errorf("OCR failed: %w", err)
	}

	// Grammar correction is advisory; its own failures are absorbed inside
	// the service.
	if _, err := w.preprocess.Run(ctx, sheetID); err != nil {
		w.logger.Warn().Err(err).Str("sheet_id", sheetID).Msg("Preprocessing skipped")
	}

	if _, _, err := w.evaluation.Evaluate(ctx, sheetID); err != nil {
		if errors.Is(err, service.ErrInvalidTransition) {
			// Already reviewed, nothing left for the pipeline to do.
			return permanent(fmt.Errorf("sheet no longer evaluable: %w", err))
		}
		return fmt.Errorf("evaluation failed: %w", err)
	}

	w.logger.Info().Str("sheet_id", sheetID).Msg("Sheet graded")
	return nil
}

type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return permanentError{err: err}
}

func isPermanentError(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}
