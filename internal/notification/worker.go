package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Worker drains the email queue, delivering through the configured Mailer
// with exponential backoff on failure
type Worker struct {
	db     Pool
	mailer Mailer
	logger *slog.Logger
	stopCh chan struct{}
}

func NewWorker(db Pool, mailer Mailer, logger *slog.Logger) *Worker {
	return &Worker{
		db:     db,
		mailer: mailer,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	w.logger.Info("notification worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("notification worker stopped")
			return
		case <-w.stopCh:
			w.logger.Info("notification worker stopped")
			return
		case <-ticker.C:
			if err := w.processQueue(ctx); err != nil {
				w.logger.Error("failed to process email queue", "error", err)
			}
		}
	}
}

func (w *Worker) Stop() {
	close(w.stopCh)
}

func (w *Worker) processQueue(ctx context.Context) error {
	query := `
		SELECT id, team_id, recipient, subject, body_text, body_html, kind, attempts, max_attempts
		FROM email_queue
		WHERE status = 'pending' AND (next_retry_at IS NULL OR next_retry_at <= NOW())
		ORDER BY created_at ASC
		FOR UPDATE SKIP LOCKED
		LIMIT 10
	`

	rows, err := w.db.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query email queue: %w", err)
	}
	defer rows.Close()

	var batch []Email
	for rows.Next() {
		var email Email
		err := rows.Scan(
			&email.ID, &email.TeamID, &email.Recipient,
			&email.Subject, &email.BodyText, &email.BodyHTML,
			&email.Kind, &email.Attempts, &email.MaxAttempts,
		)
		if err != nil {
			w.logger.Error("failed to scan queued email", "error", err)
			continue
		}
		batch = append(batch, email)
	}
	rows.Close()

	for i := range batch {
		w.deliver(ctx, &batch[i])
	}

	return nil
}

func (w *Worker) deliver(ctx context.Context, email *Email) {
	sendCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	err := w.mailer.Send(sendCtx, email)
	if err == nil {
		w.markSent(ctx, email)
		return
	}

	w.logger.Warn("email delivery failed",
		"email_id", email.ID,
		"kind", email.Kind,
		"attempt", email.Attempts+1,
		"error", err,
	)
	w.markFailed(ctx, email, err)
}

func (w *Worker) markSent(ctx context.Context, email *Email) {
	query := `
		UPDATE email_queue
		SET status = 'sent', attempts = attempts + 1, updated_at = NOW()
		WHERE id = $1
	`

	if _, err := w.db.Exec(ctx, query, email.ID); err != nil {
		w.logger.Error("failed to mark email sent", "email_id", email.ID, "error", err)
	}
}

func (w *Worker) markFailed(ctx context.Context, email *Email, sendErr error) {
	attempts := email.Attempts + 1

	// Permanent rejections (suspended account, rejected message) never
	// succeed on retry, so burn no further attempts on them
	if attempts >= email.MaxAttempts || errors.Is(sendErr, ErrDeliveryRejected) {
		query := `
			UPDATE email_queue
			SET status = 'failed', attempts = $2, last_error = $3, updated_at = NOW()
			WHERE id = $1
		`
		if _, err := w.db.Exec(ctx, query, email.ID, attempts, sendErr.Error()); err != nil {
			w.logger.Error("failed to mark email failed", "email_id", email.ID, "error", err)
		}
		return
	}

	// Exponential backoff: 1m, 2m, 4m, ...
	backoff := time.Duration(math.Pow(2, float64(attempts-1))) * time.Minute
	nextRetry := time.Now().Add(backoff)

	query := `
		UPDATE email_queue
		SET attempts = $2, last_error = $3, next_retry_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := w.db.Exec(ctx, query, email.ID, attempts, sendErr.Error(), nextRetry); err != nil {
		w.logger.Error("failed to schedule email retry", "email_id", email.ID, "error", err)
	}
}
