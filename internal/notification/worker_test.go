package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMailer is a mock implementation of Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, email *Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func queuedEmailRows(emails ...Email) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{
		"id", "team_id", "recipient", "subject", "body_text", "body_html", "kind", "attempts", "max_attempts",
	})
	for _, e := range emails {
		rows.AddRow(e.ID, e.TeamID, e.Recipient, e.Subject, e.BodyText, e.BodyHTML, e.Kind, e.Attempts, e.MaxAttempts)
	}
	return rows
}

func TestWorker_ProcessQueue(t *testing.T) {
	email := Email{
		ID:          uuid.New(),
		TeamID:      uuid.New(),
		Recipient:   "ops@acme.com",
		Subject:     "Connection down",
		BodyText:    "text",
		BodyHTML:    "<p>html</p>",
		Kind:        KindConnectionStatus,
		Attempts:    0,
		MaxAttempts: 5,
	}

	t.Run("successful delivery marks sent", func(t *testing.T) {
		dbMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer dbMock.Close()

		mailer := new(MockMailer)
		mailer.On("Send", mock.Anything, mock.AnythingOfType("*notification.Email")).Return(nil)

		dbMock.ExpectQuery(`SELECT id, team_id, recipient, subject, body_text, body_html, kind, attempts, max_attempts FROM email_queue`).
			WillReturnRows(queuedEmailRows(email))
		dbMock.ExpectExec(`UPDATE email_queue SET status = 'sent', attempts = attempts \+ 1, updated_at = NOW\(\) WHERE id = \$1`).
			WithArgs(email.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		w := NewWorker(dbMock, mailer, testLogger())
		require.NoError(t, w.processQueue(context.Background()))

		mailer.AssertExpectations(t)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("failed delivery schedules a retry with backoff", func(t *testing.T) {
		dbMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer dbMock.Close()

		mailer := new(MockMailer)
		mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

		dbMock.ExpectQuery(`SELECT id, team_id, recipient, subject, body_text, body_html, kind, attempts, max_attempts FROM email_queue`).
			WillReturnRows(queuedEmailRows(email))
		dbMock.ExpectExec(`UPDATE email_queue SET attempts = \$2, last_error = \$3, next_retry_at = \$4, updated_at = NOW\(\) WHERE id = \$1`).
			WithArgs(email.ID, 1, "ses throttled", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		w := NewWorker(dbMock, mailer, testLogger())
		require.NoError(t, w.processQueue(context.Background()))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("exhausted attempts mark the email failed", func(t *testing.T) {
		dbMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer dbMock.Close()

		exhausted := email
		exhausted.Attempts = 4

		mailer := new(MockMailer)
		mailer.On("Send", mock.Anything, mock.Anything).Return(errors.New("mailbox unavailable"))

		dbMock.ExpectQuery(`SELECT id, team_id, recipient, subject, body_text, body_html, kind, attempts, max_attempts FROM email_queue`).
			WillReturnRows(queuedEmailRows(exhausted))
		dbMock.ExpectExec(`UPDATE email_queue SET status = 'failed', attempts = \$2, last_error = \$3, updated_at = NOW\(\) WHERE id = \$1`).
			WithArgs(exhausted.ID, 5, "mailbox unavailable").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		w := NewWorker(dbMock, mailer, testLogger())
		require.NoError(t, w.processQueue(context.Background()))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("permanent rejection fails immediately without retries", func(t *testing.T) {
		dbMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer dbMock.Close()

		mailer := new(MockMailer)
		mailer.On("Send", mock.Anything, mock.Anything).
			Return(fmt.Errorf("%w: MessageRejected", ErrDeliveryRejected))

		dbMock.ExpectQuery(`SELECT id, team_id, recipient, subject, body_text, body_html, kind, attempts, max_attempts FROM email_queue`).
			WillReturnRows(queuedEmailRows(email))
		dbMock.ExpectExec(`UPDATE email_queue SET status = 'failed', attempts = \$2, last_error = \$3, updated_at = NOW\(\) WHERE id = \$1`).
			WithArgs(email.ID, 1, "email delivery rejected: MessageRejected").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		w := NewWorker(dbMock, mailer, testLogger())
		require.NoError(t, w.processQueue(context.Background()))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("empty queue delivers nothing", func(t *testing.T) {
		dbMock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer dbMock.Close()

		mailer := new(MockMailer)

		dbMock.ExpectQuery(`SELECT id, team_id, recipient, subject, body_text, body_html, kind, attempts, max_attempts FROM email_queue`).
			WillReturnRows(queuedEmailRows())

		w := NewWorker(dbMock, mailer, testLogger())
		require.NoError(t, w.processQueue(context.Background()))

		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}
