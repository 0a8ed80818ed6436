package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neighbourhood-connect/backend/internal/dto"
	"github.com/neighbourhood-connect/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newBroadcastFixture(t *testing.T) (*NotificationService, *EventService, *fakeMailer, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	fm := &fakeMailer{}
	return NewNotificationService(db, fm), NewEventService(db), fm, db
}

func TestBroadcastEventIdempotent(t *testing.T) {
	notifications, events, fm, db := newBroadcastFixture(t)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	seedUser(t, db, "alice", "alice@example.com", "secret1")

	// Unverified and deactivated accounts are never broadcast to.
	unverified := seedUser(t, db, "bob", "bob@example.com", "secret1")
	require.NoError(t, db.Model(unverified).Update("is_verified", false).Error)
	inactive := seedUser(t, db, "carol", "carol@example.com", "secret1")
	require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

	event := createEvent(t, events, organizer.ID, "Summer fair", nil)

	result, err := notifications.BroadcastEvent(event.ID)
	require.NoError(t, err)
	require.False(t, result.AlreadyBroadcast)
	require.Equal(t, 2, result.Recipients)
	require.Equal(t, 2, result.Delivered)
	require.Equal(t, 0, result.Failed)
	require.Equal(t, 2, fm.sentCount())

	again, err := notifications.BroadcastEvent(event.ID)
	require.NoError(t, err)
	require.True(t, again.AlreadyBroadcast)
	require.Equal(t, 2, fm.sentCount())

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).
		Where("type = ? AND reference_id = ?", models.NotificationTypeEvent, event.ID).
		Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestBroadcastEventUnknown(t *testing.T) {
	notifications, _, _, _ := newBroadcastFixture(t)
	_, err := notifications.BroadcastEvent(uuid.New())
	require.ErrorIs(t, err, ErrEventNotFound)
}

func TestBroadcastRecordsDeliveryFailure(t *testing.T) {
	notifications, events, fm, db := newBroadcastFixture(t)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Quiz night", nil)

	fm.fail = true
	result, err := notifications.BroadcastEvent(event.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Recipients)
	require.Equal(t, 0, result.Delivered)
	require.Equal(t, 1, result.Failed)

	// The notification row survives the delivery failure and records it.
	var row models.Notification
	require.NoError(t, db.Where("type = ? AND reference_id = ?", models.NotificationTypeEvent, event.ID).
		First(&row).Error)
	var delivery map[string]interface{}
	require.NoError(t, json.Unmarshal(row.Delivery, &delivery))
	require.Equal(t, false, delivery["email_sent"])
	require.Equal(t, "delivery failed", delivery["error"])

	// A failed broadcast still counts as attempted.
	again, err := notifications.BroadcastEvent(event.ID)
	require.NoError(t, err)
	require.True(t, again.AlreadyBroadcast)
}

func TestMessageAttendees(t *testing.T) {
	notifications, events, _, db := newBroadcastFixture(t)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	attending := seedUser(t, db, "alice", "alice@example.com", "secret1")
	maybe := seedUser(t, db, "bob", "bob@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Potluck", nil)
	require.NoError(t, events.Join(event.ID, attending.ID))
	require.NoError(t, events.Join(event.ID, maybe.ID))

	attendees, err := events.Attendees(event.ID, organizer.ID)
	require.NoError(t, err)
	for _, a := range attendees {
		if a.UserID == maybe.ID {
			require.NoError(t, events.UpdateAttendeeStatus(event.ID, organizer.ID, a.AttendanceID, models.AttendanceStatusMaybe))
		}
	}

	_, _, err = notifications.MessageAttendees(event, organizer.FullName, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	sent, total, err := notifications.MessageAttendees(event, organizer.FullName, "Bring a dish!")
	require.NoError(t, err)
	require.Equal(t, 1, sent)
	require.Equal(t, 1, total)

	list, err := notifications.ListForUser(attending.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, models.NotificationTypeMessage, list[0].Type)
	require.Contains(t, list[0].Title, organizer.FullName)

	// Organizer messages do not mark the event as broadcast.
	result, err := notifications.BroadcastEvent(event.ID)
	require.NoError(t, err)
	require.False(t, result.AlreadyBroadcast)
}

func TestMarkRead(t *testing.T) {
	notifications, events, _, db := newBroadcastFixture(t)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	reader := seedUser(t, db, "alice", "alice@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Yard swap", nil)

	_, err := notifications.BroadcastEvent(event.ID)
	require.NoError(t, err)

	list, err := notifications.ListForUser(reader.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.False(t, list[0].IsRead)

	// Only the owner can mark it read.
	require.ErrorIs(t, notifications.MarkRead(organizer.ID, list[0].ID), gorm.ErrRecordNotFound)
	require.NoError(t, notifications.MarkRead(reader.ID, list[0].ID))

	list, err = notifications.ListForUser(reader.ID)
	require.NoError(t, err)
	require.True(t, list[0].IsRead)
}

func TestBroadcastRecipients(t *testing.T) {
	notifications, events, _, db := newBroadcastFixture(t)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	seedUser(t, db, "alice", "alice@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Movie night", nil)

	_, err := notifications.BroadcastEvent(event.ID)
	require.NoError(t, err)

	recipients, err := notifications.BroadcastRecipients(event.ID)
	require.NoError(t, err)
	require.Len(t, recipients, 2)
	emails := []string{recipients[0].Email, recipients[1].Email}
	require.Contains(t, emails, "alice@example.com")
	require.Contains(t, emails, "org@example.com")
	require.WithinDuration(t, time.Now(), recipients[0].SentAt, time.Minute)
}

// Guard against the event service growing a dependency on the broadcast
// having happened: creation and announcement stay independent.
func TestCreateThenBroadcastRoundTrip(t *testing.T) {
	notifications, events, _, db := newBroadcastFixture(t)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")

	event, err := events.Create(organizer.ID, &dto.CreateEventRequest{
		Title:     "Fun run",
		EventDate: time.Now().Add(72 * time.Hour),
	})
	require.NoError(t, err)

	result, err := notifications.BroadcastEvent(event.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Recipients)
}
