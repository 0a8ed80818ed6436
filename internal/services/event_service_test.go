package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/neighbourhood-connect/backend/internal/dto"
	"github.com/neighbourhood-connect/backend/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func intPtr(n int) *int { return &n }

func createEvent(t *testing.T, events *EventService, organizerID uuid.UUID, title string, max *int) *models.Event {
	t.Helper()
	event, err := events.Create(organizerID, &dto.CreateEventRequest{
		Title:        title,
		Description:  "A get-together",
		EventDate:    time.Now().Add(48 * time.Hour),
		Location:     "Community Hall",
		MaxAttendees: max,
	})
	require.NoError(t, err)
	return event
}

func eventCounter(t *testing.T, db *gorm.DB, eventID uuid.UUID) int {
	t.Helper()
	var event models.Event
	require.NoError(t, db.First(&event, "id = ?", eventID).Error)
	return event.CurrentAttendees
}

func TestCreateEventValidation(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")

	_, err := events.Create(organizer.ID, &dto.CreateEventRequest{MaxAttendees: intPtr(0)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Problems, "Title is required")
	require.Contains(t, verr.Problems, "Event date is required")
	require.Contains(t, verr.Problems, "Maximum attendees must be at least 1")
}

func TestJoinIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "BBQ", nil)

	require.NoError(t, events.Join(event.ID, guest.ID))
	require.NoError(t, events.Join(event.ID, guest.ID))

	require.Equal(t, 1, eventCounter(t, db, event.ID))
	var count int64
	require.NoError(t, db.Model(&models.Attendance{}).Where("event_id = ?", event.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestJoinUnknownEvent(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")

	require.ErrorIs(t, events.Join(uuid.New(), guest.ID), ErrEventNotFound)
}

func TestJoinFullEvent(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	first := seedUser(t, db, "first", "first@example.com", "secret1")
	second := seedUser(t, db, "second", "second@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Tiny dinner", intPtr(1))

	require.NoError(t, events.Join(event.ID, first.ID))
	require.ErrorIs(t, events.Join(event.ID, second.ID), ErrEventFull)

	require.Equal(t, 1, eventCounter(t, db, event.ID))
	// The already-attending user still joins without a capacity error.
	require.NoError(t, events.Join(event.ID, first.ID))
}

func TestLeaveNeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Picnic", nil)

	require.NoError(t, events.Join(event.ID, guest.ID))
	require.NoError(t, events.Leave(event.ID, guest.ID))
	require.Equal(t, 0, eventCounter(t, db, event.ID))

	require.NoError(t, events.Leave(event.ID, guest.ID))
	require.Equal(t, 0, eventCounter(t, db, event.ID))

	// Leaving frees the spot on a capped event.
	capped := createEvent(t, events, organizer.ID, "Capped", intPtr(1))
	require.NoError(t, events.Join(capped.ID, guest.ID))
	require.NoError(t, events.Leave(capped.ID, guest.ID))
	other := seedUser(t, db, "other", "other@example.com", "secret1")
	require.NoError(t, events.Join(capped.ID, other.ID))
}

func TestListUpcomingAnnotations(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")

	joined := createEvent(t, events, organizer.ID, "Joined event", nil)
	createEvent(t, events, organizer.ID, "Other event", nil)
	require.NoError(t, events.Join(joined.ID, guest.ID))

	// Past events are not listed.
	past := createEvent(t, events, organizer.ID, "Past event", nil)
	require.NoError(t, db.Model(&models.Event{}).Where("id = ?", past.ID).
		Update("event_date", time.Now().Add(-24*time.Hour)).Error)

	list, err := events.ListUpcoming(guest.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)

	byTitle := make(map[string]dto.EventResponse, len(list))
	for _, e := range list {
		require.Equal(t, organizer.FullName, e.OrganizerName)
		byTitle[e.Title] = e
	}
	require.True(t, byTitle["Joined event"].IsAttending)
	require.EqualValues(t, 1, byTitle["Joined event"].AttendeeCount)
	require.False(t, byTitle["Other event"].IsAttending)
	require.EqualValues(t, 0, byTitle["Other event"].AttendeeCount)
}

func TestManageDataOrganizerOnly(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Workshop", intPtr(10))
	require.NoError(t, events.Join(event.ID, guest.ID))

	_, err := events.ManageData(event.ID, guest.ID)
	require.ErrorIs(t, err, ErrNotOrganizer)
	_, err = events.ManageData(uuid.New(), organizer.ID)
	require.ErrorIs(t, err, ErrEventNotFound)

	data, err := events.ManageData(event.ID, organizer.ID)
	require.NoError(t, err)
	require.True(t, data.Success)
	require.Equal(t, "Workshop", data.Event.Title)
	require.EqualValues(t, 1, data.Event.CurrentAttendees)
	require.Len(t, data.Attendees, 1)
	require.Equal(t, guest.Email, data.Attendees[0].Email)

	stats := data.Statistics
	require.EqualValues(t, 1, stats.TotalAttendees)
	require.EqualValues(t, 1, stats.RecentSignups)
	require.InDelta(t, 10.0, stats.CapacityPercentage, 0.01)
	require.NotNil(t, stats.SpotsRemaining)
	require.Equal(t, 9, *stats.SpotsRemaining)
}

func TestRemoveAttendee(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Cleanup day", nil)
	require.NoError(t, events.Join(event.ID, guest.ID))

	attendees, err := events.Attendees(event.ID, organizer.ID)
	require.NoError(t, err)
	require.Len(t, attendees, 1)

	require.NoError(t, events.RemoveAttendee(event.ID, organizer.ID, attendees[0].AttendanceID))
	require.Equal(t, 0, eventCounter(t, db, event.ID))

	require.ErrorIs(t, events.RemoveAttendee(event.ID, organizer.ID, attendees[0].AttendanceID), ErrAttendeeNotFound)
	require.Equal(t, 0, eventCounter(t, db, event.ID))
}

func TestUpdateAttendeeStatus(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Book club", nil)
	require.NoError(t, events.Join(event.ID, guest.ID))

	attendees, err := events.Attendees(event.ID, organizer.ID)
	require.NoError(t, err)
	attendanceID := attendees[0].AttendanceID

	require.ErrorIs(t, events.UpdateAttendeeStatus(event.ID, organizer.ID, attendanceID, "banned"), ErrInvalidStatus)

	require.NoError(t, events.UpdateAttendeeStatus(event.ID, organizer.ID, attendanceID, models.AttendanceStatusMaybe))
	var attendance models.Attendance
	require.NoError(t, db.First(&attendance, "id = ?", attendanceID).Error)
	require.Equal(t, models.AttendanceStatusMaybe, attendance.Status)
}

func TestAttendeeDetails(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Street party", nil)
	other := createEvent(t, events, organizer.ID, "Earlier meetup", nil)
	require.NoError(t, events.Join(event.ID, guest.ID))
	require.NoError(t, events.Join(other.ID, guest.ID))

	detail, err := events.AttendeeDetails(event.ID, organizer.ID, guest.ID)
	require.NoError(t, err)
	require.Equal(t, guest.FullName, detail.FullName)
	require.Equal(t, models.AttendanceStatusAttending, detail.Status)
	require.Len(t, detail.OtherEvents, 1)
	require.Equal(t, "Earlier meetup", detail.OtherEvents[0].Title)

	_, err = events.AttendeeDetails(event.ID, organizer.ID, organizer.ID)
	require.ErrorIs(t, err, ErrAttendeeNotFound)
}

func TestExportAttendees(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	organizer := seedUser(t, db, "org", "org@example.com", "secret1")
	guest := seedUser(t, db, "guest", "guest@example.com", "secret1")
	event := createEvent(t, events, organizer.ID, "Garage sale", nil)
	require.NoError(t, events.Join(event.ID, guest.ID))

	rows, err := events.ExportAttendees(event.ID, organizer.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, guest.Email, rows[0].Email)
	require.Equal(t, "N/A", rows[0].Phone)
}

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	events := NewEventService(db)
	alice := seedUser(t, db, "alice", "alice@example.com", "secret1")
	bob := seedUser(t, db, "bob", "bob@example.com", "secret1")

	mine := createEvent(t, events, alice.ID, "My event", nil)
	theirs := createEvent(t, events, bob.ID, "Their event", nil)
	require.NoError(t, events.Join(theirs.ID, alice.ID))
	require.NoError(t, events.Join(mine.ID, bob.ID))

	stats, err := events.DashboardStats(alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.EventsCreated)
	require.EqualValues(t, 1, stats.EventsAttended)
	require.EqualValues(t, 1, stats.NeighboursConnected)
}
