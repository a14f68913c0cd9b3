package impl

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"pickup/internal/domain/entity"
	domainerrors "pickup/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingJSON(id int64, status, payment, total string) string {
	return fmt.Sprintf(`{"id":%d,"waste_type":{"id":1,"name":"Organic","price_per_kg":"10.00"},`+
		`"quantity_kg":"5.00","pickup_date":"2026-03-02","pickup_time":"10:30","address":"12 Park Road",`+
		`"status":%q,"payment_status":%q,"total_price":%q,"created_at":"2026-03-01T09:00:00Z"}`,
		id, status, payment, total)
}

func TestBookingService_History_KeepsServerOrder(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)
	s.api.Reply(http.MethodGet, pathBookingHistory, http.StatusOK,
		"["+bookingJSON(3, "pending", "pending", "50.00")+","+bookingJSON(1, "completed", "paid", "20.00")+"]")
	srv := s.bookingService(t, nil, nil)

	bookings, err := srv.History(context.Background())

	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, int64(3), bookings[0].ID)
	assert.Equal(t, int64(1), bookings[1].ID)
	assert.Equal(t, "Organic", bookings[0].WasteTypeName())
	assert.Equal(t, "Bearer T1", s.api.Auth(http.MethodGet, pathBookingHistory))
}

func TestBookingService_History_RequiresLogin(t *testing.T) {
	s := createTestServices(t, "")
	srv := s.bookingService(t, nil, nil)

	_, err := srv.History(context.Background())

	assert.True(t, errors.Is(err, domainerrors.ErrLoginRequired))
	assert.Zero(t, s.api.Calls(http.MethodGet, pathBookingHistory))
}

func TestBookingService_Get(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)
	s.api.Reply(http.MethodGet, bookingPath(42), http.StatusOK, bookingJSON(42, "in_progress", "pending", "50.00"))
	srv := s.bookingService(t, nil, nil)

	booking, err := srv.Get(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, entity.BookingInProgress, booking.Status)
	assert.InDelta(t, 50.0, booking.TotalPrice.Float64(), 1e-9)
	assert.False(t, booking.IsPaid())
}

func TestBookingService_Get_NotFound(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)
	s.api.Reply(http.MethodGet, bookingPath(99), http.StatusNotFound, `{"detail":"Not found."}`)
	srv := s.bookingService(t, nil, nil)

	_, err := srv.Get(context.Background(), 99)

	assert.True(t, errors.Is(err, domainerrors.ErrBookingNotFound))
	assert.Equal(t, "Booking not found.", domainerrors.UserMessage(err))
}

func TestBookingService_Dashboard(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)

	rows := []string{
		bookingJSON(7, "pending", "pending", "10.00"),
		bookingJSON(6, "accepted", "paid", "20.25"),
		bookingJSON(5, "in_progress", "paid", "5.00"),
		bookingJSON(4, "completed", "paid", "100.00"),
		bookingJSON(3, "cancelled", "failed", "99.00"),
		bookingJSON(2, "completed", "pending", "1.00"),
	}
	s.api.Reply(http.MethodGet, pathBookingHistory, http.StatusOK, "["+strings.Join(rows, ",")+"]")
	srv := s.bookingService(t, nil, nil)

	dashboard, err := srv.Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Asha", dashboard.User.Name)
	assert.Equal(t, 6, dashboard.Stats.Total)
	assert.Equal(t, 3, dashboard.Stats.Open)
	assert.Equal(t, 2, dashboard.Stats.Completed)
	assert.InDelta(t, 125.25, dashboard.Stats.TotalSpent, 1e-9)
	require.Len(t, dashboard.Recent, 5)
	assert.Equal(t, int64(7), dashboard.Recent[0].ID)
	assert.Equal(t, int64(3), dashboard.Recent[4].ID)
}

func TestBookingService_StartWizard(t *testing.T) {
	s := createTestServices(t, "T1").loggedIn(testUser)
	s.api.Reply(http.MethodGet, pathWasteTypes, http.StatusOK,
		`[{"id":1,"name":"Organic","price_per_kg":"10.00"},{"id":2,"name":"Plastic","price_per_kg":"5.00"}]`)
	srv := s.bookingService(t, nil, nil)

	w, err := srv.StartWizard(context.Background(), 2)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 1, w.State().Step())
	assert.Equal(t, int64(2), w.State().Form().WasteTypeID)
	assert.Len(t, w.WasteTypes(), 2)

	unknown, err := srv.StartWizard(context.Background(), 9)
	require.NoError(t, err)
	defer unknown.Close()

	assert.Zero(t, unknown.State().Form().WasteTypeID)
}

func TestBookingService_StartWizard_RequiresLogin(t *testing.T) {
	s := createTestServices(t, "")
	srv := s.bookingService(t, nil, nil)

	_, err := srv.StartWizard(context.Background(), 0)

	assert.True(t, errors.Is(err, domainerrors.ErrLoginRequired))
}
