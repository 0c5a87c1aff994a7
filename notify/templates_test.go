package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bokaap-reservations/models"
)

func sampleReservation() models.Reservation {
	return models.Reservation{
		ID: "r1", Name: "Alice", Email: "a@x.com", Phone: "555",
		Date: "2024-01-01", Time: "18:00", Guests: 2, TableNumber: 5,
		Status: models.StatusPending,
	}
}

func TestRender_PerEvent(t *testing.T) {
	tests := []struct {
		event     string
		subject   string
		heading   string
		wantTable bool
	}{
		{EventNew, "Reservation Received - Bokaap Deli", "Thank you for your reservation, Alice!", true},
		{EventConfirmed, "Reservation Confirmed - Bokaap Deli", "Your reservation is confirmed, Alice!", true},
		{EventCancelled, "Reservation Cancelled - Bokaap Deli", "Dear Alice,", false},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			msg, err := Render(tt.event, sampleReservation())
			require.NoError(t, err)
			assert.Equal(t, tt.subject, msg.Subject)
			assert.Contains(t, msg.HTML, tt.heading)
			assert.Contains(t, msg.HTML, "Date: 2024-01-01")
			assert.Contains(t, msg.HTML, "Time: 18:00")
			assert.Contains(t, msg.HTML, "Number of guests: 2")
			if tt.wantTable {
				assert.Contains(t, msg.HTML, "Table: 5")
			} else {
				assert.NotContains(t, msg.HTML, "Table:")
			}
		})
	}
}

func TestRender_EscapesCustomerInput(t *testing.T) {
	r := sampleReservation()
	r.Name = `<script>alert("x")</script>`

	msg, err := Render(EventNew, r)
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.HTML, "&lt;script&gt;")
}

func TestRender_UnknownEvent(t *testing.T) {
	_, err := Render("seated", sampleReservation())
	assert.ErrorIs(t, err, ErrUnknownEvent)
	assert.False(t, Known("seated"))
	assert.True(t, Known(EventCancelled))
}
