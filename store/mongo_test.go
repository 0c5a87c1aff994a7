package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"bokaap-reservations/models"
)

func TestDBReservation_RoundTrip(t *testing.T) {
	created := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	in := &models.Reservation{
		Name: "Alice", Email: "a@x.com", Phone: "555",
		Date: "2024-01-01", Time: "18:00", Guests: 2, TableNumber: 5,
		Status:           models.StatusPending,
		ReservationItems: []models.ReservationItem{{MenuItemID: "abc", Quantity: 3}},
		CreatedAt:        created,
	}

	doc := newDBReservation(in)
	doc.ID = bson.NewObjectID()
	out := doc.toModel()

	assert.Equal(t, doc.ID.Hex(), out.ID)
	assert.Equal(t, in.ReservationItems, out.ReservationItems)
	assert.Equal(t, models.StatusPending, out.Status)
	assert.Equal(t, created, out.CreatedAt)
}

func TestDBReservation_NilItemsBecomeEmpty(t *testing.T) {
	out := dbReservation{ID: bson.NewObjectID()}.toModel()
	assert.NotNil(t, out.ReservationItems)
	assert.Empty(t, out.ReservationItems)
}

func TestMongoStore_MalformedIDIsNotFound(t *testing.T) {
	// Malformed ids are rejected before any round trip, so no server is needed.
	s := &MongoStore{}
	_, err := s.GetReservation(context.Background(), "not-an-object-id")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateReservationStatus(context.Background(), "", models.StatusConfirmed)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDBReservation_DecodesObjectIDMenuItems(t *testing.T) {
	itemID := bson.NewObjectID()
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: bson.NewObjectID()},
		{Key: "name", Value: "Alice"},
		{Key: "email", Value: "a@x.com"},
		{Key: "status", Value: "pending"},
		{Key: "reservation_items", Value: bson.A{
			bson.D{{Key: "menu_item_id", Value: itemID}, {Key: "quantity", Value: 2}},
			bson.D{{Key: "menu_item_id", Value: "plain-id"}, {Key: "quantity", Value: 1}},
		}},
	})
	require.NoError(t, err)

	var doc dbReservation
	require.NoError(t, bson.Unmarshal(raw, &doc))

	out := doc.toModel()
	assert.Equal(t, []models.ReservationItem{
		{MenuItemID: itemID.Hex(), Quantity: 2},
		{MenuItemID: "plain-id", Quantity: 1},
	}, out.ReservationItems)
}

func TestDBReservation_RejectsUnexpectedMenuItemType(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "reservation_items", Value: bson.A{
			bson.D{{Key: "menu_item_id", Value: 42}, {Key: "quantity", Value: 1}},
		}},
	})
	require.NoError(t, err)

	var doc dbReservation
	assert.Error(t, bson.Unmarshal(raw, &doc))
}
