package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"bokaap-reservations/models"
)

const (
	adminCollection       = "admin_users"
	menuCollection        = "menu_items"
	reservationCollection = "reservations"
	setupCollection       = "setup"

	adminSetupMarker = "admin"
)

// ObjectIDs are the primary identifier of every collection. They are converted to
// their hex form at the store boundary.
type dbAdminUser struct {
	ID           bson.ObjectID `bson:"_id,omitempty"`
	Username     string        `bson:"username"`
	PasswordHash string        `bson:"password_hash"`
	CreatedAt    time.Time     `bson:"created_at"`
}

type dbMenuItem struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Name        string        `bson:"name"`
	Description *string       `bson:"description"`
	Price       float64       `bson:"price"`
	Category    string        `bson:"category"`
	ImageURL    *string       `bson:"image_url"`
	IsSpicy     bool          `bson:"is_spicy"`
	CreatedAt   time.Time     `bson:"created_at"`
}

type dbReservationItem struct {
	MenuItemID menuItemRef `bson:"menu_item_id"`
	Quantity   int         `bson:"quantity"`
}

// menuItemRef is stored as a string but also reads the ObjectIDs older
// documents hold, so one legacy item cannot fail a whole listing.
type menuItemRef string

func (m *menuItemRef) UnmarshalBSONValue(typ byte, data []byte) error {
	rv := bson.RawValue{Type: bson.Type(typ), Value: data}
	switch rv.Type {
	case bson.TypeObjectID:
		*m = menuItemRef(rv.ObjectID().Hex())
	case bson.TypeString:
		*m = menuItemRef(rv.StringValue())
	case bson.TypeNull, bson.TypeUndefined:
		*m = ""
	default:
		return fmt.Errorf("menu_item_id: unsupported BSON type %s", rv.Type)
	}
	return nil
}

type dbReservation struct {
	ID               bson.ObjectID       `bson:"_id,omitempty"`
	Name             string              `bson:"name"`
	Email            string              `bson:"email"`
	Phone            string              `bson:"phone"`
	Date             string              `bson:"date"`
	Time             string              `bson:"time"`
	Guests           int                 `bson:"guests"`
	TableNumber      int                 `bson:"table_number"`
	Status           string              `bson:"status"`
	ReservationItems []dbReservationItem `bson:"reservation_items"`
	CreatedAt        time.Time           `bson:"created_at"`
}

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{client: client, db: client.Database(dbName)}
}

// ConnectMongo dials the cluster, verifies it answers and makes sure the indexes
// the stores rely on exist.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{ObjectIDAsHexString: true})
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	slog.Info("MongoDB connection established", "database", dbName)

	s := NewMongoStore(client, dbName)
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

// EnsureIndexes creates the unique username index that keeps concurrent admin
// creation from producing duplicates.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	name, err := s.db.Collection(adminCollection).Indexes().CreateOne(ctx, indexModel)
	if err != nil {
		return fmt.Errorf("create admin username index: %w", err)
	}
	slog.Info("MongoDB index created", "index", name)
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) AdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var doc dbAdminUser
	err := s.db.Collection(adminCollection).FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *MongoStore) CountAdmins(ctx context.Context) (int64, error) {
	return s.db.Collection(adminCollection).CountDocuments(ctx, bson.D{})
}

func (s *MongoStore) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	doc := dbAdminUser{
		ID:           bson.NewObjectID(),
		Username:     admin.Username,
		PasswordHash: admin.PasswordHash,
		CreatedAt:    admin.CreatedAt,
	}
	if _, err := s.db.Collection(adminCollection).InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	admin.ID = doc.ID.Hex()
	return nil
}

// CreateFirstAdmin claims the admin setup marker before inserting. The marker's
// _id is unique, so only one concurrent caller can win it.
func (s *MongoStore) CreateFirstAdmin(ctx context.Context, admin *models.AdminUser) error {
	count, err := s.CountAdmins(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSetupDone
	}

	marker := bson.D{
		{Key: "_id", Value: adminSetupMarker},
		{Key: "created_at", Value: time.Now().UTC()},
	}
	if _, err := s.db.Collection(setupCollection).InsertOne(ctx, marker); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSetupDone
		}
		return err
	}

	if err := s.CreateAdmin(ctx, admin); err != nil {
		// release the marker so setup can be retried
		_, delErr := s.db.Collection(setupCollection).DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": adminSetupMarker})
		if delErr != nil {
			slog.Error("failed to release admin setup marker", "err", delErr)
		}
		return err
	}
	return nil
}

func (s *MongoStore) ListMenuItems(ctx context.Context) ([]models.MenuItem, error) {
	cur, err := s.db.Collection(menuCollection).Find(ctx, bson.D{}, options.Find().SetLimit(PageSize))
	if err != nil {
		return nil, err
	}

	var docs []dbMenuItem
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	items := make([]models.MenuItem, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc.toModel())
	}
	return items, nil
}

func (s *MongoStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	doc := newDBReservation(r)
	doc.ID = bson.NewObjectID()
	if _, err := s.db.Collection(reservationCollection).InsertOne(ctx, doc); err != nil {
		return err
	}
	r.ID = doc.ID.Hex()
	return nil
}

func (s *MongoStore) ListReservations(ctx context.Context) ([]models.Reservation, error) {
	cur, err := s.db.Collection(reservationCollection).Find(ctx, bson.D{}, options.Find().SetLimit(PageSize))
	if err != nil {
		return nil, err
	}

	var docs []dbReservation
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	reservations := make([]models.Reservation, 0, len(docs))
	for _, doc := range docs {
		reservations = append(reservations, *doc.toModel())
	}
	return reservations, nil
}

func (s *MongoStore) GetReservation(ctx context.Context, id string) (*models.Reservation, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc dbReservation
	if err := s.db.Collection(reservationCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (s *MongoStore) UpdateReservationStatus(ctx context.Context, id string, status models.ReservationStatus) (*models.Reservation, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "status", Value: string(status)},
		}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc dbReservation
	err = s.db.Collection(reservationCollection).FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toModel(), nil
}

func (d dbAdminUser) toModel() *models.AdminUser {
	return &models.AdminUser{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
	}
}

func (d dbMenuItem) toModel() models.MenuItem {
	return models.MenuItem{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		IsSpicy:     d.IsSpicy,
		CreatedAt:   d.CreatedAt,
	}
}

func newDBReservation(r *models.Reservation) dbReservation {
	items := make([]dbReservationItem, 0, len(r.ReservationItems))
	for _, it := range r.ReservationItems {
		items = append(items, dbReservationItem{MenuItemID: menuItemRef(it.MenuItemID), Quantity: it.Quantity})
	}
	return dbReservation{
		Name:             r.Name,
		Email:            r.Email,
		Phone:            r.Phone,
		Date:             r.Date,
		Time:             r.Time,
		Guests:           r.Guests,
		TableNumber:      r.TableNumber,
		Status:           string(r.Status),
		ReservationItems: items,
		CreatedAt:        r.CreatedAt,
	}
}

func (d dbReservation) toModel() *models.Reservation {
	items := make([]models.ReservationItem, 0, len(d.ReservationItems))
	for _, it := range d.ReservationItems {
		items = append(items, models.ReservationItem{MenuItemID: string(it.MenuItemID), Quantity: it.Quantity})
	}
	return &models.Reservation{
		ID:               d.ID.Hex(),
		Name:             d.Name,
		Email:            d.Email,
		Phone:            d.Phone,
		Date:             d.Date,
		Time:             d.Time,
		Guests:           d.Guests,
		TableNumber:      d.TableNumber,
		Status:           models.ReservationStatus(d.Status),
		ReservationItems: items,
		CreatedAt:        d.CreatedAt,
	}
}
