package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	usersCollection       = "access"
	loginEventsCollection = "login_events"
)

// MongoStorage implements Storage on top of a MongoDB database. Email
// uniqueness is enforced by a unique index, so concurrent registrations for
// the same address resolve to exactly one winner.
type MongoStorage struct {
	users  *mongo.Collection
	events *mongo.Collection
}

// NewMongoStorage creates a Storage backed by the given database.
func NewMongoStorage(db *mongo.Database) *MongoStorage {
	return &MongoStorage{
		users:  db.Collection(usersCollection),
		events: db.Collection(loginEventsCollection),
	}
}

// userDoc is the persisted shape of a User. IsVerified is a pointer so that
// records written before verification existed decode as verified instead of
// locking those users out.
type userDoc struct {
	UserID             string     `bson:"user_id"`
	Email              string     `bson:"email"`
	PasswordHash       string     `bson:"password"`
	Role               string     `bson:"role,omitempty"`
	IsVerified         *bool      `bson:"is_verified,omitempty"`
	EncryptedMasterKey string     `bson:"encrypted_master_key,omitempty"`
	CreatedAt          time.Time  `bson:"created_at"`
	LastLogin          *time.Time `bson:"last_login,omitempty"`
	LoginCount         int64      `bson:"login_count,omitempty"`
	LastIP             string     `bson:"last_ip,omitempty"`
	LastDeviceType     string     `bson:"last_device_type,omitempty"`
	LastLocation       string     `bson:"last_location,omitempty"`
	LastPageVisited    string     `bson:"last_page_visited,omitempty"`
	DeepestPage        string     `bson:"deepest_page,omitempty"`
	TotalPagesViewed   int64      `bson:"total_pages_viewed,omitempty"`
}

type loginEventDoc struct {
	UserID     string    `bson:"user_id"`
	Email      string    `bson:"email"`
	Timestamp  time.Time `bson:"timestamp"`
	IP         string    `bson:"ip,omitempty"`
	DeviceType string    `bson:"device_type,omitempty"`
	Location   string    `bson:"location,omitempty"`
}

func toDoc(u *User) *userDoc {
	verified := u.IsVerified
	return &userDoc{
		UserID:             u.ID.String(),
		Email:              u.Email,
		PasswordHash:       u.PasswordHash,
		Role:               string(u.Role),
		IsVerified:         &verified,
		EncryptedMasterKey: u.EncryptedMasterKey,
		CreatedAt:          u.CreatedAt,
		LastLogin:          u.LastLogin,
		LoginCount:         u.LoginCount,
		LastIP:             u.LastIP,
		LastDeviceType:     u.LastDeviceType,
		LastLocation:       u.LastLocation,
		LastPageVisited:    u.LastPageVisited,
		DeepestPage:        u.DeepestPage,
		TotalPagesViewed:   u.TotalPagesViewed,
	}
}

func (d *userDoc) toUser() (*User, error) {
	id, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user_id %q: %w", d.UserID, err)
	}

	role := Role(d.Role)
	if !role.Valid() {
		role = RoleUser
	}

	// Records predating email verification carry no flag and stay usable.
	verified := true
	if d.IsVerified != nil {
		verified = *d.IsVerified
	}

	return &User{
		ID:                 id,
		Email:              d.Email,
		PasswordHash:       d.PasswordHash,
		Role:               role,
		IsVerified:         verified,
		EncryptedMasterKey: d.EncryptedMasterKey,
		CreatedAt:          d.CreatedAt,
		LastLogin:          d.LastLogin,
		LoginCount:         d.LoginCount,
		LastIP:             d.LastIP,
		LastDeviceType:     d.LastDeviceType,
		LastLocation:       d.LastLocation,
		LastPageVisited:    d.LastPageVisited,
		DeepestPage:        d.DeepestPage,
		TotalPagesViewed:   d.TotalPagesViewed,
	}, nil
}

// EnsureIndexes creates the unique email index and the login event lookup
// index. MongoDB treats index creation as idempotent.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}

	_, err = s.events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create login event index: %w", err)
	}
	return nil
}

func (s *MongoStorage) CreateUser(ctx context.Context, user *User) error {
	_, err := s.users.InsertOne(ctx, toDoc(user))
	if mongo.IsDuplicateKeyError(err) {
		return ErrEmailAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *MongoStorage) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *MongoStorage) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.findOne(ctx, bson.M{"user_id": id.String()})
}

func (s *MongoStorage) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return doc.toUser()
}

func (s *MongoStorage) ListUsers(ctx context.Context) ([]User, error) {
	cursor, err := s.users.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []User
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		user, err := doc.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (s *MongoStorage) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	return s.updateByEmail(ctx, email, bson.M{"$set": bson.M{"password": passwordHash}})
}

func (s *MongoStorage) SetVerified(ctx context.Context, email string) error {
	return s.updateByEmail(ctx, email, bson.M{"$set": bson.M{"is_verified": true}})
}

func (s *MongoStorage) SetRole(ctx context.Context, id uuid.UUID, role Role) error {
	res, err := s.users.UpdateOne(ctx,
		bson.M{"user_id": id.String()},
		bson.M{"$set": bson.M{"role": string(role)}})
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoStorage) RecordLogin(ctx context.Context, email string, meta LoginMeta) error {
	now := time.Now().UTC()

	set := bson.M{"last_login": now}
	if meta.IP != "" {
		set["last_ip"] = meta.IP
	}
	if meta.DeviceType != "" {
		set["last_device_type"] = meta.DeviceType
	}
	if meta.Location != "" {
		set["last_location"] = meta.Location
	}

	var doc userDoc
	err := s.users.FindOneAndUpdate(ctx,
		bson.M{"email": email},
		bson.M{"$set": set, "$inc": bson.M{"login_count": 1}},
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}

	_, err = s.events.InsertOne(ctx, loginEventDoc{
		UserID:     doc.UserID,
		Email:      email,
		Timestamp:  now,
		IP:         meta.IP,
		DeviceType: meta.DeviceType,
		Location:   meta.Location,
	})
	if err != nil {
		return fmt.Errorf("failed to insert login event: %w", err)
	}
	return nil
}

func (s *MongoStorage) RecordPageVisit(ctx context.Context, email, page string) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, pageVisitUpdate(page))
	if err != nil {
		return fmt.Errorf("failed to record page visit: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// pageVisitUpdate builds a single pipeline update so concurrent visits
// cannot regress the deepest page: the stored page's depth is resolved
// server-side with $indexOfArray and only a strictly deeper page replaces
// it. A plain read-then-$set would let a shallow visit overwrite a deeper
// one that landed in between.
func pageVisitUpdate(page string) mongo.Pipeline {
	storedPage := bson.M{"$ifNull": bson.A{"$deepest_page", ""}}
	storedDepth := bson.M{"$indexOfArray": bson.A{pageDepthOrder, storedPage}}
	deeper := bson.M{"$gt": bson.A{PageDepth(page), storedDepth}}

	return mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"last_page_visited":  page,
		"total_pages_viewed": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$total_pages_viewed", 0}}, 1}},
		"deepest_page":       bson.M{"$cond": bson.A{deeper, page, storedPage}},
	}}}}
}

func (s *MongoStorage) DeleteUser(ctx context.Context, id uuid.UUID) error {
	res, err := s.users.DeleteOne(ctx, bson.M{"user_id": id.String()})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}

	if _, err := s.events.DeleteMany(ctx, bson.M{"user_id": id.String()}); err != nil {
		return fmt.Errorf("failed to delete login events: %w", err)
	}
	return nil
}

func (s *MongoStorage) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

func (s *MongoStorage) CountLogins(ctx context.Context) (int64, error) {
	n, err := s.events.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count login events: %w", err)
	}
	return n, nil
}

func (s *MongoStorage) updateByEmail(ctx context.Context, email string, update bson.M) error {
	res, err := s.users.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
