package mongo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const userCollectionName = "users"

// mongoUserRepository implements repository.UserRepository using MongoDB.
type mongoUserRepository struct {
	collection *mongo.Collection
}

// NewMongoUserRepository creates a new instance of mongoUserRepository.
// It expects a connected *mongo.Database instance.
func NewMongoUserRepository(db *mongo.Database) repository.UserRepository {
	return &mongoUserRepository{
		collection: db.Collection(userCollectionName),
	}
}

// Create inserts a new user into the database.
func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, errors.New("user email, password hash, and role are required")
	}

	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a user by their MongoDB ObjectID.
func (r *mongoUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail retrieves a user by their email address.
func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByEmailOrPhone retrieves the first user matching either contact field.
// Used to reject duplicate registrations.
func (r *mongoUserRepository) GetByEmailOrPhone(ctx context.Context, email, phone string) (*domain.User, error) {
	filter := bson.M{"$or": []bson.M{
		{"email": email},
		{"phone": phone},
	}}
	return r.findOne(ctx, filter)
}

// PhoneInUse reports whether another user (different from excludeID) already
// owns the given phone number.
func (r *mongoUserRepository) PhoneInUse(ctx context.Context, phone string, excludeID primitive.ObjectID) (bool, error) {
	filter := bson.M{"phone": phone, "_id": bson.M{"$ne": excludeID}}
	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.collection.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Update rewrites the mutable profile fields of a user document.
func (r *mongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	filter := bson.M{"_id": user.ID}
	update := bson.M{"$set": bson.M{
		"name":       user.Name,
		"phone":      user.Phone,
		"isVerified": user.IsVerified,
		"updatedAt":  time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetPassword replaces the stored bcrypt hash.
func (r *mongoUserRepository) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	return r.setFields(ctx, id, bson.M{"passwordHash": passwordHash})
}

// SetLastLogin stamps the most recent successful login.
func (r *mongoUserRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.setFields(ctx, id, bson.M{"lastLoginAt": at})
}

// SetVerified flips the email verification flag.
func (r *mongoUserRepository) SetVerified(ctx context.Context, id primitive.ObjectID, verified bool) error {
	return r.setFields(ctx, id, bson.M{"isVerified": verified})
}

// SetSubscription records an active plan and its expiry on the user.
func (r *mongoUserRepository) SetSubscription(ctx context.Context, id primitive.ObjectID, plan domain.PlanName, validTill time.Time) error {
	return r.setFields(ctx, id, bson.M{
		"subscriptionPlan":      plan,
		"subscriptionValidTill": validTill,
	})
}

// ClearSubscription removes the subscription fields entirely so the document
// reads back with no plan at all.
func (r *mongoUserRepository) ClearSubscription(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$unset": bson.M{"subscriptionPlan": "", "subscriptionValidTill": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetTrainer points a member at their assigned trainer. A nil ObjectID
// clears the assignment.
func (r *mongoUserRepository) SetTrainer(ctx context.Context, memberID, trainerID primitive.ObjectID) error {
	filter := bson.M{"_id": memberID, "role": domain.RoleMember}

	var update bson.M
	if trainerID.IsZero() {
		update = bson.M{
			"$unset": bson.M{"trainerAssigned": ""},
			"$set":   bson.M{"updatedAt": time.Now().UTC()},
		}
	} else {
		update = bson.M{"$set": bson.M{
			"trainerAssigned": trainerID,
			"updatedAt":       time.Now().UTC(),
		}}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ClearTrainer drops the trainer assignment from the given members in one
// pass. Used when a trainer account is removed.
func (r *mongoUserRepository) ClearTrainer(ctx context.Context, memberIDs []primitive.ObjectID) (int64, error) {
	if len(memberIDs) == 0 {
		return 0, nil
	}
	filter := bson.M{"_id": bson.M{"$in": memberIDs}}
	update := bson.M{
		"$unset": bson.M{"trainerAssigned": ""},
		"$set":   bson.M{"updatedAt": time.Now().UTC()},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Delete removes a user document.
func (r *mongoUserRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) setFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns a page of users matching the filter plus the unpaginated
// total, sorted newest first.
func (r *mongoUserRepository) List(ctx context.Context, filter repository.UserFilter, page, limit int) ([]domain.User, int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.IsVerified != nil {
		query["isVerified"] = *filter.IsVerified
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = []bson.M{
			{"name": pattern},
			{"email": pattern},
			{"phone": pattern},
		}
	}
	return r.findPage(ctx, query, page, limit)
}

// ListBySubscription returns a page of members filtered by plan and/or
// whether the subscription is still running.
func (r *mongoUserRepository) ListBySubscription(ctx context.Context, filter repository.SubscriptionFilter, page, limit int) ([]domain.User, int64, error) {
	query := bson.M{
		"role":             domain.RoleMember,
		"subscriptionPlan": bson.M{"$exists": true, "$ne": ""},
	}
	if filter.Plan != "" {
		query["subscriptionPlan"] = filter.Plan
	}
	if filter.IsActive != nil {
		if *filter.IsActive {
			query["subscriptionValidTill"] = bson.M{"$gt": time.Now().UTC()}
		} else {
			query["subscriptionValidTill"] = bson.M{"$lte": time.Now().UTC()}
		}
	}
	return r.findPage(ctx, query, page, limit)
}

func (r *mongoUserRepository) findPage(ctx context.Context, query bson.M, page, limit int) ([]domain.User, int64, error) {
	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	users, err := r.findMany(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// ListByIDs fetches the given users in one query.
func (r *mongoUserRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.User, error) {
	if len(ids) == 0 {
		return []domain.User{}, nil
	}
	return r.findMany(ctx, bson.M{"_id": bson.M{"$in": ids}}, nil)
}

// ListByRole returns every user holding the given role, unpaginated.
func (r *mongoUserRepository) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findMany(ctx, bson.M{"role": role}, opts)
}

// ListMembersWithoutTrainer returns verified members with no trainer assigned.
func (r *mongoUserRepository) ListMembersWithoutTrainer(ctx context.Context) ([]domain.User, error) {
	filter := bson.M{
		"role":            domain.RoleMember,
		"isVerified":      true,
		"trainerAssigned": bson.M{"$exists": false},
	}
	return r.findMany(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

// ListVerifiedTrainers returns up to limit verified trainer accounts.
func (r *mongoUserRepository) ListVerifiedTrainers(ctx context.Context, limit int) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.findMany(ctx, bson.M{"role": domain.RoleTrainer, "isVerified": true}, opts)
}

// ListRecentSubscribers returns the latest members on the given plan,
// regardless of expiry. Feeds the public landing page.
func (r *mongoUserRepository) ListRecentSubscribers(ctx context.Context, plan domain.PlanName, limit int) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.findMany(ctx, bson.M{"role": domain.RoleMember, "subscriptionPlan": plan}, opts)
}

// ListExpiredSubscribers returns members whose plan has lapsed but whose
// documents still carry the stale subscription fields.
func (r *mongoUserRepository) ListExpiredSubscribers(ctx context.Context, now time.Time) ([]domain.User, error) {
	filter := bson.M{
		"role":                  domain.RoleMember,
		"subscriptionPlan":      bson.M{"$exists": true, "$ne": ""},
		"subscriptionValidTill": bson.M{"$lte": now},
	}
	return r.findMany(ctx, filter, nil)
}

// ClearExpiredSubscriptions unsets the subscription fields on every lapsed
// member and reports how many documents were touched.
func (r *mongoUserRepository) ClearExpiredSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	filter := bson.M{
		"role":                  domain.RoleMember,
		"subscriptionPlan":      bson.M{"$exists": true, "$ne": ""},
		"subscriptionValidTill": bson.M{"$lte": now},
	}
	update := bson.M{
		"$unset": bson.M{"subscriptionPlan": "", "subscriptionValidTill": ""},
		"$set":   bson.M{"updatedAt": now},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoUserRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.User, error) {
	var users []domain.User

	var cursor *mongo.Cursor
	var err error
	if opts != nil {
		cursor, err = r.collection.Find(ctx, filter, opts)
	} else {
		cursor, err = r.collection.Find(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

// Count returns the total number of users.
func (r *mongoUserRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountByRole counts users holding the given role.
func (r *mongoUserRepository) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"role": role})
}

// CountVerified counts users by verification state.
func (r *mongoUserRepository) CountVerified(ctx context.Context, verified bool) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"isVerified": verified})
}

// CountActiveSubscriptions counts members whose plan is still running.
func (r *mongoUserRepository) CountActiveSubscriptions(ctx context.Context, now time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"role":                  domain.RoleMember,
		"subscriptionPlan":      bson.M{"$exists": true, "$ne": ""},
		"subscriptionValidTill": bson.M{"$gt": now},
	})
}

// CountBySubscriptionPlan counts members on a plan regardless of expiry.
func (r *mongoUserRepository) CountBySubscriptionPlan(ctx context.Context, plan domain.PlanName) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"role": domain.RoleMember, "subscriptionPlan": plan})
}

// CountActiveBySubscriptionPlan counts members on a plan that is still running.
func (r *mongoUserRepository) CountActiveBySubscriptionPlan(ctx context.Context, plan domain.PlanName, now time.Time) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"role":                  domain.RoleMember,
		"subscriptionPlan":      plan,
		"subscriptionValidTill": bson.M{"$gt": now},
	})
}

// SubscriptionPlanStats groups subscribed members by plan name.
func (r *mongoUserRepository) SubscriptionPlanStats(ctx context.Context) ([]repository.PlanSubscriberCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"role":             domain.RoleMember,
			"subscriptionPlan": bson.M{"$exists": true, "$ne": ""},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$subscriptionPlan",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []repository.PlanSubscriberCount
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []repository.PlanSubscriberCount{}
	}
	return stats, nil
}

// EnsureUserIndexes creates necessary indexes for the users collection.
// Call this once during application startup.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "trainerAssigned", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := db.Collection(userCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
