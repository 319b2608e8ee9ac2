package mongo

import (
	"context"
	"errors"
	"time"

	"gymsync/backend/internal/domain"
	"gymsync/backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const paymentCollectionName = "payments"

// mongoPaymentRepository implements repository.PaymentRepository.
type mongoPaymentRepository struct {
	collection *mongo.Collection
}

// NewMongoPaymentRepository creates a new payment repository.
func NewMongoPaymentRepository(db *mongo.Database) repository.PaymentRepository {
	return &mongoPaymentRepository{
		collection: db.Collection(paymentCollectionName),
	}
}

// Create inserts a new payment row.
func (r *mongoPaymentRepository) Create(ctx context.Context, payment *domain.Payment) (primitive.ObjectID, error) {
	if payment.UserID.IsZero() || payment.PlanID.IsZero() {
		return primitive.NilObjectID, errors.New("payment user and plan are required")
	}

	payment.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, payment)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a payment by its ObjectID.
func (r *mongoPaymentRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// GetByIDForUser retrieves a payment only if it belongs to the given user.
func (r *mongoPaymentRepository) GetByIDForUser(ctx context.Context, id, userID primitive.ObjectID) (*domain.Payment, error) {
	return r.findOne(ctx, bson.M{"_id": id, "user": userID})
}

// GetLatestByUser returns the user's most recent payment.
func (r *mongoPaymentRepository) GetLatestByUser(ctx context.Context, userID primitive.ObjectID) (*domain.Payment, error) {
	var payment domain.Payment
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{"user": userID}, opts).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *mongoPaymentRepository) findOne(ctx context.Context, filter bson.M) (*domain.Payment, error) {
	var payment domain.Payment
	err := r.collection.FindOne(ctx, filter).Decode(&payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// Update rewrites the status and refund fields of a payment row.
func (r *mongoPaymentRepository) Update(ctx context.Context, payment *domain.Payment) error {
	filter := bson.M{"_id": payment.ID}
	set := bson.M{
		"paymentStatus": payment.PaymentStatus,
		"updatedAt":     time.Now().UTC(),
	}
	if payment.RefundReason != "" {
		set["refundReason"] = payment.RefundReason
	}
	if payment.RefundedAt != nil {
		set["refundedAt"] = payment.RefundedAt
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func buildPaymentQuery(filter repository.PaymentFilter) bson.M {
	query := bson.M{}
	if !filter.UserID.IsZero() {
		query["user"] = filter.UserID
	}
	if filter.Status != "" {
		query["paymentStatus"] = filter.Status
	}
	if filter.Start != nil || filter.End != nil {
		created := bson.M{}
		if filter.Start != nil {
			created["$gte"] = *filter.Start
		}
		if filter.End != nil {
			created["$lte"] = *filter.End
		}
		query["createdAt"] = created
	}
	return query
}

// List returns a page of payments matching the filter plus the unpaginated
// total, newest first.
func (r *mongoPaymentRepository) List(ctx context.Context, filter repository.PaymentFilter, page, limit int) ([]domain.Payment, int64, error) {
	query := buildPaymentQuery(filter)

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

	payments, err := r.findMany(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	return payments, total, nil
}

// ListRecent returns the latest payments across all users.
func (r *mongoPaymentRepository) ListRecent(ctx context.Context, limit int) ([]domain.Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.findMany(ctx, bson.M{}, opts)
}

func (r *mongoPaymentRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Payment, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var payments []domain.Payment
	if err = cursor.All(ctx, &payments); err != nil {
		return nil, err
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	return payments, nil
}

// SumAmount totals amountPaid over everything the filter matches.
func (r *mongoPaymentRepository) SumAmount(ctx context.Context, filter repository.PaymentFilter) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildPaymentQuery(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amountPaid"},
		}}},
	}
	return r.aggregateTotal(ctx, pipeline)
}

// SumAmountByPlan totals amountPaid for one plan and status.
func (r *mongoPaymentRepository) SumAmountByPlan(ctx context.Context, planID primitive.ObjectID, status domain.PaymentStatus) (float64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"plan": planID, "paymentStatus": status}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"total": bson.M{"$sum": "$amountPaid"},
		}}},
	}
	return r.aggregateTotal(ctx, pipeline)
}

func (r *mongoPaymentRepository) aggregateTotal(ctx context.Context, pipeline mongo.Pipeline) (float64, error) {
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Total float64 `bson:"total"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}

// StatusStats groups matching payments by status with counts and totals.
func (r *mongoPaymentRepository) StatusStats(ctx context.Context, filter repository.PaymentFilter) ([]repository.PaymentStatusStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: buildPaymentQuery(filter)}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$paymentStatus",
			"count":       bson.M{"$sum": 1},
			"totalAmount": bson.M{"$sum": "$amountPaid"},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stats []repository.PaymentStatusStat
	if err = cursor.All(ctx, &stats); err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []repository.PaymentStatusStat{}
	}
	return stats, nil
}

// MonthlyReport buckets payments by year/month with a per-status breakdown
// in each bucket, newest month first. Revenue counts successful payments only.
func (r *mongoPaymentRepository) MonthlyReport(ctx context.Context, start, end *time.Time) ([]repository.MonthlyPaymentReport, error) {
	match := bson.M{}
	if start != nil || end != nil {
		created := bson.M{}
		if start != nil {
			created["$gte"] = *start
		}
		if end != nil {
			created["$lte"] = *end
		}
		match["createdAt"] = created
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":   bson.M{"$year": "$createdAt"},
				"month":  bson.M{"$month": "$createdAt"},
				"status": "$paymentStatus",
			},
			"count":  bson.M{"$sum": 1},
			"amount": bson.M{"$sum": "$amountPaid"},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{"year": "$_id.year", "month": "$_id.month"},
			"statusBreakdown": bson.M{"$push": bson.M{
				"status": "$_id.status",
				"count":  "$count",
				"amount": "$amount",
			}},
			"totalTransactions": bson.M{"$sum": "$count"},
			"totalRevenue": bson.M{"$sum": bson.M{"$cond": bson.A{
				bson.M{"$eq": bson.A{"$_id.status", domain.PaymentSuccess}},
				"$amount",
				0,
			}}},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":               0,
			"year":              "$_id.year",
			"month":             "$_id.month",
			"statusBreakdown":   1,
			"totalTransactions": 1,
			"totalRevenue":      1,
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "year", Value: -1}, {Key: "month", Value: -1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var report []repository.MonthlyPaymentReport
	if err = cursor.All(ctx, &report); err != nil {
		return nil, err
	}
	if report == nil {
		report = []repository.MonthlyPaymentReport{}
	}
	return report, nil
}

// EnsurePaymentIndexes creates indexes for the payments collection.
func EnsurePaymentIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "paymentStatus", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "transactionId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	_, err := db.Collection(paymentCollectionName).Indexes().CreateMany(ctx, indexes)
	return err
}
