package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
)

const collectionAuditLogs = "audit_logs"

// AuditRepository implements ports.AuditRepository using MongoDB. The
// status+audit pair is written inside a session transaction so the ledger
// never drifts from the applicant record.
type AuditRepository struct {
	db *mongo.Database
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{db: db}
}

// UpdateStatusWithAudit atomically sets the applicant's final status and
// appends the audit entry. Either both writes commit or the transaction
// aborts and the status is unchanged.
func (r *AuditRepository) UpdateStatusWithAudit(ctx context.Context, applicantID string, status domain.VerificationStatus, entry *domain.AuditLogEntry) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("audit: start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		res, err := r.db.Collection(collectionApplicants).UpdateByID(sc, applicantID,
			bson.M{"$set": bson.M{"final_status": string(status)}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, domain.ErrApplicantNotFound
		}

		if _, err := r.db.Collection(collectionAuditLogs).InsertOne(sc, entry); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("audit: status transition: %w", err)
	}
	return nil
}

// Append persists a standalone admin action entry.
func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.Collection(collectionAuditLogs).InsertOne(ctx, entry)
	return err
}

// Query returns a page of audit entries ordered by timestamp and the total
// count. The ledger exposes no update or delete.
func (r *AuditRepository) Query(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditLogEntry, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.ApplicantID != "" {
		query["app_id"] = filter.ApplicantID
	}
	if filter.AdminUsername != "" {
		query["admin_username"] = filter.AdminUsername
	}

	col := r.db.Collection(collectionAuditLogs)
	total, err := col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	order := 1
	if filter.Descending {
		order = -1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: order}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var entries []domain.AuditLogEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// EnsureIndexes creates necessary indexes on the audit_logs collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "app_id", Value: 1}, {Key: "timestamp", Value: 1}}},
		{Keys: bson.D{{Key: "admin_username", Value: 1}}},
	}

	_, err := r.db.Collection(collectionAuditLogs).Indexes().CreateMany(ctx, indexes)
	return err
}
