package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/veriflow/kyc-system/internal/core/domain"
	"github.com/veriflow/kyc-system/internal/core/ports"
)

const collectionApplicants = "applicants"

type ApplicantRepository struct {
	col *mongo.Collection
}

func NewApplicantRepository(db *mongo.Database) *ApplicantRepository {
	return &ApplicantRepository{col: db.Collection(collectionApplicants)}
}

// Create inserts a new applicant document.
func (r *ApplicantRepository) Create(ctx context.Context, a *domain.Applicant) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, a)
	return err
}

func (r *ApplicantRepository) FindByID(ctx context.Context, id string) (*domain.Applicant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Applicant
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicantNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindBySubmissionDigest retrieves the applicant created from an earlier
// submission of the same image pair.
func (r *ApplicantRepository) FindBySubmissionDigest(ctx context.Context, digest string) (*domain.Applicant, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var a domain.Applicant
	err := r.col.FindOne(ctx, bson.M{"submission_digest": digest}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrApplicantNotFound
		}
		return nil, err
	}
	return &a, nil
}

// List returns a page of applicants matching filter, newest first, and the
// total count. Search matches name, ai_suggestion and final_status, mirroring
// the dashboard search box.
func (r *ApplicantRepository) List(ctx context.Context, filter ports.ListApplicantsFilter) ([]*domain.Applicant, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Status != "" {
		query["final_status"] = filter.Status
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": filter.Search, "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"risk.ai_suggestion": pattern},
			bson.M{"final_status": pattern},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var applicants []*domain.Applicant
	if err := cursor.All(ctx, &applicants); err != nil {
		return nil, 0, err
	}
	return applicants, total, nil
}

// UpdateAssessment replaces the computed evidence after a re-evaluation,
// leaving final_status untouched.
func (r *ApplicantRepository) UpdateAssessment(ctx context.Context, id string, fields domain.ExtractedFields, signals domain.SignalBundle, risk domain.RiskAssessment) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{
		"signals": signals,
		"risk":    risk,
	}
	if fields.Name != "" {
		set["name"] = fields.Name
	}
	if fields.DateOfBirth != nil {
		set["dob"] = fields.DateOfBirth
	}

	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrApplicantNotFound
	}
	return nil
}

// CountByStatus returns applicant totals per final status via aggregation.
func (r *ApplicantRepository) CountByStatus(ctx context.Context) (map[domain.VerificationStatus]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$final_status", "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status domain.VerificationStatus `bson:"_id"`
		Count  int64                     `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := make(map[domain.VerificationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// EnsureIndexes creates necessary indexes on the applicants collection.
func (r *ApplicantRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "submission_digest", Value: 1}}},
		{Keys: bson.D{{Key: "final_status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
