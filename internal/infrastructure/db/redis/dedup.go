package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// SubmissionDedup provides the fast idempotency path for applicant
// submissions, keyed by the digest of the uploaded image pair. The value is
// the applicant ID created from the first submission, so a replay can return
// the earlier evaluation without recomputing signals.
// Key format: submission:<digest>
type SubmissionDedup struct {
	client *redis.Client
}

// NewSubmissionDedup creates a SubmissionDedup wrapping the given client.
func NewSubmissionDedup(client *redis.Client) *SubmissionDedup {
	return &SubmissionDedup{client: client}
}

// Lookup returns the applicant ID recorded for digest, or "" when unseen.
func (d *SubmissionDedup) Lookup(ctx context.Context, digest string) (string, error) {
	id, err := d.client.Get(ctx, d.key(digest)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("dedup lookup: %w", err)
	}
	return id, nil
}

// Mark records the applicant created from digest (expires after dedupTTL;
// the submission_digest index in Mongo remains the authoritative fallback).
func (d *SubmissionDedup) Mark(ctx context.Context, digest, applicantID string) error {
	return d.client.Set(ctx, d.key(digest), applicantID, dedupTTL).Err()
}

func (d *SubmissionDedup) key(digest string) string {
	return "submission:" + digest
}
