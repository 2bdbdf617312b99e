package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/atd-dts/commcheck"
)

// DateFormat is the date portion of a batch file name.
const DateFormat = "2006-01-02"

// Store reads and writes comm status batch files in one S3 bucket.
type Store struct {
	api    s3iface.S3API
	bucket string
}

// New creates a [Store] using the ambient AWS credential chain
// (environment, shared config, instance role).
func New(bucket string) (*Store, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &Store{api: s3.New(sess), bucket: bucket}, nil
}

// NewWithClient creates a [Store] with an injected S3 client, for tests.
func NewWithClient(api s3iface.S3API, bucket string) *Store {
	return &Store{api: api, bucket: bucket}
}

// Key returns the object key for a device type's batch on a given day.
func Key(env, deviceType string, day time.Time) string {
	day = day.UTC()
	return fmt.Sprintf("%s/%s/%d/%d/%s.json",
		env, deviceType, day.Year(), int(day.Month()), day.Format(DateFormat))
}

// Prefix returns the year/month listing prefix containing a day's batch file.
func Prefix(env, deviceType string, day time.Time) string {
	day = day.UTC()
	return fmt.Sprintf("%s/%s/%d/%d", env, deviceType, day.Year(), int(day.Month()))
}

// DateRange returns every day from min through max inclusive.
func DateRange(min, max time.Time) []time.Time {
	var days []time.Time
	for d := min; !d.After(max); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Prefixes returns the deduplicated, sorted listing prefixes covering a set
// of days.
func Prefixes(env, deviceType string, days []time.Time) []string {
	seen := make(map[string]struct{}, len(days))
	for _, d := range days {
		seen[Prefix(env, deviceType, d)] = struct{}{}
	}

	prefixes := make([]string, 0, len(seen))
	for p := range seen {
		prefixes = append(prefixes, p)
	}
	sort.Strings(prefixes)
	return prefixes
}

// Upload writes a batch of records as one JSON file at key.
func (s *Store) Upload(ctx context.Context, key string, records []commcheck.Record) error {
	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to encode batch: %w", err)
	}

	_, err = s.api.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// Download fetches one batch file and decodes its rows.
//
// Rows decode as loose field maps because published batches are forwarded to
// the portal as-is, whatever schema version wrote them.
func (s *Store) Download(ctx context.Context, key string) ([]map[string]any, error) {
	out, err := s.api.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return rows, nil
}

// ListExisting returns the candidate keys that actually exist in the bucket.
//
// Candidates are matched by listing each year/month prefix; keys come back
// sorted, so a multi-day publish replays files in date order.
func (s *Store) ListExisting(ctx context.Context, prefixes []string, candidates []string) ([]string, error) {
	want := make(map[string]struct{}, len(candidates))
	for _, k := range candidates {
		want[k] = struct{}{}
	}

	var found []string
	for _, prefix := range prefixes {
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		}
		err := s.api.ListObjectsV2PagesWithContext(ctx, input,
			func(page *s3.ListObjectsV2Output, lastPage bool) bool {
				for _, obj := range page.Contents {
					key := aws.StringValue(obj.Key)
					if _, ok := want[key]; ok {
						found = append(found, key)
					}
				}
				return true
			})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
	}

	sort.Strings(found)
	return found, nil
}
