package gcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/veriflow-backend/internal/pkg/ctxutil"
	"github.com/yungbote/veriflow-backend/internal/pkg/logger"
)

// ObjectChecker answers whether an uploaded source object actually exists.
// The contract pipeline uses it to fail fast on a dangling gcsPath before
// paying for an agent run.
type ObjectChecker interface {
	Exists(ctx context.Context, gcsPath string) (bool, error)
}

type objectChecker struct {
	log    *logger.Logger
	client *storage.Client
}

func NewObjectChecker(log *logger.Logger) (ObjectChecker, error) {
	opts := ClientOptionsFromEnv()
	opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &objectChecker{
		log:    log.With("client", "ObjectChecker"),
		client: client,
	}, nil
}

func (c *objectChecker) Exists(ctx context.Context, gcsPath string) (bool, error) {
	bucket, object, err := SplitGCSPath(gcsPath)
	if err != nil {
		return false, err
	}
	_, err = c.client.Bucket(bucket).Object(object).Attrs(ctxutil.Default(ctx))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat gs://%s/%s: %w", bucket, object, err)
	}
	return true, nil
}

// SplitGCSPath splits "gs://bucket/path/to/object" into bucket and object.
func SplitGCSPath(gcsPath string) (bucket, object string, err error) {
	p := strings.TrimSpace(gcsPath)
	if !strings.HasPrefix(p, "gs://") {
		return "", "", fmt.Errorf("not a gs:// path: %q", gcsPath)
	}
	rest := strings.TrimPrefix(p, "gs://")
	idx := strings.Index(rest, "/")
	if idx <= 0 || idx == len(rest)-1 {
		return "", "", fmt.Errorf("malformed gcs path: %q", gcsPath)
	}
	return rest[:idx], rest[idx+1:], nil
}
