package gcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

const (
	artifactListLimit   = 100
	artifactListTimeout = 15 * time.Second
)

// ArtifactStore answers whether the generators already left files for a profile.
type ArtifactStore interface {
	// HasSynopsisArtifact looks under legi/<id>/ for an object whose name mentions
	// "synopsis". Listing failures are returned; callers decide how to degrade.
	HasSynopsisArtifact(ctx context.Context, legislationID int64) (bool, error)
}

type objectLister interface {
	List(ctx context.Context, prefix string, limit int) ([]string, error)
}

type artifactStore struct {
	log    *logger.Logger
	lister objectLister
}

func NewArtifactStore(log *logger.Logger, storageCfg ObjectStorageConfig) (ArtifactStore, error) {
	if err := ValidateObjectStorageConfig(storageCfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "ArtifactStore")

	if storageCfg.Mode == ObjectStorageModeDisabled {
		serviceLog.Warn("Object storage disabled; storage artifact checks always report missing")
		return &artifactStore{log: serviceLog, lister: disabledLister{}}, nil
	}

	client, err := newStorageClientForMode(context.Background(), storageCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	serviceLog.Info(
		"Object storage initialized",
		"mode", storageCfg.Mode,
		"emulator_host", storageCfg.EmulatorHost,
		"bucket", storageCfg.Bucket,
	)
	return &artifactStore{
		log:    serviceLog,
		lister: &gcsLister{bucket: client.Bucket(storageCfg.Bucket)},
	}, nil
}

func newStorageClientForMode(ctx context.Context, storageCfg ObjectStorageConfig) (*storage.Client, error) {
	switch storageCfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadOnly))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		_ = os.Setenv("STORAGE_EMULATOR_HOST", storageCfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{
			Code: ObjectStorageConfigErrorInvalidMode,
			Mode: string(storageCfg.Mode),
		}
	}
}

func legislationPrefix(id int64) string {
	return "legi/" + strconv.FormatInt(id, 10) + "/"
}

func isSynopsisArtifact(objectName string) bool {
	return strings.Contains(strings.ToLower(path.Base(objectName)), "synopsis")
}

func (s *artifactStore) listLegislationArtifacts(ctx context.Context, legislationID int64) ([]string, error) {
	return s.lister.List(ctx, legislationPrefix(legislationID), artifactListLimit)
}

func (s *artifactStore) HasSynopsisArtifact(ctx context.Context, legislationID int64) (bool, error) {
	names, err := s.listLegislationArtifacts(ctx, legislationID)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if isSynopsisArtifact(name) {
			return true, nil
		}
	}
	s.log.Debug("No synopsis artifact", "legislation_id", legislationID, "objects", len(names))
	return false, nil
}

type gcsLister struct {
	bucket *storage.BucketHandle
}

func (l *gcsLister) List(ctx context.Context, prefix string, limit int) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, artifactListTimeout)
	defer cancel()
	it := l.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	out := []string{}
	for limit <= 0 || len(out) < limit {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, attrs.Name)
	}
	return out, nil
}

type disabledLister struct{}

func (disabledLister) List(context.Context, string, int) ([]string, error) { return nil, nil }
