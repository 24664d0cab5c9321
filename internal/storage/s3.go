package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	cfg "github.com/ingestly/docextract/internal/config"
)

// Fetcher materializes remote inputs as local files so the extractors only
// ever deal with paths. Local paths pass through untouched.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (localPath string, cleanup func(), err error)
}

// S3Fetcher downloads s3://bucket/key URIs into the temp directory.
type S3Fetcher struct {
	client *s3.Client
	logger *slog.Logger
}

// NewS3Fetcher connects to S3 with static credentials from the environment.
func NewS3Fetcher(ctx context.Context, c *cfg.Config, logger *slog.Logger) (*S3Fetcher, error) {
	if c.AwsAccessKey == "" || c.AwsSecretKey == "" {
		return nil, fmt.Errorf("AWS credentials not set")
	}
	if c.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(c.AwsRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AwsAccessKey, c.AwsSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &S3Fetcher{client: s3.NewFromConfig(awsCfg), logger: logger}, nil
}

// IsRemote reports whether a batch input needs fetching before extraction.
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "s3://")
}

// Fetch downloads one object to a temp file named after the object so the
// extension-based router still works. The cleanup func removes the file.
func (f *S3Fetcher) Fetch(ctx context.Context, uri string) (string, func(), error) {
	bucket, key, err := splitURI(uri)
	if err != nil {
		return "", nil, err
	}

	local := filepath.Join(os.TempDir(), uuid.NewString()+"-"+path.Base(key))
	out, err := os.Create(local)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	defer out.Close()

	dl := manager.NewDownloader(f.client)
	ctxGet, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	n, err := dl.Download(ctxGet, out, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		os.Remove(local)
		return "", nil, fmt.Errorf("s3 download %s: %w", uri, err)
	}
	f.logger.Debug("fetched remote input", "uri", uri, "bytes", n)

	return local, func() { os.Remove(local) }, nil
}

// Prefetch downloads every remote URI in a batch concurrently, returning the
// inputs rewritten to local paths in the original order plus one combined
// cleanup. Extraction itself stays sequential; only the network transfers
// overlap.
func Prefetch(ctx context.Context, f Fetcher, inputs []string) ([]string, func(), error) {
	locals := make([]string, len(inputs))
	cleanups := make([]func(), len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, in := range inputs {
		if !IsRemote(in) {
			locals[i] = in
			continue
		}
		g.Go(func() error {
			local, cleanup, err := f.Fetch(gctx, in)
			if err != nil {
				return err
			}
			locals[i] = local
			cleanups[i] = cleanup
			return nil
		})
	}

	cleanupAll := func() {
		for _, c := range cleanups {
			if c != nil {
				c()
			}
		}
	}
	if err := g.Wait(); err != nil {
		cleanupAll()
		return nil, nil, err
	}
	return locals, cleanupAll, nil
}

func splitURI(uri string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(uri, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 uri: %q", uri)
	}
	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("malformed s3 uri: %q", uri)
	}
	return bucket, key, nil
}
