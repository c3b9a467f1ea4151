// Package publish writes rendered pages to S3 as a static site. It renders
// each registered page once, with reactive values frozen at their current
// state, and uploads the documents under path-derived keys ("/" becomes
// index.html, "/about" becomes about/index.html).
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/glint-ui/glint/pkg/render"
)

// S3API is the subset of the S3 client the publisher needs.
type S3API interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher uploads rendered pages to an S3 bucket.
type Publisher struct {
	client   S3API
	bucket   string
	prefix   string
	renderer *render.Renderer
	logger   *slog.Logger
}

// New creates a Publisher targeting bucket. prefix is prepended to every
// object key and may be empty.
func New(client S3API, bucket, prefix string) *Publisher {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Publisher{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		renderer: render.NewRenderer(render.RendererConfig{}),
		logger:   slog.Default().With("component", "publish"),
	}
}

// PublishPage renders one page and uploads it. Returns the object key.
func (p *Publisher) PublishPage(ctx context.Context, path string, page render.PageData) (string, error) {
	var buf bytes.Buffer
	if err := p.renderer.RenderPage(&buf, page); err != nil {
		return "", fmt.Errorf("render %s: %w", path, err)
	}

	key := p.prefix + pathToKey(path)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/html; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	p.logger.Info("published page", "path", path, "key", key, "bytes", buf.Len())
	return key, nil
}

// PublishSite uploads every page in the map, in sorted path order so
// failures are deterministic. It stops at the first error.
func (p *Publisher) PublishSite(ctx context.Context, pages map[string]render.PageData) error {
	paths := make([]string, 0, len(pages))
	for path := range pages {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if _, err := p.PublishPage(ctx, path, pages[path]); err != nil {
			return err
		}
	}
	return nil
}

// pathToKey maps a route path to an S3 object key.
func pathToKey(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return "index.html"
	}
	if strings.HasSuffix(path, ".html") {
		return path
	}
	return path + "/index.html"
}
