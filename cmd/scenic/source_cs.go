package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// objectStore is the part of Cloud Storage the report source needs.
type objectStore interface {
	Read(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	Write(ctx context.Context, bucket, object string, data []byte) error
	List(ctx context.Context, bucket, prefix string, pageSize int, pageToken string) ([]*storage.ObjectAttrs, string, error)
}

type csSource struct {
	bucket string
	prefix string
	store  objectStore
}

var _ scenic.ReportStore = (*csSource)(nil)

// newCSSource connects with Application Default Credentials. A non-empty endpoint points the
// client at an unauthenticated emulator such as fake-gcs-server.
func newCSSource(ctx context.Context, bucket, prefix, endpoint string) (*csSource, error) {
	var options []option.ClientOption
	if endpoint != "" {
		options = append(options, option.WithEndpoint(endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}
	return &csSource{
		bucket: bucket,
		prefix: prefix,
		store:  &gcsStore{client: client},
	}, nil
}

func (s *csSource) objectName(runID string) string {
	return s.prefix + runID + ".json"
}

func (s *csSource) Save(ctx context.Context, report *scenic.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal report", goerr.V("run_id", report.RunID))
	}

	object := s.objectName(report.RunID)
	if err := s.store.Write(ctx, s.bucket, object, data); err != nil {
		return goerr.Wrap(err, "failed to write report object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", object),
		)
	}
	return nil
}

func (s *csSource) Load(ctx context.Context, runID string) (*scenic.Report, error) {
	if runID == "" || strings.Contains(runID, "/") {
		return nil, goerr.Wrap(scenic.ErrReportNotFound, "invalid run ID", goerr.V("run_id", runID))
	}

	object := s.objectName(runID)
	reader, err := s.store.Read(ctx, s.bucket, object)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, goerr.Wrap(scenic.ErrReportNotFound, "no report object", goerr.V("object", object))
		}
		return nil, goerr.Wrap(err, "failed to read report object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", object),
		)
	}
	defer func() { _ = reader.Close() }()

	var report scenic.Report
	if err := json.NewDecoder(reader).Decode(&report); err != nil {
		return nil, goerr.Wrap(err, "failed to parse report object",
			goerr.V("bucket", s.bucket),
			goerr.V("object", object),
		)
	}
	return &report, nil
}

func (s *csSource) List(ctx context.Context, query scenic.ReportQuery) (*scenic.ReportPage, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = scenic.DefaultReportPageSize
	}

	attrs, next, err := s.store.List(ctx, s.bucket, s.prefix, pageSize, query.PageToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list objects",
			goerr.V("bucket", s.bucket),
			goerr.V("prefix", s.prefix),
		)
	}

	page := &scenic.ReportPage{
		Reports:       []scenic.ReportSummary{},
		NextPageToken: next,
	}
	for _, attr := range attrs {
		if !strings.HasSuffix(attr.Name, ".json") {
			continue
		}
		runID := strings.TrimSuffix(strings.TrimPrefix(attr.Name, s.prefix), ".json")
		// Skip directory-like entries
		if runID == "" || strings.Contains(runID, "/") {
			continue
		}
		page.Reports = append(page.Reports, scenic.ReportSummary{
			RunID:     runID,
			Size:      attr.Size,
			UpdatedAt: attr.Updated,
		})
	}
	return page, nil
}

type gcsStore struct {
	client *storage.Client
}

func (g *gcsStore) Read(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	return g.client.Bucket(bucket).Object(object).NewReader(ctx)
}

func (g *gcsStore) Write(ctx context.Context, bucket, object string, data []byte) error {
	w := g.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

func (g *gcsStore) List(ctx context.Context, bucket, prefix string, pageSize int, pageToken string) ([]*storage.ObjectAttrs, string, error) {
	it := g.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	pager := iterator.NewPager(it, pageSize, pageToken)

	var attrs []*storage.ObjectAttrs
	next, err := pager.NextPage(&attrs)
	if err != nil {
		return nil, "", err
	}
	return attrs, next, nil
}
