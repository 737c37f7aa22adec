package main

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
)

// newReportStore returns the store selected by the flags, or nil when neither is set.
func newReportStore(ctx context.Context, dir, uri, endpoint string) (scenic.ReportStore, error) {
	switch {
	case dir != "" && uri != "":
		return nil, goerr.New("--report-dir and --report-uri are mutually exclusive")
	case dir != "":
		return scenic.NewFileReportRepository(dir), nil
	case uri != "":
		bucket, prefix, err := parseGSURI(uri)
		if err != nil {
			return nil, err
		}
		src, err := newCSSource(ctx, bucket, prefix, endpoint)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, nil
	}
}

// parseGSURI splits gs://bucket/prefix. A non-empty prefix always ends with "/".
func parseGSURI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", goerr.New("report URI must start with gs://", goerr.V("uri", uri))
	}

	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", goerr.New("bucket name is empty", goerr.V("uri", uri))
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return bucket, prefix, nil
}
