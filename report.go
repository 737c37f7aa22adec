package scenic

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// ReportRepository persists run reports.
type ReportRepository interface {
	Save(ctx context.Context, report *Report) error
}

// ReportStore is a ReportRepository that can also read reports back.
type ReportStore interface {
	ReportRepository
	Load(ctx context.Context, runID string) (*Report, error)
	List(ctx context.Context, query ReportQuery) (*ReportPage, error)
}

// ReportSummary is derived from storage metadata without reading the report itself.
type ReportSummary struct {
	RunID     string    `json:"run_id"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReportQuery struct {
	PageSize  int
	PageToken string
}

type ReportPage struct {
	Reports       []ReportSummary `json:"reports"`
	NextPageToken string          `json:"next_page_token,omitempty"`
}

const DefaultReportPageSize = 20

// FileReportRepository stores each report as {dir}/{run_id}.json.
type FileReportRepository struct {
	dir string
}

var _ ReportStore = (*FileReportRepository)(nil)

func NewFileReportRepository(dir string) *FileReportRepository {
	return &FileReportRepository{dir: dir}
}

func (r *FileReportRepository) path(runID string) string {
	return filepath.Join(r.dir, filepath.Base(runID)+".json")
}

func (r *FileReportRepository) Save(_ context.Context, report *Report) error {
	if report.RunID == "" {
		return goerr.New("report has no run ID")
	}
	if err := os.MkdirAll(r.dir, 0750); err != nil {
		return goerr.Wrap(err, "failed to create report directory", goerr.V("dir", r.dir))
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal report", goerr.V("run_id", report.RunID))
	}

	filePath := r.path(report.RunID)
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write report file", goerr.V("path", filePath))
	}
	return nil
}

func (r *FileReportRepository) Load(_ context.Context, runID string) (*Report, error) {
	filePath := r.path(runID)
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, goerr.Wrap(ErrReportNotFound, "no report file", goerr.V("run_id", runID))
		}
		return nil, goerr.Wrap(err, "failed to read report file", goerr.V("path", filePath))
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, goerr.Wrap(err, "failed to parse report file", goerr.V("path", filePath))
	}
	return &report, nil
}

// List returns reports ordered by file name. The page token is the last name of the previous page.
func (r *FileReportRepository) List(_ context.Context, query ReportQuery) (*ReportPage, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read report directory", goerr.V("dir", r.dir))
	}

	type fileEntry struct {
		name string
		info os.FileInfo
	}
	var files []fileEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, fileEntry{name: e.Name(), info: info})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].name < files[j].name
	})

	start := 0
	if query.PageToken != "" {
		last, err := base64.URLEncoding.DecodeString(query.PageToken)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid page token")
		}
		start = sort.Search(len(files), func(i int) bool {
			return files[i].name > string(last)
		})
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = DefaultReportPageSize
	}
	end := min(start+pageSize, len(files))

	page := &ReportPage{Reports: []ReportSummary{}}
	for _, f := range files[start:end] {
		page.Reports = append(page.Reports, ReportSummary{
			RunID:     strings.TrimSuffix(f.name, ".json"),
			Size:      f.info.Size(),
			UpdatedAt: f.info.ModTime(),
		})
	}
	if end < len(files) {
		page.NextPageToken = base64.URLEncoding.EncodeToString([]byte(files[end-1].name))
	}
	return page, nil
}
