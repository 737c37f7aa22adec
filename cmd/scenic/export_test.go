package main

import (
	"context"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/scenic"
)

var (
	NewServer      = newServer
	WithStore      = withStore
	WithRunner     = withRunner
	WithRunOptions = withRunOptions
	WithAddr       = withAddr

	ParseGSURI      = parseGSURI
	ParseHeaders    = parseHeaders
	ParseJSONObject = parseJSONObject
	LoadAttachments = loadAttachments
	NewLogger       = newLogger
	FormatStep      = formatStep
	ReadGoals       = readGoals
	NewReportStore  = newReportStore
	ExampleGoals    = exampleGoals
)

type RunEvent = runEvent
type BatchResult = batchResult
type AgentConfig = agentConfig

// Handler returns the server's HTTP handler for testing.
func (s *server) Handler() http.Handler {
	return s.handler()
}

// ObjectStoreMock is an in-memory objectStore.
type ObjectStoreMock struct {
	ReadFunc  func(ctx context.Context, bucket, object string) (io.ReadCloser, error)
	WriteFunc func(ctx context.Context, bucket, object string, data []byte) error
	ListFunc  func(ctx context.Context, bucket, prefix string, pageSize int, pageToken string) ([]*storage.ObjectAttrs, string, error)
}

func (m *ObjectStoreMock) Read(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	return m.ReadFunc(ctx, bucket, object)
}

func (m *ObjectStoreMock) Write(ctx context.Context, bucket, object string, data []byte) error {
	return m.WriteFunc(ctx, bucket, object, data)
}

func (m *ObjectStoreMock) List(ctx context.Context, bucket, prefix string, pageSize int, pageToken string) ([]*storage.ObjectAttrs, string, error) {
	return m.ListFunc(ctx, bucket, prefix, pageSize, pageToken)
}

func NewCSSourceWithStore(bucket, prefix string, store *ObjectStoreMock) scenic.ReportStore {
	return &csSource{bucket: bucket, prefix: prefix, store: store}
}

func NewAgentConfig(provider string) *AgentConfig {
	return &agentConfig{provider: provider}
}

func (x *agentConfig) NewLLMClient(ctx context.Context) (scenic.LLMClient, error) {
	return x.newLLMClient(ctx)
}

func RunBatch(ctx context.Context, agent *scenic.Agent, goals []string, limit int) ([]BatchResult, error) {
	return runBatch(ctx, agent, &agentConfig{}, goals, limit)
}

func RunGoal(ctx context.Context, agent *scenic.Agent, goal string, w io.Writer) (*scenic.Report, error) {
	return runGoal(ctx, agent, &agentConfig{}, goal, w)
}

func DemoConnector(requirePlay bool) scenic.Connector {
	return demoConnector(newDemoScene(requirePlay), &agentConfig{}, requirePlay)
}
