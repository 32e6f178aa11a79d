// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/medley/internal/snapshots"
)

// MockPlaylistSource is a test double for [services.PlaylistSource]
type MockPlaylistSource struct {
	Snapshot *snapshots.PlaylistSnapshot
	Err      error
	Calls    int
}

func (m *MockPlaylistSource) PlaylistSnapshot(ctx context.Context, playlistID string) (*snapshots.PlaylistSnapshot, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Snapshot, nil
}

// MockVideoSearcher is a test double for [services.VideoSearcher]. Results are
// keyed by query; unknown queries yield an empty candidate list.
type MockVideoSearcher struct {
	Results map[string][]snapshots.RawCandidate
	Err     error
	Queries []string
}

func (m *MockVideoSearcher) SearchCandidates(ctx context.Context, query string, limit int) ([]snapshots.RawCandidate, error) {
	m.Queries = append(m.Queries, query)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results[query], nil
}

// MockPlaylistSink is a test double for [services.PlaylistSink]. It records
// every submitted batch so tests can assert on order and sizing.
type MockPlaylistSink struct {
	PlaylistID string
	CreateErr  error
	AddErr     error

	CreatedTitle       string
	CreatedDescription string
	Batches            [][]string
}

func (m *MockPlaylistSink) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.CreatedTitle = title
	m.CreatedDescription = description
	if m.PlaylistID == "" {
		m.PlaylistID = "PL_mock"
	}
	return m.PlaylistID, nil
}

func (m *MockPlaylistSink) AddPlaylistItems(ctx context.Context, playlistID string, videoIDs []string) error {
	if m.AddErr != nil {
		return m.AddErr
	}
	batch := make([]string, len(videoIDs))
	copy(batch, videoIDs)
	m.Batches = append(m.Batches, batch)
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// SequenceRoundTripper replays a fixed list of responses in order, one per
// request. Requests past the end fail the test.
type SequenceRoundTripper struct {
	t         *testing.T
	responses []*http.Response
	index     int
	Requests  []*http.Request
}

func NewSequenceRoundTripper(t *testing.T, responses ...*http.Response) *SequenceRoundTripper {
	return &SequenceRoundTripper{t: t, responses: responses}
}

func (s *SequenceRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	s.Requests = append(s.Requests, r)
	if s.index >= len(s.responses) {
		s.t.Fatalf("unexpected request %d: %s %s", s.index+1, r.Method, r.URL)
		return nil, fmt.Errorf("no response for request %d", s.index+1)
	}
	resp := s.responses[s.index]
	s.index++
	return resp, nil
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

var _ io.ReadCloser = (*FCloser)(nil)
