// Package snapshots implements the bronze layer: immutable raw JSON documents
// captured from upstream services, persisted on disk for auditability and for
// re-running normalization without re-querying the network.
//
// Playlist snapshots are keyed by job id, search snapshots by Spotify track id.
package snapshots

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/desertthunder/medley/internal/shared"
)

// PlaylistSnapshot is the raw capture of a Spotify playlist: metadata plus the
// full paginated track list. Optional fields decode to zero values; the
// normalizer is responsible for tolerating their absence.
type PlaylistSnapshot struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Tracks      PlaylistPage  `json:"tracks"`
	FetchedAt   string        `json:"fetched_at"`
}

// PlaylistPage holds the accumulated items of every page of a playlist.
type PlaylistPage struct {
	Total int                 `json:"total"`
	Items []PlaylistTrackItem `json:"items"`
}

// PlaylistTrackItem is one entry of a playlist's track list.
type PlaylistTrackItem struct {
	AddedAt string   `json:"added_at"`
	Track   RawTrack `json:"track"`
}

// RawTrack mirrors the Spotify track object, loosely typed so malformed or
// partial records never fail decoding.
type RawTrack struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Artists    []RawArtist `json:"artists"`
	Album      RawAlbum    `json:"album"`
	DurationMS int         `json:"duration_ms"`
	Explicit   bool        `json:"explicit"`
	Popularity int         `json:"popularity"`
}

// RawArtist is a track's credited artist.
type RawArtist struct {
	Name string `json:"name"`
}

// RawAlbum is a track's album reference.
type RawAlbum struct {
	Name string `json:"name"`
}

// SearchSnapshot is the raw capture of one YouTube search: every candidate
// video returned for a single Spotify track.
type SearchSnapshot struct {
	SpotifyTrackID string         `json:"spotify_track_id"`
	Query          string         `json:"query"`
	FetchedAt      string         `json:"fetched_at"`
	Candidates     []RawCandidate `json:"candidates"`
}

// RawCandidate is one search result in a SearchSnapshot.
type RawCandidate struct {
	VideoID         string `json:"video_id"`
	Title           string `json:"title"`
	Channel         string `json:"channel"`
	RankingInSearch int    `json:"ranking_in_search"`
	PublishTime     string `json:"publish_time"`
}

// Store reads and writes bronze snapshot files under a data directory.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{root: dataDir}
}

func (s *Store) playlistPath(jobID string) string {
	return filepath.Join(s.root, "raw", "spotify", jobID+".json")
}

func (s *Store) searchPath(trackID string) string {
	return filepath.Join(s.root, "raw", "youtube", trackID+".json")
}

// WritePlaylist persists a playlist snapshot for a job.
func (s *Store) WritePlaylist(jobID string, snap *PlaylistSnapshot) error {
	return s.write(s.playlistPath(jobID), snap)
}

// ReadPlaylist loads the playlist snapshot for a job.
// Returns [shared.ErrSnapshotNotFound] when no capture exists.
func (s *Store) ReadPlaylist(jobID string) (*PlaylistSnapshot, error) {
	var snap PlaylistSnapshot
	if err := s.read(s.playlistPath(jobID), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// WriteSearch persists the candidate search snapshot for a track.
func (s *Store) WriteSearch(trackID string, snap *SearchSnapshot) error {
	return s.write(s.searchPath(trackID), snap)
}

// ReadSearch loads the candidate search snapshot for a track.
// Returns [shared.ErrSnapshotNotFound] when the track was never searched.
func (s *Store) ReadSearch(trackID string) (*SearchSnapshot, error) {
	var snap SearchSnapshot
	if err := s.read(s.searchPath(trackID), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// HasSearch reports whether a search snapshot already exists for a track.
// Capture skips tracks that already have one.
func (s *Store) HasSearch(trackID string) bool {
	_, err := os.Stat(s.searchPath(trackID))
	return err == nil
}

func (s *Store) write(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

func (s *Store) read(path string, doc any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", shared.ErrSnapshotNotFound, path)
		}
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	return nil
}
