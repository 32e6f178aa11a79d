// Package models defines the data model for the playlist conversion pipeline.
//
// A conversion moves through three refinement layers:
//
//   - bronze: immutable raw JSON snapshots captured from Spotify and YouTube
//   - silver: one normalized row per entity (track, track × selected video)
//   - gold: the authoritative one-video-per-track projection
//
// The [ConversionJob] state machine tracks a single conversion request through
// those layers. Accepted track-to-video mappings accumulate in an append-only
// ledger ([MappingEntry]) that survives across jobs.
package models
