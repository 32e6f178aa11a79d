// Package tasks implements the conversion pipeline that turns a Spotify
// playlist into a YouTube Music playlist.
//
// The core abstraction is ConversionEngine, which runs the stages of one job
// strictly in order: source capture (bronze), track normalization (silver),
// candidate capture (bronze), video selection (silver), promotion (gold +
// mapping ledger), and playlist materialization. Each stage treats its
// upstream tables as read-only input, so an interrupted run resumes by
// re-running the first incomplete stage.
//
// Stages emit progress updates via channels for non-blocking status reporting
// to the CLI/UI layers.
package tasks
