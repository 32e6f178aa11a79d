// Package ui implements an interactive progress monitor using bubbletea's Elm architecture.
//
// The TUI drives one conversion job end to end and renders each pipeline
// phase as it happens: source capture, normalization, candidate search, video
// selection, gold promotion, and playlist materialization. Progress updates
// flow through a channel from the ConversionEngine, providing non-blocking
// status reporting while the pipeline runs.
//
// On completion the monitor shows the created playlist and per-stage counts;
// q or ctrl+c quits at any point.
package ui
