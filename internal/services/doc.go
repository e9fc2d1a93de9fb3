// Package services defines shared utilities consumed by the organizer pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and the file being
//     processed for logging.
//   - Structured error markers plus the Wrap helper that let the orchestrator
//     translate failures into per-file outcomes (skipped vs error).
//
// Use these helpers when wiring new pipeline steps so error handling and
// observability stay uniform.
package services
