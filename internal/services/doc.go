// Package services defines the shared error taxonomy for the pipeline.
//
// Errors are tagged with sentinel markers so callers can classify failures
// with errors.Is: collaborator failures stay per-item, ledger failures abort
// the run, session failures trigger crawler session replacement.
package services
