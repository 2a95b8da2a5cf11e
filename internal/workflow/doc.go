// Package workflow drives each pending post URL through classification and
// commits the outcome.
//
// Every candidate moves through Pending, Fetching, Classifying, and finally
// Committed or Skipped. Each committed sub-step (outcome row, run-log row,
// done-list row, pending removal) is individually durable, so a crash between
// any two steps leaves state a later run resolves by re-checking the outcome
// ledgers before doing anything else.
package workflow
