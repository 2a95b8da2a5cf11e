// Package fetch invokes the external collaborators that extract structured
// post data, and parses their output.
//
// Collaborators are plain commands given a post URL as their last argument.
// They print free-form progress followed by a result marker line and a JSON
// object on stdout; stderr carries diagnostics and never feeds the payload.
// Stdout is streamed line by line so a caller can observe the result as soon
// as it is complete, but a fetch only succeeds once the process has exited;
// if no result was spotted mid-stream the full captured output is
// re-evaluated once before failing.
package fetch
