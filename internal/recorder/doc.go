// Package recorder implements the recording session state machine. A
// Recorder owns the capture stream, the chunk buffer, and the elapsed-time
// ticker for one session at a time, with a single teardown path invoked from
// every exit transition.
package recorder
