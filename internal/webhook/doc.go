// Package webhook implements the submission pipeline against the remote
// webhook: either a query-parameter bodyless POST or a multipart POST to
// the /voice/chat sub-path, plus history hydration. The two encodings are
// genuinely different wire contracts and are selected by configuration.
package webhook
