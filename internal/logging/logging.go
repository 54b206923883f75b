// Package logging configures the process-wide commonlog backend.
package logging

import (
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // registers the default backend
)

// Quiet is the verbosity that silences every logger.
const Quiet = -4

// Configure sets the log verbosity: 0 logs notices and above, each step up
// or down moves one level (-4 disables logging). An empty path logs to
// stderr, which keeps stdout free for the LSP transport.
func Configure(verbosity int, path string) {
	var p *string
	if path != "" {
		p = &path
	}
	commonlog.Configure(verbosity, p)
}
