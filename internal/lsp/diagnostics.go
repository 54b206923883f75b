package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/runner"
)

// publish sends the current annotations of uri as diagnostics.
func (s *Server) publish(uri string) {
	ns, err := s.store.CreateNamespace(runner.Tool)
	if err != nil {
		return
	}
	marker := s.runnerOptions().Marker
	if marker == "" {
		marker = annotate.DefaultMarker
	}
	lines := s.document(uri)

	diags := []protocol.Diagnostic{}
	for _, a := range s.store.Annotations(annotate.Buffer(uri), ns) {
		diags = append(diags, toDiagnostic(a, lines, marker))
	}
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// toDiagnostic covers the whole annotated line. Lines past the end of the
// known document are clamped to its last line.
func toDiagnostic(a annotate.Annotation, lines []string, marker string) protocol.Diagnostic {
	line := a.Line
	if n := len(lines); n > 0 && line >= n {
		line = n - 1
	}
	var width int
	if line < len(lines) {
		width = utf16Len(strings.TrimRight(lines[line], "\r"))
	}
	sev := protocol.DiagnosticSeverityInformation
	if a.Severity() == annotate.Error {
		sev = protocol.DiagnosticSeverityError
	}
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line)},
			End:   protocol.Position{Line: protocol.UInteger(line), Character: protocol.UInteger(width)},
		},
		Severity: &sev,
		Source:   strPtr(serverName),
		Message:  strings.TrimPrefix(a.Text(), marker),
	}
}

func strPtr(s string) *string {
	return &s
}
