package annotate

import "strings"

// DefaultMarker is the comment marker prefixed to annotation text.
const DefaultMarker = "# "

// Emitter writes message lines for one buffer and namespace.
type Emitter struct {
	host   Host
	buf    Buffer
	ns     Namespace
	marker string
}

// NewEmitter returns an emitter writing into ns of buf through host.
func NewEmitter(host Host, buf Buffer, ns Namespace, marker string) *Emitter {
	if marker == "" {
		marker = DefaultMarker
	}
	return &Emitter{host: host, buf: buf, ns: ns, marker: marker}
}

// Emit issues one annotation per entry of lines, on consecutive lines
// starting at line. Host errors are returned as is.
func (e *Emitter) Emit(line int, sev Severity, lines []string) error {
	for i, text := range lines {
		seg := Segment{Text: e.mark(text), Severity: sev}
		if err := e.host.SetAnnotation(e.buf, e.ns, line+i, []Segment{seg}, Options{}); err != nil {
			return err
		}
	}
	return nil
}

// Marker returns the comment marker the emitter uses.
func (e *Emitter) Marker() string {
	return e.marker
}

func (e *Emitter) mark(text string) string {
	if strings.HasPrefix(text, e.marker) {
		return text
	}
	return e.marker + text
}
