// Package lsp serves example results to editors as Language Server
// Protocol diagnostics. A run starts when a _test.go file is opened or
// saved; each annotation becomes one diagnostic on its line.
package lsp

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/dkoosis/exnote/internal/app"
	"github.com/dkoosis/exnote/internal/config"
	"github.com/dkoosis/exnote/internal/version"
	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/discover"
	"github.com/dkoosis/exnote/pkg/runner"
)

const serverName = "exnote"

var log = commonlog.GetLogger("exnote.lsp")

// Server is the exnote language server.
type Server struct {
	handler protocol.Handler
	glspSrv *glspserver.Server

	engine  app.Engine
	store   *annotate.Store
	session *runner.Session
	runner  *runner.Runner

	settingsMu sync.RWMutex
	settings   *config.Settings

	docsMu sync.Mutex
	docs   map[string][]string // open documents by URI, split into lines

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	exitFn func(int)
}

// New creates a language server running examples with engine.
func New(engine app.Engine, settings *config.Settings) *Server {
	s := &Server{
		engine:   engine,
		store:    annotate.NewStore(),
		session:  &runner.Session{},
		settings: settings.Clone(),
		docs:     make(map[string][]string),
		exitFn:   os.Exit,
	}
	s.runner = &runner.Runner{
		Session:    s.session,
		Loader:     engine,
		Discoverer: discover.Discoverer{},
		Executor:   engine,
		Host:       s.store,
		Status:     s.showMessage,
		Options:    s.runnerOptions,
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		WorkspaceDidChangeConfiguration: s.workspaceDidChangeConfiguration,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)
	if opts, ok := params.InitializationOptions.(map[string]any); ok {
		if err := s.applySettings(opts); err != nil {
			log.Warningf("initializationOptions: %s", err)
		}
	}

	capabilities := s.handler.CreateServerCapabilities()
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	v := version.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &v,
		},
	}, nil
}

func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	return nil
}

// shutdown stops all future runs. Annotations already published stay.
func (s *Server) shutdown(_ *glsp.Context) error {
	s.session.Disable()
	return nil
}

// exit removes the binary cache when configured and terminates.
func (s *Server) exit(_ *glsp.Context) error {
	s.settingsMu.RLock()
	remove := s.settings.RemoveCache
	s.settingsMu.RUnlock()
	if err := s.session.End(remove, s.engine.RemoveCache); err != nil {
		log.Debugf("removing cache: %s", err)
	}
	s.exitFn(0)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// workspaceDidChangeConfiguration accepts either the settings object itself
// or one nested under "exnote".
func (s *Server) workspaceDidChangeConfiguration(ctx *glsp.Context, params *protocol.DidChangeConfigurationParams) error {
	s.captureNotify(ctx)
	m, ok := params.Settings.(map[string]any)
	if !ok {
		return nil
	}
	if nested, ok := m[serverName].(map[string]any); ok {
		m = nested
	}
	if err := s.applySettings(m); err != nil {
		s.showMessage(runner.Tool + ": " + err.Error())
	}
	return nil
}

func (s *Server) applySettings(m map[string]any) error {
	s.settingsMu.Lock()
	defer s.settingsMu.Unlock()
	next := s.settings.Clone()
	if err := next.Apply(m); err != nil {
		return err
	}
	s.settings = next
	return nil
}

func (s *Server) runnerOptions() runner.Options {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings.RunnerOptions()
}

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	s.setDocument(params.TextDocument.URI, params.TextDocument.Text)
	s.check(params.TextDocument.URI)
	return nil
}

// textDocumentDidChange only tracks content; examples run on save.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			s.setDocument(params.TextDocument.URI, c.Text)
		case protocol.TextDocumentContentChangeEvent:
			s.setDocument(params.TextDocument.URI, c.Text)
		}
	}
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	if params.Text != nil {
		s.setDocument(params.TextDocument.URI, *params.Text)
	}
	s.check(params.TextDocument.URI)
	return nil
}

func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	if ns, err := s.store.CreateNamespace(runner.Tool); err == nil {
		_ = s.store.ClearNamespace(annotate.Buffer(uri), ns, 0, -1)
	}
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	s.docsMu.Lock()
	delete(s.docs, uri)
	s.docsMu.Unlock()
	return nil
}

// check runs the examples of the file behind uri and publishes the result.
// Files that cannot declare examples are ignored.
func (s *Server) check(uri string) {
	path := uriToPath(uri)
	if !strings.HasSuffix(path, "_test.go") {
		return
	}
	if s.session.Disabled() {
		return
	}
	sum, err := s.runner.Run(context.Background(), annotate.Buffer(uri), path)
	if err != nil {
		log.Debugf("run %s: %s", path, err)
	} else {
		log.Infof("%s: %d passed, %d failed, %d panicked", path, sum.Passed, sum.Failed, sum.Panicked)
	}
	s.publish(uri)
}

func (s *Server) setDocument(uri, text string) {
	s.docsMu.Lock()
	s.docs[uri] = strings.Split(text, "\n")
	s.docsMu.Unlock()
}

func (s *Server) document(uri string) []string {
	s.docsMu.Lock()
	defer s.docsMu.Unlock()
	return s.docs[uri]
}

// showMessage shows an error message in the client.
func (s *Server) showMessage(msg string) {
	s.sendNotification(protocol.ServerWindowShowMessage, &protocol.ShowMessageParams{
		Type:    protocol.MessageTypeError,
		Message: msg,
	})
}

// captureNotify stores the notification function from the context for
// use outside the request that supplied it.
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
