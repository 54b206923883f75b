package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/dkoosis/exnote/pkg/annotate"
	"github.com/dkoosis/exnote/pkg/runner"
)

// Setting keys, shared by .exnote.yaml, Lookup and LSP settings.
const (
	KeyTracebackInfo = "traceback_info"
	KeyVerboseString = "verbose_string"
	KeyRemoveCache   = "remove_cache"
	KeyCommentMarker = "comment_marker"
	KeyJobs          = "jobs"
	KeyNoColor       = "no_color"
)

// Sources recorded per key.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceCLI     = "cli"
	SourceClient  = "client"
)

// Flags holds command-line values. The *Set fields record whether the user
// passed the flag explicitly.
type Flags struct {
	ConfigFile string

	TracebackInfo    bool
	TracebackInfoSet bool
	VerboseString    string
	VerboseStringSet bool
	RemoveCache      bool
	RemoveCacheSet   bool
	CommentMarker    string
	Jobs             int
	NoColor          bool
	NoColorSet       bool
	Verbosity        int
	LogFile          string
}

// Settings is the resolved configuration.
type Settings struct {
	TracebackInfo bool
	VerboseString *string
	RemoveCache   bool
	CommentMarker string
	Jobs          int
	NoColor       bool
	Verbosity     int
	LogFile       string

	// File is the configuration file that was read, if any.
	File string
	// Source maps each key to where its value came from.
	Source map[string]string
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() *Settings {
	return &Settings{
		TracebackInfo: true,
		RemoveCache:   true,
		CommentMarker: annotate.DefaultMarker,
		Jobs:          runtime.GOMAXPROCS(0),
		Source: map[string]string{
			KeyTracebackInfo: SourceDefault,
			KeyVerboseString: SourceDefault,
			KeyRemoveCache:   SourceDefault,
			KeyCommentMarker: SourceDefault,
			KeyJobs:          SourceDefault,
			KeyNoColor:       SourceDefault,
		},
	}
}

// Resolve applies, in increasing priority, the configuration file, the
// environment and flags over the defaults.
//
// Priority Order (highest to lowest):
//  1. CLI flags
//  2. Environment (EXNOTE_*, NO_COLOR)
//  3. .exnote.yaml
//  4. Defaults
func Resolve(flags Flags) (*Settings, error) {
	s := Defaults()

	fc, path, err := LoadFile(flags.ConfigFile)
	if err != nil {
		return nil, err
	}
	s.File = path
	s.applyFile(fc)
	s.applyEnv()
	s.applyFlags(flags)
	return s, nil
}

func (s *Settings) applyFile(fc *FileConfig) {
	if fc.TracebackInfo != nil {
		s.set(KeyTracebackInfo, SourceFile, func() { s.TracebackInfo = *fc.TracebackInfo })
	}
	if fc.VerboseString != nil {
		v := *fc.VerboseString
		s.set(KeyVerboseString, SourceFile, func() { s.VerboseString = &v })
	}
	if fc.RemoveCache != nil {
		s.set(KeyRemoveCache, SourceFile, func() { s.RemoveCache = *fc.RemoveCache })
	}
	if fc.CommentMarker != "" {
		s.set(KeyCommentMarker, SourceFile, func() { s.CommentMarker = fc.CommentMarker })
	}
	if fc.Jobs > 0 {
		s.set(KeyJobs, SourceFile, func() { s.Jobs = fc.Jobs })
	}
	if fc.NoColor != nil {
		s.set(KeyNoColor, SourceFile, func() { s.NoColor = *fc.NoColor })
	}
	s.Verbosity = fc.Verbosity
	s.LogFile = fc.LogFile
}

func (s *Settings) applyEnv() {
	if b := getEnvBool("EXNOTE_TRACEBACK_INFO"); b != nil {
		s.set(KeyTracebackInfo, SourceEnv, func() { s.TracebackInfo = *b })
	}
	if v, ok := os.LookupEnv("EXNOTE_VERBOSE_STRING"); ok {
		s.set(KeyVerboseString, SourceEnv, func() { s.VerboseString = &v })
	}
	if b := getEnvBool("EXNOTE_REMOVE_CACHE"); b != nil {
		s.set(KeyRemoveCache, SourceEnv, func() { s.RemoveCache = *b })
	}
	if v := os.Getenv("EXNOTE_COMMENT_MARKER"); v != "" {
		s.set(KeyCommentMarker, SourceEnv, func() { s.CommentMarker = v })
	}
	if n, err := strconv.Atoi(os.Getenv("EXNOTE_JOBS")); err == nil && n > 0 {
		s.set(KeyJobs, SourceEnv, func() { s.Jobs = n })
	}
	// NO_COLOR means "any non-empty value", not a boolean.
	if os.Getenv("NO_COLOR") != "" {
		s.set(KeyNoColor, SourceEnv, func() { s.NoColor = true })
	}
}

func (s *Settings) applyFlags(f Flags) {
	if f.TracebackInfoSet {
		s.set(KeyTracebackInfo, SourceCLI, func() { s.TracebackInfo = f.TracebackInfo })
	}
	if f.VerboseStringSet {
		v := f.VerboseString
		s.set(KeyVerboseString, SourceCLI, func() { s.VerboseString = &v })
	}
	if f.RemoveCacheSet {
		s.set(KeyRemoveCache, SourceCLI, func() { s.RemoveCache = f.RemoveCache })
	}
	if f.CommentMarker != "" {
		s.set(KeyCommentMarker, SourceCLI, func() { s.CommentMarker = f.CommentMarker })
	}
	if f.Jobs > 0 {
		s.set(KeyJobs, SourceCLI, func() { s.Jobs = f.Jobs })
	}
	if f.NoColorSet {
		s.set(KeyNoColor, SourceCLI, func() { s.NoColor = f.NoColor })
	}
	if f.Verbosity != 0 {
		s.Verbosity = f.Verbosity
	}
	if f.LogFile != "" {
		s.LogFile = f.LogFile
	}
}

func (s *Settings) set(key, source string, apply func()) {
	apply()
	s.Source[key] = source
}

// Apply sets values supplied by an editor client, such as LSP
// initializationOptions or workspace/didChangeConfiguration. Unknown keys
// are ignored; a value of the wrong type is an error.
func (s *Settings) Apply(values map[string]any) error {
	for key, raw := range values {
		switch key {
		case KeyTracebackInfo, KeyRemoveCache, KeyNoColor:
			b, ok := raw.(bool)
			if !ok {
				return fmt.Errorf("setting %s: want bool, got %T", key, raw)
			}
			switch key {
			case KeyTracebackInfo:
				s.set(key, SourceClient, func() { s.TracebackInfo = b })
			case KeyRemoveCache:
				s.set(key, SourceClient, func() { s.RemoveCache = b })
			default:
				s.set(key, SourceClient, func() { s.NoColor = b })
			}
		case KeyVerboseString:
			if raw == nil {
				s.set(key, SourceClient, func() { s.VerboseString = nil })
				continue
			}
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("setting %s: want string, got %T", key, raw)
			}
			s.set(key, SourceClient, func() { s.VerboseString = &v })
		case KeyCommentMarker:
			v, ok := raw.(string)
			if !ok {
				return fmt.Errorf("setting %s: want string, got %T", key, raw)
			}
			s.set(key, SourceClient, func() { s.CommentMarker = v })
		case KeyJobs:
			// JSON numbers decode as float64.
			f, ok := raw.(float64)
			if !ok || f < 1 {
				return fmt.Errorf("setting %s: want positive number, got %v", key, raw)
			}
			s.set(key, SourceClient, func() { s.Jobs = int(f) })
		}
	}
	return nil
}

// Lookup returns the value of a setting by key. It reports false for
// unknown keys and for verbose_string when it is unset.
func (s *Settings) Lookup(key string) (any, bool) {
	switch key {
	case KeyTracebackInfo:
		return s.TracebackInfo, true
	case KeyVerboseString:
		if s.VerboseString == nil {
			return nil, false
		}
		return *s.VerboseString, true
	case KeyRemoveCache:
		return s.RemoveCache, true
	case KeyCommentMarker:
		return s.CommentMarker, true
	case KeyJobs:
		return s.Jobs, true
	case KeyNoColor:
		return s.NoColor, true
	}
	return nil, false
}

// RunnerOptions returns the per-cycle options the runner reports with.
func (s *Settings) RunnerOptions() runner.Options {
	opts := runner.Options{
		ShowTracebackDetail: s.TracebackInfo,
		Marker:              s.CommentMarker,
	}
	if s.VerboseString != nil {
		v := *s.VerboseString
		opts.VerboseMessage = &v
	}
	return opts
}

// Clone returns an independent copy.
func (s *Settings) Clone() *Settings {
	c := *s
	if s.VerboseString != nil {
		v := *s.VerboseString
		c.VerboseString = &v
	}
	c.Source = make(map[string]string, len(s.Source))
	for k, v := range s.Source {
		c.Source[k] = v
	}
	return &c
}

// getEnvBool returns the first environment variable among names that holds
// a valid boolean.
func getEnvBool(names ...string) *bool {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				return &b
			}
		}
	}
	return nil
}
