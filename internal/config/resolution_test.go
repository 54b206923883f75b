package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_Defaults(t *testing.T) {
	isolate(t)

	s, err := Resolve(Flags{})
	require.NoError(t, err)

	assert.True(t, s.TracebackInfo)
	assert.Nil(t, s.VerboseString)
	assert.True(t, s.RemoveCache)
	assert.Equal(t, "# ", s.CommentMarker)
	assert.Positive(t, s.Jobs)
	assert.Empty(t, s.File)
	for key, src := range s.Source {
		assert.Equal(t, SourceDefault, src, key)
	}
}

func TestResolve_PriorityOrder(t *testing.T) {
	isolate(t)
	yaml := "" +
		"traceback_info: false\n" +
		"verbose_string: ok\n" +
		"remove_cache: false\n" +
		"comment_marker: '// '\n" +
		"jobs: 3\n"
	require.NoError(t, os.WriteFile(FileName, []byte(yaml), 0o600))
	t.Setenv("EXNOTE_JOBS", "5")
	t.Setenv("EXNOTE_REMOVE_CACHE", "true")

	s, err := Resolve(Flags{Jobs: 7, TracebackInfo: true, TracebackInfoSet: true})
	require.NoError(t, err)

	assert.Equal(t, FileName, s.File)
	assert.True(t, s.TracebackInfo)
	assert.Equal(t, SourceCLI, s.Source[KeyTracebackInfo])
	require.NotNil(t, s.VerboseString)
	assert.Equal(t, "ok", *s.VerboseString)
	assert.Equal(t, SourceFile, s.Source[KeyVerboseString])
	assert.True(t, s.RemoveCache)
	assert.Equal(t, SourceEnv, s.Source[KeyRemoveCache])
	assert.Equal(t, "// ", s.CommentMarker)
	assert.Equal(t, 7, s.Jobs)
	assert.Equal(t, SourceCLI, s.Source[KeyJobs])
}

func TestResolve_InvalidEnvironmentIsIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("EXNOTE_TRACEBACK_INFO", "maybe")
	t.Setenv("EXNOTE_JOBS", "-1")

	s, err := Resolve(Flags{})
	require.NoError(t, err)
	assert.True(t, s.TracebackInfo)
	assert.Equal(t, SourceDefault, s.Source[KeyJobs])
}

func TestResolve_NoColorEnv(t *testing.T) {
	isolate(t)
	t.Setenv("NO_COLOR", "1")

	s, err := Resolve(Flags{})
	require.NoError(t, err)
	assert.True(t, s.NoColor)
}

func TestResolve_EmptyVerboseStringIsSet(t *testing.T) {
	isolate(t)
	s, err := Resolve(Flags{VerboseStringSet: true})
	require.NoError(t, err)
	require.NotNil(t, s.VerboseString)
	assert.Empty(t, *s.VerboseString)
}

func TestLookup_IsTotal(t *testing.T) {
	s := Defaults()

	v, ok := s.Lookup(KeyTracebackInfo)
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = s.Lookup(KeyVerboseString)
	assert.False(t, ok, "unset verbose string")

	verbose := "passed"
	s.VerboseString = &verbose
	v, ok = s.Lookup(KeyVerboseString)
	assert.True(t, ok)
	assert.Equal(t, "passed", v)

	v, ok = s.Lookup("no_such_key")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestApply_ClientSettings(t *testing.T) {
	s := Defaults()
	err := s.Apply(map[string]any{
		KeyTracebackInfo: false,
		KeyVerboseString: "fine",
		KeyJobs:          float64(2),
		"unrelated":      42,
	})
	require.NoError(t, err)
	assert.False(t, s.TracebackInfo)
	assert.Equal(t, "fine", *s.VerboseString)
	assert.Equal(t, 2, s.Jobs)
	assert.Equal(t, SourceClient, s.Source[KeyJobs])

	require.NoError(t, s.Apply(map[string]any{KeyVerboseString: nil}))
	assert.Nil(t, s.VerboseString)

	assert.Error(t, s.Apply(map[string]any{KeyRemoveCache: "yes"}))
	assert.Error(t, s.Apply(map[string]any{KeyJobs: float64(0)}))
}

func TestRunnerOptions(t *testing.T) {
	s := Defaults()
	verbose := "ok"
	s.VerboseString = &verbose
	s.TracebackInfo = false

	opts := s.RunnerOptions()
	assert.False(t, opts.ShowTracebackDetail)
	assert.Equal(t, "# ", opts.Marker)
	require.NotNil(t, opts.VerboseMessage)
	verbose = "changed"
	assert.Equal(t, "ok", *opts.VerboseMessage)
}

func TestClone_IsIndependent(t *testing.T) {
	s := Defaults()
	c := s.Clone()
	c.Source[KeyJobs] = SourceCLI
	c.Jobs = 99
	assert.Equal(t, SourceDefault, s.Source[KeyJobs])
	assert.NotEqual(t, 99, s.Jobs)
}
