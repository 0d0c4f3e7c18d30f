package activation

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xabinapal/ccswitch/internal/credential"
	"github.com/xabinapal/ccswitch/internal/profile"
	"github.com/xabinapal/ccswitch/internal/shell"
)

type fakeStrategy struct {
	name  string
	err   error
	calls int
}

func (f *fakeStrategy) Name() string   { return f.name }
func (f *fakeStrategy) Target() string { return f.name + "-target" }
func (f *fakeStrategy) Apply(profile.Profile) error {
	f.calls++
	return f.err
}

func kimi() profile.Profile {
	return profile.Profile{
		Alias:       "kimi",
		DisplayName: "月之暗面",
		Secret:      "sk-xxx",
		BaseURL:     "https://api.moonshot.cn/anthropic",
		Kind:        credential.KindToken,
	}
}

func newEngine(t *testing.T, env Env, strategies ...Strategy) (*Engine, *profile.ActiveFile) {
	t.Helper()
	active := profile.NewActiveFile(filepath.Join(t.TempDir(), "current"), nil)
	return New(Options{Active: active, Strategies: strategies, Env: env}), active
}

func TestActivateStopsAtFirstSuccess(t *testing.T) {
	first := &fakeStrategy{name: "settings", err: ErrSettingsFileWriteFailed}
	second := &fakeStrategy{name: "shell", err: ErrNotApplicable}
	third := &fakeStrategy{name: "os"}
	fourth := &fakeStrategy{name: "manual"}

	engine, _ := newEngine(t, NewMapEnv(nil), first, second, third, fourth)
	result, err := engine.Activate(kimi())
	require.NoError(t, err)

	assert.Equal(t, "os", result.Applied)
	assert.Equal(t, "os-target", result.Target)
	assert.Len(t, result.Attempts, 3)
	assert.True(t, result.FellBack())
	assert.True(t, result.Attempts[1].Skipped())
	assert.Equal(t, 0, fourth.calls)
}

func TestActivateNoTargetApplied(t *testing.T) {
	failing := &fakeStrategy{name: "settings", err: ErrSettingsFileWriteFailed}
	env := NewMapEnv(nil)

	engine, _ := newEngine(t, env, failing)
	result, err := engine.Activate(kimi())
	assert.ErrorIs(t, err, ErrNoTargetApplied)
	assert.ErrorIs(t, err, ErrSettingsFileWriteFailed)
	require.NotNil(t, result)

	assert.Equal(t, "sk-xxx", env.Getenv(credential.EnvAuthToken), "process env is updated even when every target fails")
}

func TestActivatePointerWriteFailureIsFatal(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))
	active := profile.NewActiveFile(filepath.Join(blocker, "current"), nil)

	strategy := &fakeStrategy{name: "settings"}
	env := NewMapEnv(nil)
	engine := New(Options{Active: active, Strategies: []Strategy{strategy}, Env: env})

	_, err := engine.Activate(kimi())
	assert.ErrorIs(t, err, ErrActivePointerWriteFailed)
	assert.Equal(t, 0, strategy.calls)
	_, set := env.Lookup(credential.EnvAuthToken)
	assert.False(t, set)
}

func TestActivateKindExclusiveEnv(t *testing.T) {
	env := NewMapEnv(map[string]string{
		credential.EnvAuthToken: "stale-token",
		credential.EnvAPIKey:    "stale-key",
	})
	engine, _ := newEngine(t, env, &fakeStrategy{name: "manual"})

	key := kimi()
	key.Kind = credential.KindKey
	_, err := engine.Activate(key)
	require.NoError(t, err)

	assert.Equal(t, "sk-xxx", env.Getenv(credential.EnvAPIKey))
	_, hasToken := env.Lookup(credential.EnvAuthToken)
	assert.False(t, hasToken)
	assert.Equal(t, key.BaseURL, env.Getenv(credential.EnvBaseURL))

	_, err = engine.Activate(kimi())
	require.NoError(t, err)

	assert.Equal(t, "sk-xxx", env.Getenv(credential.EnvAuthToken))
	_, hasKey := env.Lookup(credential.EnvAPIKey)
	assert.False(t, hasKey)
}

func TestCurrent(t *testing.T) {
	env := NewMapEnv(nil)
	engine, active := newEngine(t, env, &fakeStrategy{name: "manual"})

	status, err := engine.Current()
	require.NoError(t, err)
	assert.Nil(t, status)

	_, err = engine.Activate(kimi())
	require.NoError(t, err)

	status, err = engine.Current()
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, "kimi", status.Profile.Alias)
	assert.True(t, status.IsActive)

	require.NoError(t, env.Setenv(credential.EnvAuthToken, "changed"))
	status, err = engine.Current()
	require.NoError(t, err)
	assert.False(t, status.IsActive)

	require.NoError(t, env.Setenv(credential.EnvAuthToken, "sk-xxx"))
	require.NoError(t, env.Setenv(credential.EnvBaseURL, "https://elsewhere"))
	status, err = engine.Current()
	require.NoError(t, err)
	assert.False(t, status.IsActive)

	require.NoError(t, active.Clear())
	status, err = engine.Current()
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestEnvFor(t *testing.T) {
	env := EnvFor(kimi())
	assert.Equal(t, []shell.Var{
		{Name: credential.EnvAuthToken, Value: "sk-xxx"},
		{Name: credential.EnvBaseURL, Value: "https://api.moonshot.cn/anthropic"},
	}, env.Set)
	assert.Equal(t, []string{credential.EnvAPIKey}, env.Unset)
}

func TestKimiScenario(t *testing.T) {
	dir := t.TempDir()
	home := filepath.Join(dir, "home")
	active := profile.NewActiveFile(filepath.Join(dir, "config", "current"), nil)
	store := profile.NewStore(filepath.Join(dir, "config", "profiles"), active, nil)

	created, err := store.EnsureInitialized()
	require.NoError(t, err)
	assert.True(t, created)

	p := profile.Profile{
		Alias:       "kimi",
		DisplayName: "月之暗面",
		Secret:      "sk-xxx",
		BaseURL:     "https://api.moonshot.cn/anthropic",
		Kind:        credential.Resolve("https://api.moonshot.cn/anthropic", ""),
	}
	require.NoError(t, store.Add(p))
	assert.Equal(t, credential.KindToken, p.Kind)

	obs := shell.Observation{GOOS: "linux", Shell: "/bin/zsh"}
	strategies, err := BuildStrategies(StrategyConfig{
		Targets:      []string{"settings", "shell", "os", "manual"},
		SettingsFile: filepath.Join(home, ".claude", "settings.json"),
		SettingsDefaults: SettingsDefaults{
			MaxOutputTokens:            "32000",
			DisableNonessentialTraffic: true,
		},
		Observation: obs,
		Home:        home,
		Out:         &bytes.Buffer{},
	})
	require.NoError(t, err)

	env := NewMapEnv(nil)
	engine := New(Options{Active: active, Strategies: strategies, Env: env})

	found, ok, err := store.Find("kimi")
	require.NoError(t, err)
	require.True(t, ok)
	result, err := engine.Activate(found)
	require.NoError(t, err)
	assert.Equal(t, "settings", result.Applied)

	status, err := engine.Current()
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, "kimi", status.Profile.Alias)
	assert.True(t, status.IsActive)

	_, cleared, err := store.Remove("kimi")
	require.NoError(t, err)
	assert.True(t, cleared)

	status, err = engine.Current()
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestFallbackWhenSettingsUnwritable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a Unix shell startup file")
	}

	dir := t.TempDir()
	home := filepath.Join(dir, "home")
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	var out bytes.Buffer
	strategies, err := BuildStrategies(StrategyConfig{
		Targets:      []string{"settings", "shell", "os"},
		SettingsFile: filepath.Join(blocker, "settings.json"),
		Observation:  shell.Observation{GOOS: "linux", Shell: "/bin/bash"},
		Home:         home,
		Out:          &out,
	})
	require.NoError(t, err)

	engine, _ := newEngine(t, NewMapEnv(nil), strategies...)
	result, err := engine.Activate(kimi())
	require.NoError(t, err)

	assert.Equal(t, "shell", result.Applied)
	assert.Equal(t, filepath.Join(home, ".bashrc"), result.Target)
	require.NotEmpty(t, result.Attempts)
	assert.ErrorIs(t, result.Attempts[0].Err, ErrSettingsFileWriteFailed)
	assert.True(t, result.FellBack())
	assert.Empty(t, out.String())

	data, err := os.ReadFile(filepath.Join(home, ".bashrc"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "export ANTHROPIC_AUTH_TOKEN='sk-xxx'")
}

func TestDoubleActivationSingleBlock(t *testing.T) {
	home := t.TempDir()
	strategies, err := BuildStrategies(StrategyConfig{
		Targets:     []string{"shell"},
		Observation: shell.Observation{GOOS: "darwin", Shell: "/bin/zsh"},
		Home:        home,
	})
	require.NoError(t, err)

	engine, _ := newEngine(t, NewMapEnv(nil), strategies...)
	_, err = engine.Activate(kimi())
	require.NoError(t, err)

	other := kimi()
	other.Alias = "mirror"
	other.Secret = "k-1"
	other.BaseURL = "https://api.aicodemirror.com/api/claudecode"
	other.Kind = credential.KindKey
	_, err = engine.Activate(other)
	require.NoError(t, err)
	_, err = engine.Activate(other)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, ".zshrc"))
	require.NoError(t, err)
	content := string(data)
	assert.Equal(t, 1, strings.Count(content, shell.BeginMarker))
	assert.Equal(t, 1, strings.Count(content, shell.EndMarker))
	assert.Contains(t, content, "export ANTHROPIC_API_KEY='k-1'")
	assert.Contains(t, content, "unset ANTHROPIC_AUTH_TOKEN")
	assert.NotContains(t, content, "sk-xxx")
}

func TestManualOnlyPrintsCommands(t *testing.T) {
	var out bytes.Buffer
	strategies, err := BuildStrategies(StrategyConfig{
		Targets:     []string{"manual"},
		Observation: shell.Observation{GOOS: "windows", ComSpec: `C:\Windows\system32\cmd.exe`},
		Out:         &out,
	})
	require.NoError(t, err)
	require.Len(t, strategies, 1)

	engine, _ := newEngine(t, NewMapEnv(nil), strategies...)
	result, err := engine.Activate(kimi())
	require.NoError(t, err)

	assert.Equal(t, "manual", result.Applied)
	assert.Contains(t, out.String(), `set "ANTHROPIC_AUTH_TOKEN=sk-xxx"`)
	assert.Contains(t, out.String(), `set "ANTHROPIC_API_KEY="`)
}

func TestBuildStrategies(t *testing.T) {
	strategies, err := BuildStrategies(StrategyConfig{
		Targets:     []string{"manual", "shell", "settings", "shell"},
		Observation: shell.Observation{GOOS: "linux"},
	})
	require.NoError(t, err)

	names := make([]string, 0, len(strategies))
	for _, s := range strategies {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"shell", "settings", "manual"}, names)

	_, err = BuildStrategies(StrategyConfig{Targets: []string{"pigeon"}})
	assert.Error(t, err)
}

func TestProcessEnv(t *testing.T) {
	t.Setenv("CCSWITCH_TEST_VAR", "")
	env := ProcessEnv{}

	require.NoError(t, env.Setenv("CCSWITCH_TEST_VAR", "v"))
	assert.Equal(t, "v", env.Getenv("CCSWITCH_TEST_VAR"))
	require.NoError(t, env.Unsetenv("CCSWITCH_TEST_VAR"))
	_, ok := os.LookupEnv("CCSWITCH_TEST_VAR")
	assert.False(t, ok)
}

func readJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	return doc
}

var errBoom = errors.New("boom")
