package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"yousearch/internal/config"
	"yousearch/internal/export"
	"yousearch/internal/youapi"
)

// execute runs the root command with args and returns stdout. Flag
// variables are reset first because cobra keeps them between runs.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	configFile, logLevel, logFile, demoMode = "", "info", "", false
	searchFormat, searchCount = formatText, 0
	serveAddr = ":8080"

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if !hasFlag(args, "--config") {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "config.toml")}, args...)
	}

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute(context.Background())
	return out.String(), err
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "yousearch dev")
}

func TestSearchJSONDemo(t *testing.T) {
	out, err := execute(t, "--demo", "search", "--format", "json", "golang", "generics", "!year")
	require.NoError(t, err)

	var payload export.Payload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "golang generics", payload.Query)
	assert.Len(t, payload.Results.Results.Web, 5)
	assert.Len(t, payload.Results.Results.News, 1)
	assert.Equal(t, "golang generics - Wikipedia", payload.Results.Results.Web[0].Title)
}

func TestSearchNewsKeepsEmptyWebBucket(t *testing.T) {
	out, err := execute(t, "--demo", "search", "--format", "json", "ai", "policy", "!news")
	require.NoError(t, err)
	assert.Contains(t, out, `"web": []`)

	var payload export.Payload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Len(t, payload.Results.Results.News, 6)
}

func TestSearchYAMLDemo(t *testing.T) {
	out, err := execute(t, "--demo", "search", "--format", "yaml", "rust")
	require.NoError(t, err)

	var payload export.Payload
	require.NoError(t, yaml.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "rust", payload.Query)
	assert.Equal(t, "https://en.wikipedia.org/wiki/rust", payload.Results.Results.Web[0].URL)
	assert.Contains(t, out, "    web:\n")
}

func TestSearchTextDemo(t *testing.T) {
	out, err := execute(t, "--demo", "search", "hiking")
	require.NoError(t, err)
	assert.True(t, len(out) > len(youapi.DemoBanner))
	assert.Equal(t, youapi.DemoBanner, out[:len(youapi.DemoBanner)])
	assert.Contains(t, out, "=== WEB SEARCH RESULTS ===")
	assert.Contains(t, out, "=== NEWS RESULTS ===")
	assert.Contains(t, out, "1. hiking - Wikipedia")
}

func TestSearchMarkdownDemo(t *testing.T) {
	out, err := execute(t, "--demo", "search", "-f", "md", "hiking")
	require.NoError(t, err)
	// Not a terminal, so the markdown is printed as is
	assert.Contains(t, out, "1. [hiking - Wikipedia](https://en.wikipedia.org/wiki/hiking)")
	assert.Contains(t, out, "## News")
}

func TestSearchUnknownFormat(t *testing.T) {
	_, err := execute(t, "--demo", "search", "--format", "xml", "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "xml"`)
}

func TestSearchOnlyBangs(t *testing.T) {
	_, err := execute(t, "--demo", "search", "!week")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")
}

func TestSearchWithoutKey(t *testing.T) {
	t.Setenv("YOU_API_KEY", "")
	_, err := execute(t, "search", "go")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key configured")
	assert.Contains(t, err.Error(), "--demo")
}

func TestDemoFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 1\ndemo = true\n"), 0o644))

	out, err := execute(t, "--config", path, "search", "--format", "json", "go")
	require.NoError(t, err)
	assert.Contains(t, out, `"query": "go"`)
}

func TestSetupPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 1\napi_key = \"from-file\"\n"), 0o644))
	t.Cleanup(func() { configFile, demoMode, logFile = "", false, "" })

	configFile, logLevel, logFile, demoMode = path, "debug", filepath.Join(t.TempDir(), "test.log"), false
	require.NoError(t, setup(searchCmd, nil))
	assert.Equal(t, "from-file", appConfig.APIKey)
	assert.False(t, appConfig.Demo)
	require.NoError(t, appLog.Close())

	t.Setenv("YOU_API_KEY", "from-env")
	demoMode = true
	require.NoError(t, setup(searchCmd, nil))
	assert.Equal(t, "from-env", appConfig.APIKey)
	assert.True(t, appConfig.Demo)
	require.NoError(t, appLog.Close())
}

func TestSetupRejectsBadLogLevel(t *testing.T) {
	t.Cleanup(func() { logLevel = "info" })
	logLevel = "loud"
	err := setup(searchCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown log level")
}

func TestNewBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Demo = true
	_, ok := newBackend(cfg, logr.Discard()).(youapi.Demo)
	assert.True(t, ok)

	cfg.Demo = false
	cfg.APIKey = "k"
	client, ok := newBackend(cfg, logr.Discard()).(*youapi.Client)
	require.True(t, ok)
	assert.True(t, client.HasKey())
}

func TestRootRejectsArgs(t *testing.T) {
	_, err := execute(t, "not-a-command")
	require.Error(t, err)
}

func TestFlagNamesAcceptUnderscores(t *testing.T) {
	out, err := execute(t, "--log_level", "debug", "--demo", "search", "--format", "json", "go")
	require.NoError(t, err)
	assert.Contains(t, out, `"query": "go"`)
}
