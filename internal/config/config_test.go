package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func TestLoadEffective_Defaults(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{Input: "data/places.geojson"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(cwd, "data", "places.geojson"), eff.InputPath)
	assert.Equal(t, filepath.Join(cwd, "data"), eff.OutputDir)
	assert.Equal(t, filepath.Join(cwd, "data", "places_cleaned.geojson"), eff.OutputPath)
	assert.Empty(t, eff.ConfigPath)

	assert.True(t, eff.Enrich)
	assert.False(t, eff.DryRun)
	assert.Equal(t, "title", eff.TitleKey)
	assert.Equal(t, "Wikipedia", eff.WikipediaKey)
	assert.Equal(t, []string{"title"}, eff.TextFields)
	assert.Equal(t, "en", eff.BaseLanguage)
	assert.Equal(t, "de", eff.SecondaryLanguage)
	assert.Equal(t, 4, eff.MaxLanguages)
	assert.Equal(t, BackendSearch, eff.SearchBackend)
	assert.Equal(t, 3, eff.SearchLimit)
	assert.Equal(t, "https://{lang}.wikipedia.org", eff.SearchEndpoint)
	assert.Equal(t, 200*time.Millisecond, eff.RequestInterval)
	assert.Equal(t, 10*time.Second, eff.Timeout)
	assert.Equal(t, 500*time.Millisecond, eff.RetryInitialInterval)
	assert.Equal(t, 3, eff.MaxAttempts)
	assert.Empty(t, eff.CacheDir)
	assert.Equal(t, "info", eff.LogLevel)
	assert.Equal(t, "console", eff.LogFormat)
	assert.Empty(t, eff.LogFile)
	assert.Equal(t, 10, eff.LogMaxSizeMB)
	assert.Equal(t, 3, eff.LogMaxBackups)
}

func TestLoadEffective_MissingInput(t *testing.T) {
	_, err := LoadEffective(t.TempDir(), CLIArgs{})
	assert.Equal(t, ErrCodeMissingInput, Code(err))
}

func TestLoadEffective_ExplicitConfigNotFound(t *testing.T) {
	cwd := t.TempDir()
	_, err := LoadEffective(cwd, CLIArgs{Input: "a.geojson", ConfigPath: "nope.yaml"})
	assert.Equal(t, ErrCodeNotFound, Code(err), "err=%v", err)
}

func TestLoadEffective_DiscoversDefaultFile(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, DefaultFileName), []byte(`
title_key: name
text_fields: [name, description]
max_languages: 3
search:
  backend: opensearch
  limit: 5
http:
  request_interval: 1s
cache:
  dir: .cache
log:
  file: logs/geoclean.log
`))

	eff, err := LoadEffective(cwd, CLIArgs{Input: "a.geojson", OutputDir: "out"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, DefaultFileName), eff.ConfigPath)
	assert.Equal(t, "name", eff.TitleKey)
	assert.Equal(t, []string{"name", "description"}, eff.TextFields)
	assert.Equal(t, 3, eff.MaxLanguages)
	assert.Equal(t, BackendOpenSearch, eff.SearchBackend)
	assert.Equal(t, 5, eff.SearchLimit)
	assert.Equal(t, time.Second, eff.RequestInterval)
	assert.Equal(t, filepath.Join(cwd, ".cache"), eff.CacheDir)
	assert.Equal(t, filepath.Join(cwd, "logs", "geoclean.log"), eff.LogFile)
	assert.Equal(t, filepath.Join(cwd, "out", "a_cleaned.geojson"), eff.OutputPath)
	// 未设置的字段仍取默认值
	assert.Equal(t, "Wikipedia", eff.WikipediaKey)
	assert.Equal(t, 10*time.Second, eff.Timeout)
}

func TestLoadEffective_EnvOverridesFile(t *testing.T) {
	cwd := t.TempDir()
	cfg := filepath.Join(cwd, "conf", "custom.yaml")
	writeFile(t, cfg, []byte("base_language: fr\nlog:\n  level: debug\n"))
	t.Setenv("GEOCLEAN_BASE_LANGUAGE", "it")

	eff, err := LoadEffective(cwd, CLIArgs{Input: "a.geojson", ConfigPath: cfg, LogLevel: "warn"})
	require.NoError(t, err)
	assert.Equal(t, "it", eff.BaseLanguage)
	// CLI 覆盖配置文件
	assert.Equal(t, "warn", eff.LogLevel)
}

func TestLoadEffective_EnrichSwitches(t *testing.T) {
	cwd := t.TempDir()
	eff, err := LoadEffective(cwd, CLIArgs{Input: "a.geojson", NoEnrich: true, DryRun: true})
	require.NoError(t, err)
	assert.False(t, eff.Enrich)
	assert.True(t, eff.DryRun)

	writeFile(t, filepath.Join(cwd, DefaultFileName), []byte("disable_enrich: true\n"))
	eff, err = LoadEffective(cwd, CLIArgs{Input: "a.geojson"})
	require.NoError(t, err)
	assert.False(t, eff.Enrich)
}

func TestLoadEffective_Invalid(t *testing.T) {
	cases := map[string]string{
		"syntax":          "title_key: [",
		"backend":         "search:\n  backend: bing\n",
		"language":        "base_language: English\n",
		"same keys":       "title_key: Wikipedia\n",
		"endpoint":        "search:\n  endpoint: https://wikipedia.org\n",
		"proxy":           "http:\n  proxy_url: 127.0.0.1\n",
		"limit":           "search:\n  limit: 500\n",
		"log format":      "log:\n  format: xml\n",
		"negative":        "http:\n  request_interval: -1s\n",
		"max attempts":    "retry:\n  max_attempts: 99\n",
		"max languages":   "max_languages: 40\n",
		"unknown level":   "log:\n  level: loud\n",
		"bad duration":    "http:\n  timeout: soon\n",
		"language region": "secondary_language: de_AT\n",
		"pruned title":    "title_key: text\n",
		"log size":        "log:\n  max_size_mb: 5000\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cwd := t.TempDir()
			writeFile(t, filepath.Join(cwd, DefaultFileName), []byte(body))
			_, err := LoadEffective(cwd, CLIArgs{Input: "a.geojson"})
			assert.Equal(t, ErrCodeInvalid, Code(err), "err=%v", err)
		})
	}
}

func TestLoadEffective_InvalidNamesConfigKeys(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, DefaultFileName), []byte("search:\n  limit: 500\n  backend: Bing\n"))

	_, err := LoadEffective(cwd, CLIArgs{Input: "a.geojson"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.limit")
	assert.Contains(t, err.Error(), `search.backend 只能是 search/opensearch 之一，实际是 "bing"`)
}

func TestLoadEffective_TrimsAndLowercases(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, DefaultFileName), []byte("base_language: \" FR \"\nsearch:\n  backend: OpenSearch\nlog:\n  format: JSON\n"))

	eff, err := LoadEffective(cwd, CLIArgs{Input: "a.geojson"})
	require.NoError(t, err)
	assert.Equal(t, "fr", eff.BaseLanguage)
	assert.Equal(t, BackendOpenSearch, eff.SearchBackend)
	assert.Equal(t, "json", eff.LogFormat)
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "places_cleaned.geojson"), OutputPath("/in/places.geojson", "out"))
	assert.Equal(t, filepath.Join("out", "places_cleaned.json"), OutputPath("places.json", "out"))
	assert.Equal(t, filepath.Join("out", "places_cleaned"), OutputPath("places", "out"))
}
