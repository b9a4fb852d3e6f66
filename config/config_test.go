package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadOrCreateConfigMissingCreatesDefault(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	// Ensure missing
	if _, err := os.Stat(configPath); err == nil {
		t.Fatalf("expected config file to be missing")
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if !created {
		t.Fatalf("LoadOrCreateConfig() created=false, want true")
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode created config: %v", err)
	}
	if got.Video.Width != 1920 || got.Video.Height != 1080 {
		t.Fatalf("default resolution = %dx%d, want 1920x1080", got.Video.Width, got.Video.Height)
	}
	if got.Video.Fps != 30 {
		t.Fatalf("default fps = %d, want %d", got.Video.Fps, 30)
	}
	if got.Tts.Speed != 0.95 {
		t.Fatalf("default tts speed = %v, want %v", got.Tts.Speed, 0.95)
	}
}

func TestLoadOrCreateConfigLoadsExisting(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	Conf = defaultConfig()
	Conf.Video.Bitrate = "8M"
	Conf.Llm.Model = "gpt-4o-mini"
	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	Conf = Config{}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if created {
		t.Fatalf("LoadOrCreateConfig() created=true, want false")
	}

	if Conf.Video.Bitrate != "8M" {
		t.Fatalf("loaded bitrate = %q, want %q", Conf.Video.Bitrate, "8M")
	}
	if Conf.Llm.Model != "gpt-4o-mini" {
		t.Fatalf("loaded llm model = %q, want %q", Conf.Llm.Model, "gpt-4o-mini")
	}
}

func TestSaveConfigCreatesParentDirs(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "deep", "nest", "config.toml")
	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })

	Conf = defaultConfig()
	Conf.Video.Fps = 25

	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); err != nil {
		t.Fatalf("expected parent directories to exist: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode saved config: %v", err)
	}
	if got.Video.Fps != 25 {
		t.Fatalf("saved fps = %d, want %d", got.Video.Fps, 25)
	}
}
