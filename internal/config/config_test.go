package config

import (
	"os"
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "nobbq-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	os.Setenv("NOBBQ_CONFIG_DIR", tmpDir)
	defer os.Unsetenv("NOBBQ_CONFIG_DIR")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.SampleLimit != DefaultSampleLimit {
		t.Errorf("Expected sample limit %d, got %d", DefaultSampleLimit, cfg.SampleLimit)
	}
	if cfg.Seed != DefaultSeed {
		t.Errorf("Expected seed %d, got %d", DefaultSeed, cfg.Seed)
	}
	if cfg.TargetLang != "Norwegian" {
		t.Errorf("Expected target lang Norwegian, got %s", cfg.TargetLang)
	}
	if cfg.SleepMS != DefaultSleepMS {
		t.Errorf("Expected sleep %d, got %d", DefaultSleepMS, cfg.SleepMS)
	}
}

func TestLoadSaveConfig(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "nobbq-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	os.Setenv("NOBBQ_CONFIG_DIR", tmpDir)
	defer os.Unsetenv("NOBBQ_CONFIG_DIR")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	cfg.SampleLimit = 25
	cfg.Categories = []string{"Age", "Religion"}
	cfg.Providers["openai"] = Provider{Model: "gpt-4o-mini"}

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	path, _ := GetConfigFilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("Config file not created at %s", path)
	}

	cfg2, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg2.SampleLimit != 25 {
		t.Errorf("Expected sample limit 25, got %d", cfg2.SampleLimit)
	}
	if len(cfg2.Categories) != 2 || cfg2.Categories[1] != "Religion" {
		t.Errorf("Categories not round-tripped: %v", cfg2.Categories)
	}
	if cfg2.ProviderFor("openai").Model != "gpt-4o-mini" {
		t.Errorf("Provider override not round-tripped: %+v", cfg2.Providers)
	}
	if cfg2.ProviderFor("gemini").Model != "" {
		t.Errorf("Unconfigured provider should be zero: %+v", cfg2.ProviderFor("gemini"))
	}
}

func TestStudyNameInConfigPath(t *testing.T) {
	os.Setenv("NOBBQ_CONFIG_DIR", "/tmp/nobbq-conf")
	defer os.Unsetenv("NOBBQ_CONFIG_DIR")

	old := CurrentStudyName
	defer func() { CurrentStudyName = old }()

	CurrentStudyName = "pilot"
	path, err := GetConfigFilePath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/nobbq-conf/pilot.yml" {
		t.Errorf("Unexpected config path: %s", path)
	}
}
