package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Endpoint string        `split_words:"true" required:"true"`
	Timeout  time.Duration `split_words:"true" default:"5s"`
}

func TestNewFillsFromEnvironment(t *testing.T) {
	t.Setenv("SAMPLE_ENDPOINT", "https://api.example.test")

	conf, err := New[sampleConfig]("SAMPLE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conf.Endpoint != "https://api.example.test" {
		t.Fatalf("endpoint = %q", conf.Endpoint)
	}
	if conf.Timeout != 5*time.Second {
		t.Fatalf("default timeout = %v", conf.Timeout)
	}
}

func TestNewFailsOnMissingRequired(t *testing.T) {
	os.Unsetenv("SAMPLE_ENDPOINT")

	if _, err := New[sampleConfig]("SAMPLE"); err == nil {
		t.Fatal("want error for missing required field")
	}
}

func TestLoadEnvFileExportsVariables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("SAMPLE_FILE_VALUE=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SAMPLE_FILE_VALUE", "")

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := os.Getenv("SAMPLE_FILE_VALUE"); got != "from-file" {
		t.Fatalf("exported value = %q", got)
	}
}
