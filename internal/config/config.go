package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ListenAddr     string        `yaml:"listen_addr" json:"listen_addr"`
	MetaDSN        string        `yaml:"meta_dsn" json:"-"`
	UploadDir      string        `yaml:"upload_dir" json:"upload_dir"`
	AlwaysUseFiles bool          `yaml:"always_use_files" json:"always_use_files"`
	GCTTL          time.Duration `yaml:"gc_ttl" json:"gc_ttl"`
	GCInterval     time.Duration `yaml:"gc_interval" json:"gc_interval"`
}

// Default возвращает значения, которыми заполняются отсутствующие ключи.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		MetaDSN:    "memory://",
		UploadDir:  filepath.Join(os.TempDir(), "multipart_lite"),
		GCTTL:      time.Hour,
		GCInterval: 10 * time.Minute,
	}
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
// Если CONFIG_PATH не задан и ./config.yaml нет, используются значения по умолчанию.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = "./config.yaml"
	}

	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	if err := applyEnv(c); err != nil {
		return nil, err
	}

	return c, nil
}

func applyEnv(c *Config) error {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("META_DSN"); v != "" {
		c.MetaDSN = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.UploadDir = v
	}
	if v := os.Getenv("ALWAYS_USE_FILES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ALWAYS_USE_FILES: %w", err)
		}
		c.AlwaysUseFiles = b
	}
	if err := durationEnv("GC_TTL", &c.GCTTL); err != nil {
		return err
	}

	return durationEnv("GC_INTERVAL", &c.GCInterval)
}

func durationEnv(k string, dst *time.Duration) error {
	v := os.Getenv(k)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	*dst = d

	return nil
}
