package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultFileName = "config.yaml"
	defaultHost     = "127.0.0.1"
	defaultPort     = 8080
	defaultDBPath   = "data/packlist.db"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type Database struct {
	Path string `yaml:"path"`
}

func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads path (or ./config.yaml when path is empty). A missing file is
// not an error: defaults apply, so the binary works out of the box.
func Load(path string) (Config, error) {
	cfg := Default()

	path = strings.TrimSpace(path)
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if strings.TrimSpace(cfg.Server.Host) == "" {
		cfg.Server.Host = defaultHost
	}
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = defaultPort
	}
	if strings.TrimSpace(cfg.Database.Path) == "" {
		cfg.Database.Path = defaultDBPath
	}
	return cfg, nil
}

func Default() Config {
	return Config{
		Server:   Server{Host: defaultHost, Port: defaultPort},
		Database: Database{Path: defaultDBPath},
	}
}
