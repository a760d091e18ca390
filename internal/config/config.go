// Package config loads the ownsearch YAML configuration file.
package config

import (
	"net"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

const DefaultPath = "config/own_search.yaml"

type Config struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	StartURL string `yaml:"start_url"`
	Index    string `yaml:"index"`
	Backend  string `yaml:"backend"`
	Scraper  string `yaml:"scraper"`
	Crawl    Crawl  `yaml:"crawl"`
	Google   Google `yaml:"google"`
}

type Crawl struct {
	Depth         int      `yaml:"depth"`
	Parallelism   int      `yaml:"parallelism"`
	AllowExternal bool     `yaml:"allow_external"`
	Include       []string `yaml:"include"`
	Exclude       []string `yaml:"exclude"`
}

type Google struct {
	APIKey string `yaml:"api_key"`
	CX     string `yaml:"cx"`
}

// Address returns the address the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("invalid port %d", c.Port)
	}

	// The start page is at depth 1.
	if c.Crawl.Depth < 1 {
		return errors.Errorf("invalid crawl depth %d, must be at least 1", c.Crawl.Depth)
	}

	if c.Crawl.Parallelism < 1 {
		return errors.Errorf("invalid crawl parallelism %d", c.Crawl.Parallelism)
	}

	return nil
}

func Default() *Config {
	return &Config{
		Host:    "127.0.0.1",
		Port:    8080,
		Index:   "own_search.bleve",
		Backend: "index",
		Scraper: "http",
		Crawl: Crawl{
			Depth:       2,
			Parallelism: 4,
		},
	}
}

// Load reads the configuration file at path on top of the defaults. A
// missing file is an error only when mustExist is true.
func Load(path string, mustExist bool) (*Config, error) {
	conf := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return conf, nil
		}

		return nil, errors.Wrapf(err, "could not read configuration file '%s'", path)
	}

	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, errors.Wrapf(err, "could not parse configuration file '%s'", path)
	}

	if conf.Backend == "" {
		conf.Backend = Default().Backend
	}

	if err := conf.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	return conf, nil
}
