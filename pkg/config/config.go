// Package config reads and writes the atlaspack TOML configuration file.
//
// The file holds defaults for the pack command and the server. Values set
// on the command line win over the file.
//
//	output = "atlas.png"
//	resource = "atlas.xml"
//	padding = 1
//	max_size = 2048
//	packer = "tree"
//
//	[cache]
//	url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
// [Find] looks for atlaspack.toml in the working directory first, then in
// the user config directory ($XDG_CONFIG_HOME/atlaspack).
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	apperr "github.com/matzehuels/atlaspack/pkg/errors"
	"github.com/matzehuels/atlaspack/pkg/pack"
)

// FileName is the config file name searched for by Find.
const FileName = "atlaspack.toml"

// Config is the on-disk configuration.
type Config struct {
	Output         string `toml:"output"`
	Resource       string `toml:"resource,omitempty"`
	ResourceFormat string `toml:"resource_format,omitempty"`
	ImageFormat    string `toml:"image_format,omitempty"`

	Border      int    `toml:"border"`
	Padding     int    `toml:"padding"`
	MaxSize     int    `toml:"max_size"`
	PowerOfTwo  bool   `toml:"pot"`
	Trim        bool   `toml:"trim"`
	TrimPath    string `toml:"trim_path,omitempty"`
	SkipInvalid bool   `toml:"skip_invalid"`
	Overlay     bool   `toml:"overlay"`
	Packer      string `toml:"packer"`
	Ordering    string `toml:"ordering"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the layout cache backend. An empty URL uses the
// file cache under Dir. Namespace prefixes every key so several teams can
// share one Redis.
type CacheConfig struct {
	URL       string `toml:"url,omitempty"`
	Dir       string `toml:"dir,omitempty"`
	Namespace string `toml:"namespace,omitempty"`
	Disabled  bool   `toml:"disabled"`
}

// ServerConfig configures `atlaspack serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Output:   "atlas.png",
		Padding:  pack.DefaultPadding,
		MaxSize:  pack.DefaultMaxSize,
		Packer:   pack.DefaultPacker,
		Ordering: pack.DefaultOrdering,
		Server:   ServerConfig{Addr: ":8080"},
	}
}

// Load reads path over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, apperr.Wrap(apperr.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Config{}, apperr.New(apperr.ErrCodeInvalidConfig, "config %s: unknown key %q", path, undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := apperr.ValidateNonNegative("border", c.Border); err != nil {
		return err
	}
	if err := apperr.ValidateNonNegative("padding", c.Padding); err != nil {
		return err
	}
	if err := apperr.ValidateNonNegative("max_size", c.MaxSize); err != nil {
		return err
	}
	if c.Cache.URL != "" {
		if err := apperr.ValidateCacheURL(c.Cache.URL); err != nil {
			return err
		}
	}
	return nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return apperr.Wrap(apperr.ErrCodeEncode, err, "encode config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidPath, err, "create config dir")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidPath, err, "write config %s", path)
	}
	return nil
}

// Dir returns the user config directory for atlaspack.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "atlaspack")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "atlaspack")
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "atlaspack")
}

// Find returns the first existing config file, checking the working
// directory and then [Dir].
func Find() (string, bool) {
	for _, p := range []string{FileName, filepath.Join(Dir(), FileName)} {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}
