package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest is a located and parsed veld.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the veld.toml schema.
type Config struct {
	Package   PackageConfig   `toml:"package"`
	Output    OutputConfig    `toml:"output"`
	I18n      I18nConfig      `toml:"i18n"`
	Mergeback MergebackConfig `toml:"mergeback"`
}

type PackageConfig struct {
	Name string `toml:"name"`
}

type OutputConfig struct {
	Code     string `toml:"code"`
	Header   string `toml:"header"`
	IncludeH bool   `toml:"include_header"`
	NoEarly  bool   `toml:"avoid_early_includes"`
	UTF8     bool   `toml:"utf8_in_src"`
}

type I18nConfig struct {
	Flavor            string `toml:"flavor"` // "none" | "gettext" | "catgets"
	Include           string `toml:"include"`
	Conditional       string `toml:"conditional"`
	Function          string `toml:"function"`
	StaticFunction    string `toml:"static_function"`
	CatalogFile       string `toml:"catalog_file"`
	CatalogSet        string `toml:"catalog_set"`
}

type MergebackConfig struct {
	Enabled bool `toml:"enabled"`
}

// FindVeldToml walks up from startDir to locate veld.toml.
func FindVeldToml(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "veld.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// LoadManifest locates and parses the nearest veld.toml above startDir.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindVeldToml(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, true, nil
}

func loadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return Config{}, fmt.Errorf("%s: missing [package]", path)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(cfg.Package.Name) == "" {
		return Config{}, fmt.Errorf("%s: missing [package].name", path)
	}
	if meta.IsDefined("i18n", "flavor") {
		switch cfg.I18n.Flavor {
		case "none", "gettext", "catgets":
		default:
			return Config{}, fmt.Errorf("%s: unknown [i18n].flavor %q", path, cfg.I18n.Flavor)
		}
	}
	return cfg, nil
}

// Settings converts the manifest into the flat settings struct the emitter
// reads. Missing output names default from the package name.
func (m *Manifest) Settings() *Settings {
	s := Default(m.Config.Package.Name)
	c := m.Config
	if c.Output.Code != "" {
		s.CodeFileName = c.Output.Code
	}
	if c.Output.Header != "" {
		s.HeaderFileName = c.Output.Header
	}
	s.IncludeHeaderFromCode = c.Output.IncludeH
	s.AvoidEarlyIncludes = c.Output.NoEarly
	s.UTF8InSrc = c.Output.UTF8
	s.WriteMergebackData = c.Mergeback.Enabled
	switch c.I18n.Flavor {
	case "gettext":
		s.I18nType = I18nGettext
		if c.I18n.Include != "" {
			s.GnuInclude = c.I18n.Include
		}
		s.GnuConditional = c.I18n.Conditional
		if c.I18n.Function != "" {
			s.GnuFunction = c.I18n.Function
		}
		s.GnuStaticFunction = c.I18n.StaticFunction
	case "catgets":
		s.I18nType = I18nCatgets
		if c.I18n.Include != "" {
			s.PosInclude = c.I18n.Include
		}
		s.PosConditional = c.I18n.Conditional
		s.PosFile = c.I18n.CatalogFile
		if c.I18n.CatalogSet != "" {
			s.PosSet = c.I18n.CatalogSet
		}
	default:
		s.I18nType = I18nNone
	}
	return s
}
