package main

import (
	"path/filepath"
	"strings"

	"veld/internal/project"
)

// settingsForDesign resolves the project settings that apply to one design
// document: the nearest veld.toml above it, or defaults derived from the
// document name when no manifest exists.
func settingsForDesign(designPath string) (*project.Settings, *project.Manifest, error) {
	dir := filepath.Dir(designPath)
	manifest, ok, err := project.LoadManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		name := strings.TrimSuffix(filepath.Base(designPath), filepath.Ext(designPath))
		return project.Default(name), nil, nil
	}
	return manifest.Settings(), manifest, nil
}

// outputPaths places the generated files next to the design document unless
// the configured names are already absolute.
func outputPaths(designPath string, s *project.Settings) (codePath, headerPath string) {
	dir := filepath.Dir(designPath)
	codePath = s.CodeFileName
	if !filepath.IsAbs(codePath) {
		codePath = filepath.Join(dir, codePath)
	}
	headerPath = s.HeaderFileName
	if !filepath.IsAbs(headerPath) {
		headerPath = filepath.Join(dir, headerPath)
	}
	return codePath, headerPath
}
