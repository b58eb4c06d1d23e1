package project

import (
	"path/filepath"
	"strings"
)

// I18n flavor selects the translation-function preamble written into
// generated code.
const (
	I18nNone    = 0
	I18nGettext = 1
	I18nCatgets = 2
)

// Settings are the read-only project options consulted during an emit pass.
// Они загружаются из veld.toml и не меняются, пока писатель работает.
type Settings struct {
	Name string

	CodeFileName   string
	HeaderFileName string

	// IncludeHeaderFromCode emits `#include "header"` at the top of the
	// source file.
	IncludeHeaderFromCode bool
	// AvoidEarlyIncludes suppresses the base toolkit include in the header.
	AvoidEarlyIncludes bool
	// UTF8InSrc writes non-ASCII bytes verbatim inside string literals
	// instead of octal escapes.
	UTF8InSrc bool
	// WriteMergebackData brackets emitted blocks with CRC tags so edits can
	// be merged back later.
	WriteMergebackData bool

	I18nType int

	// gettext flavor
	GnuInclude        string
	GnuConditional    string
	GnuFunction       string
	GnuStaticFunction string

	// catgets flavor
	PosInclude     string
	PosConditional string
	PosFile        string
	PosSet         string
}

// Basename returns the project name without directory or extension. The
// catgets fallback preamble uses it as the catalog name.
func (s *Settings) Basename() string {
	name := s.Name
	if name == "" {
		name = s.CodeFileName
	}
	name = filepath.Base(name)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// I18nInclude returns the include path of the active flavor.
func (s *Settings) I18nInclude() string {
	if s.I18nType == I18nGettext {
		return s.GnuInclude
	}
	return s.PosInclude
}

// I18nConditional returns the guard macro of the active flavor.
func (s *Settings) I18nConditional() string {
	if s.I18nType == I18nGettext {
		return s.GnuConditional
	}
	return s.PosConditional
}

// Default returns the settings used when no veld.toml exists: output names
// derived from name, the header included from the source file, no i18n
// flavor, and merge-back tagging off.
func Default(name string) *Settings {
	return &Settings{
		Name:                  name,
		CodeFileName:          name + ".cxx",
		HeaderFileName:        name + ".h",
		IncludeHeaderFromCode: true,
		GnuInclude:            "<libintl.h>",
		GnuFunction:           "gettext",
		PosInclude:            "<nl_types.h>",
		PosSet:                "1",
	}
}
