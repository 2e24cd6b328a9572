package launch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Report collects every finding for a document in one pass. Errors make
// the affected preset unusable; warnings flag entries worth a second
// look but never block.
type Report struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// OK reports whether validation found no errors.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// LintOptions tunes ValidateFile. KnownType, when set, is consulted to
// flag preset types no adapter claims. Workspace, when set, roots
// relative program paths for the existence probe.
type LintOptions struct {
	KnownType func(string) bool
	Workspace string
}

var structValidator = validator.New()

// ValidateFile checks a whole document and returns every finding rather
// than stopping at the first.
func ValidateFile(f File, opts LintOptions) Report {
	var r Report

	if f.Version == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("version is required (expected %q)", DefaultVersion))
	} else if f.Version != DefaultVersion {
		r.Warnings = append(r.Warnings, fmt.Sprintf("version %q is not the expected %q", f.Version, DefaultVersion))
	}

	seen := map[string]int{}
	for i, p := range f.Configurations {
		label := presetLabel(i, p)
		for _, msg := range checkPreset(p) {
			r.Errors = append(r.Errors, label+": "+msg)
		}

		if p.Name != "" {
			if first, dup := seen[p.Name]; dup {
				r.Warnings = append(r.Warnings, fmt.Sprintf(
					"%s: duplicate name, first used by configurations[%d]; lookup by name resolves to the first entry", label, first))
			} else {
				seen[p.Name] = i
			}
		}
		if opts.KnownType != nil && p.Type != "" && !opts.KnownType(p.Type) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s: no adapter registered for type %q", label, p.Type))
		}
		if p.Request == RequestAttach {
			r.Warnings = append(r.Warnings, label+": attach presets are listed but cannot be started by this tool")
		}
		if opts.Workspace != "" && p.Program != "" && !strings.Contains(p.Program, "${") {
			prog := p.Program
			if !filepath.IsAbs(prog) {
				prog = filepath.Join(opts.Workspace, prog)
			}
			if _, err := os.Stat(prog); err != nil {
				r.Warnings = append(r.Warnings, fmt.Sprintf("%s: program %s not found", label, p.Program))
			}
		}
	}
	return r
}

func presetLabel(i int, p Preset) string {
	if p.Name == "" {
		return fmt.Sprintf("configurations[%d]", i)
	}
	return fmt.Sprintf("configurations[%d] (%q)", i, p.Name)
}

// checkPreset translates struct-tag violations into messages keyed by
// the JSON field name.
func checkPreset(p Preset) []string {
	err := structValidator.Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonField(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
		}
	}
	return msgs
}

func jsonField(structField string) string {
	switch structField {
	case "StopOnEntry":
		return "stopOnEntry"
	default:
		return strings.ToLower(structField)
	}
}
