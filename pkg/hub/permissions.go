package hub

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/bft-labs/xstore/internal/domain"
)

// Rule grants the listed methods to every origin matching the Origin
// regular expression. The expression is unanchored.
type Rule struct {
	Origin string          `toml:"origin" yaml:"origin"`
	Allow  []domain.Method `toml:"allow" yaml:"allow"`
}

type compiledRule struct {
	origin *regexp.Regexp
	allow  map[domain.Method]bool
}

// Permissions is an ordered, immutable list of rules.
type Permissions struct {
	rules    []Rule
	compiled []compiledRule
}

// permissionsFile is the on-disk layout shared by the TOML and YAML forms.
type permissionsFile struct {
	Permissions []Rule `toml:"permissions" yaml:"permissions"`
}

// NewPermissions compiles rules. It fails on an invalid expression or an
// unknown method name.
func NewPermissions(rules ...Rule) (*Permissions, error) {
	p := &Permissions{
		rules:    append([]Rule(nil), rules...),
		compiled: make([]compiledRule, 0, len(rules)),
	}
	for i, r := range rules {
		re, err := regexp.Compile(r.Origin)
		if err != nil {
			return nil, fmt.Errorf("permission %d: invalid origin pattern %q: %w", i, r.Origin, err)
		}
		allow := make(map[domain.Method]bool, len(r.Allow))
		for _, m := range r.Allow {
			if !m.Valid() {
				return nil, fmt.Errorf("permission %d: unknown method %q", i, m)
			}
			allow[m] = true
		}
		p.compiled = append(p.compiled, compiledRule{origin: re, allow: allow})
	}
	return p, nil
}

// AllowAll returns permissions granting every method to every origin.
func AllowAll() *Permissions {
	p, _ := NewPermissions(Rule{Origin: ".*", Allow: domain.Methods})
	return p
}

// Allowed reports whether origin may invoke m. Methods outside the protocol
// are never allowed.
func (p *Permissions) Allowed(origin string, m domain.Method) bool {
	if p == nil || !m.Valid() {
		return false
	}
	for _, r := range p.compiled {
		if r.origin.MatchString(origin) && r.allow[m] {
			return true
		}
	}
	return false
}

// Rules returns a copy of the rules.
func (p *Permissions) Rules() []Rule {
	if p == nil {
		return nil
	}
	return append([]Rule(nil), p.rules...)
}

// LoadPermissions reads a permissions file. The format follows the file
// extension: .toml, or .yaml/.yml.
func LoadPermissions(path string) (*Permissions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read permissions file: %w", err)
	}
	return ParsePermissions(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// ParsePermissions decodes permissions in the given format ("toml", "yaml"
// or "yml").
func ParsePermissions(data []byte, format string) (*Permissions, error) {
	var file permissionsFile

	switch strings.ToLower(format) {
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse toml permissions: %w", err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse yaml permissions: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported permissions format %q", format)
	}

	return NewPermissions(file.Permissions...)
}
