package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miguelmarques1/church-web/pkg/permission"
)

// Wildcard grants every action on a resource.
const Wildcard = "*"

// ErrEmptyDocument is returned when a policy document holds no YAML.
var ErrEmptyDocument = errors.New("policy document is empty")

// Document is a parsed policy.
type Document struct {
	Table permission.Table
	Pages permission.Pages

	text []byte
}

type documentYAML struct {
	Roles      map[string]map[string][]string `yaml:"roles"`
	Pages      pagesYAML                      `yaml:"pages"`
	Navigation navigationYAML                 `yaml:"navigation"`
}

type pagesYAML struct {
	Public        []string `yaml:"public,flow"`
	RequiresLogin []string `yaml:"requires_login,flow"`
}

type navigationYAML struct {
	AdminOnly  []string `yaml:"admin_only,flow"`
	Management []string `yaml:"management,flow"`
}

// Parse parses a policy document from a reader
func Parse(r io.Reader) (*Document, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}

	var raw documentYAML
	decoder := yaml.NewDecoder(bytes.NewReader(text))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("failed to parse policy: %w", err)
	}

	table, err := buildTable(raw.Roles)
	if err != nil {
		return nil, err
	}

	return &Document{
		Table: table,
		Pages: buildPages(raw.Pages, raw.Navigation),
		text:  text,
	}, nil
}

// Load parses the policy document at path.
func Load(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy file: %w", err)
	}
	defer func() { _ = file.Close() }()

	doc, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Default returns the built-in church-web policy.
func Default() *Document {
	table := permission.DefaultTable()
	pages := permission.DefaultPages()
	text, err := Marshal(table, pages)
	if err != nil {
		panic(fmt.Sprintf("marshal default policy: %v", err))
	}
	return &Document{Table: table, Pages: pages, text: text}
}

func buildTable(roles map[string]map[string][]string) (permission.Table, error) {
	if len(roles) == 0 {
		return permission.Table{}, errors.New("policy defines no roles")
	}

	entries := make(map[permission.Role]map[string]permission.Permission, len(roles))
	for name, resources := range roles {
		role, ok := permission.ParseRole(name)
		if !ok {
			return permission.Table{}, fmt.Errorf("unknown role %q: must be one of %s",
				name, strings.Join(permission.RoleStrings(), ", "))
		}
		if _, dup := entries[role]; dup {
			return permission.Table{}, fmt.Errorf("role %q is defined more than once", role)
		}

		grants := make(map[string]permission.Permission, len(resources))
		for resource, actions := range resources {
			if resource == "" {
				return permission.Table{}, fmt.Errorf("role %q: empty resource name", name)
			}
			p, err := parseActions(actions)
			if err != nil {
				return permission.Table{}, fmt.Errorf("role %q, resource %q: %w", name, resource, err)
			}
			grants[resource] = p
		}
		entries[role] = grants
	}
	return permission.NewTable(entries), nil
}

func parseActions(actions []string) (permission.Permission, error) {
	var granted []permission.Action
	for _, a := range actions {
		if a == Wildcard {
			return permission.All, nil
		}
		action, err := permission.ActionString(a)
		if err != nil {
			return permission.None, fmt.Errorf("unknown action %q: must be one of %s or %q",
				a, strings.Join(permission.ActionStrings(), ", "), Wildcard)
		}
		granted = append(granted, action)
	}
	return permission.Grant(granted...), nil
}

func buildPages(pages pagesYAML, nav navigationYAML) permission.Pages {
	defaults := permission.DefaultPages()
	return permission.Pages{
		Public:        orDefault(pages.Public, defaults.Public),
		RequiresLogin: orDefault(pages.RequiresLogin, defaults.RequiresLogin),
		AdminOnly:     orDefault(nav.AdminOnly, defaults.AdminOnly),
		Management:    orDefault(nav.Management, defaults.Management),
	}
}

// orDefault keeps an explicitly empty list and only replaces an omitted one.
func orDefault(list, def []string) []string {
	if list == nil {
		return def
	}
	return list
}

// Build returns a service deciding against the document.
func (d *Document) Build(opts ...permission.Option) (*permission.Service, error) {
	if d == nil || len(d.Table.Roles()) == 0 {
		return nil, errors.New("policy defines no roles")
	}
	return permission.NewService(d.Table, d.Pages, opts...), nil
}

// Validate reports every role and resource pair that some roles configure and
// others leave out. Decisions on those pairs deny and raise a configuration
// gap at runtime.
func (d *Document) Validate() []permission.Gap {
	return d.Table.Gaps()
}

// Text returns the document source.
func (d *Document) Text() string {
	return string(d.text)
}

// SHA256 returns the hex digest of the document source.
func (d *Document) SHA256() string {
	sum := sha256.Sum256(d.text)
	return hex.EncodeToString(sum[:])
}
