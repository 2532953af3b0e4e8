// Package config loads the supervisor settings and the managed container
// document.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/me/depstart/internal/condition"
	"github.com/me/depstart/internal/schedule"
	"github.com/me/depstart/internal/supervisor"
)

//go:embed templates/config.template.yaml
var defaultTemplate []byte

// DefaultTemplate returns the template bundled into the binary.
func DefaultTemplate() []byte {
	return bytes.Clone(defaultTemplate)
}

// File is the on-disk configuration document.
type File struct {
	PollInterval *int                     `yaml:"poll_interval"` // seconds
	Runtime      RuntimeSection           `yaml:"runtime"`
	Dependencies map[string]ContainerSpec `yaml:"dependencies"`
}

// RuntimeSection selects the docker daemon.
type RuntimeSection struct {
	Host       *string `yaml:"host"`
	APIVersion *string `yaml:"api_version"`
	Timeout    *int    `yaml:"timeout"` // seconds
}

// ContainerSpec is the start policy of one managed container.
type ContainerSpec struct {
	DependsOn []string `yaml:"depends_on"`
	Schedule  string   `yaml:"schedule"`
	Delay     int      `yaml:"delay"` // seconds
}

// Parse decodes a configuration document. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("document is empty")
		}
		return nil, fmt.Errorf("YAML parse error: %w", err)
	}
	if f.Dependencies == nil {
		return nil, errors.New("missing dependencies mapping")
	}
	if f.PollInterval != nil && *f.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval: must be positive, got %d", *f.PollInterval)
	}
	if f.Runtime.Timeout != nil && *f.Runtime.Timeout < 0 {
		return nil, fmt.Errorf("runtime.timeout: must not be negative, got %d", *f.Runtime.Timeout)
	}
	return &f, nil
}

// Containers validates every entry and converts it to a ManagedContainer,
// in name order. All problems are reported together.
func (f *File) Containers() ([]supervisor.ManagedContainer, error) {
	names := make([]string, 0, len(f.Dependencies))
	for name := range f.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	out := make([]supervisor.ManagedContainer, 0, len(names))
	for _, name := range names {
		c, err := f.Dependencies[name].managed(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, c)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func (s ContainerSpec) managed(name string) (supervisor.ManagedContainer, error) {
	c := supervisor.ManagedContainer{Name: name}
	if name == "" {
		return c, errors.New("dependencies: empty container name")
	}

	var errs []error
	for i, raw := range s.DependsOn {
		cond, err := condition.Parse(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.depends_on[%d]: %w", name, i, err))
			continue
		}
		c.DependsOn = append(c.DependsOn, cond)
	}
	if s.Schedule != "" {
		sched, err := schedule.Parse(s.Schedule)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s.schedule: %w", name, err))
		}
		c.Schedule = sched
	}
	if s.Delay < 0 {
		errs = append(errs, fmt.Errorf("%s.delay: must not be negative, got %d", name, s.Delay))
	}
	c.Delay = time.Duration(s.Delay) * time.Second

	return c, errors.Join(errs...)
}

// Load reads, parses and validates the document at path. Any failure is
// returned as *Error.
func Load(path string) (*File, []supervisor.ManagedContainer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, &Error{Path: path, Err: err}
	}
	f, err := Parse(data)
	if err != nil {
		return nil, nil, &Error{Path: path, Err: err}
	}
	containers, err := f.Containers()
	if err != nil {
		return nil, nil, &Error{Path: path, Err: err}
	}
	return f, containers, nil
}

// EnsureFile creates path from a template when it does not exist yet. The
// template is read from templatePath, or the bundled default when
// templatePath is empty or missing. It returns the template source used, or
// "" when path already existed.
func EnsureFile(path, templatePath string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return "", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", &Error{Path: path, Err: err}
	}

	data, source := defaultTemplate, "embedded"
	if templatePath != "" {
		tmpl, err := os.ReadFile(templatePath)
		switch {
		case err == nil:
			data, source = tmpl, templatePath
		case !errors.Is(err, os.ErrNotExist):
			return "", &Error{Path: templatePath, Err: err}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", &Error{Path: path, Err: fmt.Errorf("create config dir: %w", err)}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &Error{Path: path, Err: fmt.Errorf("write from template: %w", err)}
	}
	return source, nil
}
