// Package config provides the configuration loader for daybook.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load looks for daybook.yaml in cwd and its parents and merges it over
// domain.DefaultConfig. Without a config file the defaults are returned,
// with the sqlite database placed under cwd.
func (l *Loader) Load(cwd string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	configPath, found := findConfiguration(cwd)
	if !found {
		cfg.Remote.DSN = filepath.Join(cwd, cfg.Remote.DSN)
		return cfg, nil
	}

	var file Daybookfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return domain.Config{}, zerr.With(err, "path", configPath)
	}

	if err := l.apply(&cfg, &file, filepath.Dir(configPath)); err != nil {
		return domain.Config{}, zerr.With(err, "path", configPath)
	}
	return cfg, nil
}

func findConfiguration(cwd string) (string, bool) {
	currentDir := cwd
	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", false
		}
		currentDir = parentDir
	}
}

func (l *Loader) apply(cfg *domain.Config, file *Daybookfile, root string) error {
	if err := applyRemote(&cfg.Remote, file.Remote, root); err != nil {
		return err
	}

	if file.Toast.TTL != "" {
		ttl, err := parseDuration("toast.ttl", file.Toast.TTL)
		if err != nil {
			return err
		}
		cfg.Toast.TTL = ttl
	}

	if file.App.URL != "" {
		u, err := url.Parse(file.App.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return zerr.With(zerr.Wrap(domain.ErrInvalidAppURL, "app.url"), "url", file.App.URL)
		}
		cfg.App.URL = strings.TrimRight(file.App.URL, "/")
	}

	cfg.Telemetry.Trace = file.Telemetry.Trace

	return l.applyResources(cfg, file.Resources)
}

func applyRemote(remote *domain.RemoteConfig, dto RemoteDTO, root string) error {
	if dto.Driver != "" {
		remote.Driver = strings.ToLower(dto.Driver)
	}

	switch remote.Driver {
	case domain.DriverSQLite:
		dsn := dto.DSN
		if dsn == "" {
			dsn = domain.DefaultDatabasePath()
		}
		if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") && !filepath.IsAbs(dsn) {
			dsn = filepath.Join(root, dsn)
		}
		remote.DSN = dsn
	case domain.DriverPostgres:
		if dto.DSN == "" {
			return zerr.With(zerr.Wrap(domain.ErrMissingDSN, "remote.dsn"), "driver", remote.Driver)
		}
		remote.DSN = dto.DSN
	default:
		return zerr.With(zerr.Wrap(domain.ErrUnsupportedDriver, "remote.driver"), "driver", remote.Driver)
	}

	if dto.Timeout != "" {
		timeout, err := parseDuration("remote.timeout", dto.Timeout)
		if err != nil {
			return err
		}
		remote.Timeout = timeout
	}
	return nil
}

func (l *Loader) applyResources(cfg *domain.Config, resources map[string]ResourceDTO) error {
	// Sorted for deterministic errors and warnings.
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dto := resources[name]
		r, err := domain.ParseResource(name)
		if err != nil {
			return zerr.With(err, "resource", name)
		}

		schema := cfg.Schema(r)
		if dto.Ignore != nil {
			schema.Ignore = mergeIgnore(dto.Ignore)
		}
		if dto.Compare != nil {
			schema.Compare = slices.Clone(dto.Compare)
		}
		if len(dto.Ignore) > 0 && len(schema.Compare) > 0 && l.Logger != nil {
			l.Logger.Warn(fmt.Sprintf("'ignore' of resource %q has no effect while 'compare' is set", r))
		}

		if dto.Rules != nil {
			rules := make([]domain.Rule, 0, len(dto.Rules))
			for i, rule := range dto.Rules {
				if strings.TrimSpace(rule.Expr) == "" {
					err := zerr.With(zerr.Wrap(domain.ErrInvalidRule, "empty expression"), "resource", name)
					return zerr.With(err, "rule", i)
				}
				message := rule.Message
				if message == "" {
					message = fmt.Sprintf("%s is invalid", r.Label())
				}
				rules = append(rules, domain.Rule{Expr: rule.Expr, Message: message})
			}
			schema.Rules = rules
		}

		cfg.Resources[r] = schema
	}
	return nil
}

// mergeIgnore adds the system fields, which are never compared, to ignore.
func mergeIgnore(ignore []string) []string {
	merged := slices.Concat(domain.SystemFields, ignore)
	slices.Sort(merged)
	return slices.Compact(merged)
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, zerr.With(zerr.Wrap(domain.ErrInvalidDuration, field), "value", value)
	}
	return d, nil
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is found by walking up from the working directory
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}
	return nil
}
