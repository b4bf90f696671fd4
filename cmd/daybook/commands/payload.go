package commands

import (
	"maps"
	"os"
	"strings"
	"time"

	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// parsePayload reads the optional YAML mapping in file and applies the
// field=value assignments on top of it. Values are parsed as YAML scalars,
// so "done=true" sets a boolean and "tags=[film, lab]" a list.
func parsePayload(file string, assignments []string) (domain.Fields, error) {
	payload := domain.Fields{}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrPayloadReadFailed.Error()), "file", file)
		}
		var fromFile map[string]any
		if err := yaml.Unmarshal(data, &fromFile); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrPayloadReadFailed.Error()), "file", file)
		}
		maps.Copy(payload, fromFile)
	}

	for _, a := range assignments {
		name, raw, ok := strings.Cut(a, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidAssignment, "parse --set"), "assignment", a)
		}

		var value any
		if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
			value = raw
		}
		payload[name] = value
	}

	return payload, nil
}

type entityView struct {
	Key       string         `yaml:"key"`
	Revision  int64          `yaml:"revision"`
	CreatedAt string         `yaml:"created_at,omitempty"`
	UpdatedAt string         `yaml:"updated_at,omitempty"`
	Fields    map[string]any `yaml:"fields"`
}

func renderEntity(e domain.Entity) ([]byte, error) {
	view := entityView{
		Key:      e.Key.String(),
		Revision: e.Revision,
		Fields:   e.Fields,
	}
	if !e.CreatedAt.IsZero() {
		view.CreatedAt = e.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !e.UpdatedAt.IsZero() {
		view.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return yaml.Marshal(view)
}

// outcomeErr converts an unsuccessful outcome into an error. The reason has
// already been shown as a notification.
func outcomeErr(out domain.Outcome) error {
	if out.OK() {
		return nil
	}
	err := zerr.With(zerr.Wrap(domain.ErrMutationFailed, out.Kind.String()), "outcome", out.Kind.String())
	if out.Failure != nil {
		err = zerr.With(err, "reason", out.Failure.Error())
	}
	return err
}
