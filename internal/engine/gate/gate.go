// Package gate decides whether a proposed payload should reach the remote
// store at all.
package gate

import (
	"encoding/json"
	"reflect"
	"slices"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/zerr"
)

// ShouldSubmit reports whether proposed differs from current in any field
// the schema considers relevant. Values are compared structurally after
// normalizing them to their JSON shape, so 3 and 3.0 are equal.
func ShouldSubmit(schema domain.Schema, current, proposed domain.Fields) bool {
	return len(Changed(schema, current, proposed)) > 0
}

// Changed returns the sorted names of relevant fields whose values differ.
// A field missing on one side equals a null value on the other.
func Changed(schema domain.Schema, current, proposed domain.Fields) []string {
	seen := make(map[string]struct{}, len(current)+len(proposed))
	var changed []string

	check := func(name string) {
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		if !schema.Relevant(name) {
			return
		}
		if !reflect.DeepEqual(normalize(current[name]), normalize(proposed[name])) {
			changed = append(changed, name)
		}
	}

	for name := range current {
		check(name)
	}
	for name := range proposed {
		check(name)
	}

	slices.Sort(changed)
	return changed
}

// Fingerprint returns a digest of the relevant fields of payload. Payloads
// that ShouldSubmit considers equal have equal fingerprints.
func Fingerprint(schema domain.Schema, payload domain.Fields) uint64 {
	relevant := make(map[string]any, len(payload))
	for name, v := range payload {
		if !schema.Relevant(name) {
			continue
		}
		if n := normalize(v); n != nil {
			relevant[name] = n
		}
	}

	// encoding/json writes map keys in sorted order.
	data, err := json.Marshal(relevant)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(data)
}

// normalize converts v to the shape it has after a JSON round trip.
// Values that cannot be encoded are returned unchanged.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// Gate evaluates per-resource rules and change detection. Compiled rule
// programs are cached by expression.
type Gate struct {
	mu       sync.Mutex
	programs map[string]*vm.Program
}

// New creates a gate with an empty program cache.
func New() *Gate {
	return &Gate{programs: make(map[string]*vm.Program)}
}

// Validate evaluates every rule of schema against proposed. The first
// violated rule is returned as a validation failure carrying the rule's
// message. A rule that fails to compile is returned as an error.
func (g *Gate) Validate(schema domain.Schema, proposed domain.Fields) error {
	env := make(map[string]any, len(proposed))
	for name, v := range proposed {
		env[name] = normalize(v)
	}

	for _, rule := range schema.Rules {
		program, err := g.compile(rule.Expr)
		if err != nil {
			err = zerr.With(err, "resource", string(schema.Resource))
			return zerr.With(err, "rule", rule.Expr)
		}

		out, runErr := expr.Run(program, env)
		ok, isBool := out.(bool)
		if runErr == nil && isBool && ok {
			continue
		}

		cause := zerr.Wrap(domain.ErrValidationFailed, rule.Message)
		if runErr != nil {
			cause = zerr.With(cause, "eval_error", runErr.Error())
		}
		return &domain.Failure{
			Kind:    domain.FailureValidation,
			Message: rule.Message,
			Err:     zerr.With(cause, "resource", string(schema.Resource)),
		}
	}
	return nil
}

// Check combines rule validation with change detection. It returns nil
// when the payload may be submitted. current is nil for creates, which
// skips change detection.
func (g *Gate) Check(schema domain.Schema, current, proposed domain.Fields) error {
	if err := g.Validate(schema, proposed); err != nil {
		return err
	}
	if current != nil && !ShouldSubmit(schema, current, proposed) {
		return &domain.Failure{
			Kind:    domain.FailureValidation,
			Message: domain.MessageNoChanges,
			Err:     domain.ErrNoChanges,
		}
	}
	return nil
}

func (g *Gate) compile(source string) (*vm.Program, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if p, ok := g.programs[source]; ok {
		return p, nil
	}

	p, err := expr.Compile(source,
		expr.Env(map[string]any{}),
		expr.AllowUndefinedVariables(),
		expr.AsBool(),
	)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrInvalidRule.Error())
	}
	g.programs[source] = p
	return p, nil
}
