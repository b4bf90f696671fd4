package telemetry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/daybook/internal/core/ports"
)

// Journal implements sdktrace.SpanProcessor by logging every finished span
// as a single line. Failed spans are logged as warnings.
type Journal struct {
	logger ports.Logger
}

// NewJournal returns a journal writing to logger.
func NewJournal(logger ports.Logger) *Journal {
	return &Journal{logger: logger}
}

// OnStart does nothing.
func (j *Journal) OnStart(context.Context, sdktrace.ReadWriteSpan) {}

// OnEnd logs the finished span.
func (j *Journal) OnEnd(s sdktrace.ReadOnlySpan) {
	if j.logger == nil {
		return
	}
	line := Describe(s)
	if s.Status().Code == codes.Error {
		j.logger.Warn(line)
		return
	}
	j.logger.Info(line)
}

// Shutdown does nothing.
func (j *Journal) Shutdown(context.Context) error {
	return nil
}

// ForceFlush does nothing.
func (j *Journal) ForceFlush(context.Context) error {
	return nil
}

// Describe renders a span as "name k=v ... (duration)", with attributes
// sorted by key and the status description appended for failed spans.
func Describe(s sdktrace.ReadOnlySpan) string {
	var b strings.Builder
	b.WriteString(s.Name())

	attrs := slices.Clone(s.Attributes())
	slices.SortFunc(attrs, func(a, b attribute.KeyValue) int {
		return strings.Compare(string(a.Key), string(b.Key))
	})
	for _, kv := range attrs {
		fmt.Fprintf(&b, " %s=%s", kv.Key, kv.Value.Emit())
	}

	fmt.Fprintf(&b, " (%s)", s.EndTime().Sub(s.StartTime()).Round(time.Millisecond))

	if st := s.Status(); st.Code == codes.Error && st.Description != "" {
		fmt.Fprintf(&b, ": %s", st.Description)
	}
	return b.String()
}
