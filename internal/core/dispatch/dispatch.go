// Package dispatch executes approved records through the capability that
// matches their action kind.
package dispatch

import (
	"context"
	"fmt"

	"github.com/hay-kot/steward/internal/core/action"
	"github.com/hay-kot/steward/internal/core/record"
	"github.com/rs/zerolog"
)

// Status is the result class of a dispatch.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusFlagged Status = "flagged"
)

// Outcome is what every dispatch returns. Dispatch never returns an error;
// collaborator faults become failed outcomes.
type Outcome struct {
	Kind    action.Kind
	Status  Status
	Message string
	Details string
}

// Success reports whether the action was carried out.
func (o Outcome) Success() bool {
	return o.Status == StatusSuccess
}

func succeeded(msg, details string) Outcome {
	return Outcome{Status: StatusSuccess, Message: msg, Details: details}
}

func failed(msg, details string) Outcome {
	return Outcome{Status: StatusFailed, Message: msg, Details: details}
}

// Capability performs one kind of action.
type Capability interface {
	Execute(ctx context.Context, rec *record.Record) Outcome
}

// CapabilityFunc adapts a function to Capability.
type CapabilityFunc func(ctx context.Context, rec *record.Record) Outcome

func (f CapabilityFunc) Execute(ctx context.Context, rec *record.Record) Outcome {
	return f(ctx, rec)
}

// Options configures the collaborators behind each capability. Nil
// collaborators fall back to the capability's unconfigured behavior.
type Options struct {
	Threshold float64
	Sender    Sender
	Publisher Publisher
	Payer     Payer
}

// Dispatcher routes records to capabilities.
type Dispatcher struct {
	caps map[action.Kind]Capability
	log  zerolog.Logger
}

// New builds a dispatcher with the standard capability table.
func New(opts Options, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		caps: map[action.Kind]Capability{
			action.KindMessageSend: &messageSend{sender: opts.Sender},
			action.KindSocialPost:  &socialPost{publisher: opts.Publisher},
			action.KindPayment:     &payment{threshold: opts.Threshold, payer: opts.Payer},
			action.KindGeneric:     CapabilityFunc(generic),
		},
		log: log,
	}
}

// Register replaces the capability for a kind.
func (d *Dispatcher) Register(kind action.Kind, c Capability) {
	d.caps[kind] = c
}

// KindOf returns the action kind of a record: the action header when set,
// otherwise the declared type.
func KindOf(rec *record.Record) action.Kind {
	if a := rec.Header.Get(record.KeyAction); a != "" {
		return action.ParseKind(a)
	}
	return action.ParseKind(rec.Type())
}

// Dispatch executes rec and returns its outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, rec *record.Record) (out Outcome) {
	kind := KindOf(rec)
	log := d.log.With().Str("record_id", rec.ID()).Str("kind", kind.String()).Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("capability panicked")
			out = failed(fmt.Sprintf("%s action crashed", kind), fmt.Sprint(r))
		}
		out.Kind = kind
	}()

	c, ok := d.caps[kind]
	if !ok {
		c = d.caps[action.KindGeneric]
	}

	if err := ctx.Err(); err != nil {
		return failed("dispatch cancelled", err.Error())
	}

	out = c.Execute(ctx, rec)
	log.Debug().Str("status", string(out.Status)).Str("message", out.Message).Msg("dispatched")
	return out
}

func generic(_ context.Context, rec *record.Record) Outcome {
	return succeeded(
		fmt.Sprintf("Action %s executed", rec.ID()),
		fmt.Sprintf("Type: %s", rec.Type()),
	)
}
