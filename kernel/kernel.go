// Package kernel composes the group chat runtime from configuration: the
// persona catalog, the tool registry over the incident log, the backend that
// plays the personas, the report store, and the orchestrator that drives
// them.
//
// The kernel initializes from configuration via New, creating all subsystems
// internally. Functional options allow test overrides of any subsystem.
//
//	k, err := kernel.New(&cfg)
//	defer k.Close()
//	rep, err := k.Run(ctx, "Investigate the auth-api outage")
package kernel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tailored-agentic-units/groupchat/backend"
	"github.com/tailored-agentic-units/groupchat/backend/openai"
	"github.com/tailored-agentic-units/groupchat/backend/rules"
	"github.com/tailored-agentic-units/groupchat/core/protocol"
	"github.com/tailored-agentic-units/groupchat/incident"
	"github.com/tailored-agentic-units/groupchat/observability"
	"github.com/tailored-agentic-units/groupchat/orchestrate"
	"github.com/tailored-agentic-units/groupchat/persona"
	"github.com/tailored-agentic-units/groupchat/report"
	"github.com/tailored-agentic-units/groupchat/tools"
)

const tracerName = "github.com/tailored-agentic-units/groupchat/kernel"

// Option configures a Kernel. Options are applied before config-driven
// initialization; a subsystem set by an option is not created from config.
type Option func(*Kernel)

// WithBackend overrides the config-created backend.
func WithBackend(b backend.Backend) Option {
	return func(k *Kernel) { k.backend = b }
}

// WithCatalog overrides the persona catalog.
func WithCatalog(c *persona.Catalog) Option {
	return func(k *Kernel) { k.catalog = c }
}

// WithStore overrides the config-created report store.
func WithStore(s report.Store) Option {
	return func(k *Kernel) { k.store = s }
}

// WithObserver overrides the observer named in the chat config.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) { k.observer = o }
}

// WithOutcome decides the outcome of executor actions. Defaults to
// incident.AlwaysSucceed.
func WithOutcome(fn incident.OutcomeFunc) Option {
	return func(k *Kernel) { k.outcome = fn }
}

// WithTurnFunc registers a callback invoked after every recorded turn.
func WithTurnFunc(fn orchestrate.TurnFunc) Option {
	return func(k *Kernel) { k.onTurn = fn }
}

// Kernel is the configured group chat runtime. A Kernel may run several
// conversations; each Run opens a fresh one.
type Kernel struct {
	cfg          Config
	catalog      *persona.Catalog
	registry     *tools.Registry
	backend      backend.Backend
	store        report.Store
	ownsStore    bool
	observer     observability.Observer
	outcome      incident.OutcomeFunc
	onTurn       orchestrate.TurnFunc
	orchestrator *orchestrate.Orchestrator
}

// New validates cfg and creates a Kernel. Configuration problems wrap
// orchestrate.ErrConfiguration.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	k := &Kernel{cfg: *cfg, outcome: incident.AlwaysSucceed}
	for _, opt := range opts {
		opt(k)
	}

	if err := k.init(); err != nil {
		k.Close()
		return nil, err
	}
	return k, nil
}

func (k *Kernel) init() error {
	cfg := &k.cfg

	if k.catalog == nil {
		if cfg.Personas != "" {
			c, err := persona.LoadCatalogFile(cfg.Personas)
			if err != nil {
				return fmt.Errorf("%w: %w", orchestrate.ErrConfiguration, err)
			}
			k.catalog = c
		} else {
			k.catalog = incident.Catalog()
		}
	}

	if err := k.catalog.Resolve(cfg.Chat.Participants); err != nil {
		return fmt.Errorf("%w: %w", orchestrate.ErrConfiguration, err)
	}
	participants := lo.FilterMap(cfg.Chat.Participants, func(id string, _ int) (persona.Persona, bool) {
		p, err := k.catalog.Get(id)
		return p, err == nil
	})

	k.registry = tools.NewRegistry()
	readTool, readHandler := tools.ReadText(tools.ReadLogTool, cfg.Chat.LogPath, tools.FileReader{})
	if err := k.registry.Register(readTool, readHandler); err != nil {
		return err
	}
	if err := incident.NewExecutor(cfg.Chat.LogPath, incident.WithOutcome(k.outcome)).Register(k.registry); err != nil {
		return err
	}

	if k.backend == nil {
		b, err := newBackend(cfg)
		if err != nil {
			return err
		}
		k.backend = b
	}

	if k.store == nil {
		s, err := report.NewStore(&cfg.Report)
		if err != nil {
			return fmt.Errorf("failed to create report store: %w", err)
		}
		k.store = s
		k.ownsStore = s != nil
	}

	if k.observer == nil {
		obs, err := observability.GetObserver(cfg.Chat.Observer)
		if err != nil {
			return fmt.Errorf("%w: %w", orchestrate.ErrConfiguration, err)
		}
		k.observer = observability.NewMultiObserver(obs, observability.TraceObserver{})
	}

	opts := []orchestrate.Option{
		orchestrate.WithTermination(termination(cfg.Chat.Marker, participants)),
		orchestrate.WithValidator(incident.Validator{Marker: cfg.Chat.Marker}),
		orchestrate.WithTools(k.registry),
		orchestrate.WithObserver(k.observer),
		orchestrate.WithVars(incident.Vars(cfg.Chat.LogPath, cfg.Chat.Marker)),
	}
	if k.onTurn != nil {
		opts = append(opts, orchestrate.WithTurnFunc(k.onTurn))
	}

	o, err := orchestrate.New(k.catalog, k.backend, opts...)
	if err != nil {
		return err
	}
	k.orchestrator = o
	return nil
}

func newBackend(cfg *Config) (backend.Backend, error) {
	switch cfg.Backend.Driver {
	case DriverOpenAI:
		b, err := openai.New(cfg.Backend.OpenAI)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", orchestrate.ErrConfiguration, err)
		}
		return b, nil
	default:
		return rules.New(
			rules.WithLogPath(cfg.Chat.LogPath),
			rules.WithMarker(cfg.Chat.Marker),
			rules.WithFailureThreshold(cfg.FailureThreshold),
		), nil
	}
}

// termination stops on the marker, and on an escalation reported by the
// first execution persona in the roster when there is one.
func termination(marker string, participants []persona.Persona) orchestrate.TerminationStrategy {
	phrase := orchestrate.PhraseTermination{Marker: marker}

	executor, ok := lo.Find(participants, func(p persona.Persona) bool {
		return p.Role == persona.RoleExecution
	})
	if !ok {
		return phrase
	}
	return orchestrate.AnyOf(phrase, incident.EscalationTermination{SpeakerID: executor.ID})
}

// Catalog returns the kernel's persona catalog.
func (k *Kernel) Catalog() *persona.Catalog {
	return k.catalog
}

// Tools returns the kernel's tool registry.
func (k *Kernel) Tools() *tools.Registry {
	return k.registry
}

// Store returns the report store, or nil when persistence is disabled.
func (k *Kernel) Store() report.Store {
	return k.store
}

// Run opens a conversation with prompt, drives it to completion and returns
// its report. A Failed conversation returns the report together with the
// abort error. The report is saved when a store is configured; a save
// failure is returned as ErrReportSave alongside the report.
func (k *Kernel) Run(ctx context.Context, prompt string) (*report.Report, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "groupchat.run")
	defer span.End()

	conv, err := k.cfg.Chat.NewConversation(prompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("groupchat.session_id", conv.ID()),
		attribute.StringSlice("groupchat.participants", conv.Participants()),
		attribute.Int("groupchat.max_turns", conv.MaxTurns()),
	)

	k.emit(ctx, EventRunStart, observability.LevelInfo, map[string]any{
		"session_id":    conv.ID(),
		"prompt_length": len(prompt),
		"log_path":      k.cfg.Chat.LogPath,
	})

	res, runErr := k.orchestrator.Run(ctx, conv)

	rep := report.FromResult(res,
		report.WithLogPath(k.cfg.Chat.LogPath),
		report.WithActions(Actions(res.Transcript)...),
	)

	span.SetAttributes(
		attribute.String("groupchat.status", string(res.Status)),
		attribute.String("groupchat.reason", string(res.Reason)),
		attribute.Int("groupchat.turns", res.TurnsTaken),
	)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
	}

	k.emit(ctx, EventRunComplete, observability.LevelInfo, map[string]any{
		"session_id": res.SessionID,
		"status":     string(res.Status),
		"reason":     string(res.Reason),
		"turns":      res.TurnsTaken,
	})

	if k.store != nil {
		if err := k.store.Save(ctx, rep); err != nil {
			k.emit(ctx, EventError, observability.LevelError, map[string]any{
				"report_id": rep.ID,
				"error":     err.Error(),
			})
			return &rep, errors.Join(runErr, fmt.Errorf("%w: %w", ErrReportSave, err))
		}
		k.emit(ctx, EventReportSaved, observability.LevelVerbose, map[string]any{
			"report_id": rep.ID,
		})
	}

	return &rep, runErr
}

// Close releases the report store when the kernel created it.
func (k *Kernel) Close() error {
	if k.store != nil && k.ownsStore {
		return k.store.Close()
	}
	return nil
}

func (k *Kernel) emit(ctx context.Context, t observability.EventType, level observability.Level, data map[string]any) {
	if k.observer == nil {
		return
	}
	k.observer.OnEvent(ctx, observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "kernel.Run",
		Data:      data,
	})
}

// Actions lists the remediation actions executed during a conversation, in
// order, from the tool calls recorded on its messages.
func Actions(transcript []protocol.Message) []string {
	kinds := lo.SliceToMap(incident.Kinds(), func(k incident.Kind) (string, bool) {
		return string(k), true
	})

	var out []string
	for _, msg := range transcript {
		for _, call := range msg.ToolCalls {
			if !kinds[call.Name] {
				continue
			}
			a := incident.Action{Kind: incident.Kind(call.Name)}
			var args incident.TargetArgs
			if a.Kind.Targeted() && json.Unmarshal([]byte(call.Arguments), &args) == nil {
				a.Target = args.Target
			}
			entry := a.String()
			if call.IsError {
				entry += " (failed)"
			}
			out = append(out, entry)
		}
	}
	return out
}
