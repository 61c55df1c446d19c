// Package agent implements the context-assembly and action-dispatch core:
// it gathers a snapshot of the user's state, renders a bounded prompt,
// parses the completion reply into typed actions, and executes them
// sequentially against the entity store with audited side effects.
package agent

import (
	"context"
	"fmt"
	"strings"

	"daypilot/internal/llm"
	"daypilot/internal/logging"
	"daypilot/internal/store"
)

// Agent wires the assembler, completion client, parser, and dispatcher
// into a single chat-turn pipeline.
type Agent struct {
	store      *store.Store
	client     llm.Client
	assembler  *Assembler
	dispatcher *Dispatcher
	log        *logging.Logger
}

// ActionOutcome pairs an executed action's kind with its result.
type ActionOutcome struct {
	Kind     Kind        `json:"type"`
	Success  bool        `json:"success"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data,omitempty"`
	Navigate string      `json:"navigate,omitempty"`
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	Response string          `json:"response"`
	Actions  []ActionOutcome `json:"actions"`
	Navigate string          `json:"navigate,omitempty"`
}

// New creates an agent over the entity store and completion client.
func New(st *store.Store, client llm.Client) *Agent {
	return &Agent{
		store:      st,
		client:     client,
		assembler:  NewAssembler(st),
		dispatcher: NewDispatcher(st),
		log:        logging.Get(logging.CategoryAgent),
	}
}

// Dispatcher exposes the action dispatcher for callers that execute
// actions directly (digest generation, CLI subcommands).
func (a *Agent) Dispatcher() *Dispatcher {
	return a.dispatcher
}

// HandleTurn runs one full chat turn: assemble context, build the prompt,
// complete, parse, dispatch each action in order, and compose the reply.
// Actions from one reply run sequentially, so later actions observe the
// effects of earlier ones within the turn. The returned error covers only
// snapshot or completion transport failure; action failures are reported
// inside the outcomes.
func (a *Agent) HandleTurn(ctx context.Context, userID, message string, history []llm.Message) (*TurnResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID required")
	}

	timer := logging.StartTimer(logging.CategoryAgent, "chat turn")
	defer timer.Stop()

	snap, err := a.assembler.Snapshot(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble context: %w", err)
	}

	prompt := BuildPrompt(snap)
	messages := BuildMessages(prompt, history, message)

	raw, err := a.client.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}
	a.log.Debug("completion from %s: %d bytes", a.client.Name(), len(raw))

	actions := Parse(raw)

	result := &TurnResult{Actions: make([]ActionOutcome, 0, len(actions))}
	for _, action := range actions {
		res := a.dispatcher.Execute(ctx, userID, action)
		result.Actions = append(result.Actions, ActionOutcome{
			Kind:     action.Kind,
			Success:  res.Success,
			Message:  res.Message,
			Data:     res.Data,
			Navigate: res.Navigate,
		})
		if res.Navigate != "" {
			result.Navigate = res.Navigate
		}
	}

	result.Response = composeResponse(result.Actions)
	return result, nil
}

// composeResponse turns the ordered action results into one human-readable
// message. Failures read as plain sentences, never stack traces.
func composeResponse(outcomes []ActionOutcome) string {
	var parts []string
	for _, o := range outcomes {
		if o.Message != "" {
			parts = append(parts, o.Message)
		}
	}
	if len(parts) == 0 {
		return "Done."
	}
	return strings.Join(parts, "\n")
}
