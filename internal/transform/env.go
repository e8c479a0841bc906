// Package transform implements the transformer pipeline: an ordered,
// composable sequence of mutators that adapt a canonical convo.Context
// into the shape a specific provider dialect expects.
package transform

import "github.com/relaykit/agentcore/internal/convo"

// Dialect distinguishes the two response shapes the wire codec speaks.
type Dialect string

const (
	DialectOpenAI    Dialect = "openai"
	DialectAnthropic Dialect = "anthropic"
)

// Capabilities describes what the target model supports, driving the
// predicated steps of the pipeline (TransformToolCalls, DropReasoningDetails
// / ReasoningNormalizer, ImageHandling).
type Capabilities struct {
	ToolsSupported     bool
	ReasoningSupported bool
	ImagesSupported    bool
}

// Env is the mutable state threaded through a Pipeline run. Transformers
// read agent/model configuration from it and mutate Context in place.
type Env struct {
	Context *convo.Context
	Caps    Capabilities
	Dialect Dialect

	// ToolOrder is the agent's declared tool order (literal names first in
	// declared order, then pattern matches), used by SortTools.
	ToolOrder []string

	// ModelID is the model about to serve this request, stamped onto the
	// context by SetModel.
	ModelID string
}

// Transformer mutates an Env's Context. Errors abort the pipeline.
type Transformer interface {
	Transform(env *Env) error
}

// Func adapts a plain function to the Transformer interface.
type Func func(env *Env) error

func (f Func) Transform(env *Env) error { return f(env) }
