package transform

import (
	"fmt"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/prompt"
)

// dangerousTools are flagged in the rendered instructions as needing intent
// confirmation before the model calls them; irreversible by nature (they
// mutate the filesystem or run arbitrary commands), regardless of whatever
// the policy checker ultimately decides.
var dangerousTools = []string{"write", "shell"}

// TransformToolCalls rewrites tool declarations into a system-prompt
// instruction block for models without native tool-calling, using the
// <forge_tool_call> grammar (internal/toolcall). It appends the instruction
// text to the first system entry (creating one at the front if there is
// none) and clears Context.Tools so the wire codec never advertises a
// tools parameter the model can't honor. ToolChoice is left untouched; the
// orchestrator is responsible for interpreting "required"/"none" against
// the XML convention when native tool support is absent.
func TransformToolCalls(env *Env) error {
	ctx := env.Context
	if len(ctx.Tools) == 0 {
		return nil
	}

	instructions, err := renderToolInstructions(ctx.Tools)
	if err != nil {
		return err
	}

	if i := ctx.FirstSystemIndex(); i >= 0 {
		ctx.Entries[i].Text = strings.TrimRight(ctx.Entries[i].Text, " \t\n") + "\n\n" + instructions
	} else {
		ctx.Entries = append([]convo.MessageEntry{{Role: convo.RoleSystem, Text: instructions}}, ctx.Entries...)
	}

	ctx.Tools = nil
	return nil
}

func renderToolInstructions(tools []convo.ToolDefinition) (string, error) {
	engine, err := prompt.Default()
	if err != nil {
		return "", fmt.Errorf("transform: tool-call instructions prompt engine: %w", err)
	}
	data := struct {
		Tools          []convo.ToolDefinition
		DangerousTools []string
	}{Tools: tools, DangerousTools: dangerousTools}

	rendered, err := engine.Render("tool_call_instructions.tmpl", data)
	if err != nil {
		return "", fmt.Errorf("transform: render tool-call instructions: %w", err)
	}
	return rendered, nil
}
