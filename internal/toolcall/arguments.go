package toolcall

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/relaykit/agentcore/internal/convo"
	"github.com/relaykit/agentcore/internal/jsonrepair"
)

// Parse resolves a convo.ToolCallArguments value to a json.RawMessage,
// parsing through the tolerant repairer when the arguments are held
// unparsed. Already-parsed arguments round-trip unchanged.
func Parse(args convo.ToolCallArguments) (json.RawMessage, error) {
	if v, ok := args.ParsedValue(); ok {
		return v, nil
	}
	raw, _ := args.Raw()
	var v any
	if err := jsonrepair.Parse(raw, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// FromXMLParams builds ToolCallArguments from an XML-sourced parameter
// list, coercing each value: case-insensitive "true"/"false" become a
// bool; an integer-parseable value becomes an integer; a float-parseable
// value becomes a number (collapsing to an integer when it has no
// fractional part); anything else stays a string.
func FromXMLParams(params []Param) convo.ToolCallArguments {
	obj := make(map[string]any, len(params))
	for _, p := range params {
		obj[p.Name] = coerce(p.Value)
	}
	raw, err := json.Marshal(obj)
	if err != nil {
		return convo.Unparsed("{}")
	}
	return convo.Parsed(raw)
}

func coerce(value string) any {
	switch strings.ToLower(value) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(value, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	}
	return value
}

// CallFromXML converts a single parsed XML block into a convo.ToolCallFull.
// callID is supplied by the caller since the XML grammar carries no id of
// its own (the orchestrator synthesizes one per extracted call).
func CallFromXML(callID string, call ParsedCall) convo.ToolCallFull {
	return convo.ToolCallFull{
		CallID:    callID,
		Name:      call.Name,
		Arguments: FromXMLParams(call.Params),
	}
}
