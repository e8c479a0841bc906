package toolcall

import (
	"encoding/json"
	"testing"

	"github.com/relaykit/agentcore/internal/convo"
)

func TestFromXMLParams_Coercion(t *testing.T) {
	args := FromXMLParams([]Param{
		{Name: "flag", Value: "true"},
		{Name: "count", Value: "42"},
		{Name: "ratio", Value: "3.14"},
		{Name: "name", Value: "hello"},
	})
	raw, ok := args.ParsedValue()
	if !ok {
		t.Fatalf("expected parsed arguments")
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatal(err)
	}
	if v["flag"] != true {
		t.Fatalf("flag: got %v", v["flag"])
	}
	if v["count"].(float64) != 42 {
		t.Fatalf("count: got %v", v["count"])
	}
	if v["ratio"].(float64) != 3.14 {
		t.Fatalf("ratio: got %v", v["ratio"])
	}
	if v["name"] != "hello" {
		t.Fatalf("name: got %v", v["name"])
	}
}

func TestParse_RoundTripsValidJSON(t *testing.T) {
	raw, err := Parse(convo.Unparsed(`{"a": 1}`))
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatal(err)
	}
	if v["a"].(float64) != 1 {
		t.Fatalf("got %v", v)
	}
}

func TestParse_RepairsUnparsed(t *testing.T) {
	raw, err := Parse(convo.Unparsed(`{"a": 1,}`))
	if err != nil {
		t.Fatalf("expected repair to succeed, got %v", err)
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatal(err)
	}
}

func TestParse_AlreadyParsedRoundTrips(t *testing.T) {
	original := json.RawMessage(`{"x": [1,2,3]}`)
	args := convo.Parsed(original)
	raw, err := Parse(args)
	if err != nil {
		t.Fatal(err)
	}
	var v1, v2 map[string]any
	_ = json.Unmarshal(original, &v1)
	_ = json.Unmarshal(raw, &v2)
	if v1["x"].([]any)[0] != v2["x"].([]any)[0] {
		t.Fatalf("round trip mismatch: %v vs %v", v1, v2)
	}
}
