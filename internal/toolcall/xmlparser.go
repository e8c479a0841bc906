// Package toolcall implements the fallback tool-call surface used when a
// model does not emit structured tool calls: a minimal XML grammar embedded
// in assistant text, and the lazy argument codec that sits on top of either
// that XML or a streamed JSON string.
package toolcall

import "strings"

// Param is a single <PARAM>VALUE</PARAM> pair extracted from a tool-call
// block, in the order it appeared.
type Param struct {
	Name  string
	Value string
}

// ParsedCall is one <forge_tool_call> block: a tool name plus its ordered
// parameters.
type ParsedCall struct {
	Name   string
	Params []Param
}

// Get returns the value of the first parameter named name, if present.
func (c ParsedCall) Get(name string) (string, bool) {
	for _, p := range c.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

const blockTag = "forge_tool_call"

// ExtractToolCalls parses zero or more <forge_tool_call> blocks out of
// assistant text.
//
// Surrounding prose is ignored. If at least one block has parsed
// successfully, any later parse error terminates extraction without
// failing the whole message — calls found so far are still returned. A
// parse error before any block has succeeded causes the scanner to skip
// past the offending '<' and keep looking, so leading noise that merely
// resembles a tag never prevents a later, well-formed block from being
// found. Empty extraction yields an empty, non-nil-error list.
func ExtractToolCalls(text string) []ParsedCall {
	var calls []ParsedCall
	pos := 0

	for {
		idx := strings.IndexByte(text[pos:], '<')
		if idx < 0 {
			break
		}
		start := pos + idx

		name, closing, next, ok := parseTag(text, start)
		if !ok || closing || name != blockTag {
			pos = start + 1
			continue
		}

		call, end, ok := parseCallBody(text, next)
		if !ok {
			if len(calls) > 0 {
				break
			}
			pos = start + 1
			continue
		}

		calls = append(calls, call)
		pos = end
	}

	return calls
}

// parseCallBody parses the TOOL_NAME element and its PARAM children,
// followed by the closing </forge_tool_call> tag. i is the position right
// after <forge_tool_call>.
func parseCallBody(s string, i int) (ParsedCall, int, bool) {
	i = skipWS(s, i)
	if i >= len(s) || s[i] != '<' {
		return ParsedCall{}, 0, false
	}
	toolName, closing, next, ok := parseTag(s, i)
	if !ok || closing {
		return ParsedCall{}, 0, false
	}

	call := ParsedCall{Name: toolName}
	pos := next

	for {
		pos = skipWS(s, pos)
		if pos >= len(s) || s[pos] != '<' {
			return ParsedCall{}, 0, false
		}
		name, closing, tagEnd, ok := parseTag(s, pos)
		if !ok {
			return ParsedCall{}, 0, false
		}
		if closing {
			if name != toolName {
				return ParsedCall{}, 0, false
			}
			pos = tagEnd
			break
		}
		// A PARAM element: name is the parameter name, value is verbatim
		// text up to its matching closing tag.
		value, valueEnd, ok := readUntilClosingTag(s, tagEnd, name)
		if !ok {
			return ParsedCall{}, 0, false
		}
		call.Params = append(call.Params, Param{Name: name, Value: value})
		pos = valueEnd
	}

	pos = skipWS(s, pos)
	if pos >= len(s) || s[pos] != '<' {
		return ParsedCall{}, 0, false
	}
	name, closing, end, ok := parseTag(s, pos)
	if !ok || !closing || name != blockTag {
		return ParsedCall{}, 0, false
	}
	return call, end, true
}

// readUntilClosingTag returns the verbatim text between i and the next tag
// that closes name (</name>, allowing interior whitespace), searching past
// any unrelated "</...>" sequences the value happens to contain.
func readUntilClosingTag(s string, i int, name string) (string, int, bool) {
	from := i
	for {
		rel := strings.Index(s[from:], "</")
		if rel < 0 {
			return "", 0, false
		}
		tagStart := from + rel
		tagName, closing, tagEnd, ok := parseTag(s, tagStart)
		if ok && closing && tagName == name {
			return s[i:tagStart], tagEnd, true
		}
		from = tagStart + 2
	}
}

// parseTag parses a single tag starting at s[i] == '<'. It tolerates
// whitespace after '<', after an optional '/', and before the closing '>'.
// Identifier characters are [A-Za-z0-9_].
func parseTag(s string, i int) (name string, closing bool, next int, ok bool) {
	if i >= len(s) || s[i] != '<' {
		return "", false, 0, false
	}
	i++
	i = skipWS(s, i)
	if i < len(s) && s[i] == '/' {
		closing = true
		i++
		i = skipWS(s, i)
	}
	start := i
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == start {
		return "", false, 0, false
	}
	name = s[start:i]
	i = skipWS(s, i)
	if i >= len(s) || s[i] != '>' {
		return "", false, 0, false
	}
	return name, closing, i + 1, true
}

func skipWS(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func isIdentChar(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}
