package agent

import (
	"encoding/json"

	"daypilot/internal/logging"
)

// Parse extracts an ordered, non-empty action sequence from a completion
// reply. It never fails: text with no recognizable JSON becomes a single
// respond action carrying the raw text, and unrecognizable elements inside
// valid JSON become respond actions carrying their serialized form. The
// sequence is never reordered or deduplicated; idempotence is the
// dispatcher's concern.
func Parse(raw string) []Action {
	log := logging.Get(logging.CategoryAgent)

	for _, candidate := range extractCandidates(raw) {
		var decoded interface{}
		if err := json.Unmarshal([]byte(candidate), &decoded); err != nil {
			continue
		}

		// Normalize to a list: wrap bare objects.
		var elements []interface{}
		switch v := decoded.(type) {
		case []interface{}:
			elements = v
		case map[string]interface{}:
			elements = []interface{}{v}
		default:
			continue
		}
		if len(elements) == 0 {
			continue
		}

		actions := make([]Action, 0, len(elements))
		for _, el := range elements {
			actions = append(actions, mapElement(el))
		}
		log.Debug("parsed %d action(s) from reply", len(actions))
		return actions
	}

	// Hard fallback: the whole reply is the user-facing message.
	log.Debug("no parseable JSON in reply, degrading to respond")
	return []Action{RespondAction(raw)}
}

// mapElement converts one decoded JSON element to an Action. Elements that
// do not fit the action grammar are never dropped; they degrade to respond.
func mapElement(el interface{}) Action {
	obj, ok := el.(map[string]interface{})
	if !ok {
		return RespondAction(stringify(el))
	}

	kind, data := grammarFields(obj)
	if kind == "" || !KnownKind(kind) {
		return RespondAction(stringify(el))
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return RespondAction(stringify(el))
	}
	return Action{Kind: Kind(kind), Data: payload}
}

// grammarFields accepts both {"action": ..., "data": {...}} and the
// pass-through {"type": ..., "data": {...}} spelling.
func grammarFields(obj map[string]interface{}) (string, map[string]interface{}) {
	for _, key := range []string{"action", "type"} {
		kind, ok := obj[key].(string)
		if !ok {
			continue
		}
		data, ok := obj["data"].(map[string]interface{})
		if !ok {
			// An action with no payload is still dispatchable.
			if _, present := obj["data"]; present {
				continue
			}
			data = map[string]interface{}{}
		}
		return kind, data
	}
	return "", nil
}

func stringify(el interface{}) string {
	out, err := json.Marshal(el)
	if err != nil {
		return ""
	}
	return string(out)
}
