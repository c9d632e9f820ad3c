package deltafile

import (
	"bytes"
	"encoding/json"
	"fmt"

	"deltaflow/internal/dferrors"
)

// metaEntry is one (block name, block meta) pair. The delta file trailer
// is a JSON object whose key order is the block write order — spec.md
// §6 is explicit that this order must round-trip — which Go's
// map[string]json.RawMessage cannot give us (it marshals keys
// alphabetically), so the trailer is built and parsed by hand instead.
type metaEntry struct {
	Name string
	Raw  json.RawMessage
}

// marshalOrderedMeta writes entries as a JSON object in insertion order.
func marshalOrderedMeta(entries []metaEntry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(e.Name)
		if err != nil {
			return nil, dferrors.WrapBlockError("marshal block name", err)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(e.Raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// unmarshalOrderedMeta reads a JSON object back into ordered entries,
// using the token-level decoder so that reconstruction sees the blocks in
// the exact order they were written rather than Go's alphabetical map
// order.
func unmarshalOrderedMeta(data []byte) ([]metaEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, dferrors.WrapBlockError("read trailer opening token", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, dferrors.NewBlockError("delta file trailer is not a JSON object")
	}

	var entries []metaEntry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, dferrors.WrapBlockError("read trailer key", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, dferrors.NewBlockError(fmt.Sprintf("trailer key is not a string: %v", keyTok))
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, dferrors.WrapBlockError("read trailer value for "+key, err)
		}
		entries = append(entries, metaEntry{Name: key, Raw: raw})
	}

	if _, err := dec.Token(); err != nil {
		return nil, dferrors.WrapBlockError("read trailer closing token", err)
	}

	return entries, nil
}
