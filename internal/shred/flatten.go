package shred

import (
	"encoding/json"

	"github.com/nodesift/nodesift/internal/model"
)

// resolveSnapshot turns the raw snapshot field into a structured pool map.
// The collector sometimes stores the snapshot as a JSON-encoded string and
// sometimes as a native object; both decode to the same structure. A string
// longer than maxBytes is refused with errOversized to bound memory, and a
// value of any other type yields no pool data without being an error.
func resolveSnapshot(raw json.RawMessage, maxBytes int) (map[string]json.RawMessage, bool, error) {
	if len(raw) == 0 {
		return nil, false, nil
	}

	switch raw[0] {
	case '{':
		var pool map[string]json.RawMessage
		if err := json.Unmarshal(raw, &pool); err != nil {
			return nil, false, err
		}
		return pool, true, nil
	case '"':
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err != nil {
			return nil, false, err
		}
		if len(encoded) > maxBytes {
			return nil, false, errOversized
		}
		var pool map[string]json.RawMessage
		if err := json.Unmarshal([]byte(encoded), &pool); err != nil {
			return nil, false, err
		}
		return pool, true, nil
	}
	return nil, false, nil
}

// flattenPool walks one pool partition (sender → nonce → transaction),
// injects the provenance fields, and hands each flattened transaction to
// emit. Non-object values at any level are skipped rather than failing the
// snapshot; the node has no business putting them there, but a partial dump
// must not sink the rest of the pool.
func flattenPool(group json.RawMessage, status, timestamp, sourceFile string, emit func(map[string]any) error) (int64, error) {
	if len(group) == 0 {
		return 0, nil
	}

	var senders map[string]json.RawMessage
	if err := json.Unmarshal(group, &senders); err != nil {
		return 0, nil
	}

	var written int64
	for _, nonces := range senders {
		var byNonce map[string]json.RawMessage
		if err := json.Unmarshal(nonces, &byNonce); err != nil {
			continue
		}
		for _, tx := range byNonce {
			var fields map[string]any
			// A JSON null unmarshals without error but leaves the map nil;
			// it is a non-mapping like any scalar and must be skipped.
			if err := json.Unmarshal(tx, &fields); err != nil || fields == nil {
				continue
			}
			fields[model.TxKeySnapshotTimestamp] = timestamp
			fields[model.TxKeyOriginalSourceFile] = sourceFile
			fields[model.TxKeyPoolStatus] = status
			if err := emit(fields); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}
