package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseCount converts a raw JSON count field into an int64. The txpool status
// endpoint reports counts as either JSON numbers or 0x-prefixed hex strings
// depending on the node version; anything unconvertible yields zero rather
// than an error, so a malformed count never fails its envelope.
func ParseCount(raw json.RawMessage) int64 {
	if len(raw) == 0 {
		return 0
	}

	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return int64(num)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseInt(s[2:], 16, 64)
		if err != nil {
			return 0
		}
		return v
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}
