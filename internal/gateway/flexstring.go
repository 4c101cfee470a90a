package gateway

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// FlexString decodes a JSON string, number or null into a string. The
// gateway is not consistent about which it sends for numeric fields such
// as track_id and amount, and null stands in for missing data.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

// Int64 parses the value as a decimal integer, returning 0 when empty or
// non-numeric.
func (f FlexString) Int64() int64 {
	n, err := strconv.ParseInt(string(f), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Empty reports whether the field carries no usable value. The zero string
// counts as empty, matching how the gateway signals "not set" on numeric
// fields.
func (f FlexString) Empty() bool {
	return f == "" || f == "0"
}
