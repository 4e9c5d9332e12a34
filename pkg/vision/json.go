package vision

import (
	"encoding/json"

	"github.com/kaptinlin/jsonrepair"
)

// unmarshalResult parses model JSON output, repairing malformed text
// before giving up.
func unmarshalResult(raw string, v any) error {
	err := json.Unmarshal([]byte(raw), v)
	if err == nil {
		return nil
	}
	if _, ok := err.(*json.SyntaxError); ok {
		fixed, rerr := jsonrepair.JSONRepair(raw)
		if rerr != nil {
			return err
		}
		return json.Unmarshal([]byte(fixed), v)
	}
	return err
}
