package corelog

import (
	"fmt"
	"strconv"
)

// stringifyArg converts a positional log argument to its canonical lexical
// form. Types with a defined short path (integers, bools, floats at
// double/float32 precision) skip the generic formatter; everything else
// falls back to a stream-style representation.
func stringifyArg(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'g', 9, 32)
	case float64:
		return strconv.FormatFloat(val, 'g', 15, 64)
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func stringifyArgs(args []any) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = stringifyArg(a)
	}
	return out
}
