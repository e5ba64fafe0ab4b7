package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// applyTransforms runs the pipe-transform chain left to right. Each
// transform is fail-open: an unknown name, or an argument that doesn't
// parse, leaves the value unchanged.
func applyTransforms(value string, transforms []string) string {
	for _, t := range transforms {
		value = applyTransform(value, t)
	}
	return value
}

func applyTransform(value, spec string) string {
	name := spec
	arg := ""
	if idx := strings.IndexByte(spec, ':'); idx >= 0 {
		name = spec[:idx]
		arg = spec[idx+1:]
	}

	switch name {
	case "upper":
		return strings.ToUpper(value)
	case "lower":
		return strings.ToLower(value)
	case "trim":
		return strings.TrimSpace(value)
	case "truncate":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return value
		}
		return truncateRunes(value, n)
	case "pad":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return value
		}
		return padRight(value, n)
	case "padl":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return value
		}
		return padLeft(value, n)
	case "quote":
		return strconv.Quote(value)
	case "comma":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		return formatLocaleNumber(strconv.FormatFloat(f, 'f', -1, 64), "")
	case "hex":
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return value
		}
		if i < 0 {
			return "-0x" + strconv.FormatInt(-i, 16)
		}
		return "0x" + strconv.FormatInt(i, 16)
	case "oct":
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return value
		}
		if i < 0 {
			return "-0" + strconv.FormatInt(-i, 8)
		}
		return "0" + strconv.FormatInt(i, 8)
	case "bin":
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return value
		}
		if i < 0 {
			return "-0b" + strconv.FormatInt(-i, 2)
		}
		return "0b" + strconv.FormatInt(i, 2)
	case "bytes":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		return formatByteSize(f)
	case "duration":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		return formatHumanDuration(int64(f))
	case "pct":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		return fmt.Sprintf("%.2f%%", f*100)
	case "json":
		b, err := json.Marshal(value)
		if err != nil {
			return value
		}
		return string(b)
	case "type":
		return detectValueType(value)
	case "expand", "str":
		// Transparent in rendered text; the operator is carried for
		// structured output via the property's Transforms list instead.
		return value
	default:
		return value
	}
}

func truncateRunes(value string, n int) string {
	if n < 0 {
		n = 0
	}
	runes := []rune(value)
	if len(runes) <= n {
		return value
	}
	if n == 0 {
		return "…"
	}
	return string(runes[:n]) + "…"
}

func padRight(value string, width int) string {
	runes := []rune(value)
	if len(runes) >= width {
		return value
	}
	return value + strings.Repeat(" ", width-len(runes))
}

func padLeft(value string, width int) string {
	runes := []rune(value)
	if len(runes) >= width {
		return value
	}
	return strings.Repeat(" ", width-len(runes)) + value
}

// formatByteSize renders a byte count using the IEC-sized but decimal-named
// units the original engine documents (1024-based steps, "KB"/"MB"/"GB"
// labels rather than "KiB"/"MiB"/"GiB").
func formatByteSize(bytes float64) string {
	const unit = 1024.0
	if bytes < unit {
		return fmt.Sprintf("%.0f B", bytes)
	}
	div, exp := unit, 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	units := "KMGTPE"
	return fmt.Sprintf("%.1f %cB", bytes/div, units[exp])
}

// formatHumanDuration renders a millisecond count the way the original
// engine's duration transform does: sub-second values as a bare "Nms", and
// second-or-larger values as space-joined "Xh Ym Zs" components with
// leading zero components omitted (so 61000ms is "1m 1s", not "0h 1m 1s").
func formatHumanDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	totalSeconds := ms / 1000
	h := totalSeconds / 3600
	m := (totalSeconds % 3600) / 60
	s := totalSeconds % 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if h > 0 || m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	parts = append(parts, fmt.Sprintf("%ds", s))
	return strings.Join(parts, " ")
}

// detectValueType sniffs the lexical shape of an already-stringified log
// argument to report its likely original type. Argument values reach the
// transform stage as strings (see stringifyArg in the root package), so the
// precise numeric type is not available here; this distinguishes bool/int/
// double/string well enough to match the original engine's {val|type}
// transform for the common cases.
func detectValueType(value string) string {
	if value == "true" || value == "false" {
		return "bool"
	}
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return "int"
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return "double"
	}
	return "string"
}
