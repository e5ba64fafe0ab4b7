package parser

import (
	"testing"

	"github.com/corelogio/corelog/core"
	"github.com/stretchr/testify/assert"
)

func TestRenderSubstitutesArgsByPosition(t *testing.T) {
	plan := Parse("{A} and {B}")
	msg, props := Render(plan, []string{"1", "2"}, "")
	assert.Equal(t, "1 and 2", msg)
	assert.Equal(t, []core.PlaceholderProperty{
		{Name: "A", Value: "1"},
		{Name: "B", Value: "2"},
	}, props)
}

func TestRenderMissingArgFallsBackToRawToken(t *testing.T) {
	plan := Parse("{A} {B}")
	msg, props := Render(plan, []string{"1"}, "")
	assert.Equal(t, "1 {B}", msg)
	assert.Len(t, props, 1)
}

func TestRenderAppliesFormatSpecThenTransforms(t *testing.T) {
	plan := Parse("{V:.2f|pad:8}")
	msg, _ := Render(plan, []string{"3.14159"}, "")
	assert.Equal(t, "3.14    ", msg)
}

func TestApplyFormatSpecCurrencyAndHexAndPercent(t *testing.T) {
	assert.Equal(t, "$5.00", applyFormatSpec("5", "C", ""))
	assert.Equal(t, "-$5.00", applyFormatSpec("-5", "c", ""))
	assert.Equal(t, "ff", applyFormatSpec("255", "x", ""))
	assert.Equal(t, "FF", applyFormatSpec("255", "X", ""))
	assert.Equal(t, "50.00%", applyFormatSpec("0.5", "P", ""))
}

func TestApplyFormatSpecFixedAndZeroPad(t *testing.T) {
	assert.Equal(t, "3.14", applyFormatSpec("3.14159", ".2f", ""))
	assert.Equal(t, "007", applyFormatSpec("7", "03", ""))
	assert.Equal(t, "-007", applyFormatSpec("-7", "03", ""))
}

func TestApplyFormatSpecLocaleNumber(t *testing.T) {
	assert.Equal(t, "1,234,567", applyFormatSpec("1234567", "n", ""))
	assert.Equal(t, "1.234.567", applyFormatSpec("1234567", "n", "de-DE"))
}

func TestApplyFormatSpecDateTime(t *testing.T) {
	epoch := "1704207845" // 2024-01-02T15:04:05Z
	assert.Equal(t, "01/02/2024", applyFormatSpec(epoch, "d", ""))
	assert.Equal(t, "Tuesday, January 2, 2024", applyFormatSpec(epoch, "D", ""))
}

func TestApplyFormatSpecUnrecognizedPassesThrough(t *testing.T) {
	assert.Equal(t, "not-a-number", applyFormatSpec("not-a-number", "C", ""))
	assert.Equal(t, "hello", applyFormatSpec("hello", "???", ""))
}

func TestApplyTransformsChainLeftToRight(t *testing.T) {
	assert.Equal(t, "HELLO", applyTransforms("  hello  ", []string{"trim", "upper"}))
}

func TestApplyTransformTruncateAndPad(t *testing.T) {
	assert.Equal(t, "hel…", applyTransform("hello", "truncate:3"))
	assert.Equal(t, "hi  ", applyTransform("hi", "pad:4"))
	assert.Equal(t, "  hi", applyTransform("hi", "padl:4"))
}

func TestApplyTransformNumericBases(t *testing.T) {
	assert.Equal(t, "0xff", applyTransform("255", "hex"))
	assert.Equal(t, "0377", applyTransform("255", "oct"))
	assert.Equal(t, "0b11111111", applyTransform("255", "bin"))
	assert.Equal(t, "0x1000", applyTransform("4096", "hex"))
	assert.Equal(t, "010", applyTransform("8", "oct"))
	assert.Equal(t, "0b1010", applyTransform("10", "bin"))
}

func TestApplyTransformBytesAndDuration(t *testing.T) {
	assert.Equal(t, "0 B", applyTransform("0", "bytes"))
	assert.Equal(t, "1.0 KB", applyTransform("1024", "bytes"))
	assert.Equal(t, "1.0 MB", applyTransform("1048576", "bytes"))
	assert.Equal(t, "1.0 GB", applyTransform("1073741824", "bytes"))
	assert.Equal(t, "500ms", applyTransform("500", "duration"))
	assert.Equal(t, "1m 1s", applyTransform("61000", "duration"))
	assert.Equal(t, "1h 1m 1s", applyTransform("3661000", "duration"))
}

func TestApplyTransformType(t *testing.T) {
	assert.Equal(t, "int", applyTransform("42", "type"))
	assert.Equal(t, "double", applyTransform("3.14", "type"))
	assert.Equal(t, "string", applyTransform("hello", "type"))
	assert.Equal(t, "bool", applyTransform("true", "type"))
}

func TestApplyTransformUnknownNameIsNoop(t *testing.T) {
	assert.Equal(t, "value", applyTransform("value", "nonsense"))
}

func TestApplyTransformQuoteAndJSON(t *testing.T) {
	assert.Equal(t, `"a\"b"`, applyTransform(`a"b`, "quote"))
	assert.Equal(t, `"hi"`, applyTransform("hi", "json"))
}
