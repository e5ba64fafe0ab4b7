package corelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTagsLeadingRun(t *testing.T) {
	tags, body := extractTags("[auth][security] Login from 10.0.0.99")
	assert.Equal(t, []string{"auth", "security"}, tags)
	assert.Equal(t, "Login from 10.0.0.99", body)
}

func TestExtractTagsNoneWhenNoLeadingBracket(t *testing.T) {
	tags, body := extractTags("plain message")
	assert.Nil(t, tags)
	assert.Equal(t, "plain message", body)
}

func TestExtractTagsStopsAtInvalidTagContent(t *testing.T) {
	tags, body := extractTags("[auth][not a tag] rest")
	assert.Equal(t, []string{"auth"}, tags)
	assert.Equal(t, "[not a tag] rest", body)
}

func TestExtractTagsUnterminatedBracketIsLiteral(t *testing.T) {
	tags, body := extractTags("[auth message with no close")
	assert.Nil(t, tags)
	assert.Equal(t, "[auth message with no close", body)
}
