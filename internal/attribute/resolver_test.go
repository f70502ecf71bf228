package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scrapeflow/backend/internal/protocol"
)

func TestOptionsForAnchor(t *testing.T) {
	info := protocol.ElementInfo{TagName: "a", InnerText: "Home", URL: "/home"}
	options := OptionsFor("a", info)
	assert.Len(t, options, 2)
	assert.Equal(t, KeyInnerText, options[0].Value)
	assert.Equal(t, KeyHref, options[1].Value)

	assert.Empty(t, OptionsFor("a", protocol.ElementInfo{TagName: "a"}))

	textOnly := OptionsFor("a", protocol.ElementInfo{TagName: "a", InnerText: "Home"})
	assert.Len(t, textOnly, 1)
	assert.Equal(t, KeyInnerText, textOnly[0].Value)
}

func TestOptionsForImage(t *testing.T) {
	info := protocol.ElementInfo{TagName: "img", InnerText: "logo", ImageURL: "https://cdn.example.com/logo.png"}
	options := OptionsFor("img", info)
	assert.Len(t, options, 2)
	assert.Equal(t, KeyInnerText, options[0].Value)
	assert.Equal(t, KeySrc, options[1].Value)

	urlOnly := OptionsFor("img", protocol.ElementInfo{TagName: "img", ImageURL: "x.png"})
	assert.Len(t, urlOnly, 1)
	assert.Equal(t, KeySrc, urlOnly[0].Value)
}

func TestOptionsForGenericTag(t *testing.T) {
	options := OptionsFor("span", protocol.ElementInfo{TagName: "span"})
	assert.Len(t, options, 1)
	assert.Equal(t, KeyInnerText, options[0].Value)
}

func TestValueFor(t *testing.T) {
	info := protocol.ElementInfo{InnerText: "Alice", URL: "/alice", ImageURL: "alice.png"}
	assert.Equal(t, "/alice", ValueFor(KeyHref, info))
	assert.Equal(t, "alice.png", ValueFor(KeySrc, info))
	assert.Equal(t, "Alice", ValueFor(KeyInnerText, info))
	assert.Equal(t, "Alice", ValueFor("unknown", info))

	// Pure: repeated calls with the same snapshot yield the same string.
	assert.Equal(t, ValueFor(KeyHref, info), ValueFor(KeyHref, info))

	// Absent data degrades to empty strings.
	assert.Equal(t, "", ValueFor(KeyHref, protocol.ElementInfo{}))
	assert.Equal(t, "", ValueFor(KeySrc, protocol.ElementInfo{}))
	assert.Equal(t, "", ValueFor(KeyInnerText, protocol.ElementInfo{}))
}
