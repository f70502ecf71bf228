package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scrapeflow/backend/internal/protocol"
)

func candidate(sel string, children ...string) *protocol.Candidate {
	return &protocol.Candidate{Selector: sel, ChildSelectors: children}
}

func TestAcceptAlwaysWhenNoListContainer(t *testing.T) {
	cases := []*protocol.Candidate{
		candidate("div.row"),
		candidate("div.row:nth-child(3) > span"),
		candidate("iframe#main :>> div.item", "unrelated"),
		candidate("host >> div.inner"),
	}
	for _, c := range cases {
		got := Accept(c, "", protocol.ModesPayload{GetList: true})
		assert.Same(t, c, got, "unset container must accept %q unchanged", c.Selector)
	}
}

func TestAcceptSuppressedInLimitMode(t *testing.T) {
	c := candidate("div.row", "div.row")
	got := Accept(c, "ul.list", protocol.ModesPayload{GetList: true, LimitMode: true})
	assert.Nil(t, got)
}

func TestAcceptPaginationKinds(t *testing.T) {
	c := candidate("a.next")
	for _, kind := range []string{"", "none", "scrollDown", "scrollUp"} {
		modes := protocol.ModesPayload{GetList: true, PaginationMode: true, PaginationType: kind}
		assert.Nil(t, Accept(c, "ul.list", modes), "scroll-based kind %q must not highlight", kind)
	}
	modes := protocol.ModesPayload{GetList: true, PaginationMode: true, PaginationType: "clickNext"}
	assert.Same(t, c, Accept(c, "ul.list", modes))
}

func TestAcceptLiteralChildSelectorFastPath(t *testing.T) {
	// Holds regardless of iframe/shadow flags.
	c := candidate("div.row > span.name", "div.other", "div.row > span.name")
	c.ElementInfo.IsIframeContent = true
	c.ElementInfo.IsShadowRoot = true
	assert.Same(t, c, Accept(c, "div.row", protocol.ModesPayload{GetList: true}))
}

func TestAcceptIframeContentSegmentMatch(t *testing.T) {
	c := candidate("iframe#outer :>> div.list > div.row", "div.row")
	c.ElementInfo.IsIframeContent = true
	assert.NotNil(t, Accept(c, "iframe#outer :>> div.list", protocol.ModesPayload{GetList: true}))

	unrelated := candidate("iframe#outer :>> section.sidebar", "div.row")
	unrelated.ElementInfo.IsIframeContent = true
	assert.Nil(t, Accept(unrelated, "iframe#outer :>> div.list", protocol.ModesPayload{GetList: true}))
}

func TestAcceptIframeSelectorWithoutContentFlag(t *testing.T) {
	// Candidate selector crosses the iframe boundary but the element is not
	// flagged as iframe content: candidate parts are matched against whole
	// childSelectors entries.
	c := candidate("iframe#outer :>> div.row", "section iframe#outer :>> div.row > span")
	assert.NotNil(t, Accept(c, "div.list", protocol.ModesPayload{GetList: true}))

	miss := candidate("iframe#outer :>> table.grid", "div.row > span")
	assert.Nil(t, Accept(miss, "div.list", protocol.ModesPayload{GetList: true}))
}

func TestAcceptShadowRootSegmentMatch(t *testing.T) {
	c := candidate("my-widget >> div.list > div.row", "div.row")
	c.ElementInfo.IsShadowRoot = true
	assert.NotNil(t, Accept(c, "my-widget >> div.list", protocol.ModesPayload{GetList: true}))
}

func TestAcceptShadowSelectorWithoutRootFlag(t *testing.T) {
	c := candidate("my-widget >> div.row", "my-widget >> div.row > span.name")
	assert.NotNil(t, Accept(c, "div.list", protocol.ModesPayload{GetList: true}))
}

func TestAcceptRejectsUnrelatedPlainSelector(t *testing.T) {
	// Plain CSS candidate, not listed in childSelectors, no boundary
	// delimiters: rejected even though it looks related. Establishing-time
	// nth-child stripping does not feed back into matching; only the remote
	// browser's childSelectors report can relate a plain candidate to the
	// container. This documents the exact branch taken for the end-to-end
	// scenario: the second-row field candidate is accepted only via the
	// literal childSelectors fast path, never via the substring heuristics.
	c := candidate("div.row:nth-child(2) > span.name", "div.row > span.name")
	c.ElementInfo.TagName = "span"
	assert.Nil(t, Accept(c, "div.row", protocol.ModesPayload{GetList: true}))

	literal := candidate("div.row > span.name", "div.row > span.name")
	assert.NotNil(t, Accept(literal, "div.row", protocol.ModesPayload{GetList: true}))
}

func TestStripNthChild(t *testing.T) {
	assert.Equal(t, "ul > li", StripNthChild("ul > li:nth-child(3)"))
	assert.Equal(t, "div.row > span", StripNthChild("div.row:nth-child(12) > span"))
	assert.Equal(t, "div.row", StripNthChild("div.row"))
}

func TestNormalizeFieldSelector(t *testing.T) {
	// First segment equals the container's last segment modulo nth-child:
	// the row index is dropped so the field generalizes across rows.
	got := NormalizeFieldSelector("div.row:nth-child(2) > span.name", "div.list > div.row")
	assert.Equal(t, "div.row > span.name", got)

	// Unrelated first segment is left untouched.
	got = NormalizeFieldSelector("div.other:nth-child(2) > span.name", "div.list > div.row")
	assert.Equal(t, "div.other:nth-child(2) > span.name", got)

	// No child combinator: nothing to normalize.
	got = NormalizeFieldSelector("span.name", "div.row")
	assert.Equal(t, "span.name", got)
}

func TestIsSelectorBasedPagination(t *testing.T) {
	for _, kind := range []string{"", "none", "scrollDown", "scrollUp"} {
		assert.False(t, IsSelectorBasedPagination(kind), kind)
	}
	assert.True(t, IsSelectorBasedPagination("clickNext"))
	assert.True(t, IsSelectorBasedPagination("clickLoadMore"))
}
