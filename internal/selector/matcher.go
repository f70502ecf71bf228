package selector

import (
	"regexp"
	"strings"

	"scrapeflow/backend/internal/protocol"
)

// Traversal delimiters. Selectors crossing these boundaries are not literal
// CSS strings and cannot be compared by equality.
const (
	IframeDelimiter = ":>>"
	ShadowDelimiter = ">>"
)

var nthChildRe = regexp.MustCompile(`:nth-child\(\d+\)`)

// Pagination kinds that do not require an element selection.
const (
	PaginationNone       = "none"
	PaginationScrollDown = "scrollDown"
	PaginationScrollUp   = "scrollUp"
)

// IsSelectorBasedPagination reports whether the pagination kind needs the user
// to pick an element. Scroll-based kinds and "none" do not.
func IsSelectorBasedPagination(kind string) bool {
	switch kind {
	case "", PaginationNone, PaginationScrollDown, PaginationScrollUp:
		return false
	default:
		return true
	}
}

// Accept decides whether a candidate is a legal match given the established
// list container and the current mode snapshot. It returns the candidate when
// accepted and nil when the highlight should be cleared.
//
// The decision policy is evaluated in order, first match wins:
//  1. no list container yet: the candidate is itself a container proposal
//  2. limit mode: highlighter suppressed
//  3. pagination mode: only selector-based pagination kinds select elements
//  4. candidate's own selector listed in its childSelectors: known descendant
//  5-8. iframe / shadow boundary heuristics (see matchChildSegments and
//     matchCandidateParts)
//  9. reject
func Accept(c *protocol.Candidate, listSelector string, modes protocol.ModesPayload) *protocol.Candidate {
	if c == nil {
		return nil
	}
	if listSelector == "" {
		return c
	}
	if modes.LimitMode {
		return nil
	}
	if modes.PaginationMode {
		if IsSelectorBasedPagination(modes.PaginationType) {
			return c
		}
		return nil
	}
	for _, child := range c.ChildSelectors {
		if child == c.Selector {
			return c
		}
	}
	if c.ElementInfo.IsIframeContent && len(c.ChildSelectors) > 0 {
		if matchChildSegments(c.Selector, c.ChildSelectors, IframeDelimiter) {
			return c
		}
	} else if strings.Contains(c.Selector, IframeDelimiter) && len(c.ChildSelectors) > 0 {
		if matchCandidateParts(c.Selector, c.ChildSelectors, IframeDelimiter) {
			return c
		}
	} else if c.ElementInfo.IsShadowRoot && len(c.ChildSelectors) > 0 {
		if matchChildSegments(c.Selector, c.ChildSelectors, ShadowDelimiter) {
			return c
		}
	} else if strings.Contains(c.Selector, ShadowDelimiter) && len(c.ChildSelectors) > 0 {
		if matchCandidateParts(c.Selector, c.ChildSelectors, ShadowDelimiter) {
			return c
		}
	}
	return nil
}

// matchChildSegments splits both the candidate selector and every
// childSelectors entry on the boundary delimiter and accepts when any trimmed
// child segment is a substring of any trimmed candidate part. This is a
// heuristic for "descendant of the list container across the boundary", not a
// proof of ancestry: intermediate path fragments may differ between the two
// selectors and still refer to related elements.
func matchChildSegments(candidateSel string, childSelectors []string, delim string) bool {
	parts := splitTrimmed(candidateSel, delim)
	for _, child := range childSelectors {
		for _, segment := range splitTrimmed(child, delim) {
			if segment == "" {
				continue
			}
			for _, part := range parts {
				if strings.Contains(part, segment) {
					return true
				}
			}
		}
	}
	return false
}

// matchCandidateParts splits only the candidate selector on the delimiter and
// accepts when any part is a substring of any childSelectors entry. Used when
// the candidate selector crosses a boundary but the element itself was not
// flagged as iframe/shadow content.
func matchCandidateParts(candidateSel string, childSelectors []string, delim string) bool {
	for _, part := range splitTrimmed(candidateSel, delim) {
		if part == "" {
			continue
		}
		for _, child := range childSelectors {
			if strings.Contains(child, part) {
				return true
			}
		}
	}
	return false
}

func splitTrimmed(s, delim string) []string {
	raw := strings.Split(s, delim)
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		parts = append(parts, strings.TrimSpace(p))
	}
	return parts
}

// StripNthChild removes every :nth-child(n) fragment from the selector. List
// containers must not be pinned to the sibling index the user happened to
// click on.
func StripNthChild(sel string) string {
	return nthChildRe.ReplaceAllString(sel, "")
}

// NormalizeFieldSelector de-pins a field selector from the list row it was
// captured on. When the candidate selector starts with a child combinator
// segment that equals the list container's last segment (both compared with
// :nth-child stripped), that first segment is replaced by its index-free form
// so the recorded field generalizes across all rows.
func NormalizeFieldSelector(sel, listSelector string) string {
	idx := strings.Index(sel, ">")
	if idx < 0 {
		return sel
	}
	first := strings.TrimSpace(sel[:idx])
	rest := strings.TrimSpace(sel[idx+1:])

	listSegments := strings.Split(listSelector, ">")
	lastListSegment := strings.TrimSpace(listSegments[len(listSegments)-1])

	if StripNthChild(lastListSegment) == StripNthChild(first) {
		return StripNthChild(first) + " > " + rest
	}
	return sel
}
