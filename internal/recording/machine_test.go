package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scrapeflow/backend/internal/protocol"
)

type fakeBrowser struct {
	getList        []bool
	listSelectors  []string
	paginationMode []bool
}

func (f *fakeBrowser) SetGetList(on bool) { f.getList = append(f.getList, on) }

func (f *fakeBrowser) SetListSelector(selector string) {
	f.listSelectors = append(f.listSelectors, selector)
}

func (f *fakeBrowser) SetPaginationMode(on bool) {
	f.paginationMode = append(f.paginationMode, on)
}

type fakeOverlay struct {
	shown   []protocol.Candidate
	cleared int
}

func (f *fakeOverlay) ShowHighlight(c protocol.Candidate) { f.shown = append(f.shown, c) }
func (f *fakeOverlay) ClearHighlight()                    { f.cleared++ }

type fakeDialog struct {
	requests [][]protocol.AttributeOption
}

func (f *fakeDialog) RequestAttributeChoice(options []protocol.AttributeOption) {
	f.requests = append(f.requests, options)
}

type textStep struct {
	label, value string
	meta         SelectorMeta
}

type listStep struct {
	listSelector string
	fields       map[int64]Field
	listID       int64
	pagination   PaginationMeta
}

type fakeSteps struct {
	texts      []textStep
	lists      []listStep
	pagination []PaginationMeta
}

func (f *fakeSteps) AddTextStep(label, value string, meta SelectorMeta) {
	f.texts = append(f.texts, textStep{label, value, meta})
}

func (f *fakeSteps) AddListStep(listSelector string, fields map[int64]Field, listID int64, pagination PaginationMeta) {
	f.lists = append(f.lists, listStep{listSelector, fields, listID, pagination})
}

func (f *fakeSteps) AddPaginationStep(selector, kind string) {
	f.pagination = append(f.pagination, PaginationMeta{Selector: selector, Type: kind})
}

type fakeNotifier struct{ messages []string }

func (f *fakeNotifier) Notify(message string) { f.messages = append(f.messages, message) }

type memoryStore struct{ selector string }

func (s *memoryStore) Load() (string, error) { return s.selector, nil }
func (s *memoryStore) Save(sel string) error { s.selector = sel; return nil }

type harness struct {
	machine  *Machine
	browser  *fakeBrowser
	overlay  *fakeOverlay
	dialog   *fakeDialog
	steps    *fakeSteps
	notifier *fakeNotifier
	store    *memoryStore
}

func newHarness() *harness {
	h := &harness{
		browser:  &fakeBrowser{},
		overlay:  &fakeOverlay{},
		dialog:   &fakeDialog{},
		steps:    &fakeSteps{},
		notifier: &fakeNotifier{},
		store:    &memoryStore{},
	}
	h.machine = NewMachine(Deps{
		Browser:  h.browser,
		Overlay:  h.overlay,
		Dialog:   h.dialog,
		Steps:    h.steps,
		Notifier: h.notifier,
		Store:    h.store,
	})
	return h
}

func listModes() protocol.ModesPayload {
	return protocol.ModesPayload{GetList: true}
}

func rowCandidate() protocol.Candidate {
	return protocol.Candidate{
		Selector: "div.row:nth-child(2)",
		Rect:     protocol.Rect{Left: 10, Top: 10, Right: 100, Bottom: 50},
	}
}

func TestEstablishListSelectorStripsNthChild(t *testing.T) {
	h := newHarness()

	h.machine.HandleCandidate(rowCandidate(), listModes())
	require.Len(t, h.overlay.shown, 1)

	h.machine.HandleClick(20, 20, listModes())

	session := h.machine.Session()
	assert.Equal(t, "div.row", session.ListSelector)
	assert.NotZero(t, session.CurrentListID)
	assert.Empty(t, session.Fields)

	// Selector change is mirrored to durable storage and to the browser.
	assert.Equal(t, "div.row", h.store.selector)
	assert.Equal(t, []string{"div.row"}, h.browser.listSelectors)
	assert.Equal(t, []bool{true}, h.browser.getList)
	assert.NotEmpty(t, h.notifier.messages)
}

func TestClickOutsideRectIsNoOp(t *testing.T) {
	h := newHarness()
	h.machine.HandleCandidate(rowCandidate(), listModes())

	h.machine.HandleClick(200, 200, listModes())

	assert.Empty(t, h.machine.Session().ListSelector)
	assert.Empty(t, h.store.selector)
}

func TestClickWithNoPendingCandidateIsNoOp(t *testing.T) {
	h := newHarness()
	h.machine.HandleClick(20, 20, listModes())
	assert.Empty(t, h.machine.Session().ListSelector)
}

func TestCancelClearsPending(t *testing.T) {
	h := newHarness()
	h.machine.HandleCandidate(rowCandidate(), listModes())
	h.machine.HandleCancel()

	h.machine.HandleClick(20, 20, listModes())

	assert.Empty(t, h.machine.Session().ListSelector)
	assert.Equal(t, 1, h.overlay.cleared)
}

func establishList(t *testing.T, h *harness) {
	t.Helper()
	h.machine.HandleCandidate(rowCandidate(), listModes())
	h.machine.HandleClick(20, 20, listModes())
	require.Equal(t, "div.row", h.machine.Session().ListSelector)
}

func fieldCandidate() protocol.Candidate {
	return protocol.Candidate{
		Selector:       "div.row:nth-child(2) > span.name",
		Rect:           protocol.Rect{Left: 10, Top: 10, Right: 100, Bottom: 50},
		ChildSelectors: []string{"div.row:nth-child(2) > span.name"},
		ElementInfo:    protocol.ElementInfo{TagName: "span", InnerText: "Alice"},
	}
}

func TestAppendFieldNormalizesRowSelector(t *testing.T) {
	h := newHarness()
	establishList(t, h)

	h.machine.HandleCandidate(fieldCandidate(), listModes())
	h.machine.HandleClick(20, 20, listModes())

	session := h.machine.Session()
	require.Len(t, session.Fields, 1)
	for _, f := range session.Fields {
		assert.Equal(t, "div.row > span.name", f.Selector.Selector)
		assert.Equal(t, "text", f.Type)
		assert.Equal(t, "Alice", f.Data)
		assert.Equal(t, "innerText", f.Selector.Attribute)
		assert.Greater(t, f.ID, session.CurrentListID)
	}

	require.Len(t, h.steps.lists, 1)
	assert.Equal(t, "div.row", h.steps.lists[0].listSelector)
	assert.Equal(t, session.CurrentListID, h.steps.lists[0].listID)
}

func TestFieldIDsStrictlyIncrease(t *testing.T) {
	h := newHarness()
	establishList(t, h)

	for i := 0; i < 5; i++ {
		h.machine.HandleCandidate(fieldCandidate(), listModes())
		h.machine.HandleClick(20, 20, listModes())
	}

	session := h.machine.Session()
	require.Len(t, session.Fields, 5)
	seen := make(map[int64]bool)
	for id := range session.Fields {
		assert.False(t, seen[id], "duplicate field id %d", id)
		seen[id] = true
	}
}

func TestMultiOptionFieldOpensDialogAndBlocksClicks(t *testing.T) {
	h := newHarness()
	establishList(t, h)

	anchor := fieldCandidate()
	anchor.Selector = "div.row:nth-child(2) > a.link"
	anchor.ChildSelectors = []string{"div.row:nth-child(2) > a.link"}
	anchor.ElementInfo = protocol.ElementInfo{TagName: "a", InnerText: "Home", URL: "/home"}

	h.machine.HandleCandidate(anchor, listModes())
	h.machine.HandleClick(20, 20, listModes())

	require.Len(t, h.dialog.requests, 1)
	require.Len(t, h.dialog.requests[0], 2)
	assert.Equal(t, "innerText", h.dialog.requests[0][0].Value)
	assert.Equal(t, "href", h.dialog.requests[0][1].Value)
	assert.Empty(t, h.machine.Session().Fields)

	// Clicks are suppressed while the dialog masks the surface.
	h.machine.HandleCandidate(fieldCandidate(), listModes())
	h.machine.HandleClick(20, 20, listModes())
	assert.Empty(t, h.machine.Session().Fields)

	h.machine.ChooseAttribute("href")
	session := h.machine.Session()
	require.Len(t, session.Fields, 1)
	for _, f := range session.Fields {
		assert.Equal(t, "/home", f.Data)
		assert.Equal(t, "href", f.Selector.Attribute)
	}
}

func TestChooseAttributeWithoutDialogIsNoOp(t *testing.T) {
	h := newHarness()
	establishList(t, h)
	h.machine.ChooseAttribute("href")
	assert.Empty(t, h.machine.Session().Fields)
}

func TestTextCaptureSingleOptionEmitsImmediately(t *testing.T) {
	h := newHarness()
	modes := protocol.ModesPayload{GetText: true}

	c := protocol.Candidate{
		Selector:    "p.title",
		Rect:        protocol.Rect{Left: 0, Top: 0, Right: 50, Bottom: 50},
		ElementInfo: protocol.ElementInfo{TagName: "p", InnerText: "Hello"},
	}
	h.machine.HandleCandidate(c, modes)
	h.machine.HandleClick(5, 5, modes)

	require.Len(t, h.steps.texts, 1)
	assert.Equal(t, "Hello", h.steps.texts[0].value)
	assert.Equal(t, "p.title", h.steps.texts[0].meta.Selector)
	assert.Empty(t, h.dialog.requests)
}

func TestTextCaptureMalformedCandidateIsNoOp(t *testing.T) {
	h := newHarness()
	modes := protocol.ModesPayload{GetText: true}

	c := protocol.Candidate{
		Selector: "p.title",
		Rect:     protocol.Rect{Left: 0, Top: 0, Right: 50, Bottom: 50},
	}
	h.machine.HandleCandidate(c, modes)
	h.machine.HandleClick(5, 5, modes)

	assert.Empty(t, h.steps.texts)
	assert.Empty(t, h.dialog.requests)
}

func TestPaginationSelectorRecorded(t *testing.T) {
	h := newHarness()
	establishList(t, h)

	modes := protocol.ModesPayload{GetList: true, PaginationMode: true, PaginationType: "clickNext"}
	next := protocol.Candidate{
		Selector: "a.next-page",
		Rect:     protocol.Rect{Left: 0, Top: 0, Right: 30, Bottom: 30},
	}
	h.machine.HandleCandidate(next, modes)
	h.machine.HandleClick(10, 10, modes)

	session := h.machine.Session()
	assert.Equal(t, "a.next-page", session.PaginationSelector)
	require.Len(t, h.steps.pagination, 1)
	assert.Equal(t, "clickNext", h.steps.pagination[0].Type)
	assert.Equal(t, []bool{false}, h.browser.paginationMode)
}

func TestScrollPaginationNeverHighlights(t *testing.T) {
	h := newHarness()
	establishList(t, h)

	for _, kind := range []string{"", "none", "scrollDown", "scrollUp"} {
		modes := protocol.ModesPayload{GetList: true, PaginationMode: true, PaginationType: kind}
		before := h.overlay.cleared
		h.machine.HandleCandidate(rowCandidate(), modes)
		assert.Equal(t, before+1, h.overlay.cleared, "kind %q must clear the highlight", kind)
	}
}

func TestSetGetListOffResetsEverything(t *testing.T) {
	h := newHarness()
	establishList(t, h)

	h.machine.HandleCandidate(fieldCandidate(), listModes())
	h.machine.HandleClick(20, 20, listModes())
	require.NotEmpty(t, h.machine.Session().Fields)

	h.machine.SetGetList(false)

	session := h.machine.Session()
	assert.Empty(t, session.ListSelector)
	assert.Zero(t, session.CurrentListID)
	assert.Empty(t, session.Fields)
	assert.Equal(t, "", h.store.selector)
}

func TestRestoreAdoptsStoredSelector(t *testing.T) {
	h := newHarness()
	h.store.selector = "ul.products > li"

	h.machine.Restore()

	session := h.machine.Session()
	assert.Equal(t, "ul.products > li", session.ListSelector)
	// Fields and list id are not restored; they are re-derived.
	assert.Zero(t, session.CurrentListID)
	assert.Empty(t, session.Fields)
	assert.Empty(t, session.PaginationSelector)
	assert.Equal(t, []string{"ul.products > li"}, h.browser.listSelectors)
}

func TestRestoreNeverOverwritesInMemorySelector(t *testing.T) {
	h := newHarness()
	establishList(t, h)
	h.store.selector = "ul.other"

	h.machine.Restore()

	assert.Equal(t, "div.row", h.machine.Session().ListSelector)
}

func TestLatestCandidateWins(t *testing.T) {
	h := newHarness()

	first := rowCandidate()
	second := rowCandidate()
	second.Selector = "div.row:nth-child(5)"

	h.machine.HandleCandidate(first, listModes())
	h.machine.HandleCandidate(second, listModes())
	h.machine.HandleClick(20, 20, listModes())

	assert.Equal(t, "div.row", h.machine.Session().ListSelector)
	require.Len(t, h.overlay.shown, 2)
	assert.Equal(t, "div.row:nth-child(5)", h.overlay.shown[1].Selector)
}
