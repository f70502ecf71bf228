package recording

import (
	"fmt"
	"log"
	"sync"
	"time"

	"scrapeflow/backend/internal/attribute"
	"scrapeflow/backend/internal/protocol"
	"scrapeflow/backend/internal/selector"
)

// Deps are the external collaborators consumed by the state machine. All of
// them are required.
type Deps struct {
	Browser  BrowserControl
	Overlay  Overlay
	Dialog   Dialog
	Steps    StepSink
	Notifier Notifier
	Store    SelectorStore
}

// pendingChoice is a click whose attribute resolution produced more than one
// option. It blocks until ChooseAttribute arrives; new candidates may still
// replace the pending slot meanwhile, but their confirmation is suppressed.
type pendingChoice struct {
	candidate protocol.Candidate
	modes     protocol.ModesPayload
}

// Machine drives the recording state transitions: candidate acceptance,
// click confirmation, attribute resolution and list-session bookkeeping.
// Mode flags are externally owned and passed in as a snapshot on every call.
type Machine struct {
	mu       sync.Mutex
	deps     Deps
	session  ListSession
	pending  *protocol.Candidate
	awaiting *pendingChoice
	lastID   int64
}

func NewMachine(deps Deps) *Machine {
	return &Machine{
		deps:    deps,
		session: newListSession(),
	}
}

// Restore adopts a previously stored list-container selector. It runs once on
// mount and never overwrites an in-memory value.
func (m *Machine) Restore() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.ListSelector != "" {
		return
	}
	stored, err := m.deps.Store.Load()
	if err != nil {
		log.Printf("selector restore failed: %v", err)
		return
	}
	if stored == "" {
		return
	}
	m.session.ListSelector = stored
	m.deps.Browser.SetGetList(true)
	m.deps.Browser.SetListSelector(stored)
}

// Session returns a copy of the current list-capture state.
func (m *Machine) Session() ListSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.clone()
}

// HandleCandidate runs the acceptance policy for a new candidate. The pending
// slot is latest-wins: an accepted candidate replaces the previous one, a
// rejected candidate clears it. An open attribute dialog does not block the
// slot from updating.
func (m *Machine) HandleCandidate(c protocol.Candidate, modes protocol.ModesPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()

	accepted := selector.Accept(&c, m.session.ListSelector, modes)
	if accepted == nil {
		m.pending = nil
		m.deps.Overlay.ClearHighlight()
		return
	}
	m.pending = accepted
	m.deps.Overlay.ShowHighlight(*accepted)
}

// HandleCancel clears the pending candidate, e.g. when the pointer leaves the
// rendering surface.
func (m *Machine) HandleCancel() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = nil
	m.deps.Overlay.ClearHighlight()
}

// HandleClick confirms the pending candidate when the click falls inside its
// rectangle. Clicks with no pending candidate, outside the rectangle, or
// while an attribute dialog is open are silently ignored.
func (m *Machine) HandleClick(x, y float64, modes protocol.ModesPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.awaiting != nil {
		return
	}
	if m.pending == nil || !m.pending.Rect.Contains(x, y) {
		return
	}
	c := *m.pending

	switch {
	case modes.GetText:
		m.resolveText(c, modes)
	case modes.PaginationMode && modes.GetList && selector.IsSelectorBasedPagination(modes.PaginationType):
		m.recordPagination(c, modes)
	case modes.GetList && m.session.ListSelector == "":
		m.establishListSelector(c)
	case modes.GetList && m.session.CurrentListID != 0:
		m.resolveField(c, modes)
	}
}

// ChooseAttribute resolves a blocked disambiguation with the user's choice.
// A choice with no open dialog is a no-op.
func (m *Machine) ChooseAttribute(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.awaiting == nil {
		return
	}
	choice := *m.awaiting
	m.awaiting = nil

	if choice.modes.GetText {
		m.emitTextStep(choice.candidate, key)
		return
	}
	m.appendField(choice.candidate, key)
}

// SetGetList reacts to the externally owned list-mode flag. Toggling the mode
// off resets the session unconditionally: selector, fields and list id are
// cleared together, in memory and in durable storage.
func (m *Machine) SetGetList(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deps.Browser.SetGetList(on)
	if on {
		return
	}
	m.session = newListSession()
	m.pending = nil
	if err := m.deps.Store.Save(""); err != nil {
		log.Printf("selector store clear failed: %v", err)
	}
}

func (m *Machine) resolveText(c protocol.Candidate, modes protocol.ModesPayload) {
	options := extractableOptions(c)
	switch len(options) {
	case 0:
	case 1:
		m.emitTextStep(c, options[0].Value)
	default:
		m.awaiting = &pendingChoice{candidate: c, modes: modes}
		m.deps.Dialog.RequestAttributeChoice(options)
	}
}

func (m *Machine) emitTextStep(c protocol.Candidate, key string) {
	value := attribute.ValueFor(key, c.ElementInfo)
	meta := SelectorMeta{
		Selector:  c.Selector,
		Tag:       c.ElementInfo.TagName,
		Shadow:    c.ElementInfo.IsShadowRoot,
		Attribute: key,
	}
	m.deps.Steps.AddTextStep(textStepLabel(value), value, meta)
}

// textStepLabel derives a short human label from the captured value.
func textStepLabel(value string) string {
	if value == "" {
		return "text"
	}
	if len(value) > 40 {
		return value[:40]
	}
	return value
}

func (m *Machine) recordPagination(c protocol.Candidate, modes protocol.ModesPayload) {
	m.session.PaginationSelector = c.Selector
	m.deps.Steps.AddPaginationStep(c.Selector, modes.PaginationType)
	m.deps.Notifier.Notify("Pagination element selected")
	m.deps.Browser.SetPaginationMode(false)
}

// establishListSelector stores the candidate as the list container. The
// :nth-child fragment is stripped so the container is not pinned to the
// sibling index the user clicked on.
func (m *Machine) establishListSelector(c protocol.Candidate) {
	stripped := selector.StripNthChild(c.Selector)
	m.session.ListSelector = stripped
	m.session.CurrentListID = m.nextID()
	m.session.Fields = make(map[int64]Field)

	if err := m.deps.Store.Save(stripped); err != nil {
		log.Printf("selector store save failed: %v", err)
	}
	m.deps.Browser.SetGetList(true)
	m.deps.Browser.SetListSelector(stripped)
	m.deps.Notifier.Notify("List container selected")
}

func (m *Machine) resolveField(c protocol.Candidate, modes protocol.ModesPayload) {
	options := extractableOptions(c)
	switch len(options) {
	case 0:
	case 1:
		m.appendField(c, options[0].Value)
	default:
		m.awaiting = &pendingChoice{candidate: c, modes: modes}
		m.deps.Dialog.RequestAttributeChoice(options)
	}
}

// appendField records one field of the list row template. The field selector
// is de-pinned from the clicked row so it generalizes across all rows.
func (m *Machine) appendField(c protocol.Candidate, key string) {
	if m.session.ListSelector == "" || m.session.CurrentListID == 0 {
		return
	}
	normalized := selector.NormalizeFieldSelector(c.Selector, m.session.ListSelector)
	field := Field{
		ID:    m.nextID(),
		Type:  "text",
		Label: fmt.Sprintf("field_%d", len(m.session.Fields)+1),
		Data:  attribute.ValueFor(key, c.ElementInfo),
		Selector: SelectorMeta{
			Selector:  normalized,
			Tag:       c.ElementInfo.TagName,
			Shadow:    c.ElementInfo.IsShadowRoot,
			Attribute: key,
		},
	}

	next := make(map[int64]Field, len(m.session.Fields)+1)
	for id, f := range m.session.Fields {
		next[id] = f
	}
	next[field.ID] = field
	m.session.Fields = next

	m.deps.Steps.AddListStep(m.session.ListSelector, next, m.session.CurrentListID, PaginationMeta{
		Selector: m.session.PaginationSelector,
	})
}

// extractableOptions treats a candidate without element info as having no
// extractable attribute, so the consuming click stays a no-op.
func extractableOptions(c protocol.Candidate) []protocol.AttributeOption {
	if c.ElementInfo.TagName == "" {
		return nil
	}
	return attribute.OptionsFor(c.ElementInfo.TagName, c.ElementInfo)
}

// nextID returns a time-seeded, strictly increasing identifier. Transitions
// can occur faster than the clock's resolution, so the counter never reuses
// or decreases a value.
func (m *Machine) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return id
}
