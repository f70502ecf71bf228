package recording

import "scrapeflow/backend/internal/protocol"

// SelectorMeta describes where a recorded value comes from.
type SelectorMeta struct {
	Selector  string `json:"selector"`
	Tag       string `json:"tag"`
	Shadow    bool   `json:"shadow"`
	Attribute string `json:"attribute"`
}

// Field is one extracted attribute/value pair recorded per list row template.
type Field struct {
	ID       int64        `json:"id"`
	Type     string       `json:"type"`
	Label    string       `json:"label"`
	Data     string       `json:"data"`
	Selector SelectorMeta `json:"selectorObj"`
}

// PaginationMeta captures how the recording advances through list pages.
type PaginationMeta struct {
	Selector string `json:"selector"`
	Type     string `json:"type"`
}

// ListSession is the state of one list-capture session. Fields and
// CurrentListID are populated only while ListSelector is set; resetting the
// selector clears both.
type ListSession struct {
	ListSelector       string          `json:"listSelector"`
	CurrentListID      int64           `json:"currentListId"`
	Fields             map[int64]Field `json:"fields"`
	PaginationSelector string          `json:"paginationSelector"`
}

func newListSession() ListSession {
	return ListSession{Fields: make(map[int64]Field)}
}

func (s ListSession) clone() ListSession {
	out := s
	out.Fields = make(map[int64]Field, len(s.Fields))
	for id, f := range s.Fields {
		out.Fields[id] = f
	}
	return out
}

// BrowserControl notifies the remote browser session of server-visible state
// so it can filter future candidates.
type BrowserControl interface {
	SetGetList(on bool)
	SetListSelector(selector string)
	SetPaginationMode(on bool)
}

// Overlay renders or clears the highlight for the current candidate.
type Overlay interface {
	ShowHighlight(c protocol.Candidate)
	ClearHighlight()
}

// Dialog asks the user to pick one of several extractable attributes. The
// dialog stays open until a choice arrives; there is no cancel path.
type Dialog interface {
	RequestAttributeChoice(options []protocol.AttributeOption)
}

// StepSink receives finished recording steps. Append-only; storage is owned
// by the collaborator.
type StepSink interface {
	AddTextStep(label, value string, meta SelectorMeta)
	AddListStep(listSelector string, fields map[int64]Field, listID int64, pagination PaginationMeta)
	AddPaginationStep(selector, kind string)
}

// Notifier surfaces short user-facing notices.
type Notifier interface {
	Notify(message string)
}

// SelectorStore persists the list-container selector across reloads. It is
// the only state that survives a reload; fields, list id and pagination
// selector are re-derived.
type SelectorStore interface {
	Load() (string, error)
	Save(selector string) error
}
