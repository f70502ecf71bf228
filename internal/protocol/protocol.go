package protocol

import "encoding/json"

type MessageType string

// Viewer-bound message types.
const (
	MessageScreencast     MessageType = "screencast"
	MessageHighlight      MessageType = "highlight"
	MessageClearHighlight MessageType = "clearHighlight"
	MessageAttributeOpts  MessageType = "attributeOptions"
	MessageNotification   MessageType = "notification"
	MessageListSelector   MessageType = "listSelector"
)

// Server-bound message types.
const (
	MessageClick           MessageType = "click"
	MessageCancel          MessageType = "cancel"
	MessageModes           MessageType = "modes"
	MessageChooseAttribute MessageType = "chooseAttribute"
)

// Message is the envelope exchanged over the recording websocket.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Rect is an axis-aligned bounding rectangle in surface coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Contains reports whether the point lies within the rectangle, inclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x <= r.Right && y >= r.Top && y <= r.Bottom
}

// ElementInfo is a snapshot of one DOM element, immutable once received.
type ElementInfo struct {
	TagName         string            `json:"tagName"`
	HasOnlyText     bool              `json:"hasOnlyText,omitempty"`
	IsIframeContent bool              `json:"isIframeContent,omitempty"`
	IsShadowRoot    bool              `json:"isShadowRoot,omitempty"`
	InnerText       string            `json:"innerText,omitempty"`
	URL             string            `json:"url,omitempty"`
	ImageURL        string            `json:"imageUrl,omitempty"`
	Attributes      map[string]string `json:"attributes,omitempty"`
	InnerHTML       string            `json:"innerHTML,omitempty"`
	OuterHTML       string            `json:"outerHTML,omitempty"`
}

// Candidate is a highlighted element reported by the remote browser for
// possible selection. Transient: each candidate supersedes the previous one.
type Candidate struct {
	Selector       string      `json:"selector"`
	Rect           Rect        `json:"rect"`
	ElementInfo    ElementInfo `json:"elementInfo"`
	ChildSelectors []string    `json:"childSelectors,omitempty"`
}

// ScreencastPayload carries one frame. UserID scopes the frame to a single
// viewer; an empty UserID means the frame is for everyone.
type ScreencastPayload struct {
	Image  string `json:"image"`
	UserID string `json:"userId,omitempty"`
}

type ClickPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ModesPayload is the externally owned recording-mode snapshot. The core
// consumes it on every transition but does not own its lifecycle.
type ModesPayload struct {
	GetText        bool   `json:"getText"`
	GetList        bool   `json:"getList"`
	PaginationMode bool   `json:"paginationMode"`
	PaginationType string `json:"paginationType"`
	LimitMode      bool   `json:"limitMode"`
	CaptureStage   string `json:"captureStage"`
}

type ChooseAttributePayload struct {
	Value string `json:"value"`
}

// AttributeOptionsPayload asks the viewer to disambiguate between extractable
// attributes. CanBeClosed is always false: the dialog stays open until the
// viewer answers, so the recording never ends up half-committed.
type AttributeOptionsPayload struct {
	Options     []AttributeOption `json:"options"`
	CanBeClosed bool              `json:"canBeClosed"`
}

type AttributeOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type NotificationPayload struct {
	Message string `json:"message"`
}

type ListSelectorPayload struct {
	Selector string `json:"selector"`
}

type SetGetListPayload struct {
	GetList bool `json:"getList"`
}

type SetPaginationModePayload struct {
	Pagination bool `json:"pagination"`
}

// NewMessage marshals the payload into an envelope. Marshalling of the
// payload types defined here cannot fail.
func NewMessage(t MessageType, payload interface{}) Message {
	raw, _ := json.Marshal(payload)
	return Message{Type: t, Payload: raw}
}
