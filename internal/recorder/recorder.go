package recorder

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gorilla/websocket"

	"scrapeflow/backend/internal/models"
	"scrapeflow/backend/internal/protocol"
	"scrapeflow/backend/internal/recording"
	"scrapeflow/backend/pkg/chrome"
)

type DeviceInfo struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	UserAgent string `json:"user_agent"`
}

// Options tunes the screencast and highlighter pumps.
type Options struct {
	Headless      bool
	FrameInterval time.Duration
	PollInterval  time.Duration
}

// Recorder drives one recording session: a remote Chrome with the injected
// highlighter script, the recording state machine, and the websocket to the
// viewer. It implements the machine's collaborator interfaces, so accepted
// candidates surface as highlight messages and finished steps accumulate
// until the session is saved.
type Recorder struct {
	ctx         context.Context
	cancel      context.CancelFunc
	isRecording bool
	mutex       sync.RWMutex

	wsConn  *websocket.Conn
	wsMutex sync.Mutex

	sessionID  string
	userID     string
	deviceInfo DeviceInfo
	opts       Options

	machine *recording.Machine
	modes   protocol.ModesPayload

	steps []models.ScrapeStep

	// pumpCancel stops the current candidate pump. It is always invoked
	// before a new pump starts, so candidate handling cannot double-fire.
	pumpCancel context.CancelFunc
}

func NewRecorder(sessionID, userID string, device DeviceInfo, opts Options) *Recorder {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = 500 * time.Millisecond
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 100 * time.Millisecond
	}
	r := &Recorder{
		sessionID:  sessionID,
		userID:     userID,
		deviceInfo: device,
		opts:       opts,
		steps:      make([]models.ScrapeStep, 0),
	}
	r.machine = recording.NewMachine(recording.Deps{
		Browser:  r,
		Overlay:  r,
		Dialog:   r,
		Steps:    r,
		Notifier: r,
		Store:    newSessionSelectorStore(sessionID),
	})
	return r
}

// StartRecording launches the remote browser, injects the highlighter script
// and starts the frame and candidate pumps.
func (r *Recorder) StartRecording(targetURL string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.isRecording {
		return fmt.Errorf("recording is already in progress")
	}

	chromePath := chrome.GetChromePath()
	if chromePath == "" {
		return fmt.Errorf("Chrome browser not found. Please install Google Chrome or Chromium")
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("force-device-scale-factor", "1"),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.UserAgent(r.deviceInfo.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	var ctxCancel context.CancelFunc
	r.ctx, ctxCancel = chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	r.cancel = func() {
		ctxCancel()
		allocCancel()
	}

	err := chromedp.Run(r.ctx,
		chromedp.EmulateViewport(int64(r.deviceInfo.Width), int64(r.deviceInfo.Height)),
		chromedp.Navigate(targetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(2*time.Second), // wait for dynamic content
		chromedp.Evaluate(getHighlighterScript(), nil),
	)

	if err != nil {
		r.cancel()
		return fmt.Errorf("failed to start recording: %w", err)
	}

	r.isRecording = true
	r.steps = make([]models.ScrapeStep, 0)

	r.machine.Restore()

	go r.frameLoop()

	pumpCtx, pumpCancel := context.WithCancel(r.ctx)
	r.pumpCancel = pumpCancel
	go r.candidateLoop(pumpCtx)

	return nil
}

func (r *Recorder) StopRecording() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if !r.isRecording {
		return fmt.Errorf("no recording in progress")
	}

	if r.pumpCancel != nil {
		r.pumpCancel()
		r.pumpCancel = nil
	}
	if r.cancel != nil {
		r.cancel()
	}

	r.isRecording = false
	return nil
}

func (r *Recorder) IsRecording() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.isRecording
}

func (r *Recorder) GetSteps() []models.ScrapeStep {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]models.ScrapeStep(nil), r.steps...)
}

func (r *Recorder) Session() recording.ListSession {
	return r.machine.Session()
}

func (r *Recorder) SetWebSocketConnection(conn *websocket.Conn) {
	r.wsMutex.Lock()
	defer r.wsMutex.Unlock()
	r.wsConn = conn
}

// Modes returns the current externally owned mode snapshot.
func (r *Recorder) Modes() protocol.ModesPayload {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.modes
}

// HandleMessage dispatches one viewer message into the state machine.
func (r *Recorder) HandleMessage(msg protocol.Message) {
	switch msg.Type {
	case protocol.MessageClick:
		var p protocol.ClickPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.Printf("invalid click payload: %v", err)
			return
		}
		r.machine.HandleClick(p.X, p.Y, r.Modes())
	case protocol.MessageCancel:
		r.machine.HandleCancel()
	case protocol.MessageModes:
		var p protocol.ModesPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.Printf("invalid modes payload: %v", err)
			return
		}
		r.setModes(p)
	case protocol.MessageChooseAttribute:
		var p protocol.ChooseAttributePayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			log.Printf("invalid attribute choice payload: %v", err)
			return
		}
		r.machine.ChooseAttribute(p.Value)
	default:
		log.Printf("unknown message type: %s", msg.Type)
	}
}

// setModes replaces the mode snapshot. Toggling list mode feeds the machine
// (turning it off resets the list session), and the candidate pump is
// re-derived so its handler closure never observes a stale snapshot.
func (r *Recorder) setModes(modes protocol.ModesPayload) {
	r.mutex.Lock()
	previous := r.modes
	r.modes = modes
	r.mutex.Unlock()

	if previous.GetList != modes.GetList {
		r.machine.SetGetList(modes.GetList)
	}
	r.restartCandidatePump()
}

// restartCandidatePump deregisters the previous candidate pump before
// starting a new one. Two live pumps would double-fire every downstream
// transition.
func (r *Recorder) restartCandidatePump() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.pumpCancel != nil {
		r.pumpCancel()
	}
	if r.ctx == nil {
		return
	}
	pumpCtx, cancel := context.WithCancel(r.ctx)
	r.pumpCancel = cancel
	go r.candidateLoop(pumpCtx)
}

// candidateLoop polls the injected script for the latest hovered candidate.
// The slot in the page is latest-wins, as is the machine's pending slot, so a
// slow poll cycle just skips intermediate hovers.
func (r *Recorder) candidateLoop(ctx context.Context) {
	ticker := time.NewTicker(r.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !r.IsRecording() {
				return
			}

			var candidate *protocol.Candidate
			err := chromedp.Run(r.ctx,
				chromedp.Evaluate(`window.__scrapeRecorder ? window.__scrapeRecorder.getCandidate() : null`, &candidate),
			)
			if err != nil {
				log.Printf("error polling candidate: %v", err)
				continue
			}
			if candidate == nil {
				continue
			}
			r.machine.HandleCandidate(*candidate, r.Modes())
		}
	}
}

// frameLoop captures screencast frames. Latest frame wins; a slow viewer
// simply sees fewer frames, nothing queues.
func (r *Recorder) frameLoop() {
	ticker := time.NewTicker(r.opts.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if !r.IsRecording() {
				return
			}

			var buf []byte
			if err := chromedp.Run(r.ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
				log.Printf("error capturing frame: %v", err)
				continue
			}
			r.send(protocol.MessageScreencast, protocol.ScreencastPayload{
				Image:  base64.StdEncoding.EncodeToString(buf),
				UserID: r.userID,
			})
		}
	}
}

func (r *Recorder) send(t protocol.MessageType, payload interface{}) {
	r.wsMutex.Lock()
	defer r.wsMutex.Unlock()

	if r.wsConn == nil {
		return
	}
	if err := r.wsConn.WriteJSON(protocol.NewMessage(t, payload)); err != nil {
		log.Printf("websocket write failed: %v", err)
	}
}

func (r *Recorder) evaluate(expr string) {
	if r.ctx == nil {
		return
	}
	if err := chromedp.Run(r.ctx, chromedp.Evaluate(expr, nil)); err != nil {
		log.Printf("remote evaluate failed: %v", err)
	}
}

// BrowserControl: mirror server-visible state into the injected script so the
// remote page filters future candidates.

func (r *Recorder) SetGetList(on bool) {
	r.evaluate(fmt.Sprintf(`window.__scrapeRecorder && window.__scrapeRecorder.setGetList(%t)`, on))
}

func (r *Recorder) SetListSelector(selector string) {
	encoded, _ := json.Marshal(selector)
	r.evaluate(fmt.Sprintf(`window.__scrapeRecorder && window.__scrapeRecorder.setListSelector(%s)`, encoded))
	r.send(protocol.MessageListSelector, protocol.ListSelectorPayload{Selector: selector})
}

func (r *Recorder) SetPaginationMode(on bool) {
	r.evaluate(fmt.Sprintf(`window.__scrapeRecorder && window.__scrapeRecorder.setPaginationMode(%t)`, on))
}

// Overlay: forward highlight state to the viewer.

func (r *Recorder) ShowHighlight(c protocol.Candidate) {
	r.send(protocol.MessageHighlight, c)
}

func (r *Recorder) ClearHighlight() {
	r.send(protocol.MessageClearHighlight, nil)
}

// Dialog: the attribute choice modal stays open until answered.

func (r *Recorder) RequestAttributeChoice(options []protocol.AttributeOption) {
	r.send(protocol.MessageAttributeOpts, protocol.AttributeOptionsPayload{
		Options:     options,
		CanBeClosed: false,
	})
}

func (r *Recorder) Notify(message string) {
	r.send(protocol.MessageNotification, protocol.NotificationPayload{Message: message})
}

// StepSink: accumulate recorded steps until the session is saved.

func (r *Recorder) AddTextStep(label, value string, meta recording.SelectorMeta) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.steps = append(r.steps, models.ScrapeStep{
		Type:      "text",
		Label:     label,
		Value:     value,
		Selector:  meta.Selector,
		Meta:      selectorMetaMap(meta),
		Timestamp: time.Now().UnixMilli(),
	})
}

func (r *Recorder) AddListStep(listSelector string, fields map[int64]recording.Field, listID int64, pagination recording.PaginationMeta) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	step := models.ScrapeStep{
		Type:         "list",
		ListSelector: listSelector,
		ListID:       listID,
		Fields:       fieldsMap(fields),
		Pagination: map[string]interface{}{
			"selector": pagination.Selector,
			"type":     pagination.Type,
		},
		Timestamp: time.Now().UnixMilli(),
	}

	// One list step per list session: growing the field template updates the
	// step in place instead of appending a near-duplicate.
	for i := len(r.steps) - 1; i >= 0; i-- {
		if r.steps[i].Type == "list" && r.steps[i].ListID == listID {
			r.steps[i] = step
			return
		}
	}
	r.steps = append(r.steps, step)
}

func (r *Recorder) AddPaginationStep(selector, kind string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.steps = append(r.steps, models.ScrapeStep{
		Type:     "pagination",
		Selector: selector,
		Pagination: map[string]interface{}{
			"selector": selector,
			"type":     kind,
		},
		Timestamp: time.Now().UnixMilli(),
	})
}

func selectorMetaMap(meta recording.SelectorMeta) map[string]interface{} {
	return map[string]interface{}{
		"selector":  meta.Selector,
		"tag":       meta.Tag,
		"shadow":    meta.Shadow,
		"attribute": meta.Attribute,
	}
}

func fieldsMap(fields map[int64]recording.Field) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for id, f := range fields {
		out[fmt.Sprintf("%d", id)] = f
	}
	return out
}
