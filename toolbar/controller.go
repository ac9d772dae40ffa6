package toolbar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"blog_ai_editor/editor"
	"blog_ai_editor/markup"
	"blog_ai_editor/transform"
)

var (
	ErrBusy          = errors.New("toolbar: an action is already running")
	ErrInvalidState  = errors.New("toolbar: not allowed in the current state")
	ErrUnknownAction = errors.New("toolbar: unknown action")
	ErrInvalidChoice = errors.New("toolbar: no such result")
	ErrClosed        = errors.New("toolbar: controller closed")
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 60 * time.Second

// State is the toolbar's position in its flow.
type State int

const (
	StateIdle State = iota
	StateMenuOpen
	StateAwaitingTopic
	StateCalling
	StatePresentingResults
)

func (s State) String() string {
	switch s {
	case StateMenuOpen:
		return "menu-open"
	case StateAwaitingTopic:
		return "awaiting-topic"
	case StateCalling:
		return "calling"
	case StatePresentingResults:
		return "presenting-results"
	default:
		return "idle"
	}
}

// Outcome tells the host how a call ended.
type Outcome int

const (
	OutcomeNone Outcome = iota
	// OutcomeRejected means a precondition did not hold; a warning was shown.
	OutcomeRejected
	// OutcomeAwaitingTopic means the topic prompt is open.
	OutcomeAwaitingTopic
	// OutcomeApplied means the document or a host field was updated.
	OutcomeApplied
	// OutcomeCopied means a value went to the clipboard.
	OutcomeCopied
	// OutcomePresenting means results wait for the user's choice.
	OutcomePresenting
	// OutcomeFailed means an error was shown and nothing changed.
	OutcomeFailed
	// OutcomeDiscarded means the result arrived after teardown and was dropped.
	OutcomeDiscarded
	// OutcomeDismissed means the results panel was closed without a choice.
	OutcomeDismissed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "none"
	case OutcomeRejected:
		return "rejected"
	case OutcomeAwaitingTopic:
		return "awaiting-topic"
	case OutcomeApplied:
		return "applied"
	case OutcomeCopied:
		return "copied"
	case OutcomePresenting:
		return "presenting"
	case OutcomeFailed:
		return "failed"
	case OutcomeDiscarded:
		return "discarded"
	case OutcomeDismissed:
		return "dismissed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Transformer performs one remote transformation. *transform.Client
// implements it.
type Transformer interface {
	Transform(ctx context.Context, req transform.Request) (json.RawMessage, error)
}

// Metadata is the host's view of the post being edited.
type Metadata struct {
	Title    string
	Category string
}

// PendingAction is a topic-driven action waiting for its topic.
type PendingAction struct {
	Action transform.ActionID
	Topic  string
}

// Results holds choice results while the panel is open.
type Results struct {
	Action  transform.ActionID
	Titles  []string
	Tags    []string
	Excerpt string
}

// Options wires a Controller to its collaborators.
type Options struct {
	Transformer Transformer
	Notifier    Notifier
	Clipboard   Clipboard
	Hooks       Hooks
	// Metadata is read right before each request.
	Metadata func() Metadata
	Audience string
	Language string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Controller is the AI toolbar state machine. Only one action runs at a time;
// host calls made while it runs fail with ErrBusy and send nothing.
type Controller struct {
	doc         *editor.Document
	selection   *editor.SelectionTracker
	transformer Transformer
	notifier    Notifier
	clipboard   Clipboard
	hooks       Hooks
	metadata    func() Metadata
	audience    string
	language    string
	timeout     time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	state   State
	busy    bool
	closed  bool
	pending *PendingAction
	results *Results
}

// NewController builds a controller over a mounted document.
func NewController(doc *editor.Document, selection *editor.SelectionTracker, opts Options) (*Controller, error) {
	if doc == nil || selection == nil {
		return nil, errors.New("toolbar: document and selection tracker are required")
	}
	if opts.Transformer == nil {
		return nil, errors.New("toolbar: transformer is required")
	}
	c := &Controller{
		doc:         doc,
		selection:   selection,
		transformer: opts.Transformer,
		notifier:    opts.Notifier,
		clipboard:   opts.Clipboard,
		hooks:       opts.Hooks,
		metadata:    opts.Metadata,
		audience:    opts.Audience,
		language:    opts.Language,
		timeout:     opts.Timeout,
		logger:      opts.Logger,
	}
	if c.notifier == nil {
		c.notifier = NotifierFunc(func(Level, string) {})
	}
	if c.clipboard == nil {
		c.clipboard = SystemClipboard{}
	}
	if c.metadata == nil {
		c.metadata = func() Metadata { return Metadata{} }
	}
	if c.audience == "" {
		c.audience = transform.DefaultAudience
	}
	if c.language == "" {
		c.language = transform.DefaultLanguage
	}
	if c.timeout == 0 {
		c.timeout = DefaultTimeout
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	c.logger = c.logger.Named("toolbar")
	return c, nil
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a remote call is in flight. The menu trigger should be
// disabled while it is.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Pending returns the action waiting for a topic, if any.
func (c *Controller) Pending() (PendingAction, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return PendingAction{}, false
	}
	return *c.pending, true
}

// Results returns the results being presented, if any.
func (c *Controller) Results() (Results, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.results == nil {
		return Results{}, false
	}
	r := *c.results
	r.Titles = append([]string(nil), r.Titles...)
	r.Tags = append([]string(nil), r.Tags...)
	return r, true
}

// Enabled reports whether an action's precondition currently holds.
func (c *Controller) Enabled(id transform.ActionID) bool {
	a, ok := Lookup(id)
	if !ok {
		return false
	}
	switch a.Precondition {
	case RequiresSelection:
		return c.selection.Text() != ""
	case RequiresDocumentContent:
		return markup.HasContent(c.doc.Markup())
	default:
		return true
	}
}

// OpenMenu shows the action menu.
func (c *Controller) OpenMenu() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(); err != nil {
		return err
	}
	if c.state != StateIdle && c.state != StateMenuOpen {
		return ErrInvalidState
	}
	c.setStateLocked(StateMenuOpen)
	return nil
}

// CloseMenu hides the menu without picking anything.
func (c *Controller) CloseMenu() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(); err != nil {
		return err
	}
	if c.state != StateMenuOpen {
		return ErrInvalidState
	}
	c.setStateLocked(StateIdle)
	return nil
}

// Pick runs the chosen menu action. Selection and document content are read
// at this moment, not from any earlier snapshot. For topic actions it only
// opens the topic prompt; otherwise it blocks until the remote call is done.
func (c *Controller) Pick(ctx context.Context, id transform.ActionID) (Outcome, error) {
	action, ok := Lookup(id)
	if !ok {
		return OutcomeNone, fmt.Errorf("%w: %s", ErrUnknownAction, id)
	}

	c.mu.Lock()
	if err := c.checkLocked(); err != nil {
		c.mu.Unlock()
		return OutcomeNone, err
	}
	if c.state != StateMenuOpen {
		c.mu.Unlock()
		return OutcomeNone, ErrInvalidState
	}

	var input string
	switch action.Precondition {
	case RequiresTopic:
		c.pending = &PendingAction{Action: id}
		c.setStateLocked(StateAwaitingTopic)
		c.mu.Unlock()
		return OutcomeAwaitingTopic, nil

	case RequiresSelection:
		input = c.selection.Text()
		if input == "" {
			return c.rejectLocked(action, msgNeedSelection), nil
		}

	case RequiresDocumentContent:
		input = c.doc.Markup()
		if !markup.HasContent(input) {
			return c.rejectLocked(action, msgNeedContent), nil
		}
	}

	c.beginCallLocked()
	c.mu.Unlock()
	return c.call(ctx, action, input), nil
}

// SetTopic records what the user typed in the topic prompt.
func (c *Controller) SetTopic(topic string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(); err != nil {
		return err
	}
	if c.state != StateAwaitingTopic {
		return ErrInvalidState
	}
	c.pending.Topic = topic
	return nil
}

// CancelTopic closes the topic prompt and forgets the pending action.
func (c *Controller) CancelTopic() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(); err != nil {
		return err
	}
	if c.state != StateAwaitingTopic {
		return ErrInvalidState
	}
	c.pending = nil
	c.setStateLocked(StateIdle)
	return nil
}

// SubmitTopic runs the pending action with the entered topic. An empty topic
// keeps the prompt open and shows a warning.
func (c *Controller) SubmitTopic(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if err := c.checkLocked(); err != nil {
		c.mu.Unlock()
		return OutcomeNone, err
	}
	if c.state != StateAwaitingTopic {
		c.mu.Unlock()
		return OutcomeNone, ErrInvalidState
	}
	topic := strings.TrimSpace(c.pending.Topic)
	if topic == "" {
		c.mu.Unlock()
		c.notifier.Notify(LevelWarning, msgNeedTopic)
		return OutcomeRejected, nil
	}
	action, _ := Lookup(c.pending.Action)
	c.pending = nil
	c.beginCallLocked()
	c.mu.Unlock()
	return c.call(ctx, action, topic), nil
}

// SelectTitle applies one of the proposed titles.
func (c *Controller) SelectTitle(i int) (Outcome, error) {
	c.mu.Lock()
	r, err := c.resultsLocked(transform.GenerateTitle)
	if err != nil {
		c.mu.Unlock()
		return OutcomeNone, err
	}
	if i < 0 || i >= len(r.Titles) {
		c.mu.Unlock()
		return OutcomeNone, fmt.Errorf("%w: title %d", ErrInvalidChoice, i)
	}
	title := r.Titles[i]
	c.finishResultsLocked()
	c.mu.Unlock()

	if c.hooks.AcceptTitle != nil {
		c.hooks.AcceptTitle(title)
		c.notifier.Notify(LevelSuccess, msgTitleApplied)
		return OutcomeApplied, nil
	}
	return c.copy(title, msgTitleCopied), nil
}

// ConfirmTags applies the whole proposed tag set.
func (c *Controller) ConfirmTags() (Outcome, error) {
	c.mu.Lock()
	r, err := c.resultsLocked(transform.SuggestTags)
	if err != nil {
		c.mu.Unlock()
		return OutcomeNone, err
	}
	tags := append([]string(nil), r.Tags...)
	c.finishResultsLocked()
	c.mu.Unlock()

	if c.hooks.AcceptTags != nil {
		c.hooks.AcceptTags(tags)
		c.notifier.Notify(LevelSuccess, msgTagsApplied)
		return OutcomeApplied, nil
	}
	return c.copy(strings.Join(tags, ", "), msgTagsCopied), nil
}

// CopyTag copies a single proposed tag. The panel stays open so further tags
// can be copied.
func (c *Controller) CopyTag(i int) (Outcome, error) {
	c.mu.Lock()
	r, err := c.resultsLocked(transform.SuggestTags)
	if err != nil {
		c.mu.Unlock()
		return OutcomeNone, err
	}
	if i < 0 || i >= len(r.Tags) {
		c.mu.Unlock()
		return OutcomeNone, fmt.Errorf("%w: tag %d", ErrInvalidChoice, i)
	}
	tag := r.Tags[i]
	c.mu.Unlock()
	return c.copy(tag, fmt.Sprintf(msgTagCopied, tag)), nil
}

// AcceptExcerpt applies the proposed excerpt.
func (c *Controller) AcceptExcerpt() (Outcome, error) {
	c.mu.Lock()
	r, err := c.resultsLocked(transform.GenerateExcerpt)
	if err != nil {
		c.mu.Unlock()
		return OutcomeNone, err
	}
	excerpt := r.Excerpt
	c.finishResultsLocked()
	c.mu.Unlock()

	if c.hooks.AcceptExcerpt != nil {
		c.hooks.AcceptExcerpt(excerpt)
		c.notifier.Notify(LevelSuccess, msgExcerptApplied)
		return OutcomeApplied, nil
	}
	return c.copy(excerpt, msgExcerptCopied), nil
}

// Dismiss closes the results panel without applying anything.
func (c *Controller) Dismiss() (Outcome, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkLocked(); err != nil {
		return OutcomeNone, err
	}
	if c.state != StatePresentingResults {
		return OutcomeNone, ErrInvalidState
	}
	c.finishResultsLocked()
	return OutcomeDismissed, nil
}

// Close detaches the controller from its host. A call still in flight is
// allowed to finish but its result is dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.pending = nil
	c.results = nil
}

func (c *Controller) checkLocked() error {
	if c.closed {
		return ErrClosed
	}
	if c.busy {
		return ErrBusy
	}
	return nil
}

func (c *Controller) setStateLocked(s State) {
	if c.state != s {
		c.logger.Debug("state change", zap.Stringer("from", c.state), zap.Stringer("to", s))
	}
	c.state = s
}

func (c *Controller) rejectLocked(action Action, msg string) Outcome {
	c.setStateLocked(StateIdle)
	c.mu.Unlock()
	c.logger.Debug("action rejected",
		zap.String("action", string(action.ID)), zap.Stringer("precondition", action.Precondition))
	c.notifier.Notify(LevelWarning, msg)
	return OutcomeRejected
}

func (c *Controller) beginCallLocked() {
	c.busy = true
	c.setStateLocked(StateCalling)
}

func (c *Controller) endCall(next State) (closed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false
	if c.closed {
		return true
	}
	c.setStateLocked(next)
	return false
}

func (c *Controller) resultsLocked(action transform.ActionID) (*Results, error) {
	if err := c.checkLocked(); err != nil {
		return nil, err
	}
	if c.state != StatePresentingResults || c.results == nil || c.results.Action != action {
		return nil, ErrInvalidState
	}
	return c.results, nil
}

func (c *Controller) finishResultsLocked() {
	c.results = nil
	c.setStateLocked(StateIdle)
}

// call performs the remote request and routes its result. The controller is
// busy for the whole call, including the document mutation.
func (c *Controller) call(ctx context.Context, action Action, input string) Outcome {
	meta := c.metadata()
	req := transform.Request{
		Action: action.ID,
		Input:  input,
		Context: transform.Context{
			Title:          meta.Title,
			Category:       meta.Category,
			TargetAudience: c.audience,
			Language:       c.language,
		},
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	start := time.Now()
	raw, err := c.transformer.Transform(callCtx, req)
	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
	cancel()

	var result transform.Result
	if err == nil {
		result, err = interpret(action.ID, raw)
	}
	log := c.logger.With(zap.String("action", string(action.ID)), zap.Duration("elapsed", time.Since(start)))

	if err != nil {
		if c.endCall(StateIdle) {
			log.Debug("dropping failure after close", zap.Error(err))
			return OutcomeDiscarded
		}
		log.Warn("action failed", zap.Error(err))
		c.notifier.Notify(LevelError, failureMessage(err, timedOut))
		return OutcomeFailed
	}

	if action.Routing == RouteChoices {
		c.mu.Lock()
		if c.closed {
			c.busy = false
			c.mu.Unlock()
			log.Debug("dropping results after close")
			return OutcomeDiscarded
		}
		c.results = resultsFor(action.ID, result)
		c.busy = false
		c.setStateLocked(StatePresentingResults)
		c.mu.Unlock()
		return OutcomePresenting
	}

	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		c.endCall(StateIdle)
		log.Debug("dropping result after close")
		return OutcomeDiscarded
	}
	msg, err := c.apply(action, result)
	if c.endCall(StateIdle) || errors.Is(err, editor.ErrClosed) {
		log.Debug("dropping result after close")
		return OutcomeDiscarded
	}
	if err != nil {
		log.Warn("applying result failed", zap.Error(err))
		c.notifier.Notify(LevelError, failureMessage(err, false))
		return OutcomeFailed
	}
	log.Info("action applied")
	c.notifier.Notify(LevelSuccess, msg)
	return OutcomeApplied
}

// apply mutates the document with a validated result.
func (c *Controller) apply(action Action, result transform.Result) (string, error) {
	if action.Routing == RouteReplace {
		return msgReplaced, c.doc.ReplaceSelection(result.Text)
	}

	var fragment string
	if result.Kind == transform.KindOutline {
		fragment = markup.CompileOutline(result.Outline)
	} else {
		var err error
		fragment, err = markup.FromModelOutput(result.Text)
		if err != nil {
			return "", err
		}
	}
	if fragment == "" {
		return "", fmt.Errorf("%w: nothing to insert", transform.ErrMalformedResult)
	}
	return msgInserted, c.doc.InsertAtCursor(fragment)
}

func (c *Controller) copy(value, confirmation string) Outcome {
	if err := c.clipboard.WriteText(value); err != nil {
		c.logger.Warn("clipboard write failed", zap.Error(err))
		c.notifier.Notify(LevelError, msgClipboardFailed)
		return OutcomeFailed
	}
	c.notifier.Notify(LevelSuccess, confirmation)
	return OutcomeCopied
}

func resultsFor(action transform.ActionID, r transform.Result) *Results {
	res := &Results{Action: action}
	switch action {
	case transform.GenerateTitle:
		res.Titles = r.List
	case transform.SuggestTags:
		res.Tags = r.List
	default:
		res.Excerpt = r.Text
	}
	return res
}

// failureMessage picks the most specific message for the user.
func failureMessage(err error, timedOut bool) string {
	var f *transform.Failure
	switch {
	case timedOut, errors.Is(err, context.DeadlineExceeded):
		return msgTimeout
	case errors.As(err, &f) && f.Timeout:
		return msgTimeout
	case errors.Is(err, transform.ErrMalformedResult):
		return msgMalformed
	case errors.As(err, &f) && f.Message != "":
		return f.Message
	default:
		return msgGenericError
	}
}
