package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kode4food/intake/internal/store"
	"github.com/kode4food/intake/pkg/api"
	"github.com/kode4food/intake/pkg/events"
	"github.com/kode4food/intake/pkg/log"
)

type (
	// Controller orchestrates a single wizard instance. It owns an
	// exclusive context and guard set that are never shared with another
	// instance. Commands are serialized; a draft save requested while a
	// remote operation is in flight waits for that operation to settle
	Controller struct {
		mu        sync.Mutex
		flow      *Flow
		wctx      *Context
		guard     *Guard
		nav       *Navigator
		drafts    store.DraftStore
		archive   *store.Archive
		hub       *events.Hub
		runCtx    context.Context
		abort     context.CancelFunc
		id        api.WizardID
		draftID   api.DraftID
		createdAt time.Time
		status    api.WizardStatus
		started   bool
		reauth    bool
	}

	// Option configures optional controller collaborators
	Option func(*Controller)
)

// SlotWizardID is a reserved context slot carrying the wizard instance
// identifier. It is seeded at start and restore so steps can stamp their
// remote requests with the wizard they act for
const SlotWizardID = "wizard_id"

var (
	ErrWizardNotActive    = errors.New("wizard is not active")
	ErrWizardNotStarted   = errors.New("wizard has not been started")
	ErrAlreadyStarted     = errors.New("wizard already started")
	ErrReauthRequired     = errors.New("re-authentication required")
	ErrCancelNeedsConfirm = errors.New(
		"wizard has committed remote state; cancellation requires " +
			"confirmation",
	)
	ErrFinishNotReady = errors.New("final step has not been completed")
	ErrNoDraftStore   = errors.New("no draft store configured")
	ErrFlowMismatch   = errors.New("draft belongs to a different flow")
)

// WithDraftStore enables SaveDraft and draft cleanup on finish/cancel
func WithDraftStore(s store.DraftStore) Option {
	return func(c *Controller) { c.drafts = s }
}

// WithArchive enables archiving of the final snapshot on finish
func WithArchive(a *store.Archive) Option {
	return func(c *Controller) { c.archive = a }
}

// WithHub enables lifecycle event publication
func WithHub(h *events.Hub) Option {
	return func(c *Controller) { c.hub = h }
}

// NewController creates a controller for one wizard instance with a fresh
// context and guard set
func NewController(flow *Flow, opts ...Option) *Controller {
	runCtx, abort := context.WithCancel(context.Background())
	guard := NewGuard()
	c := &Controller{
		id:        api.NewWizardID(),
		flow:      flow,
		wctx:      NewContext(),
		guard:     guard,
		nav:       NewNavigator(flow, guard),
		status:    api.WizardActive,
		createdAt: time.Now(),
		runCtx:    runCtx,
		abort:     abort,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ID returns the wizard instance identifier
func (c *Controller) ID() api.WizardID {
	return c.id
}

// Flow returns the flow definition name
func (c *Controller) Flow() string {
	return c.flow.Name()
}

// Start activates the first step. It must be called exactly once before
// any navigation command
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}
	c.wctx.seed(SlotWizardID, string(c.id))
	if err := c.nav.Activate(c.wctx); err != nil {
		return err
	}
	c.started = true

	c.publish(api.EventTypeWizardStarted, "", nil)
	c.publish(api.EventTypeStepShown, c.nav.CurrentStep().ID(), nil)
	return nil
}

// View returns the externally visible state of the wizard
func (c *Controller) View() *api.WizardView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// UpdateData merges edited field values into the current step
func (c *Controller) UpdateData(data api.Args) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkNavigable(); err != nil {
		return err
	}
	c.nav.CurrentStep().Apply(data)
	return nil
}

// Next validates the current step, runs its guarded forward transition,
// and advances. On the last step a successful transition triggers the
// wizard-level finish instead of an index increment
func (c *Controller) Next(ctx context.Context) (*api.NextResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkNavigable(); err != nil {
		return nil, err
	}
	return c.goNext(ctx)
}

// Previous moves to the prior step without validation or remote calls
func (c *Controller) Previous() (*api.WizardView, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkNavigable(); err != nil {
		return nil, err
	}

	moved, err := c.nav.GoBack(c.wctx)
	if err != nil {
		return nil, err
	}
	if moved {
		c.publish(api.EventTypeStepShown, c.nav.CurrentStep().ID(), nil)
	}
	return c.viewLocked(), nil
}

// Finish completes the wizard. The final step must already be Completed;
// the wizard-level finish operation is idempotency-gated the same way a
// step's OnNext is
func (c *Controller) Finish(ctx context.Context) (*api.NextResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkNavigable(); err != nil {
		return nil, err
	}
	if !c.nav.AtLastStep() ||
		c.nav.Status(c.nav.Current()) != api.StepCompleted {
		return nil, ErrFinishNotReady
	}
	return c.finishLocked(ctx)
}

// Cancel discards the wizard. When any step has committed remote state,
// force must be set to confirm the discard
func (c *Controller) Cancel(ctx context.Context, force bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Terminal() {
		return ErrWizardNotActive
	}
	if c.guard.AnyCommitted() && !force {
		return ErrCancelNeedsConfirm
	}

	c.setStatus(api.WizardCancelled)

	if c.drafts != nil && c.draftID != "" {
		if err := c.drafts.Delete(ctx, c.draftID); err != nil {
			slog.Warn("Failed to delete draft on cancel",
				log.WizardID(c.id),
				log.DraftID(c.draftID),
				log.Error(err))
		}
	}

	// Destroy instance state; a late remote response can never land here
	c.wctx.Reset()
	c.guard.ResetAll()

	c.publish(api.EventTypeWizardCancelled, "", nil)
	slog.Info("Wizard cancelled", log.WizardID(c.id))
	return nil
}

// Abort cancels any in-flight remote operation without the confirmation
// flow; used on shutdown. The wizard remains resumable from its last draft
func (c *Controller) Abort() {
	c.abort()
}

// Reauthenticate clears the auth halt after the session re-authenticates.
// The halted step may then be retried; its guard is unaffected since no
// commit occurred
func (c *Controller) Reauthenticate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reauth = false
}

// SaveDraft persists the context snapshot, current index, and guard flags.
// Serialized with navigation commands, so a save requested during an
// in-flight remote operation waits until that operation settles
func (c *Controller) SaveDraft(
	ctx context.Context,
) (*api.SaveDraftResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.drafts == nil {
		return nil, ErrNoDraftStore
	}
	if !c.started {
		return nil, ErrWizardNotStarted
	}
	if c.status != api.WizardActive {
		return nil, ErrWizardNotActive
	}

	rec := &api.DraftRecord{
		ID:        c.draftID,
		WizardID:  c.id,
		Flow:      c.flow.Name(),
		Snapshot:  c.wctx.Snapshot(),
		StepIndex: c.nav.Current(),
		Guards:    c.guard.Flags(),
		CreatedAt: c.createdAt,
	}

	id, err := c.drafts.Save(ctx, rec)
	if err != nil {
		return nil, err
	}
	c.draftID = id

	c.publish(api.EventTypeDraftSaved, "", &api.DraftSavedEvent{
		DraftID:   id,
		StepIndex: rec.StepIndex,
	})
	slog.Info("Draft saved",
		log.WizardID(c.id),
		log.DraftID(id),
		slog.Int("step_index", rec.StepIndex))

	return &api.SaveDraftResponse{
		DraftID:   id,
		StepIndex: rec.StepIndex,
	}, nil
}

// RestoreDraft loads a saved draft into a freshly constructed controller:
// context and guard flags are restored and the navigator jumps straight to
// the saved index. Validate and OnNext are never re-run for steps already
// completed, so resuming cannot re-trigger side effects
func (c *Controller) RestoreDraft(rec *api.DraftRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return ErrAlreadyStarted
	}
	if rec.Flow != c.flow.Name() {
		return ErrFlowMismatch
	}

	if rec.WizardID != "" {
		c.id = rec.WizardID
	}
	c.draftID = rec.ID
	if !rec.CreatedAt.IsZero() {
		c.createdAt = rec.CreatedAt
	}
	c.wctx.Restore(rec.Snapshot)
	c.wctx.seed(SlotWizardID, string(c.id))
	c.guard.Restore(rec.Guards)

	if err := c.nav.JumpTo(rec.StepIndex, c.wctx); err != nil {
		return err
	}
	c.started = true

	c.publish(api.EventTypeDraftLoaded, "", nil)
	c.publish(api.EventTypeStepShown, c.nav.CurrentStep().ID(), nil)
	slog.Info("Draft restored",
		log.WizardID(c.id),
		log.DraftID(rec.ID),
		slog.Int("step_index", rec.StepIndex))
	return nil
}

func (c *Controller) goNext(ctx context.Context) (*api.NextResponse, error) {
	fromStep := c.nav.CurrentStep()
	cmdCtx, release := c.commandContext(ctx)
	defer release()

	res, err := c.nav.GoNext(cmdCtx, c.wctx)
	if err != nil {
		return nil, err
	}

	switch {
	case res.Validation != nil:
		c.publish(api.EventTypeValidationFailed,
			c.nav.CurrentStep().ID(),
			&api.ValidationFailedEvent{Errors: res.Validation})
		return &api.NextResponse{
			Status:     api.NextInvalid,
			StepIndex:  c.nav.Current(),
			Validation: res.Validation,
		}, nil

	case res.StepResult != nil:
		return c.handleStepFailure(res.StepResult), nil

	case res.AtEnd:
		if res.Committed {
			c.publishCommitted(fromStep)
		}
		return c.finishLocked(ctx)

	default:
		if res.Committed {
			c.publishCommitted(fromStep)
		}
		c.publish(api.EventTypeStepShown, c.nav.CurrentStep().ID(), nil)
		return &api.NextResponse{
			Status:    api.NextAdvanced,
			StepIndex: c.nav.Current(),
		}, nil
	}
}

func (c *Controller) finishLocked(
	ctx context.Context,
) (*api.NextResponse, error) {
	if !c.guard.HasCommitted(api.FinishStepID) && c.flow.finish != nil {
		cmdCtx, release := c.commandContext(ctx)
		res := c.flow.finish(cmdCtx, c.wctx)
		release()
		switch res.Outcome {
		case api.OutcomeAdvance:
			c.guard.MarkCommitted(api.FinishStepID)
		case api.OutcomeRetry, api.OutcomeFatal:
			return c.handleStepFailure(&res), nil
		}
	}

	c.nav.CurrentStep().OnHide(c.wctx)
	c.setStatus(api.WizardFinished)

	if c.archive != nil {
		rec := &api.ArchiveRecord{
			WizardID:   c.id,
			Flow:       c.flow.Name(),
			Snapshot:   c.wctx.Snapshot(),
			FinishedAt: time.Now(),
		}
		if err := c.archive.Put(ctx, rec); err != nil {
			slog.Warn("Failed to archive finished wizard",
				log.WizardID(c.id),
				log.Error(err))
		}
	}

	if c.drafts != nil && c.draftID != "" {
		if err := c.drafts.Delete(ctx, c.draftID); err != nil {
			slog.Warn("Failed to delete draft on finish",
				log.WizardID(c.id),
				log.DraftID(c.draftID),
				log.Error(err))
		}
	}

	// Wizard is complete; the context is destroyed
	c.wctx.Reset()

	c.publish(api.EventTypeWizardFinished, "", nil)
	slog.Info("Wizard finished", log.WizardID(c.id))

	return &api.NextResponse{
		Status:    api.NextFinished,
		StepIndex: c.nav.Current(),
	}, nil
}

// handleStepFailure maps a retry or fatal outcome onto the wizard. The
// index and guard are unchanged in every case; auth failures additionally
// halt navigation, and fatal failures terminate the wizard
func (c *Controller) handleStepFailure(
	res *api.StepResult,
) *api.NextResponse {
	stepID := c.nav.CurrentStep().ID()

	if res.Failure != nil {
		c.publish(api.EventTypeStepFailed, stepID, &api.StepFailedEvent{
			Failure: res.Failure,
		})
		slog.Warn("Step transition failed",
			log.WizardID(c.id),
			log.StepID(stepID),
			log.Category(res.Failure.Category),
			log.ErrorString(res.Failure.Message))

		if res.Failure.RequiresReauth() {
			c.reauth = true
		}
	} else {
		c.publish(api.EventTypeValidationFailed, stepID,
			&api.ValidationFailedEvent{Errors: res.Errors})
	}

	if res.Outcome == api.OutcomeFatal {
		c.setStatus(api.WizardFailed)
		c.publish(api.EventTypeWizardFailed, stepID, nil)
		return &api.NextResponse{
			Status:    api.NextFatal,
			StepIndex: c.nav.Current(),
			Failure:   res.Failure,
		}
	}

	return &api.NextResponse{
		Status:     api.NextRetry,
		StepIndex:  c.nav.Current(),
		Validation: res.Errors,
		Failure:    res.Failure,
	}
}

func (c *Controller) checkNavigable() error {
	if !c.started {
		return ErrWizardNotStarted
	}
	if c.status != api.WizardActive {
		return ErrWizardNotActive
	}
	if c.reauth {
		return ErrReauthRequired
	}
	return nil
}

// commandContext ties a command's context to the instance lifetime so an
// abort interrupts any in-flight remote call. The caller must invoke the
// returned release func once the command settles
func (c *Controller) commandContext(
	ctx context.Context,
) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return c.runCtx, func() {}
	}
	merged, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.runCtx, cancel)
	return merged, func() {
		stop()
		cancel()
	}
}

func (c *Controller) setStatus(to api.WizardStatus) {
	if !wizardTransitions.CanTransition(c.status, to) {
		slog.Error("Invalid wizard status transition",
			log.WizardID(c.id),
			slog.String("from", string(c.status)),
			slog.String("to", string(to)))
		return
	}
	c.status = to

	// A terminal wizard can never issue another remote call
	if to.Terminal() {
		c.abort()
	}
}

func (c *Controller) publishCommitted(s Step) {
	c.publish(api.EventTypeStepCommitted, s.ID(), &api.StepCommittedEvent{
		Identifiers: s.CollectData(),
	})
}

func (c *Controller) publish(typ api.EventType, stepID api.StepID, data any) {
	if c.hub == nil {
		return
	}
	c.hub.Publish(typ, c.id, stepID, data)
}

func (c *Controller) viewLocked() *api.WizardView {
	return &api.WizardView{
		ID:        c.id,
		Flow:      c.flow.Name(),
		Status:    c.status,
		StepIndex: c.nav.Current(),
		Steps:     c.nav.States(),
		Guards:    c.guard.Flags(),
		CanGoBack: c.nav.CanGoBack(),
	}
}
