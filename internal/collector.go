package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// PageSource captures the current state of the chat client's page
type PageSource interface {
	Snapshot(ctx context.Context) (*Page, error)
}

// ScrollResult describes one pagination step
type ScrollResult struct {
	Before float64
	After  float64
	AtEnd  bool
}

// Moved returns how far the scroll position changed
func (r ScrollResult) Moved() float64 {
	return r.After - r.Before
}

// Paginator advances the thread panel's scroll position. It must never change
// page content.
type Paginator interface {
	Advance(ctx context.Context, step, floor int) (ScrollResult, error)
}

// Waiter suspends between pagination and the next scan
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) error
}

// ElementLocator finds message elements in a page
type ElementLocator interface {
	FindMessageElements(p *Page, verbose bool) []*goquery.Selection
}

// MessageTranscriber turns one element into a Message, or nil to skip it
type MessageTranscriber interface {
	ExtractSingleMessage(p *Page, el *goquery.Selection) *Message
}

// StreamProcessor cleans the accumulated message stream
type StreamProcessor interface {
	ProcessMessages(raw []Message) []Message
}

// SleepWaiter waits on a timer and returns early when ctx is done
type SleepWaiter struct{}

// Wait blocks for d or until ctx is done
func (SleepWaiter) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Outcome records why a harvest stopped
type Outcome string

const (
	OutcomeSettled           Outcome = "settled"
	OutcomeAttemptsExhausted Outcome = "attempts-exhausted"
	OutcomeCancelled         Outcome = "cancelled"
)

// HarvestResult is the processed output of one collection run
type HarvestResult struct {
	Messages []Message
	RawCount int
	Attempts int
	Outcome  Outcome
}

// Complete reports whether the thread stabilized before a bound was hit.
// Incomplete results are still valid partial transcripts.
func (r HarvestResult) Complete() bool {
	return r.Outcome == OutcomeSettled
}

// CollectionState is owned by a single Collect call
type CollectionState struct {
	Attempts    int
	NoNewRounds int
	seen        *Deduplicator
	accumulated []Message
}

func newCollectionState() *CollectionState {
	return &CollectionState{seen: NewDeduplicator()}
}

// Accumulated returns the messages gathered so far in first-seen order
func (s *CollectionState) Accumulated() []Message {
	return s.accumulated
}

// RoundReport is passed to the round hook after every scan
type RoundReport struct {
	Attempt     int
	NewMessages int
	Total       int
	NoNewRounds int
	Err         error
}

// Collector drives scan and pagination rounds until the thread settles
type Collector struct {
	source      PageSource
	paginator   Paginator
	cfg         HarvestConfig
	waiter      Waiter
	locator     ElementLocator
	transcriber MessageTranscriber
	processor   StreamProcessor
	verbose     bool
	onRound     func(RoundReport)
}

// Option configures a Collector
type Option func(*Collector)

// WithWaiter replaces the default timer-based waiter
func WithWaiter(w Waiter) Option {
	return func(c *Collector) { c.waiter = w }
}

// WithLocator replaces the default element classifier
func WithLocator(l ElementLocator) Option {
	return func(c *Collector) { c.locator = l }
}

// WithTranscriber replaces the default rich text transcriber
func WithTranscriber(t MessageTranscriber) Option {
	return func(c *Collector) { c.transcriber = t }
}

// WithProcessor replaces the default message stream processor
func WithProcessor(p StreamProcessor) Option {
	return func(c *Collector) { c.processor = p }
}

// WithVerbose enables per-tier classification logging
func WithVerbose(verbose bool) Option {
	return func(c *Collector) { c.verbose = verbose }
}

// WithRoundHook registers fn to be called after every scan round
func WithRoundHook(fn func(RoundReport)) Option {
	return func(c *Collector) { c.onRound = fn }
}

// NewCollector creates a Collector. Zero fields of cfg take the defaults.
func NewCollector(source PageSource, paginator Paginator, cfg HarvestConfig, opts ...Option) *Collector {
	c := &Collector{
		source:      source,
		paginator:   paginator,
		cfg:         DefaultHarvestConfig().Merge(cfg),
		waiter:      SleepWaiter{},
		locator:     NewElementClassifier(),
		transcriber: NewRichTextTranscriber(),
		processor:   NewMessageStreamProcessor(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective collector configuration
func (c *Collector) Config() HarvestConfig {
	return c.cfg
}

// CollectCompleteThreadMessages runs Collect and returns only the messages
func (c *Collector) CollectCompleteThreadMessages(ctx context.Context) []Message {
	return c.Collect(ctx).Messages
}

// Collect scans the page, paginates, and rescans until no new messages have
// appeared for NoProgressThreshold consecutive rounds, MaxAttempts pagination
// steps have been made, or ctx is done. Failures inside a round are logged
// and counted as a round without progress. Whatever was accumulated is
// processed and returned in every case.
func (c *Collector) Collect(ctx context.Context) HarvestResult {
	state := newCollectionState()
	c.scanRound(ctx, state)

	outcome := OutcomeSettled
	for {
		if state.NoNewRounds >= c.cfg.NoProgressThreshold {
			LogDebug("Thread settled after %d rounds without new messages", state.NoNewRounds)
			break
		}
		if state.Attempts >= c.cfg.MaxAttempts {
			LogWarn("Stopped after %d pagination attempts, thread may be incomplete", state.Attempts)
			outcome = OutcomeAttemptsExhausted
			break
		}
		if ctx.Err() != nil {
			LogWarn("Harvest interrupted: %v", ctx.Err())
			outcome = OutcomeCancelled
			break
		}

		state.Attempts++
		if err := c.paginate(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			LogWarn("Pagination round %d failed: %v", state.Attempts, err)
			state.NoNewRounds++
			c.report(state, 0, err)
			continue
		}
		c.scanRound(ctx, state)
	}

	processed := c.processor.ProcessMessages(state.accumulated)
	LogInfo("Collected %d raw messages in %d attempts, %d after processing", len(state.accumulated), state.Attempts, len(processed))
	return HarvestResult{
		Messages: processed,
		RawCount: len(state.accumulated),
		Attempts: state.Attempts,
		Outcome:  outcome,
	}
}

// scanRound captures the page and appends unseen messages to state
func (c *Collector) scanRound(ctx context.Context, state *CollectionState) {
	added, err := c.scan(ctx, state)
	if err != nil {
		LogWarn("Scan failed: %v", err)
	}
	if added == 0 {
		state.NoNewRounds++
	} else {
		state.NoNewRounds = 0
	}
	c.report(state, added, err)
}

func (c *Collector) scan(ctx context.Context, state *CollectionState) (added int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panicked: %v", r)
		}
	}()

	page, err := c.source.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	for _, el := range c.locator.FindMessageElements(page, c.verbose) {
		msg := c.transcriber.ExtractSingleMessage(page, el)
		if msg == nil {
			continue
		}
		if state.seen.Add(ElementFingerprint(el, *msg)) {
			state.accumulated = append(state.accumulated, *msg)
			added++
		}
	}
	LogDebug("Scan found %d new messages (%d total)", added, len(state.accumulated))
	return added, nil
}

func (c *Collector) paginate(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pagination panicked: %v", r)
		}
	}()

	if c.paginator == nil {
		return errors.New("no paginator configured")
	}
	res, err := c.paginator.Advance(ctx, c.cfg.StepPX, c.cfg.MinProgressPX)
	if err != nil {
		return &PaginationError{Step: c.cfg.StepPX, Err: err}
	}
	if res.AtEnd {
		LogDebug("Scroller at end (%.0f -> %.0f)", res.Before, res.After)
	}
	return c.waiter.Wait(ctx, c.cfg.PaginationDelay())
}

func (c *Collector) report(state *CollectionState, added int, err error) {
	if c.onRound == nil {
		return
	}
	c.onRound(RoundReport{
		Attempt:     state.Attempts,
		NewMessages: added,
		Total:       len(state.accumulated),
		NoNewRounds: state.NoNewRounds,
		Err:         err,
	})
}

// Scan extracts and processes the messages visible in one snapshot of
// source, without paginating
func Scan(ctx context.Context, source PageSource, opts ...Option) ([]Message, error) {
	c := NewCollector(source, nil, HarvestConfig{}, opts...)
	state := newCollectionState()
	if _, err := c.scan(ctx, state); err != nil {
		return nil, err
	}
	return c.processor.ProcessMessages(state.accumulated), nil
}

// StaticSource serves a fixed page, such as a saved HTML file
type StaticSource struct {
	Page *Page
}

// Snapshot returns the fixed page
func (s StaticSource) Snapshot(ctx context.Context) (*Page, error) {
	if s.Page == nil {
		return nil, &SnapshotError{Op: "capture", Source: "static", Err: errors.New("no page loaded")}
	}
	return s.Page, nil
}

// WatchRescans calls fn once per burst of re-scan requests received on
// triggers, after the burst has been quiet for debounce. It returns nil when
// triggers is closed (flushing a pending request first) and ctx.Err() when
// ctx is done.
func WatchRescans(ctx context.Context, triggers <-chan struct{}, debounce time.Duration, fn func(context.Context)) error {
	var timer *time.Timer
	var fire <-chan time.Time
	stop := func() {
		if timer != nil {
			timer.Stop()
		}
	}
	defer stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-triggers:
			if !ok {
				if fire != nil {
					fn(ctx)
				}
				return nil
			}
			stop()
			timer = time.NewTimer(debounce)
			fire = timer.C
		case <-fire:
			fire = nil
			fn(ctx)
		}
	}
}
