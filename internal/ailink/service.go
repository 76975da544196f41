package ailink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/industrylens/industrylens/internal/ailink/content"
	"github.com/industrylens/industrylens/internal/ailink/driver"
	"github.com/industrylens/industrylens/internal/ailink/prompt"
	"github.com/industrylens/industrylens/internal/ailink/usage"
)

// Invocation pairs a prompt entry with the variables bound into it.
type Invocation struct {
	Entry *prompt.Entry
	Vars  map[string]string
}

// Execution is the outcome of a single call.
type Execution struct {
	Text         string        `json:"text"`
	FinishReason string        `json:"finish_reason,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	Usage        usage.Summary `json:"usage"`
}

// BatchExecution is the outcome of a batch. Results[i] is the raw text for
// the i-th invocation.
type BatchExecution struct {
	Results []string      `json:"results"`
	Elapsed time.Duration `json:"elapsed"`
	Usage   usage.Summary `json:"usage"`
}

// CallEvent describes one completed provider call.
type CallEvent struct {
	Slug    string
	Model   string
	Elapsed time.Duration
	Usage   *driver.Usage
	Err     error
}

// Option configures a Service.
type Option func(*Service)

// WithPricing sets the per-model prices used for cost totals.
func WithPricing(p usage.Pricing) Option {
	return func(s *Service) { s.pricing = p }
}

// WithEstimator fills usage for responses that omit it.
func WithEstimator(e usage.Estimator) Option {
	return func(s *Service) { s.estimator = e }
}

// WithObserver registers a callback invoked after every provider call,
// from the goroutine that made it.
func WithObserver(fn func(CallEvent)) Option {
	return func(s *Service) { s.observer = fn }
}

// Service renders prompts and sends them to a driver under a fixed session.
// It does not retry, throttle or cache.
type Service struct {
	driver    driver.Driver
	session   Session
	pricing   usage.Pricing
	estimator usage.Estimator
	observer  func(CallEvent)
}

// NewService validates session and binds it to drv.
func NewService(drv driver.Driver, session Session, opts ...Option) (*Service, error) {
	if drv == nil {
		return nil, errors.New("ailink driver not configured")
	}
	if session.Dispatch == "" {
		session.Dispatch = DispatchConcurrent
	}
	if err := session.Validate(); err != nil {
		return nil, err
	}
	s := &Service{driver: drv, session: session}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Session returns the parameters the service was built with.
func (s *Service) Session() Session {
	return s.session
}

// Execute renders one invocation and returns the provider's raw text.
func (s *Service) Execute(ctx context.Context, inv Invocation) (*Execution, error) {
	start := time.Now()
	meter := usage.NewMeter(s.pricing)

	resp, err := s.call(ctx, inv, meter)
	if err != nil {
		return nil, err
	}
	return &Execution{
		Text:         resp.Text(),
		FinishReason: resp.FinishReason,
		Elapsed:      time.Since(start),
		Usage:        meter.Summary(),
	}, nil
}

// ExecuteBatch runs every invocation and returns the raw texts in input
// order. The first failure aborts the batch; no partial results are
// returned.
func (s *Service) ExecuteBatch(ctx context.Context, invs []Invocation) (*BatchExecution, error) {
	start := time.Now()
	meter := usage.NewMeter(s.pricing)
	results := make([]string, len(invs))

	switch s.session.Dispatch {
	case DispatchSequential:
		for i, inv := range invs {
			resp, err := s.call(ctx, inv, meter)
			if err != nil {
				return nil, err
			}
			results[i] = resp.Text()
		}
	default:
		g, gctx := errgroup.WithContext(ctx)
		for i, inv := range invs {
			g.Go(func() error {
				resp, err := s.call(gctx, inv, meter)
				if err != nil {
					return err
				}
				results[i] = resp.Text()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	return &BatchExecution{
		Results: results,
		Elapsed: time.Since(start),
		Usage:   meter.Summary(),
	}, nil
}

func (s *Service) call(ctx context.Context, inv Invocation, meter *usage.Meter) (*driver.Response, error) {
	if inv.Entry == nil {
		return nil, errors.New("invocation has no prompt")
	}
	slug := inv.Entry.Slug

	rendered, err := inv.Entry.Template.Render(inv.Vars)
	if err != nil {
		return nil, fmt.Errorf("render prompt %s: %w", slug, err)
	}

	messages := make([]content.Message, 0, 2)
	if rendered.System != "" {
		messages = append(messages, content.TextMessage(content.RoleSystem, rendered.System))
	}
	messages = append(messages, content.TextMessage(content.RoleUser, rendered.User))

	temperature := s.session.Temperature
	maxTokens := s.session.MaxTokens
	req := &driver.Request{
		Model:       s.session.Model,
		Messages:    messages,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		PromptSlug:  slug,
	}

	start := time.Now()
	resp, err := s.driver.Complete(ctx, req)
	if err != nil {
		s.observe(CallEvent{Slug: slug, Model: req.Model, Elapsed: time.Since(start), Err: err})
		return nil, fmt.Errorf("prompt %s: %w", slug, err)
	}
	if resp == nil {
		resp = &driver.Response{}
	}

	used := resp.Usage
	if used == nil && s.estimator != nil {
		if estimated, estErr := s.estimator.Estimate(req.Model, rendered.System+"\n"+rendered.User, resp.Text()); estErr == nil {
			used = estimated
		}
	}
	meter.Record(req.Model, used)
	s.observe(CallEvent{Slug: slug, Model: req.Model, Elapsed: time.Since(start), Usage: used})

	return resp, nil
}

func (s *Service) observe(ev CallEvent) {
	if s.observer != nil {
		s.observer(ev)
	}
}
