// Package pipeline turns URL submissions into download jobs: it validates
// each link, resolves the mode and runs one job per URL concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"mediafetch/internal/downloader"
	"mediafetch/internal/logging"
	"mediafetch/internal/model"
	"mediafetch/internal/modestore"
	"mediafetch/internal/notify"
	"mediafetch/internal/util"
)

// Service submits jobs on behalf of one caller identity.
type Service struct {
	job    downloader.Options
	modes  *modestore.Store
	mode   model.Mode // explicit override; empty means consult the store
	userID string
	chatID string
	run    func(context.Context, model.Request, downloader.Options) model.Outcome
}

// Option configures a Service.
type Option func(*Service)

// WithJobOptions sets the options every job is started with.
func WithJobOptions(o downloader.Options) Option {
	return func(s *Service) {
		s.job = o
	}
}

// WithModeStore looks up the caller's saved mode when no explicit mode is set.
func WithModeStore(st *modestore.Store) Option {
	return func(s *Service) {
		s.modes = st
	}
}

// WithMode forces a mode for every submission.
func WithMode(m model.Mode) Option {
	return func(s *Service) {
		s.mode = m
	}
}

// WithIdentity sets the caller and conversation ids used for naming and
// mode lookup.
func WithIdentity(userID, chatID string) Option {
	return func(s *Service) {
		s.userID = userID
		s.chatID = chatID
	}
}

// WithRunner replaces the job runner (useful for testing).
func WithRunner(fn func(context.Context, model.Request, downloader.Options) model.Outcome) Option {
	return func(s *Service) {
		s.run = fn
	}
}

// NewService constructs a Service with the provided options.
func NewService(opts ...Option) *Service {
	s := &Service{run: downloader.Run}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Mode returns the mode the next submission will use.
func (s *Service) Mode() model.Mode {
	if s.mode.Valid() {
		return s.mode
	}
	if s.modes != nil {
		return s.modes.Get(s.userID)
	}
	return model.DefaultMode
}

// Submit runs a single job to completion. Invalid links are reported to
// the notifier and never reach the downloader.
func (s *Service) Submit(ctx context.Context, rawURL string) model.Outcome {
	u, err := util.ValidateURL(rawURL)
	if err != nil {
		logging.FromContext(ctx).Warn("rejected url", "url", rawURL, "err", err)
		note := notify.Safe{Inner: s.job.Notifier}
		note.SendInitial(ctx, fmt.Sprintf("❌ Invalid link: %v", err))
		return model.Outcome{State: model.StateFailed, ExitCode: -1, Err: err}
	}

	req := model.Request{
		URL:    u.String(),
		Mode:   s.Mode(),
		UserID: s.userID,
		ChatID: s.chatID,
	}
	logging.FromContext(ctx).Debug("submitting", "url", req.URL, "platform", util.DetectPlatform(u).Label(), "mode", req.Mode)
	return s.run(ctx, req, s.job)
}

// RunAll starts one job per URL and waits for all of them. Outcomes are
// returned in input order.
func (s *Service) RunAll(ctx context.Context, urls []string) []model.Outcome {
	out := make([]model.Outcome, len(urls))
	var wg sync.WaitGroup
	for i, raw := range urls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out[i] = s.Submit(ctx, raw)
		}()
	}
	wg.Wait()
	return out
}

// Err joins the errors of all unsuccessful outcomes.
func Err(outcomes []model.Outcome) error {
	var errs []error
	for _, o := range outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}
