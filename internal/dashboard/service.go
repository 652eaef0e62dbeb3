package dashboard

import (
	"context"
	"log/slog"
	"time"

	"dayboard/internal/calendar"
	"dayboard/internal/gmail"
	"dayboard/internal/model"

	"golang.org/x/sync/errgroup"
	calendarv3 "google.golang.org/api/calendar/v3"
	gmailv1 "google.golang.org/api/gmail/v1"
)

// TokenResolver hands out a valid provider access token for a user.
type TokenResolver interface {
	AccessToken(ctx context.Context, userID string, provider model.Provider) (string, error)
}

// ServiceFactory builds provider services bound to an access token.
type ServiceFactory interface {
	Gmail(ctx context.Context, accessToken string) (*gmailv1.Service, error)
	Calendar(ctx context.Context, accessToken string) (*calendarv3.Service, error)
}

// Service serves the request-scoped dashboard operations for one user at a
// time. Token errors are returned as is so callers can map them; provider
// failures degrade to empty results inside the fetchers.
type Service struct {
	tokens  TokenResolver
	clients ServiceFactory
	timeout time.Duration
	now     func() time.Time
	mailLog *slog.Logger
	calLog  *slog.Logger
}

func NewService(tokens TokenResolver, clients ServiceFactory, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		tokens:  tokens,
		clients: clients,
		timeout: timeout,
		now:     time.Now,
		mailLog: logger.With("component", "gmail"),
		calLog:  logger.With("component", "calendar"),
	}
}

func (s *Service) token(ctx context.Context, userID string) (string, error) {
	return s.tokens.AccessToken(ctx, userID, model.ProviderGoogle)
}

func (s *Service) bounded(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Emails returns the user's ranked important mail.
func (s *Service) Emails(ctx context.Context, userID string) ([]model.NormalizedMessage, error) {
	tok, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.emails(ctx, tok)
}

func (s *Service) emails(ctx context.Context, tok string) ([]model.NormalizedMessage, error) {
	svc, err := s.clients.Gmail(ctx, tok)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return gmail.FetchImportant(ctx, svc, s.mailLog), nil
}

// Thread returns the expanded conversation threadID.
func (s *Service) Thread(ctx context.Context, userID, threadID string) ([]model.ThreadMessage, error) {
	tok, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	svc, err := s.clients.Gmail(ctx, tok)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return gmail.FetchThread(ctx, svc, threadID, s.mailLog), nil
}

// Meetings returns today's calendar events.
func (s *Service) Meetings(ctx context.Context, userID string) ([]model.NormalizedEvent, error) {
	tok, err := s.token(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.meetings(ctx, tok)
}

func (s *Service) meetings(ctx context.Context, tok string) ([]model.NormalizedEvent, error) {
	svc, err := s.clients.Calendar(ctx, tok)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.bounded(ctx)
	defer cancel()
	return calendar.FetchToday(ctx, svc, s.now(), s.calLog), nil
}

// Dashboard loads mail and calendar concurrently with one token lookup and
// merges them.
func (s *Service) Dashboard(ctx context.Context, userID string) (model.Dashboard, error) {
	tok, err := s.token(ctx, userID)
	if err != nil {
		return model.Dashboard{}, err
	}

	var (
		messages []model.NormalizedMessage
		events   []model.NormalizedEvent
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		messages, err = s.emails(gctx, tok)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.meetings(gctx, tok)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Dashboard{}, err
	}
	return Merge(messages, events, s.now()), nil
}
