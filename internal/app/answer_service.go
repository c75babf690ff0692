package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sro-assistant/internal/index"
	"sro-assistant/internal/metrics"
	"sro-assistant/internal/model"
)

var ErrInvalidInput = errors.New("invalid input")

// QuotaExceededMessage is returned verbatim when a guest runs out of
// questions for the day.
const QuotaExceededMessage = "Вы превысили лимит вопросов на сегодня (3 вопроса)."

// maxContextDocs caps how many retrieved documents feed the prompt and the
// source list, regardless of how many the search returned.
const maxContextDocs = 3

type UserStore interface {
	GetByID(id int64) (*model.User, error)
	Upsert(user *model.User) error
}

type QuotaChecker interface {
	CheckAndConsume(ctx context.Context, userID int64, role string) bool
}

type DocumentSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]index.SearchResult, error)
}

type Generator interface {
	Answer(ctx context.Context, question, contextBlock string) string
}

type AnswerLogPublisher interface {
	Publish(ctx context.Context, entry model.AnswerLog) error
}

// AnswerService runs the question pipeline: quota gate, retrieval, context
// assembly, generation, and response formatting.
type AnswerService struct {
	users     UserStore
	quota     QuotaChecker
	searcher  DocumentSearcher
	generator Generator
	publisher AnswerLogPublisher
	topK      int
	log       *zap.Logger
}

func NewAnswerService(
	users UserStore,
	quota QuotaChecker,
	searcher DocumentSearcher,
	generator Generator,
	publisher AnswerLogPublisher,
	topK int,
	log *zap.Logger,
) *AnswerService {
	if topK <= 0 {
		topK = 5
	}
	return &AnswerService{
		users:     users,
		quota:     quota,
		searcher:  searcher,
		generator: generator,
		publisher: publisher,
		topK:      topK,
		log:       log,
	}
}

// AnswerQuestion is the single entry point the chat transport calls per user
// message. It always returns a user-facing string; recoverable problems along
// the pipeline degrade rather than propagate.
func (s *AnswerService) AnswerQuestion(ctx context.Context, userID int64, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrInvalidInput
	}

	metrics.RequestsTotal.Inc()
	start := time.Now()
	defer func() {
		metrics.LatencySeconds.Observe(time.Since(start).Seconds())
	}()

	role := s.resolveRole(userID)

	if !s.quota.CheckAndConsume(ctx, userID, role) {
		metrics.QuotaRejectionsTotal.Inc()
		return QuotaExceededMessage, nil
	}

	results, err := s.searcher.Search(ctx, question, s.topK)
	if err != nil {
		// Degrade to generation without context rather than failing the question.
		s.log.Warn("document search failed", zap.Error(err))
		results = nil
	}
	if len(results) > maxContextDocs {
		results = results[:maxContextDocs]
	}

	answer := s.generator.Answer(ctx, question, buildContext(results))
	if len(results) > 0 {
		answer = answer + "\n\n📚 Использованные документы:\n" + formatSources(results)
	}

	s.publishLog(ctx, userID, role, question, answer, len(results))
	return answer, nil
}

// resolveRole treats a missing or unreadable user record as a guest.
func (s *AnswerService) resolveRole(userID int64) string {
	user, err := s.users.GetByID(userID)
	if err != nil {
		s.log.Warn("user lookup failed, treating as guest", zap.Int64("user_id", userID), zap.Error(err))
		return model.RoleGuest
	}
	if user == nil {
		return model.RoleGuest
	}
	return user.Role
}

func (s *AnswerService) publishLog(ctx context.Context, userID int64, role, question, answer string, docCount int) {
	if s.publisher == nil {
		return
	}
	entry := model.AnswerLog{
		UserID:        userID,
		Role:          role,
		Question:      question,
		Answer:        answer,
		DocumentCount: docCount,
		CreatedAt:     time.Now(),
	}
	if err := s.publisher.Publish(ctx, entry); err != nil {
		s.log.Warn("answer log publish failed", zap.Error(err))
	}
}

// buildContext concatenates ranked results with their document labels.
func buildContext(results []index.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	parts := make([]string, len(results))
	for i, r := range results {
		parts[i] = fmt.Sprintf("Документ: %s\n%s", r.Name, r.Text)
	}
	return strings.Join(parts, "\n")
}

// formatSources renders one line per document with its relevance percentage.
func formatSources(results []index.SearchResult) string {
	lines := make([]string, len(results))
	for i, r := range results {
		lines[i] = fmt.Sprintf("🔹 %s (релевантность: %.1f%%)", r.Name, r.Score*100)
	}
	return strings.Join(lines, "\n")
}
