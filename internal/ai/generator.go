package ai

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Fixed user-facing texts. Generation problems never surface as errors to the
// orchestrator; they degrade to FallbackAnswer at this boundary.
const (
	FallbackAnswer = "Ошибка при получении ответа"
	EmptyAnswer    = "Ответ не получен."

	personaPrompt = "Ты консультант СРО НОСО. Отвечай на вопросы, используя предоставленные документы.\n" +
		"Если в документах нет ответа, скажи об этом. Будь вежлив и профессионален."
)

// Generator produces an answer from a question and optional retrieved context
// through the external completion service.
type Generator struct {
	client *OpenAICompatibleClient
	cfg    ChatConfig
	log    *zap.Logger
}

func NewGenerator(cfg ChatConfig, timeout time.Duration, log *zap.Logger) *Generator {
	return &Generator{
		client: NewOpenAICompatibleClient(timeout),
		cfg:    cfg,
		log:    log,
	}
}

// Answer builds the consultant prompt, optionally augmented with the context
// block, and returns the completion text. Any failure yields FallbackAnswer.
func (g *Generator) Answer(ctx context.Context, question, contextBlock string) string {
	systemContent := personaPrompt
	if contextBlock != "" {
		systemContent += "\n\nКонтекст из документов:\n" + contextBlock
	}

	messages := []ChatMessage{
		{Role: "system", Content: systemContent},
		{Role: "user", Content: question},
	}

	answer, err := g.client.Complete(ctx, g.cfg, messages)
	if err != nil {
		g.log.Warn("llm completion failed", zap.Error(err))
		return FallbackAnswer
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return EmptyAnswer
	}
	return answer
}

// CannedGenerator is the offline generator: it echoes the question with a fixed
// prefix and never calls an external service. Selected by llm.mode = "canned".
type CannedGenerator struct{}

func (CannedGenerator) Answer(_ context.Context, question, _ string) string {
	return "Тестовый ответ на вопрос: " + question
}
