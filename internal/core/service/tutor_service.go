package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crazylearners/portal/internal/core/domain"
	"github.com/crazylearners/portal/internal/core/ports"
	"github.com/crazylearners/portal/internal/pkg/metrics"
)

const (
	DefaultTutorModel = "gemini-2.5-flash"

	TutorPersona = "You are 'Crazy Bot', an expert AI tutor for JEE and NEET aspirants. " +
		"You specialize in Physics, Chemistry, Biology, and Mathematics. " +
		"Explain concepts clearly, concisely, and use bullet points where necessary. " +
		"Keep the tone encouraging and futuristic. " +
		"If a student asks about something unrelated to studies or exams, politely steer them back to the topic."

	TutorGreeting = "Hi! I'm CrazyBot 🤖. Stuck on a Physics derivation or Organic mechanism? Ask me anything!"

	replyMissingKey   = "API Key is missing. Please check your configuration."
	replyRemoteFailed = "Something went wrong while connecting to the AI Tutor."
	replyEmpty        = "I couldn't generate an answer at the moment."
)

// Tutor answers study questions through a remote model and keeps the chat
// transcript. A nil client means no API key was configured.
type Tutor struct {
	client ports.CompletionClient
	model  string
	log    zerolog.Logger
	now    func() time.Time

	mu         sync.Mutex
	transcript []domain.ChatMessage
}

var _ ports.TutorService = (*Tutor)(nil)

// NewTutor creates a tutor whose transcript starts with the greeting. An empty
// model uses DefaultTutorModel.
func NewTutor(client ports.CompletionClient, model string, log zerolog.Logger) *Tutor {
	if model == "" {
		model = DefaultTutorModel
	}
	t := &Tutor{
		client: client,
		model:  model,
		log:    log,
		now:    time.Now,
	}
	t.transcript = []domain.ChatMessage{t.message(domain.RoleModel, TutorGreeting)}
	return t
}

// Ask appends the prompt and the model's reply to the transcript. Remote
// failures are reported as a fallback reply, not as an error.
func (t *Tutor) Ask(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		metrics.TutorRequestsTotal.WithLabelValues("empty").Inc()
		return domain.ChatMessage{}, domain.ErrEmptyPrompt
	}
	t.append(t.message(domain.RoleUser, text))

	reply := t.complete(ctx, text)
	msg := t.message(domain.RoleModel, reply)
	t.append(msg)
	return msg, nil
}

// Messages returns a copy of the transcript, oldest first.
func (t *Tutor) Messages() []domain.ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.ChatMessage, len(t.transcript))
	copy(out, t.transcript)
	return out
}

func (t *Tutor) complete(ctx context.Context, prompt string) string {
	if t.client == nil {
		metrics.TutorRequestsTotal.WithLabelValues("disabled").Inc()
		return replyMissingKey
	}

	start := time.Now()
	out, err := t.client.Generate(ctx, ports.CompletionRequest{
		Model:             t.model,
		SystemInstruction: TutorPersona,
		Prompt:            prompt,
		ThinkingBudget:    0,
	})
	metrics.TutorRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		t.log.Error().Err(err).Str("model", t.model).Msg("tutor completion failed")
		metrics.TutorRequestsTotal.WithLabelValues("error").Inc()
		return replyRemoteFailed
	}
	metrics.TutorRequestsTotal.WithLabelValues("ok").Inc()
	if strings.TrimSpace(out) == "" {
		return replyEmpty
	}
	return out
}

func (t *Tutor) message(role domain.ChatRole, text string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: t.now().UTC(),
	}
}

func (t *Tutor) append(msg domain.ChatMessage) {
	t.mu.Lock()
	t.transcript = append(t.transcript, msg)
	t.mu.Unlock()
}
