package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/postop/internal/core/domain"
	"github.com/custodia-labs/postop/internal/core/ports/driven"
	"github.com/custodia-labs/postop/internal/core/ports/driving"
	"github.com/custodia-labs/postop/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

var chatLog = logger.For("chat")

// UnavailableAnswerText is shown when the model produced nothing usable.
const UnavailableAnswerText = "I'm not able to answer right now. " +
	"Please contact your care team or clinician directly if you need help."

// ChatService runs the retrieval-augmented triage state machine.
type ChatService struct {
	retrieval  driving.RetrievalService
	llm        driven.LLMService
	alerts     driven.AlertSink
	prompts    *PromptBuilder
	classifier *KeywordClassifier
	topK       int
	now        func() time.Time
}

// NewChatService creates a new chat service.
func NewChatService(
	retrieval driving.RetrievalService,
	llm driven.LLMService,
	alerts driven.AlertSink,
) *ChatService {
	return &ChatService{
		retrieval:  retrieval,
		llm:        llm,
		alerts:     alerts,
		prompts:    NewPromptBuilder(nil),
		classifier: NewKeywordClassifier(),
		topK:       domain.DefaultTopK,
		now:        time.Now,
	}
}

// SetPromptBuilder replaces the system prompt builder.
func (s *ChatService) SetPromptBuilder(b *PromptBuilder) {
	if b != nil {
		s.prompts = b
	}
}

// SetClassifier replaces the fallback danger-signal classifier.
func (s *ChatService) SetClassifier(c *KeywordClassifier) {
	if c != nil {
		s.classifier = c
	}
}

// SetTopK sets how many context documents a turn retrieves.
func (s *ChatService) SetTopK(k int) {
	if k > 0 {
		s.topK = k
	}
}

// turn carries the state of one chat turn.
type turn struct {
	req      domain.ChatRequest
	state    domain.ChatState
	lines    []string
	system   string
	raw      string
	decision domain.TriageDecision
}

func (t *turn) enter(state domain.ChatState) {
	t.state = state
	logger.Debug("state: %s", state)
}

func (t *turn) fail(err error) error {
	failedAt := t.state
	t.enter(domain.ChatStateFailed)
	return fmt.Errorf("chat %s: %w", failedAt, err)
}

// Chat answers one patient message.
//
// The model's structured reply is authoritative when it parses. Otherwise the
// raw reply is still returned as the answer and the keyword classifier decides
// the level. An alert is recorded only for alert=true at level 3.
func (s *ChatService) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error) {
	req.PatientID = strings.TrimSpace(req.PatientID)
	if req.PatientID == "" {
		return nil, fmt.Errorf("%w: patient ID is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(req.Message) == "" {
		return nil, fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if s.retrieval == nil {
		return nil, domain.ErrRetrievalUnavailable
	}

	logger.Section("Chat Turn")
	t := &turn{req: req}

	// RETRIEVING
	t.enter(domain.ChatStateRetrieving)
	hits, err := s.retrieval.Retrieve(ctx, req.PatientID, req.Message, s.topK)
	if err != nil {
		return nil, t.fail(err)
	}
	t.lines = FormatContextLines(hits)

	// PROMPTING
	t.enter(domain.ChatStatePrompting)
	t.system = s.prompts.Build(t.lines)

	// AWAITING_MODEL
	t.enter(domain.ChatStateAwaitingModel)
	raw, err := s.generate(ctx, t.system, req.Message)
	if err != nil {
		return nil, t.fail(err)
	}
	t.raw = raw

	// PARSING
	t.enter(domain.ChatStateParsing)
	if decision := ParseDecision(t.raw); decision != nil {
		t.enter(domain.ChatStateDecided)
		t.decision = *decision
	} else {
		t.enter(domain.ChatStateFallbackClassifying)
		level, alert := s.classifier.Classify(req.Message)
		t.decision = domain.TriageDecision{
			Level:         level,
			AssistantText: t.raw,
			Alert:         alert,
		}
		if level != nil {
			chatLog.Warn("patient %s: unparseable reply, danger signal forced level %d", req.PatientID, *level)
		} else {
			chatLog.Debug("patient %s: unparseable reply, no danger signal", req.PatientID)
		}
	}
	if strings.TrimSpace(t.decision.AssistantText) == "" {
		t.decision.AssistantText = UnavailableAnswerText
	}

	// ALERTING
	alertSent := false
	if t.decision.ShouldAlert() {
		t.enter(domain.ChatStateAlerting)
		if err := s.pushAlert(ctx, req); err != nil {
			return nil, t.fail(err)
		}
		alertSent = true
		chatLog.Warn("patient %s: level 3 alert recorded", req.PatientID)
	}

	t.enter(domain.ChatStateDone)
	return &domain.ChatResponse{
		PatientID:   req.PatientID,
		ContextUsed: t.lines,
		Answer:      t.decision.AssistantText,
		ContactHint: ContactHint(t.lines),
		TriageLevel: t.decision.Level,
		AlertSent:   alertSent,
	}, nil
}

// generate calls the model once. Provider failures degrade to an empty reply
// so the fallback path still runs; only cancellation aborts the turn.
func (s *ChatService) generate(ctx context.Context, system, message string) (string, error) {
	if s.llm == nil {
		chatLog.Warn("no LLM configured; using fallback classification")
		return "", nil
	}

	raw, err := s.llm.Generate(ctx, system, message)
	if err == nil {
		return raw, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, ctxErr)
	}
	if errors.Is(err, context.Canceled) {
		return "", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	chatLog.Warn("%v", fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err))
	return "", nil
}

func (s *ChatService) pushAlert(ctx context.Context, req domain.ChatRequest) error {
	if s.alerts == nil {
		return fmt.Errorf("%w: no alert sink configured", domain.ErrAlertUnavailable)
	}
	alert := domain.Alert{
		Timestamp: s.now().UTC(),
		PatientID: req.PatientID,
		Message:   req.Message,
	}
	if err := s.alerts.Push(ctx, alert); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrAlertUnavailable, err)
	}
	return nil
}
