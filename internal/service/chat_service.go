package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/llm"
	"kidpal/internal/repository"
)

/*
========================
 Respuestas fijas
========================
*/

// Textos pre-horneados por accion de seguridad. Siempre bien formados,
// pase lo que pase con el resto del pipeline.
var cannedResponses = map[domain.SafetyAction]string{
	domain.ActionCrisisResponse: "I'm really glad you told me. That sounds really hard, and you deserve help from a grown-up you trust. " +
		"Please talk to a parent, a teacher, or call or text 988 to reach someone who can help right now. I care about you.",
	domain.ActionSupportiveResponse: "That sounds really unfair, and I'm sorry it's happening. It's not your fault. " +
		"Telling a grown-up you trust, like a parent or teacher, is a brave and smart move. Want to talk about it?",
	domain.ActionPoliteDecline: "Hmm, that's not something I can help with, it could get someone in trouble or hurt. " +
		"But I'm full of other ideas! Want to hear a fun fact instead?",
	domain.ActionFilterAndEducate: "Whoa, let's keep our words friendly! Some words can sting even when we're joking. " +
		"What were you trying to say? I bet we can find a kinder way!",
}

// ChatResult es lo que devuelve un turno completo.
type ChatResult struct {
	Reply       domain.Message           `json:"reply"`
	Safety      domain.SafetyCheckResult `json:"safety"`
	Progression *ConversationOutcome     `json:"progression,omitempty"`
}

// ChatService orquesta un turno de conversacion: seguridad primero, luego
// generacion con el LLM, y al cierre deriva de rasgos y progresion de
// amistad.
type ChatService struct {
	logger        *zap.Logger
	llmClient     llm.Client
	messages      repository.MessageRepository
	personalities *PersonalityService
	friendship    *FriendshipService
	safety        *SafetyService
	gate          *FeatureGate
	memories      *MemoryService
}

func NewChatService(
	logger *zap.Logger,
	llmClient llm.Client,
	messages repository.MessageRepository,
	personalities *PersonalityService,
	friendship *FriendshipService,
	safety *SafetyService,
	gate *FeatureGate,
	memories *MemoryService,
) *ChatService {
	return &ChatService{
		logger:        logger,
		llmClient:     llmClient,
		messages:      messages,
		personalities: personalities,
		friendship:    friendship,
		safety:        safety,
		gate:          gate,
		memories:      memories,
	}
}

// HandleMessage procesa un mensaje del nino de punta a punta.
// El clasificador corre antes que todo: cualquier accion distinta de
// "allow" corta la generacion normal y responde con el texto fijo de esa
// accion. Solo los turnos "allow" alimentan deriva y progresion.
func (s *ChatService) HandleMessage(ctx context.Context, kidID, sessionID, content string) (ChatResult, error) {
	kidMsg := domain.Message{
		ID:        uuid.NewString(),
		KidID:     kidID,
		SessionID: sessionID,
		Content:   content,
		Role:      domain.MessageRoleKid,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, kidMsg); err != nil {
		return ChatResult{}, fmt.Errorf("persist kid message: %w", err)
	}

	safety := s.safety.CheckMessage(ctx, kidID, content)
	if safety.Action != domain.ActionAllow {
		reply, err := s.persistReply(ctx, kidID, sessionID, cannedResponses[safety.Action])
		if err != nil {
			return ChatResult{}, err
		}
		return ChatResult{Reply: reply, Safety: safety}, nil
	}

	personality, err := s.personalities.Get(ctx, kidID)
	if err != nil {
		return ChatResult{}, fmt.Errorf("get personality: %w", err)
	}

	response, err := s.generateReply(ctx, kidID, personality, content)
	if err != nil {
		return ChatResult{}, err
	}

	reply, err := s.persistReply(ctx, kidID, sessionID, response)
	if err != nil {
		return ChatResult{}, err
	}

	outcome := s.closeTurn(ctx, kidID, content, response)

	return ChatResult{Reply: reply, Safety: safety, Progression: outcome}, nil
}

func (s *ChatService) generateReply(ctx context.Context, kidID string, personality domain.Personality, content string) (string, error) {
	description, err := s.personalities.Describe(ctx, kidID)
	if err != nil {
		return "", fmt.Errorf("describe personality: %w", err)
	}

	// Efecto de feature aplicado por el caller: con extended_memory el bot
	// recuerda mas y lee mas contexto reciente.
	level := personality.Friendship.Level
	recallK, contextWindow := 3, 6
	if s.gate.IsUnlocked("extended_memory", level) {
		recallK, contextWindow = 8, 12
	}

	var memoryContext string
	if s.memories != nil {
		memoryContext, err = s.memories.RecallContext(ctx, kidID, content, recallK)
		if err != nil {
			// La memoria es sabor, no requisito: seguimos sin ella.
			s.logger.Warn("memory recall failed", zap.Error(err), zap.String("kid_id", kidID))
			memoryContext = ""
		}
	}

	recent, err := s.messages.ListRecentByKid(ctx, kidID, contextWindow)
	if err != nil {
		return "", fmt.Errorf("list recent messages: %w", err)
	}

	prompt := s.buildChatPrompt(personality, description, memoryContext, recent, content)
	response, err := s.llmClient.Generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	return response, nil
}

// closeTurn aplica los efectos de cierre: metricas -> deriva acotada ->
// conteo de conversacion/nivel -> extraccion de memoria. Ninguno de estos
// fallos rompe la respuesta ya generada; se loguean y se sigue.
func (s *ChatService) closeTurn(ctx context.Context, kidID, kidMessage, botReply string) *ConversationOutcome {
	metrics := ComputeConversationMetrics([]string{kidMessage})
	if _, err := s.personalities.ApplyConversationDrift(ctx, kidID, metrics); err != nil {
		s.logger.Warn("apply drift failed", zap.Error(err), zap.String("kid_id", kidID))
	}

	outcome, err := s.friendship.RecordConversation(ctx, kidID)
	if err != nil {
		s.logger.Error("record conversation failed", zap.Error(err), zap.String("kid_id", kidID))
		return nil
	}

	if s.memories != nil {
		if _, err := s.memories.ExtractAndStore(ctx, kidID, kidMessage, botReply); err != nil {
			s.logger.Warn("memory extraction failed", zap.Error(err), zap.String("kid_id", kidID))
		}
	}
	return &outcome
}

func (s *ChatService) persistReply(ctx context.Context, kidID, sessionID, content string) (domain.Message, error) {
	reply := domain.Message{
		ID:        uuid.NewString(),
		KidID:     kidID,
		SessionID: sessionID,
		Content:   content,
		Role:      domain.MessageRoleBot,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(ctx, reply); err != nil {
		return domain.Message{}, fmt.Errorf("persist bot message: %w", err)
	}
	return reply, nil
}

func (s *ChatService) buildChatPrompt(personality domain.Personality, description, memoryContext string, recent []domain.Message, userMessage string) string {
	var sb strings.Builder

	sb.WriteString("You are a friendly companion bot for a child. Keep replies short, warm, age-appropriate and safe.\n\n")

	sb.WriteString("=== YOUR PERSONALITY ===\n")
	sb.WriteString(description)
	sb.WriteString("\n")

	if personality.Friendship.Catchphrase != "" {
		sb.WriteString(fmt.Sprintf("Sprinkle in your catchphrase %q now and then, never more than once per reply.\n\n", personality.Friendship.Catchphrase))
	}

	if s.gate.IsUnlocked("pun_mode", personality.Friendship.Level) {
		sb.WriteString("Pun mode is unlocked: a gentle pun here and there is welcome.\n")
	}
	if s.gate.IsUnlocked("empathy_mode", personality.Friendship.Level) {
		sb.WriteString("Empathy mode is unlocked: name the child's feelings when they show.\n")
	}
	sb.WriteString("\n")

	if strings.TrimSpace(memoryContext) != "" {
		sb.WriteString("=== THINGS YOU REMEMBER ABOUT YOUR FRIEND ===\n")
		sb.WriteString(memoryContext)
		sb.WriteString("\n")
	}

	if len(recent) > 0 {
		sb.WriteString("=== RECENT CHAT ===\n")
		for _, m := range recent {
			sb.WriteString(fmt.Sprintf("%s: %s\n", m.Role, m.Content))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("=== THE CHILD SAYS ===\n")
	sb.WriteString(fmt.Sprintf("%q\n\n", userMessage))
	sb.WriteString("Reply as the companion, in character, in one short friendly paragraph.")

	return sb.String()
}
