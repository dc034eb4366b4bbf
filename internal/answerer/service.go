package answerer

import (
	"context"

	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

// Service runs the responder chain and falls through to the model. A model
// failure degrades to a fixed apology instead of surfacing an error; the chat
// surface never breaks because the LLM is down.
type Service struct {
	responders   []Responder
	llm          Answerer
	contactEmail string
	logger       *zap.Logger
}

// NewService builds the standard chain: static answers, then the knowledge
// gap check, then llm. llm may be nil, in which case queries that reach it
// get the technical-issue reply.
func NewService(llm Answerer, contactEmail string, logger *zap.Logger) *Service {
	return &Service{
		responders: []Responder{
			NewStaticResponder(contactEmail),
			NewKnowledgeGapResponder(contactEmail),
		},
		llm:          llm,
		contactEmail: contactEmail,
		logger:       logger,
	}
}

func (s *Service) Answer(ctx context.Context, query string, contextBlocks []string, history []models.Message) (string, error) {
	for _, r := range s.responders {
		if answer, ok := r.Respond(query, contextBlocks); ok {
			return answer, nil
		}
	}
	if s.llm == nil {
		s.logger.Warn("no model configured, returning fallback answer")
		return technicalIssueMessage(s.contactEmail), nil
	}
	answer, err := s.llm.Answer(ctx, query, contextBlocks, history)
	if err != nil {
		s.logger.Error("model call failed", zap.Error(err))
		return technicalIssueMessage(s.contactEmail), nil
	}
	return answer, nil
}
