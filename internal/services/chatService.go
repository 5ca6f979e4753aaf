package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/arzan03/wastetrack/internal/common"
	"go.uber.org/zap"
)

// Fixed chatbot replies.
const (
	ChatNoAnswerReply = "Sorry, I couldn't generate a response."
	ChatFailureReply  = "Oops! Something went wrong."
)

const chatPrompt = `
You are a helpful assistant for waste management. Answer the user's question concisely using 3-5 clear bullet points. Keep the response short and easy to read.

- Answer questions in a short, clear, and concise manner.
- Use point format or bullet points if applicable.
- Avoid long paragraphs or excessive details.
- Keep responses friendly and to the point.
- Only respond to relevant platform questions like reporting waste, cleanup drives, worker uploads, manager tasks, contact info, etc.

User's question: "%s"

Your response:
`

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type ChatService struct {
	model TextGenerator
	log   *zap.Logger
}

func NewChatService(model TextGenerator, log *zap.Logger) *ChatService {
	return &ChatService{model: model, log: log}
}

var bulletRe = regexp.MustCompile(`\s*([•-])\s+`)

// FormatBullets moves every bullet marker onto its own line.
func FormatBullets(text string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(text, "\n$1 "))
}

// Reply always returns a non-empty reply. On upstream failure the reply is
// ChatFailureReply and the error wraps common.ErrUpstream.
func (s *ChatService) Reply(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", fmt.Errorf("%w: message is required", common.ErrValidation)
	}

	text, err := s.model.Generate(ctx, fmt.Sprintf(chatPrompt, message))
	if err != nil {
		s.log.Warn("chat upstream failed", zap.Error(err))
		return ChatFailureReply, fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}

	reply := FormatBullets(text)
	if reply == "" {
		return ChatNoAnswerReply, nil
	}
	return reply, nil
}
