package assistant

import (
	"context"

	"github.com/mv4digital/chuvinha/internal/llm"
)

// historyLimit caps how many prior turns accompany a fallback call. There is
// no dialogue-state persistence beyond this window.
const historyLimit = 10

// fallback forwards an unclassified turn to the generative provider. The
// model only sees the fixed preamble, the capped history and the current
// message; it never reads the store. Any provider failure is terminal for
// the request and degrades to the fixed "not configured" reply with the raw
// error attached for operators.
func (a *Assistant) fallback(ctx context.Context, req ChatRequest) Reply {
	history := req.History
	if len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: chatSystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: req.Message})

	reply, err := a.chat.Complete(ctx, messages)
	if err != nil {
		a.log.Warn().Err(err).Msg("Generative fallback unavailable")
		return Reply{Reply: notConfiguredReply, Detail: err.Error()}
	}
	return Reply{Reply: reply}
}
