package prompt

import (
	"log"
	"strings"
	"sync"

	"github.com/Vovarama1992/gpt_buddy/internal/config"
	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	tiktoken "github.com/pkoukk/tiktoken-go"
	openai "github.com/sashabaranov/go-openai"
)

// Assembler — чистая проекция (история, новое сообщение, режим) → messages.
// Историю не мутирует, поэтому /retry и повторная сборка работают поверх
// одного и того же состояния.
type Assembler struct {
	// Lenient: обмен без текста пользователя молча пропускается при
	// восстановлении истории (совместимость со старыми записями).
	// При false такой обмен всё равно отдаёт реплику ассистента.
	Lenient bool

	// MaxHistoryTokens — бюджет на историю; старые обмены отбрасываются
	// с головы, пока не влезем.
	MaxHistoryTokens int

	// countTokens подменяется в тестах
	countTokens func(model, text string) int
}

func NewAssembler(lenient bool, maxHistoryTokens int) *Assembler {
	return &Assembler{
		Lenient:          lenient,
		MaxHistoryTokens: maxHistoryTokens,
		countTokens:      countTokensTiktoken,
	}
}

// Build собирает упорядоченный список реплик для модели: системный промпт
// режима, затем по каждому прошлому обмену user → assistant в исходном
// порядке, затем новое сообщение пользователя. Возвращает также число
// пропущенных кривых записей истории.
func (a *Assembler) Build(
	history []dialog.Exchange,
	newText string,
	newImageURL *string,
	mode config.ChatMode,
	model string,
) ([]openai.ChatCompletionMessage, int) {

	history = a.fit(history, model)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)*2+2)

	if p := strings.TrimSpace(mode.Prompt); p != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: p,
		})
	}

	skipped := 0
	for _, ex := range history {
		if strings.TrimSpace(ex.UserText) == "" && ex.ImageURL == nil {
			skipped++
			if a.Lenient {
				continue
			}
			// strict: текста нет, но реплику модели из истории не теряем
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: ex.BotText,
			})
			continue
		}

		messages = append(messages, userMessage(ex.UserText, ex.ImageURL))
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleAssistant,
			Content: ex.BotText,
		})
	}

	messages = append(messages, userMessage(newText, newImageURL))

	if skipped > 0 {
		log.Printf("[prompt] skipped %d malformed history entries (lenient=%v)", skipped, a.Lenient)
	}

	return messages, skipped
}

// userMessage — реплика пользователя; картинка, если была, остаётся
// привязанной именно к своей реплике.
func userMessage(text string, imageURL *string) openai.ChatCompletionMessage {
	if imageURL == nil {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: text,
		}
	}

	parts := []openai.ChatMessagePart{}
	if strings.TrimSpace(text) != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: text,
		})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type:     openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{URL: *imageURL},
	})

	return openai.ChatCompletionMessage{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}
}

// fit обрезает историю по токенам с головы (самые старые уходят первыми).
func (a *Assembler) fit(history []dialog.Exchange, model string) []dialog.Exchange {
	if a.MaxHistoryTokens <= 0 {
		return history
	}

	total := 0
	start := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		total += a.exchangeTokens(history[i], model)
		if total > a.MaxHistoryTokens {
			break
		}
		start = i
	}
	return history[start:]
}

func (a *Assembler) exchangeTokens(ex dialog.Exchange, model string) int {
	n := a.countTokens(model, ex.UserText) + a.countTokens(model, ex.BotText)
	if ex.ImageURL != nil {
		n += 60
	}
	return n
}

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
)

// countTokensTiktoken считает токены через tiktoken; если энкодер не
// поднялся (нет сети за словарём), падаем на грубую оценку len/4.
func countTokensTiktoken(model, text string) int {
	encOnce.Do(func() {
		e, err := tiktoken.EncodingForModel(model)
		if err != nil {
			e, err = tiktoken.GetEncoding("cl100k_base")
		}
		if err != nil {
			log.Printf("[prompt] tokenizer init fail: %v", err)
			return
		}
		enc = e
	})

	if enc == nil {
		return len(text)/4 + 1
	}
	return len(enc.Encode(text, nil, nil))
}
