package prompt

import (
	"testing"
	"time"

	"github.com/Vovarama1992/gpt_buddy/internal/config"
	"github.com/Vovarama1992/gpt_buddy/internal/dialog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

var testMode = config.ChatMode{
	Key:    "assistant",
	Name:   "Ассистент",
	Prompt: "Ты дружелюбный ассистент.",
}

func strPtr(s string) *string { return &s }

func exchange(user, bot string) dialog.Exchange {
	return dialog.Exchange{UserText: user, BotText: bot, Date: time.Now()}
}

func newTestAssembler(lenient bool, maxTokens int) *Assembler {
	a := NewAssembler(lenient, maxTokens)
	// детерминированный счётчик: 1 токен = 1 символ
	a.countTokens = func(_, text string) int { return len(text) }
	return a
}

func TestBuildOrdering(t *testing.T) {
	a := newTestAssembler(true, 0)

	history := []dialog.Exchange{
		exchange("раз", "один"),
		exchange("два", "второй"),
	}

	msgs, skipped := a.Build(history, "три", nil, testMode, "gpt-3.5-turbo")
	require.Zero(t, skipped)

	// system + 2*(user+assistant) + новый user
	require.Len(t, msgs, 6)
	require.Equal(t, openai.ChatMessageRoleSystem, msgs[0].Role)
	require.Equal(t, "раз", msgs[1].Content)
	require.Equal(t, openai.ChatMessageRoleUser, msgs[1].Role)
	require.Equal(t, "один", msgs[2].Content)
	require.Equal(t, openai.ChatMessageRoleAssistant, msgs[2].Role)
	require.Equal(t, "два", msgs[3].Content)
	require.Equal(t, "второй", msgs[4].Content)
	require.Equal(t, "три", msgs[5].Content)
	require.Equal(t, openai.ChatMessageRoleUser, msgs[5].Role)
}

func TestBuildDoesNotMutateHistory(t *testing.T) {
	a := newTestAssembler(true, 0)

	history := []dialog.Exchange{exchange("привет", "здравствуй")}
	snapshot := history[0]

	a.Build(history, "ещё", nil, testMode, "gpt-3.5-turbo")
	a.Build(history, "и ещё", nil, testMode, "gpt-3.5-turbo")

	require.Equal(t, snapshot, history[0])
	require.Len(t, history, 1)
}

func TestBuildAttachesHistoryImageToItsTurn(t *testing.T) {
	a := newTestAssembler(true, 0)

	url := "https://s3.example/photos/1/abc.jpg"
	history := []dialog.Exchange{
		{UserText: "что на фото?", ImageURL: &url, BotText: "кот", Date: time.Now()},
	}

	msgs, _ := a.Build(history, "а порода?", nil, testMode, "gpt-4o")
	require.Len(t, msgs, 4)

	// картинка привязана к своей реплике, не потеряна
	userTurn := msgs[1]
	require.Equal(t, openai.ChatMessageRoleUser, userTurn.Role)
	require.Len(t, userTurn.MultiContent, 2)
	require.Equal(t, openai.ChatMessagePartTypeText, userTurn.MultiContent[0].Type)
	require.Equal(t, "что на фото?", userTurn.MultiContent[0].Text)
	require.Equal(t, url, userTurn.MultiContent[1].ImageURL.URL)
}

func TestBuildNewImageTurn(t *testing.T) {
	a := newTestAssembler(true, 0)

	msgs, _ := a.Build(nil, "опиши", strPtr("https://s3.example/x.jpg"), testMode, "gpt-4o")

	last := msgs[len(msgs)-1]
	require.Len(t, last.MultiContent, 2)
}

func TestBuildLenientSkipsMalformed(t *testing.T) {
	a := newTestAssembler(true, 0)

	history := []dialog.Exchange{
		exchange("нормальный", "ответ"),
		{BotText: "осиротевший ответ", Date: time.Now()}, // без текста юзера
	}

	msgs, skipped := a.Build(history, "дальше", nil, testMode, "gpt-3.5-turbo")
	require.Equal(t, 1, skipped)
	// system + user + assistant + новый user; кривой обмен выпал целиком
	require.Len(t, msgs, 4)
}

func TestBuildStrictKeepsAssistantTurn(t *testing.T) {
	a := newTestAssembler(false, 0)

	history := []dialog.Exchange{
		{BotText: "осиротевший ответ", Date: time.Now()},
	}

	msgs, skipped := a.Build(history, "дальше", nil, testMode, "gpt-3.5-turbo")
	require.Equal(t, 1, skipped)
	// system + assistant + новый user
	require.Len(t, msgs, 3)
	require.Equal(t, openai.ChatMessageRoleAssistant, msgs[1].Role)
	require.Equal(t, "осиротевший ответ", msgs[1].Content)
}

func TestBuildTrimsOldestToFitBudget(t *testing.T) {
	// бюджет вмещает только последний обмен (10+10 символов)
	a := newTestAssembler(true, 25)

	history := []dialog.Exchange{
		exchange("aaaaaaaaaa", "bbbbbbbbbb"),
		exchange("cccccccccc", "dddddddddd"),
	}

	msgs, _ := a.Build(history, "q", nil, testMode, "gpt-3.5-turbo")

	// system + последний обмен + новый user; старый обмен ушёл с головы
	require.Len(t, msgs, 4)
	require.Equal(t, "cccccccccc", msgs[1].Content)
}
