package config

import (
	"fmt"
	"strings"

	ini "github.com/go-ini/ini"
)

// ChatMode — режим общения (системный промпт + приветствие).
type ChatMode struct {
	Key            string
	Name           string
	WelcomeMessage string
	Prompt         string
}

// ModelInfo — карточка модели из каталога с ценами за 1000 токенов.
type ModelInfo struct {
	Key           string
	Name          string
	Description   string
	InputPer1000  float64
	OutputPer1000 float64
}

type Config struct {
	DefaultModel string
	DefaultMode  string
	TextModels   []string // порядок показа в /settings

	Modes     map[string]ChatMode
	ModeOrder []string // порядок показа в /mode

	Models map[string]ModelInfo

	ImageSize      string
	NImages        int
	PricePerImage  float64
	PricePerMinute float64

	MaxHistoryTokens int
}

// Load читает ini-файл с режимами, каталогом моделей и ценами.
// Цены живут только здесь — ledger получает их снаружи.
func Load(path string) (*Config, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	root := f.Section("")

	cfg := &Config{
		DefaultModel:     root.Key("default_model").String(),
		DefaultMode:      root.Key("default_chat_mode").MustString("assistant"),
		ImageSize:        root.Key("image_size").MustString("1024x1024"),
		NImages:          root.Key("n_generated_images").MustInt(1),
		MaxHistoryTokens: root.Key("max_history_tokens").MustInt(3000),
		Modes:            make(map[string]ChatMode),
		Models:           make(map[string]ModelInfo),
	}

	for _, m := range root.Key("available_text_models").Strings(",") {
		m = strings.TrimSpace(m)
		if m != "" {
			cfg.TextModels = append(cfg.TextModels, m)
		}
	}

	// [mode.<key>]
	for _, sec := range f.ChildSections("mode") {
		key := strings.TrimPrefix(sec.Name(), "mode.")
		cfg.Modes[key] = ChatMode{
			Key:            key,
			Name:           sec.Key("name").MustString(key),
			WelcomeMessage: sec.Key("welcome_message").String(),
			Prompt:         sec.Key("prompt").String(),
		}
		cfg.ModeOrder = append(cfg.ModeOrder, key)
	}

	// [model.<key>]
	for _, sec := range f.ChildSections("model") {
		key := strings.TrimPrefix(sec.Name(), "model.")
		cfg.Models[key] = ModelInfo{
			Key:           key,
			Name:          sec.Key("name").MustString(key),
			Description:   sec.Key("description").String(),
			InputPer1000:  sec.Key("price_per_1000_input_tokens").MustFloat64(0),
			OutputPer1000: sec.Key("price_per_1000_output_tokens").MustFloat64(0),
		}
	}

	cfg.PricePerImage = f.Section("image").Key("price_per_1_image").MustFloat64(0)
	cfg.PricePerMinute = f.Section("whisper").Key("price_per_1_min").MustFloat64(0)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DefaultModel == "" {
		if len(c.TextModels) == 0 {
			return fmt.Errorf("config: no default_model and no available_text_models")
		}
		c.DefaultModel = c.TextModels[0]
	}
	if _, ok := c.Modes[c.DefaultMode]; !ok {
		return fmt.Errorf("config: default_chat_mode %q has no [mode.%s] section", c.DefaultMode, c.DefaultMode)
	}
	for _, m := range c.TextModels {
		if _, ok := c.Models[m]; !ok {
			return fmt.Errorf("config: model %q listed but has no [model.%s] section", m, m)
		}
	}
	return nil
}

// === PriceTable (ledger смотрит на цены только через этот срез) ===

func (c *Config) TokenPrice(model string) (inPer1000, outPer1000 float64, ok bool) {
	m, found := c.Models[model]
	if !found {
		return 0, 0, false
	}
	return m.InputPer1000, m.OutputPer1000, true
}

func (c *Config) ImagePrice() float64 { return c.PricePerImage }

func (c *Config) MinutePrice() float64 { return c.PricePerMinute }
