package installer

// Settings is what the wizard writes to the runtime .env file.
type Settings struct {
	OpenAIAPIKey     string `env:"OPENAI_API_KEY"`
	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	OpenRouterAPIKey string `env:"OPENROUTER_API_KEY"`
	AnthropicAPIKey  string `env:"ANTHROPIC_API_KEY"`

	TelegramToken   string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramOwnerID int64  `env:"ALLOWED_TELEGRAM_ID"`

	// EnableWeb defaults to true, so only an explicit "false" is written.
	EnableWeb string `env:"LUMINA_ENABLE_WEB"`
	EnableCLI bool   `env:"LUMINA_ENABLE_CLI"`

	CalendarEnabled     bool   `env:"LUMINA_CALENDAR_ENABLED"`
	CalendarCredentials string `env:"LUMINA_CALENDAR_CREDENTIALS"`
	CalendarToken       string `env:"LUMINA_CALENDAR_TOKEN"`
	TimeZone            string `env:"LUMINA_TIMEZONE"`
}

func (s Settings) HasProvider() bool {
	return s.OpenAIAPIKey != "" || s.GeminiAPIKey != "" || s.OpenRouterAPIKey != "" || s.AnthropicAPIKey != ""
}

type InstallState struct {
	Settings    Settings
	UseTelegram bool
	RuntimePath string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{
		RuntimePath: runtimePath,
	}
}
