package config

const (
	defaultDataDir  = "~/.local/share/edustream"
	defaultMediaDir = "~/.local/share/edustream/media"
	defaultLogDir   = "~/.local/share/edustream/logs"
	defaultAPIBind  = "127.0.0.1:7519"

	defaultExclusionWindow = 5

	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMTimeoutSeconds = 60

	defaultDiagramWidth  = 1080
	defaultDiagramHeight = 1350

	defaultScriptTimeoutSeconds  = 90
	defaultDiagramTimeoutSeconds = 30

	defaultPublishIntervalMinutes = 60
	defaultSchedulerTickSeconds   = 60
	defaultPublishTimeoutSeconds  = 45
	defaultFirstSlotDelayMinutes  = 5

	defaultMaxConcurrentGenerations = 4
	defaultBatchLimit               = 30

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:  defaultDataDir,
			MediaDir: defaultMediaDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Scenario: Scenario{
			ExclusionWindow: defaultExclusionWindow,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Diagram: Diagram{
			Width:  defaultDiagramWidth,
			Height: defaultDiagramHeight,
		},
		Stages: Stages{
			ScriptTimeoutSeconds:  defaultScriptTimeoutSeconds,
			DiagramTimeoutSeconds: defaultDiagramTimeoutSeconds,
		},
		Publishing: Publishing{
			IntervalMinutes:       defaultPublishIntervalMinutes,
			SchedulerTickSeconds:  defaultSchedulerTickSeconds,
			PublishTimeoutSeconds: defaultPublishTimeoutSeconds,
			FirstSlotDelayMinutes: defaultFirstSlotDelayMinutes,
		},
		Workflow: Workflow{
			MaxConcurrentGenerations: defaultMaxConcurrentGenerations,
			BatchLimit:               defaultBatchLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Generation:     true,
			Publish:        true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
