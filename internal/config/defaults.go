package config

const (
	defaultIncomingDir        = "~/.local/share/broll/incoming"
	defaultStagingDir         = "~/.local/share/broll/staging"
	defaultOutputDir          = "~/videos/edited"
	defaultLogDir             = "~/.local/share/broll/logs"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultWhisperModel       = "large-v3"
	defaultVADMethod          = "silero"
	defaultLanguage           = "en"
	defaultProviderTimeout    = 10
	defaultMinInterval        = 5.0
	defaultMaxInterval        = 15.0
	defaultOverlayDuration    = 4.0
	defaultLeadIn             = 2.0
	defaultTailMargin         = 3.0
	defaultResolverRetries    = 3
	defaultKeywordMinWeight   = 1.0
	defaultMaxPhraseWords     = 3
	defaultOverlayWidthRatio  = 0.35
	defaultRenderThreads      = 4
	defaultNotifyTimeout      = 10
	defaultQueuePollInterval  = 5
	defaultErrorRetryInterval = 10
	defaultSettleSeconds      = 3
	defaultDownloadWorkers    = 4
)

func defaultPositions() []string {
	return []string{"right", "left"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			IncomingDir: defaultIncomingDir,
			StagingDir:  defaultStagingDir,
			OutputDir:   defaultOutputDir,
			LogDir:      defaultLogDir,
		},
		Transcription: Transcription{
			Model:     defaultWhisperModel,
			VADMethod: defaultVADMethod,
			Language:  defaultLanguage,
		},
		Keywords: Keywords{
			MinWeight:      defaultKeywordMinWeight,
			MaxPhraseWords: defaultMaxPhraseWords,
		},
		Providers: Providers{
			RequestTimeout: defaultProviderTimeout,
		},
		Planner: Planner{
			MinInterval:     defaultMinInterval,
			MaxInterval:     defaultMaxInterval,
			OverlayDuration: defaultOverlayDuration,
			LeadIn:          defaultLeadIn,
			TailMargin:      defaultTailMargin,
			ResolverRetries: defaultResolverRetries,
			Positions:       defaultPositions(),
		},
		Render: Render{
			Enabled:           true,
			OverlayWidthRatio: defaultOverlayWidthRatio,
			ColorGrade:        true,
			Threads:           defaultRenderThreads,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Completed:      true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			SettleSeconds:      defaultSettleSeconds,
			DownloadWorkers:    defaultDownloadWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
