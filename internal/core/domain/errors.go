package domain

import "go.trai.ch/zerr"

var (
	// ErrUnknownOptionKey is returned when an options record contains a key
	// outside the schema. The offending key is attached as "key".
	ErrUnknownOptionKey = zerr.New("unknown option key")

	// ErrInvalidOptionValue is returned when an option value is outside its
	// closed set. The offending key and value are attached as "key"/"value".
	ErrInvalidOptionValue = zerr.New("invalid option value")

	// ErrConfigReadFailed is returned when an activation file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read activation file")

	// ErrConfigParseFailed is returned when an activation file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse activation file")

	// ErrConfigEvalFailed is returned when an executable activation file
	// cannot be evaluated.
	ErrConfigEvalFailed = zerr.New("failed to evaluate activation script")

	// ErrConfigEvalUnavailable is returned when an executable activation file
	// is present but no script evaluator is configured.
	ErrConfigEvalUnavailable = zerr.New("activation script found but no evaluator configured")

	// ErrManifestParseFailed is returned when a dependency manifest exists
	// but cannot be parsed.
	ErrManifestParseFailed = zerr.New("failed to parse manifest")

	// ErrSourceNotFound is returned when a file handed to Translate does not exist.
	ErrSourceNotFound = zerr.New("source file not found")

	// ErrTranslationFailed wraps an error reported by the translator.
	// Translation failures halt loading of the affected file.
	ErrTranslationFailed = zerr.New("translation failed")

	// ErrTranslatorUnavailable is returned by Translate when no translator
	// collaborator was configured.
	ErrTranslatorUnavailable = zerr.New("no translator configured")

	// ErrNoProject is returned by operations that require a resolved project
	// when resolution yielded none.
	ErrNoProject = zerr.New("no project configuration found")

	// ErrWatcherUnavailable is returned by Watch when no configuration
	// watcher was configured.
	ErrWatcherUnavailable = zerr.New("no configuration watcher configured")

	// ErrScopeViolation is recorded (never propagated) when a cache write
	// would escape its declared scope directory.
	ErrScopeViolation = zerr.New("cache write outside declared scope")
)
