package logging

import (
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StartupLogger collects process identity, resources, models and feature
// flags, then emits one structured event summarising how the process was
// configured at cold start.
type StartupLogger struct {
	name         string
	commitHash   string
	initDuration time.Duration

	s3Buckets    map[string]string
	dynamoTables map[string]string
	ssmParams    map[string]string
	models       map[string]string
	features     map[string]bool
	config       map[string]string
}

// NewStartupLogger creates a StartupLogger for the named binary
// (e.g. "edit-lambda").
func NewStartupLogger(name string) *StartupLogger {
	return &StartupLogger{
		name:         name,
		s3Buckets:    make(map[string]string),
		dynamoTables: make(map[string]string),
		ssmParams:    make(map[string]string),
		models:       make(map[string]string),
		features:     make(map[string]bool),
		config:       make(map[string]string),
	}
}

// CommitHash sets the git commit baked into the binary at build time.
func (s *StartupLogger) CommitHash(hash string) *StartupLogger {
	s.commitHash = hash
	return s
}

// S3Bucket registers an S3 bucket used by this process.
func (s *StartupLogger) S3Bucket(label, name string) *StartupLogger {
	s.s3Buckets[label] = name
	return s
}

// DynamoTable registers a DynamoDB table used by this process.
func (s *StartupLogger) DynamoTable(label, name string) *StartupLogger {
	s.dynamoTables[label] = name
	return s
}

// SSMParam registers an SSM parameter path. Only the path is logged, never
// the value.
func (s *StartupLogger) SSMParam(label, path string) *StartupLogger {
	s.ssmParams[label] = path
	return s
}

// Model registers a model id (e.g. "intent", "imagen").
func (s *StartupLogger) Model(role, id string) *StartupLogger {
	s.models[role] = id
	return s
}

// Feature registers a boolean feature flag (e.g. "inpaint").
func (s *StartupLogger) Feature(name string, enabled bool) *StartupLogger {
	s.features[name] = enabled
	return s
}

// Config registers a non-sensitive configuration key-value pair.
func (s *StartupLogger) Config(key, value string) *StartupLogger {
	s.config[key] = value
	return s
}

// InitDuration records how long initialization took.
func (s *StartupLogger) InitDuration(d time.Duration) *StartupLogger {
	s.initDuration = d
	return s
}

// EnvOrDefault returns the value of the named environment variable, or
// defaultVal if it is empty or unset.
func EnvOrDefault(envVar, defaultVal string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return defaultVal
}

// Log emits a single structured INFO event with everything collected.
func (s *StartupLogger) Log() {
	process := zerolog.Dict().
		Str("name", s.name).
		Str("functionName", os.Getenv("AWS_LAMBDA_FUNCTION_NAME")).
		Str("region", os.Getenv("AWS_REGION")).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Str("logLevel", os.Getenv(LevelEnv))
	if s.commitHash != "" {
		process = process.Str("commitHash", s.commitHash)
	}
	evt := log.Info().Dict("process", process)

	// Only non-empty groups are attached.
	resources := zerolog.Dict()
	hasResources := false
	for key, m := range map[string]map[string]string{
		"s3Buckets":    s.s3Buckets,
		"dynamoTables": s.dynamoTables,
		"ssmParams":    s.ssmParams,
	} {
		if len(m) > 0 {
			resources = resources.Dict(key, dictFromMap(m))
			hasResources = true
		}
	}
	if hasResources {
		evt = evt.Dict("resources", resources)
	}
	if len(s.models) > 0 {
		evt = evt.Dict("models", dictFromMap(s.models))
	}
	if len(s.features) > 0 {
		d := zerolog.Dict()
		for k, v := range s.features {
			d = d.Bool(k, v)
		}
		evt = evt.Dict("features", d)
	}
	if len(s.config) > 0 {
		evt = evt.Dict("config", dictFromMap(s.config))
	}
	if s.initDuration > 0 {
		evt = evt.Dur("initDuration", s.initDuration)
	}
	evt.Msg("Cold start complete")
}

func dictFromMap(m map[string]string) *zerolog.Event {
	d := zerolog.Dict()
	for k, v := range m {
		d = d.Str(k, v)
	}
	return d
}
