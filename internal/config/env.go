package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3200"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".taskdispatch/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"taskdispatch/"`
	S3Region string `envconfig:"S3_REGION" default:"eu-central-1"`
}

// DispatcherEnv holds the base URL of every dispatcher family plus the shared
// HTTP client settings. Each family is a separately deployed service; the
// defaults match the docker-compose layout used in development.
type DispatcherEnv struct {
	SQLURL        string `envconfig:"DISPATCHER_SQL_URL" default:"http://localhost:8081"`
	DatalogURL    string `envconfig:"DISPATCHER_DATALOG_URL" default:"http://localhost:8081"`
	XQueryURL     string `envconfig:"DISPATCHER_XQUERY_URL" default:"http://localhost:8081"`
	DroolsURL     string `envconfig:"DISPATCHER_DROOLS_URL" default:"http://localhost:8081"`
	PmURL         string `envconfig:"DISPATCHER_PM_URL" default:"http://localhost:8082"`
	BpmnURL       string `envconfig:"DISPATCHER_BPMN_URL" default:"http://localhost:8083"`
	SubmissionURL string `envconfig:"DISPATCHER_SUBMISSION_URL" default:"http://localhost:8081"`

	MaxInFlight   int           `envconfig:"DISPATCHER_MAX_IN_FLIGHT" default:"20"`
	ClientTimeout time.Duration `envconfig:"DISPATCHER_CLIENT_TIMEOUT" default:"30s"`
}

type Env struct {
	BaseEnv
	StorageEnv
	DispatcherEnv
}

const namespace = "TASKDISPATCH"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	return &env, nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

func BaseEnvFromEnv(env *Env) *BaseEnv {
	return &env.BaseEnv
}

func StorageEnvFromEnv(env *Env) *StorageEnv {
	return &env.StorageEnv
}

func DispatcherEnvFromEnv(env *Env) *DispatcherEnv {
	return &env.DispatcherEnv
}
