// Package lambdaboot provides the Lambda cold-start bootstrap: AWS config,
// S3 image storage, the DynamoDB state store, SSM secrets and startup
// logging, so the Lambda's init() is a short composition of helpers.
package lambdaboot

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/chat"
	"github.com/fpang/roomedit/internal/imagestore"
	"github.com/fpang/roomedit/internal/logging"
	"github.com/fpang/roomedit/internal/store"
)

// Default SSM parameter names.
const (
	DefaultGeminiKeyParam   = "/roomedit/prod/gemini-api-key"
	DefaultVertexTokenParam = "/roomedit/prod/vertex-access-token"
)

// SSMAPI is the subset of the SSM client used for secrets.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// AWSClients holds the core AWS SDK clients.
type AWSClients struct {
	Config aws.Config
	SSM    *ssm.Client
}

// S3Clients holds the image store and the bucket it writes to.
type S3Clients struct {
	Store  *imagestore.S3Store
	Bucket string
}

// InitAWS loads the default AWS config and returns it along with common clients.
func InitAWS() AWSClients {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return AWSClients{
		Config: cfg,
		SSM:    ssm.NewFromConfig(cfg),
	}
}

// InitS3 creates the S3 image store for the bucket named by bucketEnvVar.
// Images are written under the rooms/ prefix. Fatals if the env var is empty.
func InitS3(cfg aws.Config, bucketEnvVar string) S3Clients {
	bucket := os.Getenv(bucketEnvVar)
	if bucket == "" {
		log.Fatal().Str("envVar", bucketEnvVar).Msg("Bucket environment variable is required")
	}
	client := s3.NewFromConfig(cfg)
	return S3Clients{
		Store:  imagestore.NewS3Store(client, s3.NewPresignClient(client), bucket, "rooms/"),
		Bucket: bucket,
	}
}

// InitDynamo creates the DynamoDB state store for the table named by
// tableEnvVar. Fatals if the env var is empty.
func InitDynamo(cfg aws.Config, tableEnvVar string) *store.DynamoStore {
	tableName := os.Getenv(tableEnvVar)
	if tableName == "" {
		log.Fatal().Str("envVar", tableEnvVar).Msg("DynamoDB table environment variable is required")
	}
	return store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableName)
}

// LoadGeminiKey fetches the Gemini API key from SSM Parameter Store if not
// already set via GEMINI_API_KEY. Fatals on error.
func LoadGeminiKey(ssmClient SSMAPI) {
	if os.Getenv("GEMINI_API_KEY") != "" {
		return
	}
	paramName := logging.EnvOrDefault("SSM_API_KEY_PARAM", DefaultGeminiKeyParam)
	value, err := getParameter(context.Background(), ssmClient, paramName)
	if err != nil {
		log.Fatal().Err(err).Str("param", paramName).Msg("Failed to read API key from SSM")
	}
	os.Setenv("GEMINI_API_KEY", value)
}

// LoadVertexConfig returns the Vertex AI settings used for inpainting. The
// access token comes from VERTEX_AI_TOKEN or, failing that, SSM. Non-fatal:
// without a project or token, inpainting is disabled and a warning is logged.
func LoadVertexConfig(ssmClient SSMAPI) chat.VertexConfig {
	cfg := chat.VertexConfigFromEnv()
	if cfg.ProjectID == "" {
		log.Warn().Msg("VERTEX_AI_PROJECT not set, inpainting disabled")
		return cfg
	}
	if cfg.AccessToken == "" {
		paramName := logging.EnvOrDefault("SSM_VERTEX_TOKEN_PARAM", DefaultVertexTokenParam)
		token, err := getParameter(context.Background(), ssmClient, paramName)
		if err != nil {
			log.Warn().Err(err).Str("param", paramName).Msg("Vertex AI token not found in SSM, inpainting disabled")
			return cfg
		}
		cfg.AccessToken = token
	}
	return cfg
}

func getParameter(ctx context.Context, ssmClient SSMAPI, name string) (string, error) {
	start := time.Now()
	result, err := ssmClient.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &name,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", err
	}
	log.Debug().Str("param", name).Dur("elapsed", time.Since(start)).Msg("Parameter loaded from SSM")
	return aws.ToString(result.Parameter.Value), nil
}

// StartupLog is a convenience wrapper for the startup logger.
func StartupLog(name string, initStart time.Time) *logging.StartupLogger {
	return logging.NewStartupLogger(name).InitDuration(time.Since(initStart))
}
