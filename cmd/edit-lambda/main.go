// Package main provides the Lambda entry point for the room edit API.
//
// It serves internal/httpapi behind API Gateway (HTTP API, payload v2),
// storing room images in S3 and the latest room state in DynamoDB.
//
// Environment:
//
//	MEDIA_BUCKET_NAME      S3 bucket for room images (required)
//	STATE_TABLE_NAME       DynamoDB table for room state (required)
//	ORIGIN_VERIFY_SECRET   expected x-origin-verify header (optional)
//	GEMINI_API_KEY         or SSM_API_KEY_PARAM, read from SSM when unset
//	VERTEX_AI_PROJECT      Imagen inpainting project; VERTEX_AI_TOKEN or SSM_VERTEX_TOKEN_PARAM
//	ROOMEDIT_CANVAS        square output resolution (default 1024)
package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/chat"
	"github.com/fpang/roomedit/internal/httpapi"
	"github.com/fpang/roomedit/internal/lambdaboot"
	"github.com/fpang/roomedit/internal/logging"
	"github.com/fpang/roomedit/internal/orchestrator"
	"github.com/fpang/roomedit/internal/roomedit"
)

var server *httpapi.Server

func init() {
	initStart := time.Now()
	logging.Init()

	clients := lambdaboot.InitAWS()
	images := lambdaboot.InitS3(clients.Config, "MEDIA_BUCKET_NAME")
	states := lambdaboot.InitDynamo(clients.Config, "STATE_TABLE_NAME")
	lambdaboot.LoadGeminiKey(clients.SSM)
	vertex := lambdaboot.LoadVertexConfig(clients.SSM)

	client, err := chat.NewClient(context.Background(), os.Getenv("GEMINI_API_KEY"))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}
	model := chat.GetModelName()
	services := chat.NewServices(client, images.Store, model, vertex)

	canvas := roomedit.DefaultResolution
	if v := os.Getenv("ROOMEDIT_CANVAS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			log.Fatal().Str("value", v).Msg("ROOMEDIT_CANVAS must be a positive integer")
		}
		canvas = n
	}

	orch := orchestrator.New(orchestrator.Config{
		Language: services.Intent,
		Detector: services.Detection,
		Synth:    services.Imagen,
		States:   states,
		Uploads:  images.Store,
		Canvas:   canvas,
	})

	originSecret := os.Getenv("ORIGIN_VERIFY_SECRET")
	if originSecret == "" {
		log.Warn().Msg("ORIGIN_VERIFY_SECRET not set, origin verification disabled")
	}

	server = httpapi.NewServer(orch, httpapi.Options{
		Signer:       images.Store,
		OriginSecret: originSecret,
		Canvas:       canvas,
		Version:      commitHash,
	})

	lambdaboot.StartupLog("edit-lambda", initStart).
		CommitHash(commitHash).
		S3Bucket("mediaBucket", images.Bucket).
		DynamoTable("stateTable", os.Getenv("STATE_TABLE_NAME")).
		SSMParam("geminiKey", logging.EnvOrDefault("SSM_API_KEY_PARAM", lambdaboot.DefaultGeminiKeyParam)).
		Model("intent", model).
		Model("imagen", chat.GetImagenModel()).
		Feature("inpainting", vertex.Configured()).
		Feature("originVerify", originSecret != "").
		Config("canvas", strconv.Itoa(canvas)).
		Config("buildTime", buildTime).
		Log()
}

func main() {
	adapter := httpadapter.NewV2(server.Handler())
	lambda.Start(adapter.ProxyWithContext)
}
