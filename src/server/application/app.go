package application

import (
	"net/http"

	analysisgateway "github.com/2highsebas/openarms-backend/src/server/internal/analysis/gateway"
	analysisusecase "github.com/2highsebas/openarms-backend/src/server/internal/analysis/usecase"
	separationgateway "github.com/2highsebas/openarms-backend/src/server/internal/separation/gateway"
	separationusecase "github.com/2highsebas/openarms-backend/src/server/internal/separation/usecase"
	splitjobgateway "github.com/2highsebas/openarms-backend/src/server/internal/splitjob/gateway"
	splitjobusecase "github.com/2highsebas/openarms-backend/src/server/internal/splitjob/usecase"
	aubioanalysis "github.com/2highsebas/openarms-backend/src/shared/analysis/aubio"
	"github.com/2highsebas/openarms-backend/src/shared/audio/codec"
	"github.com/2highsebas/openarms-backend/src/shared/config"
	"github.com/2highsebas/openarms-backend/src/shared/lib/executor"
	"github.com/2highsebas/openarms-backend/src/shared/lib/rabbitmq"
	"github.com/2highsebas/openarms-backend/src/shared/lib/working_dir"
	"github.com/2highsebas/openarms-backend/src/shared/separation/cascade"
	"github.com/2highsebas/openarms-backend/src/shared/separation/engine/demucs"
	"github.com/2highsebas/openarms-backend/src/shared/separation/invoke"
	"github.com/2highsebas/openarms-backend/src/shared/separation/normalize"
	"github.com/2highsebas/openarms-backend/src/shared/separation/pseudo"
	jobstorage "github.com/2highsebas/openarms-backend/src/shared/splitjob/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cockroachdb/errors"
	"github.com/guregu/dynamo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type HTTPMethod string

const (
	GET  HTTPMethod = "GET"
	POST HTTPMethod = "POST"
)

type App struct {
	echo *echo.Echo
	port string
}

type Config struct {
	DynamoConfig       config.Dynamo
	RabbitMQURL        string
	RabbitMQQueueName  string
	CORSAllowedOrigins []string
	Port               string
	Log                bool

	DemucsBinPath  string
	FFmpegBinPath  string
	FFprobeBinPath string
	AubioBinPath   string

	WorkingDirPath    string
	StemOutputDirPath string
}

func NewApp(config Config) App {
	e := echo.New()

	if config.Log {
		e.Use(middleware.Logger())
	}

	corsMiddleware := makeCorsMiddleware(config)

	handleRoute := func(method HTTPMethod, path string, handlerFunc echo.HandlerFunc) {
		params := func() (string, echo.HandlerFunc, echo.MiddlewareFunc) {
			return path, handlerFunc, corsMiddleware
		}

		e.OPTIONS(params())

		switch method {
		case GET:
			e.GET(params())
		case POST:
			e.POST(params())
		default:
			panic("unhandled http method!")
		}
	}

	workingDir := must(working_dir.NewWorkingDir(config.WorkingDirPath))

	separationGateway := makeSeparationGateway(config, workingDir)
	analysisGateway := makeAnalysisGateway(config, workingDir)
	splitJobGateway := makeSplitJobGateway(config)

	// health check
	handleRoute(GET, "/health-check", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// synchronous separation and analysis routes
	handleRoute(POST, "/api/stems", separationGateway.SeparateStems)
	handleRoute(POST, "/api/tempo", analysisGateway.AnalyzeTempo)

	// async separation job routes
	handleRoute(POST, "/api/split-jobs", splitJobGateway.CreateJob)
	handleRoute(GET, "/api/split-jobs/:id", func(c echo.Context) error {
		jobID := c.Param("id")
		return splitJobGateway.GetJob(c, jobID)
	})

	return App{
		echo: e,
		port: config.Port,
	}
}

func (a *App) Start() error {
	err := a.echo.Start(a.port)
	if err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "Couldn't start echo server")
	}

	return nil
}

func (a *App) Stop() error {
	err := a.echo.Close()
	if err != nil {
		return errors.Wrap(err, "Failed to stop echo server")
	}

	return nil
}

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}

	return t
}

func makeSeparationGateway(config Config, workingDir working_dir.WorkingDir) separationgateway.Gateway {
	binExecutor := executor.BinaryFileExecutor{}

	decoder := codec.NewFFmpegDecoder(config.FFmpegBinPath, workingDir, binExecutor)
	normalizer := normalize.NewNormalizer(decoder)
	engine := demucs.NewEngine(config.DemucsBinPath, workingDir, binExecutor)
	invoker := invoke.NewInvoker(engine)
	pseudoSeparator := pseudo.NewSeparator(config.FFmpegBinPath, binExecutor)

	controller := cascade.NewController(normalizer, invoker, pseudoSeparator)
	usecase := separationusecase.NewUsecase(controller, config.StemOutputDirPath)

	return separationgateway.NewGateway(usecase, workingDir)
}

func makeAnalysisGateway(config Config, workingDir working_dir.WorkingDir) analysisgateway.Gateway {
	analyzer := aubioanalysis.NewAnalyzer(
		config.AubioBinPath,
		config.FFprobeBinPath,
		executor.BinaryFileExecutor{})

	usecase := analysisusecase.NewUsecase(analyzer)
	return analysisgateway.NewGateway(usecase, workingDir)
}

func makeSplitJobGateway(config Config) splitjobgateway.Gateway {
	jobStore := jobstorage.NewDB(makeDynamoDB(config.DynamoConfig))
	publisher := makeRabbitMQPublisher(config)

	usecase := splitjobusecase.NewUsecase(jobStore, publisher)
	return splitjobgateway.NewGateway(usecase)
}

func makeRabbitMQPublisher(config Config) *rabbitmq.QueuePublisher {
	publisher, err := rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName)
	if err != nil {
		panic(errors.Wrap(err, "Failed to create rabbitMQ publisher"))
	}

	return publisher
}

func makeDynamoDB(dynamoConfig config.Dynamo) *dynamo.DB {
	dbSession := session.Must(session.NewSession())

	var dbConfig *aws.Config

	switch t := dynamoConfig.(type) {
	case config.ProdDynamo:
		dbConfig = aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region)

	case config.LocalDynamo:
		dbConfig = aws.NewConfig().
			WithCredentials(credentials.NewStaticCredentials(
				t.AccessKeyID,
				t.SecretAccessKey,
				"",
			)).
			WithRegion(t.Region).
			WithEndpoint(t.Host)

	default:
		panic("Unexpected dynamo config type")
	}

	return dynamo.New(dbSession, dbConfig)
}

func makeCorsMiddleware(config Config) echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: config.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	})
}
