package application

import (
	"github.com/2highsebas/openarms-backend/src/shared/audio/codec"
	"github.com/2highsebas/openarms-backend/src/shared/config"
	"github.com/2highsebas/openarms-backend/src/shared/lib/cerr"
	"github.com/2highsebas/openarms-backend/src/shared/lib/executor"
	"github.com/2highsebas/openarms-backend/src/shared/lib/rabbitmq"
	"github.com/2highsebas/openarms-backend/src/shared/lib/working_dir"
	"github.com/2highsebas/openarms-backend/src/shared/separation/cascade"
	"github.com/2highsebas/openarms-backend/src/shared/separation/engine/demucs"
	"github.com/2highsebas/openarms-backend/src/shared/separation/invoke"
	"github.com/2highsebas/openarms-backend/src/shared/separation/normalize"
	"github.com/2highsebas/openarms-backend/src/shared/separation/pseudo"
	"github.com/2highsebas/openarms-backend/src/shared/splitjob/entity"
	jobstorage "github.com/2highsebas/openarms-backend/src/shared/splitjob/storage"
	cloudstorage "github.com/2highsebas/openarms-backend/src/worker/internal/application/cloud_storage/entity"
	filestore "github.com/2highsebas/openarms-backend/src/worker/internal/application/cloud_storage/store"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/job_router"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/separate"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/transfer"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/jobs/transfer/download"
	"github.com/2highsebas/openarms-backend/src/worker/internal/application/worker"
	"github.com/2highsebas/openarms-backend/src/worker/internal/lib/storagepath"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/guregu/dynamo"
	"github.com/rabbitmq/amqp091-go"
	"google.golang.org/api/option"
)

func must[T any](t T, err error) T {
	if err != nil {
		panic(err)
	}

	return t
}

type App struct {
	worker worker.QueueWorker
}

type Config struct {
	RabbitMQURL        string
	RabbitMQQueueName  string
	DynamoConfig       config.Dynamo
	CloudStorageConfig config.CloudStorage

	DemucsBinPath string
	FFmpegBinPath string

	TransferWorkingDirPath string
	SeparateWorkingDirPath string
}

func NewApp(config Config) App {
	consumerConn := must(amqp091.Dial(config.RabbitMQURL))

	return App{
		worker: newWorker(config, consumerConn),
	}
}

func (a *App) Start() error {
	err := a.worker.Start()
	if err != nil {
		return cerr.Wrap(err).Error("Failed to start worker")
	}

	return nil
}

func (a *App) Stop() {
	a.worker.Stop()
}

func newWorker(config Config, consumerConn *amqp091.Connection) worker.QueueWorker {
	publisher := newPublisher(config)

	jobStore := jobstorage.NewDB(newDynamoDB(config.DynamoConfig))
	queueWorker := must(worker.NewQueueWorkerFromConnection(
		consumerConn,
		config.RabbitMQQueueName,
		newJobRouter(config, jobStore, publisher)))

	return queueWorker
}

func newPublisher(config Config) *rabbitmq.QueuePublisher {
	return must(rabbitmq.NewQueuePublisher(config.RabbitMQURL, config.RabbitMQQueueName))
}

func newDynamoDB(dynamoConfig config.Dynamo) *dynamo.DB {
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

func newGoogleFileStore(cloudStorageConfig config.CloudStorage) filestore.GoogleFileStore {
	switch t := cloudStorageConfig.(type) {
	case config.ProdCloudStorage:
		return must(filestore.NewGoogleFileStore(
			t.StorageHost,
			option.WithCredentialsJSON([]byte(t.SecretKey)),
		))

	default:
		panic("Unrecognized cloud storage config")
	}
}

func newJobRouter(config Config, jobStore entity.Store, publisher rabbitmq.Publisher) job_router.JobRouter {
	pathGenerator := storagepath.Generator{
		Host:   config.CloudStorageConfig.GetStorageHost(),
		Bucket: config.CloudStorageConfig.GetBucket(),
	}

	fileStore := newGoogleFileStore(config.CloudStorageConfig)

	return job_router.NewJobRouter(
		jobStore,
		publisher,
		newTransferJobHandler(config, jobStore, fileStore, pathGenerator),
		newSeparateJobHandler(config, jobStore, fileStore, pathGenerator))
}

func newTransferJobHandler(config Config, jobStore entity.Store, fileStore cloudstorage.FileStore, pathGenerator storagepath.Generator) transfer.JobHandler {
	transferrer := must(transfer.NewTransferrer(
		download.NewGenericDLer(),
		fileStore,
		pathGenerator,
		config.TransferWorkingDirPath))

	return transfer.NewJobHandler(transferrer, jobStore)
}

func newSeparateJobHandler(config Config, jobStore entity.Store, fileStore cloudstorage.FileStore, pathGenerator storagepath.Generator) separate.JobHandler {
	binExecutor := executor.BinaryFileExecutor{}

	workingDir := must(working_dir.NewWorkingDir(config.SeparateWorkingDirPath))

	decoder := codec.NewFFmpegDecoder(config.FFmpegBinPath, workingDir, binExecutor)
	normalizer := normalize.NewNormalizer(decoder)
	engine := demucs.NewEngine(config.DemucsBinPath, workingDir, binExecutor)
	invoker := invoke.NewInvoker(engine)
	pseudoSeparator := pseudo.NewSeparator(config.FFmpegBinPath, binExecutor)

	controller := cascade.NewController(normalizer, invoker, pseudoSeparator)

	return must(separate.NewJobHandler(
		controller,
		jobStore,
		fileStore,
		pathGenerator,
		config.SeparateWorkingDirPath))
}
