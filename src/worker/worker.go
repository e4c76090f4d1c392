package main

import (
	"path"

	"github.com/2highsebas/openarms-backend/src/shared/config"
	"github.com/2highsebas/openarms-backend/src/shared/config/dev"
	"github.com/2highsebas/openarms-backend/src/shared/config/envvar"
	"github.com/2highsebas/openarms-backend/src/shared/config/local"
	"github.com/2highsebas/openarms-backend/src/shared/config/prod"
	"github.com/2highsebas/openarms-backend/src/shared/lib/env"
	"github.com/2highsebas/openarms-backend/src/worker/application"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		appConfig = application.Config{
			DynamoConfig: config.ProdDynamo{
				AccessKeyID:     envvar.MustGet(envvar.AWS_ACCESS_KEY_ID),
				SecretAccessKey: envvar.MustGet(envvar.AWS_SECRET_ACCESS_KEY),
				Region:          prod.DynamoDBRegion,
			},
			CloudStorageConfig: config.ProdCloudStorage{
				StorageHost: prod.GOOGLE_STORAGE_HOST,
				SecretKey:   envvar.MustGet(envvar.GOOGLE_CLOUD_KEY),
				BucketName:  envvar.MustGet(envvar.GOOGLE_CLOUD_STORAGE_BUCKET_NAME),
			},
			RabbitMQURL:            envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName:      envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			DemucsBinPath:          envvar.MustGet(envvar.DEMUCS_BIN_PATH),
			FFmpegBinPath:          envvar.MustGet(envvar.FFMPEG_BIN_PATH),
			TransferWorkingDirPath: envvar.MustGet(envvar.WORKING_DIR_PATH) + "/transfer",
			SeparateWorkingDirPath: envvar.MustGet(envvar.WORKING_DIR_PATH) + "/separate",
		}

	case env.Development:
		appConfig = application.Config{
			DynamoConfig: dev.DynamoConfig,
			// using prod for now because the local fake GCS doesn't persist
			CloudStorageConfig: config.ProdCloudStorage{
				StorageHost: prod.GOOGLE_STORAGE_HOST,
				SecretKey:   envvar.MustGet(envvar.GOOGLE_CLOUD_KEY),
				BucketName:  envvar.MustGet(envvar.GOOGLE_CLOUD_STORAGE_BUCKET_NAME),
			},
			RabbitMQURL:            dev.RabbitMQHost,
			RabbitMQQueueName:      dev.RabbitMQQueueName,
			DemucsBinPath:          config.DemucsPath(),
			FFmpegBinPath:          config.FFmpegPath(),
			TransferWorkingDirPath: path.Join(local.ProjectRoot(), "/src/worker/wd/transfer"),
			SeparateWorkingDirPath: path.Join(local.ProjectRoot(), "/src/worker/wd/separate"),
		}

	default:
		panic("Unexpected environment")
	}

	app := application.NewApp(appConfig)
	if err := app.Start(); err != nil {
		panic(err)
	}
}
