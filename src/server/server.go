package main

import (
	"path"
	"strings"

	"github.com/2highsebas/openarms-backend/src/server/application"
	"github.com/2highsebas/openarms-backend/src/shared/config"
	"github.com/2highsebas/openarms-backend/src/shared/config/dev"
	"github.com/2highsebas/openarms-backend/src/shared/config/envvar"
	"github.com/2highsebas/openarms-backend/src/shared/config/local"
	"github.com/2highsebas/openarms-backend/src/shared/config/prod"
	"github.com/2highsebas/openarms-backend/src/shared/lib/env"
)

func main() {
	var appConfig application.Config

	switch env.Get() {
	case env.Production:
		commaSeparatedOrigins := envvar.MustGet(envvar.ALLOWED_FE_ORIGINS)
		allowedOrigins := strings.Split(commaSeparatedOrigins, ",")

		appConfig = application.Config{
			DynamoConfig: config.ProdDynamo{
				AccessKeyID:     envvar.MustGet(envvar.AWS_ACCESS_KEY_ID),
				SecretAccessKey: envvar.MustGet(envvar.AWS_SECRET_ACCESS_KEY),
				Region:          prod.DynamoDBRegion,
			},
			RabbitMQURL:        envvar.MustGet(envvar.RABBITMQ_URL),
			RabbitMQQueueName:  envvar.MustGet(envvar.RABBITMQ_QUEUE_NAME),
			CORSAllowedOrigins: allowedOrigins,
			Port:               ":5000",
			Log:                true,
			DemucsBinPath:      envvar.MustGet(envvar.DEMUCS_BIN_PATH),
			FFmpegBinPath:      envvar.MustGet(envvar.FFMPEG_BIN_PATH),
			FFprobeBinPath:     envvar.MustGet(envvar.FFPROBE_BIN_PATH),
			AubioBinPath:       envvar.MustGet(envvar.AUBIO_BIN_PATH),
			WorkingDirPath:     envvar.MustGet(envvar.WORKING_DIR_PATH),
			StemOutputDirPath:  envvar.MustGet(envvar.STEM_OUTPUT_DIR_PATH),
		}

	case env.Development:
		appConfig = application.Config{
			DynamoConfig:       dev.DynamoConfig,
			RabbitMQURL:        dev.RabbitMQHost,
			RabbitMQQueueName:  dev.RabbitMQQueueName,
			CORSAllowedOrigins: []string{"*"},
			Port:               ":5000",
			Log:                true,
			DemucsBinPath:      config.DemucsPath(),
			FFmpegBinPath:      config.FFmpegPath(),
			FFprobeBinPath:     config.FFprobePath(),
			AubioBinPath:       config.AubioPath(),
			WorkingDirPath:     path.Join(local.ProjectRoot(), "/src/server/wd/uploads"),
			StemOutputDirPath:  path.Join(local.ProjectRoot(), "/src/server/wd/stems"),
		}

	default:
		panic("Unexpected environment")
	}

	app := application.NewApp(appConfig)
	if err := app.Start(); err != nil {
		panic(err)
	}
}
