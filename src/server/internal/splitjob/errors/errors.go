package splitjoberrors

import (
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
)

const (
	JobNotFoundCode = api.ErrorCode("job_not_found")
	BadJobDataCode  = api.ErrorCode("bad_job_data")
)
