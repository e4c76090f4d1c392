package upload

import (
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
)

const (
	BadFileCode = api.ErrorCode("bad_upload_file")
)
