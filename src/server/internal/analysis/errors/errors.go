package analysiserrors

import (
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
)

const (
	AnalysisFailedCode = api.ErrorCode("analysis_failed")
)
