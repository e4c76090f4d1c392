package separationerrors

import (
	"github.com/2highsebas/openarms-backend/src/server/internal/errors/api"
)

const (
	UnreadableAudioCode  = api.ErrorCode("unreadable_audio")
	SeparationFailedCode = api.ErrorCode("separation_failed")
)
