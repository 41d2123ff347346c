// SPDX-License-Identifier: EPL-2.0

package audmix

import "errors"

var (
	ErrInvalidSource  = errors.New("invalid sound source")
	ErrUnknownGroup   = errors.New("unknown sound group")
	ErrEngineClosed   = errors.New("engine is closed")
	ErrAlreadyRunning = errors.New("engine already running")
	ErrAlreadyStopped = errors.New("engine already suspended")
)
