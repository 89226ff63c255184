package gpu

import "errors"

var (
	ErrNoDevice      = errors.New("no suitable device")
	ErrNoDepthFormat = errors.New("no supported depth format")
	ErrOutOfDate     = errors.New("swapchain out of date")
	ErrTimeout       = errors.New("timeout")
	ErrNotMappable   = errors.New("buffer is not host visible")
	ErrPoolFull      = errors.New("descriptor pool exhausted")
)
