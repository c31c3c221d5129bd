package gridist

import (
	"errors"

	"github.com/gridist/gridist/layout"
	"github.com/gridist/gridist/palette"
)

// Every error returned by this package matches one of these with errors.Is
var (
	ErrConfig  = layout.ErrInvalidConfig
	ErrPalette = palette.ErrMalformed
	ErrDecode  = errors.New("gridist: cannot decode source")
	ErrBounds  = errors.New("gridist: crop rectangle outside canvas")
	ErrEncode  = errors.New("gridist: cannot encode tile")
)
