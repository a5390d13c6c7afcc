// SPDX-License-Identifier: EPL-2.0

package clip

import "errors"

var (
	ErrDecode    = errors.New("decode failed")
	ErrBadFormat = errors.New("invalid sample format")
	ErrNoClip    = errors.New("no clip loaded")
)
