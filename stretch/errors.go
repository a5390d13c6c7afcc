// SPDX-License-Identifier: EPL-2.0

package stretch

import "errors"

var (
	ErrUnsupportedRatio = errors.New("speed ratio outside supported range")
	ErrBadInput         = errors.New("input length must be multiple of channels")
)
