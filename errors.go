// SPDX-License-Identifier: EPL-2.0

package abloop

import "errors"

var (
	ErrNoDecoder = errors.New("no decoder registered for file format")
)
