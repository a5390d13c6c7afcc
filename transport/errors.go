// SPDX-License-Identifier: EPL-2.0

package transport

import "errors"

var (
	ErrInvalidLoop = errors.New("invalid loop region")
)
