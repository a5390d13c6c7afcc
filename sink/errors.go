// SPDX-License-Identifier: EPL-2.0

package sink

import "errors"

var (
	ErrSinkClosed = errors.New("sink closed")
)
