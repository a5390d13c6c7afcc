// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF streams into audio.Source values, backed
// by go-audio/aiff.
package aiff
