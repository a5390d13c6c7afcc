// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams into audio.Source values,
// backed by jfreymuth/oggvorbis.
package vorbis
