// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE streams into audio.Source values,
// backed by go-audio/wav, and can write 16-bit PCM WAV files.
package wav
