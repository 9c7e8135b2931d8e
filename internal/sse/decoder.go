// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

// Package sse decodes the text/event-stream wire format into discrete
// frames. The decoder is purely pull-driven and holds at most one
// partially accumulated frame, so memory is bounded by the largest
// single frame rather than the stream length.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// Frame is one dispatched server-sent event: the declared event type,
// the accumulated data payload (multiple data lines joined by
// newlines), and the optional event ID. A Frame is transient; it does
// not reference decoder state and is discarded after use.
type Frame struct {
	Event string
	Data  string
	ID    string
}

// Decoder reads frames from a text/event-stream byte stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next returns the next dispatched frame. It returns io.EOF when the
// stream ends cleanly on a frame boundary, and io.ErrUnexpectedEOF
// when the stream ends with a partially accumulated frame. Any other
// error is a transport read failure.
func (d *Decoder) Next() (Frame, error) {
	var (
		frame   Frame
		data    strings.Builder
		hasData bool
		started bool
	)

	for {
		line, err := d.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// A final unterminated line still counts toward the
				// current frame for the mid-frame detection below.
				if line != "" {
					started = true
				}
				if started {
					return Frame{}, io.ErrUnexpectedEOF
				}
				return Frame{}, io.EOF
			}
			return Frame{}, err
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")

		if line == "" {
			// Blank line dispatches the accumulated frame. A blank
			// line with nothing accumulated is skipped.
			if !started {
				continue
			}
			frame.Data = data.String()
			return frame, nil
		}

		if strings.HasPrefix(line, ":") {
			// Comment line, discarded without touching the frame.
			continue
		}

		field, value := splitField(line)
		switch field {
		case "data":
			if hasData {
				data.WriteByte('\n')
			}
			data.WriteString(value)
			hasData = true
			started = true
		case "event":
			frame.Event = value
			started = true
		case "id":
			frame.ID = value
			started = true
		case "retry":
			// Reconnection interval hint; reconnection is the
			// caller's concern, not the decoder's.
		default:
			// Unknown fields are ignored per the wire convention.
		}
	}
}

// splitField splits "field: value", stripping the single optional
// space after the colon. A line without a colon is a field with an
// empty value.
func splitField(line string) (field, value string) {
	field, value, ok := strings.Cut(line, ":")
	if !ok {
		return line, ""
	}
	return field, strings.TrimPrefix(value, " ")
}
