// Copyright 2025 The Go Letta Authors
// SPDX-License-Identifier: Apache-2.0

// Package letta provides Go types for the Letta stateful-agent REST
// API: identifiers, pagination metadata, the message union exchanged
// with agents, and the streaming event variants produced while an
// agent turn is in flight.
//
// The companion [github.com/go-letta/letta/client] package implements
// the resilient request layer on top of these types: cursor
// pagination, server-sent-event decoding, and error classification
// with bounded retry.
package letta

// Version is the version of the letta module.
const Version = "0.1.0"
