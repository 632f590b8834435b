// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package ingest turns raw edge-list and demographic uploads into a
// validated, frozen graph.Graph. Parsing is strict: the first malformed
// record aborts the build with a *ParseError carrying its line number.
package ingest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/friendrec/internal/graph"
)

// Source names used in ParseError.
const (
	SourceEdges        = "edges"
	SourceDemographics = "demographics"
)

// DefaultAttributeNames is the demographic record schema: one identifier
// followed by these values, in this order.
var DefaultAttributeNames = []string{"gender", "age", "city", "education"}

// ParseError describes a malformed input record.
type ParseError struct {
	// Source is SourceEdges or SourceDemographics.
	Source string

	// Line is the 1-based line number of the record.
	Line int

	// Reason is a human-readable description.
	Reason string

	// Err is the underlying cause, if any (e.g. graph.ErrInvalidEdge).
	Err error
}

// Error implements error.
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s:%d: %s: %v", e.Source, e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s:%d: %s", e.Source, e.Line, e.Reason)
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Options controls ingestion limits and schema.
type Options struct {
	// MaxLineBytes bounds a single record. Default: 1 MiB.
	MaxLineBytes int

	// MaxUsers bounds the number of distinct users. Zero means unlimited.
	MaxUsers int

	// AttributeNames is the demographic schema. Default: DefaultAttributeNames.
	AttributeNames []string
}

func (o Options) withDefaults() Options {
	if o.MaxLineBytes <= 0 {
		o.MaxLineBytes = 1 << 20
	}
	if len(o.AttributeNames) == 0 {
		o.AttributeNames = DefaultAttributeNames
	}
	return o
}

// Build parses the edge list and, if demographics is non-nil, the
// demographic records into a frozen Graph. Any malformed record aborts the
// whole build; no partial graph is returned.
func Build(ctx context.Context, edges io.Reader, demographics io.Reader, opts Options) (*graph.Graph, error) {
	if edges == nil {
		return nil, errors.New("edge input is required")
	}
	opts = opts.withDefaults()

	b := &builder{g: graph.New(), opts: opts}
	if err := b.readEdges(ctx, edges); err != nil {
		return nil, err
	}
	if demographics != nil {
		if err := b.readDemographics(ctx, demographics); err != nil {
			return nil, err
		}
	}

	b.g.Freeze()
	return b.g, nil
}

type builder struct {
	g    *graph.Graph
	opts Options
	seen map[string]int
}

// scanLines calls fn for every non-blank, non-comment line.
func (b *builder) scanLines(ctx context.Context, source string, r io.Reader, fn func(line int, text string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(64*1024, b.opts.MaxLineBytes)), b.opts.MaxLineBytes)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := fn(lineNo, text); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return &ParseError{Source: source, Line: lineNo + 1, Reason: "record exceeds maximum length"}
		}
		return fmt.Errorf("read %s: %w", source, err)
	}
	return ctx.Err()
}

func (b *builder) readEdges(ctx context.Context, r io.Reader) error {
	return b.scanLines(ctx, SourceEdges, r, func(line int, text string) error {
		user, friends, reason := parseEdgeRecord(text)
		if reason != "" {
			return &ParseError{Source: SourceEdges, Line: line, Reason: reason}
		}

		if err := b.addUser(SourceEdges, line, user, nil); err != nil {
			return err
		}
		for _, f := range friends {
			if err := b.addUser(SourceEdges, line, f, nil); err != nil {
				return err
			}
			if err := b.g.AddEdge(user, f); err != nil {
				return &ParseError{Source: SourceEdges, Line: line, Reason: "invalid friendship", Err: err}
			}
		}
		return nil
	})
}

func (b *builder) readDemographics(ctx context.Context, r io.Reader) error {
	b.seen = make(map[string]int)
	return b.scanLines(ctx, SourceDemographics, r, func(line int, text string) error {
		id, attrs, reason := parseDemographicRecord(text, b.opts.AttributeNames)
		if reason != "" {
			return &ParseError{Source: SourceDemographics, Line: line, Reason: reason}
		}
		if first, dup := b.seen[id]; dup {
			return &ParseError{
				Source: SourceDemographics,
				Line:   line,
				Reason: fmt.Sprintf("duplicate record for user %q (first seen on line %d)", id, first),
			}
		}
		b.seen[id] = line
		return b.addUser(SourceDemographics, line, id, attrs)
	})
}

func (b *builder) addUser(source string, line int, id string, attrs map[string]string) error {
	isNew := !b.g.HasUser(id)
	if isNew && b.opts.MaxUsers > 0 && b.g.NumUsers() >= b.opts.MaxUsers {
		return &ParseError{Source: source, Line: line, Reason: fmt.Sprintf("user limit of %d exceeded", b.opts.MaxUsers)}
	}
	if err := b.g.AddUser(id, attrs); err != nil {
		return &ParseError{Source: source, Line: line, Reason: "invalid user", Err: err}
	}
	return nil
}
