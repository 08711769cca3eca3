// Package errors formats Simplex diagnostics — parser, analyzer and
// evaluator errors — with source context and a caret pointing at the
// offending column, the way the Simplex CLI reports them to stderr.
package errors

import (
	"fmt"
	"strings"

	"github.com/markchucarroll/simplex/internal/token"
)

// Kind classifies a diagnostic per spec.md §7's error taxonomy.
type Kind string

const (
	Parser             Kind = "parser"
	Analysis           Kind = "analysis"
	Undefined          Kind = "undefined"
	InvalidParameter   Kind = "invalid-parameter"
	UnsupportedOp      Kind = "unsupported-operation"
	Evaluation         Kind = "evaluation"
)

// CompilerError is a single diagnostic with its source position and the
// surrounding source line, ready to be rendered with a caret.
type CompilerError struct {
	Kind    Kind
	Message string
	Source  string
	File    string
	Pos     token.Position
}

// New creates a CompilerError.
func New(kind Kind, pos token.Position, message, source, file string) *CompilerError {
	return &CompilerError{Kind: kind, Pos: pos, Message: message, Source: source, File: file}
}

// Error implements the error interface.
func (e *CompilerError) Error() string { return e.Format(false) }

// Format renders the error with a source line and caret. When color is
// true, ANSI escapes highlight the caret and message.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	if e.File != "" {
		sb.WriteString(fmt.Sprintf("%s in %s:%d:%d\n", kindHeader(e.Kind), e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s at %d:%d\n", kindHeader(e.Kind), e.Pos.Line, e.Pos.Column))
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		prefix := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(prefix)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(prefix)+max0(e.Pos.Column-1)))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func kindHeader(k Kind) string {
	switch k {
	case Parser:
		return "Parse error"
	case Analysis:
		return "Analysis error"
	case Undefined:
		return "Undefined reference"
	case InvalidParameter:
		return "Invalid parameter"
	case UnsupportedOp:
		return "Unsupported operation"
	case Evaluation:
		return "Evaluation error"
	default:
		return "Error"
	}
}

func (e *CompilerError) sourceLine(n int) string {
	if e.Source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// FormatErrors renders a list of errors, one after another.
func FormatErrors(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s):\n\n", len(errs)))
	for i, e := range errs {
		sb.WriteString(fmt.Sprintf("[%d/%d] ", i+1, len(errs)))
		sb.WriteString(e.Format(color))
		if i < len(errs)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// FromStrings wraps plain "pos: message" strings (as produced by the
// parser's and analyzer's lightweight error sinks) into CompilerErrors of
// the given kind.
func FromStrings(kind Kind, msgs []string, source, file string) []*CompilerError {
	out := make([]*CompilerError, 0, len(msgs))
	for _, m := range msgs {
		pos, message := splitPos(m)
		out = append(out, New(kind, pos, message, source, file))
	}
	return out
}

// splitPos parses the "file:line:col: message" or "line:col: message"
// prefix produced by the lexer/parser/analyzer error sinks.
func splitPos(s string) (token.Position, string) {
	idx := strings.Index(s, ": ")
	if idx == -1 {
		return token.Position{}, s
	}
	head := s[:idx]
	rest := s[idx+2:]
	parts := strings.Split(head, ":")
	if len(parts) < 2 {
		return token.Position{}, s
	}
	var line, col int
	var file string
	if len(parts) >= 3 {
		file = strings.Join(parts[:len(parts)-2], ":")
		fmt.Sscanf(parts[len(parts)-2], "%d", &line)
		fmt.Sscanf(parts[len(parts)-1], "%d", &col)
	} else {
		fmt.Sscanf(parts[0], "%d", &line)
		fmt.Sscanf(parts[1], "%d", &col)
	}
	return token.Position{File: file, Line: line, Column: col}, rest
}
