package util

import (
	"errors"
	"fmt"

	"github.com/minicpp/minicpp/pkg/token"
)

// Diagnostic is the positioned payload shared by every front end error
type Diagnostic struct {
	Message string
	Source  string
	Line    int
	Column  int
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("File \"%s\" [%d:%d]: error: %s", d.Source, d.Line, d.Column, d.Message)
}

func at(source string, lx token.Lexeme, msg string) Diagnostic {
	return Diagnostic{Message: msg, Source: source, Line: lx.Line, Column: lx.Column}
}

// AsDiagnostic extracts the position and message from any front end error
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Lexical errors

type LexicalError struct{ Diagnostic }

func (e *LexicalError) Unwrap() error { return &e.Diagnostic }

func NewLexicalError(source string, line, column int, msg string) *LexicalError {
	return &LexicalError{Diagnostic{Message: msg, Source: source, Line: line, Column: column}}
}

// Parser errors

type ParserError struct{ Diagnostic }

func (e *ParserError) Unwrap() error { return &e.Diagnostic }

func NewParserError(source string, lx token.Lexeme, format string, args ...any) *ParserError {
	return &ParserError{at(source, lx, fmt.Sprintf(format, args...))}
}

// ExpectedError reports an unmet grammar expectation
type ExpectedError struct {
	ParserError
	What string
}

func (e *ExpectedError) Unwrap() error { return &e.ParserError }

func NewExpectedError(source string, lx token.Lexeme, what string) *ExpectedError {
	return &ExpectedError{ParserError{at(source, lx, what+" was expected here.")}, what}
}

type UsingBeforeDeclarationError struct {
	ParserError
	Name string
}

func (e *UsingBeforeDeclarationError) Unwrap() error { return &e.ParserError }

func NewUsingBeforeDeclarationError(source string, lx token.Lexeme, name string) *UsingBeforeDeclarationError {
	msg := fmt.Sprintf("Variable %s using before declaration.", name)
	return &UsingBeforeDeclarationError{ParserError{at(source, lx, msg)}, name}
}

type DoubleDeclarationError struct {
	ParserError
	Name string
}

func (e *DoubleDeclarationError) Unwrap() error { return &e.ParserError }

func NewDoubleDeclarationError(source string, lx token.Lexeme, name string) *DoubleDeclarationError {
	msg := fmt.Sprintf("Redeclaration of variable %s.", name)
	return &DoubleDeclarationError{ParserError{at(source, lx, msg)}, name}
}

// Semantic errors

type SemanticError struct{ Diagnostic }

func (e *SemanticError) Unwrap() error { return &e.Diagnostic }

func NewSemanticError(source string, lx token.Lexeme, format string, args ...any) *SemanticError {
	return &SemanticError{at(source, lx, fmt.Sprintf(format, args...))}
}

type DivisionByZeroError struct{ SemanticError }

func (e *DivisionByZeroError) Unwrap() error { return &e.SemanticError }

func NewDivisionByZeroError(source string, lx token.Lexeme) *DivisionByZeroError {
	return &DivisionByZeroError{SemanticError{at(source, lx, "division by zero.")}}
}

// FunctionArgumentError covers both arity and argument type mismatches
type FunctionArgumentError struct {
	SemanticError
	Function string
}

func (e *FunctionArgumentError) Unwrap() error { return &e.SemanticError }

func NewFunctionArgumentError(source string, lx token.Lexeme, function, format string, args ...any) *FunctionArgumentError {
	return &FunctionArgumentError{SemanticError{at(source, lx, fmt.Sprintf(format, args...))}, function}
}

type VariableUndefinedError struct {
	SemanticError
	Name string
}

func (e *VariableUndefinedError) Unwrap() error { return &e.SemanticError }

func NewVariableUndefinedError(source string, lx token.Lexeme, name string) *VariableUndefinedError {
	msg := fmt.Sprintf("Variable %s is used before it is defined.", name)
	return &VariableUndefinedError{SemanticError{at(source, lx, msg)}, name}
}

type ArrayIndexError struct {
	SemanticError
	Name  string
	Index int64
	Size  int64
}

func (e *ArrayIndexError) Unwrap() error { return &e.SemanticError }

func NewArrayIndexError(source string, lx token.Lexeme, name string, index, size int64) *ArrayIndexError {
	msg := fmt.Sprintf("index %d is out of range for array %s of size %d.", index, name, size)
	return &ArrayIndexError{SemanticError{at(source, lx, msg)}, name, index, size}
}

// MissingLibraryError is raised by stream I/O without the iostream include or the std namespace
type MissingLibraryError struct {
	SemanticError
	Library string
}

func (e *MissingLibraryError) Unwrap() error { return &e.SemanticError }

func NewMissingLibraryError(source string, lx token.Lexeme, msg, library string) *MissingLibraryError {
	return &MissingLibraryError{SemanticError{at(source, lx, msg)}, library}
}

type OperandTypeError struct{ SemanticError }

func (e *OperandTypeError) Unwrap() error { return &e.SemanticError }

func NewOperandTypeError(source string, lx token.Lexeme, format string, args ...any) *OperandTypeError {
	return &OperandTypeError{SemanticError{at(source, lx, fmt.Sprintf(format, args...))}}
}
