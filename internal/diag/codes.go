package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Лексические
	LexInfo               Code = 1000
	LexUnknownChar        Code = 1001
	LexUnterminatedString Code = 1002
	LexUnterminatedChar   Code = 1003
	LexUnterminatedBlock  Code = 1004

	// Синтаксические
	SynInfo                 Code = 2000
	SynUnexpectedToken      Code = 2001
	SynExpectIdentifier     Code = 2002
	SynExpectSemicolon      Code = 2003
	SynExpectLBrace         Code = 2004
	SynExpectRBrace         Code = 2005
	SynExpectLParen         Code = 2006
	SynExpectRParen         Code = 2007
	SynExpectType           Code = 2008
	SynExpectExpression     Code = 2009
	SynUnexpectedTopLevel   Code = 2010
	SynMultipleTopLevel     Code = 2011
	SynMissingTopLevel      Code = 2012
	SynUnclosedDelimiter    Code = 2013
	SynNestingTooDeep       Code = 2014
	SynModifierNotAllowed   Code = 2015
	SynUnsupportedConstruct Code = 2016

	// Кодогенерация
	GenInfo                 Code = 3000
	GenDuplicateDeclaration Code = 3001
	GenUnsupportedConstruct Code = 3002
	GenEntryPointNotFound   Code = 3003
	GenMultipleEntryPoints  Code = 3004
	GenEntryPointNotStatic  Code = 3005
	GenConflictingModifiers Code = 3006
	GenNestingTooDeep       Code = 3007
	GenMalformedTree        Code = 3008
	GenUnusedParameter      Code = 3009
	GenEntryPointSignature  Code = 3010

	// I/O
	IOLoadFileError  Code = 4001
	IOWriteFileError Code = 4002
	IOCacheError     Code = 4003

	// Проект
	ProjInfo            Code = 5000
	ProjManifestMissing Code = 5001
	ProjManifestInvalid Code = 5002
	ProjInvalidProfile  Code = 5003
	ProjNoSources       Code = 5004
	ProjInvalidEntry    Code = 5005

	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:             "Unknown error",
		LexInfo:                 "Lexical information",
		LexUnknownChar:          "Unknown character",
		LexUnterminatedString:   "Unterminated string literal",
		LexUnterminatedChar:     "Unterminated character literal",
		LexUnterminatedBlock:    "Unterminated block comment",
		SynInfo:                 "Syntax information",
		SynUnexpectedToken:      "Unexpected token",
		SynExpectIdentifier:     "Expected identifier",
		SynExpectSemicolon:      "Expected ';'",
		SynExpectLBrace:         "Expected '{'",
		SynExpectRBrace:         "Expected '}'",
		SynExpectLParen:         "Expected '('",
		SynExpectRParen:         "Expected ')'",
		SynExpectType:           "Expected type",
		SynExpectExpression:     "Expected expression",
		SynUnexpectedTopLevel:   "Unexpected top-level item",
		SynMultipleTopLevel:     "More than one top-level member",
		SynMissingTopLevel:      "Missing top-level namespace or class",
		SynUnclosedDelimiter:    "Unclosed delimiter",
		SynNestingTooDeep:       "Nesting too deep",
		SynModifierNotAllowed:   "Modifier not allowed here",
		SynUnsupportedConstruct: "Construct outside the translated subset",
		GenInfo:                 "Code generation information",
		GenDuplicateDeclaration: "Duplicate declaration",
		GenUnsupportedConstruct: "Unsupported construct",
		GenEntryPointNotFound:   "Entry point not found",
		GenMultipleEntryPoints:  "Multiple entry points",
		GenEntryPointNotStatic:  "Entry point is not static",
		GenConflictingModifiers: "Conflicting access modifiers",
		GenNestingTooDeep:       "Nesting too deep",
		GenMalformedTree:        "Malformed syntax tree",
		GenUnusedParameter:      "Unused parameter",
		GenEntryPointSignature:  "Entry point takes parameters",
		IOLoadFileError:         "I/O load file error",
		IOWriteFileError:        "I/O write file error",
		IOCacheError:            "Output cache error",
		ProjInfo:                "Project information",
		ProjManifestMissing:     "cscpp.toml not found",
		ProjManifestInvalid:     "Invalid cscpp.toml",
		ProjInvalidProfile:      "Unknown target profile",
		ProjNoSources:           "No sources to translate",
		ProjInvalidEntry:        "Invalid entry point name",
		ObsInfo:                 "Observability information",
		ObsTimings:              "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("GEN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
