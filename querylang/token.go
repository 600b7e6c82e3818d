package querylang

// TokenKind tags a lexical token of the text query language.
type TokenKind byte

const (
	TokEOF TokenKind = iota
	TokInvalid

	TokIdentifier
	TokString
	TokNumber

	// structural
	TokDot
	TokLParen
	TokRParen
	TokLBrace
	TokRBrace
	TokLBracket
	TokRBracket
	TokComma
	TokColon

	// operators
	TokEq
	TokNe
	TokGt
	TokGte
	TokLt
	TokLte
	TokRegexMatch // ~

	// keywords
	TokAnd
	TokOr
	TokNot
	TokIn
	TokContains
	TokStartsWith
	TokExists
	TokTrue
	TokFalse
	TokNull
	TokAsc
	TokDesc
	TokCount
	TokSum
	TokAvg
	TokMin
	TokMax
)

var keywords = map[string]TokenKind{
	"and":        TokAnd,
	"or":         TokOr,
	"not":        TokNot,
	"in":         TokIn,
	"contains":   TokContains,
	"startsWith": TokStartsWith,
	"exists":     TokExists,
	"true":       TokTrue,
	"false":      TokFalse,
	"null":       TokNull,
	"asc":        TokAsc,
	"desc":       TokDesc,
	"count":      TokCount,
	"sum":        TokSum,
	"avg":        TokAvg,
	"min":        TokMin,
	"max":        TokMax,
}

// Token is one lexed unit with its source text and position.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}
