// Package querylang implements the text query language's recursive-descent
// parser, producing the same queryir.QueryIR the fluent builder
// populates.
package querylang

import (
	"strconv"
	"strings"

	"github.com/shinydb/shinydb-go/queryir"
	"github.com/shinydb/shinydb-go/value"
)

// operationNames is the closed set used to disambiguate a namespace
// reference ("store.operation(...)") from a two-part namespace
// ("space.store").
var operationNames = map[string]bool{
	"filter": true, "pluck": true, "orderBy": true, "limit": true,
	"skip": true, "groupBy": true, "aggregate": true, "insert": true,
	"set": true, "delete": true, "count": true, "get": true, "exists": true,
}

type Parser struct {
	lex *Lexer
}

func NewParser(src string) *Parser {
	return &Parser{lex: NewLexer(src)}
}

// Parse parses a complete text query into a QueryIR.
func Parse(src string) (*queryir.QueryIR, error) {
	return NewParser(src).Parse()
}

func (p *Parser) Parse() (*queryir.QueryIR, error) {
	ir := queryir.New()

	first, err := p.expectIdentifier()
	if err != nil {
		return nil, err
	}

	store := first
	space := ""
	if p.lex.Peek().Kind == TokDot {
		mark := p.lex.Mark()
		p.lex.Next() // consume dot
		y := p.lex.Next()
		switch {
		case y.Kind == TokIdentifier && operationNames[y.Text]:
			// X is the store; restore so the dot+operation is parsed below.
			p.lex.Reset(mark)
		case y.Kind == TokIdentifier:
			space = first
			store = y.Text
		default:
			p.lex.Reset(mark)
		}
	}
	ir.Space = space
	ir.Store = store

	for p.lex.Peek().Kind == TokDot {
		p.lex.Next() // consume dot
		opTok := p.lex.Next()
		// count and exists lex as keywords but are also operation names.
		if opTok.Kind != TokIdentifier && !operationNames[opTok.Text] {
			return nil, newErr(ErrExpectedIdentifier, opTok, "expected operation name")
		}
		if err := p.parseOperation(ir, opTok); err != nil {
			return nil, err
		}
	}

	if tok := p.lex.Peek(); tok.Kind != TokEOF {
		return nil, newErr(ErrUnexpectedToken, tok, "trailing input")
	}

	return ir, nil
}

func (p *Parser) parseOperation(ir *queryir.QueryIR, opTok Token) error {
	switch opTok.Text {
	case "filter":
		return p.parseFilter(ir)
	case "pluck":
		return p.parseIdentList(func(ids []string) { ir.Projection = ids })
	case "orderBy":
		return p.parseOrderBy(ir)
	case "limit":
		return p.parseUintArg(func(n uint32) { ir.Limit = &n })
	case "skip":
		return p.parseUintArg(func(n uint32) { ir.Skip = &n })
	case "groupBy":
		return p.parseIdentList(func(ids []string) { ir.GroupBy = append(ir.GroupBy, ids...) })
	case "aggregate":
		return p.parseAggregate(ir)
	case "insert":
		return p.parseMutationBody(ir, value.MutationInsert)
	case "set":
		return p.parseMutationBody(ir, value.MutationUpdate)
	case "delete":
		if err := p.expect(TokLParen); err != nil {
			return err
		}
		if err := p.expect(TokRParen); err != nil {
			return err
		}
		ir.Mutation = &value.Mutation{Kind: value.MutationDelete}
		return nil
	case "count":
		if err := p.expect(TokLParen); err != nil {
			return err
		}
		if err := p.expect(TokRParen); err != nil {
			return err
		}
		ir.QueryType = queryir.QueryTypeCount
		return nil
	case "exists":
		if err := p.expect(TokLParen); err != nil {
			return err
		}
		if err := p.expect(TokRParen); err != nil {
			return err
		}
		ir.QueryType = queryir.QueryTypeExists
		return nil
	case "get":
		return p.parseGet(ir)
	default:
		return newErr(ErrUnknownOperation, opTok, opTok.Text)
	}
}

func (p *Parser) expect(kind TokenKind) error {
	tok := p.lex.Next()
	if tok.Kind != kind {
		return newErr(codeForExpected(kind), tok, "")
	}
	return nil
}

func codeForExpected(kind TokenKind) ErrorCode {
	switch kind {
	case TokLParen:
		return ErrExpectedLParen
	case TokRParen:
		return ErrExpectedRParen
	case TokComma:
		return ErrExpectedComma
	case TokColon:
		return ErrExpectedColon
	default:
		return ErrUnexpectedToken
	}
}

func (p *Parser) expectIdentifier() (string, error) {
	tok := p.lex.Next()
	if tok.Kind != TokIdentifier {
		return "", newErr(ErrExpectedIdentifier, tok, "")
	}
	return tok.Text, nil
}

// parseFilter parses `filter( cond (and|or cond)* )`.
func (p *Parser) parseFilter(ir *queryir.QueryIR) error {
	if err := p.expect(TokLParen); err != nil {
		return err
	}
	for {
		field, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		op, err := p.parseFilterOperator()
		if err != nil {
			return err
		}
		v, err := p.parseValue()
		if err != nil {
			return err
		}
		ir.AppendFilter(field, op, v)

		switch p.lex.Peek().Kind {
		case TokAnd:
			p.lex.Next()
			ir.SetPrevLogic(value.LogicAnd)
			continue
		case TokOr:
			p.lex.Next()
			ir.SetPrevLogic(value.LogicOr)
			continue
		}
		break
	}
	return p.expect(TokRParen)
}

func (p *Parser) parseFilterOperator() (value.FilterOp, error) {
	tok := p.lex.Next()
	switch tok.Kind {
	case TokEq:
		return value.OpEq, nil
	case TokNe:
		return value.OpNe, nil
	case TokGt:
		return value.OpGt, nil
	case TokGte:
		return value.OpGte, nil
	case TokLt:
		return value.OpLt, nil
	case TokLte:
		return value.OpLte, nil
	case TokRegexMatch:
		return value.OpRegex, nil
	case TokIn:
		return value.OpIn, nil
	case TokContains:
		return value.OpContains, nil
	case TokExists:
		return value.OpExists, nil
	default:
		return 0, newErr(ErrExpectedOperator, tok, "")
	}
}

func (p *Parser) parseValue() (value.Value, error) {
	tok := p.lex.Next()
	switch tok.Kind {
	case TokString:
		return value.String(tok.Text), nil
	case TokNumber:
		if strings.Contains(tok.Text, ".") {
			f, err := strconv.ParseFloat(tok.Text, 64)
			if err != nil {
				return value.Value{}, newErr(ErrInvalidNumber, tok, tok.Text)
			}
			return value.Float(f), nil
		}
		i, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return value.Value{}, newErr(ErrInvalidNumber, tok, tok.Text)
		}
		return value.Int(i), nil
	case TokTrue:
		return value.Bool(true), nil
	case TokFalse:
		return value.Bool(false), nil
	case TokNull:
		return value.Null(), nil
	default:
		return value.Value{}, newErr(ErrExpectedValue, tok, "")
	}
}

// parseIdentList parses `(id, id, ...)` and hands the list to sink.
func (p *Parser) parseIdentList(sink func([]string)) error {
	if err := p.expect(TokLParen); err != nil {
		return err
	}
	var ids []string
	for {
		if p.lex.Peek().Kind == TokRParen {
			break
		}
		id, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		ids = append(ids, id)
		if p.lex.Peek().Kind == TokComma {
			p.lex.Next()
			continue
		}
		break
	}
	if err := p.expect(TokRParen); err != nil {
		return err
	}
	sink(ids)
	return nil
}

// parseOrderBy parses `orderBy(field [, asc|desc])`.
func (p *Parser) parseOrderBy(ir *queryir.QueryIR) error {
	if err := p.expect(TokLParen); err != nil {
		return err
	}
	field, err := p.expectIdentifier()
	if err != nil {
		return err
	}
	dir := value.DirAsc
	if p.lex.Peek().Kind == TokComma {
		p.lex.Next()
		tok := p.lex.Next()
		switch tok.Kind {
		case TokAsc:
			dir = value.DirAsc
		case TokDesc:
			dir = value.DirDesc
		default:
			return newErr(ErrUnexpectedToken, tok, "expected asc or desc")
		}
	}
	if err := p.expect(TokRParen); err != nil {
		return err
	}
	ir.OrderBy = []value.OrderBy{{Field: field, Direction: dir}}
	return nil
}

func (p *Parser) parseUintArg(sink func(uint32)) error {
	if err := p.expect(TokLParen); err != nil {
		return err
	}
	tok := p.lex.Next()
	if tok.Kind != TokNumber {
		return newErr(ErrInvalidNumber, tok, "")
	}
	n, err := strconv.ParseUint(tok.Text, 10, 32)
	if err != nil {
		return newErr(ErrInvalidNumber, tok, tok.Text)
	}
	if err := p.expect(TokRParen); err != nil {
		return err
	}
	sink(uint32(n))
	return nil
}

// parseAggregate parses `aggregate(name: func[(field)], ...)`.
func (p *Parser) parseAggregate(ir *queryir.QueryIR) error {
	if err := p.expect(TokLParen); err != nil {
		return err
	}
	for {
		if p.lex.Peek().Kind == TokRParen {
			break
		}
		name, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		if err := p.expect(TokColon); err != nil {
			return err
		}
		funcTok := p.lex.Next()
		fn, ok := aggFuncFor(funcTok.Kind)
		if !ok {
			return newErr(ErrUnexpectedToken, funcTok, "expected aggregation function")
		}
		var field string
		if fn != value.AggCount && p.lex.Peek().Kind == TokLParen {
			p.lex.Next()
			field, err = p.expectIdentifier()
			if err != nil {
				return err
			}
			if err := p.expect(TokRParen); err != nil {
				return err
			}
		}
		ir.Aggs = append(ir.Aggs, value.Aggregation{OutputName: name, Func: fn, Field: field})

		if p.lex.Peek().Kind == TokComma {
			p.lex.Next()
			continue
		}
		break
	}
	return p.expect(TokRParen)
}

func aggFuncFor(kind TokenKind) (value.AggFunc, bool) {
	switch kind {
	case TokCount:
		return value.AggCount, true
	case TokSum:
		return value.AggSum, true
	case TokAvg:
		return value.AggAvg, true
	case TokMin:
		return value.AggMin, true
	case TokMax:
		return value.AggMax, true
	default:
		return 0, false
	}
}

// parseMutationBody parses `insert({ ... })` / `set({ ... })`, capturing the
// raw text between the balanced braces as the mutation payload verbatim.
func (p *Parser) parseMutationBody(ir *queryir.QueryIR, kind value.MutationKind) error {
	if err := p.expect(TokLParen); err != nil {
		return err
	}
	if p.lex.Peek().Kind != TokLBrace {
		return newErr(ErrUnexpectedToken, p.lex.Peek(), "expected {")
	}
	raw, err := p.captureBalancedBraces()
	if err != nil {
		return err
	}
	if err := p.expect(TokRParen); err != nil {
		return err
	}
	ir.Mutation = &value.Mutation{Kind: kind, Payload: raw}
	return nil
}

func (p *Parser) captureBalancedBraces() ([]byte, error) {
	start := p.lex.Mark()
	depth := 0
	for {
		tok := p.lex.Next()
		switch tok.Kind {
		case TokLBrace:
			depth++
		case TokRBrace:
			depth--
			if depth == 0 {
				return p.lex.SliceFrom(start), nil
			}
		case TokEOF:
			return nil, newErr(ErrExpectedRParen, tok, "unterminated { ... }")
		}
	}
}

// parseGet parses `get(value)`: appends a `_key = value` filter and sets
// limit to 1.
func (p *Parser) parseGet(ir *queryir.QueryIR) error {
	if err := p.expect(TokLParen); err != nil {
		return err
	}
	v, err := p.parseValue()
	if err != nil {
		return err
	}
	if err := p.expect(TokRParen); err != nil {
		return err
	}
	ir.AppendFilter("_key", value.OpEq, v)
	one := uint32(1)
	ir.Limit = &one
	return nil
}
