package eval

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// The expression grammar is deliberately small: it covers exactly the
// subset spec.md §9 names as sufficient for real schemas — dotted paths
// into the root object (a.b), named variables (#prefix), integer and
// string literals, comparisons, and boolean connectives. Nothing in the
// engine packages hard-codes this syntax; callers may plug in any
// Evaluator implementation instead of Reference.

type exprRoot struct {
	Or *orExpr `@@`
}

type orExpr struct {
	Left *andExpr   `@@`
	Rest []*andExpr `("||" @@)*`
}

type andExpr struct {
	Left *notExpr   `@@`
	Rest []*notExpr `("&&" @@)*`
}

type notExpr struct {
	Negate bool        `@"!"?`
	Cmp    *comparison `@@`
}

type comparison struct {
	Left  *operand `@@`
	Op    *string  `( @("=="|"!="|"<="|">="|"<"|">")`
	Right *operand `  @@ )?`
}

type operand struct {
	Number   *int64  `@Int`
	Str      *string `| @String`
	Bool     *string `| @Bool`
	Variable *string `| @Variable`
	Path     *string `| @Path`
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Bool", Pattern: `\btrue\b|\bfalse\b`},
	{Name: "Int", Pattern: `0[xX][0-9a-fA-F]+|0[bB][01]+|\d+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Variable", Pattern: `#[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Path", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Op", Pattern: `==|!=|<=|>=|&&|\|\||<|>|!`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[exprRoot](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

func parseExpr(expr string) (*exprRoot, error) {
	return exprParser.ParseString("", expr)
}
