// Package parse wraps the external structural SQL parser. The parser is
// consumed as a black box: it either returns a statement tree or a typed
// failure with position information. On success the adapter also derives
// statement complexity metrics by walking the tree; the metrics are purely
// informational and never gate conversion behavior.
package parse

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"

	"github.com/leapstack-labs/sqlbridge/pkg/core"
)

// Failure is a typed structural-parse error with best-effort position.
type Failure struct {
	Message string
	Line    int
	Column  int
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("parse error at line %d column %d: %s", f.Line, f.Column, f.Message)
	}
	return "parse error: " + f.Message
}

// errPos extracts "line N column M" from the underlying parser's message.
var errPos = regexp.MustCompile(`line (\d+) column (\d+)`)

// Parse runs the external parser over sql. On success it returns the
// statement trees plus derived complexity metrics; on failure, a *Failure.
//
// A fresh parser instance is used per call: the underlying parser is not
// safe for concurrent use, and conversions fan out across goroutines.
func Parse(sql string) ([]ast.StmtNode, *core.Complexity, error) {
	p := parser.New()
	stmts, _, err := p.ParseSQL(sql)
	if err != nil {
		return nil, nil, asFailure(err)
	}

	cx := &core.Complexity{}
	collector := &complexityVisitor{metrics: cx}
	for _, stmt := range stmts {
		stmt.Accept(collector)
	}
	return stmts, cx, nil
}

func asFailure(err error) *Failure {
	f := &Failure{Message: err.Error()}
	if m := errPos.FindStringSubmatch(f.Message); m != nil {
		f.Line, _ = strconv.Atoi(m[1])
		f.Column, _ = strconv.Atoi(m[2])
	}
	return f
}

// complexityVisitor counts structural features during one tree walk.
type complexityVisitor struct {
	metrics *core.Complexity
}

// Enter implements ast.Visitor.
func (v *complexityVisitor) Enter(n ast.Node) (ast.Node, bool) {
	switch node := n.(type) {
	case *ast.Join:
		if node.Right != nil {
			v.metrics.Joins++
		}
	case *ast.SubqueryExpr:
		v.metrics.Subqueries++
	case *ast.AggregateFuncExpr:
		v.metrics.Aggregates++
	case *ast.WindowFuncExpr:
		v.metrics.Windows++
	case *ast.FuncCallExpr:
		v.metrics.Functions++
	case *ast.WithClause:
		v.metrics.CTEs += len(node.CTEs)
	}
	return n, false
}

// Leave implements ast.Visitor.
func (v *complexityVisitor) Leave(n ast.Node) (ast.Node, bool) {
	return n, true
}
