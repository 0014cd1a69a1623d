package main

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// defaultClientFuncs перечисляет функции net/http, работающие через http.DefaultClient
var defaultClientFuncs = map[string]bool{
	"Get":      true,
	"Head":     true,
	"Post":     true,
	"PostForm": true,
}

// NoDefaultClientAnalyzer запрещает http.DefaultClient и функции-обертки над ним
// вне тестов. У DefaultClient нет таймаута, и медленный внешний API
// может удерживать запрос бесконечно.
var NoDefaultClientAnalyzer = &analysis.Analyzer{
	Name:     "nodefaultclient",
	Doc:      "prohibits http.DefaultClient, http.Get, http.Head, http.Post and http.PostForm outside tests",
	Run:      runNoDefaultClientCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runNoDefaultClientCheck(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.SelectorExpr)(nil)}, func(node ast.Node) {
		sel := node.(*ast.SelectorExpr)
		if strings.HasSuffix(pass.Fset.File(sel.Pos()).Name(), "_test.go") {
			return
		}

		obj := pass.TypesInfo.Uses[sel.Sel]
		if obj == nil || obj.Pkg() == nil || obj.Pkg().Path() != "net/http" {
			return
		}

		switch o := obj.(type) {
		case *types.Var:
			if o.Name() == "DefaultClient" {
				pass.Reportf(sel.Pos(), "use an http.Client with a timeout instead of http.DefaultClient")
			}
		case *types.Func:
			// Методы (*http.Client).Get и т.п. разрешены
			if sig, ok := o.Type().(*types.Signature); ok && sig.Recv() == nil && defaultClientFuncs[o.Name()] {
				pass.Reportf(sel.Pos(), "http.%s uses http.DefaultClient without a timeout", o.Name())
			}
		}
	})

	return nil, nil
}
