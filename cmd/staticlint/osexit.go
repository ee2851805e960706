package main

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// OsExitAnalyzer запрещает прямой вызов os.Exit в функции main пакета main.
// Процесс завершается возвратом ошибки из run.
var OsExitAnalyzer = &analysis.Analyzer{
	Name:     "osexit",
	Doc:      "prohibits direct calls to os.Exit in main function of main package",
	Run:      runOsExitCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

// FatalLogAnalyzer запрещает log.Fatal* и (*zap.Logger).Fatal вне пакета main.
// Библиотечный код возвращает ошибки, процесс завершает только команда.
var FatalLogAnalyzer = &analysis.Analyzer{
	Name:     "fatallog",
	Doc:      "prohibits log.Fatal* and zap Logger.Fatal calls outside package main",
	Run:      runFatalLogCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

const zapPackage = "go.uber.org/zap"

func runOsExitCheck(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(node ast.Node) {
		funcDecl := node.(*ast.FuncDecl)
		if funcDecl.Name.Name != "main" || funcDecl.Recv != nil || funcDecl.Body == nil {
			return
		}

		ast.Inspect(funcDecl.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			if fn := calledFunc(pass, call); fn != nil && fn.Pkg() != nil &&
				fn.Pkg().Path() == "os" && fn.Name() == "Exit" {
				pass.Reportf(call.Pos(), "avoid direct os.Exit call in main function of main package")
			}
			return true
		})
	})
	return nil, nil
}

func runFatalLogCheck(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() == "main" {
		return nil, nil
	}

	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(node ast.Node) {
		call := node.(*ast.CallExpr)
		fn := calledFunc(pass, call)
		if fn == nil || fn.Pkg() == nil {
			return
		}

		switch {
		case fn.Pkg().Path() == "log" && strings.HasPrefix(fn.Name(), "Fatal"):
			pass.Reportf(call.Pos(), "log.%s outside package main, return an error instead", fn.Name())
		case fn.Pkg().Path() == zapPackage && fn.Name() == "Fatal" && isMethod(fn):
			pass.Reportf(call.Pos(), "zap Fatal outside package main, return an error instead")
		}
	})
	return nil, nil
}

// calledFunc возвращает вызываемую функцию или метод, если их удалось определить
func calledFunc(pass *analysis.Pass, call *ast.CallExpr) *types.Func {
	var ident *ast.Ident
	switch fun := call.Fun.(type) {
	case *ast.SelectorExpr:
		ident = fun.Sel
	case *ast.Ident:
		ident = fun
	default:
		return nil
	}
	fn, _ := pass.TypesInfo.Uses[ident].(*types.Func)
	return fn
}

func isMethod(fn *types.Func) bool {
	sig, ok := fn.Type().(*types.Signature)
	return ok && sig.Recv() != nil
}
