package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/slint-go/slint"
	"github.com/slint-go/slint/parse"
)

func main() {
	pVerbose := flag.Bool("v", false, "set to true to enable verbose output")
	pIncludes := flag.String("I", "", "comma-separated list of import search directories")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("usage: slint [options] file.slint")
		os.Exit(1)
	}
	path := args[0]
	parse.Verbose = *pVerbose
	loader := parse.NewFileLoader(splitPaths(*pIncludes)...)
	var diags slint.DiagnosticList
	doc, err := loader.LoadDocument(path, "", &diags)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	fmt.Print(diags.String())
	if diags.HasError() {
		os.Exit(3)
	}
	fmt.Println(slint.Unparse(doc))
}

func splitPaths(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
