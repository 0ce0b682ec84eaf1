package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/slint-go/slint"
	"github.com/slint-go/slint/llr"
	"github.com/slint-go/slint/parse"
	"github.com/slint-go/slint/passes"
)

func main() {
	pVerbose := flag.Bool("v", false, "set to true to enable verbose output")
	pOut := flag.String("o", "", "output file, default is stdout")
	pFormat := flag.String("f", "json", "output format: json or yaml")
	pIncludes := flag.String("I", "", "comma-separated list of import search directories")
	pConfig := flag.String("c", "", "config file (json or yaml) with compiler options")
	pSkipOpt := flag.Bool("skip-optimizations", false, "skip the optimization passes, for debug builds")
	flag.Parse()
	args := flag.Args()
	if len(args) != 1 {
		fmt.Println("usage: slintc [options] file.slint")
		os.Exit(1)
	}
	path := args[0]
	parse.Verbose = *pVerbose

	var config *slint.Data
	if *pConfig != "" {
		var err error
		config, err = slint.DataFromFile(*pConfig)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}
	}
	includes := splitPaths(*pIncludes)
	format := *pFormat
	skipOpt := *pSkipOpt
	out := *pOut
	if config != nil {
		if config.Has("include-paths") {
			includes = append(includes, config.GetStrings("include-paths")...)
		}
		if *pFormat == "json" && config.Has("format") {
			format = config.GetString("format")
		}
		if config.Has("skip-optimizations") {
			skipOpt = config.GetBool("skip-optimizations")
		}
	}

	loader := parse.NewFileLoader(includes...)
	var diags slint.DiagnosticList
	doc, err := loader.LoadDocument(path, "", &diags)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	passes.RunWithOptions(doc, &diags, passes.Options{SkipOptimizations: skipOpt})
	fmt.Fprint(os.Stderr, diags.String())
	if diags.HasError() {
		os.Exit(3)
	}

	unit, err := llr.Lower(doc)
	if err != nil {
		fmt.Println(err)
		os.Exit(4)
	}
	ex := llr.NewExporter(unit, config)
	content, err := ex.Export(format, out)
	if err != nil {
		fmt.Println(err)
		os.Exit(4)
	}
	if out == "" {
		fmt.Print(content)
	}
}

func splitPaths(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
