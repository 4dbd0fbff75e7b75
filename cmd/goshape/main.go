package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	goshape "github.com/goshape/goshape"
	"github.com/goshape/goshape/source"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "check":
		checkCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "goshape CLI\n\nUsage:\n  goshape check -schema schema.{json,yaml}\n  goshape validate -schema schema.{json,yaml} [-strict] [-fail-fast] [doc.json ...]\n\nNotes:\n  - With no document arguments, validate reads one JSON document from stdin.")
}

func checkCmd(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	var schemaPath string
	fs.StringVar(&schemaPath, "schema", "", "schema description file")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	cs := mustCompile(schemaPath)
	color.Green("ok: %s compiles", schemaPath)
	if defs := cs.Definitions(); len(defs) > 0 {
		fmt.Printf("definitions: %s\n", strings.Join(defs, ", "))
	}
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	var schemaPath string
	var strict, failFast, emit bool
	fs.StringVar(&schemaPath, "schema", "", "schema description file")
	fs.BoolVar(&strict, "strict", false, "require exact types, no coercion")
	fs.BoolVar(&failFast, "fail-fast", false, "stop at the first issue")
	fs.BoolVar(&emit, "emit", false, "print the coerced output as JSON on success")
	_ = fs.Parse(args)
	if schemaPath == "" {
		fs.Usage()
		os.Exit(2)
	}
	cs := mustCompile(schemaPath)
	opt := goshape.ValidateOpt{Strict: strict, FailFast: failFast}

	docs := fs.Args()
	if len(docs) == 0 {
		docs = []string{"-"}
	}
	failed := false
	for _, doc := range docs {
		v, err := loadValue(doc)
		if err != nil {
			fatalf("%s: %v", doc, err)
		}
		out, verr := cs.Validate(v, opt)
		if verr == nil {
			color.Green("ok: %s", doc)
			if emit {
				printJSON(cs, out)
			}
			continue
		}
		failed = true
		color.Red("invalid: %s", doc)
		printIssues(verr)
	}
	if failed {
		os.Exit(1)
	}
}

func printIssues(err error) {
	iss, ok := goshape.AsIssues(err)
	if !ok {
		fmt.Fprintf(os.Stderr, "  %v\n", err)
		return
	}
	path := color.New(color.FgYellow).SprintFunc()
	for _, it := range iss {
		fmt.Fprintf(os.Stderr, "  %s %s: %s\n", path(it.Path), it.Code, it.Message)
	}
}

func printJSON(cs *goshape.CompiledSchema, v any) {
	b, warn, err := cs.SerializeJSON(v, goshape.SerializeOpt{})
	if err != nil {
		fatalf("serialize: %v", err)
	}
	for _, w := range warn {
		fmt.Fprintf(os.Stderr, "warning: %s %s\n", w.Path, w.Message)
	}
	fmt.Println(string(b))
}

func mustCompile(path string) *goshape.CompiledSchema {
	b, err := os.ReadFile(path)
	if err != nil {
		fatalf("reading schema: %v", err)
	}
	desc, err := loadDescription(path, b)
	if err != nil {
		fatalf("%s: %v", path, err)
	}
	cs, err := goshape.Compile(desc)
	if err != nil {
		if se, ok := goshape.AsSchemaError(err); ok {
			fatalf("schema error at %s: %s", se.Path, se.Msg)
		}
		fatalf("compile: %v", err)
	}
	return cs
}

func loadDescription(path string, b []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return source.DescriptionFromYAML(b)
	default:
		return source.DescriptionFromJSON(b)
	}
}

func loadValue(path string) (any, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, err
		}
		return source.ValueFromJSON(b)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return source.ValueFromYAML(b)
	default:
		return source.ValueFromJSON(b)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
