// Command lumen is the command-line entry point for compiling and
// running lumen expressions: a REPL when given no arguments, a
// single-file interpreter when given one, and an LSP server in
// -serve-lsp mode (or when lumen.toml enables it by default).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/lumen-lang/lumen/compiler"
	"github.com/lumen-lang/lumen/config"
	"github.com/lumen-lang/lumen/dist"
	"github.com/lumen-lang/lumen/lspserver"
	"github.com/lumen-lang/lumen/store"
	"github.com/lumen-lang/lumen/vm"
)

const (
	exitUsage   = 64
	exitIOError = 74
	exitCompile = 65
	exitRuntime = 70
	exitOK      = 0
)

func main() {
	serveLSP := flag.Bool("serve-lsp", false, "Start the LSP server on stdio")
	verbose := flag.Bool("v", false, "Verbose output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: lumen [options] [script]\n\n")
		fmt.Fprintf(os.Stderr, "With no script, starts an interactive REPL.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.FindAndLoad(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		os.Exit(exitIOError)
	}

	verbosity := cfg.Verbosity()
	if *verbose {
		verbosity = 2
	}
	commonlog.Configure(verbosity, nil)

	if *serveLSP || cfg.LSP.Enabled {
		srv := lspserver.New()
		if err := srv.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
			os.Exit(exitIOError)
		}
		os.Exit(exitOK)
	}

	hist, err := store.Open(cfg.StorePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		os.Exit(exitIOError)
	}
	defer hist.Close()

	var cache *dist.Cache
	if cfg.Cache.Enabled {
		cache, err = dist.NewCache(cfg.CachePath())
		if err != nil {
			fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
			os.Exit(exitIOError)
		}
	}

	args := flag.Args()
	switch len(args) {
	case 0:
		runREPL(cfg, hist, cache, *verbose)
	case 1:
		runFile(args[0], hist, cache, *verbose)
	default:
		flag.Usage()
		os.Exit(exitUsage)
	}
}

func runFile(path string, hist *store.Store, cache *dist.Cache, verbose bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
		os.Exit(exitIOError)
	}

	result, err := interpret(string(data), hist, cache, verbose)
	switch err.(type) {
	case nil:
		fmt.Println(result.String())
		os.Exit(exitOK)
	case *compiler.CompileError:
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitCompile)
	default:
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(exitRuntime)
	}
}

func runREPL(cfg *config.Config, hist *store.Store, cache *dist.Cache, verbose bool) {
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(cfg.REPL.Prompt)
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "lumen: %v\n", err)
			return
		}

		result, err := interpret(line, hist, cache, verbose)
		if err != nil {
			fmt.Println(errorKind(err))
			continue
		}
		fmt.Println(result.String())
	}
}

// interpret runs source through the compile+execute pipeline, caching
// the compiled chunk by source hash and recording every attempt in the
// evaluation history.
func interpret(source string, hist *store.Store, cache *dist.Cache, verbose bool) (vm.Value, error) {
	strings := vm.NewStringPool()

	chunk, hit := cache.Get(source, strings)
	if !hit {
		newChunk := vm.NewChunk()
		ok, cerr := compiler.Compile(source, newChunk, strings)
		if !ok {
			hist.Record(source, store.KindCompileError, cerr.Error(), cerr.Line)
			return vm.Nil, cerr
		}
		if err := cache.Put(source, newChunk); err != nil && verbose {
			fmt.Fprintf(os.Stderr, "lumen: cache put failed: %v\n", err)
		}
		chunk = newChunk
	}

	machine := vm.New(strings)
	result, err := machine.Interpret(chunk)
	if err != nil {
		switch e := err.(type) {
		case *vm.RuntimeError:
			hist.Record(source, store.KindRuntimeError, e.Error(), e.Line)
		case *vm.OutOfMemoryError:
			hist.Record(source, store.KindOutOfMemory, e.Error(), 0)
		default:
			hist.Record(source, store.KindRuntimeError, err.Error(), 0)
		}
		return vm.Nil, err
	}

	hist.Record(source, store.KindOK, result.String(), 0)
	return result, nil
}

func errorKind(err error) string {
	switch err.(type) {
	case *compiler.CompileError:
		return err.Error()
	case *vm.RuntimeError:
		return err.Error()
	case *vm.OutOfMemoryError:
		return "out of memory: " + err.Error()
	default:
		return err.Error()
	}
}
