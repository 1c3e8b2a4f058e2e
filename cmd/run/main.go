package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jacobsa/timeutil"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/virtfs/engine"
	"github.com/wippyai/virtfs/memfs"
	"github.com/wippyai/virtfs/runtime"
	"github.com/wippyai/virtfs/vfs"
	"github.com/wippyai/virtfs/wasi/preview2"
	"github.com/wippyai/virtfs/wasi/preview2/filesystem"
	"github.com/wippyai/virtfs/wazerofs"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to a WASI preview1 module")
		envVars     = flag.String("env", "", "Environment variables (KEY=VAL,KEY2=VAL2)")
		cliArgs     = flag.String("argv", "", "CLI arguments (comma-separated)")
		seedDir     = flag.String("seed", "", "Host directory copied into the in-memory root before running")
		guestPath   = flag.String("guest", "/", "Guest path the in-memory root is mounted at")
		stdin       = flag.String("stdin", "", "Stdin data")
		memPages    = flag.Uint("mem", 0, "Memory limit in 64KB pages (0 = default)")
		dump        = flag.Bool("dump", false, "Print the filesystem tree after running")
		interactive = flag.Bool("i", false, "Browse the filesystem in a TUI after running")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if *wasmFile == "" && !*interactive && !*dump {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <file.wasm> [-argv a,b] [-env K=V,...] [-seed dir] [-dump]")
		fmt.Fprintln(os.Stderr, "       run -seed <dir> -i  (browse without running)")
		os.Exit(1)
	}

	log := zap.NewNop()
	if *verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	engine.SetLogger(log.Named("engine"))
	runtime.SetLogger(log.Named("runtime"))
	wazerofs.SetLogger(log.Named("wazerofs"))
	filesystem.SetLogger(log.Named("filesystem"))

	clock := vfs.NewSystemClock(timeutil.RealClock())
	fs := memfs.New(clock, 0)

	if *seedDir != "" {
		n, err := seedFromHost(fs.Root(), *seedDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: seed: %v\n", err)
			os.Exit(1)
		}
		log.Debug("seeded filesystem", zap.String("dir", *seedDir), zap.Int("files", n))
	}

	exitCode := uint32(0)
	if *wasmFile != "" {
		cfg := runConfig{
			wasmFile: *wasmFile,
			envStr:   *envVars,
			argvStr:  *cliArgs,
			memPages: uint32(*memPages),
		}
		w := preview2.New().
			WithClock(clock).
			WithFilesystemAt(fs, *guestPath).
			WithStdin([]byte(*stdin)).
			WithStdout(os.Stdout).
			WithStderr(os.Stderr)
		code, err := run(cfg, w)
		w.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		exitCode = code
	}

	if *dump {
		if err := dumpTree(os.Stdout, fs.Root()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: dump: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(fs); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	_ = log.Sync()
	os.Exit(int(exitCode))
}

type runConfig struct {
	wasmFile string
	envStr   string
	argvStr  string
	memPages uint32
}

func run(cfg runConfig, w *preview2.WASI) (uint32, error) {
	ctx := context.Background()

	data, err := os.ReadFile(cfg.wasmFile)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}

	rt, err := runtime.New(ctx, w, &engine.Config{MemoryLimitPages: cfg.memPages})
	if err != nil {
		return 0, fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	args := []string{cfg.wasmFile}
	if cfg.argvStr != "" {
		args = append(args, strings.Split(cfg.argvStr, ",")...)
	}
	return rt.Run(ctx, data, args, parseEnv(cfg.envStr))
}

func parseEnv(envStr string) []engine.EnvVar {
	if envStr == "" {
		return nil
	}
	var env []engine.EnvVar
	for _, kv := range strings.Split(envStr, ",") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			env = append(env, engine.EnvVar{Key: parts[0], Value: parts[1]})
		}
	}
	return env
}
