package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"syscall"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/golang/glog"

	"github.com/jyane/j6309/board"
	"github.com/jyane/j6309/script"
	"github.com/jyane/j6309/ui"
)

var (
	path       = flag.String("path", "", "path to the firmware image (.ihex, .hex, .decb or .bin)")
	ramSize    = flag.String("ram", "0x8000", "RAM size in bytes, a power of two")
	romBase    = flag.String("rom-base", "0xC000", "first ROM address")
	disk0      = flag.String("disk0", "disk1.img", "disk image for drive 0")
	disk1      = flag.String("disk1", "", "disk image for drive 1")
	debug      = flag.Bool("debug", false, "run the interactive debugger on stdin")
	trace      = flag.Bool("trace", false, "log every executed instruction")
	luaScript  = flag.String("script", "", "run a Lua script against the machine instead of the terminal")
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	stats      = flag.String("statsview", "", "serve runtime statistics on this address, e.g. localhost:18066")
)

func parseConfig() (board.Config, error) {
	cfg := board.DefaultConfig()
	ram, err := strconv.ParseUint(*ramSize, 0, 32)
	if err != nil {
		return cfg, fmt.Errorf("bad -ram %q: %w", *ramSize, err)
	}
	base, err := strconv.ParseUint(*romBase, 0, 16)
	if err != nil {
		return cfg, fmt.Errorf("bad -rom-base %q: %w", *romBase, err)
	}
	cfg.RAMSize = int(ram)
	cfg.ROMBase = uint16(base)
	cfg.Disks = [board.MaxDisks]string{*disk0, *disk1}
	return cfg, nil
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if *path == "" && flag.NArg() == 1 {
		*path = flag.Arg(0)
	}
	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: j6309 [flags] <firmware>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			glog.Fatal("Failed to create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Fatal("Failed to start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}
	if *stats != "" {
		viewer.SetConfiguration(viewer.WithAddr(*stats))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
		glog.Infof("Stats server available at http://%s/debug/statsview", *stats)
	}

	cfg, err := parseConfig()
	if err != nil {
		glog.Fatalln(err)
	}
	var console *board.Console
	var terminal *ui.Terminal
	if *debug || *luaScript != "" {
		cfg.Serial = board.NewBufferSerial()
	} else {
		terminal = ui.New(os.Stdin, os.Stdout, os.Stderr, func() { console.Halt() })
		cfg.Serial = terminal
	}
	console, err = board.NewConsole(cfg)
	if err != nil {
		glog.Fatalln("Failed to initiate Console: ", err)
	}
	defer console.Close()
	if err := console.Load(*path); err != nil {
		glog.Fatalln("Failed to load: ", err)
	}
	if *trace {
		console.Trace(true)
	}

	switch {
	case *luaScript != "":
		r := script.New(console)
		defer r.Close()
		err = r.DoFile(*luaScript)
	case *debug:
		err = board.NewDebugConsole(console, os.Stdin, os.Stdout).Run()
	default:
		// The terminal passes ^C to the machine; SIGTERM still stops it.
		signal.Ignore(syscall.SIGINT)
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()
		err = ui.Start(ctx, console, terminal)
	}
	if err != nil {
		glog.Errorf("Stopped: %v", err)
		glog.Flush()
		console.Close()
		os.Exit(1)
	}
}
