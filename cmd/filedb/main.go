// Command filedb is the interactive REPL for the single-file relational
// store: a thin loop over the filedb library API, styled after
// original_source's repl.c (read line, dispatch meta-command or SQL
// statement, print result) and the project's own cmd/repl.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/robfig/cron/v3"

	"github.com/baiyangmu/db-tutorial-new"
	"github.com/baiyangmu/db-tutorial-new/internal/config"
)

var (
	flagFile     = flag.String("file", "", "path to the database file (required)")
	flagAutosync = flag.String("autosync", "", "cron expression; periodically flushes the database to disk")
)

func main() {
	flag.Parse()
	if *flagFile == "" {
		fmt.Fprintln(os.Stderr, "usage: filedb --file <path> [--autosync '<cron-expr>']")
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "filedb: ", log.LstdFlags)

	h, err := filedb.Open(*flagFile, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open error:", err)
		os.Exit(1)
	}
	defer filedb.Close(h)

	autosync := *flagAutosync
	if autosync == "" {
		if cfg, err := config.Load(config.SidecarPath(*flagFile)); err == nil {
			autosync = cfg.Autosync
		}
	}
	if autosync != "" {
		sched, err := startAutosync(h, autosync, logger)
		if err != nil {
			fmt.Fprintln(os.Stderr, "autosync error:", err)
			os.Exit(1)
		}
		defer sched.Stop()
	}

	runREPL(h)
}

// startAutosync schedules a periodic Sync of h's underlying file on expr,
// a standard five-field cron expression (spec SPEC_FULL.md §2B). Runs
// until the returned scheduler is stopped.
func startAutosync(h filedb.Handle, expr string, logger *log.Logger) (*cron.Cron, error) {
	sched := cron.New()
	_, err := sched.AddFunc(expr, func() {
		if err := filedb.Sync(h); err != nil {
			logger.Printf("autosync: %v", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("bad autosync expression %q: %w", expr, err)
	}
	sched.Start()
	return sched, nil
}

func runREPL(h filedb.Handle) {
	sc := bufio.NewScanner(os.Stdin)
	interactive := false
	if fi, err := os.Stdin.Stat(); err == nil {
		interactive = (fi.Mode() & os.ModeCharDevice) != 0
	}

	for {
		if interactive {
			fmt.Print("db > ")
		}
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if handled := handleMetaCommand(h, line); handled {
				continue
			}
			fmt.Printf("Unrecognized command '%s'.\n", line)
			continue
		}

		status, body := filedb.Execute(h, line)
		if status != filedb.StatusOK {
			fmt.Printf("Error (%d): %s\n", status, body)
			continue
		}
		fmt.Println(body)
	}
}

// handleMetaCommand handles a leading-"." command (spec SPEC_FULL.md §3A:
// .exit, .btree, .constants), ported from original_source's
// do_meta_command. Reports false for anything it doesn't recognize.
func handleMetaCommand(h filedb.Handle, line string) bool {
	switch line {
	case ".exit":
		filedb.Close(h)
		os.Exit(0)
	case ".btree":
		if err := filedb.PrintTree(h, os.Stdout); err != nil {
			fmt.Println(err)
		}
	case ".constants":
		c, err := filedb.Constants(h)
		if err != nil {
			fmt.Println(err)
			return true
		}
		fmt.Println("Constants:")
		fmt.Printf("ROW_SIZE(table): %d\n", c.RowSize)
		fmt.Printf("LEAF_NODE_CELL_SIZE(table): %d\n", c.LeafNodeCellSize)
		fmt.Printf("LEAF_NODE_MAX_CELLS(table): %d\n", c.LeafNodeMaxCells)
	default:
		return false
	}
	return true
}
