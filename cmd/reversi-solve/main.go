// Command reversi-solve is the FFO/self-play CLI collaborator named in
// spec section 1 ("problem-file readers", "self-play harness"). It wires
// the solver, evaluator, opening book, solve-statistics session, and
// FFO/record parsing packages together, following the flag-based,
// log.Printf/log.Fatal style and CPU-profiling flag of the teacher's
// cmd/chessplay-uci/main.go (there gated on NNUE/UCI wiring, here on board
// loading and solve depth).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/hailam/reversicore/internal/bitboard"
	"github.com/hailam/reversicore/internal/book"
	"github.com/hailam/reversicore/internal/evaluator"
	"github.com/hailam/reversicore/internal/record"
	"github.com/hailam/reversicore/internal/session"
	"github.com/hailam/reversicore/internal/solver"
)

var (
	cpuprofile  = flag.String("cpuprofile", "", "write cpu profile to file")
	ffoFile     = flag.String("ffo", "", "path to an FFO problem file (one position per line)")
	recordStr   = flag.String("record", "", "replay a move-record string and solve the resulting position")
	level       = flag.Int("level", 10, "solve level (1..60)")
	weightsPath = flag.String("weights", "", "path to an evaluator weight JSON file (default: built-in zero weights)")
	bookPath    = flag.String("book", "", "opening book directory (default: platform data dir)")
	statePath   = flag.String("state", "", "solve-statistics session directory (default: platform data dir)")
	noBook      = flag.Bool("no-book", false, "never probe the opening book")
)

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	ev, err := loadEvaluator(*weightsPath)
	if err != nil {
		log.Fatal("loading evaluator: ", err)
	}

	sess, err := openSession(*statePath)
	if err != nil {
		log.Printf("Warning: solve-statistics session unavailable: %v", err)
	}
	if sess != nil {
		defer sess.Close()
	}

	var bk *book.Book
	if !*noBook {
		bk, err = openBook(*bookPath)
		if err != nil {
			log.Printf("Warning: opening book unavailable: %v", err)
		} else {
			defer bk.Close()
		}
	}

	s := solver.New(ev)

	switch {
	case *ffoFile != "":
		if err := runFFOFile(s, bk, sess, *ffoFile, *level); err != nil {
			log.Fatal(err)
		}
	case *recordStr != "":
		if err := runRecord(s, bk, sess, *recordStr, *level); err != nil {
			log.Fatal(err)
		}
	default:
		if err := solveAndReport(s, bk, sess, bitboard.NewGame(), *level); err != nil {
			log.Fatal(err)
		}
	}
}

func loadEvaluator(path string) (*evaluator.Evaluator, error) {
	if path == "" {
		return evaluator.New(evaluator.NewWeights()), nil
	}
	return evaluator.ReadFile(path)
}

func runFFOFile(s *solver.Solver, bk *book.Book, sess *session.Session, path string, level int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open FFO file %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	problem := 0
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		problem++
		pos, err := record.ParseFFO(line)
		if err != nil {
			log.Printf("problem %d: %v", problem, err)
			continue
		}
		log.Printf("problem %d:", problem)
		if err := solveAndReport(s, bk, sess, pos, level); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func runRecord(s *solver.Solver, bk *book.Book, sess *session.Session, rec string, level int) error {
	pos, moves, err := record.Replay(rec)
	if err != nil {
		return fmt.Errorf("replay record: %w", err)
	}
	log.Printf("replayed %d plies", len(moves))
	return solveAndReport(s, bk, sess, pos, level)
}

func solveAndReport(s *solver.Solver, bk *book.Book, sess *session.Session, pos bitboard.Position, level int) error {
	if bk != nil {
		if sq, ok, err := bk.Probe(pos); err != nil {
			log.Printf("Warning: book probe failed: %v", err)
		} else if ok {
			fmt.Printf("book move: %s\n", bitboard.Square(sq))
			return nil
		}
	}

	result := s.Solve(pos, level)
	fmt.Printf("best move: %s  eval: %d  nodes: %d (%d leaf)  kind: %v selectivity: %d\n",
		bitboard.Square(result.BestMove), result.Eval, result.SearchedNodes, result.SearchedLeafNodes,
		result.Type.Kind, result.Type.Selectivity)

	if sess != nil {
		err := sess.RecordSolve(session.SolveOutcome{
			Level:             level,
			BestMove:          result.BestMove,
			Eval:              result.Eval,
			SearchedNodes:     result.SearchedNodes,
			SearchedLeafNodes: result.SearchedLeafNodes,
		})
		if err != nil {
			log.Printf("Warning: could not record solve statistics: %v", err)
		}
	}
	return nil
}

const appName = "reversicore"

// dataDir returns the platform-specific data directory for the
// application, following the teacher's storage.GetDataDir.
func dataDir() (string, error) {
	var baseDir string
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		baseDir = filepath.Join(home, "Library", "Application Support")
	case "windows":
		baseDir = os.Getenv("APPDATA")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, "AppData", "Roaming")
		}
	default:
		baseDir = os.Getenv("XDG_DATA_HOME")
		if baseDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			baseDir = filepath.Join(home, ".local", "share")
		}
	}
	dir := filepath.Join(baseDir, appName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

func openBook(path string) (*book.Book, error) {
	if path == "" {
		base, err := dataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(base, "book")
	}
	return book.Open(path)
}

func openSession(path string) (*session.Session, error) {
	if path == "" {
		base, err := dataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(base, "session")
	}
	return session.Open(path)
}
