package main

import (
	"bufio"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/elimethod/eli.go/eli"
)

const (
	defaultStatePath   = "mind_state.bin"
	defaultJournalPath = "mind_journal.sqlite3"
	defaultModel       = "mistral:7b"

	defaultDataDir  = "data"
	defaultImageDir = "images"
)

func main() {
	statePath := defaultStatePath
	if len(os.Args) > 1 {
		statePath = os.Args[1]
	}

	mind, err := eli.Load(statePath)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "state load failed (%v), starting fresh\n", err)
		}
		mind = eli.New()
	} else {
		snap := mind.Snapshot()
		fmt.Printf("loaded %d symbols, %d trajectories, %d fields\n",
			snap.Symbols, snap.Trajectories, snap.Fields)
	}

	journal, err := initJournal(defaultJournalPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "journal unavailable: %v\n", err)
		journal = nil
	}
	if journal != nil {
		defer journal.Close()
	}

	llm := NewLLMBridge(defaultModel)
	var dreaming atomic.Bool
	stop := make(chan struct{})
	spawnBackgroundThought(mind, llm, &dreaming, statePath, stop)

	var watchStop chan struct{}

	fmt.Println()
	fmt.Println("╭──────────────────────────────────────────╮")
	fmt.Println("│        eli — fractal mind in Go          │")
	fmt.Println("│                                          │")
	fmt.Println("│ mandelbrot coordinates index julia sets  │")
	fmt.Println("│ memory lives in fractal patterns         │")
	fmt.Println("│                                          │")
	fmt.Println("│ /state /alphabet /julia /history /watch  │")
	fmt.Println("│ /train N  /read  /dream  /image <path>   │")
	fmt.Println("│ /images /learn /imagine /reset /save     │")
	fmt.Println("│ /quit                                    │")
	fmt.Println("│                                          │")
	fmt.Println("│ (background thought always active)       │")
	fmt.Println("╰──────────────────────────────────────────╯")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if input == "/quit" || input == "/exit" || input == "/q" {
			break
		}
		if input == "/state" {
			fmt.Println(mind.StateString())
			continue
		}
		if input == "/alphabet" {
			fmt.Printf("learned patterns: %s\n\n", mind.Alphabet())
			continue
		}
		if input == "/julia" {
			fmt.Println(eli.AsciiJulia(mind.Snapshot().Coord, 72, 28))
			continue
		}
		if input == "/history" {
			for _, e := range journalRecent(journal, 20) {
				fmt.Printf("%s: %s\n", e.Role, e.Text)
			}
			fmt.Println()
			continue
		}
		if input == "/watch" {
			if watchStop == nil {
				watchStop = make(chan struct{})
				go eli.Watch(mind, 5*time.Second, os.Stdout, watchStop)
				fmt.Println("watch on")
			} else {
				close(watchStop)
				watchStop = nil
				fmt.Println("watch off")
			}
			continue
		}
		if input == "/reset" {
			mind.Reset()
			fmt.Println("fractal mind reset")
			continue
		}
		if input == "/save" {
			if err := mind.Save(statePath); err != nil {
				fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
			} else {
				snap := mind.Snapshot()
				fmt.Printf("saved %d symbols, %d trajectories, %d fields\n",
					snap.Symbols, snap.Trajectories, snap.Fields)
			}
			continue
		}
		if input == "/dream" {
			now := !dreaming.Load()
			dreaming.Store(now)
			if now {
				fmt.Println("🌙 enabled LLM-guided dreaming")
			} else {
				fmt.Println("💤 disabled LLM-guided dreaming")
			}
			continue
		}
		if strings.HasPrefix(input, "/train") {
			rounds := 10
			if parts := strings.Fields(input); len(parts) > 1 {
				if v, err := strconv.Atoi(parts[1]); err == nil {
					rounds = v
				}
			}
			trainWithLLM(mind, llm, rounds)
			saveQuiet(mind, statePath)
			continue
		}
		if input == "/read" {
			ingestDataDir(mind, defaultDataDir, statePath)
			continue
		}
		if strings.HasPrefix(input, "/images") {
			processImageDir(mind, defaultImageDir, statePath)
			continue
		}
		if strings.HasPrefix(input, "/image") {
			path := ""
			if parts := strings.Fields(input); len(parts) > 1 {
				path = parts[1]
			}
			if path == "" {
				fmt.Println("usage: /image <path>")
				continue
			}
			processOneImage(mind, path, statePath)
			continue
		}
		if input == "/learn" {
			superviseImages(mind, defaultImageDir, statePath, scanner)
			continue
		}
		if input == "/imagine" {
			fmt.Print("concept (what should I recall?): ")
			if !scanner.Scan() {
				break
			}
			concept := strings.TrimSpace(scanner.Text())
			if concept == "" {
				fmt.Println("cancelled")
				continue
			}

			recalled := mind.RecallImages(concept, 5)
			if len(recalled) == 0 {
				fmt.Printf("no images near '%s' — imagining instead:\n\n", concept)
				fmt.Println(mind.Imagine(concept, 40, 12))
			} else {
				for i, p := range recalled {
					fmt.Printf("%d. %s\n", i+1, p)
				}
				fmt.Println()
			}
			continue
		}

		// Normal interaction: full intensity.
		journalAdd(journal, "you", input)
		response := mind.Process(input)
		journalAdd(journal, "mind", response)

		fmt.Printf("mind: %s\n\n", response)

		if snap := mind.Snapshot(); snap.Trajectories > 0 && snap.Trajectories%5 == 0 {
			saveQuiet(mind, statePath)
		}
	}

	close(stop)
	if watchStop != nil {
		close(watchStop)
	}
	if err := mind.Save(statePath); err != nil {
		fmt.Fprintf(os.Stderr, "final save failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("bye")
}

func saveQuiet(mind *eli.Mind, statePath string) {
	if err := mind.Save(statePath); err != nil {
		fmt.Fprintf(os.Stderr, "save failed: %v\n", err)
	}
}

// trainWithLLM feeds the mind's own explorations through the language
// bridge and learns the replies at high intensity.
func trainWithLLM(mind *eli.Mind, llm *LLMBridge, rounds int) {
	contexts := []string{
		"hello", "who are you", "what do you feel", "tell me a story",
		"do you dream", "what is beauty", "are you afraid", "sing me a song",
		"what is love", "describe the stars", "who am I", "what is real",
		"make me laugh", "what hurts", "where do you go", "remember this",
		"teach me something", "what matters", "why exist", "create something",
	}

	fmt.Printf("\n🧠 training with LLM for %d rounds...\n\n", rounds)

	for i := 0; i < rounds; i++ {
		context := contexts[i%len(contexts)]
		exploration := mind.Process(fmt.Sprintf("explore %d", i))

		reply, err := llm.TranslateSymbols(exploration, context)
		if err != nil {
			fmt.Printf("[%d] llm unavailable: %v\n", i+1, err)
			continue
		}
		mind.ProcessWithIntensity(reply, 0.8)
		fmt.Printf("[%d] ctx:'%s' fractal:%s → llm:%s\n",
			i+1, context, head(exploration, 30), head(reply, 50))
	}
	fmt.Println("\n✓ training complete")
}

// ingestDataDir reads every file under data/00..data/07 in order, easiest
// first, feeding 10KB chunks with brief pauses so the background loop can
// slip in between.
func ingestDataDir(mind *eli.Mind, baseDir, statePath string) {
	const chunkSize = 10000

	var paths []string
	for i := 0; i < 8; i++ {
		folder := filepath.Join(baseDir, fmt.Sprintf("%02d", i))
		filepath.WalkDir(folder, func(path string, d fs.DirEntry, err error) error {
			if err == nil && !d.IsDir() {
				paths = append(paths, path)
			}
			return nil
		})
	}
	if len(paths) == 0 {
		fmt.Printf("no files found under %s/00 through %s/07\n", baseDir, baseDir)
		return
	}

	fmt.Printf("\n📖 reading %d file(s)...\n\n", len(paths))

	for i, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("[%d/%d] error: %v\n", i+1, len(paths), err)
			continue
		}
		fmt.Printf("[%d/%d] %s (%d bytes)\n", i+1, len(paths), path, len(content))

		for ci := 0; ci < len(content); ci += chunkSize {
			end := ci + chunkSize
			if end > len(content) {
				end = len(content)
			}
			mind.Process(string(content[ci:end]))
			time.Sleep(10 * time.Millisecond)

			if chunk := ci / chunkSize; chunk > 0 && chunk%50 == 0 {
				saveQuiet(mind, statePath)
			}
		}
		saveQuiet(mind, statePath)
	}
	fmt.Printf("\n✓ ingested %d files\n", len(paths))
}

func processOneImage(mind *eli.Mind, path, statePath string) {
	img, err := decodeImage(path)
	if err != nil {
		fmt.Printf("image error: %v\n", err)
		return
	}
	encoded := eli.EncodeEdgeASCII(img, 40, 40)
	mind.ProcessWithIntensity(encoded, 0.3)
	fmt.Printf("✓ image encoded and processed (%d bytes)\n", len(encoded))
	saveQuiet(mind, statePath)
}

func processImageDir(mind *eli.Mind, dir, statePath string) {
	paths := findImages(dir)
	fmt.Printf("\n📸 found %d images\n\n", len(paths))

	for i, path := range paths {
		img, err := decodeImage(path)
		if err != nil {
			fmt.Printf("[%d/%d] error: %v\n", i+1, len(paths), err)
			continue
		}
		fmt.Printf("[%d/%d] %s\n", i+1, len(paths), path)
		mind.ProcessWithIntensity(eli.EncodeEdgeASCII(img, 40, 40), 0.2)

		if (i+1)%10 == 0 {
			saveQuiet(mind, statePath)
		}
	}
	fmt.Printf("\n✓ processed %d images\n", len(paths))
	saveQuiet(mind, statePath)
}

// superviseImages shows each image to the user, lets the mind guess, and
// learns the visual pattern together with the human label at high
// intensity, keeping the image path for later recall.
func superviseImages(mind *eli.Mind, dir, statePath string, scanner *bufio.Scanner) {
	paths := findImages(dir)
	fmt.Printf("\n🎓 interactive learning — %d images\n", len(paths))
	fmt.Println("Commands: <label>, 'skip', 'quit'")

	for i, path := range paths {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(paths), path)

		img, err := decodeImage(path)
		if err != nil {
			fmt.Printf("encoding error: %v\n", err)
			continue
		}
		encoded := eli.EncodeEdgeASCII(img, 60, 40)

		// Sense the pattern first, then guess from fractal space.
		mind.ProcessWithIntensity(encoded, 0.15)
		fmt.Printf("\nmind's guess: %s\n", mind.Process("what is this"))

		fmt.Print("\nyou (what is this?): ")
		if !scanner.Scan() {
			return
		}
		label := strings.TrimSpace(scanner.Text())
		if label == "" || label == "skip" {
			fmt.Println("skipped")
			continue
		}
		if label == "quit" {
			break
		}

		mind.LearnWithImage(encoded+"\n"+label, 0.8, path)
		fmt.Printf("✓ learned: %s\n", label)

		if (i+1)%5 == 0 {
			saveQuiet(mind, statePath)
		}
	}
	fmt.Println("\n✓ learning session complete")
	saveQuiet(mind, statePath)
}

func findImages(dir string) []string {
	exts := map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true}
	var paths []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() && exts[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	return paths
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func head(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
