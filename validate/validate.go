// Command validate provides a small CLI that validates board configuration
// files (YAML or JSON) in the ../configs directory, or the directory given as
// the first argument. It checks:
//   - Schema and playability rules enforced by the server when loading a board
//   - Reachability: every tile can be visited starting from Start, following
//     loop steps, airport flights and jail transfers
//
// It also prints a short summary of each valid board.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/richman/game/config"
	"github.com/wricardo/mcp-training/richman/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single board file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	if _, err := os.Stat(filePath); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	board, err := config.LoadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid board: %v", err))
		return result
	}

	reachability := validateReachability(board)
	if !reachability.Valid {
		result.Valid = false
	}
	result.Errors = append(result.Errors, reachability.Errors...)

	if result.Valid {
		result.Errors = append(result.Errors, summarize(board)...)
	}
	return result
}

// summarize lists informational facts about a valid board
func summarize(board *engine.GameConfig) []string {
	kinds := make(map[engine.TileKind]int)
	properties, totalPrice := 0, 0
	for _, t := range board.Tiles {
		kinds[t.Kind]++
		if t.Kind == engine.TileProperty {
			properties++
			totalPrice += t.Price
		}
	}

	names := make([]string, 0, len(kinds))
	for kind, n := range kinds {
		names = append(names, fmt.Sprintf("%s=%d", kind, n))
	}
	sort.Strings(names)

	symbols := make([]string, len(board.Stocks))
	for i, s := range board.Stocks {
		symbols[i] = s.Symbol
	}

	topo := board.Topology
	return []string{
		fmt.Sprintf("✓ Name: %s", board.Name),
		fmt.Sprintf("✓ Tiles: %d (%d outer, %d inner)", topo.Size(), topo.OuterSize, topo.InnerSize),
		fmt.Sprintf("✓ Kinds: %s", strings.Join(names, " ")),
		fmt.Sprintf("✓ Properties: %d worth $%d", properties, totalPrice),
		fmt.Sprintf("✓ Stocks: %s", strings.Join(symbols, ", ")),
		fmt.Sprintf("✓ Starting money: $%d", board.Rules.StartingMoney),
	}
}

// validateReachability walks the board graph from tile 0. Each tile leads to
// its next step; airports also lead to the hub and the go-to-jail tile leads
// to jail. Tiles the walk never visits can never be landed on.
func validateReachability(board *engine.GameConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	topo := board.Topology
	visited := make([]bool, topo.Size())
	queue := []int{0}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		next, _ := topo.Next(current)
		edges := []int{next}
		if t := board.Tile(current); t != nil && t.Kind == engine.TileAirport && current != topo.GoToJail {
			edges = append(edges, topo.Hub)
		}
		if current == topo.GoToJail {
			edges = append(edges, topo.Jail)
		}
		for _, n := range edges {
			if topo.Contains(n) && !visited[n] {
				queue = append(queue, n)
			}
		}
	}

	unreachable := []string{}
	for id, seen := range visited {
		if !seen {
			name := ""
			if t := board.Tile(id); t != nil {
				name = t.Name
			}
			unreachable = append(unreachable, fmt.Sprintf("Tile %d (%s)", id, name))
		}
	}

	if len(unreachable) > 0 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Reachability failure: %d/%d tiles unreachable from Start", len(unreachable), topo.Size()))
		for _, tile := range unreachable {
			result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: %s", tile))
		}
	} else {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Reachability: All %d tiles reachable from Start", topo.Size()))
	}

	return result
}

// configFiles lists board files in dir
func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && config.IsConfigFile(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// main validates each board file, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}
	files, err := configFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No board files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
