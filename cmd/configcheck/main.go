// Command configcheck validates a map configuration JSON file against the
// schema internal/config expects: unique map ids, well-formed roads
// (exactly one of x1/y1 per road), and positive defaults. It prints a
// per-map summary and exits non-zero if the file fails validation.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wricardo/loot-road-game/internal/config"
)

func main() {
	path := flag.String("config-file", "config.json", "path to the map configuration JSON file")
	flag.Parse()

	report, err := checkConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %s: %v\n", *path, err)
		os.Exit(1)
	}
	fmt.Print(report)
}

// checkConfig loads and validates path, returning a human-readable summary
// on success. The returned error is nil only when the file fully validates.
func checkConfig(path string) (string, error) {
	file, err := config.Load(path)
	if err != nil {
		return "", err
	}
	if err := file.Validate(); err != nil {
		return "", err
	}
	maps, err := file.BuildMaps()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s is valid\n", path)
	fmt.Fprintf(&b, "  defaultDogSpeed: %g\n", file.DefaultDogSpeed)
	fmt.Fprintf(&b, "  defaultBagCapacity: %d\n", file.DefaultBagCapacity)
	fmt.Fprintf(&b, "  dogRetirementTime: %gs\n", file.DogRetirementTime)
	fmt.Fprintf(&b, "  lootGeneratorConfig: every %gs, p=%g\n",
		file.LootGeneratorConfig.Period, file.LootGeneratorConfig.Probability)

	for _, m := range maps {
		fmt.Fprintf(&b, "\n  map %q (%s)\n", m.ID, m.Name)
		fmt.Fprintf(&b, "    roads: %d, buildings: %d, offices: %d, lootTypes: %d\n",
			len(m.Roads), len(m.Buildings), len(m.Offices), len(m.LootTypes))
		if m.DogSpeed != nil {
			fmt.Fprintf(&b, "    dogSpeed override: %g\n", *m.DogSpeed)
		}
		if m.BagCapacity != nil {
			fmt.Fprintf(&b, "    bagCapacity override: %d\n", *m.BagCapacity)
		}
	}

	return b.String(), nil
}
