package main

import (
	"fmt"
	"math/rand"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli"
	"github.com/urfave/cli/altsrc"

	"github.com/harkal/refptr"
	"github.com/harkal/refptr/arena"
)

type stressReport struct {
	Iterations   int    `json:"iterations"`
	Allocations  int    `json:"allocations"`
	Clones       int    `json:"clones"`
	Releases     int    `json:"releases"`
	LocksLive    int    `json:"locks_live"`
	LocksExpired int    `json:"locks_expired"`
	OutOfMemory  int    `json:"out_of_memory"`
	ArenaUsed    uint64 `json:"arena_used"`
	ArenaFree    uint64 `json:"arena_free"`
	LiveBlocks   int64  `json:"live_blocks"`
}

func stressCmd(c *cli.Context) error {
	size := c.Uint64("arenasize") &^ 7
	buf := make([]byte, size)
	a, err := arena.New(buf)
	if err != nil {
		return err
	}

	r := rand.New(rand.NewSource(c.Int64("seed")))
	iterations := c.Int("iterations")
	payload := c.Int("payload")

	var rep stressReport
	rep.Iterations = iterations

	strongs := make([]refptr.Strong[refptr.Buffer], 64)
	weaks := make([]refptr.Weak[refptr.Buffer], 16)

	for i := 0; i < iterations; i++ {
		slot := r.Intn(len(strongs))
		switch r.Intn(4) {
		case 0:
			s, err := refptr.NewBytes(a, uint32(r.Intn(payload)+1))
			if err == arena.ErrOutOfMemory {
				rep.OutOfMemory++
				continue
			} else if err != nil {
				return err
			}
			if !strongs[slot].IsNull() {
				rep.Releases++
			}
			strongs[slot].Release()
			strongs[slot] = s
			rep.Allocations++
		case 1:
			from := r.Intn(len(strongs))
			if from == slot || strongs[from].IsNull() {
				continue
			}
			if !strongs[slot].IsNull() {
				rep.Releases++
			}
			strongs[slot].Release()
			strongs[slot] = strongs[from].Clone()
			rep.Clones++
		case 2:
			if strongs[slot].IsNull() {
				continue
			}
			strongs[slot].Release()
			rep.Releases++
		case 3:
			w := r.Intn(len(weaks))
			s := weaks[w].Lock()
			if s.IsNull() {
				rep.LocksExpired++
				weaks[w].Release()
				weaks[w] = strongs[slot].Downgrade()
			} else {
				rep.LocksLive++
				s.Release()
			}
		}
	}

	for i := range strongs {
		if !strongs[i].IsNull() {
			rep.Releases++
		}
		strongs[i].Release()
	}
	for i := range weaks {
		weaks[i].Release()
	}

	rep.ArenaUsed = a.GetUsed()
	rep.ArenaFree = a.GetFree()
	rep.LiveBlocks = refptr.LiveBlocks()

	if c.Bool("json") {
		out, err := jsoniter.MarshalIndent(&rep, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println("  Stress report ")
	fmt.Println("=================================")
	fmt.Printf(" Iterations   : %d\n", rep.Iterations)
	fmt.Printf(" Allocations  : %d\n", rep.Allocations)
	fmt.Printf(" Clones       : %d\n", rep.Clones)
	fmt.Printf(" Releases     : %d\n", rep.Releases)
	fmt.Printf(" Locks live   : %d\n", rep.LocksLive)
	fmt.Printf(" Locks dead   : %d\n", rep.LocksExpired)
	fmt.Printf(" Out of memory: %d\n", rep.OutOfMemory)
	fmt.Printf(" Arena used   : %d\n", rep.ArenaUsed)
	fmt.Printf(" Arena free   : %d\n", rep.ArenaFree)
	fmt.Printf(" Live blocks  : %d\n", rep.LiveBlocks)
	fmt.Println("=================================")

	if rep.LiveBlocks != 0 {
		return fmt.Errorf("leaked %d control blocks", rep.LiveBlocks)
	}
	a.PrintFreeChunks()

	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "refptr tool"
	app.Version = "0.0.1"
	app.Usage = "Exercise and inspect refptr over an arena"

	stressFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML file supplying the flags below",
		},
		altsrc.NewUint64Flag(cli.Uint64Flag{
			Name:  "arenasize",
			Usage: "Arena capacity in bytes",
			Value: 16 << 20,
		}),
		altsrc.NewIntFlag(cli.IntFlag{
			Name:  "iterations",
			Value: 100000,
		}),
		altsrc.NewIntFlag(cli.IntFlag{
			Name:  "payload",
			Usage: "Maximum payload size in bytes",
			Value: 256,
		}),
		altsrc.NewInt64Flag(cli.Int64Flag{
			Name:  "seed",
			Value: 1,
		}),
		altsrc.NewBoolFlag(cli.BoolFlag{
			Name:  "json",
			Usage: "Print the report as JSON",
		}),
	}

	app.Commands = []cli.Command{
		{
			Name:    "stress",
			Aliases: []string{"s"},
			Usage:   "Run a randomized ownership workload and report",
			Flags:   stressFlags,
			Before:  altsrc.InitInputSourceWithContext(stressFlags, altsrc.NewYamlSourceFromFlagFunc("config")),
			Action:  stressCmd,
		},
	}

	app.Run(os.Args)
}
