// Command gbacore is a headless front-end for the emulation core: it
// loads a ROM (and optionally a BIOS and a save file), runs a fixed
// number of frames with no windowing or audio output, and flushes the
// save backend plus an optional frame snapshot on exit.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/mirelan/gbacore/gba"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbacore"
	app.Description = "Headless runner for the GBA emulation core"
	app.Usage = "gbacore [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "bios",
			Usage: "Path to a 16KiB BIOS image (omit to boot with bios-skip)",
		},
		cli.StringFlag{
			Name:  "save",
			Usage: "Path to a save file to preload and flush back to on exit",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run",
			Value: 60,
		},
		cli.StringFlag{
			Name:  "snapshot",
			Usage: "Write the final frame buffer as a raw ARGB8888 dump to this path",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("gbacore failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	var bios []byte
	if path := c.String("bios"); path != "" {
		bios, err = os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading BIOS: %w", err)
		}
	}

	console := gba.New(bios)
	if err := console.LoadROM(rom); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	savePath := c.String("save")
	if savePath != "" {
		if data, err := os.ReadFile(savePath); err == nil {
			console.LoadSave(data)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("reading save: %w", err)
		}
	}

	if bios == nil {
		slog.Info("no BIOS supplied, fast-forwarding past boot")
		console.SkipBIOS()
	}

	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("frames must be positive")
	}

	slog.Info("running", "rom", romPath, "frames", frames)
	for i := 0; i < frames; i++ {
		console.RunFrame()
	}
	slog.Info("run complete", "frames", console.FrameCount())

	if savePath != "" && console.SaveDirty() {
		if err := os.WriteFile(savePath, console.SaveData(), 0644); err != nil {
			return fmt.Errorf("writing save: %w", err)
		}
		slog.Info("save flushed", "path", savePath)
	}

	if path := c.String("snapshot"); path != "" {
		if err := writeSnapshot(path, console); err != nil {
			return fmt.Errorf("writing snapshot: %w", err)
		}
		slog.Info("snapshot written", "path", path)
	}

	return nil
}

func writeSnapshot(path string, console *gba.Console) error {
	fb := console.FrameBuffer()
	buf := make([]byte, 0, len(fb.Pixels)*4)
	for _, px := range fb.Pixels {
		buf = append(buf, byte(px>>24), byte(px>>16), byte(px>>8), byte(px))
	}
	return os.WriteFile(path, buf, 0644)
}
