// Command avertv-console is a keyboard remote for the AVerTV USB2.0 in the
// terminal: source cycling, channel up and down, picture adjustment and
// standard detection, with the log shown underneath.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	avertv "github.com/kevmo314/go-avertv"
	"github.com/kevmo314/go-avertv/pkg/app"
	"github.com/kevmo314/go-avertv/pkg/config"
	"github.com/kevmo314/go-avertv/pkg/logging"
)

var version = "dev"

const colorStep = 0.05

const help = `[yellow]s[white]  next source
[yellow]n/p[white] next/prev channel
[yellow]space[white] pause/resume
[yellow]b/B[white] brightness +/-
[yellow]c/C[white] contrast +/-
[yellow]u/U[white] saturation +/-
[yellow]h/H[white] hue +/-
[yellow]r[white]  reset color
[yellow]d[white]  detect standard
[yellow]l[white]  toggle LED
[yellow]q[white]  quit`

func main() {
	configPath := flag.String("config", "avertv.yaml", "path to the config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ui := tview.NewApplication()

	logText := tview.NewTextView()
	logText.SetMaxLines(200).SetBorder(true).SetTitle("Log")
	logText.SetChangedFunc(func() { ui.Draw() })
	logger := logging.NewWithWriter(logText, cfg.Logging, version)

	a, err := app.FromConfig(cfg, logger)
	if err != nil {
		log.Fatalf("failed to open device: %v", err)
	}
	defer a.Close()

	statusText := tview.NewTextView().SetDynamicColors(true)
	statusText.SetBorder(true).SetTitle("AVerTV USB2.0")

	helpText := tview.NewTextView().SetDynamicColors(true).SetText(help)
	helpText.SetBorder(true).SetTitle("Keys")

	led := true
	// refresh must not run on the UI goroutine: describe waits for the
	// device lock, which a retune holds through the tuner settle time.
	refresh := func() {
		text := describe(a)
		ui.QueueUpdateDraw(func() { statusText.SetText(text) })
	}

	// run executes fn off the UI goroutine; device calls can block for the
	// tuner settle time.
	run := func(what string, fn func() error) {
		go func() {
			if err := fn(); err != nil {
				logger.Error(what+" failed", "err", err)
			}
			refresh()
		}()
	}
	adjust := func(fn func(c *avertv.Color)) {
		run("color", func() error { return a.AdjustColor(fn) })
	}

	ui.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() != tcell.KeyRune {
			return event
		}
		switch event.Rune() {
		case ' ':
			run("pause", a.TogglePause)
		case 's':
			run("source switch", a.CycleSource)
		case 'n':
			run("channel", a.NextChannel)
		case 'p':
			run("channel", a.PrevChannel)
		case 'b':
			adjust(func(c *avertv.Color) { c.Brightness += colorStep })
		case 'B':
			adjust(func(c *avertv.Color) { c.Brightness -= colorStep })
		case 'c':
			adjust(func(c *avertv.Color) { c.Contrast += colorStep })
		case 'C':
			adjust(func(c *avertv.Color) { c.Contrast -= colorStep })
		case 'u':
			adjust(func(c *avertv.Color) { c.Saturation += colorStep })
		case 'U':
			adjust(func(c *avertv.Color) { c.Saturation -= colorStep })
		case 'h':
			adjust(func(c *avertv.Color) { c.Hue += colorStep })
		case 'H':
			adjust(func(c *avertv.Color) { c.Hue -= colorStep })
		case 'r':
			run("color reset", a.ResetColor)
		case 'd':
			run("detect", func() error {
				det, err := a.DetectStandard()
				if err == nil {
					logger.Info("status #5", "raw", fmt.Sprintf("0x%02x", det.Raw), "standard", det.Standard, "recognized", det.Recognized)
				}
				return err
			})
		case 'l':
			led = !led
			on := led
			run("led", func() error { return a.SetLED(on) })
		case 'q':
			ui.Stop()
		default:
			return event
		}
		return nil
	})

	top := tview.NewFlex().
		AddItem(statusText, 0, 2, false).
		AddItem(helpText, 28, 0, false)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 14, 0, false).
		AddItem(logText, 0, 1, false)

	go func() {
		if err := a.Start(); err != nil {
			logger.Error("bring-up failed", "err", err)
		}
		refresh()
	}()

	if err := ui.SetRoot(root, true).Run(); err != nil {
		log.Printf("console: %v", err)
	}

	if err := a.Shutdown(); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func describe(a *app.App) string {
	e := a.Status("")
	var b strings.Builder
	fmt.Fprintf(&b, "Source     [green]%s[white]\n", e.Source)
	fmt.Fprintf(&b, "Standard   %s", e.Standard)
	if e.EffectiveStandard != "" {
		fmt.Fprintf(&b, " (running %s)", e.EffectiveStandard)
	}
	fmt.Fprintf(&b, "\nCapture    %dx%d\n", e.Width, e.Height)
	fmt.Fprintf(&b, "Audio      %s\n", e.Audio)
	if e.Paused {
		b.WriteString("           [yellow]paused[white]\n")
	}
	if e.Source == avertv.SourceTV.String() {
		lock := "[red]no signal[white]"
		if e.VerticalLock && e.HorizontalLock {
			lock = "[green]locked[white]"
		}
		fmt.Fprintf(&b, "Channel    %s %.2f MHz %s\n", e.Channel, e.FrequencyMHz, lock)
	}
	fmt.Fprintf(&b, "Brightness %.2f  Contrast %.2f\n", e.Color.Brightness, e.Color.Contrast)
	fmt.Fprintf(&b, "Saturation %.2f  Hue %+.2f\n", e.Color.Saturation, e.Color.Hue)
	if e.Streamer != "" {
		fmt.Fprintf(&b, "Streamer   %s\n", e.Streamer)
	}
	return b.String()
}
