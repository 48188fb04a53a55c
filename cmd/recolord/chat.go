package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pssnndl/Recolorization/internal/config"
	"github.com/pssnndl/Recolorization/internal/engine"
	"github.com/pssnndl/Recolorization/internal/gateway"
	"github.com/pssnndl/Recolorization/internal/imaging"
	"github.com/pssnndl/Recolorization/internal/palette"
	"github.com/pssnndl/Recolorization/internal/session"
	"github.com/pssnndl/Recolorization/pkg/models"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the recoloring agent in the terminal",
	Long: `Start a local chat session.

Type messages as you would in the web UI. To attach an image, use:
  /image path/to/picture.png [optional message]

Recolored results are written next to the original as <name>.recolored.png.
Exit with /quit or Ctrl-D.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := log.New(os.Stderr)
	logger.SetLevel(log.WarnLevel)

	dbPath := cfg.Session.DBPath
	if dbPath == "" {
		dbPath = session.DefaultDBPath()
	}
	db, err := session.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate session store: %w", err)
	}

	eng := engine.New(engine.Config{
		Store:     db,
		LLM:       buildLLM(cfg, logger),
		Recolorer: gateway.NewModelClient(cfg.Model.URL, cfg.Model.Timeout),
		Fetcher:   palette.NewExternalClient(cfg.Palette.ExternalURL, cfg.Palette.FetchTime),
		Validator: imaging.NewValidator(imaging.Config{
			MaxBytes: cfg.Image.MaxBytes,
			MaxDim:   cfg.Image.MaxDim,
			Block:    cfg.Image.Block,
		}),
		Slots:  cfg.Palette.Slots,
		Logger: logger,
	})

	sessionID := models.NewSession("").ID
	bold := color.New(color.Bold)
	bold.Println("recolord chat. /image <path> attaches an image, /quit exits.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	var lastImagePath string

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		req := engine.TurnRequest{SessionID: sessionID}
		if rest, ok := strings.CutPrefix(line, "/image "); ok {
			parts := strings.SplitN(strings.TrimSpace(rest), " ", 2)
			data, err := os.ReadFile(parts[0])
			if err != nil {
				color.Red("cannot read %s: %v", parts[0], err)
				continue
			}
			req.Image = data
			lastImagePath = parts[0]
			if len(parts) == 2 {
				req.Message = parts[1]
			}
		} else {
			req.Message = line
		}

		reply, err := eng.HandleTurn(context.Background(), req)
		if err != nil {
			color.Red("turn failed: %v", err)
			continue
		}

		fmt.Println(reply.Message)
		if reply.Session.HasPalette() {
			printSwatches(*reply.Session.Palette)
		}
		if len(reply.Result) > 0 {
			out := resultPath(lastImagePath)
			if err := os.WriteFile(out, reply.Result, 0644); err != nil {
				color.Red("cannot write result: %v", err)
				continue
			}
			bold.Printf("saved %s\n", out)
		}
	}
}

// printSwatches renders the palette as colored blocks with hex labels.
func printSwatches(p models.Palette) {
	for _, c := range p.Colors {
		color.BgRGB(int(c.R), int(c.G), int(c.B)).Print("    ")
		fmt.Print(" ")
	}
	fmt.Println()
	for _, c := range p.Colors {
		fmt.Printf("%s ", c.Hex())
	}
	fmt.Println()
}

func resultPath(imagePath string) string {
	if imagePath == "" {
		return "recolored.png"
	}
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	return base + ".recolored.png"
}
