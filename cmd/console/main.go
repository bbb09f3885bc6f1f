package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/Brownie44l1/soil-api/internal/app"
	"github.com/Brownie44l1/soil-api/internal/config"
	"github.com/Brownie44l1/soil-api/internal/history"
	"github.com/Brownie44l1/soil-api/internal/render"
	"github.com/Brownie44l1/soil-api/internal/soil"
)

func main() {
	err := mainImpl()
	if err != nil {
		fmt.Fprintln(os.Stderr, render.Error(err))
		os.Exit(1)
	}
}

func mainImpl() error {
	configPath := flag.String("config", config.DefaultPath, "path to config.yaml")
	verbose := flag.Bool("v", false, "log model loading")
	flag.Parse()

	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	logger := log.New(logOut, "[soil-api] ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	rl, err := readline.New("tanah> ")
	if err != nil {
		return err
	}
	defer func() {
		_ = rl.Close()
	}()

	fmt.Println("Path gambar tanah (jpg/jpeg/png), :soils, :history, :quit")
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case ":quit":
			return nil
		case ":soils":
			fmt.Print(render.Classes(soil.Classes()))
			continue
		case ":history":
			records, err := a.Recorder.Recent(ctx, 10)
			if err != nil {
				fmt.Print(render.Error(err))
				continue
			}
			for _, r := range records {
				fmt.Printf("%s  %-14s %.3f  %s\n", r.CreatedAt.Local().Format("15:04:05"), r.Soil, r.Confidence, r.Source)
			}
			continue
		}

		out, err := classifyFile(ctx, a, line)
		if err != nil {
			fmt.Print(render.Error(err))
			continue
		}
		fmt.Print(out)
	}
	return nil
}

func classifyFile(ctx context.Context, a *app.App, path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png":
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}

	res, err := a.Classifier.Predict(img)
	if err != nil {
		return "", err
	}
	if _, err := a.Recorder.Record(ctx, history.Record{
		Source:     filepath.Base(path),
		Soil:       string(res.Soil),
		Confidence: res.Confidence,
	}); err != nil {
		fmt.Print(render.Error(err))
	}
	return render.Result(res.Soil, res.Confidence, soil.Recommend(string(res.Soil))), nil
}
