package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/aouyang1/go-windcaster"
	"github.com/aouyang1/go-windcaster/forecast"
	"github.com/aouyang1/go-windcaster/observation"
)

func loadOptions(path string) (*windcaster.Options, error) {
	if path == "" {
		return windcaster.NewDefaultOptions(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return windcaster.LoadOptions(f)
}

func loadObservations(path string, simulate int, marine bool) ([]observation.Observation, error) {
	if path == "" {
		opt := observation.NewDefaultSimulateOptions()
		opt.IncludeMarine = marine
		start := time.Now().UTC().Truncate(time.Hour).Add(-time.Duration(simulate) * time.Hour)
		return observation.GenerateHourly(simulate, start, opt), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return observation.ReadCSV(f)
}

type config struct {
	configPath string
	obsPath    string
	simulate   int
	horizon    int
	plotPath   string
}

func run(ctx context.Context, cfg config) error {
	opt, err := loadOptions(cfg.configPath)
	if err != nil {
		return fmt.Errorf("config load failed, %w", err)
	}
	obs, err := loadObservations(cfg.obsPath, cfg.simulate, opt.ForecastOptions.IncludeMarine)
	if err != nil {
		return fmt.Errorf("observations load failed, %w", err)
	}

	f, err := windcaster.New(opt)
	if err != nil {
		return fmt.Errorf("forecaster initialization failed, %w", err)
	}
	defer f.Close()

	err = f.Train(ctx, obs, func(p forecast.Progress) {
		if p.Stage == forecast.StageTraining && p.CurrentEpoch%10 == 0 {
			slog.Info("training", "epoch", p.CurrentEpoch, "of", p.TotalEpochs, "loss", p.Loss, "validation_loss", p.ValidationLoss)
		}
	})
	if err != nil {
		return fmt.Errorf("training failed, %w", err)
	}

	chunks, err := f.Predict(ctx, obs, cfg.horizon)
	if err != nil {
		return fmt.Errorf("forecast failed, %w", err)
	}

	res, err := f.Results()
	if err != nil {
		return fmt.Errorf("results unavailable, %w", err)
	}
	out, err := res.JSON()
	if err != nil {
		return fmt.Errorf("unable to encode results, %w", err)
	}
	fmt.Println(string(out))

	if cfg.plotPath == "" {
		return nil
	}
	file, err := os.Create(cfg.plotPath)
	if err != nil {
		return fmt.Errorf("unable to create plot, %w", err)
	}
	defer file.Close()
	if err := f.PlotForecast(file, obs, chunks); err != nil {
		return fmt.Errorf("plot failed, %w", err)
	}
	return nil
}

func main() {
	var cfg config
	flag.StringVar(&cfg.configPath, "config", "", "yaml options file path")
	flag.StringVar(&cfg.obsPath, "observations", "", "csv observations file path, synthetic data is used if empty")
	flag.IntVar(&cfg.simulate, "simulate", 14*24, "hours of synthetic observations when no observations file is given")
	flag.IntVar(&cfg.horizon, "horizon", 0, "hours to forecast, defaults to the configured horizon")
	flag.StringVar(&cfg.plotPath, "plot", "", "optional html chart output path")
	verbose := flag.Bool("v", false, "log every training epoch")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, cfg)
	stop()
	if err != nil {
		slog.Error("windcast failed", "error", err.Error())
		os.Exit(1)
	}
}
