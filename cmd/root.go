package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photomesh/internal/config"
)

// errReported marks a failure that has already been logged.
var errReported = errors.New("failure already reported")

var (
	configPath string
	verbose    bool
	minImages  int
	minShort   int
	strict     bool

	logFile    bool
	detailFlag string
	skipChecks bool
	engineBin  string
)

var rootCmd = &cobra.Command{
	Use:   "photomesh [flags] <input-folder> <output-file>",
	Short: "photomesh - turn a folder of photographs into a 3D model",
	Long: `photomesh validates a folder of photographs and hands it to an external
photogrammetry renderer, printing the path of the finished model.

Examples:
  photomesh ./shots model.usdz
  photomesh --detail full --strict-input-checks ./shots out/model.usdz
  photomesh check ./shots`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRender,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "photomesh:", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	defaults := config.DefaultConfig()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML file with default settings")
	pf.BoolVarP(&verbose, "verbose", "v", defaults.Verbose, "log debug detail")
	pf.IntVar(&minImages, "min-images", defaults.MinImages, "recommended minimum number of images")
	pf.IntVar(&minShort, "min-short-side", defaults.MinShortSide, "recommended minimum short side in pixels")
	pf.BoolVar(&strict, "strict-input-checks", defaults.Strict, "fail when input checks produce any warning")

	f := rootCmd.Flags()
	f.BoolVar(&logFile, "logfile", defaults.LogFile, "also write logs to <output-file>.log")
	f.StringVar(&detailFlag, "detail", defaults.Detail, "detail level: preview, reduced, medium, full, raw")
	f.BoolVar(&skipChecks, "skip-input-checks", defaults.SkipInputChecks, "do not validate the input folder")
	f.StringVar(&engineBin, "engine", defaults.Engine, "renderer executable")
}

// loadConfig layers defaults, the config file, the environment, and any
// flag explicitly set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.DefaultConfig()
	if configPath != "" {
		if err := cfg.LoadFile(configPath); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("min-images") {
		cfg.MinImages = minImages
	}
	if flags.Changed("min-short-side") {
		cfg.MinShortSide = minShort
	}
	if flags.Changed("strict-input-checks") {
		cfg.Strict = strict
	}
	if flags.Changed("logfile") {
		cfg.LogFile = logFile
	}
	if flags.Changed("detail") {
		cfg.Detail = detailFlag
	}
	if flags.Changed("skip-input-checks") {
		cfg.SkipInputChecks = skipChecks
	}
	if flags.Changed("engine") {
		cfg.Engine = engineBin
	}
	return cfg, nil
}
