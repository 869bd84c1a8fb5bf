package cmd

import (
	"fmt"
	"os"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/shiena/ansicolor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sbessler/pyra/internal/publish"
)

const version = "1.0.0"

var (
	cfgFile string
	log     = logrus.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pyra",
	Short: "Convert a large raster image into a zoomable tile pyramid",
	Long: `pyra converts one arbitrarily-sized raster image into a set of 256x256
PNG tiles at successive zoom levels, plus an HTML viewer to browse them.

The image is centered on a white power-of-two canvas, downscaled once per
zoom level and sliced into tiles named {z}_{x}_{y}.png. An optional diagram
XML yields clickable markers whose positions are shifted by the framing
offset.

Examples:
  # Convert an image into ./out
  pyra --image pathway.png --out out --title "Glycolysis"

  # Include markers extracted from the diagram XML
  pyra --image pathway.png --diagram pathway.xml --out out

  # Preview a generated folder
  pyra serve --dir out --port 8080`,
	RunE: runGenerate,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLog)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.pyra.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")

	// Input options
	rootCmd.Flags().StringP("image", "i", "", "source raster image (required)")
	rootCmd.Flags().StringP("diagram", "d", "", "diagram XML to extract markers from")

	// Output options
	rootCmd.Flags().StringP("out", "o", "", "target directory (required, created by the run)")
	rootCmd.Flags().String("title", "Diagram", "title of the viewer page")
	rootCmd.Flags().String("author", "", "copyright owner shown in the viewer")
	rootCmd.Flags().BoolP("force", "f", false, "write into an existing target directory")

	// Pipeline options
	rootCmd.Flags().IntP("workers", "w", 4, "tile write workers")
	rootCmd.Flags().Bool("progress", true, "show a progress bar while writing tiles")

	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("image", rootCmd.Flags().Lookup("image"))
	viper.BindPFlag("diagram", rootCmd.Flags().Lookup("diagram"))
	viper.BindPFlag("out", rootCmd.Flags().Lookup("out"))
	viper.BindPFlag("title", rootCmd.Flags().Lookup("title"))
	viper.BindPFlag("author", rootCmd.Flags().Lookup("author"))
	viper.BindPFlag("force", rootCmd.Flags().Lookup("force"))
	viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	viper.BindPFlag("progress", rootCmd.Flags().Lookup("progress"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".pyra" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pyra")
	}

	viper.SetEnvPrefix("pyra")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func initLog() {
	log.SetFormatter(&nested.Formatter{
		HideKeys:        false,
		ShowFullLevel:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	log.SetOutput(ansicolor.NewAnsiColorWriter(os.Stderr))

	level, err := logrus.ParseLevel(viper.GetString("log-level"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	imagePath := viper.GetString("image")
	targetDir := viper.GetString("out")

	if imagePath == "" {
		return fmt.Errorf("a source image is required (use --image)")
	}
	if targetDir == "" {
		return fmt.Errorf("a target directory is required (use --out)")
	}

	params := publish.Params{
		ImagePath:   imagePath,
		DiagramPath: viper.GetString("diagram"),
		TargetDir:   targetDir,
		Title:       viper.GetString("title"),
		Author:      viper.GetString("author"),
		Workers:     viper.GetInt("workers"),
		Progress:    viper.GetBool("progress"),
		Force:       viper.GetBool("force"),
	}

	res, err := publish.New(log).Run(cmd.Context(), params)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "offset: (%d, %d)\nmaxZoom: %d\n",
		res.Offset.X, res.Offset.Y, res.MaxZoom)
	return nil
}
