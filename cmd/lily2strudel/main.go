// Package main is the entry point for the lily2strudel CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/strudelkit/lily2strudel/pkg/api"
	"github.com/strudelkit/lily2strudel/pkg/converter"
	"github.com/strudelkit/lily2strudel/pkg/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	outputFile string
	pageTitle  string
	libraries  []string
	serverPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lily2strudel",
	Short: "Convert LilyPond notation and bar sequences to Strudel patterns",
	Long: `lily2strudel translates LilyPond notation (.ly) into Strudel live-coding
patterns, and composes YAML bar sequences from reusable pattern libraries
into full LilyPond scores.

Examples:
  lily2strudel convert song.ly -o song.html
  lily2strudel ly2strudel song.ly -o song.js
  lily2strudel ly2midi song.ly -o song.mid
  lily2strudel seq2ly set.yml --library patterns -o set.ly
  lily2strudel tui
  lily2strudel serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Auto-detect and convert between formats",
	Long:  `Automatically detects input format and converts to the output format based on file extension.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

var ly2strudelCmd = &cobra.Command{
	Use:   "ly2strudel <input.ly>",
	Short: "Convert LilyPond notation to a Strudel script",
	Args:  cobra.ExactArgs(1),
	RunE:  runLyToScript,
}

var ly2htmlCmd = &cobra.Command{
	Use:   "ly2html <input.ly>",
	Short: "Convert LilyPond notation to a strudel-repl embed page",
	Args:  cobra.ExactArgs(1),
	RunE:  runLyToHTML,
}

var ly2midiCmd = &cobra.Command{
	Use:   "ly2midi <input.ly>",
	Short: "Convert LilyPond notation to a standard MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runLyToMIDI,
}

var seq2lyCmd = &cobra.Command{
	Use:   "seq2ly <input.yml>",
	Short: "Render a YAML bar sequence as a LilyPond score",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeqToLy,
}

var seq2strudelCmd = &cobra.Command{
	Use:   "seq2strudel <input.yml>",
	Short: "Render a YAML bar sequence as a Strudel script",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeqToScript,
}

var seq2htmlCmd = &cobra.Command{
	Use:   "seq2html <input.yml>",
	Short: "Render a YAML bar sequence as a strudel-repl embed page",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeqToHTML,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringSliceVarP(&libraries, "library", "l", []string{"patterns"}, "Pattern library roots for sequence input")
	rootCmd.PersistentFlags().StringVarP(&pageTitle, "title", "t", "", "Page title for HTML output (defaults to the input file name)")

	// Convert command
	convertCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file path (required)")
	_ = convertCmd.MarkFlagRequired("output")

	ly2strudelCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .js file path")
	ly2htmlCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .html file path")
	ly2midiCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .mid file path")
	seq2lyCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .ly file path")
	seq2strudelCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .js file path")
	seq2htmlCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output .html file path")

	// serve command
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	// Add commands
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(ly2strudelCmd)
	rootCmd.AddCommand(ly2htmlCmd)
	rootCmd.AddCommand(ly2midiCmd)
	rootCmd.AddCommand(seq2lyCmd)
	rootCmd.AddCommand(seq2strudelCmd)
	rootCmd.AddCommand(seq2htmlCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func getConverter(input string) *converter.Converter {
	conv := converter.New()
	conv.SetLibraries(libraries)
	title := pageTitle
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	}
	conv.SetTitle(title)
	return conv
}

func getOutputPath(input, defaultExt string) string {
	if outputFile != "" {
		return outputFile
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + defaultExt
}

func runConvert(cmd *cobra.Command, args []string) error {
	input := args[0]
	conv := getConverter(input)

	fmt.Printf("Converting %s -> %s\n", input, outputFile)
	if err := conv.ConvertFile(input, outputFile); err != nil {
		return err
	}
	fmt.Println("Conversion complete!")
	return nil
}

func runFileConversion(input, defaultExt string, convert func(*converter.Converter, []byte) ([]byte, error)) error {
	output := getOutputPath(input, defaultExt)

	conv := getConverter(input)
	data, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	result, err := convert(conv, data)
	if err != nil {
		return err
	}

	if err := os.WriteFile(output, result, 0644); err != nil {
		return err
	}

	fmt.Printf("Converted %s -> %s\n", input, output)
	return nil
}

func runLyToScript(cmd *cobra.Command, args []string) error {
	input := args[0]
	return runFileConversion(input, ".js", func(c *converter.Converter, data []byte) ([]byte, error) {
		return c.LyToScript(data, filepath.Dir(input))
	})
}

func runLyToHTML(cmd *cobra.Command, args []string) error {
	input := args[0]
	return runFileConversion(input, ".html", func(c *converter.Converter, data []byte) ([]byte, error) {
		return c.LyToHTML(data, filepath.Dir(input))
	})
}

func runLyToMIDI(cmd *cobra.Command, args []string) error {
	input := args[0]
	return runFileConversion(input, ".mid", func(c *converter.Converter, data []byte) ([]byte, error) {
		return c.LyToMIDI(data, filepath.Dir(input))
	})
}

func runSeqToLy(cmd *cobra.Command, args []string) error {
	return runFileConversion(args[0], ".ly", (*converter.Converter).SeqToLy)
}

func runSeqToScript(cmd *cobra.Command, args []string) error {
	return runFileConversion(args[0], ".js", (*converter.Converter).SeqToScript)
}

func runSeqToHTML(cmd *cobra.Command, args []string) error {
	return runFileConversion(args[0], ".html", (*converter.Converter).SeqToHTML)
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run(libraries)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort, api.ServerConfig{Libraries: libraries})
}
