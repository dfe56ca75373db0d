// Package main provides the helix-cli command line interface for helix image encryption.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/core"
	"github.com/BackendStack21/helix-go/envelope"
	"github.com/BackendStack21/helix-go/imageio"
	"github.com/BackendStack21/helix-go/metrics"
	"github.com/BackendStack21/helix-go/pipeline"
	"github.com/BackendStack21/helix-go/utils"
)

const (
	version = "1.0.0"
	appName = "helix-cli"

	// MaxInputFileSize bounds files read into memory.
	MaxInputFileSize = 256 * 1024 * 1024
)

// OutputFormat represents the output format for ciphertext and plaintext images
type OutputFormat string

const (
	FormatPNG      OutputFormat = "png"
	FormatBMP      OutputFormat = "bmp"
	FormatEnvelope OutputFormat = "envelope"
)

// CLIConfig holds CLI configuration
type CLIConfig struct {
	Profile      helix.Profile
	Params       helix.Params
	Passphrase   string
	Salt         []byte
	OutputFormat OutputFormat
	OutputFile   string
	InputFile    string
	MaxDimension int
	Verbose      bool
	Timing       bool
}

// DeriveExport represents the output of the derive command
type DeriveExport struct {
	Profile   string       `json:"profile"`
	Salt      string       `json:"salt"`
	Params    helix.Params `json:"params"`
	CreatedAt string       `json:"created_at"`
}

// InspectExport represents an envelope header
type InspectExport struct {
	Version       int    `json:"version"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	DNARounds     int    `json:"dna_rounds"`
	ProteinRounds int    `json:"protein_rounds"`
	Compressed    bool   `json:"compressed"`
	PayloadLen    int    `json:"payload_len"`
	Fingerprint   string `json:"fingerprint"`
}

// EvaluateExport represents the output of the evaluate command
type EvaluateExport struct {
	Width   int          `json:"width"`
	Height  int          `json:"height"`
	Params  helix.Params `json:"params"`
	Metrics helix.Report `json:"metrics"`
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, version)
		fmt.Printf("helix library version %s\n", helix.Version)
	case "encrypt", "enc":
		handleEncrypt(os.Args[2:])
	case "decrypt", "dec":
		handleDecrypt(os.Args[2:])
	case "evaluate", "eval":
		handleEvaluate(os.Args[2:])
	case "derive":
		handleDerive(os.Args[2:])
	case "inspect":
		handleInspect(os.Args[2:])
	case "benchmark":
		handleBenchmark(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - Helix DNA/Chaos Image Encryption CLI

USAGE:
    %s <COMMAND> [OPTIONS]

COMMANDS:
    encrypt     Encrypt a grayscale image
    decrypt     Decrypt an image or envelope
    evaluate    Encrypt, decrypt and report quality metrics as JSON
    derive      Derive chaos parameters from a passphrase
    inspect     Show the header of a sealed envelope
    benchmark   Run performance benchmarks
    version     Show version information
    help        Show this help message

OPTIONS:
    -i, --input <file>          Input image (png, jpeg, gif, bmp) or envelope
    -o, --output <file>         Output file (stdout for JSON when omitted)
    -f, --format <fmt>          Output format: png, bmp, envelope (default: from extension)
    -p, --profile <name>        Parameter profile: standard, extended (default: standard)
        --dna-rounds <n>        Override DNA rounds
        --protein-rounds <n>    Override protein rounds
        --r <float>             Override logistic map parameter r
        --x0 <float>            Override logistic map initial value x0
        --passphrase <text>     Derive r and x0 from a passphrase (needs --salt)
        --salt <hex>            Salt for passphrase derivation
        --max-dim <n>           Downscale inputs larger than n pixels per side
        --verbose               Print details to stderr
        --timing                Print timings to stderr

EXAMPLES:
    # Encrypt with the default parameters
    %s encrypt --input photo.png --output encrypted.png

    # Decrypt
    %s decrypt --input encrypted.png --output decrypted.png

    # Encrypt into a sealed envelope with a passphrase
    %s derive --passphrase "correct horse" > key.json
    %s encrypt -i photo.png -o photo.hlx -f envelope --passphrase "correct horse" --salt <hex>

    # Inspect an envelope
    %s inspect --input photo.hlx

    # Quality metrics
    %s evaluate --input photo.png --profile extended

    # Run benchmarks
    %s benchmark --size 512 --iterations 5
`, appName, appName, appName, appName, appName, appName, appName, appName, appName)
}

// ============================================================================
// Cipher Commands
// ============================================================================

func handleEncrypt(args []string) {
	config := parseConfig(args)
	requireFlag(config.InputFile, "--input")
	requireSalt(config)

	g, err := imageio.ReadFile(config.InputFile, config.MaxDimension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	enc, err := pipeline.EncryptGrid(g, config.Params)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encrypting: %v\n", err)
		os.Exit(1)
	}
	if config.Timing {
		fmt.Fprintf(os.Stderr, "Encryption took: %v\n", elapsed)
	}

	var output []byte
	if config.OutputFormat == FormatEnvelope {
		output, err = envelope.Seal(enc.Pix, enc.Width, enc.Height, config.Params)
	} else {
		output, err = encodeImage(enc, config.OutputFormat)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
	writeBinary(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Encrypted %dx%d image with %s\n", enc.Width, enc.Height, config.Params)
		fmt.Fprintf(os.Stderr, "Output format: %s, size: %d bytes\n", config.OutputFormat, len(output))
	}
}

func handleDecrypt(args []string) {
	config := parseConfig(args)
	requireFlag(config.InputFile, "--input")
	requireSalt(config)

	data, err := readInputFile(config.InputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}

	var g *helix.Grid
	if bytes.HasPrefix(data, []byte(envelope.Magic)) {
		sealed, err := envelope.Open(data, config.Params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening envelope: %v\n", err)
			os.Exit(1)
		}
		g, err = helix.NewGrid(sealed.Header.Width, sealed.Header.Height, sealed.Ciphertext)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else {
		// Ciphertext pixels must not be resampled.
		g, _, err = imageio.DecodeBytes(data, 0)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
			os.Exit(1)
		}
	}

	start := time.Now()
	dec, err := pipeline.DecryptGrid(g, config.Params)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decrypting: %v\n", err)
		os.Exit(1)
	}
	if config.Timing {
		fmt.Fprintf(os.Stderr, "Decryption took: %v\n", elapsed)
	}

	format := config.OutputFormat
	if format == FormatEnvelope {
		format = FormatPNG
	}
	output, err := encodeImage(dec, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
	writeBinary(output, config.OutputFile)

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Decrypted %dx%d image with %s\n", dec.Width, dec.Height, config.Params)
	}
}

func handleEvaluate(args []string) {
	config := parseConfig(args)
	requireFlag(config.InputFile, "--input")
	requireSalt(config)

	g, err := imageio.ReadFile(config.InputFile, config.MaxDimension)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	enc, err := pipeline.EncryptGrid(g, config.Params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encrypting: %v\n", err)
		os.Exit(1)
	}
	dec, err := pipeline.DecryptGrid(enc, config.Params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error decrypting: %v\n", err)
		os.Exit(1)
	}
	p := config.Params
	report, err := metrics.Evaluate(g, enc, dec, pipeline.Encrypt, p.DNARounds, p.ProteinRounds, p.R, p.X0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error evaluating: %v\n", err)
		os.Exit(1)
	}
	if config.Timing {
		fmt.Fprintf(os.Stderr, "Evaluation took: %v\n", time.Since(start))
	}

	export := EvaluateExport{
		Width:   g.Width,
		Height:  g.Height,
		Params:  config.Params,
		Metrics: report,
	}
	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, config.OutputFile)
}

// ============================================================================
// Key Commands
// ============================================================================

func handleDerive(args []string) {
	// parseConfig derives when a salt is given; otherwise a fresh one is generated here.
	config := parseConfig(args)
	requireFlag(config.Passphrase, "--passphrase")
	salt := config.Salt
	params := config.Params
	if salt == nil {
		var err error
		salt, err = utils.SecureRandomBytes(core.MinSaltSize)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating salt: %v\n", err)
			os.Exit(1)
		}
		params, err = derive(config, config.Passphrase, salt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error deriving parameters: %v\n", err)
			os.Exit(1)
		}
		applyOverrides(args, &params)
	}

	export := DeriveExport{
		Profile:   string(config.Profile),
		Salt:      hex.EncodeToString(salt),
		Params:    params,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, config.OutputFile)
}

func handleInspect(args []string) {
	inputFile := getArg(args, "--input", "-i")
	requireFlag(inputFile, "--input")

	data, err := readInputFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
	h, err := envelope.Inspect(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error inspecting envelope: %v\n", err)
		os.Exit(1)
	}

	export := InspectExport{
		Version:       h.Version,
		Width:         h.Width,
		Height:        h.Height,
		DNARounds:     h.DNARounds,
		ProteinRounds: h.ProteinRounds,
		Compressed:    h.Compressed(),
		PayloadLen:    h.PayloadLen,
		Fingerprint:   hex.EncodeToString(h.Fingerprint),
	}
	output, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling output: %v\n", err)
		os.Exit(1)
	}
	writeOutput(output, getArg(args, "--output", "-o"))
}

// ============================================================================
// Benchmark Command
// ============================================================================

func handleBenchmark(args []string) {
	config := parseConfig(args)

	iterations := 10
	if s := getArg(args, "--iterations", "-n"); s != "" {
		_, _ = fmt.Sscanf(s, "%d", &iterations)
	}
	if iterations < 1 {
		iterations = 1
	}
	size := 256
	if s := getArg(args, "--size", "-s"); s != "" {
		_, _ = fmt.Sscanf(s, "%d", &size)
	}
	if size < 8 {
		size = 8
	}

	g := gradient(size)
	p := config.Params

	fmt.Printf("Helix Benchmark Results\n")
	fmt.Printf("=======================\n")
	fmt.Printf("Profile: %s (%s)\n", config.Profile, p)
	fmt.Printf("Image: %dx%d\n", size, size)
	fmt.Printf("Iterations: %d\n\n", iterations)

	var encryptTotal time.Duration
	var enc []byte
	for i := 0; i < iterations; i++ {
		start := time.Now()
		enc = pipeline.Encrypt(g.Pix, p.DNARounds, p.ProteinRounds, p.R, p.X0)
		encryptTotal += time.Since(start)
	}
	fmt.Printf("  Encrypt:     %v (avg)\n", encryptTotal/time.Duration(iterations))

	var decryptTotal time.Duration
	for i := 0; i < iterations; i++ {
		start := time.Now()
		dec := pipeline.Decrypt(enc, p.DNARounds, p.ProteinRounds, p.R, p.X0)
		decryptTotal += time.Since(start)
		if !bytes.Equal(dec, g.Pix) {
			fmt.Fprintf(os.Stderr, "Round trip failed\n")
			os.Exit(1)
		}
	}
	fmt.Printf("  Decrypt:     %v (avg)\n", decryptTotal/time.Duration(iterations))

	mb := float64(len(g.Pix)) / (1 << 20)
	fmt.Printf("  Throughput:  %.2f MB/s (encrypt)\n", mb/(encryptTotal.Seconds()/float64(iterations)))

	workers := runtime.NumCPU()
	batch := make([][]byte, workers*2)
	for i := range batch {
		batch[i] = g.Pix
	}
	start := time.Now()
	if _, err := pipeline.EncryptBatch(context.Background(), batch, p, workers); err != nil {
		fmt.Fprintf(os.Stderr, "Batch error: %v\n", err)
		os.Exit(1)
	}
	batchElapsed := time.Since(start)
	fmt.Printf("  Batch:       %d images on %d workers in %v (%.2f MB/s)\n",
		len(batch), workers, batchElapsed, mb*float64(len(batch))/batchElapsed.Seconds())

	encGrid, _ := helix.NewGrid(size, size, enc)
	decGrid, _ := helix.NewGrid(size, size, pipeline.Decrypt(enc, p.DNARounds, p.ProteinRounds, p.R, p.X0))
	start = time.Now()
	if _, err := metrics.Evaluate(g, encGrid, decGrid, pipeline.Encrypt, p.DNARounds, p.ProteinRounds, p.R, p.X0); err != nil {
		fmt.Fprintf(os.Stderr, "Evaluate error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("  Evaluate:    %v\n", time.Since(start))

	fmt.Println()
	fmt.Println("Benchmark complete!")
}

// ============================================================================
// Utility Functions
// ============================================================================

func parseConfig(args []string) CLIConfig {
	profile, err := core.ParseProfile(getArg(args, "--profile", "-p"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	params, _ := core.GetParams(profile)

	config := CLIConfig{
		Profile:    profile,
		Params:     params,
		InputFile:  getArg(args, "--input", "-i"),
		OutputFile: getArg(args, "--output", "-o"),
		Verbose:    hasFlag(args, "--verbose", ""),
		Timing:     hasFlag(args, "--timing", ""),
	}

	format := getArg(args, "--format", "-f")
	switch format {
	case "png":
		config.OutputFormat = FormatPNG
	case "bmp":
		config.OutputFormat = FormatBMP
	case "envelope", "hlx":
		config.OutputFormat = FormatEnvelope
	case "":
		// Follow the output file extension
		if strings.EqualFold(filepath.Ext(config.OutputFile), ".hlx") {
			config.OutputFormat = FormatEnvelope
		} else {
			config.OutputFormat = OutputFormat(imageio.FormatFromPath(config.OutputFile))
		}
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid format '%s'. Must be one of: png, bmp, envelope\n", format)
		os.Exit(1)
	}

	if s := getArg(args, "--max-dim", ""); s != "" {
		config.MaxDimension = parseInt(s, "--max-dim")
	}

	if s := getArg(args, "--salt", ""); s != "" {
		config.Salt, err = hex.DecodeString(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: --salt must be hex: %v\n", err)
			os.Exit(1)
		}
	}
	config.Passphrase = getArg(args, "--passphrase", "")
	if config.Passphrase != "" && config.Salt != nil {
		config.Params, err = derive(config, config.Passphrase, config.Salt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error deriving parameters: %v\n", err)
			os.Exit(1)
		}
	}

	applyOverrides(args, &config.Params)
	return config
}

// applyOverrides sets explicit parameter flags on params, which may come from a
// profile or a derivation, and exits if the result is invalid.
func applyOverrides(args []string, params *helix.Params) {
	if s := getArg(args, "--dna-rounds", ""); s != "" {
		params.DNARounds = parseInt(s, "--dna-rounds")
	}
	if s := getArg(args, "--protein-rounds", ""); s != "" {
		params.ProteinRounds = parseInt(s, "--protein-rounds")
	}
	if s := getArg(args, "--r", ""); s != "" {
		params.R = parseFloat(s, "--r")
	}
	if s := getArg(args, "--x0", ""); s != "" {
		params.X0 = parseFloat(s, "--x0")
	}

	if err := core.ValidateParams(*params); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// requireSalt rejects a passphrase without a salt. Only derive generates its own salt.
func requireSalt(config CLIConfig) {
	if config.Passphrase != "" && config.Salt == nil {
		fmt.Fprintf(os.Stderr, "Error: --passphrase requires --salt\n")
		os.Exit(1)
	}
}

func derive(config CLIConfig, passphrase string, salt []byte) (helix.Params, error) {
	params, err := core.DeriveParams([]byte(passphrase), salt, config.Profile)
	if err != nil {
		return helix.Params{}, err
	}
	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Derived parameters: %s\n", params)
	}
	return params, nil
}

func getArg(args []string, long, short string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == long || (short != "" && args[i] == short) {
			return args[i+1]
		}
	}
	return ""
}

func hasFlag(args []string, long, short string) bool {
	for _, arg := range args {
		if arg == long || (short != "" && arg == short) {
			return true
		}
	}
	return false
}

func parseInt(s, flag string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s must be an integer: %v\n", flag, err)
		os.Exit(1)
	}
	return n
}

func parseFloat(s, flag string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s must be a number: %v\n", flag, err)
		os.Exit(1)
	}
	return f
}

func requireFlag(value, flag string) {
	if value == "" {
		fmt.Fprintf(os.Stderr, "Error: %s is required\n", flag)
		os.Exit(1)
	}
}

func encodeImage(g *helix.Grid, format OutputFormat) ([]byte, error) {
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, g, imageio.Format(format)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// gradient returns a size x size test image with strong neighbour correlation.
func gradient(size int) *helix.Grid {
	pix := make([]byte, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			pix[y*size+x] = byte(x + y)
		}
	}
	g, _ := helix.NewGrid(size, size, pix)
	return g
}

// readInputFile reads a file with size validation to prevent unbounded reads
func readInputFile(filename string) ([]byte, error) {
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxInputFileSize {
		return nil, fmt.Errorf("file %s exceeds maximum size of %d bytes", filename, MaxInputFileSize)
	}
	return os.ReadFile(filename)
}

// writeBinary writes image or envelope bytes to filename, or raw to stdout.
func writeBinary(data []byte, filename string) {
	if filename == "" {
		if _, err := os.Stdout.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}
	writeOutput(data, filename)
}

func writeOutput(data []byte, filename string) {
	if filename != "" {
		f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		if _, err := f.Write(data); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println(string(data))
	}
}
