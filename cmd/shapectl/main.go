// shapectl is a CLI client for the ShapeRunner service.
//
// It reads a JSON input record from stdin or a file, runs the named shape,
// and prints the output as JSON (or raw msgpack for piping).
//
//	echo '{"repo_summary":"a CLI tool","constraints":[]}' | shapectl -shape FeatureDesign
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/BaSui01/shaperunner/client"
	"github.com/BaSui01/shaperunner/codec"
	"github.com/BaSui01/shaperunner/shape"
)

func main() {
	shapeID := flag.String("shape", shape.FeatureDesignID, "Shape ID to execute")
	server := flag.String("server", "http://localhost:8080", "Server address")
	inputPath := flag.String("input", "-", `Input file path ("-" for stdin)`)
	format := flag.String("format", "json", "Output format: json or msgpack")
	timeout := flag.Duration("timeout", 60*time.Second, "Request timeout")
	flag.Parse()

	if err := run(*shapeID, *server, *inputPath, *format, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "shapectl: %v\n", err)
		os.Exit(1)
	}
}

func run(shapeID, server, inputPath, format string, timeout time.Duration) error {
	inputJSON, err := readInput(inputPath)
	if err != nil {
		return err
	}

	c := client.New(server, client.WithTimeout(timeout))
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var output any
	switch shapeID {
	case shape.FeatureDesignID:
		var in shape.FeatureDesignInput
		if err := json.Unmarshal(inputJSON, &in); err != nil {
			return fmt.Errorf("failed to parse input JSON: %w", err)
		}
		var out shape.FeatureDesignOutput
		if err := c.Run(ctx, shapeID, in, &out); err != nil {
			return err
		}
		output = out
	case shape.FormationID:
		var in shape.FormationInput
		if err := json.Unmarshal(inputJSON, &in); err != nil {
			return fmt.Errorf("failed to parse input JSON: %w", err)
		}
		var out shape.FormationOutput
		if err := c.Run(ctx, shapeID, in, &out); err != nil {
			return err
		}
		output = out
	default:
		return fmt.Errorf("unknown shape: %s", shapeID)
	}

	switch format {
	case "json":
		pretty, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize output: %w", err)
		}
		fmt.Println(string(pretty))
	case "msgpack":
		data, err := codec.Msgpack{}.Encode(output)
		if err != nil {
			return fmt.Errorf("failed to encode output: %w", err)
		}
		if _, err := os.Stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file %s: %w", path, err)
	}
	return data, nil
}
