// Command gcbuild is the build CLI surface spec.md §6 describes: a
// thin driver over internal/build.Engine.BuildArchive, grounded on
// cmd/lci/main.go's urfave/cli/v2 command tree (one global root/config
// flag pair, one cli.Command per verb).
package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/gcbuild/internal/archive"
	"github.com/standardbeagle/gcbuild/internal/binder"
	"github.com/standardbeagle/gcbuild/internal/build"
	"github.com/standardbeagle/gcbuild/internal/config"
	builderrors "github.com/standardbeagle/gcbuild/internal/errors"
	"github.com/standardbeagle/gcbuild/internal/manifest"
	"github.com/standardbeagle/gcbuild/internal/tagfields"
)

func newEngine() *build.Engine {
	e := build.NewEngine(binder.NewRegistry(), tagfields.NewRegistry(), binder.Warn)
	registerSchema(e)
	return e
}

func loadParams(c *cli.Context) (*config.BuildParameters, error) {
	root := c.String("root")
	params, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if unknown := c.String("unknown-members"); unknown != "" {
		switch unknown {
		case "ignore":
			params.UnknownMembers = binder.Ignore
		case "warn":
			params.UnknownMembers = binder.Warn
		case "error":
			params.UnknownMembers = binder.Error
		default:
			return nil, fmt.Errorf("--unknown-members must be one of ignore|warn|error, got %q", unknown)
		}
	}
	return params, nil
}

// exitCode maps a finished BuildLog to spec.md §6's exit codes: 0
// success, 1 build error (structural/syntactic/semantic/internal), 2
// validation error (reference/patch), 3 IO. The mapping goes by error
// category alone, whichever pipeline stage logged the error.
func exitCode(log *builderrors.BuildLog) int {
	if !log.HasErrors() {
		return 0
	}
	sawValidation := false
	for _, m := range log.Errors() {
		if m.Category == builderrors.IO {
			return 3
		}
	}
	for _, m := range log.Errors() {
		if m.Category == builderrors.Reference || m.Category == builderrors.Patch {
			sawValidation = true
		}
	}
	if sawValidation {
		return 2
	}
	return 1
}

func printReport(log *builderrors.BuildLog) {
	for _, m := range log.Messages {
		fmt.Fprintln(os.Stderr, m.Error())
	}
}

func runBuild(c *cli.Context, writeOutput bool) error {
	params, err := loadParams(c)
	if err != nil {
		return cli.Exit(err.Error(), 3)
	}

	var parent *archive.Archive
	parentID := ""
	if path := c.String("parent"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("reading parent archive %s: %v", path, err), 3)
		}
		parent, err = archive.Decode(raw)
		if err != nil {
			return cli.Exit(fmt.Sprintf("decoding parent archive %s: %v", path, err), 3)
		}
		parentID = hex.EncodeToString(parent.Version[:])
	}

	e := newEngine()
	result, err := e.BuildArchive(context.Background(), params, time.Now().UTC(), parentID, parent)
	if err != nil {
		return cli.Exit(err.Error(), 3)
	}
	printReport(result.Log)

	code := exitCode(result.Log)
	if code != 0 {
		return cli.Exit(fmt.Sprintf("build failed with %d error(s)", len(result.Log.Errors())), code)
	}

	if !writeOutput {
		fmt.Fprintf(os.Stdout, "ok: %d entries, %d message(s)\n", len(result.Archive.Entries), len(result.Log.Messages))
		return nil
	}

	out := c.String("out")
	data, err := archive.Encode(result.Archive, params.SchemaVersion, params.MinCompressSize)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return cli.Exit(err.Error(), 3)
	}
	fmt.Fprintf(os.Stdout, "wrote %s (%d bytes, %d entries)\n", out, len(data), len(result.Archive.Entries))
	return nil
}

func runInspect(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("usage: gcbuild inspect <archive-path>", 3)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cli.Exit(err.Error(), 3)
	}
	a, err := archive.Decode(raw)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	fmt.Printf("version    %s\n", hex.EncodeToString(a.Version[:]))
	fmt.Printf("createdAt  %s\n", a.CreatedAt.Format(time.RFC3339))
	fmt.Printf("entries    %d\n", len(a.Entries))
	for _, e := range a.Entries {
		fmt.Printf("  %-40s %8d bytes  %s\n", e.Name, len(e.Bytes), hex.EncodeToString(e.Hash[:]))
	}

	if data, ok := a.Bytes(manifest.EntryName); ok {
		meta, err := manifest.Decode(data)
		if err != nil {
			return cli.Exit(fmt.Sprintf("decoding %s: %v", manifest.EntryName, err), 1)
		}
		fmt.Printf("\n%s:\n", manifest.EntryName)
		fmt.Printf("  parentId        %s\n", meta.ParentID)
		fmt.Printf("  sourceDir       %s\n", meta.SourceDir)
		fmt.Printf("  schemaVersion   %d\n", meta.SchemaVersion)
		fmt.Printf("  unknownMembers  %s\n", meta.UnknownMembers)
		fmt.Printf("  experiments     %v\n", meta.Experiments)
		fmt.Printf("  report          info=%d warning=%d error=%d\n", meta.Report.Infos, meta.Report.Warnings, meta.Report.Errors)
	}
	return nil
}

func main() {
	app := &cli.App{
		Name:  "gcbuild",
		Usage: "compile spreadsheet-authored game configuration into a versioned archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root (sheet source directory and .gcbuild.kdl/.toml lookup)",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:  "unknown-members",
				Usage: "override the project config's unknown-member policy: ignore|warn|error",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "build an archive and write it to disk",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "output archive path",
						Value:   "config.archive",
					},
					&cli.StringFlag{
						Name:  "parent",
						Usage: "previous archive path, for an incremental build that carries forward unregenerated entries",
					},
				},
				Action: func(c *cli.Context) error { return runBuild(c, true) },
			},
			{
				Name:  "validate",
				Usage: "run the full build pipeline and report problems without writing an archive",
				Action: func(c *cli.Context) error {
					return runBuild(c, false)
				},
			},
			{
				Name:      "inspect",
				Usage:     "print an existing archive's entries and _metadata",
				ArgsUsage: "<archive-path>",
				Action:    runInspect,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if ec, ok := err.(cli.ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		os.Exit(1)
	}
}
