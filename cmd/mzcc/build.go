package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fortio.org/safecast"
	"github.com/spf13/cobra"

	"mzcc/pkg/diag"
	"mzcc/pkg/pipeline"
	"mzcc/pkg/vfs"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path]",
	Short: "Compile a project or a single source file",
	Long:  "Compile a project described by mzcc.toml, or a single .c file given on the command line.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) error {
	backendValue, err := cmd.Flags().GetString("backend")
	if err != nil {
		return err
	}
	outFlag, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	report, err := cmd.Flags().GetBool("report")
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return err
	}

	startDir := "."
	if len(args) > 0 {
		startDir = args[0]
	}

	var (
		name       string
		sourceHost string
		outputName string
		cfg        pipeline.Config
	)

	if info, statErr := os.Stat(startDir); statErr == nil && !info.IsDir() {
		// Single-file mode: no manifest required.
		sourceHost = startDir
		name = strings.TrimSuffix(filepath.Base(startDir), filepath.Ext(startDir))
		outputName = name + ".exe"
	} else {
		manifest, found, err := loadManifest(startDir)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no %s found; pass a .c file or run inside a project", manifestName)
		}
		name = manifest.Config.Package.Name
		sourceHost = filepath.Join(manifest.Root, manifest.Config.Build.Source)
		outputName = manifest.Config.Build.Output
		if outputName == "" {
			outputName = name + ".exe"
		}
		// An explicit --backend beats the manifest; the flag default
		// does not.
		if manifest.Config.Build.Backend != "" && !cmd.Flags().Changed("backend") {
			backendValue = manifest.Config.Build.Backend
		}
		if err := applyManifestLimits(&cfg, manifest); err != nil {
			return err
		}
		cfg.Options = pipeline.CompileOptions{
			Optimize:    manifest.Config.Options.Optimize,
			Warnings:    manifest.Config.Options.Warnings,
			Debug:       manifest.Config.Options.Debug,
			CustomFlags: manifest.Config.Options.Flags,
		}
	}
	if outFlag != "" {
		outputName = outFlag
	}

	source, err := os.ReadFile(sourceHost)
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", sourceHost, err)
	}

	// The guest store uses a fixed per-project layout.
	srcVirtual := "/C/PROJECT/" + virtualName(sourceHost)
	outVirtual := "/C/PROJECT/" + virtualName(outputName)

	disk := vfs.NewDisk()
	if err := disk.WriteBinary(srcVirtual, source); err != nil {
		return fmt.Errorf("failed to seed guest store: %w", err)
	}

	cfg.ProjectName = name
	cfg.SourcePath = srcVirtual
	cfg.OutputPath = outVirtual
	cfg.Backend = pipeline.BackendKind(backendValue)
	cfg.Report = report
	cfg.MaxDuration = timeout

	p := pipeline.New(disk)
	res := p.Compile(cfg)

	diag.Fprint(os.Stdout, p.Diagnostics())

	if !res.Success {
		return fmt.Errorf("build failed with %d error(s)", len(res.Errors))
	}

	outputHost := filepath.Join(filepath.Dir(sourceHost), outputName)
	if err := os.WriteFile(outputHost, res.Executable, 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", outputHost, err)
	}
	if report {
		if blob, err := disk.Read(pipeline.ReportPath(outVirtual)); err == nil {
			reportHost := strings.TrimSuffix(outputHost, filepath.Ext(outputHost)) + ".rep"
			if err := os.WriteFile(reportHost, blob, 0644); err != nil {
				return fmt.Errorf("failed to write %q: %w", reportHost, err)
			}
		}
	}

	fmt.Printf("built %s (%d bytes in %s)\n", outputHost, len(res.Executable), res.CompilationTime.Round(time.Millisecond))
	return nil
}

// applyManifestLimits narrows the manifest's integer fields into their
// 16- and 8-bit homes, rejecting out-of-range values instead of letting
// them wrap.
func applyManifestLimits(cfg *pipeline.Config, manifest *projectManifest) error {
	stack, err := safecast.Conv[uint16](manifest.Config.Build.Stack)
	if err != nil {
		return fmt.Errorf("%s: [build].stack %d is out of range (0-65535)", manifest.Path, manifest.Config.Build.Stack)
	}
	exitCode, err := safecast.Conv[uint8](manifest.Config.Build.ExitCode)
	if err != nil {
		return fmt.Errorf("%s: [build].exit_code %d is out of range (0-255)", manifest.Path, manifest.Config.Build.ExitCode)
	}
	cfg.StackSize = stack
	cfg.ExitCode = exitCode
	return nil
}

func init() {
	buildCmd.Flags().String("backend", string(pipeline.BackendFull), "build backend (full, extended, placeholder)")
	buildCmd.Flags().String("out", "", "output file name (default: manifest [build].output or <name>.exe)")
	buildCmd.Flags().Bool("report", false, "write a machine-readable build report beside the artifact")
	buildCmd.Flags().Duration("timeout", 0, "maximum build duration (0 = unbounded)")
}
