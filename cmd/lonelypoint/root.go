package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hupe1980/lonelypoint"
	"github.com/hupe1980/lonelypoint/blobstore"
)

// newRootCmd builds the lonelypoint command. Flags are bound to a fresh
// Config so commands can be created repeatedly in tests.
func newRootCmd() *cobra.Command {
	cfg := DefaultConfig()
	var configPath string

	cmd := &cobra.Command{
		Use:   "lonelypoint [structure]",
		Short: "Find the point of a crystal cell farthest from every atom",
		Long: `lonelypoint samples the unit cell of a crystal structure on a regular
grid, finds the grid point whose nearest atom is farthest away, prints a
report and writes a copy of the structure with a marker atom at that point.

The input may be a local path, s3://bucket/key or minio://bucket/key. The
format follows the file extension (.cif, .xyz, .extxyz, .vasp, POSCAR,
.json), optionally compressed with .gz, .zst or .lz4.`,
		Example: `  lonelypoint NaCl.cif
  lonelypoint --resolution 50 --marker He -o out/NaCl_marked.xyz NaCl.cif
  lonelypoint --config lonelypoint.yaml s3://structures/mp-22862.cif`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath == "" {
				return nil
			}
			return applyConfigFile(cmd.Flags(), &cfg, configPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				cfg.Path = args[0]
			}
			return run(cmd, &cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	f.StringVarP(&cfg.Output, "output", "o", cfg.Output, "output location (default: tag + input name, next to the input)")
	f.StringVar(&cfg.Tag, "tag", cfg.Tag, "prefix for the default output name")
	f.IntVarP(&cfg.Resolution, "resolution", "n", cfg.Resolution, "grid points per cell axis")
	f.Float64Var(&cfg.Spacing, "spacing", cfg.Spacing, "derive the resolution from a maximum grid spacing in Å (overrides --resolution)")
	f.StringVar(&cfg.Marker, "marker", cfg.Marker, "chemical symbol of the marker atom")
	f.StringVar(&cfg.ExtraMarker, "extra-marker", cfg.ExtraMarker, `additional marker at a fractional position, e.g. "0.5,0.5,0.5"`)
	f.StringVar(&cfg.Engine, "engine", cfg.Engine, "nearest-neighbour engine: kdtree or flat")
	f.BoolVar(&cfg.Periodic, "periodic", cfg.Periodic, "include atoms of neighbouring cells")
	f.IntVarP(&cfg.Workers, "workers", "j", cfg.Workers, "query workers (default: number of CPUs)")
	f.StringVar(&cfg.TieBreak, "tie-break", cfg.TieBreak, "tie policy: enumeration or lowest-index")
	f.Float64Var(&cfg.TieTolerance, "tie-tolerance", cfg.TieTolerance, "distance tolerance for lowest-index ties")
	f.IntVar(&cfg.Precision, "precision", cfg.Precision, "decimals in the report")
	f.IntVar(&cfg.DumpCandidates, "dump-candidates", cfg.DumpCandidates, "write the top K candidates as JSON (-1 for all)")
	f.StringVar(&cfg.DumpPath, "dump-path", cfg.DumpPath, "candidate dump name next to the output (default: output name + .candidates.json)")
	f.BoolVar(&cfg.ValidateCell, "validate-cell", cfg.ValidateCell, "reject cells with zero volume")
	f.Int64Var(&cfg.MemoryLimit, "memory-limit", cfg.MemoryLimit, "maximum grid memory in bytes (0: unlimited)")
	f.Int64Var(&cfg.MaxQueryWorkers, "max-query-workers", cfg.MaxQueryWorkers, "maximum concurrent query shards (0: unlimited)")
	f.Int64Var(&cfg.IOLimit, "io-limit", cfg.IOLimit, "maximum output bytes per second (0: unlimited)")
	f.StringVar(&cfg.ViewCommand, "view", cfg.ViewCommand, `viewer command started with the annotated structure, e.g. "ase gui"`)
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json")

	return cmd
}

// applyConfigFile loads path into cfg and then re-applies the flags that
// were set explicitly, so the command line wins over the file.
func applyConfigFile(flags *pflag.FlagSet, cfg *Config, path string) error {
	explicit := map[string]string{}
	flags.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	loaded, err := LoadConfig(path)
	if err != nil {
		return err
	}
	*cfg = loaded

	for name, value := range explicit {
		if err := flags.Set(name, value); err != nil {
			return fmt.Errorf("flag --%s: %w", name, err)
		}
	}
	return nil
}

func run(cmd *cobra.Command, cfg *Config) error {
	ctx := cmd.Context()
	if cfg.Path == "" {
		return errors.New("no input structure: pass a path or set path in the config file")
	}

	in, err := ParseLocation(cfg.Path)
	if err != nil {
		return err
	}
	out := in.Tagged(cfg.Tag)
	if cfg.Output != "" {
		if out, err = ParseLocation(cfg.Output); err != nil {
			return err
		}
	}
	dumpName := cfg.DumpPath
	if dumpName == "" && cfg.DumpCandidates != 0 {
		dumpName = out.Name + ".candidates.json"
	}

	opts, err := cfg.finderOptions(cmd.OutOrStdout(), cmd.ErrOrStderr(), dumpName)
	if err != nil {
		return err
	}

	inStore, err := in.Open(ctx, cfg)
	if err != nil {
		return err
	}
	var outStore blobstore.BlobStore = inStore
	if !sameStore(in, out) {
		if outStore, err = out.Open(ctx, cfg); err != nil {
			return err
		}
	}

	if _, err := lonelypoint.New(opts...).Run(ctx, inStore, in.Name, outStore, out.Name); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nAnnotated structure written to %s\n", out)
	return nil
}
