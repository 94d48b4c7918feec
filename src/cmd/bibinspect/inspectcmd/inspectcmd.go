package inspectcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"bibinspect/src/internal/audit"
	"bibinspect/src/internal/bibtex"
	"bibinspect/src/internal/config"
	"bibinspect/src/internal/entry"
	"bibinspect/src/internal/logging"
	"bibinspect/src/internal/rules"
)

// New returns the root command: inspect one .bib file and log entries that
// are missing required (and, with --optional, optional) fields.
func New() *cobra.Command {
	var input string
	var optional bool
	cmd := &cobra.Command{
		Use:   "bibinspect -i input.bib [--optional]",
		Short: "Inspect bib files with required fields",
		Long: `Inspect a BibTeX file and report entries missing fields.

Missing required fields are logged as [ERROR], missing optional fields (with
--optional) and unrecognized entry types as [WARNING]. Findings never change the
exit status; only an unreadable or malformed input does.

Settings beyond the flags come from BIBINSPECT_* environment variables or
.bibinspect.yaml: optional, rules (path to a YAML rules file), jobs, log_level.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			logger := logging.Setup(cmd.ErrOrStderr(), cfg.LogLevel)

			reg, err := registryFor(cfg)
			if err != nil {
				return err
			}
			recs, err := bibtex.ParseFile(input)
			if err != nil {
				return err
			}
			entries := entry.FromRecords(recs)
			logger.Debug("parsed", "file", input, "entries", len(entries))

			in := audit.NewInspector(reg,
				audit.WithOptional(cfg.Optional),
				audit.WithJobs(cfg.Jobs),
				audit.WithLogger(logger),
			)
			diags, err := in.Inspect(cmd.Context(), entries)
			if err != nil {
				return err
			}
			audit.NewReporter(logger).Report(cmd.Context(), diags)
			logger.Debug("inspected", "entries", len(entries), "diagnostics", len(diags))
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input .bib file")
	cmd.Flags().BoolVar(&optional, "optional", false, "Show optional warnings")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func registryFor(cfg config.Config) (*rules.Registry, error) {
	if cfg.Rules == "" {
		return rules.Default(), nil
	}
	exts, err := rules.LoadFile(cfg.Rules)
	if err != nil {
		return nil, err
	}
	reg, err := rules.Default().Extend(exts)
	if err != nil {
		return nil, fmt.Errorf("rules %s: %w", cfg.Rules, err)
	}
	return reg, nil
}
