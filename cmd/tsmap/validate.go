package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyuri/tsmap/pkg/tsmap"
)

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate <sector.base>...",
	Short: "Validate sector file structure",
	Long: `Validate the structure of one or more sector files.

Parse failures (unknown item types, counts running past the end of the
file) are errors. Unexpected trailing bytes after the node table and
items referencing nodes missing from the sector are warnings.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on warnings")
}

func runValidate(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")

	opts, err := sectorOptions(cmd)
	if err != nil {
		return err
	}

	failed := false
	for _, inputPath := range args {
		v := newValidator(inputPath, strict)

		m, stats, err := tsmap.ParseSectorFile(inputPath, opts)
		if err != nil {
			v.parseFailed(err)
		} else {
			v.issues = append(v.issues, tsmap.Validate(m, stats)...)
		}

		v.printResults(cmd.OutOrStdout())
		if v.failed() {
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// validator collects the issues found in one sector file
type validator struct {
	file   string
	strict bool
	issues []tsmap.ValidationError
}

func newValidator(file string, strict bool) *validator {
	return &validator{file: file, strict: strict}
}

// parseFailed records a parse error, tagged with its code when it has one
func (v *validator) parseFailed(err error) {
	msg := err.Error()
	var tsErr *tsmap.Error
	if errors.As(err, &tsErr) {
		msg = fmt.Sprintf("%s (%s)", msg, tsErr.Code)
	}
	v.issues = append(v.issues, tsmap.ValidationError{Field: "parse", Message: msg, Level: "error"})
}

func (v *validator) count(level string) int {
	n := 0
	for _, issue := range v.issues {
		if issue.Level == level {
			n++
		}
	}
	return n
}

// failed reports whether the file fails validation; with strict set any
// warning fails it too
func (v *validator) failed() bool {
	return v.count("error") > 0 || (v.strict && len(v.issues) > 0)
}

func (v *validator) printResults(w io.Writer) {
	fmt.Fprintf(w, "Validating: %s\n", v.file)
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if len(v.issues) == 0 {
		fmt.Fprintln(w, "✓ Valid sector - no issues found")
		return
	}

	errs, warns := v.count("error"), v.count("warning")
	for _, section := range []struct {
		level, title, mark string
		n                  int
	}{
		{"error", "Errors", "✗", errs},
		{"warning", "Warnings", "⚠", warns},
	} {
		if section.n == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (%d):\n", section.title, section.n)
		for _, issue := range v.issues {
			if issue.Level == section.level {
				fmt.Fprintf(w, "  %s %s: %s\n", section.mark, issue.Field, issue.Message)
			}
		}
	}

	fmt.Fprintln(w)
	switch {
	case errs > 0:
		fmt.Fprintf(w, "Validation failed: %d error(s), %d warning(s)\n", errs, warns)
	case v.strict:
		fmt.Fprintf(w, "Validation failed with %d warning(s) (--strict)\n", warns)
	default:
		fmt.Fprintf(w, "Validation passed with %d warning(s)\n", warns)
	}
}
