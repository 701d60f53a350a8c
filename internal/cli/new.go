package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skjoldr/mimir/internal/attach"
	"github.com/skjoldr/mimir/internal/bibtex"
	"github.com/skjoldr/mimir/internal/editor"
	"github.com/skjoldr/mimir/internal/refpath"
	"github.com/skjoldr/mimir/internal/translate"
	"github.com/skjoldr/mimir/internal/ui"
)

var (
	newFrom    string
	newAttach  []string
	newModeStr string
)

// composeTemplate seeds the editor for manual entry.
const composeTemplate = `@article{key,
  author = {},
  title = {},
  year = {}
}
`

var newCmd = &cobra.Command{
	Use:   "new <ref>",
	Short: "Create a new reference",
	Long: `Creates a reference directory at the given path with a reference.bib
record inside it.

The record comes from one of three sources:
  - --from <url>   fetch metadata via the translation server
  - --from <file>  read a BibTeX file
  - neither        open $EDITOR with a template

Attachments given with --attach are placed into the reference directory
using the configured transfer mode (override with --mode).

Examples:
  mmr new cs/ai/aima --from https://example.org/aima
  mmr new cs/tex/knuth --from ~/knuth.bib --attach ~/knuth.pdf
  mmr new misc/ideas`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

func runNew(cmd *cobra.Command, args []string) error {
	ref := refpath.Normalize(args[0])
	if err := refpath.Validate(ref); err != nil {
		return handleError(ErrRefInvalid, err, "")
	}

	st, err := openStore()
	if err != nil {
		return handleError(ErrStoreNotFound, err, "")
	}
	if st.Exists(ref) {
		return handleErrorMsg(ErrRefExists,
			fmt.Sprintf("reference '%s' already exists", ref),
			fmt.Sprintf("Use 'mmr edit %s' to modify it, or 'mmr import' to merge into it", ref))
	}

	mode, err := resolveTransferMode(newModeStr)
	if err != nil {
		return handleError(ErrInvalidInput, err, "Valid modes: ln, cp, mv")
	}

	var raw string
	switch {
	case newFrom == "":
		raw, err = composeRecord()
		if err != nil {
			return handleError(ErrInvalidInput, err,
				"Set 'editor' in config or $EDITOR, or pass --from <url|file>")
		}
	case strings.HasPrefix(newFrom, "http://"), strings.HasPrefix(newFrom, "https://"):
		client := translate.New(getConfig().GetTranslateURL())
		raw, err = client.Fetch(cmd.Context(), newFrom)
		if err != nil {
			return handleError(ErrFetchFailed, err,
				"Is the translation server running? Set translate_url in config")
		}
	default:
		data, readErr := os.ReadFile(newFrom)
		if readErr != nil {
			return handleError(ErrInvalidInput, fmt.Errorf("failed to read %s: %w", newFrom, readErr), "")
		}
		raw = string(data)
	}

	records, err := bibtex.Parse(raw)
	if err != nil {
		return handleError(ErrRecordMalformed, err, "Fix the BibTeX input and try again")
	}
	if len(records) == 0 {
		return handleErrorMsg(ErrInvalidInput, "input contains no BibTeX entries", "")
	}

	destDir, err := st.EnsureDir(ref)
	if err != nil {
		return handleError(ErrInternal, err, "")
	}
	placements, failures := attach.Place(newAttach, destDir, mode)
	if err := st.Write(ref, records); err != nil {
		return handleError(ErrInternal, err, "")
	}

	warnings := attachWarnings(ref, placements, failures)
	warnings = append(warnings, maybeIndex(st, ref, records)...)
	warnings = append(warnings, runConfiguredExports(st)...)

	if isJSONOutput() {
		outputSuccessWithWarnings(map[string]interface{}{
			"ref":         ref,
			"path":        destDir,
			"keys":        recordKeys(records),
			"attachments": placementNames(placements),
		}, warnings, nil)
		return nil
	}

	fmt.Println(ui.Successf("Created %s", ui.RefPath(ref)))
	for _, p := range placements {
		fmt.Printf("  attached: %s\n", p.Name)
	}
	printWarnings(warnings)
	return nil
}

// composeRecord opens the editor with a BibTeX template and returns the
// edited content once the editor exits.
func composeRecord() (string, error) {
	ed := getConfig().GetEditor()
	if ed == "" {
		return "", fmt.Errorf("no editor configured and no --from given")
	}
	data, err := editor.Compose(ed, composeTemplate)
	if err != nil {
		return "", err
	}
	content := string(data)
	if strings.TrimSpace(content) == "" || content == composeTemplate {
		return "", fmt.Errorf("aborted: record left unchanged")
	}
	return content, nil
}

// attachWarnings converts attachment outcomes into response warnings.
func attachWarnings(ref string, placements []attach.Placement, failures []attach.Failure) []Warning {
	var warnings []Warning
	for _, p := range placements {
		if p.CrossDevice {
			warnings = append(warnings, Warning{
				Code:    WarnCrossDevice,
				Message: fmt.Sprintf("%s: hard link crosses filesystems, copied instead", p.Source),
				Ref:     ref,
			})
		}
	}
	for _, f := range failures {
		warnings = append(warnings, Warning{
			Code:    WarnAttachmentFailed,
			Message: f.Error(),
			Ref:     ref,
		})
	}
	return warnings
}

func placementNames(placements []attach.Placement) []string {
	names := make([]string, 0, len(placements))
	for _, p := range placements {
		names = append(names, p.Name)
	}
	return names
}

func recordKeys(records []bibtex.Record) []string {
	keys := make([]string, 0, len(records))
	for _, rec := range records {
		keys = append(keys, rec.Key)
	}
	return keys
}

func init() {
	newCmd.Flags().StringVar(&newFrom, "from", "", "URL or BibTeX file to create the record from")
	newCmd.Flags().StringArrayVar(&newAttach, "attach", nil, "File to attach (repeatable)")
	newCmd.Flags().StringVar(&newModeStr, "mode", "", "Attachment transfer mode: ln, cp, mv")
	rootCmd.AddCommand(newCmd)
}
