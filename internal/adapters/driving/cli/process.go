package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/syllabusmatch/internal/core/domain"
)

var (
	processOwner string
	processJSON  bool
	extractJSON  bool
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Match a syllabus against the corpus and store it",
	Long: `Extracts the course identity from a plain-text syllabus, compares it with
recent signatures (fuzzy) and embeddings (semantic), prints the recommendation
and stores the new signature.

Use "-" to read the syllabus from stdin.

Recommendations:
  join     strong semantic match, join the existing group
  confirm  plausible match, ask the student
  create   nothing close, start a new group`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Show the fields extracted from a syllabus",
	Long:  `Runs field extraction only. Nothing is compared or stored.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	processCmd.Flags().StringVarP(&processOwner, "owner", "o", "", "uploading user ID")
	processCmd.Flags().BoolVar(&processJSON, "json", false, "output the full result as JSON")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output the record as JSON")
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(extractCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if matchingService == nil {
		return errors.New("matching service not configured")
	}

	text, err := readSyllabus(cmd, args[0])
	if err != nil {
		return err
	}

	result, err := matchingService.Process(cmd.Context(), text, processOwner)
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}

	if processJSON {
		return printJSON(cmd, result)
	}
	printRecord(cmd, result.Record)
	cmd.Printf("Signature:      %s\n", result.Signature.SignatureText)
	cmd.Println()
	printDecision(cmd, result.Decision)
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	if matchingService == nil {
		return errors.New("matching service not configured")
	}

	text, err := readSyllabus(cmd, args[0])
	if err != nil {
		return err
	}

	record := matchingService.Extract(text)
	if extractJSON {
		return printJSON(cmd, record)
	}
	printRecord(cmd, record)
	return nil
}

// readSyllabus reads path, or stdin when path is "-".
func readSyllabus(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading syllabus: %w", err)
	}
	return string(data), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func printRecord(cmd *cobra.Command, r domain.SyllabusRecord) {
	field := func(label string, v *string) {
		cmd.Printf("%-15s %s\n", label+":", orDash(v))
	}
	field("Course code", r.CourseCode)
	field("Course title", r.CourseTitle)
	field("Instructor", r.Instructor)
	field("Email", r.InstructorEmail)
	sem := r.SemesterString()
	field("Semester", &sem)
	field("Year", r.Year)
	field("University", r.University)
	field("Department", r.Department)
	cmd.Printf("%-15s %.0f%%\n", "Confidence:", r.Confidence*100)
}

func printDecision(cmd *cobra.Command, d domain.Decision) {
	cmd.Printf("Recommendation: %s (%s)\n", d.Recommendation, d.Recommendation.Description())
	if d.BestMatch != nil {
		cmd.Printf("Best match:     %s\n", describeCandidate(*d.BestMatch))
	}

	printCandidates(cmd, "Semantic matches", d.SemanticMatches)
	printCandidates(cmd, "Fuzzy matches", d.FuzzyMatches)
}

func printCandidates(cmd *cobra.Command, title string, cands []domain.MatchCandidate) {
	if len(cands) == 0 {
		return
	}
	cmd.Println()
	cmd.Printf("%s:\n", title)
	for i, c := range cands {
		cmd.Printf("  [%d] %s\n", i+1, describeCandidate(c))
	}
}

func describeCandidate(c domain.MatchCandidate) string {
	s := c.Signature
	name := strings.TrimSpace(s.CourseCode + " " + s.CourseTitle)
	return fmt.Sprintf("%s, %s %s, %s (%.2f, %s) %s",
		name, s.Semester, s.Year, s.University, c.Similarity, c.Method, c.Reason)
}

func orDash(v *string) string {
	if v == nil || *v == "" {
		return "-"
	}
	return *v
}
