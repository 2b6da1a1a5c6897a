package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"surveyhub/internal/model"
	"surveyhub/internal/service"
)

var validateServer string

var validateCmd = &cobra.Command{
	Use:   "validate <respondent-id>",
	Short: "Check a stored respondent document for structural problems",
	Long: `Fetch GET /v1/data/{id} from a running server and check the document:
record and respondent ids present, no empty common fields, labels on every
question, and RANK answers with exactly three choices.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateServer, "server", "http://localhost:8000", "Base URL of the running server")
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	doc, err := fetchDocument(ctx, validateServer, args[0])
	if err != nil {
		return err
	}

	issues := service.NewValidator().Validate(doc)
	out := cmd.OutOrStdout()
	if len(issues) == 0 {
		fmt.Fprintf(out, "%s: ok\n", doc.RespondentID)
		return nil
	}
	for _, issue := range issues {
		switch {
		case issue.QuestionID != "":
			fmt.Fprintf(out, "%s: question %s: %s\n", doc.RespondentID, issue.QuestionID, issue.Message)
		case issue.Field != "":
			fmt.Fprintf(out, "%s: field %s: %s\n", doc.RespondentID, issue.Field, issue.Message)
		default:
			fmt.Fprintf(out, "%s: %s\n", doc.RespondentID, issue.Message)
		}
	}
	return fmt.Errorf("%w: %d issue(s)", errInvalid, len(issues))
}

func fetchDocument(ctx context.Context, server, id string) (*model.Document, error) {
	target := strings.TrimRight(server, "/") + "/v1/data/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("respondent %s not found", id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var body struct {
		Data *model.Document `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if body.Data == nil {
		return nil, fmt.Errorf("server returned no document for %s", id)
	}
	return body.Data, nil
}
