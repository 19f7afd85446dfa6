// Package linear pushes a generated backlog to a Linear team as issues.
package linear

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shubh-37/idea-processor/internal/models"
)

const DefaultBaseURL = "https://api.linear.app/graphql"

var ErrNotConfigured = errors.New("linear export is not configured")

type Client struct {
	apiKey     string
	teamID     string
	httpClient *http.Client
	baseURL    string

	mu       sync.Mutex
	exported map[string]Issue // session/idea/pbi -> created issue
}

type GraphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

type Issue struct {
	ID         string `json:"id"`
	Identifier string `json:"identifier"`
	Title      string `json:"title"`
	URL        string `json:"url"`
}

type IssueInput struct {
	TeamID      string `json:"teamId"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    int    `json:"priority,omitempty"`
	Estimate    int    `json:"estimate,omitempty"`
}

type Option func(*Client)

// WithBaseURL points the client at another GraphQL endpoint
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(apiKey, teamID string, opts ...Option) (*Client, error) {
	if apiKey == "" || teamID == "" {
		return nil, ErrNotConfigured
	}
	c := &Client{
		apiKey:     apiKey,
		teamID:     teamID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    DefaultBaseURL,
		exported:   make(map[string]Issue),
	}
	for _, opt := range opts {
		opt(c)
	}
	log.Println("✅ Linear backlog export enabled")
	return c, nil
}

func (c *Client) query(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	jsonData, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("linear API error (status %d): %s", resp.StatusCode, string(body))
	}

	var gqlResp GraphQLResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		return nil, fmt.Errorf("GraphQL error: %s", gqlResp.Errors[0].Message)
	}
	return gqlResp.Data, nil
}

const createIssueMutation = `
	mutation($input: IssueCreateInput!) {
		issueCreate(input: $input) {
			success
			issue {
				id
				identifier
				title
				url
			}
		}
	}
`

func (c *Client) CreateIssue(ctx context.Context, input IssueInput) (*Issue, error) {
	data, err := c.query(ctx, createIssueMutation, map[string]any{"input": input})
	if err != nil {
		return nil, err
	}

	var result struct {
		IssueCreate struct {
			Success bool  `json:"success"`
			Issue   Issue `json:"issue"`
		} `json:"issueCreate"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse issue: %w", err)
	}
	if !result.IssueCreate.Success {
		return nil, fmt.Errorf("linear rejected issue %q", input.Title)
	}
	return &result.IssueCreate.Issue, nil
}

// ExportBacklog creates one issue per PBI. PBIs already exported for the
// same session and idea return their earlier issue, so a repeated export
// only fills in what failed before.
func (c *Client) ExportBacklog(ctx context.Context, sessionID string, idea models.Idea, pbis []models.PBI) ([]Issue, error) {
	issues := make([]Issue, 0, len(pbis))
	for _, pbi := range pbis {
		key := sessionID + "/" + idea.ID + "/" + pbi.ID

		c.mu.Lock()
		existing, done := c.exported[key]
		c.mu.Unlock()
		if done {
			issues = append(issues, existing)
			continue
		}

		issue, err := c.CreateIssue(ctx, IssueInput{
			TeamID:      c.teamID,
			Title:       fmt.Sprintf("[%s] %s", pbi.ID, pbi.Title),
			Description: issueDescription(idea, pbi),
			Priority:    priority(pbi.Priority),
			Estimate:    pbi.StoryPoints,
		})
		if err != nil {
			return issues, fmt.Errorf("failed to export %s: %w", pbi.ID, err)
		}

		c.mu.Lock()
		c.exported[key] = *issue
		c.mu.Unlock()
		issues = append(issues, *issue)
	}
	log.Printf("📋 Exported %d backlog item(s) for %q to Linear", len(issues), idea.Name)
	return issues, nil
}

// priority maps MoSCoW onto Linear's 1 (urgent) .. 4 (low)
func priority(moscow string) int {
	switch strings.ToLower(moscow) {
	case "must":
		return 1
	case "should":
		return 2
	case "could":
		return 3
	case "won't", "wont":
		return 4
	}
	return 0
}

func issueDescription(idea models.Idea, pbi models.PBI) string {
	var b strings.Builder
	b.WriteString(pbi.UserStory)
	b.WriteString("\n\n")
	if len(pbi.AcceptanceCriteria) > 0 {
		b.WriteString("**Acceptatiecriteria**\n")
		for _, ac := range pbi.AcceptanceCriteria {
			fmt.Fprintf(&b, "- [ ] %s\n", ac)
		}
		b.WriteString("\n")
	}
	if pbi.BusinessValue != "" {
		fmt.Fprintf(&b, "**Business value:** %s\n\n", pbi.BusinessValue)
	}
	if len(pbi.Dependencies) > 0 {
		fmt.Fprintf(&b, "**Afhankelijkheden:** %s\n\n", strings.Join(pbi.Dependencies, ", "))
	}
	fmt.Fprintf(&b, "_Idee: %s (%s)_", idea.Name, idea.Content)
	return b.String()
}
