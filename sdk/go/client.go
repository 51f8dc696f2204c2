package goalboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionHeader selects the server side wizard session.
const SessionHeader = "X-Wizard-Session"

// Client is a minimal Goalboard HTTP API client.
type Client struct {
	BaseURL    string
	BasePath   string
	Session    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

// Initiative represents the API initiative model (partial).
type Initiative struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	InitiativeName string `json:"initiativeName"`
	GoalYear       string `json:"goalYear"`
	Driver         string `json:"driver"`
	Department     string `json:"department"`
	StatusUpdate   string `json:"statusUpdate"`
	CreatedAt      string `json:"createdAt"`
}

// Project represents the API project model (partial).
type Project struct {
	ID                    string `json:"id"`
	InitiativeID          string `json:"initiativeId"`
	InitiativeName        string `json:"initiativeName"`
	Function              string `json:"function"`
	StatusUpdate          string `json:"statusUpdate"`
	PrimaryResponsibility string `json:"primaryResponsibility"`
	CreatedAt             string `json:"createdAt"`
}

// Option is one picker entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// WizardState is the wizard view returned by every wizard call.
type WizardState struct {
	Session    string         `json:"session"`
	Form       map[string]any `json:"form"`
	CanAdvance bool           `json:"canAdvance"`
	CanSubmit  bool           `json:"canSubmit"`
}

// Transition reports whether a next/back/reset call moved the wizard.
type Transition struct {
	Accepted bool        `json:"accepted"`
	Wizard   WizardState `json:"wizard"`
}

type InitiativeSubmit struct {
	Accepted   bool        `json:"accepted"`
	Message    string      `json:"message"`
	Initiative *Initiative `json:"initiative"`
	Wizard     WizardState `json:"wizard"`
}

type ProjectSubmit struct {
	Accepted bool        `json:"accepted"`
	Reason   string      `json:"reason"`
	Message  string      `json:"message"`
	Project  *Project    `json:"project"`
	Wizard   WizardState `json:"wizard"`
}

// InitiativeInput carries both wizard steps of an initiative.
type InitiativeInput struct {
	Basics          map[string]any
	Details         map[string]any
	ReviewFrequency []string
	Review          map[string]string
}

// ProjectInput carries both wizard steps of a project.
type ProjectInput struct {
	InitiativeID    string
	Details         map[string]any
	ReviewFrequency []string
	Review          map[string]string
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// RefusedError is returned when the server declines a wizard transition.
type RefusedError struct {
	Wizard string
	Step   string
	Reason string
}

func (e *RefusedError) Error() string {
	msg := fmt.Sprintf("%s wizard refused %s", e.Wizard, e.Step)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Initiatives lists stored initiatives in creation order.
func (c *Client) Initiatives(ctx context.Context) ([]Initiative, error) {
	var resp struct {
		Items []Initiative `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "initiatives", nil, &resp)
	return resp.Items, err
}

// Projects lists stored projects, optionally for one initiative.
func (c *Client) Projects(ctx context.Context, initiativeID string) ([]Project, error) {
	endpoint := "projects"
	if initiativeID != "" {
		endpoint += "?initiative_id=" + url.QueryEscape(initiativeID)
	}
	var resp struct {
		Items []Project `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp.Items, err
}

// Dashboard returns the dashboard summary as decoded JSON.
func (c *Client) Dashboard(ctx context.Context) (map[string]any, error) {
	var resp map[string]any
	err := c.do(ctx, http.MethodGet, "dashboard", nil, &resp)
	return resp, err
}

// Delays returns the overdue milestones.
func (c *Client) Delays(ctx context.Context) ([]map[string]any, error) {
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "delays", nil, &resp)
	return resp.Items, err
}

// Report returns the rows of one report: shaping-goals, initiatives or projects.
func (c *Client) Report(ctx context.Context, name string) ([]map[string]any, error) {
	var resp struct {
		Items []map[string]any `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "reports/"+url.PathEscape(name), nil, &resp)
	return resp.Items, err
}

// Export streams the report workbook into w.
func (c *Client) Export(ctx context.Context, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("reports/export"), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// InitiativeOptions lists the initiatives a project can be attached to.
func (c *Client) InitiativeOptions(ctx context.Context) ([]Option, error) {
	var resp struct {
		Items []Option `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "wizards/project/options", nil, &resp)
	return resp.Items, err
}

// CreateInitiative drives the initiative wizard from step 1 to submit. Each
// call runs on its own throwaway session so a refused attempt leaves nothing
// behind for the next one.
func (c *Client) CreateInitiative(ctx context.Context, in InitiativeInput) (InitiativeSubmit, error) {
	var out InitiativeSubmit
	err := c.inFreshSession(ctx, func(s *Client) error {
		if err := s.do(ctx, http.MethodPatch, "wizards/initiative", patchBody("basics", in.Basics, nil), nil); err != nil {
			return err
		}
		if err := s.step(ctx, "initiative", "next"); err != nil {
			return err
		}
		if err := s.do(ctx, http.MethodPatch, "wizards/initiative", patchBody("details", in.Details, in.ReviewFrequency), nil); err != nil {
			return err
		}
		if len(in.Review) > 0 {
			if err := s.do(ctx, http.MethodPatch, "wizards/initiative/review", in.Review, nil); err != nil {
				return err
			}
		}
		if err := s.do(ctx, http.MethodPost, "wizards/initiative/submit", nil, &out); err != nil {
			return err
		}
		if !out.Accepted {
			return &RefusedError{Wizard: "initiative", Step: "submit"}
		}
		return nil
	})
	return out, err
}

// CreateProject drives the project wizard from step 1 to submit on a
// throwaway session.
func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (ProjectSubmit, error) {
	var out ProjectSubmit
	err := c.inFreshSession(ctx, func(s *Client) error {
		if err := s.do(ctx, http.MethodPatch, "wizards/project", map[string]any{"initiativeId": in.InitiativeID}, nil); err != nil {
			return err
		}
		if err := s.step(ctx, "project", "next"); err != nil {
			return err
		}
		if err := s.do(ctx, http.MethodPatch, "wizards/project", patchBody("details", in.Details, in.ReviewFrequency), nil); err != nil {
			return err
		}
		if len(in.Review) > 0 {
			if err := s.do(ctx, http.MethodPatch, "wizards/project/review", in.Review, nil); err != nil {
				return err
			}
		}
		if err := s.do(ctx, http.MethodPost, "wizards/project/submit", nil, &out); err != nil {
			return err
		}
		if !out.Accepted {
			return &RefusedError{Wizard: "project", Step: "submit", Reason: out.Reason}
		}
		return nil
	})
	return out, err
}

// DropSession forgets the server side wizards of the client's session.
func (c *Client) DropSession(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "wizards/session", nil, nil)
}

// inFreshSession runs fn with a copy of c bound to a new session id and drops
// that session afterwards, whatever fn returned.
func (c *Client) inFreshSession(ctx context.Context, fn func(*Client) error) error {
	s := *c
	s.HTTPClient = c.httpClient()
	s.Session = uuid.NewString()
	if c.Session != "" {
		s.Session = c.Session + "-" + s.Session
	}
	err := fn(&s)
	if dropErr := s.DropSession(context.WithoutCancel(ctx)); err == nil {
		err = dropErr
	}
	return err
}

func patchBody(key string, fields map[string]any, toggles []string) map[string]any {
	body := map[string]any{}
	if len(fields) > 0 {
		body[key] = fields
	}
	if len(toggles) > 0 {
		body["toggleFrequency"] = toggles
	}
	return body
}

func (c *Client) step(ctx context.Context, wizard, action string) error {
	var t Transition
	if err := c.do(ctx, http.MethodPost, "wizards/"+wizard+"/"+action, nil, &t); err != nil {
		return err
	}
	if !t.Accepted {
		return &RefusedError{Wizard: wizard, Step: action}
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(endpoint), &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Session != "" {
		req.Header.Set(SessionHeader, c.Session)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Body: string(b)}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	return c.HTTPClient
}

func (c *Client) endpoint(p string) string {
	base := strings.TrimRight(c.BaseURL, "/")
	prefix := strings.Trim(c.BasePath, "/")
	if prefix != "" {
		base += "/" + prefix
	}
	return base + "/" + strings.TrimLeft(p, "/")
}
