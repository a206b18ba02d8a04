package backend

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/mind-engage/fundreview/internal/evaluation"
	"github.com/mind-engage/fundreview/internal/project"
	"github.com/mind-engage/fundreview/internal/settings"
)

// --- evaluation ---

// GradeEvaluations returns the components of a project that has not been graded yet.
func (c *Client) GradeEvaluations(ctx context.Context, projectID string) ([]evaluation.Component, error) {
	var out []evaluation.Component
	_, err := c.do(ctx, http.MethodGet, "/evaluation/grade/"+esc(projectID), nil, nil, &out)
	return out, err
}

func (c *Client) LatestGradedEvaluations(ctx context.Context, projectID string) ([]evaluation.Component, error) {
	var out []evaluation.Component
	_, err := c.do(ctx, http.MethodGet, "/evaluation/latest-graded/"+esc(projectID), nil, nil, &out)
	return out, err
}

// FounderEvaluations is the founder-facing view of a graded evaluation.
func (c *Client) FounderEvaluations(ctx context.Context, projectID string) ([]evaluation.Component, error) {
	var out []evaluation.Component
	_, err := c.do(ctx, http.MethodGet, "/evaluation/founder/"+esc(projectID), nil, nil, &out)
	return out, err
}

func (c *Client) EvaluationItems(ctx context.Context, evaluationID string) ([]evaluation.Item, error) {
	var out []evaluation.Item
	_, err := c.do(ctx, http.MethodGet, "/evaluation/item/"+esc(evaluationID), nil, nil, &out)
	return out, err
}

func (c *Client) UpdateComment(ctx context.Context, evaluationID, comment string) error {
	_, err := c.do(ctx, http.MethodPut, "/evaluation/"+esc(evaluationID), nil,
		map[string]string{"comment": comment}, nil)
	return err
}

func (c *Client) GradeItem(ctx context.Context, itemID string, point float64) error {
	_, err := c.do(ctx, http.MethodPut, "/evaluation/grade/"+esc(itemID), nil,
		map[string]float64{"point": point}, nil)
	return err
}

// --- project ---

func (c *Client) Project(ctx context.Context, projectID string) (project.Project, error) {
	var p project.Project
	_, err := c.do(ctx, http.MethodGet, "/project/"+esc(projectID), nil, nil, &p)
	return p, err
}

func (c *Client) ApproveProject(ctx context.Context, projectID string) (string, error) {
	return c.do(ctx, http.MethodPatch, "/project/approve/"+esc(projectID), nil, nil, nil)
}

func (c *Client) RejectProject(ctx context.Context, projectID, reason string) (string, error) {
	return c.do(ctx, http.MethodPut, "/project/reject/"+esc(projectID), nil,
		map[string]string{"reason": reason}, nil)
}

func (c *Client) ApproveUnderReview(ctx context.Context, projectID string) (string, error) {
	return c.do(ctx, http.MethodPatch, "/project/approve/under-review/"+esc(projectID), nil, nil, nil)
}

func (c *Client) BanUnderReview(ctx context.Context, projectID, reason string) (string, error) {
	return c.do(ctx, http.MethodPut, "/project/ban/under-review/"+esc(projectID), nil,
		map[string]string{"reason": reason}, nil)
}

// --- phases & financials ---

func (c *Client) Phases(ctx context.Context, projectID string) ([]project.Phase, error) {
	var out []project.Phase
	_, err := c.do(ctx, http.MethodGet, "/phase/project/"+esc(projectID), nil, nil, &out)
	return out, err
}

func (c *Client) Investments(ctx context.Context, phaseID string) ([]project.Investment, error) {
	var out []project.Investment
	_, err := c.do(ctx, http.MethodGet, "/investment/all/"+esc(phaseID), nil, nil, &out)
	return out, err
}

// PendingPayment returns the project's outstanding payment balance.
func (c *Client) PendingPayment(ctx context.Context, projectID string) (float64, error) {
	var out struct {
		Amount float64 `json:"amount"`
	}
	_, err := c.do(ctx, http.MethodGet, "/payment/pending/"+esc(projectID), nil, nil, &out)
	return out.Amount, err
}

func (c *Client) Payout(ctx context.Context, phaseID string) (string, error) {
	return c.do(ctx, http.MethodPatch, "/phase/payout/"+esc(phaseID), nil, nil, nil)
}

func (c *Client) Refund(ctx context.Context, phaseID string) (string, error) {
	return c.do(ctx, http.MethodPatch, "/phase/refund/"+esc(phaseID), nil, nil, nil)
}

// --- settings ---

func (c *Client) Settings(ctx context.Context) ([]settings.GlobalSetting, error) {
	var out []settings.GlobalSetting
	_, err := c.do(ctx, http.MethodGet, "/settings", nil, nil, &out)
	return out, err
}

func (c *Client) SettingsByType(ctx context.Context, types ...settings.Type) ([]settings.GlobalSetting, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	var out []settings.GlobalSetting
	_, err := c.do(ctx, http.MethodGet, "/settings/all/by-type",
		url.Values{"types": {strings.Join(names, ",")}}, nil, &out)
	return out, err
}

// UpdateSetting is PUT /settings; the backend takes the id in the body.
func (c *Client) UpdateSetting(ctx context.Context, id string, value float64) (settings.GlobalSetting, error) {
	var out settings.GlobalSetting
	_, err := c.do(ctx, http.MethodPut, "/settings", nil,
		map[string]any{"id": id, "value": value}, &out)
	return out, err
}
